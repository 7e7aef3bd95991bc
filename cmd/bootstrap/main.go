// Package main 系统初始化：迁移数据库表并播种演示数据
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Println("Running schema migration...")
	if err := client.AutoMigrate(); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Schema migration done.")

	// 播种演示组织，API 首次部署后即可验证计费链路
	demoSlug := os.Getenv("BOOTSTRAP_DEMO_ORG_SLUG")
	if demoSlug == "" {
		demoSlug = "demo-workspace"
	}

	orgRepo := postgres.NewOrganizationRepository(client)
	existing, err := orgRepo.GetBySlug(ctx, demoSlug)
	if err != nil {
		log.Fatalf("failed to check demo organization: %v", err)
	}
	if existing != nil {
		fmt.Printf("Demo organization already exists with ID: %s\n", existing.ID)
		return
	}

	org := entity.NewOrganization("Demo Workspace", demoSlug)
	org.Description = "Seeded by bootstrap for smoke-testing"
	if err := orgRepo.Create(ctx, org); err != nil {
		log.Fatalf("failed to create demo organization: %v", err)
	}
	fmt.Printf("Demo organization created with ID: %s\n", org.ID)
}
