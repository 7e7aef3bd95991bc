// Package main 周期扣款 worker 入口
// 默认执行一次当日扫描后退出，供平台调度器按日触发；
// 指定 -listen 时常驻，暴露管理端点由调度器远程触发。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"inkpress-ai-api/internal/app"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/pkg/logger"
)

func main() {
	var (
		dateFlag   = flag.String("date", "", "billing date to sweep (YYYY-MM-DD, defaults to today)")
		listenFlag = flag.String("listen", "", "listen address for the admin trigger endpoint (empty = run once and exit)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize app", err)
	}
	defer application.Close(ctx)

	if *listenFlag != "" {
		serve(ctx, application, *listenFlag)
		return
	}

	billingDate := time.Now()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Error("invalid -date value", "date", *dateFlag, "error", err)
			os.Exit(2)
		}
		billingDate = parsed
	}

	result, err := application.Sweeper.Run(ctx, billingDate)
	if err != nil {
		log.Error("billing sweep failed", "error", err)
		os.Exit(1)
	}

	log.Info("billing sweep finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	for _, sweepErr := range result.Errors {
		log.Warn("billing sweep item failed",
			"subscription_id", sweepErr.SubscriptionID,
			"organization_id", sweepErr.OrganizationID,
			"message", sweepErr.Message,
		)
	}

	if result.Failed > 0 {
		os.Exit(1)
	}
}

// serve 常驻模式：POST /run 触发一次当日扫描
func serve(ctx context.Context, application *app.App, addr string) {
	log := logger.FromContext(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /run", func(w http.ResponseWriter, r *http.Request) {
		result, err := application.Sweeper.Run(r.Context(), time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Info("billing worker listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("billing worker server error", "error", err)
		os.Exit(1)
	}
}
