package generation

import (
	"strings"
	"testing"

	"github.com/lib/pq"

	"inkpress-ai-api/internal/domain/entity"
)

func testGuide() *entity.StyleGuide {
	return &entity.StyleGuide{
		Name:           "Acme Press",
		Description:    "developer tooling company",
		Personality:    pq.StringArray{"bold", "precise"},
		TargetAudience: "backend engineers",
		PainPoints:     pq.StringArray{"slow deploys"},
		Formality:      "semi-formal",
		Tone:           entity.ToneProfessional,
		ContentLength:  entity.ContentLengthMedium,
		ReadingLevel:   entity.ReadingLevelIntermediate,
		Language:       entity.LanguageEnglish,
	}
}

func TestRenderPromptIncludesGuideFields(t *testing.T) {
	guide := testGuide()
	system, user := RenderPrompt(&PromptInput{
		Topic:    "Zero-downtime deploys",
		Keywords: []string{"kubernetes", "rolling update"},
		Guide:    guide,
	})

	if !strings.Contains(system, "JSON object") {
		t.Errorf("system prompt missing response format instruction: %q", system)
	}
	for _, want := range []string{
		"Topic: Zero-downtime deploys",
		"Brand: Acme Press",
		"Brand personality: bold, precise",
		"Target audience: backend engineers",
		"Audience pain points: slow deploys",
		"kubernetes, rolling update",
		"around 1000 words",
		"general audience",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestRenderPromptAdditionalInstructionsPlacedLast(t *testing.T) {
	in := &PromptInput{
		Topic:                  "Zero-downtime deploys",
		Guide:                  testGuide(),
		AdditionalInstructions: "Write everything as a haiku.",
	}
	_, user := RenderPrompt(in)

	idx := strings.Index(user, "ADDITIONAL INSTRUCTIONS")
	if idx < 0 {
		t.Fatal("additional instructions block missing")
	}
	if !strings.Contains(user[idx:], "Write everything as a haiku.") {
		t.Error("instruction text missing from override block")
	}
	if !strings.Contains(user[idx:], "override ALL other instructions") {
		t.Error("override declaration missing")
	}
	// 覆盖声明必须位于所有其他指令之后
	for _, earlier := range []string{"Tone:", "Length:", "Reading level:", "Brand:"} {
		if pos := strings.Index(user, earlier); pos > idx {
			t.Errorf("%q appears after the override block", earlier)
		}
	}
}

func TestRenderPromptBlankInstructionsOmitted(t *testing.T) {
	_, user := RenderPrompt(&PromptInput{
		Topic:                  "Zero-downtime deploys",
		Guide:                  testGuide(),
		AdditionalInstructions: "   \n ",
	})
	if strings.Contains(user, "ADDITIONAL INSTRUCTIONS") {
		t.Error("whitespace-only instructions should not emit the override block")
	}
}

func TestToneDirectivesCoverEveryTone(t *testing.T) {
	tones := []entity.Tone{
		entity.ToneProfessional,
		entity.ToneCasual,
		entity.ToneFriendly,
		entity.ToneAuthoritative,
		entity.ToneConversational,
	}
	for _, pack := range []languagePack{koreanPack, englishPack} {
		seen := map[string]bool{}
		for _, tone := range tones {
			directive := pack.Tones.For(tone)
			if directive == "" {
				t.Errorf("tone %s has no directive", tone)
			}
			if seen[directive] {
				t.Errorf("tone %s shares a directive with another tone", tone)
			}
			seen[directive] = true
		}
	}
}

func TestLengthAndLevelDirectivesCoverEveryValue(t *testing.T) {
	lengths := []entity.ContentLength{
		entity.ContentLengthShort,
		entity.ContentLengthMedium,
		entity.ContentLengthLong,
	}
	levels := []entity.ReadingLevel{
		entity.ReadingLevelBeginner,
		entity.ReadingLevelIntermediate,
		entity.ReadingLevelAdvanced,
	}
	for _, pack := range []languagePack{koreanPack, englishPack} {
		seen := map[string]bool{}
		for _, length := range lengths {
			directive := pack.Lengths.For(length)
			if directive == "" {
				t.Errorf("length %s has no directive", length)
			}
			if seen[directive] {
				t.Errorf("length %s shares a directive with another length", length)
			}
			seen[directive] = true
		}
		seen = map[string]bool{}
		for _, level := range levels {
			directive := pack.Levels.For(level)
			if directive == "" {
				t.Errorf("level %s has no directive", level)
			}
			if seen[directive] {
				t.Errorf("level %s shares a directive with another level", level)
			}
			seen[directive] = true
		}
	}
}

func TestRenderPromptDefaultsToKorean(t *testing.T) {
	guide := testGuide()
	guide.Language = entity.LanguageKorean
	system, _ := RenderPrompt(&PromptInput{Topic: "t", Guide: guide})
	if system != koreanPack.SystemPrompt {
		t.Error("korean guides should use the korean system prompt")
	}
}
