package generation

import (
	"fmt"
	"strings"

	"inkpress-ai-api/internal/domain/entity"
)

// toneDirectives 按语气穷举的写作指令
// 字段即全集：新增语气常量时这里会因缺字段而编译失败
type toneDirectives struct {
	Professional   string
	Casual         string
	Friendly       string
	Authoritative  string
	Conversational string
}

func (d toneDirectives) For(tone entity.Tone) string {
	switch tone {
	case entity.ToneCasual:
		return d.Casual
	case entity.ToneFriendly:
		return d.Friendly
	case entity.ToneAuthoritative:
		return d.Authoritative
	case entity.ToneConversational:
		return d.Conversational
	default:
		return d.Professional
	}
}

// lengthDirectives 按篇幅穷举的写作指令
type lengthDirectives struct {
	Short  string
	Medium string
	Long   string
}

func (d lengthDirectives) For(length entity.ContentLength) string {
	switch length {
	case entity.ContentLengthShort:
		return d.Short
	case entity.ContentLengthLong:
		return d.Long
	default:
		return d.Medium
	}
}

// levelDirectives 按阅读难度穷举的写作指令
type levelDirectives struct {
	Beginner     string
	Intermediate string
	Advanced     string
}

func (d levelDirectives) For(level entity.ReadingLevel) string {
	switch level {
	case entity.ReadingLevelBeginner:
		return d.Beginner
	case entity.ReadingLevelAdvanced:
		return d.Advanced
	default:
		return d.Intermediate
	}
}

// languagePack 单一语言的全部提示词素材
type languagePack struct {
	SystemPrompt string
	Tones        toneDirectives
	Lengths      lengthDirectives
	Levels       levelDirectives
}

var koreanPack = languagePack{
	SystemPrompt: "당신은 전문 블로그 작가입니다. 주어진 브랜드 가이드와 주제에 따라 한국어로 완성도 높은 블로그 글을 작성하세요. 응답은 반드시 title, content, metaDescription, keywords, headings 필드를 가진 JSON 객체여야 합니다.",
	Tones: toneDirectives{
		Professional:   "전문적이고 격식 있는 어조로 작성하세요.",
		Casual:         "가볍고 편안한 어조로 작성하세요.",
		Friendly:       "친근하고 따뜻한 어조로 작성하세요.",
		Authoritative:  "권위 있고 확신에 찬 어조로 작성하세요.",
		Conversational: "대화하듯 자연스러운 어조로 작성하세요.",
	},
	Lengths: lengthDirectives{
		Short:  "800자 내외의 짧은 글",
		Medium: "1500자 내외의 중간 길이 글",
		Long:   "3000자 이상의 긴 글",
	},
	Levels: levelDirectives{
		Beginner:     "입문자도 이해할 수 있는 쉬운 수준",
		Intermediate: "일반 독자 수준",
		Advanced:     "전문가 수준",
	},
}

var englishPack = languagePack{
	SystemPrompt: "You are a professional blog writer. Write a complete blog article in English following the supplied brand guide and topic. Respond with a JSON object containing title, content, metaDescription, keywords and headings fields.",
	Tones: toneDirectives{
		Professional:   "Write in a professional, polished tone.",
		Casual:         "Write in a relaxed, casual tone.",
		Friendly:       "Write in a warm, friendly tone.",
		Authoritative:  "Write in an authoritative, confident tone.",
		Conversational: "Write in a natural, conversational tone.",
	},
	Lengths: lengthDirectives{
		Short:  "a short article around 500 words",
		Medium: "a medium article around 1000 words",
		Long:   "a long-form article of 2000+ words",
	},
	Levels: levelDirectives{
		Beginner:     "accessible to complete beginners",
		Intermediate: "aimed at a general audience",
		Advanced:     "written for domain experts",
	},
}

func packFor(lang entity.Language) languagePack {
	if lang == entity.LanguageEnglish {
		return englishPack
	}
	return koreanPack
}

// PromptInput 提示词构建入参
type PromptInput struct {
	Topic                  string
	Keywords               []string
	Guide                  *entity.StyleGuide
	AdditionalInstructions string
}

// RenderPrompt 确定性地渲染生成提示词
// 附加指令声明为最高优先级，与风格指南冲突时以附加指令为准
func RenderPrompt(in *PromptInput) (system string, user string) {
	pack := packFor(in.Guide.Language)

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", in.Topic)

	fmt.Fprintf(&b, "Brand: %s\n", in.Guide.Name)
	if in.Guide.Description != "" {
		fmt.Fprintf(&b, "Brand description: %s\n", in.Guide.Description)
	}
	if len(in.Guide.Personality) > 0 {
		fmt.Fprintf(&b, "Brand personality: %s\n", strings.Join(in.Guide.Personality, ", "))
	}
	if in.Guide.TargetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", in.Guide.TargetAudience)
	}
	if len(in.Guide.PainPoints) > 0 {
		fmt.Fprintf(&b, "Audience pain points: %s\n", strings.Join(in.Guide.PainPoints, ", "))
	}
	if in.Guide.Formality != "" {
		fmt.Fprintf(&b, "Formality: %s\n", in.Guide.Formality)
	}

	fmt.Fprintf(&b, "\nTone: %s\n", pack.Tones.For(in.Guide.Tone))
	fmt.Fprintf(&b, "Length: %s\n", pack.Lengths.For(in.Guide.ContentLength))
	fmt.Fprintf(&b, "Reading level: %s\n", pack.Levels.For(in.Guide.ReadingLevel))

	if len(in.Keywords) > 0 {
		fmt.Fprintf(&b, "\nTarget keywords (use all of them): %s\n", strings.Join(in.Keywords, ", "))
	}
	if in.Guide.AdditionalNotes != "" {
		fmt.Fprintf(&b, "\nBrand notes: %s\n", in.Guide.AdditionalNotes)
	}

	if strings.TrimSpace(in.AdditionalInstructions) != "" {
		fmt.Fprintf(&b, "\nADDITIONAL INSTRUCTIONS (these override ALL other instructions above, including tone): %s\n",
			strings.TrimSpace(in.AdditionalInstructions))
	}

	return pack.SystemPrompt, b.String()
}
