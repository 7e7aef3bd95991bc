package generation

// StepType 生成过程的具名步骤
// 长耗时生成通过这些步骤做结构化的增量披露
type StepType string

const (
	// StepMainKeyword 确定主关键词
	StepMainKeyword StepType = "main_keyword"
	// StepSuggestKeywords 给出本次写作使用的关键词集合
	StepSuggestKeywords StepType = "suggest_keywords"
	// StepResearch 收集写作素材（品牌上下文）
	StepResearch StepType = "research"
	// StepMetadata 标题与 SEO 元信息就绪
	StepMetadata StepType = "metadata"
	// StepContent 正文增量
	StepContent StepType = "content"
	// StepDone 生成完成，文章已落库
	StepDone StepType = "done"
	// StepError 生成中断
	StepError StepType = "error"
)

// Event 推送给客户端的单个生成事件
type Event struct {
	Step StepType `json:"step"`

	// MainKeyword main_keyword 步骤的主关键词
	MainKeyword string `json:"main_keyword,omitempty"`
	// Keywords suggest_keywords 步骤的关键词集合
	Keywords []string `json:"keywords,omitempty"`
	// Research research 步骤收集到的品牌上下文描述
	Research string `json:"research,omitempty"`
	// Delta content 步骤新增的正文片段
	Delta string `json:"delta,omitempty"`
	// Draft 到目前为止解析出的结构化草稿快照
	Draft *Draft `json:"draft,omitempty"`
	// ArticleID done 步骤落库后的文章 ID
	ArticleID string `json:"article_id,omitempty"`
	// QuotaRemaining done 步骤的剩余配额
	QuotaRemaining int `json:"quota_remaining,omitempty"`
	// Message error 步骤的错误描述
	Message string `json:"message,omitempty"`
}
