package generation

import (
	"strconv"
	"strings"
)

// Draft 生成结果的结构化视图
// 解析自模型输出，流式途中可能只有部分字段
type Draft struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Headings        []string `json:"headings"`
}

// ExtractDraft 从模型输出提取结构化草稿
// 宽容解析：输入可以是被 markdown 代码块包裹的、半截的、未闭合的 JSON，
// 永不报错，尽力返回已出现的字段，供流式预览使用
func ExtractDraft(raw string) *Draft {
	d := &Draft{}
	body := stripFences(raw)

	if v, ok := extractStringField(body, "title"); ok {
		d.Title = v
	}
	if v, ok := extractStringField(body, "content"); ok {
		d.Content = v
	}
	if v, ok := extractStringField(body, "metaDescription"); ok {
		d.MetaDescription = v
	} else if v, ok := extractStringField(body, "meta_description"); ok {
		d.MetaDescription = v
	}
	if vs, ok := extractStringArrayField(body, "keywords"); ok {
		d.Keywords = vs
	}
	if vs, ok := extractStringArrayField(body, "headings"); ok {
		d.Headings = vs
	}
	return d
}

// stripFences 去掉 markdown 代码块围栏，保留中间内容
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		// 跳过语言标记行
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && len(strings.Fields(s[:nl])) <= 1 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return s
}

// extractStringField 定位 "key": "..." 并容错解析字符串值
func extractStringField(body, key string) (string, bool) {
	idx := findKey(body, key)
	if idx < 0 {
		return "", false
	}
	i := skipToValue(body, idx)
	if i < 0 || i >= len(body) || body[i] != '"' {
		return "", false
	}
	value, _ := scanString(body, i)
	return value, true
}

// extractStringArrayField 定位 "key": [...] 并容错收集字符串元素
func extractStringArrayField(body, key string) ([]string, bool) {
	idx := findKey(body, key)
	if idx < 0 {
		return nil, false
	}
	i := skipToValue(body, idx)
	if i < 0 || i >= len(body) || body[i] != '[' {
		return nil, false
	}

	var items []string
	i++
	for i < len(body) {
		switch body[i] {
		case '"':
			item, next := scanString(body, i)
			items = append(items, item)
			i = next
		case ']':
			return items, true
		default:
			i++
		}
	}
	// 数组未闭合：返回已收集到的元素
	return items, true
}

// findKey 返回 "key" 之后引号结束的位置，找不到返回 -1
func findKey(body, key string) int {
	needle := `"` + key + `"`
	idx := strings.Index(body, needle)
	if idx < 0 {
		return -1
	}
	return idx + len(needle)
}

// skipToValue 跳过冒号与空白，返回值起始位置
func skipToValue(body string, i int) int {
	sawColon := false
	for ; i < len(body); i++ {
		switch body[i] {
		case ':':
			sawColon = true
		case ' ', '\t', '\n', '\r':
		default:
			if !sawColon {
				return -1
			}
			return i
		}
	}
	return -1
}

// scanString 从开引号位置解析 JSON 字符串
// 遇到输入截断（无闭引号、半截转义）时返回已解出的前缀
func scanString(body string, start int) (value string, next int) {
	var b strings.Builder
	i := start + 1
	for i < len(body) {
		c := body[i]
		switch c {
		case '"':
			return b.String(), i + 1
		case '\\':
			if i+1 >= len(body) {
				// 半截转义，丢弃
				return b.String(), len(body)
			}
			esc := body[i+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'u':
				if i+6 <= len(body) {
					if code, err := strconv.ParseUint(body[i+2:i+6], 16, 32); err == nil {
						b.WriteRune(rune(code))
						i += 6
						continue
					}
				}
				// 半截 \uXXXX，丢弃剩余
				return b.String(), len(body)
			default:
				b.WriteByte(esc)
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	// 未闭合字符串：返回前缀
	return b.String(), len(body)
}
