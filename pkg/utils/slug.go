// Package utils 提供通用工具函数
package utils

import (
	"strings"
	"unicode"
)

// Slugify 将标题转换为 URL slug。
// 非 ASCII 字母（如韩文标题）原样保留，仅做空白和符号归一化。
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.TrimSpace(strings.ToLower(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !prevHyphen && b.Len() > 0 {
				b.WriteRune('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// NormalizeKeyword 关键词归一化：小写、去首尾空白、压缩内部空白
func NormalizeKeyword(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
