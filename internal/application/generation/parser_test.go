package generation

import (
	"reflect"
	"testing"
)

func TestExtractDraftCompleteDocument(t *testing.T) {
	raw := `{
		"title": "Zero-downtime deploys",
		"content": "Rolling updates let you ship without dropping traffic.",
		"metaDescription": "How to deploy without downtime",
		"keywords": ["kubernetes", "deployment"],
		"headings": ["Why it matters", "Rolling updates"]
	}`

	d := ExtractDraft(raw)
	if d.Title != "Zero-downtime deploys" {
		t.Errorf("title = %q", d.Title)
	}
	if d.MetaDescription != "How to deploy without downtime" {
		t.Errorf("metaDescription = %q", d.MetaDescription)
	}
	if !reflect.DeepEqual(d.Keywords, []string{"kubernetes", "deployment"}) {
		t.Errorf("keywords = %v", d.Keywords)
	}
	if !reflect.DeepEqual(d.Headings, []string{"Why it matters", "Rolling updates"}) {
		t.Errorf("headings = %v", d.Headings)
	}
}

func TestExtractDraftFencedBlock(t *testing.T) {
	raw := "Here is the article:\n```json\n{\"title\": \"Hello\", \"content\": \"World\"}\n```\n"

	d := ExtractDraft(raw)
	if d.Title != "Hello" || d.Content != "World" {
		t.Errorf("draft = %+v", d)
	}
}

func TestExtractDraftTruncatedMidString(t *testing.T) {
	raw := `{"title": "Zero-downtime deploys", "content": "Rolling upda`

	d := ExtractDraft(raw)
	if d.Title != "Zero-downtime deploys" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Content != "Rolling upda" {
		t.Errorf("content = %q, want the prefix seen so far", d.Content)
	}
}

func TestExtractDraftTruncatedMidEscape(t *testing.T) {
	raw := `{"content": "line one\`

	d := ExtractDraft(raw)
	if d.Content != "line one" {
		t.Errorf("content = %q, half escape should be dropped", d.Content)
	}
}

func TestExtractDraftUnclosedArray(t *testing.T) {
	raw := `{"keywords": ["alpha", "beta", "gam`

	d := ExtractDraft(raw)
	if !reflect.DeepEqual(d.Keywords, []string{"alpha", "beta", "gam"}) {
		t.Errorf("keywords = %v, want collected items including the partial one", d.Keywords)
	}
}

func TestExtractDraftEscapesAndUnicode(t *testing.T) {
	raw := `{"title": "Line\none \"quoted\" é"}`

	d := ExtractDraft(raw)
	if d.Title != "Line\none \"quoted\" é" {
		t.Errorf("title = %q", d.Title)
	}
}

func TestExtractDraftSnakeCaseMetaDescription(t *testing.T) {
	raw := `{"meta_description": "fallback key"}`

	d := ExtractDraft(raw)
	if d.MetaDescription != "fallback key" {
		t.Errorf("metaDescription = %q", d.MetaDescription)
	}
}

func TestExtractDraftEmptyInput(t *testing.T) {
	d := ExtractDraft("")
	if d.Title != "" || d.Content != "" || d.Keywords != nil {
		t.Errorf("draft = %+v, want zero value", d)
	}
}
