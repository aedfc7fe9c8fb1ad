package service

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/golang-commonmark/markdown"
)

// Preview kinds understood by the frontend
const (
	PreviewKindImage    = "image"
	PreviewKindIframe   = "iframe"
	PreviewKindMarkdown = "markdown"
	PreviewKindText     = "text"
)

// Preview describes how a stored file can be rendered inline
type Preview struct {
	Kind string `json:"kind"`
	// HTML holds rendered markup for markdown previews, Text the decoded
	// body for plain text ones; image and iframe previews only carry the
	// kind and let the client fetch the file itself.
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// PreviewService picks a previewer by content type
type PreviewService interface {
	CanPreview(contentType string) bool
	Generate(contentType string, content []byte) (*Preview, bool)
}

type previewService struct {
	md *markdown.Markdown
}

// NewPreviewService creates a new PreviewService
func NewPreviewService() PreviewService {
	return &previewService{
		md: markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(false)),
	}
}

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var markdownContentTypes = map[string]bool{
	"text/markdown":   true,
	"text/x-markdown": true,
}

func (s *previewService) CanPreview(contentType string) bool {
	contentType = normalizeContentType(contentType)
	return imageContentTypes[contentType] ||
		markdownContentTypes[contentType] ||
		contentType == "application/pdf" ||
		strings.HasPrefix(contentType, "text/")
}

// Generate renders a preview for the file, returning false when the content
// type has no previewer
func (s *previewService) Generate(contentType string, content []byte) (*Preview, bool) {
	contentType = normalizeContentType(contentType)
	switch {
	case imageContentTypes[contentType]:
		return &Preview{Kind: PreviewKindImage}, true
	case contentType == "application/pdf":
		return &Preview{Kind: PreviewKindIframe}, true
	case markdownContentTypes[contentType]:
		return &Preview{Kind: PreviewKindMarkdown, HTML: s.md.RenderToString(content)}, true
	case strings.HasPrefix(contentType, "text/"):
		return &Preview{Kind: PreviewKindText, Text: decodeText(content)}, true
	}
	return nil, false
}

func normalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// decodeText interprets the bytes as UTF-8 and falls back to Latin-1 for
// legacy uploads
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}
