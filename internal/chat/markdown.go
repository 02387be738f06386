package chat

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// goldmark escapes raw HTML unless html.WithUnsafe is set, so model text
// cannot inject markup.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func RenderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
