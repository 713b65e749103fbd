// Package render turns post content into standalone HTML documents
package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

var page = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
<p class="byline">By {{.Author}}{{if .Date}} on {{.Date}}{{end}}{{if .Category}} in {{.Category}}{{end}}</p>
{{.Body}}
</article>
</body>
</html>
`))

// Markdown converts markdown to sanitized HTML. Raw HTML in the source
// passes through the sanitizer like everything else.
func Markdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}

// PostHTML renders post as a complete HTML document
func PostHTML(post api.Post) ([]byte, error) {
	body, err := Markdown(post.Content)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title    string
		Author   string
		Date     string
		Category string
		Body     template.HTML
	}{
		Title:    post.Title,
		Author:   post.Author.String(),
		Category: post.Category,
		Body:     body,
	}
	if !post.CreatedAt.IsZero() {
		data.Date = post.CreatedAt.Format(time.DateOnly)
	}

	var out bytes.Buffer
	if err := page.Execute(&out, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
