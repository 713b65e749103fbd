package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
)

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Hello\n\nSome **bold** text and a [link](https://example.com).")
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, `target="_blank"`)
}

func TestMarkdownStripsScripts(t *testing.T) {
	out, err := Markdown("ok\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>")
	require.NoError(t, err)

	html := string(out)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "javascript:")
}

func TestMarkdownTables(t *testing.T) {
	out, err := Markdown("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<table>")
}

func TestPostHTML(t *testing.T) {
	post := api.Post{
		ID:        "1",
		Title:     "Tom & Jerry <3",
		Content:   "First paragraph.\n\nSecond paragraph.",
		Author:    api.AuthorRef{Username: "alice"},
		Category:  "General",
		CreatedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}

	out, err := PostHTML(post)
	require.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>Tom &amp; Jerry &lt;3</title>")
	assert.Contains(t, doc, "By alice on 2026-10-19 in General")
	assert.Equal(t, 2, strings.Count(doc, "<p>"))
}
