// Package formatter turns domain values into rows and fields for the output
// package.
package formatter

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blogdeck/blogdeck/cli/pkg/analytics"
	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
)

// DateLayout is used for every timestamp shown in tables
const DateLayout = "2006-01-02 15:04"

var (
	PostHeaders    = []string{"ID", "TITLE", "AUTHOR", "CATEGORY", "COMMENTS", "CREATED"}
	CommentHeaders = []string{"ID", "COMMENTER", "COMMENT", "CREATED"}
	AuthorHeaders  = []string{"AUTHOR", "POSTS"}
	RankedHeaders  = []string{"TITLE", "AUTHOR", "COMMENTS"}
	DayHeaders     = []string{"DAY", "POSTS", ""}
)

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// Excerpt flattens whitespace and truncates, for one-line previews
func Excerpt(s string, n int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), n)
}

// Date formats t in local time; the zero time prints as "-"
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateLayout)
}

// Bar draws n as a row of '#' scaled so that max fills width
func Bar(n, max, width int) string {
	if n <= 0 || max <= 0 || width <= 0 {
		return ""
	}
	size := n * width / max
	if size == 0 {
		size = 1
	}
	return strings.Repeat("#", size)
}

func PostRows(posts []api.Post) [][]string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{
			p.ID,
			Truncate(p.Title, 40),
			p.Author.String(),
			p.Category,
			strconv.Itoa(p.CommentCount),
			Date(p.CreatedAt),
		})
	}
	return rows
}

// PostFields lists a post's metadata for a detail view. The content is
// printed separately.
func PostFields(p api.Post) []output.Field {
	fields := []output.Field{
		{Key: "ID", Value: p.ID},
		{Key: "Title", Value: p.Title},
		{Key: "Author", Value: p.Author.String()},
		{Key: "Category", Value: p.Category},
		{Key: "Comments", Value: p.CommentCount},
		{Key: "Created", Value: Date(p.CreatedAt)},
	}
	if !p.UpdatedAt.IsZero() && !p.UpdatedAt.Equal(p.CreatedAt) {
		fields = append(fields, output.Field{Key: "Updated", Value: Date(p.UpdatedAt)})
	}
	if !p.IsPublished {
		fields = append(fields, output.Field{Key: "Published", Value: false})
	}
	return fields
}

func CommentRows(comments []api.Comment) [][]string {
	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, []string{
			c.ID,
			c.Commenter,
			Excerpt(c.CommentText, 60),
			Date(c.CreatedAt),
		})
	}
	return rows
}

func AuthorRows(authors []analytics.AuthorCount) [][]string {
	rows := make([][]string, 0, len(authors))
	for _, a := range authors {
		rows = append(rows, []string{a.Author, strconv.Itoa(a.Count)})
	}
	return rows
}

func RankedRows(posts []analytics.RankedPost) [][]string {
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{Truncate(p.Title, 40), p.Author, strconv.Itoa(p.CommentCount)})
	}
	return rows
}

// DayRows renders per-day counts with a bar chart column
func DayRows(days []analytics.DayCount) [][]string {
	max := 0
	for _, d := range days {
		if d.Posts > max {
			max = d.Posts
		}
	}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Label, strconv.Itoa(d.Posts), Bar(d.Posts, max, 20)})
	}
	return rows
}
