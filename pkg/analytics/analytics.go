// Package analytics derives engagement figures from a snapshot of posts.
// Every function is pure: the same posts and clock give the same result.
package analytics

import (
	"sort"
	"time"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
)

// MostCommentedLimit caps MostCommentedPosts
const MostCommentedLimit = 5

// Days is the number of buckets PostsPerDay returns
const Days = 7

// DayLabelLayout formats bucket labels, e.g. "Mon, Jan 2"
const DayLabelLayout = "Mon, Jan 2"

// AuthorCount is the number of posts written by one author
type AuthorCount struct {
	Author string `json:"author" yaml:"author"`
	Count  int    `json:"count" yaml:"count"`
}

// RankedPost is a post with the comment count used to rank it
type RankedPost struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Author       string `json:"author" yaml:"author"`
	CommentCount int    `json:"commentCount" yaml:"commentCount"`
}

// DayCount is the number of posts created on one calendar day
type DayCount struct {
	Date  time.Time `json:"date" yaml:"date"`
	Label string    `json:"label" yaml:"label"`
	Posts int       `json:"posts" yaml:"posts"`
}

// Report bundles every figure shown on the analytics screen
type Report struct {
	TotalPosts         int           `json:"totalPosts" yaml:"totalPosts"`
	TotalComments      int           `json:"totalComments" yaml:"totalComments"`
	TotalAuthors       int           `json:"totalAuthors" yaml:"totalAuthors"`
	AvgCommentsPerPost float64       `json:"avgCommentsPerPost" yaml:"avgCommentsPerPost"`
	TopAuthors         []AuthorCount `json:"topAuthors" yaml:"topAuthors"`
	MostCommented      []RankedPost  `json:"mostCommented" yaml:"mostCommented"`
	PostsPerDay        []DayCount    `json:"postsPerDay" yaml:"postsPerDay"`
}

// commentCount prefers embedded comments over the stored counter
func commentCount(p api.Post) int {
	if p.Comments != nil {
		return len(p.Comments)
	}
	if p.CommentCount < 0 {
		return 0
	}
	return p.CommentCount
}

// TopAuthors counts posts per author, most prolific first. Authors with equal
// counts stay in the order they first appear.
func TopAuthors(posts []api.Post) []AuthorCount {
	counts := []AuthorCount{}
	index := make(map[string]int)
	for _, p := range posts {
		author := p.Author.String()
		i, ok := index[author]
		if !ok {
			i = len(counts)
			index[author] = i
			counts = append(counts, AuthorCount{Author: author})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// MostCommentedPosts returns up to five posts ranked by comment count
func MostCommentedPosts(posts []api.Post) []RankedPost {
	ranked := make([]RankedPost, 0, len(posts))
	for _, p := range posts {
		ranked = append(ranked, RankedPost{
			ID:           p.ID,
			Title:        p.Title,
			Author:       p.Author.String(),
			CommentCount: commentCount(p),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CommentCount > ranked[j].CommentCount
	})
	if len(ranked) > MostCommentedLimit {
		ranked = ranked[:MostCommentedLimit]
	}
	return ranked
}

// PostsPerDay counts posts per calendar day for the seven days ending with
// now's day. Days are taken in now's location.
func PostsPerDay(posts []api.Post, now time.Time) []DayCount {
	loc := now.Location()
	today := startOfDay(now)

	buckets := make([]DayCount, Days)
	index := make(map[string]int, Days)
	for i := 0; i < Days; i++ {
		day := today.AddDate(0, 0, i-(Days-1))
		buckets[i] = DayCount{Date: day, Label: day.Format(DayLabelLayout)}
		index[day.Format(time.DateOnly)] = i
	}

	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			continue
		}
		if i, ok := index[p.CreatedAt.In(loc).Format(time.DateOnly)]; ok {
			buckets[i].Posts++
		}
	}
	return buckets
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Summary computes the full report for posts
func Summary(posts []api.Post, now time.Time) Report {
	r := Report{
		TotalPosts:    len(posts),
		TopAuthors:    TopAuthors(posts),
		MostCommented: MostCommentedPosts(posts),
		PostsPerDay:   PostsPerDay(posts, now),
	}
	for _, p := range posts {
		r.TotalComments += commentCount(p)
	}
	r.TotalAuthors = len(r.TopAuthors)
	if r.TotalPosts > 0 {
		r.AvgCommentsPerPost = float64(r.TotalComments) / float64(r.TotalPosts)
	}
	return r
}
