package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
)

func post(id, author string, comments int, createdAt time.Time) api.Post {
	return api.Post{
		ID:           id,
		Title:        "Post " + id,
		Author:       api.AuthorRef{Username: author},
		CommentCount: comments,
		CreatedAt:    createdAt,
	}
}

func TestTopAuthors(t *testing.T) {
	now := time.Now()
	posts := []api.Post{
		post("1", "a", 0, now),
		post("2", "b", 0, now),
		post("3", "a", 0, now),
	}

	assert.Equal(t, []AuthorCount{{Author: "a", Count: 2}, {Author: "b", Count: 1}}, TopAuthors(posts))
}

func TestTopAuthorsTiesKeepFirstAppearance(t *testing.T) {
	now := time.Now()
	posts := []api.Post{
		post("1", "carol", 0, now),
		post("2", "Bob", 0, now),
		post("3", "bob", 0, now),
		post("4", "Bob", 0, now),
		post("5", "carol", 0, now),
	}

	got := TopAuthors(posts)
	require.Len(t, got, 3, "names are case-sensitive")
	assert.Equal(t, "carol", got[0].Author)
	assert.Equal(t, "Bob", got[1].Author)
	assert.Equal(t, "bob", got[2].Author)

	total := 0
	for _, a := range got {
		total += a.Count
	}
	assert.Equal(t, len(posts), total)
}

func TestTopAuthorsByID(t *testing.T) {
	posts := []api.Post{
		{ID: "1", Author: api.AuthorRef{ID: "000000000000000000000001"}},
		{ID: "2", Author: api.AuthorRef{ID: "000000000000000000000001", Username: "alice"}},
	}

	got := TopAuthors(posts)
	require.Len(t, got, 2)
	assert.Equal(t, "000000000000000000000001", got[0].Author)
	assert.Equal(t, "alice", got[1].Author)
}

func TestMostCommentedPosts(t *testing.T) {
	now := time.Now()
	var posts []api.Post
	for i, n := range []int{1, 9, 3, 9, 0, 4, 2} {
		posts = append(posts, post(string(rune('a'+i)), "x", n, now))
	}

	got := MostCommentedPosts(posts)
	require.Len(t, got, MostCommentedLimit)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "d", got[1].ID, "ties keep input order")
	assert.Equal(t, []int{9, 9, 4, 3, 2}, []int{got[0].CommentCount, got[1].CommentCount, got[2].CommentCount, got[3].CommentCount, got[4].CommentCount})
}

func TestMostCommentedPostsPrefersEmbeddedComments(t *testing.T) {
	p := post("a", "x", 10, time.Now())
	p.Comments = []api.Comment{{ID: "c1"}, {ID: "c2"}}

	got := MostCommentedPosts([]api.Post{p, post("b", "y", 1, time.Now())})
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].CommentCount)
}

func TestMostCommentedPostsShortInput(t *testing.T) {
	now := time.Now()
	got := MostCommentedPosts([]api.Post{post("a", "x", 1, now), post("b", "x", 2, now)})
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestPostsPerDay(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	posts := []api.Post{
		post("today", "x", 0, now.Add(-time.Hour)),
		post("today-early", "x", 0, time.Date(2026, 10, 19, 0, 0, 1, 0, time.UTC)),
		post("yesterday", "x", 0, now.AddDate(0, 0, -1)),
		post("six-ago", "x", 0, now.AddDate(0, 0, -6)),
		post("seven-ago", "x", 0, now.AddDate(0, 0, -7)),
		post("future", "x", 0, now.AddDate(0, 0, 1)),
	}

	days := PostsPerDay(posts, now)
	require.Len(t, days, Days)

	assert.Equal(t, "Mon, Oct 19", days[6].Label)
	assert.Equal(t, "Tue, Oct 13", days[0].Label)
	assert.Equal(t, 2, days[6].Posts)
	assert.Equal(t, 1, days[5].Posts)
	assert.Equal(t, 1, days[0].Posts)
	for i := 1; i < 5; i++ {
		assert.Equal(t, 0, days[i].Posts, "day %d", i)
	}
	for i := 1; i < Days; i++ {
		assert.True(t, days[i].Date.After(days[i-1].Date), "buckets run oldest to newest")
	}
}

func TestPostsPerDayUsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, loc)
	// 02:00 UTC on the 19th is still the 18th five hours west
	created := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)

	days := PostsPerDay([]api.Post{post("a", "x", 0, created)}, now)
	assert.Equal(t, 0, days[6].Posts)
	assert.Equal(t, 1, days[5].Posts)
}

func TestEmptyInput(t *testing.T) {
	now := time.Now()

	assert.Empty(t, TopAuthors(nil))
	assert.Empty(t, MostCommentedPosts(nil))

	days := PostsPerDay(nil, now)
	require.Len(t, days, Days)
	for _, d := range days {
		assert.Equal(t, 0, d.Posts)
	}

	r := Summary(nil, now)
	assert.Equal(t, 0, r.TotalPosts)
	assert.Equal(t, 0.0, r.AvgCommentsPerPost)
	assert.Len(t, r.PostsPerDay, Days)
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	posts := []api.Post{
		post("1", "a", 3, now),
		post("2", "b", 0, now.AddDate(0, 0, -2)),
		post("3", "a", 1, now.AddDate(0, 0, -30)),
	}

	r := Summary(posts, now)
	assert.Equal(t, 3, r.TotalPosts)
	assert.Equal(t, 4, r.TotalComments)
	assert.Equal(t, 2, r.TotalAuthors)
	assert.InDelta(t, 4.0/3.0, r.AvgCommentsPerPost, 1e-9)
	assert.Equal(t, "a", r.TopAuthors[0].Author)
	assert.Equal(t, "1", r.MostCommented[0].ID)

	perDay := 0
	for _, d := range r.PostsPerDay {
		perDay += d.Posts
	}
	assert.Equal(t, 2, perDay, "posts older than a week fall outside the buckets")
}
