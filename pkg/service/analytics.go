package service

import (
	"context"
	"fmt"
	"time"

	"github.com/blogdeck/blogdeck/cli/pkg/analytics"
	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/app"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	"github.com/blogdeck/blogdeck/cli/pkg/formatter"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
)

// analyticsPageSize is the page size used while collecting posts
const analyticsPageSize = 50

type AnalyticsService struct {
	state *app.State
	now   func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(state *app.State) *AnalyticsService {
	return &AnalyticsService{state: state, now: time.Now}
}

// Show collects the post listing and prints the analytics report. A zero
// anchor means today.
func (s *AnalyticsService) Show(ctx context.Context, anchor time.Time) error {
	ctx = background(ctx)
	maxPages := config.GetInt("analytics.max_pages")

	result, err := s.state.Posts.FetchAllPosts(ctx, api.ListQuery{Limit: analyticsPageSize}, maxPages)
	if err != nil {
		return err
	}

	now := anchor
	if now.IsZero() {
		now = s.now()
	}
	report := analytics.Summary(result.Posts, now)

	if output.IsStructured() {
		return output.Print("", report)
	}

	w := output.Writer()
	if err := output.PrintRecord("Overview", []output.Field{
		{Key: "Total posts", Value: report.TotalPosts},
		{Key: "Total comments", Value: report.TotalComments},
		{Key: "Authors", Value: report.TotalAuthors},
		{Key: "Avg comments per post", Value: fmt.Sprintf("%.1f", report.AvgCommentsPerPost)},
	}); err != nil {
		return err
	}
	if result.Pagination.HasNextPage {
		output.PrintWarning("Only the first %d pages were read; raise analytics.max_pages to include more", maxPages)
	}

	fmt.Fprintln(w)
	if err := output.PrintList("Posts per day", report.PostsPerDay, formatter.DayHeaders, formatter.DayRows(report.PostsPerDay)); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := output.PrintList("Top authors", report.TopAuthors, formatter.AuthorHeaders, formatter.AuthorRows(report.TopAuthors)); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return output.PrintList("Most commented", report.MostCommented, formatter.RankedHeaders, formatter.RankedRows(report.MostCommented))
}
