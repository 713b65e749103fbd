package service

import (
	"context"
	"fmt"
	"os"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/app"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/formatter"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
	"github.com/blogdeck/blogdeck/cli/pkg/prompter"
	"github.com/blogdeck/blogdeck/cli/pkg/render"
	"github.com/blogdeck/blogdeck/cli/pkg/store"
)

type PostService struct {
	state *app.State
}

// NewPostService creates a new post service
func NewPostService(state *app.State) *PostService {
	return &PostService{state: state}
}

// ListOptions are the filters accepted by ListPosts. Zero values fall back
// to the posts.* config keys.
type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	Author    string
	SortOrder string
}

func (o ListOptions) query() api.ListQuery {
	q := api.ListQuery{
		Page:      o.Page,
		Limit:     o.Limit,
		SortBy:    config.GetString("posts.sort_by"),
		SortOrder: o.SortOrder,
		Search:    o.Search,
		Category:  o.Category,
		Author:    o.Author,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = config.GetInt("posts.page_size")
	}
	if q.SortOrder == "" {
		q.SortOrder = config.GetString("posts.sort_order")
	}
	return q
}

// ListPosts shows one page of the post listing
func (s *PostService) ListPosts(ctx context.Context, opts ListOptions) error {
	ctx = background(ctx)
	result, err := s.state.Posts.FetchPosts(ctx, opts.query())
	if err != nil {
		return err
	}

	posts := s.state.Posts.Posts()
	if err := output.PrintList("Posts", posts, formatter.PostHeaders, formatter.PostRows(posts)); err != nil {
		return err
	}

	if !output.IsStructured() {
		p := result.Pagination
		if p.TotalPages > 0 {
			fmt.Fprintf(output.Writer(), "\nPage %d of %d (%d post%s)\n", p.CurrentPage, p.TotalPages, p.TotalBlogs, pluralize(p.TotalBlogs))
		}
		if p.HasNextPage {
			output.PrintInfo("Next page: blogdeck post list --page %d", p.CurrentPage+1)
		}
	}
	return nil
}

// ViewPost shows a post and, optionally, its first page of comments
func (s *PostService) ViewPost(ctx context.Context, id string, withComments bool) error {
	ctx = background(ctx)
	post, err := s.state.Posts.GetPost(ctx, id)
	if err != nil {
		return err
	}

	var thread store.Thread
	if withComments {
		if _, err := s.state.Comments.FetchComments(ctx, id, api.CommentQuery{Page: 1, Limit: config.GetInt("comments.page_size")}); err != nil {
			return err
		}
		thread = s.state.Comments.Thread(id)
		post.Comments = thread.Comments
	}

	if output.IsStructured() {
		return output.Print("", post)
	}

	if err := output.PrintRecord(post.Title, formatter.PostFields(*post)); err != nil {
		return err
	}
	fmt.Fprintf(output.Writer(), "\n%s\n", post.Content)

	if withComments {
		fmt.Fprintln(output.Writer())
		title := fmt.Sprintf("Comments (%d)", thread.Pagination.TotalComments)
		return output.PrintList(title, thread.Comments, formatter.CommentHeaders, formatter.CommentRows(thread.Comments))
	}
	return nil
}

// CreatePost publishes a post as the signed-in user. Missing title or
// content is prompted for.
func (s *PostService) CreatePost(ctx context.Context, title, content string) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	title, err = promptIfEmpty(title, "Title: ")
	if err != nil {
		return err
	}
	if content == "" {
		content, err = prompter.PromptMultilineString("Content", MaxContentLines)
		if err != nil {
			return err
		}
	}

	post, err := s.state.Posts.AddPost(ctx, title, content, user.Username, token)
	if err != nil {
		return sessionErr(s.state, err)
	}

	if output.IsStructured() {
		return output.Print("", post)
	}
	output.PrintSuccess("✓ Post created: %s", post.ID)
	return nil
}

// EditOptions holds the fields given on the command line. Nil fields are
// left unchanged unless prompted for.
type EditOptions struct {
	Title     *string
	Content   *string
	Category  *string
	Published *bool
}

func (o EditOptions) patch() api.PostPatch {
	return api.PostPatch{Title: o.Title, Content: o.Content, Category: o.Category, IsPublished: o.Published}
}

// EditPost updates a post the signed-in user owns. With no fields given the
// title and content are prompted for, keeping the current values on empty
// input.
func (s *PostService) EditPost(ctx context.Context, id string, opts EditOptions) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	post, err := s.state.Posts.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !store.IsOwner(user, *post) {
		return clierrors.ForbiddenError("You can only edit your own posts")
	}

	patch := opts.patch()
	if patch.IsEmpty() {
		title, err := prompter.PromptStringDefault("Title ", post.Title)
		if err != nil {
			return err
		}
		content, err := prompter.PromptMultilineString("Content (empty keeps the current text)", MaxContentLines)
		if err != nil {
			return err
		}
		if title != post.Title {
			patch.Title = &title
		}
		if content != "" && content != post.Content {
			patch.Content = &content
		}
		if patch.IsEmpty() {
			output.PrintInfo("Nothing changed")
			return nil
		}
	}

	updated, err := s.state.Posts.UpdatePost(ctx, id, patch, token)
	if err != nil {
		return sessionErr(s.state, err)
	}

	if output.IsStructured() {
		return output.Print("", updated)
	}
	output.PrintSuccess("✓ Post updated")
	return nil
}

// DeletePost removes a post the signed-in user owns
func (s *PostService) DeletePost(ctx context.Context, id string, force bool) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	post, err := s.state.Posts.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !store.IsOwner(user, *post) {
		return clierrors.ForbiddenError("You can only delete your own posts")
	}

	ok, err := confirm(force, fmt.Sprintf("Delete %q?", post.Title))
	if err != nil || !ok {
		return err
	}

	msg, err := s.state.Posts.DeletePost(ctx, id, token)
	if err != nil {
		return sessionErr(s.state, err)
	}
	s.state.Comments.ClearThread(id)

	if msg == "" {
		msg = "Post deleted"
	}
	output.PrintSuccess("✓ %s", msg)
	return nil
}

// ExportPost writes a post as a standalone HTML document. An empty path or
// "-" writes to the output stream.
func (s *PostService) ExportPost(ctx context.Context, id, path string) error {
	ctx = background(ctx)
	post, err := s.state.Posts.GetPost(ctx, id)
	if err != nil {
		return err
	}

	doc, err := render.PostHTML(*post)
	if err != nil {
		return fmt.Errorf("failed to render post: %w", err)
	}

	if path == "" || path == "-" {
		_, err := output.Writer().Write(doc)
		return err
	}
	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	output.PrintSuccess("✓ Exported to %s", path)
	return nil
}
