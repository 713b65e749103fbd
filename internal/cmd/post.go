package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/service"
)

var (
	postPage      int
	postLimit     int
	postSearch    string
	postCategory  string
	postAuthor    string
	postSortOrder string

	postTitle     string
	postContent   string
	postPublished bool
	postComments  bool
	postForce     bool
	postOut       string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post management commands",
	Long:  "List, read, write and manage blog posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewPostService(s).ListPosts(cmd.Context(), service.ListOptions{
			Page:      postPage,
			Limit:     postLimit,
			Search:    postSearch,
			Category:  postCategory,
			Author:    postAuthor,
			SortOrder: postSortOrder,
		})
	},
}

var postViewCmd = &cobra.Command{
	Use:   "view <post-id>",
	Short: "View a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewPostService(s).ViewPost(cmd.Context(), args[0], postComments)
	},
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a new post",
	Long:  "Publish a new post. Title and content are prompted for when not given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewPostService(s).CreatePost(cmd.Context(), postTitle, postContent)
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit one of your posts",
	Long:  "Update a post you wrote. Only the given flags change; with none, title and content are prompted for.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}

		var opts service.EditOptions
		flags := cmd.Flags()
		if flags.Changed("title") {
			opts.Title = &postTitle
		}
		if flags.Changed("content") {
			opts.Content = &postContent
		}
		if flags.Changed("category") {
			opts.Category = &postCategory
		}
		if flags.Changed("published") {
			opts.Published = &postPublished
		}
		return service.NewPostService(s).EditPost(cmd.Context(), args[0], opts)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewPostService(s).DeletePost(cmd.Context(), args[0], postForce)
	},
}

var postExportCmd = &cobra.Command{
	Use:   "export <post-id>",
	Short: "Export a post as HTML",
	Long:  "Render a post's markdown to a standalone, sanitized HTML document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewPostService(s).ExportPost(cmd.Context(), args[0], postOut)
	},
}

func init() {
	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postViewCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postExportCmd)

	postListCmd.Flags().IntVar(&postPage, "page", 1, "Page number")
	postListCmd.Flags().IntVar(&postLimit, "limit", 0, "Posts per page (default from config)")
	postListCmd.Flags().StringVarP(&postSearch, "search", "s", "", "Search titles and content")
	postListCmd.Flags().StringVar(&postCategory, "category", "", "Only posts in this category")
	postListCmd.Flags().StringVar(&postAuthor, "author", "", "Only posts by this author id")
	postListCmd.Flags().StringVar(&postSortOrder, "order", "", "Sort order: asc or desc")

	postViewCmd.Flags().BoolVarP(&postComments, "comments", "c", false, "Also show the first page of comments")

	postCreateCmd.Flags().StringVarP(&postTitle, "title", "t", "", "Post title")
	postCreateCmd.Flags().StringVar(&postContent, "content", "", "Post content (markdown)")

	postEditCmd.Flags().StringVarP(&postTitle, "title", "t", "", "New title")
	postEditCmd.Flags().StringVar(&postContent, "content", "", "New content")
	postEditCmd.Flags().StringVar(&postCategory, "category", "", "New category")
	postEditCmd.Flags().BoolVar(&postPublished, "published", true, "Whether the post is published")

	postDeleteCmd.Flags().BoolVarP(&postForce, "force", "f", false, "Skip confirmation")

	postExportCmd.Flags().StringVar(&postOut, "html", "-", "Output file, - for stdout")
}
