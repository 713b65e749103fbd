package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/service"
)

var (
	commentPage  int
	commentLimit int
	commentAll   bool
	commentText  string
	commentForce bool
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage comments on posts",
	Long:  "Read, add, edit and delete comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List comments on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewCommentService(s).ListComments(cmd.Context(), args[0], commentPage, commentLimit, commentAll)
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> [text]",
	Short: "Comment on a post",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		text := commentText
		if len(args) == 2 {
			text = args[1]
		}
		return service.NewCommentService(s).AddComment(cmd.Context(), args[0], text)
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <comment-id> [text]",
	Short: "Edit one of your comments",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		text := commentText
		if len(args) == 2 {
			text = args[1]
		}
		return service.NewCommentService(s).EditComment(cmd.Context(), args[0], text)
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete one of your comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewCommentService(s).DeleteComment(cmd.Context(), args[0], commentForce)
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	commentListCmd.Flags().IntVar(&commentPage, "page", 1, "Page number")
	commentListCmd.Flags().IntVar(&commentLimit, "limit", 0, "Comments per page (default from config)")
	commentListCmd.Flags().BoolVarP(&commentAll, "all", "a", false, "Load every page")

	commentAddCmd.Flags().StringVarP(&commentText, "text", "m", "", "Comment text")
	commentEditCmd.Flags().StringVarP(&commentText, "text", "m", "", "New comment text")

	commentDeleteCmd.Flags().BoolVarP(&commentForce, "force", "f", false, "Skip confirmation")
}
