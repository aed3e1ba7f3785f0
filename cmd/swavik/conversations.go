// ABOUTME: Offline commands over the local conversation history
// ABOUTME: conversations {list,show,delete} and export

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/2389/swavik-portal/internal/conversation"
)

func newConversationsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "List, show, or delete saved conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			cs, _ := a.conversations(cmd.Context())
			a.renderer.Conversations(cs.List(), cs.ActiveID())
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <n|id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			cs, _ := a.conversations(cmd.Context())
			c, err := resolveConversation(cs, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, c.Title)
			fmt.Fprintln(a.out)
			a.renderer.Log(c.Messages)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <n|id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			cs, _ := a.conversations(cmd.Context())
			c, err := resolveConversation(cs, args[0])
			if err != nil {
				return err
			}
			cs.Delete(cmd.Context(), c.ID)
			a.renderer.Info("Deleted %q", c.Title)
			return nil
		}),
	})

	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export [n|id]",
		Short: "Export a conversation transcript",
		Long: `Export a conversation to <app>_Chat_<date>.txt (or .html).

Without an argument the most recent conversation is exported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			cs, _ := a.conversations(ctx)
			if len(args) == 1 {
				c, err := resolveConversation(cs, args[0])
				if err != nil {
					return err
				}
				if err := cs.Select(ctx, c.ID); err != nil {
					return err
				}
			}
			if cs.ActiveID() == "" {
				return fmt.Errorf("no conversations to export")
			}

			if format == "" {
				format = a.cfg.Export.Format
			}
			if dir == "" {
				dir = a.cfg.Export.Dir
			}

			path, err := exportActive(a.session(cs, nil), format, dir)
			if err != nil {
				return err
			}
			a.renderer.Info("Exported to %s", path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "", "text or html (default export.format)")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default export.dir)")
	return cmd
}

// resolveConversation accepts a 1-based list position or a conversation id.
func resolveConversation(cs *conversation.Store, ref string) (conversation.Conversation, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		list := cs.List()
		if n < 1 || n > len(list) {
			return conversation.Conversation{}, fmt.Errorf("no conversation #%d (have %d)", n, len(list))
		}
		return list[n-1], nil
	}

	c, err := cs.Get(ref)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("%s: %w", ref, err)
	}
	return c, nil
}
