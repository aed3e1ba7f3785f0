// ABOUTME: The chat command: interactive REPL or a single question from the arguments
// ABOUTME: Requires a signed-in session and talks to the backend's /chat endpoint

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/swavik-portal/internal/chat"
	"github.com/2389/swavik-portal/internal/conversation"
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	var newChat bool
	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Chat with the HR assistant",
		Long: `Chat with the HR assistant.

With no arguments an interactive session starts; type /help inside it for
commands. With arguments the question is asked once in the most recent
conversation and the answer printed.`,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			username, c, err := a.requireUser(ctx)
			if err != nil {
				return err
			}

			cs, b := a.conversations(ctx)
			defer b.Close()
			session := a.session(cs, c)
			defer session.Wait()

			if newChat {
				cs.Create(ctx)
			}

			if len(args) > 0 {
				return askOnce(cmd, a, session, cs, strings.Join(args, " "))
			}

			cyan := color.New(color.FgCyan)
			cyan.Fprint(a.out, banner)
			gray := color.New(color.FgHiBlack)
			gray.Fprintf(a.out, "    %s · signed in as %s · %s\n\n", a.cfg.App.Name, username, c.BaseURL())

			r := newREPL(a, session, cs, b, c, cmd.InOrStdin())
			return r.run(ctx)
		}),
	}
	cmd.Flags().BoolVar(&newChat, "new", false, "start a new conversation")
	return cmd
}

// askOnce submits one question and prints the answer.
func askOnce(cmd *cobra.Command, a *app, session *chat.Session, cs *conversation.Store, question string) error {
	done, ok := session.Submit(cmd.Context(), question)
	if !ok {
		return fmt.Errorf("question is empty")
	}
	<-done

	log := cs.ActiveLog()
	if len(log) == 0 {
		return fmt.Errorf("conversation was removed before the answer arrived")
	}
	last := len(log) - 1
	a.renderer.Message(last, log[last])
	return nil
}
