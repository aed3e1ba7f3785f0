// ABOUTME: Interactive chat loop with slash commands for conversations, feedback, and export
// ABOUTME: Answers arrive through the conversation broadcaster and are rendered as they land

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/swavik-portal/internal/chat"
	"github.com/2389/swavik-portal/internal/client"
	"github.com/2389/swavik-portal/internal/conversation"
	"github.com/2389/swavik-portal/internal/render"
)

// suggestions are offered when a conversation is empty.
var suggestions = []string{
	"📋 What are the leave policies?",
	"💰 Show me salary details",
	"🏥 What benefits are available?",
	"📅 How many working days this month?",
}

type repl struct {
	app      *app
	session  *chat.Session
	store    *conversation.Store
	changes  *conversation.Broadcaster
	backend  *client.Client
	renderer *render.Renderer
	out      io.Writer
	in       io.Reader

	cancelSub  context.CancelFunc
	readerDone chan struct{} // closed when the input goroutine exits
}

func newREPL(a *app, session *chat.Session, cs *conversation.Store, b *conversation.Broadcaster, c *client.Client, in io.Reader) *repl {
	return &repl{
		app:      a,
		session:  session,
		store:    cs,
		changes:  b,
		backend:  c,
		renderer: a.renderer,
		out:      a.out,
		in:       in,

		readerDone: make(chan struct{}),
	}
}

func (p *repl) run(ctx context.Context) error {
	// Entering chat always lands in a conversation.
	p.ensureActive(ctx)
	p.showActive()
	fmt.Fprintln(p.out, "Type a question and press Enter. /help for commands. Ctrl+D to quit.")
	fmt.Fprintln(p.out)

	// The reader stops once run returns, even if input is left over.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(p.readerDone)
		scanner := bufio.NewScanner(p.in)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1024*1024) // 1MB max input
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	prompt := color.New(color.FgGreen)
	for {
		prompt.Fprint(p.out, "> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return nil
		case err := <-readErr:
			fmt.Fprintln(p.out)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		case line := <-lines:
			if quit := p.handle(ctx, line); quit {
				return nil
			}
			fmt.Fprintln(p.out)
		}
	}
}

// handle runs one input line and reports whether the user asked to quit.
func (p *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		p.ask(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		p.printHelp()
	case "/new":
		p.store.Create(ctx)
		p.renderer.Info("Started a new chat")
	case "/list":
		p.renderer.Conversations(p.store.List(), p.store.ActiveID())
	case "/use":
		p.use(ctx, arg)
	case "/delete":
		p.delete(ctx, arg)
	case "/history":
		p.showActive()
	case "/regen":
		p.regenerate(ctx, arg)
	case "/up":
		p.feedback(ctx, arg, conversation.FeedbackUp)
	case "/down":
		p.feedback(ctx, arg, conversation.FeedbackDown)
	case "/export":
		p.export(arg)
	case "/stats":
		p.stats(ctx)
	case "/files":
		p.files(ctx)
	default:
		p.renderer.Error(fmt.Errorf("unknown command %s, try /help", name))
	}
	return false
}

func (p *repl) printHelp() {
	fmt.Fprintln(p.out, "Commands:")
	fmt.Fprintln(p.out, "  /new              Start a new chat")
	fmt.Fprintln(p.out, "  /list             List conversations")
	fmt.Fprintln(p.out, "  /use <n|id>       Switch to a conversation")
	fmt.Fprintln(p.out, "  /delete [n|id]    Delete a conversation (default: current)")
	fmt.Fprintln(p.out, "  /history          Show the current conversation")
	fmt.Fprintln(p.out, "  /regen [n]        Regenerate an answer (default: latest)")
	fmt.Fprintln(p.out, "  /up <n>           Mark answer n helpful (again to clear)")
	fmt.Fprintln(p.out, "  /down <n>         Mark answer n unhelpful (again to clear)")
	fmt.Fprintln(p.out, "  /export [html]    Export the transcript")
	fmt.Fprintln(p.out, "  /stats            Show dashboard and analytics")
	fmt.Fprintln(p.out, "  /files            List indexed documents")
	fmt.Fprintln(p.out, "  /help             Show this help")
	fmt.Fprintln(p.out, "  /quit             Exit")
}

func (p *repl) ensureActive(ctx context.Context) {
	if p.store.ActiveID() == "" {
		p.store.Create(ctx)
	}
}

func (p *repl) showActive() {
	c, err := p.store.Get(p.store.ActiveID())
	if err != nil {
		return
	}
	color.New(color.Bold).Fprintln(p.out, c.Title)
	if len(c.Messages) == 0 {
		fmt.Fprintln(p.out, "Try asking:")
		for _, s := range suggestions {
			fmt.Fprintf(p.out, "  %s\n", s)
		}
		return
	}
	p.renderer.Log(c.Messages)
}

// ask submits a question and renders what lands in the conversation.
func (p *repl) ask(ctx context.Context, text string) {
	p.ensureActive(ctx)

	changes := p.subscribe(ctx)
	defer p.unsubscribe()

	p.session.SetDraft(text)
	done, ok := p.session.Submit(ctx, p.session.Draft())
	if !ok {
		p.renderer.Error(errors.New("still waiting for the previous answer"))
		return
	}

	p.renderer.Thinking()
	if !p.await(ctx, done) {
		return
	}

	p.drain(changes, func(c conversation.Change) {
		if c.Kind == conversation.ChangeAppended && c.Message.Role == conversation.RoleAssistant {
			p.renderer.Message(c.Index, c.Message)
		}
	})
}

func (p *repl) regenerate(ctx context.Context, arg string) {
	index := lastAssistantIndex(p.store.ActiveLog())
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			p.renderer.Error(fmt.Errorf("usage: /regen [n]"))
			return
		}
		index = n
	}

	changes := p.subscribe(ctx)
	defer p.unsubscribe()

	done, ok := p.session.Regenerate(ctx, index)
	if !ok {
		p.renderer.Error(errors.New("nothing to regenerate there"))
		return
	}

	p.renderer.Thinking()
	if !p.await(ctx, done) {
		return
	}

	updated := false
	p.drain(changes, func(c conversation.Change) {
		if c.Kind == conversation.ChangeUpdated && c.Index == index {
			updated = true
			p.renderer.Message(c.Index, c.Message)
		}
	})
	if !updated {
		p.renderer.Error(errors.New("service unavailable, kept the previous answer"))
	}
}

// subscribe listens to the active conversation until unsubscribe is called.
func (p *repl) subscribe(ctx context.Context) <-chan conversation.Change {
	subCtx, cancel := context.WithCancel(ctx)
	p.cancelSub = cancel
	changes, _ := p.changes.Subscribe(subCtx, p.store.ActiveID())
	return changes
}

func (p *repl) unsubscribe() {
	if p.cancelSub != nil {
		p.cancelSub()
		p.cancelSub = nil
	}
}

// await blocks until done closes or ctx is cancelled. The request keeps
// running after cancellation and its answer is still saved.
func (p *repl) await(ctx context.Context, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-ctx.Done():
		fmt.Fprintln(p.out, "Interrupted; the answer will be saved when it arrives.")
		return false
	}
}

// drain delivers the changes already buffered for a subscription.
func (p *repl) drain(changes <-chan conversation.Change, fn func(conversation.Change)) {
	for {
		select {
		case c, ok := <-changes:
			if !ok {
				return
			}
			fn(c)
		default:
			return
		}
	}
}

func (p *repl) feedback(ctx context.Context, arg string, value conversation.Feedback) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		p.renderer.Error(fmt.Errorf("usage: /%s <n>", value))
		return
	}
	msg, ok := p.session.SetFeedback(ctx, n, value)
	if !ok {
		p.renderer.Error(fmt.Errorf("message %d is not an answer", n))
		return
	}
	p.renderer.Message(n, msg)
}

func (p *repl) use(ctx context.Context, arg string) {
	if arg == "" {
		p.renderer.Error(errors.New("usage: /use <n|id>"))
		return
	}
	c, err := resolveConversation(p.store, arg)
	if err != nil {
		p.renderer.Error(err)
		return
	}
	if err := p.store.Select(ctx, c.ID); err != nil {
		p.renderer.Error(err)
		return
	}
	p.showActive()
}

func (p *repl) delete(ctx context.Context, arg string) {
	id := p.store.ActiveID()
	if arg != "" {
		c, err := resolveConversation(p.store, arg)
		if err != nil {
			p.renderer.Error(err)
			return
		}
		id = c.ID
	}

	c, err := p.store.Get(id)
	if err != nil {
		p.renderer.Error(err)
		return
	}
	p.store.Delete(ctx, id)
	p.renderer.Info("Deleted %q", c.Title)

	p.ensureActive(ctx)
	p.showActive()
}

func (p *repl) export(arg string) {
	format := arg
	if format == "" {
		format = p.app.cfg.Export.Format
	}
	path, err := exportActive(p.session, format, p.app.cfg.Export.Dir)
	if err != nil {
		p.renderer.Error(err)
		return
	}
	p.renderer.Info("Exported to %s", path)
}

func (p *repl) stats(ctx context.Context) {
	stats, err := p.backend.Stats(ctx)
	if err != nil {
		p.renderer.Error(err)
		return
	}
	p.renderer.Stats(stats)
	p.renderer.Analytics(stats.ChartData)
}

func (p *repl) files(ctx context.Context) {
	files, err := p.backend.ListFiles(ctx)
	if err != nil {
		p.renderer.Error(err)
		return
	}
	p.renderer.Files(files)
}

func lastAssistantIndex(log []conversation.Message) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Role == conversation.RoleAssistant {
			return i
		}
	}
	return -1
}

// exportActive writes the active conversation in the given format.
func exportActive(s *chat.Session, format, dir string) (string, error) {
	switch format {
	case "html":
		return s.ExportTranscriptHTML(dir)
	case "text", "txt":
		return s.ExportTranscript(dir)
	default:
		return "", fmt.Errorf("unknown export format %q, use text or html", format)
	}
}
