// ABOUTME: Wiring shared by CLI commands: config, logger, local store, auth, and backend client
// ABOUTME: Commands open an app, use it, and close it before returning

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/2389/swavik-portal/internal/auth"
	"github.com/2389/swavik-portal/internal/chat"
	"github.com/2389/swavik-portal/internal/client"
	"github.com/2389/swavik-portal/internal/config"
	"github.com/2389/swavik-portal/internal/conversation"
	"github.com/2389/swavik-portal/internal/render"
	"github.com/2389/swavik-portal/internal/store"
)

// app holds everything a command needs.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	kv         store.Store
	directory  *auth.Directory
	sessions   *auth.Sessions
	out        io.Writer
	renderer   *render.Renderer
}

// openApp loads configuration and opens the local store.
func openApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	configPath, explicit := config.ResolvePath(flags.configPath)
	cfg, err := config.LoadOrDefault(configPath, explicit)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.serverURL != "" {
		cfg.Backend.BaseURL = flags.serverURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("--server: %w", err)
		}
	}

	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())

	kv, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	secret, err := auth.LoadOrCreateSecret(ctx, kv, cfg.Auth.SessionSecret)
	if err != nil {
		kv.Close()
		return nil, err
	}

	out := cmd.OutOrStdout()
	a := &app{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		kv:         kv,
		directory:  auth.NewDirectory(kv, cfg.Auth.MinPasswordLength, logger),
		sessions:   auth.NewSessions(kv, auth.NewTokenIssuer(secret), cfg.Auth.SessionTTL, logger),
		out:        out,
		renderer:   render.New(out, render.Options{Markdown: cfg.Render.Markdown, Style: cfg.Render.Style}),
	}

	logger.Debug("app opened", "config", configPath, "storage", cfg.Storage.Driver, "backend", cfg.Backend.BaseURL)
	return a, nil
}

func openStore(cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMockStore(), nil
	default:
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		return s, nil
	}
}

func (a *app) Close() error {
	return a.kv.Close()
}

// requireUser returns the signed-in username and a backend client carrying
// the session token.
func (a *app) requireUser(ctx context.Context) (string, *client.Client, error) {
	username, token, err := a.sessions.Current(ctx)
	switch {
	case errors.Is(err, auth.ErrNotSignedIn):
		return "", nil, errors.New("not signed in, run 'swavik login' first")
	case errors.Is(err, auth.ErrExpiredToken):
		return "", nil, errors.New("session expired, run 'swavik login' again")
	case err != nil:
		return "", nil, fmt.Errorf("checking session: %w", err)
	}
	return username, a.client(token), nil
}

func (a *app) client(token string) *client.Client {
	return client.New(a.cfg.Backend.BaseURL,
		client.WithToken(token),
		client.WithTimeout(a.cfg.Backend.RequestTimeout),
	)
}

// conversations loads the conversation store with a broadcaster attached.
func (a *app) conversations(ctx context.Context) (*conversation.Store, *conversation.Broadcaster) {
	cs := conversation.NewStore(a.kv, a.logger)
	b := conversation.NewBroadcaster(a.logger)
	cs.SetBroadcaster(b)
	cs.Load(ctx)
	return cs, b
}

func (a *app) session(cs *conversation.Store, answerer chat.Answerer) *chat.Session {
	return chat.NewSession(cs, answerer, chat.Options{
		AppName:    a.cfg.App.Name,
		TimeLayout: a.cfg.App.TimeLayout,
		Logger:     a.logger,
	})
}

// withApp adapts a command body that needs an open app into a cobra RunE.
func withApp(flags *rootFlags, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, flags)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}
