// ABOUTME: Wiring of config, logging, session storage and the API client
// ABOUTME: The expiry watcher prints the session-expired notice and clears the session

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/2389/antecedentes/internal/api"
	"github.com/2389/antecedentes/internal/config"
	"github.com/2389/antecedentes/internal/logging"
	"github.com/2389/antecedentes/internal/model"
	"github.com/2389/antecedentes/internal/session"
)

// expiryNoticeWait bounds how long an error report waits for the notice.
const expiryNoticeWait = time.Second

type app struct {
	cfg      *config.Client
	logger   *slog.Logger
	storage  *session.LocalStorage
	provider *session.Provider
	gate     *session.Gate
	client   *api.Client
	in       *bufio.Reader

	closeOnce sync.Once
	stopWatch context.CancelFunc
	noticed   chan struct{}
}

func newApp(ctx context.Context, verbose bool) (*app, error) {
	cfg, err := config.LoadClient("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.Setup(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	storage, err := session.OpenLocalStorage(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}
	provider := session.NewProvider(storage, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		provider: provider,
		gate:     session.NewGate(provider),
		in:       bufio.NewReader(os.Stdin),
		noticed:  make(chan struct{}),
	}
	a.client = api.NewClient(cfg.API.BaseURL, provider,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithUnauthorizedHandler(provider.Expire),
	)

	watchCtx, stop := context.WithCancel(ctx)
	a.stopWatch = stop
	go a.watchExpiry(provider.Subscribe(watchCtx))

	return a, nil
}

// watchExpiry renders the blocking notice. Its only action is clearing the
// session and sending the operator back to login.
func (a *app) watchExpiry(events <-chan session.Event) {
	for ev := range events {
		if ev.Kind != session.EventSessionError {
			continue
		}
		fmt.Fprintln(os.Stderr)
		color.New(color.FgYellow, color.Bold).Fprintln(os.Stderr, "  Session expired")
		fmt.Fprintln(os.Stderr, "  Your session is no longer valid. Sign in again with: antecedentes-admin login")
		fmt.Fprintln(os.Stderr)
		if err := a.provider.Clear(); err != nil {
			a.logger.Warn("clearing expired session", "error", err)
		}
		close(a.noticed)
		return
	}
}

// expired waits briefly for the expiry notice and reports whether it was shown.
func (a *app) expired() bool {
	select {
	case <-a.noticed:
		return true
	case <-time.After(expiryNoticeWait):
		return false
	}
}

func (a *app) Close() {
	a.closeOnce.Do(func() {
		a.stopWatch()
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("closing session storage", "error", err)
		}
	})
}

// require admits a stored session.
func (a *app) require(ctx context.Context) (*session.Session, error) {
	return a.gate.Require(ctx)
}

// requireWrite admits sessions whose role may mutate entities.
func (a *app) requireWrite(ctx context.Context) (*session.Session, error) {
	s, err := a.require(ctx)
	if err != nil {
		return nil, err
	}
	if !s.CanWrite() {
		return nil, fmt.Errorf("%s is read-only (role %s)", s.User.Username, s.User.DisplayRole())
	}
	return s, nil
}

// requireAdmin admits ADMIN sessions.
func (a *app) requireAdmin(ctx context.Context) (*session.Session, error) {
	s, err := a.require(ctx)
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, fmt.Errorf("account management requires the ADMIN role")
	}
	return s, nil
}

// describe renders err for the operator: API errors use the status table,
// validation errors list every field.
func describe(err error) string {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	return api.Message(err)
}
