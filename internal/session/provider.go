// ABOUTME: Session provider owning the stored token and user profile
// ABOUTME: Fans out a one-shot session-expired event to subscribers

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/antecedentes/internal/model"
)

// EventSessionError is published when the API rejects the stored token.
const EventSessionError = "session-error"

const subscriberBufferSize = 1

// Event is a session lifecycle notification.
type Event struct {
	Kind   string
	Reason string
	At     time.Time
}

// Provider reads and writes the session pair and notifies on expiry.
type Provider struct {
	storage Storage
	logger  *slog.Logger

	mu          sync.Mutex
	armed       bool
	subscribers map[string]chan Event
}

// NewProvider creates a provider over storage. Pass nil logger for default.
// The expiry notifier starts armed when a token is already stored.
func NewProvider(storage Storage, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		storage:     storage,
		logger:      logger.With("component", "session"),
		subscribers: make(map[string]chan Event),
	}
	p.armed = p.Token() != ""
	return p
}

// Token returns the stored access token, or "" when there is none.
// Storage is read on every call.
func (p *Provider) Token() string {
	token, ok, err := p.storage.Get(KeyToken)
	if err != nil {
		p.logger.Warn("reading token failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// User returns the stored user profile, or nil when there is none.
func (p *Provider) User() (*model.User, error) {
	raw, ok, err := p.storage.Get(KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return &u, nil
}

// Save stores a fresh login and re-arms the expiry notifier.
func (p *Provider) Save(token string, user *model.User) error {
	if token == "" {
		return fmt.Errorf("saving session: empty token")
	}
	if user == nil {
		return fmt.Errorf("saving session: missing user")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := p.storage.Set(KeyToken, token); err != nil {
		return err
	}
	if err := p.storage.Set(KeyUser, string(raw)); err != nil {
		// A token without its user is not a session.
		if rerr := p.storage.Remove(KeyToken); rerr != nil {
			p.logger.Warn("removing token after failed save", "error", rerr)
		}
		return err
	}

	p.mu.Lock()
	p.armed = true
	p.mu.Unlock()
	return nil
}

// Clear removes the stored session. Calling it with no session is a no-op.
func (p *Provider) Clear() error {
	if err := p.storage.Remove(KeyToken); err != nil {
		return err
	}
	if err := p.storage.Remove(KeyUser); err != nil {
		return err
	}

	p.mu.Lock()
	p.armed = false
	p.mu.Unlock()
	return nil
}

// Subscribe registers for session events until ctx is cancelled.
func (p *Provider) Subscribe(ctx context.Context) <-chan Event {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	p.mu.Lock()
	p.subscribers[subID] = ch
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.unsubscribe(subID)
	}()

	return ch
}

func (p *Provider) unsubscribe(subID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.subscribers[subID]
	if !ok {
		return
	}
	delete(p.subscribers, subID)
	close(ch)
}

// Expire publishes EventSessionError once per armed session. It reports
// whether the event was published.
func (p *Provider) Expire(reason string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.armed {
		return false
	}
	p.armed = false

	event := Event{Kind: EventSessionError, Reason: reason, At: time.Now()}
	for id, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			p.logger.Debug("dropped session event for slow subscriber", "sub_id", id)
		}
	}

	p.logger.Info("session expired", "reason", reason, "subscribers", len(p.subscribers))
	return true
}
