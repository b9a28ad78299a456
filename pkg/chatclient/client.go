// Package chatclient holds the conversation state for a chat panel session.
// History lives only in memory and is wiped on Clear or process exit; the
// network side is an injected Transport so UIs and tests can swap it out.
package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"brainnotes/internal/util"
	"brainnotes/pkg/ai"
	"brainnotes/pkg/domain"
)

// State is the conversation phase of the chat panel.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateStreaming  State = "streaming"
	StateError      State = "error"
)

var (
	// ErrOffline reports a submit attempt while the network is down.
	ErrOffline = errors.New("offline")
	// ErrBusy reports a submit/clear while a request is in flight.
	ErrBusy = errors.New("request in flight")
	// ErrEmptyMessage reports a submit with nothing but whitespace.
	ErrEmptyMessage = errors.New("empty message")
	// ErrNothingToRetry reports a retry with no failed request recorded.
	ErrNothingToRetry = errors.New("nothing to retry")
	// ErrNothingToClear reports a clear with only the greeting present.
	ErrNothingToClear = errors.New("nothing to clear")
)

const (
	defaultGreeting = "Hi! I'm your notes assistant. I can find and summarize any information that you've saved. How can I help you today?"
	defaultErrorTTL = 5 * time.Second
	transientError  = "Failed to send message. Please try again."
)

// Transport opens one streamed chat request against the backend.
// Implementations must honor ctx cancellation by closing the channel.
type Transport interface {
	Send(ctx context.Context, messages []domain.ChatMessage, systemContext string) (<-chan ai.Chunk, error)
}

// Config configures a chat client.
type Config struct {
	Transport     Transport
	SystemContext string
	Greeting      string
	// OnChange is invoked after every observable mutation. Optional.
	OnChange func()
	// ErrorTTL is how long the transient error banner stays before
	// auto-clearing. Zero means the default of five seconds.
	ErrorTTL time.Duration
}

// Client is the chat conversation state machine.
type Client struct {
	transport     Transport
	systemContext string
	greeting      domain.ChatMessage
	onChange      func()
	errorTTL      time.Duration

	mu          sync.Mutex
	state       State
	messages    []domain.ChatMessage
	errText     string
	errEpoch    int
	online      bool
	cancel      context.CancelFunc
	lastRequest []domain.ChatMessage
}

// New constructs an idle client seeded with the greeting message.
func New(cfg Config) (*Client, error) {
	if cfg.Transport == nil {
		return nil, errors.New("transport required")
	}
	greeting := strings.TrimSpace(cfg.Greeting)
	if greeting == "" {
		greeting = defaultGreeting
	}
	errorTTL := cfg.ErrorTTL
	if errorTTL <= 0 {
		errorTTL = defaultErrorTTL
	}
	c := &Client{
		transport:     cfg.Transport,
		systemContext: cfg.SystemContext,
		greeting: domain.ChatMessage{
			ID:      "welcome",
			Role:    domain.RoleAssistant,
			Content: greeting,
		},
		onChange: cfg.OnChange,
		errorTTL: errorTTL,
		state:    StateIdle,
		online:   true,
	}
	c.messages = []domain.ChatMessage{c.greeting}
	return c, nil
}

// State returns the current conversation phase.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the conversation.
func (c *Client) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// ErrorText returns the transient banner text, empty when none is shown.
func (c *Client) ErrorText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

// Online reports the tracked network status.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// SetOnline tracks network status. Going offline only disables submission;
// the conversation and any typed input stay untouched.
func (c *Client) SetOnline(online bool) {
	c.mu.Lock()
	c.online = online
	c.mu.Unlock()
	c.notify()
}

// Submit appends a user message and opens a streamed request. Only one
// request may be in flight at a time.
func (c *Client) Submit(text string) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyMessage
	}
	if !c.online {
		c.mu.Unlock()
		return ErrOffline
	}
	if c.state == StateSubmitting || c.state == StateStreaming {
		c.mu.Unlock()
		return ErrBusy
	}
	c.errText = ""
	c.errEpoch++
	c.messages = append(c.messages, domain.ChatMessage{
		ID:      util.NewID(),
		Role:    domain.RoleUser,
		Content: text,
	})
	c.startRequestLocked()
	c.mu.Unlock()

	c.notify()
	return nil
}

// Stop aborts the in-flight request. Partial assistant content already
// received is kept as-is.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.state != StateSubmitting && c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateIdle
	c.mu.Unlock()
	c.notify()
}

// Retry resubmits the last failed request, dropping any partial assistant
// reply rendered before the failure.
func (c *Client) Retry() error {
	c.mu.Lock()
	if c.state != StateError || len(c.lastRequest) == 0 {
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	c.errText = ""
	c.errEpoch++
	c.messages = append([]domain.ChatMessage(nil), c.lastRequest...)
	c.startRequestLocked()
	c.mu.Unlock()

	c.notify()
	return nil
}

// Clear resets the conversation to the seed greeting. Unavailable while a
// request is in flight or when only the greeting exists.
func (c *Client) Clear() error {
	c.mu.Lock()
	if c.state == StateSubmitting || c.state == StateStreaming {
		c.mu.Unlock()
		return ErrBusy
	}
	if len(c.messages) <= 1 {
		c.mu.Unlock()
		return ErrNothingToClear
	}
	c.messages = []domain.ChatMessage{c.greeting}
	c.state = StateIdle
	c.errText = ""
	c.errEpoch++
	c.lastRequest = nil
	c.mu.Unlock()

	c.notify()
	return nil
}

// startRequestLocked snapshots the conversation, transitions to submitting,
// and launches the stream reader. Caller holds c.mu.
func (c *Client) startRequestLocked() {
	snapshot := make([]domain.ChatMessage, len(c.messages))
	copy(snapshot, c.messages)
	c.lastRequest = snapshot
	c.state = StateSubmitting

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx, snapshot)
}

// run pulls provider chunks and feeds them into the conversation until the
// stream ends, fails, or is cancelled.
func (c *Client) run(ctx context.Context, conversation []domain.ChatMessage) {
	chunks, err := c.transport.Send(ctx, conversation, c.systemContext)
	if err != nil {
		c.fail(ctx)
		return
	}
	for chunk := range chunks {
		if chunk.Err != nil {
			c.fail(ctx)
			return
		}
		c.appendAssistant(chunk.Content)
	}
	c.finish(ctx)
}

func (c *Client) appendAssistant(content string) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.state = StateStreaming
		c.messages = append(c.messages, domain.ChatMessage{
			ID:      util.NewID(),
			Role:    domain.RoleAssistant,
			Content: content,
		})
	case StateStreaming:
		c.messages[len(c.messages)-1].Content += content
	default:
		// Stopped or cleared while a chunk was in flight; drop it.
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Client) finish(ctx context.Context) {
	c.mu.Lock()
	if ctx.Err() != nil || (c.state != StateSubmitting && c.state != StateStreaming) {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.cancel = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Client) fail(ctx context.Context) {
	c.mu.Lock()
	// A user-initiated stop already settled the state; not an error.
	if ctx.Err() != nil || (c.state != StateSubmitting && c.state != StateStreaming) {
		c.mu.Unlock()
		return
	}
	c.state = StateError
	c.errText = transientError
	c.errEpoch++
	epoch := c.errEpoch
	c.cancel = nil
	c.mu.Unlock()
	c.notify()

	time.AfterFunc(c.errorTTL, func() { c.clearError(epoch) })
}

// clearError auto-dismisses the banner unless something newer replaced it.
func (c *Client) clearError(epoch int) {
	c.mu.Lock()
	if c.errEpoch != epoch || c.state != StateError {
		c.mu.Unlock()
		return
	}
	c.errText = ""
	c.state = StateIdle
	c.mu.Unlock()
	c.notify()
}

func (c *Client) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
