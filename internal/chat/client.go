// Package chat manages one streaming conversation with the chat service:
// the session handshake, the duplex stream, incremental reply assembly and
// teardown.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// Defaults for a Client.
const (
	DefaultOpenTimeout    = 10 * time.Second
	DefaultTypingInterval = 15 * time.Millisecond
)

// User-visible status lines appended to the log.
const (
	msgOpenTimeout = "Could not open the chat stream in time. The chat service may be unreachable."
	msgClosed      = "Chat session closed."
	msgLost        = "Connection to the chat service was lost. The backend may be unreachable."
)

// ErrOpenTimeout is returned by Connect when the stream did not open in time.
var ErrOpenTimeout = errors.New("chat stream open timed out")

// State is the lifecycle stage of a Client.
type State int

const (
	StateIdle State = iota
	StateHandshaking
	StateOpening
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateOpening:
		return "opening"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Client.
type Option func(*Client)

// WithOpenTimeout bounds how long the stream may take to open.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.openTimeout = d
		}
	}
}

// WithTypingInterval sets how often one buffered character is revealed.
func WithTypingInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.typingInterval = d
		}
	}
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

type typingTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// Client is a streaming chat session. All methods are safe for concurrent
// use; subscribers are called without internal locks held.
type Client struct {
	sessions SessionCreator
	dialer   Dialer
	stats    StatsSource
	now      func() time.Time

	openTimeout    time.Duration
	typingInterval time.Duration

	mu            sync.Mutex
	state         State
	gen           uint64
	conn          Conn
	cancelConnect context.CancelFunc
	sessionID     string
	messages      []model.Message
	inflight      int
	awaiting      bool
	buffer        typingBuffer
	typing        *typingTimer

	lmu       sync.Mutex
	listeners map[int]func()
	nextID    int
}

// New creates an idle Client.
func New(sessions SessionCreator, dialer Dialer, stats StatsSource, opts ...Option) *Client {
	c := &Client{
		sessions:       sessions,
		dialer:         dialer,
		stats:          stats,
		now:            time.Now,
		openTimeout:    DefaultOpenTimeout,
		typingInterval: DefaultTypingInterval,
		inflight:       -1,
		listeners:      make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect performs the handshake and opens the stream. It is a no-op while a
// connection is being established or is open. Failures are also reported as
// system messages in the log.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateHandshaking, StateOpening, StateConnected:
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(ctx)
	c.cancelConnect = cancel
	c.state = StateHandshaking
	c.mu.Unlock()
	c.notify()
	defer cancel()

	chatCtx := c.stats.ChatContext()
	session, err := c.sessions.CreateSession(ctx, &chatCtx)
	if err == nil && (session == nil || session.WebsocketURL == "") {
		err = errors.New("no stream endpoint returned")
	}
	if err != nil {
		c.fail(gen, "Could not start a chat session: "+reason(err))
		return fmt.Errorf("create chat session: %w", err)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return nil
	}
	c.sessionID = session.SessionID
	c.state = StateOpening
	c.mu.Unlock()
	c.notify()

	openCtx, cancelOpen := context.WithTimeout(ctx, c.openTimeout)
	conn, err := c.dialer.Dial(openCtx, session.WebsocketURL)
	timedOut := errors.Is(openCtx.Err(), context.DeadlineExceeded)
	cancelOpen()

	if err == nil && timedOut {
		_ = conn.Close()
		err = openCtx.Err()
	}
	if err != nil {
		if timedOut {
			slog.Warn("Chat stream did not open in time", "timeout", c.openTimeout, "session_id", session.SessionID)
			c.fail(gen, msgOpenTimeout)
			return ErrOpenTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		common.LogError(err, "Chat stream failed to open", common.Fields{"session_id": session.SessionID})
		c.fail(gen, msgLost)
		return fmt.Errorf("open chat stream: %w", err)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.state = StateConnected
	c.cancelConnect = nil
	c.mu.Unlock()

	slog.Info("Chat session connected", "session_id", session.SessionID)
	c.notify()

	go c.readLoop(gen, conn)
	return nil
}

// Reconnect starts a new session after the previous one closed. It does
// nothing while a session is being established or is open.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.state = StateIdle
	}
	c.mu.Unlock()
	return c.Connect(ctx)
}

// Disconnect closes the stream, forgets the session and clears the log.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	conn := c.conn
	if c.cancelConnect != nil {
		c.cancelConnect()
		c.cancelConnect = nil
	}
	c.conn = nil
	c.state = StateIdle
	c.sessionID = ""
	c.messages = nil
	c.inflight = -1
	c.awaiting = false
	c.buffer.reset()
	c.stopTypingLocked()
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			slog.Debug("Closing chat stream", "error", err)
		}
	}
	c.notify()
}

// Send appends text as a user message and transmits it with the current
// aggregate context. It fails without touching the stream when the client
// is not connected, a reply is pending or text is blank.
func (c *Client) Send(text string) error {
	c.mu.Lock()
	switch {
	case c.state != StateConnected:
		c.mu.Unlock()
		return common.ErrNotConnected
	case c.awaiting:
		c.mu.Unlock()
		return common.ErrAwaitingReply
	case strings.TrimSpace(text) == "":
		c.mu.Unlock()
		return common.ErrEmptyMessage
	}
	gen := c.gen
	conn := c.conn
	c.messages = append(c.messages, model.NewMessage(model.RoleUser, text, c.now()))
	c.awaiting = true
	c.mu.Unlock()
	c.notify()

	chatCtx := c.stats.ChatContext()
	if err := conn.WriteFrame(Frame{Type: FrameMessage, Content: text, Context: &chatCtx}); err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.awaiting = false
		}
		c.mu.Unlock()
		c.notify()
		return fmt.Errorf("send chat message: %w", err)
	}
	return nil
}

// Messages returns a copy of the conversation log.
func (c *Client) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// SessionID returns the current session identifier, if any.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// State returns the lifecycle stage.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Awaiting reports whether a sent message has not been answered yet.
func (c *Client) Awaiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaiting
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription and may be called more than once.
func (c *Client) Subscribe(fn func()) func() {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.lmu.Lock()
			delete(c.listeners, id)
			c.lmu.Unlock()
		})
	}
}

func (c *Client) notify() {
	c.lmu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// fail moves an attempt that is still current to Closed with a status line.
func (c *Client) fail(gen uint64, text string) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.cancelConnect = nil
	c.appendSystemLocked(text)
	c.mu.Unlock()
	c.notify()
}

func (c *Client) readLoop(gen uint64, conn Conn) {
	for {
		f, err := conn.ReadFrame()
		if err != nil {
			c.closed(gen, err)
			return
		}
		if !c.handleFrame(gen, f) {
			return
		}
	}
}

// handleFrame applies one inbound frame. It reports false once the stream
// no longer belongs to the current session.
func (c *Client) handleFrame(gen uint64, f Frame) bool {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}

	switch f.Type {
	case FrameSystem:
		c.appendSystemLocked(f.Content)

	case FrameChunk:
		if c.inflight < 0 {
			msg := model.NewMessage(model.RoleAssistant, "", c.now())
			msg.Streaming = true
			c.messages = append(c.messages, msg)
			c.inflight = len(c.messages) - 1
		}
		c.buffer.write(f.Content)
		c.startTypingLocked()

	case FrameDone:
		c.stopTypingLocked()
		if c.inflight >= 0 {
			msg := &c.messages[c.inflight]
			msg.Content += c.buffer.flush()
			msg.Streaming = false
		}
		c.buffer.reset()
		c.inflight = -1
		c.awaiting = false

	case FrameError:
		c.stopTypingLocked()
		c.discardInflightLocked()
		c.appendSystemLocked("Error: " + f.Content)
		c.awaiting = false

	default:
		c.mu.Unlock()
		slog.Warn("Ignoring unknown chat frame", "type", f.Type)
		return true
	}

	c.mu.Unlock()
	c.notify()
	return true
}

// closed handles the end of the stream for a session that is still current.
// Text that was already received is kept.
func (c *Client) closed(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.stopTypingLocked()
	if c.inflight >= 0 {
		msg := &c.messages[c.inflight]
		msg.Content += c.buffer.flush()
		msg.Streaming = false
	}
	c.buffer.reset()
	c.inflight = -1
	c.awaiting = false
	conn := c.conn
	c.conn = nil
	c.state = StateClosed
	c.appendSystemLocked(closeMessage(err))
	c.mu.Unlock()

	slog.Info("Chat session ended", "reason", err)
	if conn != nil {
		_ = conn.Close()
	}
	c.notify()
}

func (c *Client) appendSystemLocked(text string) {
	c.messages = append(c.messages, model.NewMessage(model.RoleSystem, text, c.now()))
}

func (c *Client) discardInflightLocked() {
	c.buffer.reset()
	if c.inflight >= 0 {
		c.messages = append(c.messages[:c.inflight], c.messages[c.inflight+1:]...)
	}
	c.inflight = -1
}

func (c *Client) startTypingLocked() {
	if c.typing != nil || c.buffer.empty() {
		return
	}
	t := &typingTimer{
		ticker: time.NewTicker(c.typingInterval),
		stop:   make(chan struct{}),
	}
	c.typing = t

	go func() {
		for {
			select {
			case <-t.ticker.C:
				c.typeNext(t)
			case <-t.stop:
				return
			}
		}
	}()
}

func (c *Client) stopTypingLocked() {
	if c.typing == nil {
		return
	}
	c.typing.ticker.Stop()
	close(c.typing.stop)
	c.typing = nil
}

// typeNext reveals one buffered character and stops the ticker once the
// buffer is drained.
func (c *Client) typeNext(t *typingTimer) {
	c.mu.Lock()
	if c.typing != t {
		c.mu.Unlock()
		return
	}
	r, ok := c.buffer.next()
	if ok && c.inflight >= 0 {
		c.messages[c.inflight].Content += string(r)
	}
	if c.buffer.empty() {
		c.stopTypingLocked()
	}
	c.mu.Unlock()

	if ok {
		c.notify()
	}
}

// typingActive reports whether the typing ticker is running.
func (c *Client) typingActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing != nil
}

// closeMessage picks the status line for a stream that ended with err.
func closeMessage(err error) string {
	var cr *CloseReason
	if !errors.As(err, &cr) {
		return msgLost
	}
	switch cr.Code {
	case CloseNormal:
		return msgClosed
	case CloseAbnormal:
		return msgLost
	default:
		text := cr.Text
		if text == "" {
			text = "no reason given"
		}
		return fmt.Sprintf("The server closed the chat session (code %d: %s).", cr.Code, text)
	}
}

func reason(err error) string {
	var se *common.ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
