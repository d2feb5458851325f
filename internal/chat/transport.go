package chat

import (
	"context"
	"fmt"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// FrameType discriminates stream frames.
type FrameType string

const (
	FrameSystem  FrameType = "system"
	FrameChunk   FrameType = "chunk"
	FrameDone    FrameType = "done"
	FrameError   FrameType = "error"
	FrameMessage FrameType = "message"
)

// Frame is one message exchanged over the chat stream.
type Frame struct {
	Context *model.ChatContext `json:"context,omitempty"`
	Type    FrameType          `json:"type"`
	Content string             `json:"content"`
}

// Close codes the client distinguishes.
const (
	CloseNormal   = 1000
	CloseAbnormal = 1006
)

// CloseReason is returned by Conn.ReadFrame when the peer closed the stream.
type CloseReason struct {
	Text string
	Code int
}

func (r *CloseReason) Error() string {
	return fmt.Sprintf("chat stream closed (code %d: %s)", r.Code, r.Text)
}

// Conn is an open chat stream. ReadFrame blocks until a frame arrives or the
// stream ends; Close may be called concurrently with ReadFrame.
type Conn interface {
	ReadFrame() (Frame, error)
	WriteFrame(Frame) error
	Close() error
}

// Dialer opens chat streams.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// SessionCreator performs the chat handshake.
type SessionCreator interface {
	CreateSession(ctx context.Context, chatCtx *model.ChatContext) (*model.ChatSession, error)
}

// StatsSource supplies the aggregate context sent with each message.
type StatsSource interface {
	ChatContext() model.ChatContext
}
