package chat

import (
	"context"
	"net"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) CreateSession(ctx context.Context, chatCtx *model.ChatContext) (*model.ChatSession, error) {
	args := m.Called(ctx, chatCtx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatSession), args.Error(1)
}

type staticStats struct {
	ctx model.ChatContext
}

func (s staticStats) ChatContext() model.ChatContext {
	return s.ctx
}

var testStats = staticStats{ctx: model.ChatContext{
	TotalSpent:     decimal.NewFromInt(118),
	TotalInvoices:  1,
	TotalSuppliers: 1,
}}

type inbound struct {
	err   error
	frame Frame
}

// fakeConn is an in-memory stream. Frames pushed by the test are read by the
// client in order.
type fakeConn struct {
	inbound   chan inbound
	closedCh  chan struct{}
	writeErr  error
	written   []Frame
	mu        sync.Mutex
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound:  make(chan inbound, 16),
		closedCh: make(chan struct{}),
	}
}

func (f *fakeConn) ReadFrame() (Frame, error) {
	select {
	case in := <-f.inbound:
		return in.frame, in.err
	case <-f.closedCh:
		return Frame{}, net.ErrClosed
	}
}

func (f *fakeConn) WriteFrame(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, fr)
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closedCh) })
	return nil
}

func (f *fakeConn) push(t FrameType, content string) {
	f.inbound <- inbound{frame: Frame{Type: t, Content: content}}
}

func (f *fakeConn) fail(err error) {
	f.inbound <- inbound{err: err}
}

func (f *fakeConn) frames() []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Frame(nil), f.written...)
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closedCh:
		return true
	default:
		return false
	}
}

// fakeDialer hands out conns in order. With block set it waits for the
// context instead.
type fakeDialer struct {
	err   error
	conns []*fakeConn
	urls  []string
	mu    sync.Mutex
	block bool
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	block, err := d.block, d.err
	var conn *fakeConn
	if len(d.conns) > 0 {
		conn, d.conns = d.conns[0], d.conns[1:]
	}
	d.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}
