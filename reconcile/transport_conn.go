package reconcile

import (
	"context"
	"io"
	"sync"
)

// ConnSender and ConnReceiver frame the wire format (wire.go) over any
// io.ReadWriter — a real net.Conn, in particular — rather than the
// in-process ChanPair. Grounded on the Hub pattern in
// leanlp-BTC-coinjoin/internal/api/websocket.go: a mutex-guarded
// connection shared by one writer goroutine, generalized here from a
// websocket-specific hub to a plain io.ReadWriter so any transport
// (TCP, unix socket, in-memory pipe) can host a reconciliation session.
//
// Cancellation caveat: ctx is only checked before issuing a read or
// write, not mid-syscall — io.ReadWriter gives no deadline hook. Callers
// needing true cancellation should wrap rw in a net.Conn and arrange
// their own SetDeadline via ctx, then still pass it here.
type connSender struct {
	rw          io.ReadWriter
	checksummed bool
	mu          sync.Mutex
}

// NewConnSender wraps rw as A's session transport.
func NewConnSender(rw io.ReadWriter, checksummed bool) Sender {
	return &connSender{rw: rw, checksummed: checksummed}
}

func (s *connSender) SendBatch(ctx context.Context, b Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteBatch(s.rw, b, s.checksummed)
}

func (s *connSender) RecvAck(ctx context.Context) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReadAck(s.rw)
}

type connReceiver struct {
	rw              io.ReadWriter
	checksummed     bool
	rowsInIteration func(iteration int) int // nil skips row_count validation
	mu              sync.Mutex
}

// NewConnReceiver wraps rw as B's session transport. rowsInIteration, if
// non-nil, validates each batch's wire row_count against the mapping
// method's expected r_i (spec §6); pass the generator's RowsInIteration.
func NewConnReceiver(rw io.ReadWriter, checksummed bool, rowsInIteration func(int) int) Receiver {
	return &connReceiver{rw: rw, checksummed: checksummed, rowsInIteration: rowsInIteration}
}

func (r *connReceiver) RecvBatch(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	expected := -1
	// iteration isn't known before the header is read, so a first pass
	// reads with no expectation, then a post-hoc check below catches a
	// mismatch once the iteration number is known.
	b, err := ReadBatch(r.rw, r.checksummed, expected)
	if err != nil {
		return Batch{}, err
	}
	if r.rowsInIteration != nil {
		if want := r.rowsInIteration(b.Iteration); want != len(b.Cells) {
			return Batch{}, newError(KindProtocolViolation, nil)
		}
	}
	return b, nil
}

func (r *connReceiver) SendAck(ctx context.Context, a Ack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return WriteAck(r.rw, a)
}
