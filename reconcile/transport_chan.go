package reconcile

import "context"

// ChanPair is the default, in-process session transport: two simplex
// Go channels (cells A->B, acks B->A), matching spec §5's "abstracted
// as two simplex channels" model directly rather than layering a byte
// codec over them. Safe for exactly one Sender and one Receiver.
type ChanPair struct {
	batches chan Batch
	acks    chan Ack
}

// NewChanPair constructs a connected Sender/Receiver pair backed by
// buffered channels (capacity 1 is enough: the rateless driver is
// strictly request/response, one batch in flight at a time).
func NewChanPair() (Sender, Receiver) {
	p := &ChanPair{
		batches: make(chan Batch, 1),
		acks:    make(chan Ack, 1),
	}
	return (*chanSender)(p), (*chanReceiver)(p)
}

type chanSender ChanPair

func (s *chanSender) SendBatch(ctx context.Context, b Batch) error {
	select {
	case s.batches <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chanSender) RecvAck(ctx context.Context) (Ack, error) {
	select {
	case a := <-s.acks:
		return a, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type chanReceiver ChanPair

func (r *chanReceiver) RecvBatch(ctx context.Context) (Batch, error) {
	select {
	case b := <-r.batches:
		return b, nil
	case <-ctx.Done():
		return Batch{}, ctx.Err()
	}
}

func (r *chanReceiver) SendAck(ctx context.Context, a Ack) error {
	select {
	case r.acks <- a:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
