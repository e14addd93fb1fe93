package reconcile

import "context"

// Sender is A's side of the session transport: a unidirectional batch
// stream A->B plus the ack/stop channel B->A (spec §5).
type Sender interface {
	// SendBatch transmits one iteration's cells to the peer.
	SendBatch(ctx context.Context, b Batch) error
	// RecvAck blocks for the peer's next ack (STOP or CONTINUE).
	RecvAck(ctx context.Context) (Ack, error)
}

// Receiver is B's side of the session transport.
type Receiver interface {
	// RecvBatch blocks for the peer's next batch.
	RecvBatch(ctx context.Context) (Batch, error)
	// SendAck transmits STOP or CONTINUE back to the peer.
	SendAck(ctx context.Context, a Ack) error
}
