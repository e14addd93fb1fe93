package reconcile_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toto9820/rateless-reconcile/cell"
	"github.com/toto9820/rateless-reconcile/reconcile"
)

// newTestContext returns a context bounded to the test's lifetime, so a
// stuck transport call fails the test instead of hanging it.
func newTestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestWriteReadBatch_RoundTrip_Checksummed(t *testing.T) {
	var buf bytes.Buffer
	want := reconcile.Batch{
		Iteration: 3,
		Cells: []cell.Cell{
			{Counter: 1, XorSum: 42, Checksum: 1234},
			{Counter: -2, XorSum: 7, Checksum: 0},
		},
	}

	require.NoError(t, reconcile.WriteBatch(&buf, want, true))
	got, err := reconcile.ReadBatch(&buf, true, len(want.Cells))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteReadBatch_RoundTrip_NoChecksum(t *testing.T) {
	var buf bytes.Buffer
	want := reconcile.Batch{
		Iteration: 1,
		Cells:     []cell.Cell{{Counter: 1, XorSum: 99}},
	}

	require.NoError(t, reconcile.WriteBatch(&buf, want, false))
	got, err := reconcile.ReadBatch(&buf, false, -1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadBatch_RejectsRowCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	b := reconcile.Batch{Iteration: 1, Cells: []cell.Cell{{Counter: 1, XorSum: 1}}}
	require.NoError(t, reconcile.WriteBatch(&buf, b, false))

	_, err := reconcile.ReadBatch(&buf, false, 2)
	require.Error(t, err)
}

func TestWriteReadAck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reconcile.WriteAck(&buf, reconcile.StopByte))
	a, err := reconcile.ReadAck(&buf)
	require.NoError(t, err)
	assert.Equal(t, reconcile.StopByte, a)
}

func TestConnTransport_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sender := reconcile.NewConnSender(&buf, true)
	receiver := reconcile.NewConnReceiver(&buf, true, nil)

	ctx := newTestContext(t)
	b := reconcile.Batch{Iteration: 1, Cells: []cell.Cell{{Counter: 1, XorSum: 5, Checksum: 9}}}
	require.NoError(t, sender.SendBatch(ctx, b))

	got, err := receiver.RecvBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	require.NoError(t, receiver.SendAck(ctx, reconcile.ContinueByte))
	a, err := sender.RecvAck(ctx)
	require.NoError(t, err)
	assert.Equal(t, reconcile.ContinueByte, a)
}
