package reconcile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/toto9820/rateless-reconcile/cell"
)

// Batch is one iteration's worth of cells, framed per the canonical
// on-wire format (spec §6): u32 iteration_index (1-based), u32
// row_count, then per row i64 counter, u64 xor_sum, optional u64
// checksum.
type Batch struct {
	Iteration int
	Cells     []cell.Cell
}

// WriteBatch frames b onto w in the canonical little-endian wire
// format. checksummed MUST match the session's negotiated checksum
// mode; the checksum field is only written when true.
func WriteBatch(w io.Writer, b Batch, checksummed bool) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(b.Iteration))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(b.Cells)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("reconcile: write batch header: %w", err)
	}

	rowSize := 16
	if checksummed {
		rowSize = 24
	}
	buf := make([]byte, rowSize)
	for _, c := range b.Cells {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(c.Counter))
		binary.LittleEndian.PutUint64(buf[8:16], c.XorSum)
		if checksummed {
			binary.LittleEndian.PutUint64(buf[16:24], c.Checksum)
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("reconcile: write batch row: %w", err)
		}
	}
	return nil
}

// ReadBatch reads one framed batch from r. expectedRowCount, when
// non-negative, is validated against the wire row_count per spec §6
// ("row_count MUST equal method's r_i for this iteration"); a mismatch
// is a ProtocolViolation.
func ReadBatch(r io.Reader, checksummed bool, expectedRowCount int) (Batch, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Batch{}, fmt.Errorf("reconcile: read batch header: %w", err)
	}
	iteration := int(binary.LittleEndian.Uint32(header[0:4]))
	rowCount := int(binary.LittleEndian.Uint32(header[4:8]))

	if expectedRowCount >= 0 && rowCount != expectedRowCount {
		return Batch{}, newError(KindProtocolViolation,
			fmt.Errorf("batch row_count %d != expected %d for iteration %d", rowCount, expectedRowCount, iteration))
	}

	rowSize := 16
	if checksummed {
		rowSize = 24
	}
	buf := make([]byte, rowSize)
	cells := make([]cell.Cell, rowCount)
	for i := range cells {
		if _, err := io.ReadFull(r, buf); err != nil {
			return Batch{}, fmt.Errorf("reconcile: read batch row %d: %w", i, err)
		}
		cells[i].Counter = int64(binary.LittleEndian.Uint64(buf[0:8]))
		cells[i].XorSum = binary.LittleEndian.Uint64(buf[8:16])
		if checksummed {
			cells[i].Checksum = binary.LittleEndian.Uint64(buf[16:24])
		}
	}
	return Batch{Iteration: iteration, Cells: cells}, nil
}

// Ack is the single-byte B->A control message: StopByte or ContinueByte.
type Ack byte

const (
	StopByte     Ack = 0
	ContinueByte Ack = 1
)

// WriteAck writes a single ack byte.
func WriteAck(w io.Writer, a Ack) error {
	_, err := w.Write([]byte{byte(a)})
	if err != nil {
		return fmt.Errorf("reconcile: write ack: %w", err)
	}
	return nil
}

// ReadAck reads a single ack byte.
func ReadAck(r io.Reader) (Ack, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("reconcile: read ack: %w", err)
	}
	return Ack(buf[0]), nil
}

// ChecksumModeByte is the single session-start byte negotiating
// checksum mode: 0 = superset-asserted (checksum omitted), 1 = general.
func ChecksumModeByte(supersetAssumption bool) byte {
	if supersetAssumption {
		return 0
	}
	return 1
}
