// Package walog is the Durable Log (C2): a per-tablespace write-ahead log
// producing monotonically increasing sequence numbers.
package walog

// LSN is the totally ordered token produced by the Durable Log.
type LSN int64

// Entry is a single record appended to the log.
type Entry struct {
	Payload []byte
}

// Consumer receives log entries during recover or follow, in LSN order.
type Consumer func(lsn LSN, entry Entry) error

// Log is the Durable Log's contract. Batch appends are best-effort: on
// failure partway through a batch, which entries actually persisted is
// unspecified - callers must not assume all-or-nothing semantics.
type Log interface {
	StartWriting() error
	Close() error
	IsClosed() bool

	Log(entry Entry) (LSN, error)
	LogBatch(entries []Entry) ([]LSN, error)

	// Recover replays every entry from (and including) from to a consumer.
	// The fencing token is accepted but neither InMemory nor Pebble uses
	// it.
	Recover(from LSN, fencing int64, consumer Consumer) error

	// Follow delivers entries starting from from. InMemory blocks and
	// delivers entries as they are appended until the log is closed;
	// Pebble makes one pass over the entries present and returns.
	Follow(from LSN, consumer Consumer) error

	CurrentLSN() (LSN, error)
	Checkpoint() (LSN, error)
	Clear() error
}
