package walog

import (
	"sync"

	"github.com/squareup/shardnode/errors"
)

// InMemory is a Log backed by a plain slice, guarded by a mutex and a
// condition variable that wakes any in-progress Follow when a new entry
// arrives. It never persists anything - restart loses history.
type InMemory struct {
	lock    sync.Mutex
	cond    *sync.Cond
	entries []Entry
	closed  bool
}

func NewInMemory() *InMemory {
	m := &InMemory{}
	m.cond = sync.NewCond(&m.lock)
	return m
}

var _ Log = (*InMemory)(nil)

func (m *InMemory) StartWriting() error {
	return nil
}

func (m *InMemory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
	m.cond.Broadcast()
	return nil
}

func (m *InMemory) IsClosed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closed
}

func (m *InMemory) Log(entry Entry) (LSN, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return 0, errors.NewLogUnavailableError("", errors.NewNodeError(errors.LogUnavailable, "log is closed"))
	}
	m.entries = append(m.entries, entry)
	lsn := LSN(len(m.entries) - 1)
	m.cond.Broadcast()
	return lsn, nil
}

// LogBatch appends entries one at a time. If an append fails partway
// through, the entries already appended remain in the log - this mirrors
// the best-effort semantics of the interface: no rollback is attempted.
func (m *InMemory) LogBatch(entries []Entry) ([]LSN, error) {
	lsns := make([]LSN, 0, len(entries))
	for _, e := range entries {
		lsn, err := m.Log(e)
		if err != nil {
			return lsns, err
		}
		lsns = append(lsns, lsn)
	}
	return lsns, nil
}

func (m *InMemory) Recover(from LSN, fencing int64, consumer Consumer) error {
	m.lock.Lock()
	snapshot := append([]Entry(nil), m.entries...)
	m.lock.Unlock()
	for i := int(from); i < len(snapshot); i++ {
		if err := consumer(LSN(i), snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

// Follow blocks the calling goroutine, delivering entries as they arrive,
// until the log is closed.
func (m *InMemory) Follow(from LSN, consumer Consumer) error {
	next := int(from)
	for {
		m.lock.Lock()
		for next >= len(m.entries) && !m.closed {
			m.cond.Wait()
		}
		if next >= len(m.entries) && m.closed {
			m.lock.Unlock()
			return nil
		}
		entry := m.entries[next]
		m.lock.Unlock()

		if err := consumer(LSN(next), entry); err != nil {
			return err
		}
		next++
	}
}

func (m *InMemory) CurrentLSN() (LSN, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return LSN(len(m.entries) - 1), nil
}

func (m *InMemory) Checkpoint() (LSN, error) {
	return m.CurrentLSN()
}

func (m *InMemory) Clear() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries = nil
	return nil
}
