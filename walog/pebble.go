package walog

import (
	"github.com/cockroachdb/pebble"

	"github.com/squareup/shardnode/common"
	"github.com/squareup/shardnode/errors"
)

var syncWriteOptions = &pebble.WriteOptions{Sync: true}

// checkpointKey holds the last checkpointed LSN, kept out of the LSN
// keyspace so a prefix scan of the log never trips over it.
var checkpointKey = []byte{0xff}

// Pebble is a Log backed by a Pebble instance dedicated to a single
// tablespace: entries are keyed by their big-endian LSN so recover and
// follow are ordered prefix scans, and every write is synced - a
// tablespace's log is the durability boundary the rest of the system
// leans on.
type Pebble struct {
	db     *pebble.DB
	closed bool
}

func NewPebbleLog(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.NewLogUnavailableError(dir, err)
	}
	return &Pebble{db: db}, nil
}

var _ Log = (*Pebble)(nil)

func (p *Pebble) StartWriting() error {
	return nil
}

func (p *Pebble) Close() error {
	p.closed = true
	if err := p.db.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (p *Pebble) IsClosed() bool {
	return p.closed
}

func lsnKey(lsn LSN) []byte {
	return common.KeyEncodeInt64(nil, int64(lsn))
}

func (p *Pebble) nextLSN() (LSN, error) {
	current, err := p.CurrentLSN()
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (p *Pebble) Log(entry Entry) (LSN, error) {
	lsn, err := p.nextLSN()
	if err != nil {
		return 0, err
	}
	if err := p.db.Set(lsnKey(lsn), entry.Payload, syncWriteOptions); err != nil {
		return 0, errors.WithStack(err)
	}
	return lsn, nil
}

// LogBatch writes each entry with its own synced Set call. A failure
// partway through leaves whatever was already durably written in place -
// callers must not assume all-or-nothing semantics.
func (p *Pebble) LogBatch(entries []Entry) ([]LSN, error) {
	lsns := make([]LSN, 0, len(entries))
	for _, e := range entries {
		lsn, err := p.Log(e)
		if err != nil {
			return lsns, err
		}
		lsns = append(lsns, lsn)
	}
	return lsns, nil
}

func (p *Pebble) scan(from LSN, consumer Consumer, follow bool) error {
	iter := p.db.NewIter(&pebble.IterOptions{LowerBound: lsnKey(from)})
	defer common.InvokeCloser(iter)
	for iter.SeekGE(lsnKey(from)); iter.Valid(); iter.Next() {
		k := iter.Key()
		if len(k) == 1 && k[0] == checkpointKey[0] {
			continue
		}
		lsn, _ := common.DecodeInt64Key(common.CopyByteSlice(k), 0)
		payload := common.CopyByteSlice(iter.Value())
		if err := consumer(LSN(lsn), Entry{Payload: payload}); err != nil {
			return err
		}
	}
	return errors.WithStack(iter.Error())
}

func (p *Pebble) Recover(from LSN, fencing int64, consumer Consumer) error {
	return p.scan(from, consumer, false)
}

// Follow performs a single pass over what is currently durable and then
// returns; it does not wait for entries appended after the pass.
func (p *Pebble) Follow(from LSN, consumer Consumer) error {
	return p.scan(from, consumer, true)
}

func (p *Pebble) CurrentLSN() (LSN, error) {
	iter := p.db.NewIter(&pebble.IterOptions{})
	defer common.InvokeCloser(iter)
	var max LSN = -1
	for iter.First(); iter.Valid(); iter.Next() {
		k := iter.Key()
		if len(k) == 1 && k[0] == checkpointKey[0] {
			continue
		}
		lsn, _ := common.DecodeInt64Key(common.CopyByteSlice(k), 0)
		if LSN(lsn) > max {
			max = LSN(lsn)
		}
	}
	if err := iter.Error(); err != nil {
		return 0, errors.WithStack(err)
	}
	return max, nil
}

func (p *Pebble) Checkpoint() (LSN, error) {
	lsn, err := p.CurrentLSN()
	if err != nil {
		return 0, err
	}
	if err := p.db.Set(checkpointKey, lsnKey(lsn), syncWriteOptions); err != nil {
		return 0, errors.WithStack(err)
	}
	return lsn, nil
}

func (p *Pebble) Clear() error {
	iter := p.db.NewIter(&pebble.IterOptions{})
	defer common.InvokeCloser(iter)
	batch := p.db.NewBatch()
	for iter.First(); iter.Valid(); iter.Next() {
		if err := batch.Delete(common.CopyByteSlice(iter.Key()), nil); err != nil {
			return errors.WithStack(err)
		}
	}
	if err := iter.Error(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(p.db.Apply(batch, syncWriteOptions))
}
