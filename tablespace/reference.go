package tablespace

import (
	"sync"

	"github.com/squareup/shardnode/common"
	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/statement"
	"github.com/squareup/shardnode/walog"
)

// Reference is the default Manager: a single-table key/value executor
// whose writes go through its own Log before becoming visible, and whose
// isFailed flag is tripped by any log or storage error - once true it
// never clears without the manager being closed and rebuilt by the
// Activator.
type Reference struct {
	deps    Deps
	lock    sync.RWMutex
	data    map[string][]byte
	isFail  common.AtomicBool
	started common.AtomicBool
}

func NewReference(deps Deps) *Reference {
	return &Reference{deps: deps, data: make(map[string][]byte)}
}

var _ Manager = (*Reference)(nil)

func (r *Reference) Start() error {
	if err := r.deps.Log.StartWriting(); err != nil {
		return errors.NewLogUnavailableError(string(r.deps.Descriptor.Name), err)
	}
	if err := r.deps.Log.Recover(0, 0, func(lsn walog.LSN, e walog.Entry) error {
		return r.apply(e.Payload)
	}); err != nil {
		return errors.NewLogUnavailableError(string(r.deps.Descriptor.Name), err)
	}
	r.started.Set(true)
	return nil
}

func (r *Reference) Close() error {
	r.started.Set(false)
	if err := r.deps.Log.Close(); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (r *Reference) IsLeader() bool {
	return r.deps.Descriptor.Leader == r.deps.NodeId
}

func (r *Reference) IsFailed() bool {
	return r.isFail.Get()
}

func (r *Reference) GetTableManager(name string) (TableManager, bool) {
	if name != "data" {
		return nil, false
	}
	return refTable{name: name}, true
}

type refTable struct{ name string }

func (t refTable) Name() string { return t.name }

// apply mutates in-memory state from a logged entry; the wire format is
// [1]byte op | key-length-prefixed key | value (value omitted for delete).
func (r *Reference) apply(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	op := payload[0]
	klen, off := common.ReadUint32FromBufferBE(payload, 1)
	key := payload[off : off+int(klen)]
	off += int(klen)

	r.lock.Lock()
	defer r.lock.Unlock()
	switch op {
	case opDelete:
		delete(r.data, string(key))
	default:
		r.data[string(key)] = common.CopyByteSlice(payload[off:])
	}
	return nil
}

const (
	opUpsert byte = 0
	opDelete byte = 1
)

func encodeEntry(op byte, key, value []byte) []byte {
	buff := []byte{op}
	buff = common.AppendUint32ToBufferBE(buff, uint32(len(key)))
	buff = append(buff, key...)
	buff = append(buff, value...)
	return buff
}

func (r *Reference) ExecuteStatement(stmt statement.Statement) (statement.StatementResult, error) {
	switch stmt.Kind {
	case statement.KindGet:
		r.lock.RLock()
		v, ok := r.data[string(stmt.Key)]
		r.lock.RUnlock()
		return statement.GetResult(v, ok), nil
	case statement.KindInsert, statement.KindUpdate:
		return r.write(opUpsert, stmt.Key, stmt.Value)
	case statement.KindDelete:
		return r.write(opDelete, stmt.Key, nil)
	default:
		return statement.StatementResult{}, errors.NewInvalidStatementError("unsupported statement kind for this tablespace")
	}
}

func (r *Reference) write(op byte, key, value []byte) (statement.StatementResult, error) {
	entry := walog.Entry{Payload: encodeEntry(op, key, value)}
	if _, err := r.deps.Log.Log(entry); err != nil {
		r.isFail.Set(true)
		return statement.StatementResult{}, errors.NewStatementExecutionError(err.Error())
	}
	if err := r.apply(entry.Payload); err != nil {
		r.isFail.Set(true)
		return statement.StatementResult{}, errors.NewStatementExecutionError(err.Error())
	}
	return statement.DMLResult(1, key), nil
}

func (r *Reference) Flush() error {
	_, err := r.deps.Log.Checkpoint()
	if err != nil {
		r.isFail.Set(true)
		return errors.NewLogUnavailableError(string(r.deps.Descriptor.Name), err)
	}
	return nil
}
