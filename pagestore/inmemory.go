package pagestore

import (
	"sync"

	"github.com/google/btree"

	"github.com/squareup/shardnode/common"
	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/walog"
)

type keyItem struct {
	key []byte
}

func (k *keyItem) Less(than btree.Item) bool {
	return common.CompareKeys(k.key, than.(*keyItem).key) < 0 //nolint:forcetypeassert
}

type tableState struct {
	pages     [][][]byte
	keys      *btree.BTree
	checkpoint walog.LSN
}

// InMemory is a Store backed by plain slices and a per-table btree of
// keys, used for tests and single-node deployments with no persistence
// requirement.
type InMemory struct {
	lock       sync.RWMutex
	tables     map[string]*tableState
	tsTables   map[string][]Table
	checkpoint walog.LSN
}

func NewInMemory() *InMemory {
	return &InMemory{
		tables:   make(map[string]*tableState),
		tsTables: make(map[string][]Table),
	}
}

var _ Store = (*InMemory)(nil)

func (s *InMemory) Start() error { return nil }
func (s *InMemory) Close() error { return nil }

func (s *InMemory) tableFor(table string) *tableState {
	t, ok := s.tables[table]
	if !ok {
		t = &tableState{keys: btree.New(3)}
		s.tables[table] = t
	}
	return t
}

func (s *InMemory) LoadPage(table string, pageId PageId) ([][]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	t, ok := s.tables[table]
	if !ok || int(pageId) < 0 || int(pageId) >= len(t.pages) {
		return nil, errors.NewStorageUnavailableError(errors.NewNodeError(errors.StorageUnavailable, "no such page"))
	}
	return t.pages[pageId], nil
}

func (s *InMemory) LoadExistingKeys(table string, consumer KeyConsumer) error {
	s.lock.RLock()
	t, ok := s.tables[table]
	s.lock.RUnlock()
	if !ok {
		return nil
	}
	var consumeErr error
	t.keys.Ascend(func(i btree.Item) bool {
		if err := consumer(i.(*keyItem).key); err != nil { //nolint:forcetypeassert
			consumeErr = err
			return false
		}
		return true
	})
	return consumeErr
}

func (s *InMemory) WritePage(table string, lsn walog.LSN, records [][]byte) (PageId, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	t := s.tableFor(table)
	t.pages = append(t.pages, records)
	for _, rec := range records {
		t.keys.ReplaceOrInsert(&keyItem{key: common.CopyByteSlice(rec)})
	}
	t.checkpoint = lsn
	return PageId(len(t.pages) - 1), nil
}

func (s *InMemory) ActualNumberOfPages(table string) (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	t, ok := s.tables[table]
	if !ok {
		return 0, nil
	}
	return len(t.pages), nil
}

func (s *InMemory) LoadTables(lsn walog.LSN, tableSpace string) ([]Table, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]Table(nil), s.tsTables[tableSpace]...), nil
}

func (s *InMemory) WriteTables(tableSpace string, lsn walog.LSN, tables []Table) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tsTables[tableSpace] = append([]Table(nil), tables...)
	s.checkpoint = lsn
	return nil
}

func (s *InMemory) LastCheckpointLSN() (walog.LSN, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.checkpoint, nil
}
