package pagestore

import (
	"sort"

	"github.com/cockroachdb/pebble"

	"github.com/squareup/shardnode/common"
	"github.com/squareup/shardnode/errors"
	"github.com/squareup/shardnode/walog"
)

var syncWriteOptions = &pebble.WriteOptions{Sync: true}
var nosyncWriteOptions = &pebble.WriteOptions{Sync: false}

const (
	pagePrefix       byte = 1
	pageCountPrefix  byte = 2
	tablesPrefix     byte = 3
	checkpointPrefix byte = 4
)

// Pebble is a Store backed by a single Pebble instance shared by every
// table in a tablespace; keys are namespaced by a one-byte prefix per
// concern, then by table name, then (for pages) by page id.
type Pebble struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.NewStorageUnavailableError(err)
	}
	return &Pebble{db: db}, nil
}

var _ Store = (*Pebble)(nil)

func (p *Pebble) Start() error { return nil }

func (p *Pebble) Close() error {
	return errors.WithStack(p.db.Close())
}

func pageKey(table string, pageId PageId) []byte {
	buff := []byte{pagePrefix}
	buff = common.KeyEncodeString(buff, table)
	buff = append(buff, 0) // separator so table names cannot collide with the page id suffix
	return common.KeyEncodeInt64(buff, int64(pageId))
}

func pageCountKey(table string) []byte {
	buff := []byte{pageCountPrefix}
	return common.KeyEncodeString(buff, table)
}

func tablesKey(tableSpace string) []byte {
	buff := []byte{tablesPrefix}
	return common.KeyEncodeString(buff, tableSpace)
}

func checkpointKey() []byte {
	return []byte{checkpointPrefix}
}

func (p *Pebble) pageCount(table string) (int64, error) {
	v, closer, err := p.db.Get(pageCountKey(table))
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer common.InvokeCloser(closer)
	count, _ := common.ReadUint64FromBufferBE(common.CopyByteSlice(v), 0)
	return int64(count), nil
}

func (p *Pebble) LoadPage(table string, pageId PageId) ([][]byte, error) {
	v, closer, err := p.db.Get(pageKey(table, pageId))
	if err == pebble.ErrNotFound {
		return nil, errors.NewStorageUnavailableError(errors.NewNodeError(errors.StorageUnavailable, "no such page"))
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer common.InvokeCloser(closer)
	return decodeRecords(common.CopyByteSlice(v)), nil
}

func (p *Pebble) LoadExistingKeys(table string, consumer KeyConsumer) error {
	count, err := p.pageCount(table)
	if err != nil {
		return err
	}
	var keys [][]byte
	for i := int64(0); i < count; i++ {
		records, err := p.LoadPage(table, PageId(i))
		if err != nil {
			return err
		}
		keys = append(keys, records...)
	}
	sort.Slice(keys, func(a, b int) bool { return common.CompareKeys(keys[a], keys[b]) < 0 })
	for _, key := range keys {
		if err := consumer(key); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pebble) WritePage(table string, lsn walog.LSN, records [][]byte) (PageId, error) {
	count, err := p.pageCount(table)
	if err != nil {
		return 0, err
	}
	pageId := PageId(count)

	batch := p.db.NewBatch()
	if err := batch.Set(pageKey(table, pageId), encodeRecords(records), nil); err != nil {
		return 0, errors.WithStack(err)
	}
	if err := batch.Set(pageCountKey(table), common.AppendUint64ToBufferBE(nil, uint64(count+1)), nil); err != nil {
		return 0, errors.WithStack(err)
	}
	if err := p.db.Apply(batch, syncWriteOptions); err != nil {
		return 0, errors.WithStack(err)
	}
	return pageId, nil
}

func (p *Pebble) ActualNumberOfPages(table string) (int, error) {
	count, err := p.pageCount(table)
	return int(count), err
}

func (p *Pebble) LoadTables(lsn walog.LSN, tableSpace string) ([]Table, error) {
	v, closer, err := p.db.Get(tablesKey(tableSpace))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer common.InvokeCloser(closer)
	return decodeTables(common.CopyByteSlice(v)), nil
}

func (p *Pebble) WriteTables(tableSpace string, lsn walog.LSN, tables []Table) error {
	batch := p.db.NewBatch()
	if err := batch.Set(tablesKey(tableSpace), encodeTables(tables), nil); err != nil {
		return errors.WithStack(err)
	}
	if err := batch.Set(checkpointKey(), common.KeyEncodeInt64(nil, int64(lsn)), nil); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(p.db.Apply(batch, nosyncWriteOptions))
}

func (p *Pebble) LastCheckpointLSN() (walog.LSN, error) {
	v, closer, err := p.db.Get(checkpointKey())
	if err == pebble.ErrNotFound {
		return -1, nil
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer common.InvokeCloser(closer)
	lsn, _ := common.DecodeInt64Key(common.CopyByteSlice(v), 0)
	return walog.LSN(lsn), nil
}

func encodeRecords(records [][]byte) []byte {
	buff := common.AppendUint32ToBufferBE(nil, uint32(len(records)))
	for _, r := range records {
		buff = common.AppendUint32ToBufferBE(buff, uint32(len(r)))
		buff = append(buff, r...)
	}
	return buff
}

func decodeRecords(buff []byte) [][]byte {
	n, off := common.ReadUint32FromBufferBE(buff, 0)
	records := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		l, o := common.ReadUint32FromBufferBE(buff, off)
		off = o
		records = append(records, buff[off:off+int(l)])
		off += int(l)
	}
	return records
}

func encodeTables(tables []Table) []byte {
	buff := common.AppendUint32ToBufferBE(nil, uint32(len(tables)))
	for _, t := range tables {
		buff = common.AppendStringToBufferLE(buff, t.Name)
		buff = common.AppendUint32ToBufferBE(buff, uint32(len(t.Blob)))
		buff = append(buff, t.Blob...)
	}
	return buff
}

func decodeTables(buff []byte) []Table {
	n, off := common.ReadUint32FromBufferBE(buff, 0)
	tables := make([]Table, 0, n)
	for i := uint32(0); i < n; i++ {
		name, o := common.ReadStringFromBufferLE(buff, off)
		off = o
		l, o2 := common.ReadUint32FromBufferBE(buff, off)
		off = o2
		blob := buff[off : off+int(l)]
		off += int(l)
		tables = append(tables, Table{Name: name, Blob: blob})
	}
	return tables
}
