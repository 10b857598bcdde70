// Package pagestore is the Page Store (C3): physical pages keyed by
// (table, page id), plus per-tablespace table metadata.
package pagestore

import "github.com/squareup/shardnode/walog"

// PageId identifies a page within a table.
type PageId int64

// Table is an opaque blob of table metadata as written by writeTables and
// read back by loadTables; its structure is a concern of the tablespace
// manager, not the Page Store.
type Table struct {
	Name string
	Blob []byte
}

// KeyConsumer receives keys during loadExistingKeys, in Page Store key
// order.
type KeyConsumer func(key []byte) error

// Store is the Page Store's contract.
type Store interface {
	Start() error
	Close() error

	LoadPage(table string, pageId PageId) ([][]byte, error)
	LoadExistingKeys(table string, consumer KeyConsumer) error
	WritePage(table string, lsn walog.LSN, records [][]byte) (PageId, error)
	ActualNumberOfPages(table string) (int, error)

	LoadTables(lsn walog.LSN, tableSpace string) ([]Table, error)
	WriteTables(tableSpace string, lsn walog.LSN, tables []Table) error

	LastCheckpointLSN() (walog.LSN, error)
}
