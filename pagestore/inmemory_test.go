package pagestore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/pagestore"
)

func TestWriteAndLoadPage(t *testing.T) {
	store := pagestore.NewInMemory()
	require.NoError(t, store.Start())

	pageId, err := store.WritePage("t1", 5, [][]byte{[]byte("row1"), []byte("row2")})
	require.NoError(t, err)
	require.Equal(t, pagestore.PageId(0), pageId)

	records, err := store.LoadPage("t1", pageId)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("row1"), []byte("row2")}, records)

	n, err := store.ActualNumberOfPages("t1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestLoadExistingKeysOrdered(t *testing.T) {
	store := pagestore.NewInMemory()
	require.NoError(t, store.Start())
	_, err := store.WritePage("t1", 1, [][]byte{[]byte("c"), []byte("a"), []byte("b")})
	require.NoError(t, err)

	var keys []string
	err = store.LoadExistingKeys("t1", func(key []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestWriteAndLoadTables(t *testing.T) {
	store := pagestore.NewInMemory()
	require.NoError(t, store.Start())
	tables := []pagestore.Table{{Name: "t1", Blob: []byte("meta")}}
	require.NoError(t, store.WriteTables("ts1", 7, tables))

	got, err := store.LoadTables(7, "ts1")
	require.NoError(t, err)
	require.Equal(t, tables, got)

	lsn, err := store.LastCheckpointLSN()
	require.NoError(t, err)
	require.EqualValues(t, 7, lsn)
}
