package walog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/walog"
)

func TestLogAndRecover(t *testing.T) {
	log := walog.NewInMemory()
	require.NoError(t, log.StartWriting())

	lsn1, err := log.Log(walog.Entry{Payload: []byte("a")})
	require.NoError(t, err)
	lsn2, err := log.Log(walog.Entry{Payload: []byte("b")})
	require.NoError(t, err)
	require.Equal(t, lsn1+1, lsn2)

	var got []string
	err = log.Recover(0, 0, func(lsn walog.LSN, e walog.Entry) error {
		got = append(got, string(e.Payload))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestLogBatchReturnsLSNPerEntry(t *testing.T) {
	log := walog.NewInMemory()
	require.NoError(t, log.StartWriting())
	lsns, err := log.LogBatch([]walog.Entry{{Payload: []byte("x")}, {Payload: []byte("y")}})
	require.NoError(t, err)
	require.Len(t, lsns, 2)
}

func TestFollowDeliversThenReturnsOnClose(t *testing.T) {
	log := walog.NewInMemory()
	require.NoError(t, log.StartWriting())
	_, err := log.Log(walog.Entry{Payload: []byte("a")})
	require.NoError(t, err)

	done := make(chan error, 1)
	count := 0
	go func() {
		done <- log.Follow(0, func(lsn walog.LSN, e walog.Entry) error {
			count++
			return nil
		})
	}()

	require.NoError(t, log.Close())
	require.NoError(t, <-done)
	require.Equal(t, 1, count)
	require.True(t, log.IsClosed())
}

func TestLogAfterCloseFails(t *testing.T) {
	log := walog.NewInMemory()
	require.NoError(t, log.Close())
	_, err := log.Log(walog.Entry{Payload: []byte("a")})
	require.Error(t, err)
}
