package workerpool_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/squareup/shardnode/workerpool"
)

func TestSubmitRunsTask(t *testing.T) {
	pool := workerpool.New()
	var ran int32
	pool.Submit(func() { atomic.StoreInt32(&ran, 1) })
	pool.Close()
	require.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestSubmitAfterCloseIsRejectedNotPropagated(t *testing.T) {
	pool := workerpool.New()
	pool.Close()
	done := make(chan struct{})
	go func() {
		pool.Submit(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit after Close should not block")
	}
}
