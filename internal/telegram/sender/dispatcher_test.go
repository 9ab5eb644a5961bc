package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4})
	done := make(chan struct{})
	require.NoError(t, d.Enqueue(context.Background(), "send", func() error {
		close(done)
		return nil
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
	d.Close()
}

func TestDispatcherRetries(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var attempts atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send", func() error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}))
	d.Close()
	assert.EqualValues(t, 3, attempts.Load())
	assert.Zero(t, d.ErrorCount())
}

func TestEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	err := d.Enqueue(context.Background(), "send", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestEnqueueDuringClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Enqueue(context.Background(), "send", func() error { return nil })
			if err != nil {
				assert.True(t, errors.Is(err, ErrQueueClosed) || errors.Is(err, ErrQueueFull), err)
			}
		}()
	}
	d.Close()
	wg.Wait()
}
