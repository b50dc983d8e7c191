package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 3; i++ {
		require.True(t, q.Push(i))
	}
	assert.Equal(t, 3, q.Len())

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		got, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, q.Len())
}

func TestQueue_PopWaitsForPush(t *testing.T) {
	q := NewQueue[string]()
	got := make(chan string, 1)
	go func() {
		v, err := q.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}
	q.Push("frame")
	select {
	case v := <-got:
		assert.Equal(t, "frame", v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake after Push")
	}
}

func TestQueue_PopContextCancelled(t *testing.T) {
	q := NewQueue[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueue_CloseDrainsThenFails(t *testing.T) {
	q := NewQueue[int]()
	q.Push(7)
	q.Close()
	q.Close()

	assert.False(t, q.Push(8), "push after close must be rejected")

	v, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestOutbox_DropsNewestWhenFull(t *testing.T) {
	o := NewOutbox[string](1)

	assert.True(t, o.TrySend("first"))
	assert.False(t, o.TrySend("second"), "second send must report dropped")

	assert.Equal(t, 1, o.Len())
	assert.Equal(t, uint64(1), o.Sent())
	assert.Equal(t, uint64(1), o.Dropped())

	v, err := o.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestOutbox_MinimumCapacity(t *testing.T) {
	for _, c := range []int{-3, 0, 1} {
		assert.Equal(t, 1, NewOutbox[int](c).Cap(), "capacity %d", c)
	}
	assert.Equal(t, 4, NewOutbox[int](4).Cap())
}

func TestOutbox_ReceiveContextCancelled(t *testing.T) {
	o := NewOutbox[int](2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := o.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
