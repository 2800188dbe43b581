package queue

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopAllPreservesOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(i))
	}
	items, err := q.PopAll()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, items)

	items, err = q.PopAll()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New[string]()
	got := make(chan string, 1)
	go func() {
		v, err := q.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Push("hello"))

	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pop")
	}
}

func TestPopHonorsContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestClose(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Push(1))
	q.Close()
	q.Close()

	assert.Equal(t, ErrClosed, errors.Cause(q.Push(2)))

	// Items queued before Close are still delivered.
	v, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = q.Pop(context.Background())
	assert.Equal(t, ErrClosed, err)

	_, err = q.PopAll()
	assert.Equal(t, ErrClosed, err)
}

func TestCloseWakesPop(t *testing.T) {
	q := New[int]()
	done := make(chan error, 1)
	go func() {
		_, err := q.Pop(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		assert.Equal(t, ErrClosed, err)
	case <-time.After(time.Second):
		t.Fatal("pop was not woken by close")
	}
}
