package pulse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_FIFO(t *testing.T) {
	mb := newMailbox()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, mb.push(&job{id: id}))
	}
	assert.Equal(t, 3, mb.len())

	for _, want := range []string{"a", "b", "c"} {
		j, ok := mb.pop()
		require.True(t, ok)
		assert.Equal(t, want, j.id)
	}
}

func TestMailbox_PopWaitsForPush(t *testing.T) {
	mb := newMailbox()
	got := make(chan string, 1)
	go func() {
		j, ok := mb.pop()
		if ok {
			got <- j.id
		}
	}()

	time.Sleep(10 * time.Millisecond)
	mb.push(&job{id: "late"})

	select {
	case id := <-got:
		assert.Equal(t, "late", id)
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestMailbox_CloseReturnsPending(t *testing.T) {
	mb := newMailbox()
	mb.push(&job{id: "a"})
	mb.push(&job{id: "b"})

	pending := mb.close()
	assert.Len(t, pending, 2)
	assert.False(t, mb.push(&job{id: "c"}))
	assert.Nil(t, mb.close(), "second close is a no-op")

	_, ok := mb.pop()
	assert.False(t, ok)
}

func TestMailbox_CloseWakesConsumer(t *testing.T) {
	mb := newMailbox()
	done := make(chan bool, 1)
	go func() {
		_, ok := mb.pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	mb.close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("close did not wake consumer")
	}
}
