package screen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendGetChar(t *testing.T) {
	a, b := New()
	assert.NoError(t, a.Send("Hi"))

	c, err := b.GetChar()
	assert.NoError(t, err)
	assert.Equal(t, 'H', c)

	c, err = b.GetChar()
	assert.NoError(t, err)
	assert.Equal(t, 'i', c)
}

func TestGetCharBlocksUntilSend(t *testing.T) {
	a, b := New()

	type result struct {
		c   rune
		err error
	}
	done := make(chan result, 1)
	go func() {
		c, err := b.GetChar()
		done <- result{c, err}
	}()

	select {
	case <-done:
		t.Fatal("GetChar returned before any character was sent")
	case <-time.After(20 * time.Millisecond):
	}

	assert.NoError(t, a.Send("z"))
	r := <-done
	assert.NoError(t, r.err)
	assert.Equal(t, 'z', r.c)
}

func TestTryGetCharEmpty(t *testing.T) {
	_, b := New()
	c, ok, err := b.TryGetChar()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, rune(0), c)
}

func TestTryGetCharAvailable(t *testing.T) {
	a, b := New()
	assert.NoError(t, a.Send("x"))

	c, ok, err := b.TryGetChar()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 'x', c)
}

func TestIsEmptyDoesNotConsume(t *testing.T) {
	a, b := New()
	assert.NoError(t, a.Send("y"))

	empty, err := b.IsEmpty()
	assert.NoError(t, err)
	assert.False(t, empty)

	c, err := b.GetChar()
	assert.NoError(t, err)
	assert.Equal(t, 'y', c)
}

func TestGetAllDrains(t *testing.T) {
	a, b := New()
	assert.NoError(t, a.Send("foo"))
	assert.NoError(t, a.Send("bar"))

	assert.Equal(t, "foobar", b.GetAll())

	empty, err := b.IsEmpty()
	assert.NoError(t, err)
	assert.True(t, empty)
}

func TestReset(t *testing.T) {
	a, b := New()
	assert.NoError(t, a.Send("discarded"))

	b.Reset()

	empty, err := b.IsEmpty()
	assert.NoError(t, err)
	assert.True(t, empty)
}

func TestCloseUnblocksPeer(t *testing.T) {
	a, b := New()

	errc := make(chan error, 1)
	go func() {
		_, err := b.GetChar()
		errc <- err
	}()

	select {
	case <-errc:
		t.Fatal("GetChar returned before Close")
	case <-time.After(20 * time.Millisecond):
	}

	a.Close()
	err := <-errc
	assert.Error(t, err)
}
