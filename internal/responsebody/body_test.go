package responsebody

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelDeliversFramesInOrder(t *testing.T) {
	sender, body := Channel(DefaultCapacity, -1)
	go func() {
		_ = sender.Send([]byte("a"))
		_ = sender.Send([]byte("b"))
		_ = sender.Send([]byte("c"))
		sender.Close()
	}()

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestOneFrameBody(t *testing.T) {
	body := One([]byte("hi"))
	length, ok := body.Len()
	require.True(t, ok)
	require.Equal(t, int64(2), length)

	got, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "hi", string(got))
}

func TestCapacityBlocksWhenFull(t *testing.T) {
	sender, body := Channel(1, -1)
	require.NoError(t, sender.Send([]byte("x")))

	sent := make(chan struct{})
	go func() {
		_ = sender.Send([]byte("y"))
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("second send should have blocked while channel is full")
	case <-time.After(20 * time.Millisecond):
	}

	buf := make([]byte, 1)
	_, err := body.Read(buf)
	require.NoError(t, err)

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send should have unblocked after a frame was drained")
	}
}

func TestConsumerCloseFailsFurtherSends(t *testing.T) {
	sender, body := Channel(1, -1)
	body.Close()

	err := sender.Send([]byte("x"))
	require.Error(t, err)
}
