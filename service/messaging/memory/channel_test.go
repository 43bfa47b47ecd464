package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/boque/service/messaging"
)

func TestChannel(t *testing.T) {
	ctx := context.Background()
	channel := New(DefaultConfig())

	request, err := channel.Poll(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, request, "poll times out without a request")

	replyCh := make(chan string, 1)
	go func() {
		reply, err := channel.Send(ctx, []byte(`{"name":"t1","cmd":"true"}`))
		assert.NoError(t, err)
		replyCh <- reply
	}()

	request, err = channel.Poll(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.NotEmpty(t, request.ID())
	assert.Equal(t, `{"name":"t1","cmd":"true"}`, string(request.Data()))

	require.NoError(t, request.Reply(ctx, "OK"))
	assert.ErrorIs(t, request.Reply(ctx, "OK"), messaging.ErrReplied)
	assert.Equal(t, "OK", <-replyCh)

	require.NoError(t, channel.Close())
	_, err = channel.Poll(ctx, time.Second)
	assert.ErrorIs(t, err, messaging.ErrClosed)
	_, err = channel.Send(ctx, []byte("{}"))
	assert.ErrorIs(t, err, messaging.ErrClosed)
}

func TestChannel_SendCancelled(t *testing.T) {
	channel := New(Config{Buffer: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := channel.Send(ctx, []byte("{}"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, channel.Size())
}
