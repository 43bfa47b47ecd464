package zmq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/boque/service/messaging"
)

func freeEndpoint(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return fmt.Sprintf("tcp://127.0.0.1:%d", port)
}

func TestChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	endpoint := freeEndpoint(t)
	channel, err := Listen(ctx, endpoint)
	require.NoError(t, err)
	defer channel.Close()

	request, err := channel.Poll(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, request)

	type result struct {
		reply string
		err   error
	}
	results := make(chan result, 2)
	for _, payload := range []string{`{"name":"a","cmd":"true"}`, `{"name":"b","cmd":"true"}`} {
		go func(payload string) {
			reply, err := Submit(ctx, endpoint, []byte(payload))
			results <- result{reply: reply, err: err}
		}(payload)
	}

	for i := 0; i < 2; i++ {
		var request messaging.Request
		require.Eventually(t, func() bool {
			request, err = channel.Poll(ctx, 50*time.Millisecond)
			return err == nil && request != nil
		}, 5*time.Second, time.Millisecond)
		assert.Contains(t, string(request.Data()), `"cmd":"true"`)
		require.NoError(t, request.Reply(ctx, "OK "+string(request.Data()[9])))
		assert.ErrorIs(t, request.Reply(ctx, "again"), messaging.ErrReplied)
	}

	replies := map[string]bool{}
	for i := 0; i < 2; i++ {
		actual := <-results
		require.NoError(t, actual.err)
		replies[actual.reply] = true
	}
	assert.Equal(t, map[string]bool{"OK a": true, "OK b": true}, replies)

	require.NoError(t, channel.Close())
	_, err = channel.Poll(ctx, time.Millisecond)
	assert.ErrorIs(t, err, messaging.ErrClosed)
}

type failingSocket struct {
	zmq4.Socket
	recvs int
}

func (s *failingSocket) Recv() (zmq4.Msg, error) {
	s.recvs++
	return zmq4.Msg{}, errors.New("connection reset")
}

func (s *failingSocket) Close() error {
	return nil
}

func TestChannel_RecvFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	socket := &failingSocket{}
	channel := &Channel{
		endpoint:    "tcp://127.0.0.1:0",
		socket:      socket,
		requests:    make(chan *Request),
		closed:      make(chan struct{}),
		failed:      make(chan struct{}),
		retryDelay:  time.Millisecond,
		maxFailures: 3,
		cancel:      cancel,
	}
	channel.wg.Add(1)
	go channel.serve(ctx)

	var err error
	require.Eventually(t, func() bool {
		_, err = channel.Poll(ctx, 10*time.Millisecond)
		return err != nil
	}, 2*time.Second, time.Millisecond)
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, messaging.ErrClosed)
	channel.wg.Wait()
	assert.Equal(t, 3, socket.recvs)
	assert.NoError(t, channel.Close())
}
