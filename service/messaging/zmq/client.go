package zmq

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// Submit sends payload over a REQ socket and returns the reply text
func Submit(ctx context.Context, endpoint string, payload []byte) (string, error) {
	socket := zmq4.NewReq(ctx)
	defer socket.Close()
	if err := socket.Dial(endpoint); err != nil {
		return "", fmt.Errorf("failed to dial %v: %w", endpoint, err)
	}
	if err := socket.Send(zmq4.NewMsg(payload)); err != nil {
		return "", fmt.Errorf("failed to send to %v: %w", endpoint, err)
	}
	msg, err := socket.Recv()
	if err != nil {
		return "", fmt.Errorf("failed to receive from %v: %w", endpoint, err)
	}
	return string(bytes.Join(msg.Frames, nil)), nil
}
