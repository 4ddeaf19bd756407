package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The link is a single bidirectional stream of BytesValue messages, one per
// frame. The service is declared by hand; there is no generated stub.
const (
	ServiceName  = "swarmui.link.v1.Link"
	framesMethod = "/" + ServiceName + "/Frames"
)

var framesStreamDesc = grpc.StreamDesc{
	StreamName:    "Frames",
	ServerStreams: true,
	ClientStreams: true,
}

// ErrStopped is returned when sending on a stopped channel.
var ErrStopped = errors.New("link stopped")

// Client is a Channel backed by a gRPC frame stream to a device.
type Client struct {
	conn   *grpc.ClientConn
	stream grpc.ClientStream
	cancel context.CancelFunc
	in     queue
	done   chan struct{}

	sendMu  sync.Mutex
	stopped bool

	errMu   sync.Mutex
	recvErr error

	stopOnce sync.Once
	stopErr  error
}

// Dial connects to the device at addr and opens the frame stream. Without
// options the connection is plaintext.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("link: connect %s: %w", addr, err)
	}
	sctx, cancel := context.WithCancel(ctx)
	stream, err := conn.NewStream(sctx, &framesStreamDesc, framesMethod)
	if err != nil {
		cancel()
		conn.Close()
		return nil, fmt.Errorf("link: open stream to %s: %w", addr, err)
	}
	c := &Client{
		conn:   conn,
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.recvLoop()
	log.Debug().Str("addr", addr).Msg("link connected")
	return c, nil
}

func (c *Client) recvLoop() {
	defer close(c.done)
	for {
		var msg wrapperspb.BytesValue
		if err := c.stream.RecvMsg(&msg); err != nil {
			if err != io.EOF && status.Code(err) != codes.Canceled {
				log.Warn().Err(err).Msg("link receive failed")
				c.errMu.Lock()
				c.recvErr = err
				c.errMu.Unlock()
			}
			return
		}
		c.in.push(Frame(msg.GetValue()))
	}
}

func (c *Client) HasData() bool { return c.in.len() > 0 }

func (c *Client) GetData() Frame { return c.in.pop() }

// Send transmits one frame to the device.
func (c *Client) Send(f Frame) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.stopped {
		return ErrStopped
	}
	if err := c.stream.SendMsg(wrapperspb.Bytes(f)); err != nil {
		return fmt.Errorf("link: send: %w", err)
	}
	return nil
}

// Err returns the error that ended the receive loop, if any.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.recvErr
}

// Stop closes the stream and the connection and waits for the receive loop.
// Frames already received stay readable.
func (c *Client) Stop() error {
	c.stopOnce.Do(func() {
		c.sendMu.Lock()
		c.stopped = true
		_ = c.stream.CloseSend()
		c.sendMu.Unlock()
		c.cancel()
		c.stopErr = c.conn.Close()
		<-c.done
	})
	return c.stopErr
}
