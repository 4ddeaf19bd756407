package link

import (
	"encoding/binary"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Device is the server side of the frame stream.
type Device interface {
	Frames(stream grpc.ServerStream) error
}

var linkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Device)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName: framesStreamDesc.StreamName,
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(Device).Frames(stream)
			},
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "swarmui/link/v1/link.proto",
}

// Register exposes d on s.
func Register(s *grpc.Server, d Device) {
	s.RegisterService(&linkServiceDesc, d)
}

// Simulator is a stand-in robot: it emits a telemetry frame every Interval
// and counts the frames it receives.
type Simulator struct {
	Interval time.Duration

	received atomic.Int64
	sent     atomic.Uint32
}

// NewSimulator returns a simulator emitting telemetry at the given interval.
func NewSimulator(interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = time.Second
	}
	return &Simulator{Interval: interval}
}

// Received returns the number of frames received from consoles.
func (s *Simulator) Received() int64 { return s.received.Load() }

func (s *Simulator) Frames(stream grpc.ServerStream) error {
	ctx := stream.Context()
	errc := make(chan error, 1)
	go func() {
		for {
			var msg wrapperspb.BytesValue
			if err := stream.RecvMsg(&msg); err != nil {
				if err == io.EOF {
					err = nil
				}
				errc <- err
				return
			}
			n := s.received.Add(1)
			log.Info().Int64("count", n).Str("frame", string(msg.GetValue())).Msg("frame received")
		}
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case <-ticker.C:
			seq := s.sent.Add(1)
			if err := stream.SendMsg(wrapperspb.Bytes(telemetry(seq))); err != nil {
				return err
			}
		}
	}
}

// telemetry builds a telemetry frame: the big-endian sequence number.
func telemetry(seq uint32) Frame {
	return binary.BigEndian.AppendUint32(nil, seq)
}
