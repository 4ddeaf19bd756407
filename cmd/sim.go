package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/aallbrig/swarmui/link"
)

// DefaultSimAddr is where `swarmui sim` listens by default.
const DefaultSimAddr = "127.0.0.1:7447"

func newSimCmd() *cobra.Command {
	var (
		listen   string
		interval time.Duration
	)
	c := &cobra.Command{
		Use:   "sim",
		Short: "Run a simulated robot on the device link",
		Long: `Run a stand-in device that accepts command frames and emits a
telemetry frame every interval. Point a session at it with --link.

Examples:
  swarmui sim &
  swarmui --link ` + DefaultSimAddr,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", listen, err)
			}
			srv := grpc.NewServer()
			link.Register(srv, link.NewSimulator(interval))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.GracefulStop()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "simulator listening on %s\n", lis.Addr())
			log.Info().Str("addr", lis.Addr().String()).Dur("interval", interval).Msg("simulator started")
			return srv.Serve(lis)
		},
	}
	c.Flags().StringVar(&listen, "listen", DefaultSimAddr, "Address to listen on")
	c.Flags().DurationVar(&interval, "interval", time.Second, "Telemetry interval")
	return c
}
