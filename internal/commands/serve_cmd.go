package commands

import (
	"net"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/wnxd/crashdbg/internal/gdbserver"
)

func NewServeCommand(log logr.Logger) *cobra.Command {
	var listen string
	serveCmd := &cobra.Command{
		Use:   "serve [--listen address]",
		Short: "Serves the target to GDB over the remote serial protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := log.WithName("serve")
			s, err := openSession(log)
			if err != nil {
				return err
			}
			defer s.Close()
			lc := net.ListenConfig{}
			l, err := lc.Listen(cmd.Context(), "tcp", listen)
			if err != nil {
				log.Error(err, "Failed to create TCP listener", "Address", listen)
				return err
			}
			log.Info("listening", "Address", l.Addr().String())
			srv := gdbserver.NewServer(s.Target, s.Host, log)
			return srv.Serve(cmd.Context(), l)
		},
	}
	serveCmd.Flags().StringVar(&listen, "listen", "localhost:1234", "Address GDB connects to.")
	return serveCmd
}
