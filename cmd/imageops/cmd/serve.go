package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/imageops/internal/config"
	"github.com/ironsheep/imageops/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the MCP (stdio) or HTTP transport",
		Long: "Serve the operation catalogue until interrupted. The stdio transport speaks MCP JSON-RPC " +
			"on stdin/stdout; the http transport serves /api/process/... routes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport := a.cfg.Server.Transport
			if cmd.Flags().Changed("transport") {
				transport, _ = cmd.Flags().GetString("transport")
			}
			addr := a.cfg.Server.HTTPAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			srv := server.New(a.processor(), server.Options{
				Version:        a.info.Version,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				MaxBodyBytes:   a.cfg.Server.MaxBodyBytes,
				Logger:         a.log,
			})

			a.log.DebugContext(a.ctx, "starting", "transport", transport,
				"build_time", a.info.BuildTime)

			var err error
			switch transport {
			case config.TransportStdio:
				err = srv.Serve(a.ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			case config.TransportHTTP:
				err = srv.ListenAndServe(a.ctx, addr)
			default:
				return fmt.Errorf("unknown transport %q (want %s or %s)", transport, config.TransportStdio, config.TransportHTTP)
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	f := cmd.Flags()
	f.String("transport", config.TransportStdio, "Transport to serve (stdio|http)")
	f.String("addr", ":8080", "Listen address for the http transport")
	return cmd
}
