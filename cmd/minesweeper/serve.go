package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve games over HTTP and websockets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			context.Background(),
			os.Interrupt, syscall.SIGTERM,
		)
		defer stop()

		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		log.Info("starting up, mode = ", cfg.Mode)

		err := app.New(cfg, log).Run(ctx)
		log.Info("server stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address, overrides the config")
}
