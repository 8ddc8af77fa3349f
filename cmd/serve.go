package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/kvfilter/internal/server"
	"github.com/oakwood-commons/kvfilter/pkg/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve completion and filtering over HTTP",
	Long: `Load the records once and serve them over a JSON API:

  GET  /v1/healthz   liveness and record count
  GET  /v1/members   filterable members of the records
  POST /v1/complete  {"expression": "...", "cursor": 3} candidates at the cursor
  POST /v1/filter    {"expression": "...", "limit": 10} matching records`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd, args)
		if err != nil {
			return err
		}
		lgr := logger.FromContext(cmd.Context())
		srv := server.New(ds, activeConfig, *lgr)

		addr := activeConfig.Serve.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)
		go func() {
			<-stop
			lgr.Info("shutting down")
			_ = srv.Shutdown()
		}()

		if err := srv.Listen(addr); err != nil && !errors.Is(err, os.ErrClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	addInputFlags(serveCmd)
}
