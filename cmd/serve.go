package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataloom/internal/server"
)

var (
	serveAddr    string
	servePreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard()
		if err != nil {
			return err
		}
		if servePreload {
			ds, err := d.Dataset()
			if err != nil {
				return err
			}
			log.Debugf("preloaded %d rows from %s", ds.NumRows(), ds.Name())
		}
		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(addr, log, server.NewRouter(d, log))
		log.Infof("%s serving %s at http://%s", cfg.PageTitle, cfg.DataPath, srv.Addr())
		return srv.Run(ctx, 10*time.Second)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "load the dataset before accepting requests")
}
