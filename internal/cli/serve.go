package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"videorag/internal/adapter/watch"
	"videorag/internal/transport/httpapi"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over HTTP",
	Long: `Serve POST /ask and GET /healthz for the snapshot under --dir.

With --watch the server reloads the snapshot after each ingest; if the
new files do not pair up the previous snapshot keeps serving.

Examples:
  videorag serve
  videorag serve --addr :9000 --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload when a new snapshot is ingested")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	svc, err := openService(root)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	server := httpapi.NewServer(svc, cfg.Retrieve.TopK, logger)
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr)
	})

	if serveWatch || cfg.Server.Watch {
		names := []string{
			filepath.Base(cfg.CorpusPath(root)),
			filepath.Base(cfg.IndexPath(root)),
		}
		w := watch.NewSnapshotWatcher(cfg.DataDir(root), names, func() {
			if err := svc.Reload(); err != nil {
				logger.Warn("reload failed, keeping current snapshot", "error", err)
			}
		}, logger)
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}

