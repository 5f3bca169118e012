package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/omerfarukorc/ulog-analysis/config"
	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/threading"
	"github.com/omerfarukorc/ulog-analysis/explorer"
	"github.com/omerfarukorc/ulog-analysis/server"
	"github.com/omerfarukorc/ulog-analysis/store"
	storemongo "github.com/omerfarukorc/ulog-analysis/store/mongo"
)

var (
	serveHost    string
	servePort    int
	serveDir     string
	serveOpen    bool
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use: "serve",

	Short: "Starts the local web server and opens the log browser.",

	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		logger.SetVerbose(serveVerbose)

		serverCfg := config.LoadServerConfig()
		if cmd.Flags().Changed("host") {
			serverCfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			serverCfg.Port = servePort
		}
		storeCfg := config.LoadStoreConfig()
		if cmd.Flags().Changed("dir") {
			storeCfg.Dir = serveDir
		}
		cacheCfg := config.LoadCacheConfig()

		s, err := store.NewStore(storeCfg.Dir)
		if err != nil {
			color.Red("%v", err)
			return err
		}

		catalog, cleanup, err := buildCatalog()
		if err != nil {
			color.Red("%v", err)
			return err
		}
		defer cleanup()

		exp := explorer.NewExplorer(s, catalog, cacheCfg.Size, cacheCfg.MaxPoints)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Index existing uploads while the server comes up.
		threading.GoSafe(func() {
			if err := exp.Reindex(ctx, 2); err != nil {
				logger.Warn("catalog reindex failed: %v", err)
			}
		})

		srv := server.NewServer(serverCfg, exp)
		fmt.Printf("ULog analysis running at %s (Ctrl+C to stop)\n", serverCfg.URL())
		if serveOpen {
			threading.GoSafe(func() {
				time.Sleep(500 * time.Millisecond)
				openBrowser(serverCfg.URL())
			})
		}

		if err := srv.Run(ctx); err != nil {
			color.Red("server failed: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "address to bind")
	serveCmd.Flags().IntVar(&servePort, "port", 8050, "port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "dir", "uploaded_ulogs", "directory holding uploaded logs")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the default browser once the server is up")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable debug logging")
}

// buildCatalog wires the MongoDB-backed catalog when enabled, the in-memory
// one otherwise.
func buildCatalog() (*store.Catalog, func(), error) {
	mongoCfg := config.LoadMongoConfig()
	if !mongoCfg.Enabled {
		return store.NewCatalog(store.NewMemoryRepository()), func() {}, nil
	}

	client, err := storemongo.Connect(mongoCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %v", err)
	}
	return store.NewCatalog(storemongo.NewMongoRepository(client)), client.Close, nil
}

// openBrowser is fire-and-forget: a missing opener only logs.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("failed to open browser: %v", err)
	}
}
