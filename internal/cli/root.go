package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/inventa/internal/backend"
	"github.com/turtacn/inventa/internal/monitor"
	"github.com/turtacn/inventa/internal/pathres"
	"github.com/turtacn/inventa/internal/resource"
	"github.com/turtacn/inventa/internal/supervisor"
	"github.com/turtacn/inventa/pkg/consts"
	ierrors "github.com/turtacn/inventa/pkg/errors"
	"github.com/turtacn/inventa/pkg/logger"
	"github.com/turtacn/inventa/pkg/protocol"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "inventa",
	Short: "inventa: desktop inventory tracker (UI host + supervised backend)",
}

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Start the UI host: supervise the backend through its startup handshake",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		mode := pathres.DetectMode()
		switch cfg.Backend.Mode {
		case string(consts.ModeDevelopment):
			mode = consts.ModeDevelopment
		case string(consts.ModePackaged):
			mode = consts.ModePackaged
		}

		// The log sink and the instance lock both live in the data dir, so
		// resolve it before anything else starts writing.
		dataCands := cfg.Paths.DataDir
		if len(dataCands) == 0 {
			dataCands = pathres.DefaultCandidates(pathres.KindDataDir, mode)
		}
		dataDir, err := pathres.Resolve(pathres.KindDataDir, dataCands)
		if err != nil {
			fmt.Fprintf(os.Stderr, "No writable data directory: %v\n", err)
			os.Exit(1)
		}

		logPath := filepath.Join(dataDir, "logs", consts.LogFileName)
		logFile, err := logger.InitWithFile(cfg.Observability.LogLevel, logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log sink: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()

		lock, err := resource.AcquireLock(dataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Another instance is already running: %v\n", err)
			os.Exit(1)
		}
		defer lock.Release()

		if cfg.Observability.MetricsPort != "" {
			monitor.InitMetrics(cfg.Observability.MetricsPort)
		}

		logger.Log.Info("Booting inventa host", "mode", string(mode), "data_dir", dataDir)

		sup := supervisor.New(supervisor.Options{
			Mode:              mode,
			RuntimeCandidates: cfg.Paths.Runtime,
			DataDirCandidates: []string{dataDir},
			StaticCandidates:  cfg.Paths.StaticAssets,
			PreferredPort:     cfg.Backend.PreferredPort,
			PinPort:           cfg.Backend.PinPort,
			ExtraArgs:         cfg.Backend.ExtraArgs,
			StartupTimeout:    parseDuration(cfg.Backend.StartupTimeout),
			GraceTimeout:      parseDuration(cfg.Backend.GraceTimeout),
			LogFilePath:       logPath,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		outcome := sup.Start(ctx)
		switch {
		case outcome.Ready:
			logger.Log.Info("Host: backend ready, window can load", "url", outcome.BaseURL)
			sup.WatchHealth(ctx, parseDuration(cfg.Observability.HealthInterval))
			select {
			case <-ctx.Done():
			case report := <-sup.Unhealthy():
				printReport(report)
			}
			sup.Shutdown()
		case outcome.Cancelled:
			logger.Log.Info("Host: startup cancelled")
		default:
			printReport(outcome.Report)
			sup.Shutdown()
			os.Exit(1)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend server (normally spawned by the host)",
	Run: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(os.Getenv("INVENTA_LOG_LEVEL"))
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := backend.Run(ctx); err != nil {
			os.Exit(1)
		}
	},
}

func loadConfig() *protocol.Config {
	var cfg protocol.Config
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
		// No config file is fine: defaults cover the common install.
		return &cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing config: %v\n", err)
		os.Exit(1)
	}
	return &cfg
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration %q in config\n", s)
		os.Exit(1)
	}
	return d
}

func printReport(report *ierrors.FailureReport) {
	fmt.Fprintln(os.Stderr, report.String())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "inventa.yaml", "config file path")
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(serveCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Personal.AI order the ending
