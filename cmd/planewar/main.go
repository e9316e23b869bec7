// Command planewar plays one game of planes against a peer over TCP or websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/planewar/planewar/internal/board"
	"github.com/planewar/planewar/internal/config"
	"github.com/planewar/planewar/internal/dispatcher"
	"github.com/planewar/planewar/internal/logging"
	intOtel "github.com/planewar/planewar/internal/otel"
	"github.com/planewar/planewar/internal/session"
	"github.com/planewar/planewar/internal/transport"
	"github.com/planewar/planewar/internal/tui"
	"github.com/planewar/planewar/pkg/core"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

const appName = "planewar"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	start := time.Now()

	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	if err := config.BindFlags(fs); err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	configDir, _ := fs.GetString("config")
	cfgErr := config.Load(configDir)

	netCfg := config.GetNetworkConfig()
	tcfg, err := transportConfig(netCfg)
	if err != nil {
		return err
	}
	id := uuid.New()
	level := viper.GetString("logLevel")

	logFile, logPath, err := openLogFile(viper.GetString("logsDir"), tcfg.Role, start)
	if err != nil {
		return err
	}
	defer logFile.Close()

	var startupWarnings []error
	if cfgErr != nil {
		startupWarnings = append(startupWarnings, cfgErr)
	}

	otelProvider, err := intOtel.New(config.GetOTelConfig(), logFile, id.String(), tcfg.Role.String())
	if err != nil {
		startupWarnings = append(startupWarnings, fmt.Errorf("otel disabled: %w", err))
		otelProvider, _ = intOtel.New(config.OTelConfig{}, nil, "", "")
	}

	var graylog io.Writer
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.DialGraylog(gl.Address)
		if err != nil {
			startupWarnings = append(startupWarnings, err)
		} else {
			defer w.Close()
			graylog = w
		}
	}

	// current lets log records carry the session attributes once the session exists.
	var current atomic.Pointer[session.Session]
	slogManager := logging.NewSlogManager()
	slogManager.Setup(logging.Options{
		Level:    level,
		File:     logFile,
		Graylog:  graylog,
		Provider: otelProvider.LoggerProvider(),
		Context: func() []slog.Attr {
			if s := current.Load(); s != nil {
				return s.LogAttrs()
			}
			return nil
		},
	})
	logger := slogManager.Logger()
	logger.Info("Starting", "version", Version, "buildDate", BuildDate, "role", tcfg.Role, "log", logPath)
	for _, w := range startupWarnings {
		logger.Warn("Startup degraded, using defaults where needed", "error", w)
	}
	if cfgErr == nil {
		logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal, closeJournal, err := openJournal(ctx, id, tcfg.Role, level, logFile, logger)
	if err != nil {
		return err
	}

	boardCfg := config.GetBoardConfig()
	presenter := tui.NewPresenter()
	s := session.New(tcfg.Role, session.Dependencies{
		ID:        id,
		Board:     board.New(boardCfg.GridSize, boardCfg.PlaneCount),
		Presenter: presenter,
		Journal:   journal,
		Logger:    logger,
	})
	current.Store(s)

	d, err := dispatcher.New(logging.NewDispatcherLogger(logging.NewZerolog(logFile, level, "dispatcher")))
	if err != nil {
		closeJournal()
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	s.RegisterHandlers(d)

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	links := make(chan *transport.Link, 1)
	connected := make(chan struct{})
	go func() {
		defer close(connected)
		connect(appCtx, tcfg, s, d, presenter, logger, links)
	}()

	app := tui.NewApp(s, presenter, s.GridSize(), logger)
	runErr := app.Run(appCtx)

	cancel()
	<-connected
	select {
	case link := <-links:
		if err := link.Close(); err != nil {
			logger.Debug("Closing link", "error", err)
		}
	default:
	}

	summary, err := s.Summary()
	if err != nil {
		logger.Error("Failed to build game summary", "error", err)
	} else {
		logger.Info("Game finished",
			"summary", summary.String(),
			"won", summary.Won,
			"planes", summary.PlaneStrings(),
			"streak", summary.LongestHitStreak,
			"shooting", summary.Duration.Round(time.Millisecond).String(),
			"elapsed", time.Since(start).Round(time.Second).String())
		fmt.Println(summary)
	}

	closeJournal()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := slogManager.Flush(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: flushing logs: %v\n", appName, err)
	}
	if err := otelProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
	}
	return runErr
}

// connect establishes the stream and attaches it to the session. It reports progress on the
// status line; the game stays playable offline for placement until the peer arrives.
func connect(ctx context.Context, cfg transport.Config, s *session.Session, d *dispatcher.Dispatcher,
	presenter *tui.Presenter, logger *slog.Logger, links chan<- *transport.Link) {
	if cfg.Role == core.RoleHost {
		presenter.Connected("waiting for opponent on " + cfg.Address())
	} else {
		presenter.Connected("connecting to " + cfg.Address())
	}

	stream, err := transport.Establish(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		logger.Error("Failed to connect", "error", err, "address", cfg.Address())
		presenter.Connected("not connected")
		presenter.Notice(fmt.Sprintf("Connection failed: %v", err))
		return
	}

	link := transport.NewLink(stream, d.Dispatch, s.HandleDisconnect, logger)
	s.Attach(link)
	link.Start()
	links <- link
	presenter.Connected("connected to " + link.RemoteAddr())
}

// transportConfig converts the network settings, rejecting unknown roles and stream kinds.
func transportConfig(nc config.NetworkConfig) (transport.Config, error) {
	role, err := core.ParseRole(nc.Role)
	if err != nil {
		return transport.Config{}, err
	}
	kind, err := transport.ParseKind(nc.Transport)
	if err != nil {
		return transport.Config{}, err
	}
	return transport.Config{Role: role, Host: nc.Host, Port: nc.Port, Kind: kind}, nil
}

// openLogFile creates the session log in logsDir. An existing file of the same name is kept as
// .old.
func openLogFile(logsDir string, role core.Role, start time.Time) (*os.File, string, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating logs dir: %w", err)
	}
	path := logging.LogFilePath(logsDir, appName, role.String(), start)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("opening log file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return f, abs, nil
}
