package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/planewar/planewar/internal/config"
	"github.com/planewar/planewar/internal/influx"
	"github.com/planewar/planewar/internal/logging"
	"github.com/planewar/planewar/internal/storage"
	"github.com/planewar/planewar/pkg/core"
)

// openJournal creates the configured attack journal and mirrors it to InfluxDB when enabled.
// An unreachable InfluxDB only disables telemetry. The returned func releases everything.
func openJournal(ctx context.Context, id uuid.UUID, role core.Role, level string, logw io.Writer,
	logger *slog.Logger) (storage.Backend, func(), error) {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, appName+"-"+id.String(), logging.NewZerolog(logw, level, "database"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	logger.Info("Attack journal initialized", "type", storageCfg.Type)

	var sinks []storage.AttackSink
	var im *influx.Manager
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		im = influx.NewManager(logging.NewZerolog(logw, level, "influx"), influxCfg, id.String(), role.String())
		if err := im.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
			logger.Warn("InfluxDB unavailable, attack telemetry disabled", "error", err)
			im = nil
		} else {
			sinks = append(sinks, im)
		}
	}

	journal := storage.NewMirror(backend, func(err error) {
		logger.Warn("Attack telemetry write failed", "error", err)
	}, sinks...)

	closeFn := func() {
		if im != nil {
			im.Close()
		}
		if err := journal.Close(); err != nil {
			logger.Error("Failed to close attack journal", "error", err)
		}
	}
	return journal, closeFn, nil
}
