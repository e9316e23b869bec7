// Package influx mirrors resolved attacks to InfluxDB as telemetry points.
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/planewar/planewar/internal/config"
	"github.com/planewar/planewar/pkg/core"
)

// Measurement is the measurement name of attack points.
const Measurement = "attack"

// ErrDisabled is returned by Connect when the sink is turned off in config.
var ErrDisabled = errors.New("influx sink disabled")

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	Client    influxdb2.Client
	Writer    influxdb2_api.WriteAPI
	IsValid   bool
	Logger    zerolog.Logger
	SessionID string
	Role      string

	cfg config.InfluxConfig
}

// NewManager creates a new InfluxDB manager. Points are tagged with the session id and role.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig, sessionID, role string) *Manager {
	return &Manager{
		IsValid:   false,
		Logger:    log,
		SessionID: sessionID,
		Role:      role,
		cfg:       cfg,
	}
}

// Connect establishes a connection to InfluxDB and creates the write API.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL,
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Client.Close()
		m.Client = nil
		if err == nil {
			err = errors.New("server not ready")
		}
		return fmt.Errorf("influxdb ping %s: %w", m.cfg.URL, err)
	}

	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())

	m.IsValid = true
	m.Logger.Info().Str("url", m.cfg.URL).Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// WriteAttack queues one attack point. It implements storage.AttackSink.
func (m *Manager) WriteAttack(r core.AttackRecord) error {
	if !m.IsValid {
		return fmt.Errorf("influxDB client not initialized")
	}
	m.Writer.WritePoint(AttackPoint(m.SessionID, m.Role, r))
	return nil
}

// Close flushes pending points and closes the client.
func (m *Manager) Close() {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	m.IsValid = false
}

// AttackPoint converts an attack into a point tagged by session, role, board and outcome.
func AttackPoint(sessionID, role string, r core.AttackRecord) *influxdb2_write.Point {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	point := influxdb2_write.NewPointWithMeasurement(Measurement).
		AddTag("session", sessionID).
		AddTag("role", role).
		AddTag("board", r.Board.String()).
		AddTag("outcome", r.Outcome.String()).
		AddField("x", r.At.X).
		AddField("y", r.At.Y).
		AddField("hit", r.Outcome.IsHit()).
		SetTime(ts)
	return point
}
