package influx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planewar/planewar/internal/config"
	"github.com/planewar/planewar/pkg/core"
)

func TestAttackPoint(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := core.AttackRecord{
		Board:   core.OpponentBoard,
		At:      core.Coordinate{X: 4, Y: 9},
		Outcome: core.HitHead,
		Time:    ts,
	}

	line := influxdb2_write.PointToLineProtocol(AttackPoint("abc", "host", r), time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "attack,"))
	assert.Contains(t, line, "board=opponent")
	assert.Contains(t, line, "outcome=HIT_HEAD")
	assert.Contains(t, line, "role=host")
	assert.Contains(t, line, "session=abc")
	assert.Contains(t, line, "x=4i")
	assert.Contains(t, line, "y=9i")
	assert.Contains(t, line, "hit=true")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "1709287200000000000"))
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: false}, "s", "host")

	err := m.Connect(context.Background())
	assert.True(t, errors.Is(err, ErrDisabled))
	assert.False(t, m.IsValid)
}

func TestWriteAttack_NotConnected(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{}, "s", "join")
	assert.Error(t, m.WriteAttack(core.AttackRecord{}))
}

func TestConnect_WritesPoints(t *testing.T) {
	bodies := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v2/write":
			buf := new(strings.Builder)
			_, _ = io.Copy(buf, r.Body)
			bodies <- buf.String()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled: true,
		URL:     srv.URL,
		Token:   "t",
		Org:     "org",
		Bucket:  "bucket",
	}, "sess", "host")

	require.NoError(t, m.Connect(context.Background()))
	assert.True(t, m.IsValid)

	require.NoError(t, m.WriteAttack(core.AttackRecord{
		Board:   core.OwnBoard,
		At:      core.Coordinate{X: 1, Y: 2},
		Outcome: core.Miss,
	}))
	m.Close()

	select {
	case body := <-bodies:
		assert.Contains(t, body, "attack,")
		assert.Contains(t, body, "outcome=MISS")
	case <-time.After(5 * time.Second):
		t.Fatal("no write received")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: true, URL: srv.URL}, "s", "host")

	assert.Error(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)
}
