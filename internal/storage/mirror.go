package storage

import (
	"github.com/planewar/planewar/pkg/core"
)

// Mirror records into a primary backend and copies every attack to the sinks.
// Sink failures are reported through onSinkError and never fail the recording.
type Mirror struct {
	Backend
	sinks       []AttackSink
	onSinkError func(error)
}

// NewMirror wraps primary. A nil onSinkError discards sink errors.
func NewMirror(primary Backend, onSinkError func(error), sinks ...AttackSink) *Mirror {
	return &Mirror{
		Backend:     primary,
		sinks:       sinks,
		onSinkError: onSinkError,
	}
}

// RecordAttack records into the primary backend, then into each sink.
func (m *Mirror) RecordAttack(r core.AttackRecord) error {
	if err := m.Backend.RecordAttack(r); err != nil {
		return err
	}
	for _, s := range m.sinks {
		if err := s.WriteAttack(r); err != nil && m.onSinkError != nil {
			m.onSinkError(err)
		}
	}
	return nil
}
