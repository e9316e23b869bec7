package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/planewar/planewar/pkg/core"
)

// ErrMalformed marks every decode failure.
var ErrMalformed = errors.New("malformed message")

// DecodeError describes why a frame could not be decoded.
type DecodeError struct {
	Frame  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformed, e.Frame, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrMalformed }

// Encode renders a message as one frame without a delimiter.
func Encode(m Message) ([]byte, error) {
	switch v := m.(type) {
	case Attack:
		return []byte(fmt.Sprintf("%s:%d,%d", TokenAttack, v.At.X, v.At.Y)), nil
	case *Attack:
		return Encode(*v)
	case Result:
		return []byte(fmt.Sprintf("%s:%d,%d:%s", TokenResult, v.At.X, v.At.Y, v.Outcome)), nil
	case *Result:
		return Encode(*v)
	case ConfirmPlanes, *ConfirmPlanes:
		return []byte(TokenConfirmPlanes), nil
	case GameOver, *GameOver:
		return []byte(TokenGameOver), nil
	case nil:
		return nil, errors.New("encode: nil message")
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}
}

// Decode parses one frame. Leading and trailing whitespace (including a CR) is ignored.
func Decode(frame []byte) (Message, error) {
	raw := string(frame)
	s := strings.TrimSpace(raw)
	fail := func(format string, args ...any) (Message, error) {
		return nil, &DecodeError{Frame: raw, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case s == TokenConfirmPlanes:
		return ConfirmPlanes{}, nil
	case s == TokenGameOver:
		return GameOver{}, nil
	case strings.HasPrefix(s, TokenAttack+":"):
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return fail("attack wants 2 fields, got %d", len(parts))
		}
		at, err := parseCoordinate(parts[1])
		if err != nil {
			return fail("%v", err)
		}
		return Attack{At: at}, nil
	case strings.HasPrefix(s, TokenResult+":"):
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return fail("result wants 3 fields, got %d", len(parts))
		}
		at, err := parseCoordinate(parts[1])
		if err != nil {
			return fail("%v", err)
		}
		outcome, err := core.ParseOutcome(strings.TrimSpace(parts[2]))
		if err != nil {
			return fail("%v", err)
		}
		return Result{At: at, Outcome: outcome}, nil
	case s == "":
		return fail("empty frame")
	default:
		return fail("unknown message")
	}
}

func parseCoordinate(s string) (core.Coordinate, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return core.Coordinate{}, fmt.Errorf("coordinate wants 2 values, got %d", len(xy))
	}
	x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("x is not an integer: %q", xy[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("y is not an integer: %q", xy[1])
	}
	return core.Coordinate{X: x, Y: y}, nil
}
