package motors

import (
	"strings"

	"github.com/pkg/errors"
)

// Positions returns the arm positions in logical channel order.
func Positions() []Position {
	ps := allPositions
	return ps[:]
}

// MotorChannel returns the logical channel of the motor on arm p.
func (p Position) MotorChannel() Channel {
	return motorChannel(p)
}

// VaneChannel returns the logical channel of the vane on arm p.
func (p Position) VaneChannel() Channel {
	return vaneChannel(p)
}

// ParsePosition parses "right", "left" or "fore".
func ParsePosition(s string) (Position, error) {
	for _, p := range allPositions {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, errors.Errorf("unknown arm position %q", s)
}

// ParseFrameClass parses a frame class name such as "kestrel".
func ParseFrameClass(s string) (FrameClass, error) {
	for _, c := range []FrameClass{FrameClassUndefined, FrameClassQuad, FrameClassTri, FrameClassKestrel} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return FrameClassUndefined, errors.Errorf("unknown frame class %q", s)
}

// ParseFrameType parses a frame type name such as "plus" or "plusrev". "pitch-reversed" is
// accepted for FrameTypePlusRev.
func ParseFrameType(s string) (FrameType, error) {
	if strings.EqualFold(s, "pitch-reversed") {
		return FrameTypePlusRev, nil
	}
	for _, t := range []FrameType{FrameTypePlus, FrameTypeX, FrameTypePlusRev} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return FrameTypePlus, errors.Errorf("unknown frame type %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *FrameClass) UnmarshalText(text []byte) error {
	parsed, err := ParseFrameClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c FrameClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FrameType) UnmarshalText(text []byte) error {
	parsed, err := ParseFrameType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t FrameType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
