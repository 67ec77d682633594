package motors

import (
	"testing"

	"go.viam.com/test"
)

func TestParse(t *testing.T) {
	p, err := ParsePosition("Fore")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldEqual, PositionFore)
	test.That(t, p.MotorChannel(), test.ShouldEqual, ChannelMotorFore)
	test.That(t, p.VaneChannel(), test.ShouldEqual, ChannelVaneFore)
	_, err = ParsePosition("aft")
	test.That(t, err, test.ShouldNotBeNil)

	var c FrameClass
	test.That(t, c.UnmarshalText([]byte("kestrel")), test.ShouldBeNil)
	test.That(t, c, test.ShouldEqual, FrameClassKestrel)
	test.That(t, c.UnmarshalText([]byte("hexa")), test.ShouldNotBeNil)

	var ft FrameType
	test.That(t, ft.UnmarshalText([]byte("plusrev")), test.ShouldBeNil)
	test.That(t, ft, test.ShouldEqual, FrameTypePlusRev)
	text, err := ft.MarshalText()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(text), test.ShouldEqual, "plusrev")

	ft, err = ParseFrameType("Pitch-Reversed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ft, test.ShouldEqual, FrameTypePlusRev)

	test.That(t, Positions(), test.ShouldResemble, []Position{PositionRight, PositionLeft, PositionFore})
}
