package utils

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestAssertType(t *testing.T) {
	one := 1
	_, err := AssertType[string](one)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err, test.ShouldBeError, NewUnexpectedTypeError[string](one))
	test.That(t, err.Error(), test.ShouldEqual, "expected string but got int")

	_, err = AssertType[myAssertIfc](one)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "myAssertIfc")

	asserted, err := AssertType[myAssertIfc](myAssertInt(one))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, asserted.method1(), test.ShouldBeError, errors.New("cool 8)"))
}

type myAssertIfc interface {
	method1() error
}

type myAssertInt int

func (m myAssertInt) method1() error {
	return errors.New("cool 8)")
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(2, 0, 1), test.ShouldEqual, 1.0)
	test.That(t, Clamp(-2, 0, 1), test.ShouldEqual, 0.0)
	test.That(t, Clamp(0.3, 0, 1), test.ShouldEqual, 0.3)
	test.That(t, Clamp(math.NaN(), 0.2, 1), test.ShouldEqual, 0.2)
	test.That(t, ClampSigned(math.NaN()), test.ShouldEqual, 0.0)
	test.That(t, ClampSigned(-3), test.ShouldEqual, -1.0)
}

func TestAngles(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, Lerp(20, 200, 0.5), test.ShouldEqual, 110.0)
	test.That(t, ScaleByPct(255, 2), test.ShouldEqual, 255)
	test.That(t, Float64AlmostEqual(1, 1.0001, 1e-3), test.ShouldBeTrue)
}

func TestGuard(t *testing.T) {
	cleaned := 0
	func() {
		guard := NewGuard(func() { cleaned++ })
		defer guard.OnFail()
	}()
	test.That(t, cleaned, test.ShouldEqual, 1)

	func() {
		guard := NewGuard(func() { cleaned++ })
		defer guard.OnFail()
		guard.Success()
	}()
	test.That(t, cleaned, test.ShouldEqual, 1)
}
