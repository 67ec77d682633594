package operation

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/kestrel/logging"
)

func TestBasic(t *testing.T) {
	ctx := context.Background()

	logger := logging.NewTestLogger(t)
	h := NewManager(logger, nil)
	o := Get(ctx)
	test.That(t, o, test.ShouldBeNil)

	test.That(t, len(h.All()), test.ShouldEqual, 0)

	func() {
		ctx2, cleanup := h.Create(ctx, "1", nil)
		defer cleanup()

		test.That(t, func() { h.Create(ctx2, "b", nil) }, test.ShouldPanic)

		o := Get(ctx2)
		test.That(t, o, test.ShouldNotBeNil)
		test.That(t, o.ID.String(), test.ShouldNotEqual, "")
		test.That(t, len(h.All()), test.ShouldEqual, 1)
		test.That(t, h.All()[0].ID, test.ShouldEqual, o.ID)
		test.That(t, h.Find(o.ID).ID, test.ShouldEqual, o.ID)
		test.That(t, h.FindString(o.ID.String()).ID, test.ShouldEqual, o.ID)
	}()

	test.That(t, len(h.All()), test.ShouldEqual, 0)

	func() {
		ctx2, cleanup2 := h.Create(ctx, "a", nil)
		defer cleanup2()

		ctx3, cleanup3 := h.Create(ctx, "b", nil)
		defer cleanup3()

		CancelOtherWithLabel(ctx2, "motor-test")
		CancelOtherWithLabel(ctx3, "motor-test")
		CancelOtherWithLabel(ctx, "motor-test")

		test.That(t, ctx3.Err(), test.ShouldBeNil)
		test.That(t, ctx2.Err(), test.ShouldNotBeNil)
		test.That(t, Get(ctx3).HasLabel("motor-test"), test.ShouldBeTrue)
	}()
}

func TestStartedUsesClock(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(time.Hour)
	h := NewManager(logging.NewTestLogger(t), clk)

	ctx, cleanup := h.Create(context.Background(), "motor_test", map[string]int{"seq": 1})
	defer cleanup()
	op := Get(ctx)
	test.That(t, op.Started.Equal(clk.Now()), test.ShouldBeTrue)
	test.That(t, op.Method, test.ShouldEqual, "motor_test")
	test.That(t, op.Arguments, test.ShouldResemble, map[string]int{"seq": 1})

	op.Cancel()
	test.That(t, ctx.Err(), test.ShouldNotBeNil)
}
