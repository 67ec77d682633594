package utils

import (
	"context"
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	var running, stopped atomic.Int32
	started := make(chan struct{}, 2)
	worker := func(ctx context.Context) {
		running.Add(1)
		started <- struct{}{}
		<-ctx.Done()
		stopped.Add(1)
	}

	sw := NewStoppableWorkers(worker)
	test.That(t, sw.AddWorkers(worker), test.ShouldBeTrue)
	<-started
	<-started
	test.That(t, running.Load(), test.ShouldEqual, int32(2))

	sw.Stop()
	test.That(t, stopped.Load(), test.ShouldEqual, int32(2))
	test.That(t, sw.Context().Err(), test.ShouldNotBeNil)
	test.That(t, sw.AddWorkers(worker), test.ShouldBeFalse)
}
