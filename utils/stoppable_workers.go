package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a collection of goroutines, such as an output loop or a timed motor test,
// that share one cancellation and can be stopped and waited for together.
type StoppableWorkers struct {
	mu         sync.Mutex
	cancelCtx  context.Context
	cancelFunc func()
	wg         sync.WaitGroup
}

// NewStoppableWorkers runs the functions in separate goroutines. They can be stopped later.
func NewStoppableWorkers(funcs ...func(context.Context)) *StoppableWorkers {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	sw := &StoppableWorkers{cancelCtx: cancelCtx, cancelFunc: cancelFunc}
	sw.AddWorkers(funcs...)
	return sw
}

// AddWorkers starts a goroutine for each function. It returns false, starting nothing, once Stop
// has been called.
func (sw *StoppableWorkers) AddWorkers(funcs ...func(context.Context)) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.cancelCtx.Err() != nil {
		return false
	}
	sw.wg.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.wg.Done()
			f(sw.cancelCtx)
		})
	}
	return true
}

// Stop cancels every worker and waits for them to return. Workers may call AddWorkers while
// stopping; those calls start nothing.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	sw.cancelFunc()
	sw.mu.Unlock()
	sw.wg.Wait()
}

// Context is the context every worker receives.
func (sw *StoppableWorkers) Context() context.Context {
	return sw.cancelCtx
}
