package utils

// Guard runs a cleanup when a constructor that has already acquired resources fails part way.
//
//	guard := NewGuard(func() { m.Stop(ctx) })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that runs onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success disarms the cleanup.
func (guard *Guard) Success() {
	guard.success = true
}
