package inject

import (
	"sync"

	"go.viam.com/kestrel/motors"
)

// Driver is an injectable motors.Driver that also implements motors.RateSetter.
type Driver struct {
	WriteFunc   func(cmds []motors.ChannelCommand) error
	SetRateFunc func(mask uint32, hz int) error

	mu     sync.Mutex
	writes [][]motors.ChannelCommand
}

// Write records cmds and calls WriteFunc if set.
func (d *Driver) Write(cmds []motors.ChannelCommand) error {
	d.mu.Lock()
	d.writes = append(d.writes, append([]motors.ChannelCommand(nil), cmds...))
	d.mu.Unlock()
	if d.WriteFunc == nil {
		return nil
	}
	return d.WriteFunc(cmds)
}

// SetRate calls SetRateFunc if set.
func (d *Driver) SetRate(mask uint32, hz int) error {
	if d.SetRateFunc == nil {
		return nil
	}
	return d.SetRateFunc(mask, hz)
}

// Writes returns a copy of every write received so far.
func (d *Driver) Writes() [][]motors.ChannelCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]motors.ChannelCommand(nil), d.writes...)
}

// Last returns the most recent write, or nil.
func (d *Driver) Last() []motors.ChannelCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.writes) == 0 {
		return nil
	}
	return d.writes[len(d.writes)-1]
}

// Value returns the value for ch in the most recent write.
func (d *Driver) Value(ch motors.Channel) (motors.ChannelCommand, bool) {
	for _, cmd := range d.Last() {
		if cmd.Channel == ch {
			return cmd, true
		}
	}
	return motors.ChannelCommand{}, false
}
