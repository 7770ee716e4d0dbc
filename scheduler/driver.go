package scheduler

import "sync"

// Advancer is anything that moves itself forward by a time slice and can say
// when it has settled. motion's spring satisfies it.
type Advancer interface {
	Advance(deltaTime float64) float64
	CanSleep() bool
}

// Driver steps an Advancer on a Scheduler's frames and hands each new value
// to an apply callback. When the target reports it can sleep, the Driver
// parks: it applies that final value, then skips frames until Wake. The
// parked value sits inside the target's sleep thresholds, so nothing visible
// is lost by parking.
type Driver struct {
	disconnect func()

	mu       sync.Mutex
	target   Advancer
	apply    func(float64)
	sleeping bool
}

// NewDriver attaches a Driver for target to sched. A target that is already
// settled starts parked. apply may be nil when only the target's own state
// matters.
func NewDriver(sched *Scheduler, target Advancer, apply func(float64)) *Driver {
	d := &Driver{
		target:   target,
		apply:    apply,
		sleeping: target.CanSleep(),
	}
	d.disconnect = sched.OnFrame(d.frame)
	return d
}

func (d *Driver) frame(dt float64) {
	d.mu.Lock()
	if d.sleeping {
		d.mu.Unlock()
		return
	}
	value := d.target.Advance(dt)
	d.sleeping = d.target.CanSleep()
	apply := d.apply
	d.mu.Unlock()

	if apply != nil {
		apply(value)
	}
}

// Wake unparks the Driver so the next frame advances the target again. Call
// it after retargeting or disturbing the target.
func (d *Driver) Wake() {
	d.mu.Lock()
	d.sleeping = false
	d.mu.Unlock()
}

// Sleeping reports whether the Driver is parked.
func (d *Driver) Sleeping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sleeping
}

// Stop detaches the Driver from its Scheduler for good. A stopped Driver
// never advances its target again; make a new one to resume.
func (d *Driver) Stop() {
	d.disconnect()
}
