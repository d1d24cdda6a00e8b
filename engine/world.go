// Package engine integrates rigid bodies and solves their constraints.
// It knows nothing about collision detection: the caller feeds it the
// contact constraints produced for each step.
package engine

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/constraint"
)

const defaultWorkers = 1

// World owns the dynamic bodies and permanent joints of a simulation.
type World struct {
	Gravity mgl64.Vec3

	// Iterations is the sequential-impulse solver iteration count per
	// step.
	Iterations int

	// Workers bounds the goroutines used for body integration.
	Workers int

	// AutoSleep disables bodies whose velocity stays under the
	// thresholds for SleepSteps consecutive steps.
	AutoSleep    bool
	SleepLinear  float64
	SleepAngular float64
	SleepSteps   int

	bodies []*actor.Body
	joints []constraint.Joint
}

// NewWorld creates a world with gravity along -Y and default solver
// settings.
func NewWorld() *World {
	return &World{
		Gravity:      mgl64.Vec3{0, -9.8, 0},
		Iterations:   10,
		Workers:      defaultWorkers,
		AutoSleep:    true,
		SleepLinear:  0.05,
		SleepAngular: 0.05,
		SleepSteps:   4,
	}
}

// NewBody creates a body registered for integration.
func (w *World) NewBody() *actor.Body {
	b := actor.NewBody()
	w.bodies = append(w.bodies, b)
	return b
}

// RemoveBody unregisters a body and drops any joints attached to it.
func (w *World) RemoveBody(body *actor.Body) {
	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	kept := w.joints[:0]
	for _, j := range w.joints {
		a, b := j.Bodies()
		if a != body && b != body {
			kept = append(kept, j)
		}
	}
	w.joints = kept
}

// Bodies returns the registered bodies. The slice is owned by the
// world.
func (w *World) Bodies() []*actor.Body { return w.bodies }

// AddJoint registers a permanent joint.
func (w *World) AddJoint(j constraint.Joint) {
	w.joints = append(w.joints, j)
}

// RemoveJoint unregisters a joint. Unknown joints are ignored.
func (w *World) RemoveJoint(j constraint.Joint) {
	for i, other := range w.joints {
		if other == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return
		}
	}
}

// Connected reports whether a joint directly links the two bodies.
// Contact generation uses this to skip jointed pairs.
func (w *World) Connected(a, b *actor.Body) bool {
	for _, j := range w.joints {
		ja, jb := j.Bodies()
		if (ja == a && jb == b) || (ja == b && jb == a) {
			return true
		}
	}
	return false
}

// QuickStep advances the simulation by dt, solving the permanent
// joints together with the transient contacts collected in the group.
func (w *World) QuickStep(dt float64, contacts *constraint.Group) {
	workers := max(defaultWorkers, w.Workers)

	task(workers, w.bodies, func(b *actor.Body) {
		b.IntegrateForces(dt, w.Gravity)
	})

	for _, j := range w.joints {
		j.Prepare(dt)
	}
	if contacts != nil {
		contacts.Each(func(c constraint.Constraint) { c.Prepare(dt) })
	}

	for i := 0; i < w.Iterations; i++ {
		for _, j := range w.joints {
			j.SolveVelocity(dt)
		}
		if contacts != nil {
			contacts.Each(func(c constraint.Constraint) { c.SolveVelocity(dt) })
		}
	}

	task(workers, w.bodies, func(b *actor.Body) {
		b.IntegratePosition(dt)
		b.ClearAccumulators()
	})

	if w.AutoSleep {
		w.trySleep()
	}
}

// trySleep disables bodies that have idled below the velocity
// thresholds for long enough.
func (w *World) trySleep() {
	for _, b := range w.bodies {
		if b.Disabled || b.InvMass() == 0 {
			continue
		}
		if b.Idle(w.SleepLinear, w.SleepAngular) {
			b.IdleSteps++
			if b.IdleSteps >= w.SleepSteps {
				b.Disable()
			}
		} else {
			b.IdleSteps = 0
		}
	}
}
