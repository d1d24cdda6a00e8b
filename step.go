package mechsim

import "go.uber.org/zap"

// Step advances the simulation by the wall-clock time elapsed since
// the previous call, in fixed slices. It returns the number of slices
// executed; callers can surface a warning when it keeps hitting
// MaxSteps.
//
// When the elapsed time demands more than MaxSteps slices, the excess
// time is discarded (the accumulator resets to zero) so the simulation
// dilates instead of falling ever further behind.
func (ctx *Context) Step() int {
	now := ctx.clock()
	if !ctx.started {
		ctx.started = true
		ctx.lastTime = now
	}
	ctx.accum += now - ctx.lastTime
	ctx.lastTime = now

	steps := 0
	for ctx.accum >= ctx.Slice {
		if steps >= ctx.MaxSteps {
			ctx.log.Warn("scheduler overloaded, discarding time",
				zap.Float64("discarded", ctx.accum),
				zap.Int("maxSteps", ctx.MaxSteps))
			ctx.accum = 0
			break
		}

		ctx.Space.Collide(ctx.nearCallback)
		ctx.World.QuickStep(ctx.Slice, &ctx.contacts)
		ctx.lastContacts = ctx.contacts.Len()
		ctx.contacts.Empty()

		ctx.accum -= ctx.Slice
		steps++
	}
	return steps
}

// Accumulator exposes the leftover sub-slice time, mostly for render
// interpolation and tests.
func (ctx *Context) Accumulator() float64 { return ctx.accum }
