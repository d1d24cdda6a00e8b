// Package mechsim is a fixed-timestep simulation framework: it owns
// the entity lifecycle, the surface material table, and the collision
// resolver that turns broad-phase pairs into contact constraints, and
// drives the engine in deterministic fixed slices decoupled from the
// caller's frame rate.
package mechsim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/clist"
	"github.com/codifies/mechsim/collide"
	"github.com/codifies/mechsim/constraint"
	"github.com/codifies/mechsim/engine"
)

// Clock returns monotonically increasing wall-clock seconds. It is a
// field on the context so tests can feed synthetic time.
type Clock func() float64

// Config tunes a simulation context. The zero value is completed with
// defaults by NewContext.
type Config struct {
	// Slice is the fixed physics step in seconds.
	Slice float64
	// MaxSteps caps the catch-up slices per Step call.
	MaxSteps int
	// Gravity defaults to 9.8 m/s² along -Y.
	Gravity mgl64.Vec3
	// CellSize and Cells size the broad-phase grid.
	CellSize float64
	Cells    int
	// Seed drives the context's random source; 0 seeds from time.
	Seed int64
	// Clock overrides the frame-time source.
	Clock Clock
	// Logger receives scheduler diagnostics; nil disables logging.
	Logger *zap.Logger
}

const (
	defaultSlice    = 1.0 / 240
	defaultMaxSteps = 6
	defaultCellSize = 2.0
	defaultCells    = 4096
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.Slice == 0 {
		out.Slice = defaultSlice
	}
	if out.MaxSteps == 0 {
		out.MaxSteps = defaultMaxSteps
	}
	if out.Gravity == (mgl64.Vec3{}) {
		out.Gravity = mgl64.Vec3{0, -9.8, 0}
	}
	if out.CellSize == 0 {
		out.CellSize = defaultCellSize
	}
	if out.Cells == 0 {
		out.Cells = defaultCells
	}
	if out.Seed == 0 {
		out.Seed = time.Now().UnixNano()
	}
	if out.Clock == nil {
		start := time.Now()
		out.Clock = func() float64 {
			return time.Since(start).Seconds()
		}
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

func (c *Config) validate() error {
	if c.Slice < 0 {
		return fmt.Errorf("slice duration %v is negative", c.Slice)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max steps %d is negative", c.MaxSteps)
	}
	if c.CellSize < 0 {
		return fmt.Errorf("cell size %v is negative", c.CellSize)
	}
	if c.Cells < 0 {
		return fmt.Errorf("cell count %d is negative", c.Cells)
	}
	return nil
}

// Context is one self-contained simulation: the engine world, the
// broad-phase space, and the entity registries. Contexts share nothing,
// so several can run side by side. All methods must be called from a
// single goroutine.
type Context struct {
	World *engine.World
	Space *collide.Space

	// Objects holds the live entities; Statics the bodiless collision
	// geometry. Both support deletion mid-iteration provided the
	// cursor is advanced first.
	Objects *clist.List[*Entity]
	Statics *clist.List[*actor.Geom]

	// Slice and MaxSteps fix the scheduler behaviour.
	Slice    float64
	MaxSteps int

	clock    Clock
	accum    float64
	lastTime float64
	started  bool

	contacts     constraint.Group
	lastContacts int
	rng          *rand.Rand
	log          *zap.Logger
}

// NewContext builds a simulation context from cfg, completing missing
// fields with defaults.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("simulation config: %w", err)
	}
	cfg = cfg.withDefaults()

	w := engine.NewWorld()
	w.Gravity = cfg.Gravity

	return &Context{
		World:    w,
		Space:    collide.NewSpace(cfg.CellSize, cfg.Cells),
		Objects:  &clist.List[*Entity]{},
		Statics:  &clist.List[*actor.Geom]{},
		Slice:    cfg.Slice,
		MaxSteps: cfg.MaxSteps,
		clock:    cfg.Clock,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		log:      cfg.Logger,
	}, nil
}

// Rnd returns a uniform random value in [min, max) from the context's
// own source.
func (ctx *Context) Rnd(min, max float64) float64 {
	return min + ctx.rng.Float64()*(max-min)
}

// Free destroys every entity and static shape the context tracks. The
// context must not be used afterwards.
func (ctx *Context) Free() {
	for node := ctx.Objects.Head(); node != nil; {
		next := node.Next()
		ctx.FreeEntity(node.Data)
		node = next
	}
	for node := ctx.Statics.Head(); node != nil; {
		next := node.Next()
		ctx.FreeStatic(node)
		node = next
	}
}
