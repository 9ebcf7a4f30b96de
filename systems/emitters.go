package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/smoke/components"
	"github.com/pthm-cable/smoke/config"
)

// DensitySink receives injected density. *fluid.Simulation satisfies it.
type DensitySink interface {
	AddDensityRadius(x, y, z int, amount float32, radius int)
}

// Emitters owns the density sources of a session and applies them once per
// tick. Expired sources are removed after iteration completes.
type Emitters struct {
	world *ecs.World

	emitterMap *ecs.Map1[components.Emitter]
	timedMap   *ecs.Map2[components.Emitter, components.Lifetime]

	emitterFilter  *ecs.Filter1[components.Emitter]
	lifetimeFilter *ecs.Filter1[components.Lifetime]

	expired []ecs.Entity
	count   int
}

// NewEmitters creates an empty emitter system with its own world.
func NewEmitters() *Emitters {
	world := ecs.NewWorld()
	return &Emitters{
		world:          world,
		emitterMap:     ecs.NewMap1[components.Emitter](world),
		timedMap:       ecs.NewMap2[components.Emitter, components.Lifetime](world),
		emitterFilter:  ecs.NewFilter1[components.Emitter](world),
		lifetimeFilter: ecs.NewFilter1[components.Lifetime](world),
	}
}

// Spawn adds an emitter. A positive lifetime (seconds) makes it expire.
func (s *Emitters) Spawn(e components.Emitter, lifetime float32) ecs.Entity {
	s.count++
	if lifetime > 0 {
		life := components.Lifetime{Remaining: lifetime}
		return s.timedMap.NewEntity(&e, &life)
	}
	return s.emitterMap.NewEntity(&e)
}

// SpawnConfigured places the configured emitters on a grid of the given width.
func (s *Emitters) SpawnConfigured(cfgs []config.EmitterConfig, gridWidth int) {
	for _, c := range cfgs {
		x, y, z := c.Cell(gridWidth)
		s.Spawn(components.Emitter{X: x, Y: y, Z: z, Amount: float32(c.Amount), Radius: c.Radius}, float32(c.Lifetime))
	}
	if len(cfgs) > 0 {
		slog.Debug("emitters spawned", "count", len(cfgs), "grid_width", gridWidth)
	}
}

// Apply injects every emitter's density into sink, then ages lifetimes by dt
// and removes the entities that ran out.
func (s *Emitters) Apply(sink DensitySink, dt float32) {
	query := s.emitterFilter.Query()
	for query.Next() {
		e := query.Get()
		sink.AddDensityRadius(e.X, e.Y, e.Z, e.Amount, e.Radius)
	}

	// First pass: age lifetimes (entities cannot be removed mid-query)
	s.expired = s.expired[:0]
	lq := s.lifetimeFilter.Query()
	for lq.Next() {
		life := lq.Get()
		life.Remaining -= dt
		if life.Expired() {
			s.expired = append(s.expired, lq.Entity())
		}
	}

	// Second pass: remove
	for _, entity := range s.expired {
		s.world.RemoveEntity(entity)
		s.count--
	}
}

// Count returns the number of live emitters.
func (s *Emitters) Count() int { return s.count }

// Clear removes every emitter.
func (s *Emitters) Clear() {
	s.expired = s.expired[:0]
	query := s.emitterFilter.Query()
	for query.Next() {
		s.expired = append(s.expired, query.Entity())
	}
	for _, entity := range s.expired {
		s.world.RemoveEntity(entity)
	}
	s.expired = s.expired[:0]
	s.count = 0
}
