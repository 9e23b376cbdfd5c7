// Package sim advances the slime model one tick at a time.
//
// A Simulation owns the agent population, the pheromone field and the
// obstacle and food collections. Step fans the population out to a fixed pool
// of workers, waits for all of them, then evaporates the field once.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slime/components"
	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
)

// PhaseObserver receives timing callbacks around the phases of a tick.
// telemetry.PerfCollector implements it.
type PhaseObserver interface {
	StartTick()
	StartPhase(name string)
	EndTick()
}

type nopObserver struct{}

func (nopObserver) StartTick()        {}
func (nopObserver) StartPhase(string) {}
func (nopObserver) EndTick()          {}

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg    *config.Config
	params systems.Params
	rng    *rand.Rand

	// ECS storage for the slime population
	world       *ecs.World
	slimeMapper *ecs.Map3[components.Position, components.Heading, components.Affinity]
	slimeFilter *ecs.Filter3[components.Position, components.Heading, components.Affinity]

	field *systems.PheromoneField
	grid  *systems.SpatialGrid

	// Append-only collections edited by the host between ticks
	collMu    sync.RWMutex
	obstacles []systems.Obstacle
	food      []systems.FoodSource

	// Per-tick buffers, owned by Step
	stepMu    sync.Mutex
	snapshots []systems.Agent
	results   []systems.Agent
	env       systems.Environment

	// Agent state published for renderers after each tick
	pubMu     sync.RWMutex
	published []systems.Agent

	parallel *parallelState
	observer PhaseObserver

	active atomic.Bool
	tick   atomic.Int64
}

// New validates cfg and builds a simulation with a randomly placed population
// and food layout drawn from seed.
func New(cfg *config.Config, seed int64) (*Simulation, error) {
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH

	workers := cfg.Parallel.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:         cfg,
		params:      systems.ParamsFromConfig(cfg),
		rng:         rand.New(rand.NewSource(seed)),
		world:       world,
		slimeMapper: ecs.NewMap3[components.Position, components.Heading, components.Affinity](world),
		slimeFilter: ecs.NewFilter3[components.Position, components.Heading, components.Affinity](world),
		field:       systems.NewPheromoneField(w, h),
		grid:        systems.NewSpatialGrid(float64(w), float64(h), cfg.Slime.AvoidanceRadius),
		snapshots:   make([]systems.Agent, 0, cfg.Slime.Count),
		results:     make([]systems.Agent, cfg.Slime.Count),
		parallel:    newParallelState(workers, seed),
		observer:    nopObserver{},
	}

	s.spawnPopulation(cfg.Slime.Count)
	s.spawnFood(cfg.Food.Count, cfg.Food.Radius)

	s.snapshot()
	s.published = append(s.published[:0], s.snapshots...)

	return s, nil
}

// spawnPopulation creates n slimes with uniform random position and heading.
func (s *Simulation) spawnPopulation(n int) {
	w, h := float64(s.field.W), float64(s.field.H)
	for i := 0; i < n; i++ {
		pos := components.Position{
			X: systems.WrapCoord(s.rng.Float64()*w, w),
			Y: systems.WrapCoord(s.rng.Float64()*h, h),
		}
		head := components.Heading{Angle: s.rng.Float64() * 2 * math.Pi}
		aff := components.Affinity{}
		s.slimeMapper.NewEntity(&pos, &head, &aff)
	}
}

// spawnFood scatters n food sources at integer positions across the world.
func (s *Simulation) spawnFood(n int, radius float64) {
	for i := 0; i < n; i++ {
		s.food = append(s.food, systems.FoodSource{
			X:      float64(s.rng.Intn(s.field.W + 1)),
			Y:      float64(s.rng.Intn(s.field.H + 1)),
			Radius: radius,
		})
	}
}

// SetObserver installs a phase observer; nil removes it.
func (s *Simulation) SetObserver(o PhaseObserver) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Step advances the whole system by exactly one tick. It blocks until every
// agent has sensed and moved and the field has evaporated.
func (s *Simulation) Step() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	obs := s.observer
	obs.StartTick()

	// Phase A: freeze agents, obstacles and food for this tick
	obs.StartPhase(telemetry.PhaseSnapshot)
	s.snapshot()

	obs.StartPhase(telemetry.PhaseSpatialGrid)
	s.grid.Rebuild(s.snapshots)

	// Phase B: sense+move, parallel above the threshold
	obs.StartPhase(telemetry.PhaseSenseMove)
	n := len(s.snapshots)
	if cap(s.results) < n {
		s.results = make([]systems.Agent, n)
	}
	s.results = s.results[:n]
	if n < parallelThreshold || s.parallel.numWorkers == 1 {
		s.computeChunk(0, n, &s.parallel.scratches[0])
	} else {
		s.computeParallel(n)
	}

	// Phase C: write results back (single-threaded)
	obs.StartPhase(telemetry.PhaseApply)
	s.applyResults()

	// Phase D: evaporation strictly after every deposit of the tick
	obs.StartPhase(telemetry.PhaseEvaporate)
	s.field.Evaporate(s.cfg.Slime.EvaporationRate)
	if s.cfg.Field.Diffusion > 0 {
		s.field.Diffuse(s.cfg.Field.Diffusion)
	}

	s.tick.Add(1)
	obs.EndTick()
}

// Advance steps once if the simulation is active and reports whether it did.
func (s *Simulation) Advance() bool {
	if !s.Active() {
		return false
	}
	s.Step()
	return true
}

// snapshot copies ECS state into s.snapshots and captures the current
// obstacle and food views into the sensing environment.
func (s *Simulation) snapshot() {
	s.snapshots = s.snapshots[:0]

	query := s.slimeFilter.Query()
	for query.Next() {
		pos, head, aff := query.Get()
		s.snapshots = append(s.snapshots, systems.Agent{
			X:        pos.X,
			Y:        pos.Y,
			Heading:  head.Angle,
			Affinity: aff.Food,
		})
	}

	// Capped slice headers: later appends never touch what this tick reads.
	s.collMu.RLock()
	s.env = systems.Environment{
		Field:     s.field,
		Obstacles: s.obstacles[:len(s.obstacles):len(s.obstacles)],
		Food:      s.food[:len(s.food):len(s.food)],
		Agents:    s.snapshots,
		Grid:      s.grid,
	}
	s.collMu.RUnlock()
}

// applyResults writes computed agents back to ECS components and publishes
// them for renderers. The world is not structurally changed between snapshot
// and apply, so query order matches snapshot order.
func (s *Simulation) applyResults() {
	i := 0
	query := s.slimeFilter.Query()
	for query.Next() {
		pos, head, aff := query.Get()
		r := &s.results[i]
		pos.X, pos.Y = r.X, r.Y
		head.Angle = r.Heading
		aff.Food = r.Affinity
		i++
	}

	s.pubMu.Lock()
	s.published = append(s.published[:0], s.results...)
	s.pubMu.Unlock()
}

// Components returns copies of the ECS components of the i-th slime, in the
// same order as Agents.
func (s *Simulation) Components(i int) (components.Position, components.Heading, components.Affinity, bool) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	var (
		pos  components.Position
		head components.Heading
		aff  components.Affinity
		ok   bool
	)
	j := 0
	query := s.slimeFilter.Query()
	for query.Next() {
		if j == i {
			p, h, a := query.Get()
			pos, head, aff, ok = *p, *h, *a, true
		}
		j++
	}
	return pos, head, aff, ok
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int64 {
	return s.tick.Load()
}

// SetActive opens or closes the gate consulted by Advance.
func (s *Simulation) SetActive(active bool) {
	s.active.Store(active)
}

// Active reports whether continuous stepping is enabled.
func (s *Simulation) Active() bool {
	return s.active.Load()
}

// AddObstacle appends an obstacle. It is seen from the next tick on.
func (s *Simulation) AddObstacle(o systems.Obstacle) {
	s.collMu.Lock()
	s.obstacles = append(s.obstacles, o)
	s.collMu.Unlock()
}

// AddFood appends a food source. It is seen from the next tick on.
func (s *Simulation) AddFood(f systems.FoodSource) {
	s.collMu.Lock()
	s.food = append(s.food, f)
	s.collMu.Unlock()
}

// Obstacles returns a copy of the obstacle list.
func (s *Simulation) Obstacles() []systems.Obstacle {
	s.collMu.RLock()
	defer s.collMu.RUnlock()
	return append([]systems.Obstacle(nil), s.obstacles...)
}

// Food returns a copy of the food source list.
func (s *Simulation) Food() []systems.FoodSource {
	s.collMu.RLock()
	defer s.collMu.RUnlock()
	return append([]systems.FoodSource(nil), s.food...)
}

// Agents copies the agent state as of the last completed tick into dst
// (grown if needed) and returns it.
func (s *Simulation) Agents(dst []systems.Agent) []systems.Agent {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	return append(dst[:0], s.published...)
}

// FieldSnapshot copies the field into dst (grown if needed) and returns it.
// It never blocks a running tick.
func (s *Simulation) FieldSnapshot(dst []float64) []float64 {
	return s.field.Snapshot(dst)
}

// ClearField erases every trail. It waits for a running tick to finish so the
// reset never overlaps with deposits.
func (s *Simulation) ClearField() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	s.field.Reset()
}

// Field returns the live pheromone field.
func (s *Simulation) Field() *systems.PheromoneField {
	return s.field
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Workers returns the size of the worker pool.
func (s *Simulation) Workers() int {
	return s.parallel.numWorkers
}

// WorldSize returns the world (and grid) dimensions.
func (s *Simulation) WorldSize() (int, int) {
	return s.field.GridSize()
}

// Close stops the worker pool. The simulation must not be stepped afterwards.
func (s *Simulation) Close() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	s.stopParallelWorkers()
}

// String implements fmt.Stringer for log output.
func (s *Simulation) String() string {
	w, h := s.field.GridSize()
	return fmt.Sprintf("sim{%dx%d agents=%d workers=%d tick=%d}", w, h, len(s.results), s.parallel.numWorkers, s.Tick())
}
