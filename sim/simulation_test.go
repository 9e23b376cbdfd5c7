package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/slime/config"
	"github.com/pthm-cable/slime/systems"
	"github.com/pthm-cable/slime/telemetry"
)

func testConfig(w, h, agents, workers int) *config.Config {
	cfg := config.Default()
	cfg.World.Width = w
	cfg.World.Height = h
	cfg.Slime.Count = agents
	cfg.Parallel.Workers = workers
	cfg.ComputeDerived()
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config, seed int64) *Simulation {
	t.Helper()
	s, err := New(cfg, seed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"zero width", func(c *config.Config) { c.World.Width = -1; c.Screen.Width = 0 }, "world"},
		{"no agents", func(c *config.Config) { c.Slime.Count = 0 }, "slime.count"},
		{"evaporation one", func(c *config.Config) { c.Slime.EvaporationRate = 1 }, "slime.evaporation_rate"},
		{"negative workers", func(c *config.Config) { c.Parallel.Workers = -2 }, "parallel.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			s, err := New(cfg, 1)
			if err == nil {
				s.Close()
				t.Fatal("expected configuration error")
			}
			ce, ok := err.(*config.ConfigurationError)
			if !ok {
				t.Fatalf("expected *config.ConfigurationError, got %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ce.Field)
			}
		})
	}
}

func TestNewSpawnsPopulation(t *testing.T) {
	cfg := testConfig(64, 48, 200, 2)
	cfg.Food.Count = 4
	s := newTestSim(t, cfg, 3)

	agents := s.Agents(nil)
	if len(agents) != 200 {
		t.Fatalf("expected 200 agents, got %d", len(agents))
	}
	for i, a := range agents {
		if a.X < 0 || a.X >= 64 || a.Y < 0 || a.Y >= 48 {
			t.Errorf("agent %d spawned outside the world at (%v,%v)", i, a.X, a.Y)
		}
		if a.Heading < 0 || a.Heading >= 2*math.Pi {
			t.Errorf("agent %d heading %v outside [0,2π)", i, a.Heading)
		}
	}

	food := s.Food()
	if len(food) != 4 {
		t.Fatalf("expected 4 food sources, got %d", len(food))
	}
	for _, f := range food {
		if f.X != math.Trunc(f.X) || f.X < 0 || f.X > 64 || f.Y < 0 || f.Y > 48 {
			t.Errorf("food at unexpected position (%v,%v)", f.X, f.Y)
		}
		if f.Radius != cfg.Food.Radius {
			t.Errorf("expected radius %v, got %v", cfg.Food.Radius, f.Radius)
		}
	}

	if s.FieldSnapshot(nil)[0] != 0 || s.Field().Total() != 0 {
		t.Error("expected an empty field before the first tick")
	}
}

func TestNewDefaultsWorkersToGOMAXPROCS(t *testing.T) {
	s := newTestSim(t, testConfig(16, 16, 10, 0), 1)
	if s.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", s.Workers())
	}
}

// Every tick adds exactly agents*deposit before evaporating once, so the
// field total follows T' = (T + n*d) * (1-r) whatever the worker count.
func TestStepFieldTotalMatchesDeposits(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 7} {
		cfg := testConfig(96, 80, 500, workers)
		cfg.Food.Count = 0
		s := newTestSim(t, cfg, 11)

		n := float64(cfg.Slime.Count)
		d := cfg.Slime.DepositAmount
		k := 1 - cfg.Slime.EvaporationRate

		want := 0.0
		for tick := 1; tick <= 40; tick++ {
			s.Step()
			want = (want + n*d) * k

			got := s.Field().Total()
			if math.Abs(got-want) > 1e-9*want {
				t.Fatalf("workers=%d tick=%d: expected total %v, got %v", workers, tick, want, got)
			}
		}

		for i, v := range s.FieldSnapshot(nil) {
			if v < 0 || math.IsNaN(v) {
				t.Fatalf("workers=%d: cell %d invalid value %v", workers, i, v)
			}
		}
		if s.Tick() != 40 {
			t.Errorf("workers=%d: expected tick 40, got %d", workers, s.Tick())
		}
	}
}

func TestStepKeepsAgentsInBounds(t *testing.T) {
	cfg := testConfig(50, 30, 300, 3)
	cfg.Slime.Speed = 2.5
	s := newTestSim(t, cfg, 5)
	s.AddObstacle(systems.Obstacle{X: 10, Y: 10, Width: 5, Height: 5})

	var agents []systems.Agent
	for tick := 0; tick < 200; tick++ {
		s.Step()
		agents = s.Agents(agents)
		for i, a := range agents {
			if a.X < 0 || a.X >= 50 || a.Y < 0 || a.Y >= 30 {
				t.Fatalf("tick %d agent %d at (%v,%v) outside the world", tick, i, a.X, a.Y)
			}
			if a.Heading < -math.Pi || a.Heading > math.Pi {
				t.Fatalf("tick %d agent %d heading %v not normalised", tick, i, a.Heading)
			}
			if a.Affinity < 0 {
				t.Fatalf("tick %d agent %d negative affinity %v", tick, i, a.Affinity)
			}
		}
	}
}

func TestStepDeterministicSingleWorker(t *testing.T) {
	run := func() []systems.Agent {
		s := newTestSim(t, testConfig(40, 40, 100, 1), 42)
		for i := 0; i < 50; i++ {
			s.Step()
		}
		return s.Agents(nil)
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestStepAppliesDiffusion(t *testing.T) {
	cfg := testConfig(32, 32, 20, 1)
	cfg.Slime.EvaporationRate = 0
	cfg.Field.Diffusion = 0.2
	s := newTestSim(t, cfg, 9)

	for i := 0; i < 5; i++ {
		s.Step()
	}

	// Diffusion conserves mass, evaporation is off
	want := 5 * float64(cfg.Slime.Count) * cfg.Slime.DepositAmount
	if got := s.Field().Total(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected total %v, got %v", want, got)
	}
}

func TestAdvanceHonoursActiveGate(t *testing.T) {
	s := newTestSim(t, testConfig(20, 20, 10, 1), 1)

	if s.Active() {
		t.Fatal("expected a new simulation to be inactive")
	}
	if s.Advance() || s.Tick() != 0 {
		t.Error("expected Advance to do nothing while inactive")
	}

	s.SetActive(true)
	if !s.Advance() || s.Tick() != 1 {
		t.Errorf("expected one tick once active, got %d", s.Tick())
	}

	s.SetActive(false)
	s.Advance()
	if s.Tick() != 1 {
		t.Errorf("expected tick to stay at 1 after pausing, got %d", s.Tick())
	}

	// Step ignores the gate
	s.Step()
	if s.Tick() != 2 {
		t.Errorf("expected Step to advance regardless of the gate, got %d", s.Tick())
	}
}

func TestAddObstacleAndFood(t *testing.T) {
	cfg := testConfig(20, 20, 10, 1)
	cfg.Food.Count = 0
	s := newTestSim(t, cfg, 1)

	o := systems.ObstacleFromCorners(5, 5, 2, 8)
	s.AddObstacle(o)
	s.AddFood(systems.FoodSource{X: 3, Y: 4, Radius: 5})

	obs := s.Obstacles()
	if len(obs) != 1 || obs[0] != o {
		t.Errorf("expected obstacle %+v, got %+v", o, obs)
	}
	// Returned slices are copies
	obs[0].Width = 100
	if s.Obstacles()[0].Width == 100 {
		t.Error("expected Obstacles to return a copy")
	}

	food := s.Food()
	if len(food) != 1 || food[0].X != 3 || food[0].Y != 4 {
		t.Errorf("unexpected food list %+v", food)
	}
}

// Hosts append obstacles and food while ticks run on another goroutine.
func TestConcurrentHostEdits(t *testing.T) {
	s := newTestSim(t, testConfig(64, 64, 200, 4), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.AddObstacle(systems.Obstacle{X: float64(i % 64), Y: 10, Width: 1, Height: 1})
			s.AddFood(systems.FoodSource{X: 32, Y: float64(i % 64), Radius: 3})
			_ = s.Agents(nil)
			_ = s.FieldSnapshot(nil)
		}
	}()

	for i := 0; i < 100; i++ {
		s.Step()
	}
	<-done

	if len(s.Obstacles()) != 100 {
		t.Errorf("expected 100 obstacles, got %d", len(s.Obstacles()))
	}
}

type recordingObserver struct {
	ticks  int
	phases []string
}

func (r *recordingObserver) StartTick()          { r.ticks++; r.phases = r.phases[:0] }
func (r *recordingObserver) StartPhase(p string) { r.phases = append(r.phases, p) }
func (r *recordingObserver) EndTick()            {}

func TestStepReportsPhases(t *testing.T) {
	s := newTestSim(t, testConfig(20, 20, 10, 1), 1)
	obs := &recordingObserver{}
	s.SetObserver(obs)

	s.Step()
	s.Step()

	if obs.ticks != 2 {
		t.Errorf("expected 2 observed ticks, got %d", obs.ticks)
	}
	want := []string{
		telemetry.PhaseSnapshot, telemetry.PhaseSpatialGrid, telemetry.PhaseSenseMove,
		telemetry.PhaseApply, telemetry.PhaseEvaporate,
	}
	if len(obs.phases) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, obs.phases)
	}
	for i := range want {
		if obs.phases[i] != want[i] {
			t.Errorf("phase %d: expected %s, got %s", i, want[i], obs.phases[i])
		}
	}

	s.SetObserver(nil)
	s.Step()
	if obs.ticks != 2 {
		t.Error("expected observer to be removed")
	}
}

func TestComponentsMatchAgents(t *testing.T) {
	cfg := testConfig(64, 64, 120, 2)
	s := newTestSim(t, cfg, 5)
	s.SetActive(true)
	for i := 0; i < 3; i++ {
		s.Advance()
	}

	agents := s.Agents(nil)
	for _, i := range []int{0, 57, 119} {
		pos, head, aff, ok := s.Components(i)
		if !ok {
			t.Fatalf("expected components for agent %d", i)
		}
		a := agents[i]
		if pos.X != a.X || pos.Y != a.Y || head.Angle != a.Heading || aff.Food != a.Affinity {
			t.Errorf("agent %d: components %+v %+v %+v differ from %+v", i, pos, head, aff, a)
		}
	}

	if _, _, _, ok := s.Components(120); ok {
		t.Error("expected no components past the population")
	}
}

func TestNewAcceptsTinyAvoidanceRadius(t *testing.T) {
	cfg := testConfig(800, 800, 10, 1)
	cfg.Slime.AvoidanceRadius = 1e-4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected radius to validate, got %v", err)
	}

	s := newTestSim(t, cfg, 2)
	s.SetActive(true)
	if !s.Advance() {
		t.Fatal("expected one tick")
	}
	for i, a := range s.Agents(nil) {
		if a.X < 0 || a.X >= 800 || a.Y < 0 || a.Y >= 800 {
			t.Errorf("agent %d at (%v,%v) outside the world", i, a.X, a.Y)
		}
	}
}

func TestClearField(t *testing.T) {
	cfg := testConfig(32, 32, 40, 2)
	cfg.Food.Count = 0
	s := newTestSim(t, cfg, 4)
	for i := 0; i < 5; i++ {
		s.Step()
	}
	if s.Field().Total() == 0 {
		t.Fatal("expected deposits before clearing")
	}

	s.ClearField()
	if got := s.Field().Total(); got != 0 {
		t.Errorf("expected empty field, got total %v", got)
	}
	if s.Tick() != 5 {
		t.Errorf("expected clearing to keep the tick count, got %d", s.Tick())
	}

	s.Step()
	want := float64(40) * cfg.Slime.DepositAmount * (1 - cfg.Slime.EvaporationRate)
	if got := s.Field().Total(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected one tick of deposits %v after clearing, got %v", want, got)
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, workers int
		want       []workChunk
	}{
		{0, 4, nil},
		{10, 1, []workChunk{{0, 10}}},
		{10, 3, []workChunk{{0, 4}, {4, 8}, {8, 10}}},
		{3, 8, []workChunk{{0, 1}, {1, 2}, {2, 3}}},
		{100, 4, []workChunk{{0, 25}, {25, 50}, {50, 75}, {75, 100}}},
	}

	for _, tt := range tests {
		got := partition(tt.n, tt.workers)
		if len(got) != len(tt.want) {
			t.Errorf("partition(%d,%d) = %v, want %v", tt.n, tt.workers, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("partition(%d,%d)[%d] = %v, want %v", tt.n, tt.workers, i, got[i], tt.want[i])
			}
		}
	}
}
