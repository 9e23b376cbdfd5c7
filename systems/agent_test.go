package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/slime/config"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func testParams() Params {
	return Params{
		Speed:           1,
		SensorDistance:  10,
		RotationAngle:   math.Pi / 4,
		DepositAmount:   1,
		FoodAttraction:  0.02,
		AvoidanceRadius: 10,
	}
}

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(config.Cfg())
	if p != testParams() {
		t.Errorf("expected default params %+v, got %+v", testParams(), p)
	}
}

func TestSenseFrontDominantKeepsHeading(t *testing.T) {
	p := testParams()
	f := NewPheromoneField(100, 100)
	f.Deposit(60, 50, 1) // front sensor of an agent at (50,50) heading 0

	a := Agent{X: 50, Y: 50, Heading: 0}
	a.Sense(&Environment{Field: f}, &p, -1, rand.New(rand.NewSource(1)))

	if a.Heading != 0 {
		t.Errorf("expected heading unchanged, got %v", a.Heading)
	}
}

func TestSenseAllEqualKeepsHeading(t *testing.T) {
	p := testParams()
	a := Agent{X: 50, Y: 50, Heading: 1.25}
	a.Sense(&Environment{Field: NewPheromoneField(100, 100)}, &p, -1, rand.New(rand.NewSource(1)))

	if a.Heading != 1.25 {
		t.Errorf("expected heading unchanged on an empty field, got %v", a.Heading)
	}
}

func TestSenseTurnsTowardStrongerSide(t *testing.T) {
	p := testParams()
	d := 10 * math.Sqrt2 / 2

	tests := []struct {
		name   string
		px, py float64
		want   float64
	}{
		{"left", 50 + d, 50 - d, -math.Pi / 4},
		{"right", 50 + d, 50 + d, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPheromoneField(100, 100)
			f.Deposit(tt.px, tt.py, 1)

			a := Agent{X: 50, Y: 50}
			a.Sense(&Environment{Field: f}, &p, -1, rand.New(rand.NewSource(1)))

			if math.Abs(a.Heading-tt.want) > 1e-12 {
				t.Errorf("expected heading %v, got %v", tt.want, a.Heading)
			}
		})
	}
}

func TestSenseRandomTurnIsBounded(t *testing.T) {
	p := testParams()
	d := 10 * math.Sqrt2 / 2
	f := NewPheromoneField(100, 100)
	// Equal left and right, both above front
	f.Deposit(50+d, 50-d, 1)
	f.Deposit(50+d, 50+d, 1)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := Agent{X: 50, Y: 50}
		a.Sense(&Environment{Field: f}, &p, -1, rng)
		if math.Abs(a.Heading) > p.RotationAngle {
			t.Fatalf("random turn %v exceeds rotation angle %v", a.Heading, p.RotationAngle)
		}
	}
}

func TestSenseFoodOverride(t *testing.T) {
	p := testParams()
	food := FoodSource{X: 55, Y: 53, Radius: 5}

	a := Agent{X: 50, Y: 50, Heading: 2}
	a.Sense(&Environment{Field: NewPheromoneField(100, 100), Food: []FoodSource{food}}, &p, -1, rand.New(rand.NewSource(1)))

	want := math.Atan2(food.Y-50, food.X-50)
	if a.Heading != want {
		t.Errorf("expected heading %v toward food, got %v", want, a.Heading)
	}
	if math.Abs(a.Affinity-p.FoodAttraction) > 1e-12 {
		t.Errorf("expected affinity %v, got %v", p.FoodAttraction, a.Affinity)
	}
}

func TestSenseFoodLastWins(t *testing.T) {
	p := testParams()
	foods := []FoodSource{
		{X: 45, Y: 50, Radius: 5},
		{X: 50, Y: 56, Radius: 5},
		{X: 200, Y: 200, Radius: 5}, // out of range
	}

	a := Agent{X: 50, Y: 50}
	a.Sense(&Environment{Field: NewPheromoneField(100, 100), Food: foods}, &p, -1, rand.New(rand.NewSource(1)))

	if want := math.Atan2(6, 0); a.Heading != want {
		t.Errorf("expected last food in range to win (%v), got %v", want, a.Heading)
	}
	if math.Abs(a.Affinity-2*p.FoodAttraction) > 1e-12 {
		t.Errorf("expected affinity %v, got %v", 2*p.FoodAttraction, a.Affinity)
	}
}

func TestSenseAffinityDecays(t *testing.T) {
	p := testParams()
	a := Agent{X: 50, Y: 50, Affinity: 0.05}
	env := &Environment{Field: NewPheromoneField(100, 100)}
	rng := rand.New(rand.NewSource(1))

	a.Sense(env, &p, -1, rng)
	if math.Abs(a.Affinity-0.03) > 1e-12 {
		t.Errorf("expected affinity 0.03, got %v", a.Affinity)
	}
	a.Sense(env, &p, -1, rng)
	a.Sense(env, &p, -1, rng)
	if a.Affinity != 0 {
		t.Errorf("expected affinity floored at 0, got %v", a.Affinity)
	}
}

func TestSenseSingleObstacleReverses(t *testing.T) {
	p := testParams()
	env := &Environment{
		Field:     NewPheromoneField(100, 100),
		Obstacles: []Obstacle{{X: 55, Y: 40, Width: 10, Height: 20}},
	}

	a := Agent{X: 50, Y: 50, Heading: 0.3}
	a.Sense(env, &p, -1, rand.New(rand.NewSource(1)))

	if math.Abs(a.Heading-(0.3+math.Pi)) > 1e-12 {
		t.Errorf("expected heading reversed, got %v", a.Heading)
	}
}

// Two overlapping triggers each add π, so the heading comes back to where it
// started (modulo 2π).
func TestSenseAvoidanceCompounds(t *testing.T) {
	p := testParams()
	env := &Environment{
		Field: NewPheromoneField(100, 100),
		Obstacles: []Obstacle{
			{X: 55, Y: 40, Width: 10, Height: 20},
			{X: 30, Y: 45, Width: 15, Height: 10},
		},
	}

	const before = 0.3
	a := Agent{X: 50, Y: 50, Heading: before}
	a.Sense(env, &p, -1, rand.New(rand.NewSource(1)))

	delta := a.Heading - before
	if math.Abs(delta-2*math.Pi) > 1e-12 {
		t.Errorf("expected heading to change by 2π, changed by %v", delta)
	}
	if math.Abs(math.Remainder(delta, 2*math.Pi)) > 1e-12 {
		t.Errorf("expected no net change modulo 2π, got %v", delta)
	}
}

func TestSenseClampAvoidance(t *testing.T) {
	p := testParams()
	p.ClampAvoidance = true
	env := &Environment{
		Field: NewPheromoneField(100, 100),
		Obstacles: []Obstacle{
			{X: 55, Y: 40, Width: 10, Height: 20},
			{X: 30, Y: 45, Width: 15, Height: 10},
		},
	}

	a := Agent{X: 50, Y: 50, Heading: 0.3}
	a.Sense(env, &p, -1, rand.New(rand.NewSource(1)))

	if math.Abs(a.Heading-(0.3+math.Pi)) > 1e-12 {
		t.Errorf("expected a single reversal, got heading %v", a.Heading)
	}
}

func TestSenseNeighbourAvoidance(t *testing.T) {
	p := testParams()
	agents := []Agent{
		{X: 50, Y: 50},
		{X: 55, Y: 50},  // within radius
		{X: 70, Y: 50},  // outside
		{X: 50, Y: 59.5}, // within radius
	}

	for _, withGrid := range []bool{false, true} {
		env := &Environment{Field: NewPheromoneField(100, 100), Agents: agents}
		if withGrid {
			env.Grid = NewSpatialGrid(100, 100, p.AvoidanceRadius)
			env.Grid.Rebuild(agents)
		}

		a := agents[0]
		a.Sense(env, &p, 0, rand.New(rand.NewSource(1)))

		// Two neighbours: two reversals
		if math.Abs(a.Heading-2*math.Pi) > 1e-12 {
			t.Errorf("grid=%v: expected heading 2π, got %v", withGrid, a.Heading)
		}
	}
}

func TestMoveEndToEnd(t *testing.T) {
	p := testParams()
	f := NewPheromoneField(10, 10)

	a := Agent{X: 5, Y: 5, Heading: 0}
	a.Sense(&Environment{Field: f}, &p, -1, rand.New(rand.NewSource(1)))
	a.Move(f, &p)

	if a.X != 6 || a.Y != 5 {
		t.Errorf("expected position (6,5), got (%v,%v)", a.X, a.Y)
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := 0.0
			if x == 6 && y == 5 {
				want = p.DepositAmount
			}
			if got := f.Cell(x, y); got != want {
				t.Errorf("cell (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestMoveWrapsAroundEdges(t *testing.T) {
	p := testParams()
	f := NewPheromoneField(10, 10)

	a := Agent{X: 9.5, Y: 0.2, Heading: -math.Pi / 4}
	a.Move(f, &p)

	if a.X < 0 || a.X >= 10 || a.Y < 0 || a.Y >= 10 {
		t.Fatalf("position (%v,%v) escaped the grid", a.X, a.Y)
	}
	if a.X >= 1 || a.Y < 9 {
		t.Errorf("expected wrap to the opposite corner, got (%v,%v)", a.X, a.Y)
	}
	if f.Total() != p.DepositAmount {
		t.Errorf("expected a single deposit, got total %v", f.Total())
	}
}

func TestMoveWraparoundInvariant(t *testing.T) {
	p := testParams()
	p.Speed = 3.7
	f := NewPheromoneField(37, 23)
	rng := rand.New(rand.NewSource(99))

	agents := make([]Agent, 50)
	for i := range agents {
		agents[i] = Agent{
			X:       rng.Float64() * 37,
			Y:       rng.Float64() * 23,
			Heading: rng.Float64() * 2 * math.Pi,
		}
	}

	env := &Environment{Field: f}
	for step := 0; step < 500; step++ {
		for i := range agents {
			a := &agents[i]
			a.Sense(env, &p, -1, rng)
			a.Move(f, &p)
			if a.X < 0 || a.X >= 37 || a.Y < 0 || a.Y >= 23 {
				t.Fatalf("step %d agent %d at (%v,%v) outside grid", step, i, a.X, a.Y)
			}
			if a.Heading < -math.Pi || a.Heading > math.Pi {
				t.Fatalf("step %d agent %d heading %v not normalised", step, i, a.Heading)
			}
		}
		f.Evaporate(0.01)
	}
}
