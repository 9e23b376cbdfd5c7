package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/slime/config"
)

// Params holds the per-tick constants of the slime model.
type Params struct {
	Speed           float64
	SensorDistance  float64
	RotationAngle   float64
	DepositAmount   float64
	FoodAttraction  float64
	AvoidanceRadius float64
	ClampAvoidance  bool
}

// ParamsFromConfig extracts the slime constants from cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Speed:           cfg.Slime.Speed,
		SensorDistance:  cfg.Slime.SensorDistance,
		RotationAngle:   cfg.Slime.RotationAngle,
		DepositAmount:   cfg.Slime.DepositAmount,
		FoodAttraction:  cfg.Slime.FoodAttraction,
		AvoidanceRadius: cfg.Slime.AvoidanceRadius,
		ClampAvoidance:  cfg.Slime.ClampAvoidance,
	}
}

// Environment is everything an agent reads while sensing.
// Agents is the tick's read-only snapshot of the population; Grid, when set,
// indexes that snapshot. With a nil Grid neighbours are found by linear scan.
type Environment struct {
	Field     *PheromoneField
	Obstacles []Obstacle
	Food      []FoodSource
	Agents    []Agent
	Grid      *SpatialGrid
}

// Agent is a single slime unit.
type Agent struct {
	X, Y     float64
	Heading  float64 // radians, unnormalised between Sense and Move
	Affinity float64 // food affinity, never negative
}

// Sense reads the field ahead of the agent and updates its heading.
// self is the agent's index in env.Agents (-1 if it is not part of it).
// rng breaks ties when left and right sensors are equal and front is not dominant.
func (a *Agent) Sense(env *Environment, p *Params, self int, rng *rand.Rand) {
	left := a.sensor(env.Field, a.Heading-p.RotationAngle, p.SensorDistance)
	front := a.sensor(env.Field, a.Heading, p.SensorDistance)
	right := a.sensor(env.Field, a.Heading+p.RotationAngle, p.SensorDistance)

	switch {
	case front >= left && front >= right:
		// keep going straight
	case left > right:
		a.Heading -= p.RotationAngle
	case right > left:
		a.Heading += p.RotationAngle
	default:
		a.Heading += (rng.Float64()*2 - 1) * p.RotationAngle
	}

	// Food: last source in range wins the heading
	a.Affinity = math.Max(a.Affinity-p.FoodAttraction, 0)
	for _, f := range env.Food {
		if f.InRange(a.X, a.Y, p.SensorDistance) {
			a.Affinity += p.FoodAttraction
			a.Heading = math.Atan2(f.Y-a.Y, f.X-a.X)
		}
	}

	// Avoidance: every trigger turns the agent around once more
	turns := 0
	for _, o := range env.Obstacles {
		if o.IsWithin(a.X, a.Y, p.AvoidanceRadius) {
			turns++
		}
	}
	turns += a.neighbours(env, p.AvoidanceRadius, self)

	if p.ClampAvoidance && turns > 1 {
		turns = 1
	}
	for i := 0; i < turns; i++ {
		a.Heading += math.Pi
	}
}

// Move advances the agent one step along its heading, wraps it onto the
// torus and deposits pheromone at the new position.
func (a *Agent) Move(field *PheromoneField, p *Params) {
	sin, cos := math.Sincos(a.Heading)
	a.X = WrapCoord(a.X+cos*p.Speed, float64(field.W))
	a.Y = WrapCoord(a.Y+sin*p.Speed, float64(field.H))
	a.Heading = NormalizeAngle(a.Heading)

	field.Deposit(a.X, a.Y, p.DepositAmount)
}

// sensor samples the field at distance dist along angle.
func (a *Agent) sensor(field *PheromoneField, angle, dist float64) float64 {
	sin, cos := math.Sincos(angle)
	return field.Sample(a.X+cos*dist, a.Y+sin*dist)
}

// neighbours counts other agents strictly within radius.
func (a *Agent) neighbours(env *Environment, radius float64, self int) int {
	if radius <= 0 || len(env.Agents) == 0 {
		return 0
	}
	if env.Grid != nil {
		return env.Grid.CountWithin(env.Agents, a.X, a.Y, radius, self)
	}

	radiusSq := radius * radius
	n := 0
	for i := range env.Agents {
		if i == self {
			continue
		}
		if distanceSq(a.X, a.Y, env.Agents[i].X, env.Agents[i].Y) < radiusSq {
			n++
		}
	}
	return n
}
