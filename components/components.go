// Package components defines ECS components for the simulation.
// Fields carry `inspect` tags read by the agent inspector.
package components

// Affinity tracks how strongly a slime has recently been drawn to food.
// It decays every tick and is refreshed while a food source is in range.
type Affinity struct {
	Food float64 `inspect:"bar,max:1"`
}
