package main

import (
	"math"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slime/config"
)

// slider binds one raygui slider to a steering parameter.
type slider struct {
	Label    string
	Format   string
	Min, Max float32
	Get      func(*config.SlimeConfig) float32
	Set      func(*config.SlimeConfig, float32)
}

var sliders = []slider{
	{
		Label: "Agents", Format: "%.0f", Min: 50, Max: 5000,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.Count) },
		Set: func(c *config.SlimeConfig, v float32) { c.Count = int(v) },
	},
	{
		Label: "Speed", Format: "%.2f", Min: 0.1, Max: 4,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.Speed) },
		Set: func(c *config.SlimeConfig, v float32) { c.Speed = float64(v) },
	},
	{
		Label: "Sensor distance", Format: "%.1f", Min: 1, Max: 40,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.SensorDistance) },
		Set: func(c *config.SlimeConfig, v float32) { c.SensorDistance = float64(v) },
	},
	{
		Label: "Rotation (deg)", Format: "%.0f", Min: 5, Max: 90,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.RotationAngle * 180 / math.Pi) },
		Set: func(c *config.SlimeConfig, v float32) { c.RotationAngle = float64(v) * math.Pi / 180 },
	},
	{
		Label: "Deposit", Format: "%.2f", Min: 0.05, Max: 5,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.DepositAmount) },
		Set: func(c *config.SlimeConfig, v float32) { c.DepositAmount = float64(v) },
	},
	{
		Label: "Evaporation", Format: "%.3f", Min: 0, Max: 0.2,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.EvaporationRate) },
		Set: func(c *config.SlimeConfig, v float32) { c.EvaporationRate = float64(v) },
	},
	{
		Label: "Food attraction", Format: "%.3f", Min: 0, Max: 0.2,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.FoodAttraction) },
		Set: func(c *config.SlimeConfig, v float32) { c.FoodAttraction = float64(v) },
	},
	{
		Label: "Avoidance radius", Format: "%.1f", Min: 0, Max: 30,
		Get: func(c *config.SlimeConfig) float32 { return float32(c.AvoidanceRadius) },
		Set: func(c *config.SlimeConfig, v float32) { c.AvoidanceRadius = float64(v) },
	},
}

// slimeYAML renders the slime section for pasting into a config file.
func slimeYAML(c config.SlimeConfig) (string, error) {
	out, err := yaml.Marshal(struct {
		Slime config.SlimeConfig `yaml:"slime"`
	}{c})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
