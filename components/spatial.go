package components

// Position represents a slime's location on the continuous toroidal plane.
type Position struct {
	X float64 `inspect:"label,fmt:%.2f"`
	Y float64 `inspect:"label,fmt:%.2f"`
}

// Heading represents a slime's direction of travel.
type Heading struct {
	Angle float64 `inspect:"angle"` // radians
}
