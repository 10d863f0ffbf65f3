package geo

import "math"

// Position is a validated coordinate pair. A Position is always replaced as a
// whole; no component is ever written independently.
type Position struct {
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lon"`
}

// Bounds is the operating-region bounding box used to validate writes.
type Bounds struct {
	MinLat float64 `yaml:"minLat"`
	MaxLat float64 `yaml:"maxLat"`
	MinLon float64 `yaml:"minLon"`
	MaxLon float64 `yaml:"maxLon"`
}

// SriLanka is the default operating region.
var SriLanka = Bounds{MinLat: 5.85, MaxLat: 9.90, MinLon: 79.50, MaxLon: 82.00}

// Contains reports whether p falls inside the bounding box, edges inclusive.
func (b Bounds) Contains(p Position) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// IsZero reports whether the bounds are unset, so callers can fall back to
// the default region.
func (b Bounds) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLon == 0 && b.MaxLon == 0
}

// HaversineKM returns the great-circle distance between two points in
// kilometers on a spherical Earth (mean radius 6371 km).
func HaversineKM(a, b Position) float64 {
	const R = 6371.0
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180
	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}
