package catalog

import "github.com/theoremus-urban-solutions/fleet-tracking/geo"

// Kind distinguishes mobile assets from fixed ones.
type Kind string

const (
	KindVehicle Kind = "vehicle"
	KindStop    Kind = "stop"
)

// Status is the service status of a vehicle. It travels on the same writer
// path as positions but has no effect on location logic.
type Status string

const (
	StatusOnTime    Status = "on-time"
	StatusDelayed   Status = "delayed"
	StatusCancelled Status = "cancelled"
)

// Asset is one roster entry. ID and Kind are immutable for the asset's
// lifetime. Stops may carry a static coordinate used to seed the location
// store; vehicles start unpositioned.
type Asset struct {
	ID          string        `yaml:"id" validate:"required"`
	Kind        Kind          `yaml:"kind" validate:"required,oneof=vehicle stop"`
	DisplayName string        `yaml:"name" validate:"required"`
	Position    *geo.Position `yaml:"position"`
	Status      Status        `yaml:"status" validate:"omitempty,oneof=on-time delayed cancelled"`
}
