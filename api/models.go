package api

import "time"

// Card is a parking access card bound to a vehicle owner.
type Card struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name,omitempty"`
	Plate     string    `json:"plate,omitempty"`
	Balance   int64     `json:"balance"`
	Status    string    `json:"status"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Device is a gate controller or reader deployed at the facility.
type Device struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location,omitempty"`
	Status          string    `json:"status"`
	FirmwareVersion string    `json:"firmware_version,omitempty"`
	LastSeenAt      time.Time `json:"last_seen_at,omitzero"`
}

// ParkingSession is one entry/exit cycle of a vehicle.
type ParkingSession struct {
	ID        string     `json:"id"`
	CardID    string     `json:"card_id"`
	Plate     string     `json:"plate,omitempty"`
	Gate      string     `json:"gate,omitempty"`
	EnteredAt time.Time  `json:"entered_at"`
	ExitedAt  *time.Time `json:"exited_at,omitempty"`
	Fee       int64      `json:"fee"`
}

// Invoice defines a public type used by parkgate APIs.
//
// Invoice instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Invoice struct {
	ID       string     `json:"id"`
	CardID   string     `json:"card_id"`
	Amount   int64      `json:"amount"`
	IssuedAt time.Time  `json:"issued_at"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

// Firmware defines a public type used by parkgate APIs.
//
// Firmware instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Firmware struct {
	Version    string    `json:"version"`
	URL        string    `json:"url"`
	Checksum   string    `json:"checksum"`
	ReleasedAt time.Time `json:"released_at"`
}

// SessionFilter narrows parking-session listings.
type SessionFilter struct {
	CardID     string `json:"card_id,omitempty"`
	Gate       string `json:"gate,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	Page       int    `json:"page,omitempty"`
	PerPage    int    `json:"per_page,omitempty"`
}
