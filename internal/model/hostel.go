package model

import "time"

// Hostel represents a listed hostel.
//
// Hostels are created either by an administrative seed or implicitly when a
// review submission names a hostel that doesn't exist yet. They are never
// updated after creation — the site is append-only.
type Hostel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Image       string    `json:"image"` // relative path under /static/uploads, or empty
	CreatedAt   time.Time `json:"createdAt"`
}
