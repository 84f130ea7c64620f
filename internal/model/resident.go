package model

import "time"

// Resident mirrors the 'residents' table: the extended profile collected
// during registration. One row per chat identity.
type Resident struct {
	ID           uint64
	ChatID       int64
	FullName     string
	Address      string
	Phone        string
	RegisteredAt time.Time
}
