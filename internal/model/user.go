package model

import "time"

// Role is the coarse permission class attached to every known chat identity.
type Role string

const (
	RoleVisitor  Role = "visitor"
	RoleResident Role = "resident"
	RoleAgent    Role = "agent"
	RoleAdmin    Role = "admin"
)

// IsStaff reports whether the role may work the triage queues.
func (r Role) IsStaff() bool { return r == RoleAgent || r == RoleAdmin }

// SubType distinguishes the kind of non-staff identity.
type SubType string

const (
	SubTypeNone     SubType = "none"
	SubTypeResident SubType = "resident"
	SubTypeBuyer    SubType = "buyer"
)

// User mirrors the 'users' table. ChatID is the Telegram chat identifier
// and doubles as the primary key; every identity that ever contacted the
// bot gets a row, visitors included.
type User struct {
	ChatID    int64
	FullName  string
	Role      Role
	SubType   SubType
	CreatedAt time.Time
}
