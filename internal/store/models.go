package store

import (
	"database/sql"
	"time"
)

// Winner is a single prize assignment: one product won by one handle.
type Winner struct {
	ID          int64          `db:"id"`
	ProductName string         `db:"product_name"`
	Handle      string         `db:"handle"`
	PhoneNumber sql.NullString `db:"phone_number"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Admin is a dynamically registered privileged user.
type Admin struct {
	UserID   int64     `db:"user_id"`
	Username string    `db:"username"`
	AddedAt  time.Time `db:"added_at"`
}

// Lottery lifecycle states. A chat holds at most one ACTIVE session.
const (
	LotteryActive = "ACTIVE"
	LotteryEnded  = "ENDED"
)

// Lottery is a per-chat raffle session.
type Lottery struct {
	ChatID          int64     `db:"chat_id"`
	StartTime       time.Time `db:"start_time"`
	DurationMinutes int       `db:"duration_minutes"`
	WinnerCount     int       `db:"winner_count"`
	RequiredGroups  string    `db:"required_groups"`
	State           string    `db:"state"`
	MessageID       int64     `db:"message_id"`
}

// Participant is one user joined into a chat's raffle.
type Participant struct {
	ChatID   int64     `db:"chat_id"`
	UserID   int64     `db:"user_id"`
	Username string    `db:"username"`
	JoinedAt time.Time `db:"joined_at"`
}

// ProductGroup is the listing shape: a product with its winners in insertion order.
type ProductGroup struct {
	Product string
	Winners []Winner
}

// ListFilter narrows winner listings by phone presence.
type ListFilter int

const (
	// ListAll returns every winner record.
	ListAll ListFilter = iota
	// ListWithPhone returns only records that already carry a phone number.
	ListWithPhone
	// ListWithoutPhone returns only records still waiting for a phone number.
	ListWithoutPhone
)

// ChangeProductResult reports the outcome of re-keying a handle's records.
type ChangeProductResult int

const (
	// ChangeOK means the rename was applied.
	ChangeOK ChangeProductResult = iota
	// ChangeConflict means the destination (product, handle) pair already exists.
	ChangeConflict
	// ChangeNotFound means the handle has no records to move.
	ChangeNotFound
)
