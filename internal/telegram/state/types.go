package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
// The convention is "workflow:step".
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"

	// StateAddWinnerProduct waits for the product name of /add_winner.
	StateAddWinnerProduct State = "add_winner:product"
	// StateAddWinnerHandles accumulates handle lines until /end.
	StateAddWinnerHandles State = "add_winner:handles"
	// StateDeleteProduct waits for the product whose winners are wiped.
	StateDeleteProduct State = "delete_product:product"
	// StateDeleteWinnerProduct waits for the product name of /delete_winner.
	StateDeleteWinnerProduct State = "delete_winner:product"
	// StateDeleteWinnerHandles accumulates handles to delete until /end.
	StateDeleteWinnerHandles State = "delete_winner:handles"
	// StateChangeProductHandle waits for the handle of /change_product_name.
	StateChangeProductHandle State = "change_product:handle"
	// StateChangeProductName waits for the destination product name.
	StateChangeProductName State = "change_product:new_name"
	// StateClearPhonesProduct waits for the product of /clear_phones_product.
	StateClearPhonesProduct State = "clear_phones:product"
	// StateSetGroups accumulates required-group references until /end.
	StateSetGroups State = "set_groups:input"
	// StateSubmitPhone waits for the phone number of /submit_winner.
	StateSubmitPhone State = "submit_phone:phone"
)

// Temp data keys shared between workflow steps.
const (
	// TempProduct carries the product name captured by a first step.
	TempProduct = "product_name"
	// TempHandles carries the handle accumulator of batch workflows.
	TempHandles = "handles"
	// TempGroups carries the group-reference accumulator of /set_groups.
	TempGroups = "groups"
	// TempPendingHandle marks the handle awaiting a phone number.
	TempPendingHandle = "pending_handle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	State    State
	TempData map[string]interface{}
	// UpdatedAt drives TTL expiry of abandoned flows.
	UpdatedAt time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	Get(userID int64) *Session
	SetState(userID int64, st State)
	GetState(userID int64) State
	InProgress(userID int64) bool
	Clear(userID int64)

	SetTemp(userID int64, key string, value interface{})
	GetTemp(userID int64, key string) (interface{}, bool)
	GetTempString(userID int64, key string) (string, bool)
	AppendTempStrings(userID int64, key string, values ...string)
	GetTempStrings(userID int64, key string) []string
	ClearTemp(userID int64, key string)

	RegisterHandler(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error

	PruneStale(olderThan time.Duration) int
}
