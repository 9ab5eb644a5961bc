package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Winners persists (product, handle, phone) triples with the uniqueness and
// cascade rules of the giveaway workflow. Implementations normalize handles
// before touching storage.
type Winners interface {
	// Upsert registers a winner; re-adding an existing (product, handle)
	// pair is a no-op, never an error.
	Upsert(ctx context.Context, product, handle string) error
	// DeleteProduct removes every record of a product and reports how many.
	DeleteProduct(ctx context.Context, product string) (int64, error)
	// Delete removes exactly the one matching pair.
	Delete(ctx context.Context, product, handle string) (int64, error)
	// DeleteBatch removes several handles of one product. The per-handle
	// count map lets the caller report found vs. not-found; a failure on
	// one handle never aborts the siblings.
	DeleteBatch(ctx context.Context, product string, handles []string) (map[string]int64, error)
	// HandleExists checks winner membership globally by handle.
	HandleExists(ctx context.Context, handle string) (bool, error)
	// SetPhone stores the phone on every record of the handle; a handle may
	// hold several product wins that share one phone.
	SetPhone(ctx context.Context, handle, phone string) (int64, error)
	// ClearPhones nulls out every stored phone number.
	ClearPhones(ctx context.Context) (int64, error)
	// ClearProductPhones nulls out phones for one product only.
	ClearProductPhones(ctx context.Context, product string) (int64, error)
	// ListGrouped returns winners grouped by product, ordered by product
	// name and then insertion order.
	ListGrouped(ctx context.Context, filter ListFilter) ([]ProductGroup, error)
	// ChangeProduct re-keys all records of a handle under a new product.
	ChangeProduct(ctx context.Context, handle, newProduct string) (ChangeProductResult, error)
	// ExportAll dumps every row for offline use.
	ExportAll(ctx context.Context) ([]Winner, error)
}

// Admins persists the dynamic admin registry.
type Admins interface {
	Add(ctx context.Context, userID int64, username string) error
	Remove(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context) ([]Admin, error)
}

// Raffles persists per-chat raffle sessions and their participant sets.
type Raffles interface {
	// Active returns the chat's ACTIVE session, or nil when there is none.
	Active(ctx context.Context, chatID int64) (*Lottery, error)
	// Start opens a new session; it reports false when the chat already
	// has an ACTIVE one.
	Start(ctx context.Context, lottery Lottery) (bool, error)
	// End transitions ACTIVE to ENDED and clears the participant set.
	End(ctx context.Context, chatID int64) error
	// AddParticipant joins a user; it reports false on a duplicate join.
	AddParticipant(ctx context.Context, p Participant) (bool, error)
	// Participants lists joined users in insertion order.
	Participants(ctx context.Context, chatID int64) ([]Participant, error)
	// SetMessageID remembers the announcement message of the session.
	SetMessageID(ctx context.Context, chatID, messageID int64) error
}

// Settings persists global operator settings shared across admins.
type Settings interface {
	RequiredGroups(ctx context.Context) ([]string, error)
	SetRequiredGroups(ctx context.Context, groups []string) error
}

// Store bundles all persistence interfaces behind one constructor.
type Store struct {
	Winners  Winners
	Admins   Admins
	Raffles  Raffles
	Settings Settings
}

// New wires the Postgres implementations on the shared connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{
		Winners:  NewWinnerStore(db),
		Admins:   NewAdminStore(db),
		Raffles:  NewRaffleStore(db),
		Settings: NewSettingsStore(db),
	}
}
