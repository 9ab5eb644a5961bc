// Package stubs provides an in-memory store implementation for tests.
// It upholds the same data-consistency contract as the Postgres store:
// idempotent winner upserts, handle normalization on every path, one ACTIVE
// raffle per chat, and duplicate-rejecting participant inserts.
package stubs

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"winnerbot/internal/store"
)

// Memory implements store.Winners, store.Admins, store.Raffles and
// store.Settings over plain maps and slices.
type Memory struct {
	mu     sync.Mutex
	nextID int64

	winners      []store.Winner
	admins       []store.Admin
	lotteries    map[int64]store.Lottery
	participants map[int64][]store.Participant
	groups       []string
}

var (
	_ store.Winners  = (*Memory)(nil)
	_ store.Admins   = (*Memory)(nil)
	_ store.Raffles  = (*Memory)(nil)
	_ store.Settings = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		lotteries:    make(map[int64]store.Lottery),
		participants: make(map[int64][]store.Participant),
	}
}

// Bundle exposes the stub through the same aggregate shape as store.New.
func (m *Memory) Bundle() *store.Store {
	return &store.Store{Winners: m, Admins: m, Raffles: m, Settings: m}
}

// Upsert registers a winner; duplicates are a no-op.
func (m *Memory) Upsert(_ context.Context, product, handle string) error {
	handle = store.NormalizeHandle(handle)
	if handle == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.winners {
		if w.ProductName == product && w.Handle == handle {
			return nil
		}
	}
	m.nextID++
	m.winners = append(m.winners, store.Winner{
		ID:          m.nextID,
		ProductName: product,
		Handle:      handle,
		CreatedAt:   time.Now(),
	})
	return nil
}

// DeleteProduct removes all records of a product.
func (m *Memory) DeleteProduct(_ context.Context, product string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []store.Winner
	var removed int64
	for _, w := range m.winners {
		if w.ProductName == product {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	m.winners = kept
	return removed, nil
}

// Delete removes exactly one (product, handle) pair.
func (m *Memory) Delete(_ context.Context, product, handle string) (int64, error) {
	handle = store.NormalizeHandle(handle)
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []store.Winner
	var removed int64
	for _, w := range m.winners {
		if w.ProductName == product && w.Handle == handle {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	m.winners = kept
	return removed, nil
}

// DeleteBatch removes several handles independently.
func (m *Memory) DeleteBatch(ctx context.Context, product string, handles []string) (map[string]int64, error) {
	results := make(map[string]int64, len(handles))
	for _, h := range handles {
		normalized := store.NormalizeHandle(h)
		if normalized == "" {
			continue
		}
		count, _ := m.Delete(ctx, product, normalized)
		results[normalized] = count
	}
	return results, nil
}

// HandleExists checks membership globally by handle.
func (m *Memory) HandleExists(_ context.Context, handle string) (bool, error) {
	handle = store.NormalizeHandle(handle)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.winners {
		if w.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

// SetPhone stores the phone on every record of the handle.
func (m *Memory) SetPhone(_ context.Context, handle, phone string) (int64, error) {
	handle = store.NormalizeHandle(handle)
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for i := range m.winners {
		if m.winners[i].Handle == handle {
			m.winners[i].PhoneNumber = sql.NullString{String: phone, Valid: true}
			updated++
		}
	}
	return updated, nil
}

// ClearPhones nulls out every stored phone number.
func (m *Memory) ClearPhones(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cleared int64
	for i := range m.winners {
		if m.winners[i].PhoneNumber.Valid {
			m.winners[i].PhoneNumber = sql.NullString{}
			cleared++
		}
	}
	return cleared, nil
}

// ClearProductPhones nulls out phones for one product only.
func (m *Memory) ClearProductPhones(_ context.Context, product string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cleared int64
	for i := range m.winners {
		if m.winners[i].ProductName == product && m.winners[i].PhoneNumber.Valid {
			m.winners[i].PhoneNumber = sql.NullString{}
			cleared++
		}
	}
	return cleared, nil
}

// ListGrouped returns winners grouped by product name then insertion order.
func (m *Memory) ListGrouped(_ context.Context, filter store.ListFilter) ([]store.ProductGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]store.Winner, 0, len(m.winners))
	for _, w := range m.winners {
		switch filter {
		case store.ListWithPhone:
			if !w.PhoneNumber.Valid {
				continue
			}
		case store.ListWithoutPhone:
			if w.PhoneNumber.Valid {
				continue
			}
		}
		rows = append(rows, w)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProductName != rows[j].ProductName {
			return rows[i].ProductName < rows[j].ProductName
		}
		return rows[i].ID < rows[j].ID
	})

	var groups []store.ProductGroup
	for _, w := range rows {
		if n := len(groups); n > 0 && groups[n-1].Product == w.ProductName {
			groups[n-1].Winners = append(groups[n-1].Winners, w)
			continue
		}
		groups = append(groups, store.ProductGroup{Product: w.ProductName, Winners: []store.Winner{w}})
	}
	return groups, nil
}

// ChangeProduct re-keys every record of a handle under a new product.
// Multi-product handles collapse to a single record so the
// (product_name, handle) pair stays unique after the move.
func (m *Memory) ChangeProduct(_ context.Context, handle, newProduct string) (store.ChangeProductResult, error) {
	handle = store.NormalizeHandle(handle)
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, w := range m.winners {
		if w.Handle == handle {
			found = true
			if w.ProductName == newProduct {
				return store.ChangeConflict, nil
			}
		}
	}
	if !found {
		return store.ChangeNotFound, nil
	}
	moved := false
	kept := m.winners[:0]
	for _, w := range m.winners {
		if w.Handle == handle {
			if moved {
				continue
			}
			w.ProductName = newProduct
			moved = true
		}
		kept = append(kept, w)
	}
	m.winners = kept
	return store.ChangeOK, nil
}

// ExportAll dumps every row ordered by product then insertion.
func (m *Memory) ExportAll(_ context.Context) ([]store.Winner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]store.Winner, len(m.winners))
	copy(rows, m.winners)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProductName != rows[j].ProductName {
			return rows[i].ProductName < rows[j].ProductName
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// Add registers a dynamic admin.
func (m *Memory) Add(_ context.Context, userID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.admins {
		if a.UserID == userID {
			m.admins[i].Username = username
			return nil
		}
	}
	m.admins = append(m.admins, store.Admin{UserID: userID, Username: username, AddedAt: time.Now()})
	return nil
}

// Remove drops a dynamic admin.
func (m *Memory) Remove(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.admins {
		if a.UserID == userID {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// List returns dynamic admins in registration order.
func (m *Memory) List(_ context.Context) ([]store.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admins := make([]store.Admin, len(m.admins))
	copy(admins, m.admins)
	return admins, nil
}

// Active returns the chat's ACTIVE session.
func (m *Memory) Active(_ context.Context, chatID int64) (*store.Lottery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lotteries[chatID]; ok && l.State == store.LotteryActive {
		copied := l
		return &copied, nil
	}
	return nil, nil
}

// Start opens a session unless one is already ACTIVE.
func (m *Memory) Start(_ context.Context, lottery store.Lottery) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.lotteries[lottery.ChatID]; ok && existing.State == store.LotteryActive {
		return false, nil
	}
	lottery.State = store.LotteryActive
	m.lotteries[lottery.ChatID] = lottery
	return true, nil
}

// End transitions ACTIVE to ENDED and clears participants.
func (m *Memory) End(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lotteries[chatID]; ok && l.State == store.LotteryActive {
		l.State = store.LotteryEnded
		m.lotteries[chatID] = l
	}
	delete(m.participants, chatID)
	return nil
}

// AddParticipant joins a user, rejecting duplicates.
func (m *Memory) AddParticipant(_ context.Context, p store.Participant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participants[p.ChatID] {
		if existing.UserID == p.UserID {
			return false, nil
		}
	}
	p.JoinedAt = time.Now()
	m.participants[p.ChatID] = append(m.participants[p.ChatID], p)
	return true, nil
}

// Participants lists joined users in insertion order.
func (m *Memory) Participants(_ context.Context, chatID int64) ([]store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	participants := make([]store.Participant, len(m.participants[chatID]))
	copy(participants, m.participants[chatID])
	return participants, nil
}

// SetMessageID remembers the announcement message of the active session.
func (m *Memory) SetMessageID(_ context.Context, chatID, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lotteries[chatID]; ok && l.State == store.LotteryActive {
		l.MessageID = messageID
		m.lotteries[chatID] = l
	}
	return nil
}

// RequiredGroups returns the configured group references.
func (m *Memory) RequiredGroups(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	groups := make([]string, len(m.groups))
	copy(groups, m.groups)
	return groups, nil
}

// SetRequiredGroups replaces the global required-group list.
func (m *Memory) SetRequiredGroups(_ context.Context, groups []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = store.SplitGroups(store.JoinGroups(groups))
	return nil
}
