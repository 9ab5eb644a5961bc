package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSelfRemoval is returned when an admin tries to remove their own id from
// the dynamic registry.
var ErrSelfRemoval = errors.New("admins: self removal is not allowed")

// AdminRegistry answers authorization checks as the union of the static
// config list and the dynamic persisted registry. The dynamic side is held in
// an in-memory cache that is repopulated inside the same critical section as
// every mutation, so no reader observes a state older than the last write.
type AdminRegistry struct {
	static map[int64]struct{}
	admins Admins

	mu    sync.RWMutex
	cache map[int64]struct{}
}

// NewAdminRegistry builds a registry over the static id list and the dynamic store.
func NewAdminRegistry(static []int64, admins Admins) *AdminRegistry {
	set := make(map[int64]struct{}, len(static))
	for _, id := range static {
		set[id] = struct{}{}
	}
	return &AdminRegistry{
		static: set,
		admins: admins,
		cache:  make(map[int64]struct{}),
	}
}

// Load populates the dynamic cache; called once at startup.
func (r *AdminRegistry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshLocked(ctx)
}

// IsAdmin reports whether the user is in the static list or the dynamic registry.
func (r *AdminRegistry) IsAdmin(userID int64) bool {
	if _, ok := r.static[userID]; ok {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[userID]
	return ok
}

// IsStatic reports whether the user comes from the immutable config list.
func (r *AdminRegistry) IsStatic(userID int64) bool {
	_, ok := r.static[userID]
	return ok
}

// Add registers a dynamic admin and refreshes the cache before releasing the lock.
func (r *AdminRegistry) Add(ctx context.Context, userID int64, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.admins.Add(ctx, userID, username); err != nil {
		return err
	}
	return r.refreshLocked(ctx)
}

// Remove drops a dynamic admin. The caller may not remove themself; the
// static config list is immutable and unaffected either way.
func (r *AdminRegistry) Remove(ctx context.Context, actorID, targetID int64) (int64, error) {
	if actorID == targetID {
		return 0, ErrSelfRemoval
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed, err := r.admins.Remove(ctx, targetID)
	if err != nil {
		return 0, err
	}
	if err := r.refreshLocked(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// List returns the dynamic registry entries.
func (r *AdminRegistry) List(ctx context.Context) ([]Admin, error) {
	return r.admins.List(ctx)
}

func (r *AdminRegistry) refreshLocked(ctx context.Context) error {
	admins, err := r.admins.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh admin cache: %w", err)
	}
	cache := make(map[int64]struct{}, len(admins))
	for _, a := range admins {
		cache[a.UserID] = struct{}{}
	}
	r.cache = cache
	return nil
}
