package allocator

import (
	"context"
	"errors"
	"fmt"

	"bed-request-backend/internal/model"
	"bed-request-backend/internal/reqid"
	"bed-request-backend/internal/store"
)

// Allocator mints request identifiers from a dedicated counter row. The
// increment-and-read happens inside a single store transaction, so two
// concurrent callers can never observe the same value; the naive
// read-latest-then-add-one approach would hand both of them the same number.
type Allocator struct {
	store store.Store
	name  string
}

// New creates an allocator backed by the given store.
func New(s store.Store) *Allocator {
	return &Allocator{store: s, name: model.BedRequestSequenceName}
}

// Allocate returns the next request identifier. Safe for any number of
// concurrent callers; suffixes follow counter commit order.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	n, err := a.store.NextSequence(ctx, a.name)
	if err == nil {
		return reqid.Format(n), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("allocate: %w", err)
	}

	// Counter row not seeded yet. Seed it from the newest persisted record
	// and try again; EnsureSequence tolerates a concurrent seeder winning.
	seed, err := a.seedValue(ctx)
	if err != nil {
		return "", err
	}
	if err := a.store.EnsureSequence(ctx, a.name, seed); err != nil {
		return "", fmt.Errorf("allocate: %w", err)
	}
	n, err = a.store.NextSequence(ctx, a.name)
	if err != nil {
		return "", fmt.Errorf("allocate: %w", err)
	}
	return reqid.Format(n), nil
}

// seedValue derives the counter's starting point from the newest record. An
// empty store seeds at zero. A record whose identifier does not parse means
// the numbering history is unreliable; defaulting back to one here could
// reissue an identifier that already exists, so it is an error instead.
func (a *Allocator) seedValue(ctx context.Context) (uint64, error) {
	last, err := a.store.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("allocate: %w", err)
	}
	n, perr := reqid.Parse(last.RequestID)
	if perr != nil {
		return 0, fmt.Errorf("allocate: seed from newest record: %w: %v", store.ErrCorruptSequence, perr)
	}
	return n, nil
}
