package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bed-request-backend/internal/model"
)

// Store defines the durable operations the ticketing core needs. All
// cross-request coordination lives behind these primitives; the core itself
// holds no shared mutable state.
type Store interface {
	// Insert persists a new request. ErrDuplicateIdentifier when request_id
	// already exists, ErrValidation when the record breaks field invariants.
	Insert(ctx context.Context, req *model.BedRequest) error

	// GetByRequestID loads a single request. ErrNotFound when absent.
	GetByRequestID(ctx context.Context, requestID string) (*model.BedRequest, error)

	// UpdateStatus is a compare-and-swap: the write commits only if the
	// record's status still equals expected. ErrStaleState when it does not,
	// ErrNotFound when the record is missing. Returns the updated record.
	UpdateStatus(ctx context.Context, requestID string, newStatus, expected model.RequestStatus) (*model.BedRequest, error)

	// NextSequence atomically increments the named counter row and returns
	// its new value. ErrNotFound when the row has not been seeded yet.
	NextSequence(ctx context.Context, name string) (uint64, error)

	// EnsureSequence creates the named counter row at the given value if it
	// does not already exist. A concurrent creation is not an error.
	EnsureSequence(ctx context.Context, name string, value uint64) error

	// SequenceValue reads the counter without incrementing it.
	SequenceValue(ctx context.Context, name string) (uint64, error)

	// Latest returns the most recently created request, or ErrNotFound on an
	// empty store. Creation time is the ordering key.
	Latest(ctx context.Context) (*model.BedRequest, error)

	// List returns all requests, newest first.
	List(ctx context.Context) ([]model.BedRequest, error)

	// ListRequestIDs returns every issued identifier, for invariant audits.
	ListRequestIDs(ctx context.Context) ([]string, error)
}

// gormStore implements Store on top of GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Insert(ctx context.Context, req *model.BedRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("insert %s: %w: %v", req.RequestID, ErrValidation, err)
	}
	if req.RequestID == "" {
		return fmt.Errorf("insert: %w: requestId is required", ErrValidation)
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = model.StatusPending
	}

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("insert %s: %w", req.RequestID, ErrDuplicateIdentifier)
		}
		return fmt.Errorf("insert %s: %w (%v)", req.RequestID, ErrStoreUnavailable, err)
	}
	return nil
}

func (s *gormStore) GetByRequestID(ctx context.Context, requestID string) (*model.BedRequest, error) {
	var req model.BedRequest
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("get %s: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w (%v)", requestID, ErrStoreUnavailable, err)
	}
	return &req, nil
}

func (s *gormStore) UpdateStatus(ctx context.Context, requestID string, newStatus, expected model.RequestStatus) (*model.BedRequest, error) {
	if !newStatus.Valid() || !expected.Valid() {
		return nil, fmt.Errorf("update %s: %w: status outside enum", requestID, ErrValidation)
	}

	res := s.db.WithContext(ctx).Model(&model.BedRequest{}).
		Where("request_id = ? AND status = ?", requestID, expected).
		Updates(map[string]any{
			"status":     newStatus,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update %s: %w (%v)", requestID, ErrStoreUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the record is gone or a concurrent writer got there first.
		if _, err := s.GetByRequestID(ctx, requestID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("update %s: expected status %s: %w", requestID, expected, ErrStaleState)
	}
	return s.GetByRequestID(ctx, requestID)
}

func (s *gormStore) NextSequence(ctx context.Context, name string) (uint64, error) {
	var next uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.RequestSequence{}).
			Where("name = ?", name).
			Updates(map[string]any{
				"value":      gorm.Expr("value + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Re-read under the row lock taken by the update above; no other
		// transaction can slip an increment in between.
		var seq model.RequestSequence
		if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
			return err
		}
		next = seq.Value
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("sequence %s: %w", name, ErrNotFound)
		}
		return 0, fmt.Errorf("sequence %s: %w (%v)", name, ErrStoreUnavailable, err)
	}
	return next, nil
}

func (s *gormStore) EnsureSequence(ctx context.Context, name string, value uint64) error {
	seq := model.RequestSequence{Name: name, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seq).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("seed sequence %s: %w (%v)", name, ErrStoreUnavailable, err)
	}
	return nil
}

func (s *gormStore) SequenceValue(ctx context.Context, name string) (uint64, error) {
	var seq model.RequestSequence
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("sequence %s: %w", name, ErrNotFound)
		}
		return 0, fmt.Errorf("sequence %s: %w (%v)", name, ErrStoreUnavailable, err)
	}
	return seq.Value, nil
}

func (s *gormStore) Latest(ctx context.Context) (*model.BedRequest, error) {
	var req model.BedRequest
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("latest request: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("latest request: %w (%v)", ErrStoreUnavailable, err)
	}
	return &req, nil
}

func (s *gormStore) List(ctx context.Context) ([]model.BedRequest, error) {
	reqs := make([]model.BedRequest, 0)
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list requests: %w (%v)", ErrStoreUnavailable, err)
	}
	return reqs, nil
}

func (s *gormStore) ListRequestIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.BedRequest{}).
		Order("created_at ASC, id ASC").
		Pluck("request_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list request ids: %w (%v)", ErrStoreUnavailable, err)
	}
	return ids, nil
}

// isDuplicateKey recognizes a unique-constraint violation from either
// supported driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
