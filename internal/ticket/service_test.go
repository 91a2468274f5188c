package ticket

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bed-request-backend/internal/allocator"
	"bed-request-backend/internal/db"
	"bed-request-backend/internal/model"
	"bed-request-backend/internal/reqid"
	"bed-request-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	return NewService(s, allocator.New(s)), s
}

func validInput() CreateInput {
	return CreateInput{
		ConsultationID: "C-200",
		AdmissionIndex: 1,
		AppointmentID:  "A-200",
		PatientID:      "P-200",
		PatientName:    "Ravi Menon",
		DoctorID:       "D-200",
		BedType:        model.BedTypeICU,
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "REQ-0001", req.RequestID)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, model.BedTypeICU, req.BedType)
	assert.False(t, req.CreatedAt.IsZero())
	assert.False(t, req.UpdatedAt.IsZero())
}

func TestCreate_RejectsBadBedType(t *testing.T) {
	svc, s := newTestService(t)

	in := validInput()
	in.BedType = "General Ward"

	_, err := svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, store.ErrValidation)

	// Nothing was persisted and no identifier was consumed.
	reqs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reqs)
	_, err = s.SequenceValue(context.Background(), model.BedRequestSequenceName)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreate_RejectsMissingFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing consultation", func(in *CreateInput) { in.ConsultationID = "" }},
		{"missing appointment", func(in *CreateInput) { in.AppointmentID = "" }},
		{"missing patient", func(in *CreateInput) { in.PatientID = "" }},
		{"missing patient name", func(in *CreateInput) { in.PatientName = "" }},
		{"missing doctor", func(in *CreateInput) { in.DoctorID = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, store.ErrValidation)
		})
	}
}

func TestCreate_SuffixesFollowCommitOrder(t *testing.T) {
	svc, _ := newTestService(t)

	var last uint64
	for i := 0; i < 10; i++ {
		req, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)

		n, err := reqid.Parse(req.RequestID)
		require.NoError(t, err)
		assert.Greater(t, n, last, "suffix must grow with commit order")
		last = n
	}
}

func TestCreate_Concurrent(t *testing.T) {
	const callers = 100

	svc, s := newTestService(t)

	var wg sync.WaitGroup
	results := make(chan *model.BedRequest, callers)
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validInput()
			in.AdmissionIndex = i
			req, err := svc.Create(context.Background(), in)
			if err != nil {
				errs <- err
				return
			}
			results <- req
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	seen := make(map[string]bool, callers)
	for req := range results {
		assert.False(t, seen[req.RequestID], "identifier %s issued twice", req.RequestID)
		seen[req.RequestID] = true
	}
	assert.Len(t, seen, callers)

	persisted, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, callers)
}

func TestAssign(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assigned, err := svc.Assign(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, assigned.Status)
	assert.False(t, assigned.UpdatedAt.Before(created.UpdatedAt))
}

func TestAssign_UnknownRequest(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Assign(context.Background(), "REQ-4242")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssign_SecondAttemptRejected(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), created.RequestID)
	require.NoError(t, err)

	// Double assignment is an error, not a no-op: the inventory collaborator
	// must be told it was not the one that flipped the state.
	_, err = svc.Assign(context.Background(), created.RequestID)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	current, err := svc.Get(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, current.Status)
}

func TestAssign_ConcurrentRace(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errsCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Assign(context.Background(), created.RequestID)
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	var wins, losses int
	for err := range errsCh {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, store.ErrInvalidTransition)
		losses++
	}
	assert.Equal(t, 1, wins, "exactly one assigner may win")
	assert.Equal(t, 1, losses, "the loser must learn it lost")
}
