package ticket

import (
	"context"
	"errors"
	"fmt"

	"bed-request-backend/internal/allocator"
	"bed-request-backend/internal/model"
	"bed-request-backend/internal/store"
)

// CreateInput carries the caller-supplied fields of a new bed request. The
// request identifier is never part of the input; it is minted here.
type CreateInput struct {
	ConsultationID string        `json:"consultationId" binding:"required"`
	AdmissionIndex int           `json:"admissionIndex"`
	AppointmentID  string        `json:"appointmentId" binding:"required"`
	PatientID      string        `json:"patientId" binding:"required"`
	PatientName    string        `json:"patientName" binding:"required"`
	DoctorID       string        `json:"doctorId" binding:"required"`
	BedType        model.BedType `json:"bedType" binding:"required"`
}

// Service is the lifecycle controller for bed requests: it owns creation and
// the single Pending -> Assigned transition.
type Service struct {
	store store.Store
	alloc *allocator.Allocator
}

// NewService creates a new lifecycle controller.
func NewService(s store.Store, a *allocator.Allocator) *Service {
	return &Service{store: s, alloc: a}
}

// Create validates the input, mints an identifier, and persists the request
// in Pending state. A duplicate-identifier collision on insert should be
// unreachable with a healthy counter, but gets one fresh allocation before
// the creation is failed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.BedRequest, error) {
	req := &model.BedRequest{
		ConsultationID: in.ConsultationID,
		AdmissionIndex: in.AdmissionIndex,
		AppointmentID:  in.AppointmentID,
		PatientID:      in.PatientID,
		PatientName:    in.PatientName,
		DoctorID:       in.DoctorID,
		BedType:        in.BedType,
		Status:         model.StatusPending,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("create request: %w: %v", store.ErrValidation, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		id, err := s.alloc.Allocate(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.RequestID = id

		err = s.store.Insert(ctx, req)
		if err == nil {
			return req, nil
		}
		if !errors.Is(err, store.ErrDuplicateIdentifier) {
			return nil, fmt.Errorf("create request: %w", err)
		}
	}
	return nil, fmt.Errorf("create request: %w", store.ErrAllocationExhausted)
}

// Assign moves a request from Pending to Assigned. The transition happens at
// most once: an already assigned request is ErrInvalidTransition, and so is
// losing the compare-and-swap to a concurrent assigner. The loser must
// re-query to learn the winning outcome rather than have it papered over.
func (s *Service) Assign(ctx context.Context, requestID string) (*model.BedRequest, error) {
	req, err := s.store.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("assign request: %w", err)
	}
	if req.Status != model.StatusPending {
		return nil, fmt.Errorf("assign %s: status is already %s: %w", requestID, req.Status, store.ErrInvalidTransition)
	}

	updated, err := s.store.UpdateStatus(ctx, requestID, model.StatusAssigned, model.StatusPending)
	if err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil, fmt.Errorf("assign %s: a concurrent assignment committed first: %w", requestID, store.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("assign request: %w", err)
	}
	return updated, nil
}

// Get loads a request for display surfaces.
func (s *Service) Get(ctx context.Context, requestID string) (*model.BedRequest, error) {
	return s.store.GetByRequestID(ctx, requestID)
}

// List returns all requests, newest first.
func (s *Service) List(ctx context.Context) ([]model.BedRequest, error) {
	return s.store.List(ctx)
}
