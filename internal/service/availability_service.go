package service

import (
	"context"
	"encoding/json"
	"time"

	"skill-assessment/internal/cache"
	"skill-assessment/pkg/validator"
)

// Availability statuses
const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	AvailabilityOffline   = "offline"
)

// Availability is the last reported status of an identity without a durable profile
type Availability struct {
	WorkerID  string     `json:"workerId"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// AvailabilityService reads and writes availability through an injected store
type AvailabilityService struct {
	store cache.KVStore
	now   func() time.Time
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(store cache.KVStore) *AvailabilityService {
	return &AvailabilityService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

type availabilityRecord struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Get returns the status of workerID; identities never reported are offline
func (s *AvailabilityService) Get(ctx context.Context, workerID string) (*Availability, error) {
	workerID = validator.SanitizeString(workerID)
	if workerID == "" {
		return nil, NewInvalidInputError("invalid_workerId")
	}

	raw, ok, err := s.store.Get(ctx, workerID)
	if err != nil {
		return nil, NewInternalError("read availability", err)
	}
	if !ok {
		return &Availability{WorkerID: workerID, Status: AvailabilityOffline}, nil
	}

	var rec availabilityRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// plain status strings written by older clients
		return &Availability{WorkerID: workerID, Status: raw}, nil
	}
	return &Availability{WorkerID: workerID, Status: rec.Status, UpdatedAt: &rec.UpdatedAt}, nil
}

// Set records the status of workerID
func (s *AvailabilityService) Set(ctx context.Context, workerID, status string) (*Availability, error) {
	workerID = validator.SanitizeString(workerID)
	if workerID == "" {
		return nil, NewInvalidInputError("invalid_workerId")
	}
	status = validator.SanitizeKey(status)
	switch status {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
	default:
		return nil, NewInvalidInputError(CodeInvalidStatus)
	}

	rec := availabilityRecord{Status: status, UpdatedAt: s.now()}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, NewInternalError("encode availability", err)
	}
	if err := s.store.Set(ctx, workerID, string(raw)); err != nil {
		return nil, NewInternalError("write availability", err)
	}
	return &Availability{WorkerID: workerID, Status: status, UpdatedAt: &rec.UpdatedAt}, nil
}
