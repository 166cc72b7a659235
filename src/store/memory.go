package store

import (
	"context"
	"fmt"
	"sync"

	"devpulse-agent/src/contracts"
)

// MemoryStore is an in-memory implementation of Store.
// Used in local mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*contracts.RequestStatus
	order    []string // creation order
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*contracts.RequestStatus),
	}
}

// CreateRequest records a new pending request.
func (s *MemoryStore) CreateRequest(ctx context.Context, req contracts.ReportRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[req.RequestID]; exists {
		return nil
	}

	s.requests[req.RequestID] = &contracts.RequestStatus{
		RequestID: req.RequestID,
		Owner:     req.Owner,
		Repo:      req.Repo,
		User:      req.User,
		Days:      req.Days,
		Status:    contracts.StatusPending,
	}
	s.order = append(s.order, req.RequestID)

	return nil
}

// GetRequestStatus returns the status of a request.
func (s *MemoryStore) GetRequestStatus(ctx context.Context, requestID string) (*contracts.RequestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, exists := s.requests[requestID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}

	// Return a copy
	statusCopy := *status
	return &statusCopy, nil
}

// UpdateRequestStatus updates the mutable fields of a request.
func (s *MemoryStore) UpdateRequestStatus(ctx context.Context, status *contracts.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.requests[status.RequestID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, status.RequestID)
	}

	existing.Status = status.Status
	existing.Sections = status.Sections
	existing.Error = status.Error
	return nil
}

// ListRequests returns up to limit requests, newest first.
func (s *MemoryStore) ListRequests(ctx context.Context, limit int) ([]contracts.RequestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []contracts.RequestStatus
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, *s.requests[s.order[i]])
	}
	return result, nil
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}
