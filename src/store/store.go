// Package store persists report request status.
package store

import (
	"context"
	"errors"

	"devpulse-agent/src/contracts"
)

// ErrRequestNotFound is returned for an unknown request ID.
var ErrRequestNotFound = errors.New("request not found")

// Store defines the interface for persisting request status.
type Store interface {
	// CreateRequest records a new pending request. Creating an existing
	// request is a no-op.
	CreateRequest(ctx context.Context, req contracts.ReportRequest) error

	// GetRequestStatus returns the status of a request
	GetRequestStatus(ctx context.Context, requestID string) (*contracts.RequestStatus, error)

	// UpdateRequestStatus updates the status of a request
	UpdateRequestStatus(ctx context.Context, status *contracts.RequestStatus) error

	// ListRequests returns up to limit requests, newest first
	ListRequests(ctx context.Context, limit int) ([]contracts.RequestStatus, error)

	// Close closes the store connection
	Close() error
}
