// Package service provides business logic for the platform.
package service

import "errors"

var (
	// ErrNotAuthenticated is returned when a write has no resolved actor.
	// The check fires before any store or network call.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoTransferTarget is returned when a transfer names neither an
	// agent nor a team.
	ErrNoTransferTarget = errors.New("select at least one destination")

	// ErrAmbiguousTransferTarget is returned when a transfer names both an
	// agent and a team.
	ErrAmbiguousTransferTarget = errors.New("transfer must target an agent or a team, not both")
)
