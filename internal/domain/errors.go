package domain

import "errors"

// Repository-level errors. Usecases translate these into apperror kinds.
var (
	ErrNotFound = errors.New("resource not found")

	// ErrMatchTerminal is returned by MatchRepository.Upsert when the pair's match
	// is accepted, rejected or hired.
	ErrMatchTerminal = errors.New("match is in a terminal status")

	// ErrVersionConflict is returned by MatchRepository.UpdateStatus when the
	// stored version no longer equals the expected one.
	ErrVersionConflict = errors.New("match was modified concurrently")
)
