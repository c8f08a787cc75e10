package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNotApplicable marks a match the pipeline must never sync because the
	// tracked club plays in neither side. Distinct from ErrNoFixture: it is
	// not a failure, just out of scope.
	ErrNotApplicable = errors.New("match does not involve the tracked club")

	// ErrNoFixture means the fixture source had no candidate for a match the
	// pipeline does care about. Recorded per match, never fatal for a batch.
	ErrNoFixture = errors.New("no fixture found for match")
)
