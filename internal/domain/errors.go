package domain

import "errors"

var (
	// ErrProjectNotFound is returned when a project id is absent from the dictionary
	ErrProjectNotFound = errors.New("project not found")

	// ErrMilestoneNotFound is returned when a milestone id is absent from its project
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrInvalidTransition is returned for out-of-order milestone requests,
	// such as verifying a milestone that was never completed
	ErrInvalidTransition = errors.New("invalid milestone transition")

	// ErrInvalidAmount is returned for non-numeric or non-positive amounts
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidInvestor is returned when the investor identifier is missing or malformed
	ErrInvalidInvestor = errors.New("invalid investor")

	// ErrCorruptSnapshot marks a persisted snapshot that cannot be decoded.
	// It is recovered by the reconciler and never reaches callers.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
