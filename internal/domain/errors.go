package domain

import "errors"

var (
	// ErrUserNotFound is returned when a userId does not resolve to a record.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on login with a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissionCompleted signals a repeat completion; it is a normal
	// terminal outcome, never a failure, and never mutates state.
	ErrMissionCompleted = errors.New("mission already completed")
	// ErrChestOpened signals a repeat chest opening; same contract as
	// ErrMissionCompleted.
	ErrChestOpened = errors.New("chest already opened")
	// ErrChestLocked is returned when a prerequisite mission is missing.
	ErrChestLocked = errors.New("chest locked by incomplete missions")
	// ErrMissionNotFound indicates an unknown mission identifier.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrChestNotFound indicates an unknown chest identifier.
	ErrChestNotFound = errors.New("chest not found")
)
