// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package election implements the election lifecycle, access checks and
// ballot casting on top of the storage layer.
//
// Every operation takes an explicit Actor describing the caller. Management
// operations require the owning admin and, for mutations, a draft election.
// Errors wrap one of ErrNotFound, ErrForbidden, ErrUnauthorized,
// ErrInvalidState, ErrConflict or ErrInvalidInput and are matched with
// errors.Is.
//
// Lifecycle:
//
//	draft --launch--> launched --end--> ended
package election
