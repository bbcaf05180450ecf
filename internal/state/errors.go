package state

import "errors"

// Sentinel errors for deck state handling.
// Use errors.Is to check: errors.Is(err, state.ErrStateNotFound)
var (
	ErrStateNotFound = errors.New("leitbox: no state found, run 'init' first")
	ErrStateCorrupt  = errors.New("leitbox: state is corrupt")
	ErrStateConflict = errors.New("leitbox: state already exists, use --force to overwrite")
	ErrUnknownCard   = errors.New("leitbox: unknown card")
)
