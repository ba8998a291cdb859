package user

import "errors"

// ErrVanished means a user row hit a unique violation on insert and was gone
// on re-read.
var ErrVanished = errors.New("user vanished after concurrent create")
