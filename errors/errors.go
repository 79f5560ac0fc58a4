package errors

import "fmt"

// Failure sentinels shared across the module. The relay wraps the
// protocol ones under its error replies so tests and callers classify
// with errors.Is instead of matching reply text.
var (
	ErrUsernameTaken   = fmt.Errorf("username already taken")
	ErrNotLoggedIn     = fmt.Errorf("not logged in")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrNotInGroup      = fmt.Errorf("not a member of group")
	ErrDecrypt         = fmt.Errorf("decryption failed")
	ErrKeyFetchTimeout = fmt.Errorf("public key fetch timed out")
	ErrClosed          = fmt.Errorf("connection closed")
)
