package chats

import "errors"

// ErrNotFound is returned when a chat does not exist for the caller.
var ErrNotFound = errors.New("chat not found")
