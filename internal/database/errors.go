package database

import "errors"

var (
	// ErrBusy is returned when the store reports transient contention
	// after the bounded retry budget is exhausted.
	ErrBusy = errors.New("store is busy")
	// ErrNoSuchUser is returned when an operation references a chat id
	// that has no user row.
	ErrNoSuchUser = errors.New("no such user")
	// ErrNoSuchWord is returned when an operation references a word
	// missing from the catalog.
	ErrNoSuchWord = errors.New("no such word")
)
