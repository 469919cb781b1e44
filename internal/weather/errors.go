package weather

import "errors"

var (
	// ErrLookupFailed covers place-not-found, upstream errors and network failures.
	ErrLookupFailed = errors.New("weather lookup failed")

	// ErrStorageUnavailable is returned by history stores when reads or writes fail.
	ErrStorageUnavailable = errors.New("history storage unavailable")

	// ErrEmptyPlace is returned when a place query is blank after trimming.
	ErrEmptyPlace = errors.New("place must not be empty")
)
