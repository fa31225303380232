package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
