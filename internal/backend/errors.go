package backend

import "errors"

var (
	ErrUnauthorized = errors.New("backend unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrRateLimited  = errors.New("backend rate limited")
)
