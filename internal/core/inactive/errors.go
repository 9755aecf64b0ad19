package inactive

import "errors"

var (
	ErrInvalidID            = errors.New("inactive: invalid id")
	ErrInvalidPageSize      = errors.New("inactive: invalid page size")
	ErrInvalidPageToken     = errors.New("inactive: invalid page token")
	ErrInactiveNotFound     = errors.New("inactive: not found")
	ErrAlreadyArchived      = errors.New("inactive: employee already archived")
	ErrInvalidReassignCount = errors.New("inactive: invalid reassignment count")
)
