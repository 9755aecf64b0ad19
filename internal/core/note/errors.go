package note

import "errors"

var (
	ErrInvalidID         = errors.New("note: invalid id")
	ErrInvalidCustomerID = errors.New("note: invalid customer id")
	ErrInvalidPageSize   = errors.New("note: invalid page size")
	ErrInvalidPageToken  = errors.New("note: invalid page token")
	ErrNoteNotFound      = errors.New("note: not found")
	ErrCustomerNotFound  = errors.New("note: customer not found")
	ErrEmployeeNotFound  = errors.New("note: employee not found")
)
