package customer

import "errors"

var (
	ErrInvalidID          = errors.New("customer: invalid id")
	ErrInvalidEmployeeID  = errors.New("customer: invalid employee id")
	ErrInvalidPageSize    = errors.New("customer: invalid page size")
	ErrInvalidPageToken   = errors.New("customer: invalid page token")
	ErrCustomerNotFound   = errors.New("customer: not found")
	ErrEmployeeNotFound   = errors.New("customer: employee not found")
	ErrEmailAlreadyExists = errors.New("customer: email already exists")
	ErrCustomerReferenced = errors.New("customer: still referenced by notes")
)
