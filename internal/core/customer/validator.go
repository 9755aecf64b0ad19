package customer

import "github.com/ogurasousui/codex-crm/internal/core/validation"

// Validator は Customer の不変条件を検査します。
type Validator struct{}

var _ validation.Validator[*Customer] = Validator{}

var messages = validation.Messages{
	"firstName.notblank":  "First name is mandatory",
	"firstName.max":       "First name must not exceed 100 characters",
	"lastName.notblank":   "Last name is mandatory",
	"lastName.max":        "Last name must not exceed 100 characters",
	"email.notblank":      "Email is mandatory",
	"email.email":         "Email should be valid",
	"email.max":           "Email must not exceed 255 characters",
	"phone.notblank":      "Phone number is mandatory",
	"phone":               "Phone number must be between 10 and 15 characters",
	"address":             "Address must not exceed 100 characters",
	"employeeId.notblank": "Employee is mandatory",
}

// Validate は違反したフィールドごとに FieldError を返します。
func (Validator) Validate(c *Customer) []validation.FieldError {
	if c == nil {
		return []validation.FieldError{{Field: "customer", Message: "Customer is mandatory"}}
	}
	return validation.Struct(c, messages)
}
