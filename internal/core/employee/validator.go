package employee

import "github.com/ogurasousui/codex-crm/internal/core/validation"

// Validator は Employee の不変条件を検査します。規則は Employee の validate タグにあります。
type Validator struct{}

var _ validation.Validator[*Employee] = Validator{}

var messages = validation.Messages{
	"firstName.notblank":  "First name is mandatory",
	"firstName":           "First name must be between 2 and 50 characters",
	"lastName.notblank":   "Last name is mandatory",
	"lastName":            "Last name must be between 2 and 50 characters",
	"email.notblank":      "Email is mandatory",
	"email.email":         "Email should be valid",
	"email.max":           "Email must not exceed 255 characters",
	"department.notblank": "Department is mandatory",
	"department.max":      "Department must not exceed 100 characters",
}

// Validate は違反したフィールドごとに FieldError を返します。
func (Validator) Validate(e *Employee) []validation.FieldError {
	if e == nil {
		return []validation.FieldError{{Field: "employee", Message: "Employee is mandatory"}}
	}
	return validation.Struct(e, messages)
}
