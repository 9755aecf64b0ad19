package inactive

import "github.com/ogurasousui/codex-crm/internal/core/validation"

// Validator は InactiveEmployee の不変条件を検査します。
type Validator struct{}

var _ validation.Validator[*InactiveEmployee] = Validator{}

var messages = validation.Messages{
	"originalEmployeeId":    "Original employee is mandatory",
	"firstName.notblank":    "First name is mandatory",
	"firstName.max":         "First name must not exceed 50 characters",
	"lastName.notblank":     "Last name is mandatory",
	"lastName.max":          "Last name must not exceed 50 characters",
	"email.notblank":        "Email is mandatory",
	"email.max":             "Email must not exceed 255 characters",
	"department":            "Department must not exceed 100 characters",
	"replacementEmployeeId": "Replacement must differ from the original employee",
	"reassignedCustomers":   "Reassigned customers must not be negative",
	"reassignedNotes":       "Reassigned notes must not be negative",
}

// Validate は違反したフィールドごとに FieldError を返します。
func (Validator) Validate(e *InactiveEmployee) []validation.FieldError {
	if e == nil {
		return []validation.FieldError{{Field: "inactiveEmployee", Message: "Inactive employee is mandatory"}}
	}
	return validation.Struct(e, messages)
}
