package note

import "github.com/ogurasousui/codex-crm/internal/core/validation"

// Validator は Note の不変条件を検査します。
type Validator struct{}

var _ validation.Validator[*Note] = Validator{}

var messages = validation.Messages{
	"content.notblank":         "Content is mandatory",
	"content.max":              "Content must not exceed 1000 characters",
	"date":                     "Date is mandatory",
	"interactionType.required": "Interaction type is mandatory",
	"interactionType.oneof":    "Interaction type must be one of EMAIL, PHONE_CALL, MEETING, OTHER",
	"customerId":               "Customer is mandatory",
}

// Validate は違反したフィールドごとに FieldError を返します。
func (Validator) Validate(n *Note) []validation.FieldError {
	if n == nil {
		return []validation.FieldError{{Field: "note", Message: "Note is mandatory"}}
	}
	return validation.Struct(n, messages)
}
