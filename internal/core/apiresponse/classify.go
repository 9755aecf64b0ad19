package apiresponse

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
)

// Kind はトランスポートに依存しないエラー分類です。
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid
	KindAlreadyExists
	KindReferenced
	KindWorkflowFailed
)

var (
	notFoundErrors = []error{
		employee.ErrEmployeeNotFound,
		customer.ErrCustomerNotFound,
		customer.ErrEmployeeNotFound,
		note.ErrNoteNotFound,
		note.ErrCustomerNotFound,
		note.ErrEmployeeNotFound,
		inactive.ErrInactiveNotFound,
	}
	invalidErrors = []error{
		validation.ErrInvalid,
		transform.ErrMissingField,
		employee.ErrInvalidID,
		employee.ErrInvalidPageSize,
		employee.ErrInvalidPageToken,
		customer.ErrInvalidID,
		customer.ErrInvalidEmployeeID,
		customer.ErrInvalidPageSize,
		customer.ErrInvalidPageToken,
		note.ErrInvalidID,
		note.ErrInvalidCustomerID,
		note.ErrInvalidPageSize,
		note.ErrInvalidPageToken,
		inactive.ErrInvalidID,
		inactive.ErrInvalidPageSize,
		inactive.ErrInvalidPageToken,
		inactive.ErrInvalidReassignCount,
		orchestrator.ErrInvalidEmployeeID,
		orchestrator.ErrInvalidCustomerID,
		orchestrator.ErrSameEmployee,
	}
	alreadyExistsErrors = []error{
		employee.ErrEmailAlreadyExists,
		customer.ErrEmailAlreadyExists,
		inactive.ErrAlreadyArchived,
	}
	referencedErrors = []error{
		employee.ErrEmployeeReferenced,
		customer.ErrCustomerReferenced,
		orchestrator.ErrReplacementMismatch,
	}
)

// Classify は err を分類します。ワークフローの失敗は原因より優先されます。
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, orchestrator.ErrWorkflowFailed):
		return KindWorkflowFailed
	case isAny(err, notFoundErrors):
		return KindNotFound
	case isAny(err, invalidErrors):
		return KindInvalid
	case isAny(err, alreadyExistsErrors):
		return KindAlreadyExists
	case isAny(err, referencedErrors):
		return KindReferenced
	default:
		return KindInternal
	}
}

// HTTPStatus は分類に対応する HTTP ステータスコードを返します。
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusBadRequest
	case KindAlreadyExists, KindReferenced:
		return http.StatusConflict
	case KindWorkflowFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// FromError は err を分類し、エラー応答を組み立てます。
// 検証エラーはフィールドごとの違反を、それ以外は分類名を Field とする 1 件の違反を持ちます。
// 内部エラーの詳細は応答に含めません。
func FromError(err error) APIResponse[struct{}] {
	kind := Classify(err)
	if fields := validation.FieldsOf(err); len(fields) > 0 && kind == KindInvalid {
		return Error(kind.HTTPStatus(), "Validation failed", fields...)
	}

	var field, message string
	switch kind {
	case KindNotFound:
		field, message = "Resource", err.Error()
	case KindInvalid:
		field, message = "Argument", err.Error()
	case KindAlreadyExists, KindReferenced:
		field, message = "Conflict", err.Error()
	case KindWorkflowFailed:
		field, message = "Workflow", err.Error()
	default:
		field, message = "Exception", "An unexpected error occurred"
	}
	return Error(kind.HTTPStatus(), message, validation.FieldError{Field: field, Message: message})
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
