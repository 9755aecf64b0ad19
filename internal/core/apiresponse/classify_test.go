package apiresponse

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[error]Kind{
		employee.ErrEmployeeNotFound:                                KindNotFound,
		fmt.Errorf("replacement: %w", employee.ErrEmployeeNotFound): KindNotFound,
		customer.ErrInvalidPageSize:                                 KindInvalid,
		&validation.Error{Entity: "employee"}:                       KindInvalid,
		customer.ErrEmailAlreadyExists:                              KindAlreadyExists,
		employee.ErrEmployeeReferenced:                              KindReferenced,
		errors.New("boom"):                                          KindInternal,
		&orchestrator.StepError{Workflow: "w", Step: "s", Err: employee.ErrEmployeeNotFound}: KindWorkflowFailed,
	}
	for err, want := range cases {
		if got := Classify(err); got != want {
			t.Errorf("Classify(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	verr := &validation.Error{Entity: "customer", Fields: []validation.FieldError{{Field: "phone", Message: "Phone is required"}}}
	resp := FromError(verr)
	if resp.StatusCode != http.StatusBadRequest || resp.Message != "Validation failed" || len(resp.Errors) != 1 {
		t.Fatalf("unexpected validation response %+v", resp)
	}

	resp = FromError(customer.ErrCustomerNotFound)
	if resp.StatusCode != http.StatusNotFound || resp.Errors[0].Field != "Resource" {
		t.Fatalf("unexpected not found response %+v", resp)
	}

	resp = FromError(&orchestrator.StepError{Workflow: "deactivate_employee", Step: "delete_employee", Err: employee.ErrEmployeeReferenced})
	if resp.StatusCode != http.StatusUnprocessableEntity || resp.Errors[0].Field != "Workflow" {
		t.Fatalf("unexpected workflow response %+v", resp)
	}

	resp = FromError(errors.New("dial tcp: connection refused"))
	if resp.StatusCode != http.StatusInternalServerError || resp.Message != "An unexpected error occurred" {
		t.Fatalf("internal error details must not leak: %+v", resp)
	}
}
