package customer

import (
	"errors"
	"testing"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

func TestTransformers_RoundTripResponseFields(t *testing.T) {
	t.Parallel()

	date := mustDate(t, "2025-03-01")
	req := validRequest()
	req.LastInteractionDate = &date

	entity, err := RequestToEntity.Transform(req)
	if err != nil {
		t.Fatalf("RequestToEntity returned error: %v", err)
	}
	if fields := (Validator{}).Validate(entity); len(fields) != 0 {
		t.Fatalf("expected valid entity, got %+v", fields)
	}
	entity.ID = "cus-1"

	resp, err := EntityToResponse.Transform(entity)
	if err != nil {
		t.Fatalf("EntityToResponse returned error: %v", err)
	}
	if resp.ID != "cus-1" || resp.FirstName != req.FirstName || resp.LastName != req.LastName ||
		resp.Email != req.Email || resp.Phone != req.Phone || resp.Address != req.Address ||
		resp.EmployeeID != req.EmployeeID {
		t.Fatalf("round trip mismatch: got %+v from %+v", resp, req)
	}
	if resp.LastInteractionDate == nil || !resp.LastInteractionDate.Equal(date.Time) {
		t.Fatalf("expected date %v, got %v", date, resp.LastInteractionDate)
	}
}

func TestEntityToResponse_RequiresOwner(t *testing.T) {
	t.Parallel()

	if _, err := EntityToResponse.Transform(&Customer{ID: "cus-1"}); !errors.Is(err, transform.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := EntityToResponse.Transform(nil); !errors.Is(err, transform.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestValidator_OptionalAddress(t *testing.T) {
	t.Parallel()

	c := &Customer{FirstName: "A", LastName: "B", Email: "a@example.com", Phone: "0123456789", EmployeeID: "emp-1"}
	if fields := (Validator{}).Validate(c); len(fields) != 0 {
		t.Fatalf("expected no violations, got %+v", fields)
	}

	c.Email = "invalid"
	fields := Validator{}.Validate(c)
	if len(fields) != 1 || fields[0].Field != "email" || fields[0].Message != "Email should be valid" {
		t.Fatalf("unexpected violations %+v", fields)
	}
}

func mustDate(t *testing.T, raw string) shared.Date {
	t.Helper()
	d, err := shared.ParseDate(raw)
	if err != nil {
		t.Fatalf("ParseDate(%q) returned error: %v", raw, err)
	}
	return d
}
