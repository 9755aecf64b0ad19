package customer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type sequenceIDs struct {
	n int
}

func (s *sequenceIDs) NewID() string {
	s.n++
	return fmt.Sprintf("cus-%d", s.n)
}

type fakeCustomerRepo struct {
	customers   map[string]*Customer
	order       []string
	employees   map[string]bool
	withNotes   map[string]bool
	updateCalls int
}

func newFakeCustomerRepo(employees ...string) *fakeCustomerRepo {
	r := &fakeCustomerRepo{
		customers: make(map[string]*Customer),
		employees: make(map[string]bool),
		withNotes: make(map[string]bool),
	}
	for _, id := range employees {
		r.employees[id] = true
	}
	return r
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *Customer) (*Customer, error) {
	r.customers[c.ID] = c.Clone()
	r.order = append(r.order, c.ID)
	return c.Clone(), nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *Customer) (*Customer, error) {
	if _, ok := r.customers[c.ID]; !ok {
		return nil, ErrCustomerNotFound
	}
	r.updateCalls++
	r.customers[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.customers[id]; !ok {
		return ErrCustomerNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id string) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return c.Clone(), nil
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c.Clone(), nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (r *fakeCustomerRepo) List(_ context.Context, filter ListCustomersFilter) ([]*Customer, string, error) {
	var filtered []*Customer
	needle := strings.ToLower(filter.Search)
	for _, id := range r.order {
		c, ok := r.customers[id]
		if !ok {
			continue
		}
		if filter.EmployeeID != "" && c.EmployeeID != filter.EmployeeID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.FirstName), needle) &&
			!strings.Contains(c.Email, needle) {
			continue
		}
		filtered = append(filtered, c.Clone())
	}
	if filter.Offset > len(filtered) {
		return []*Customer{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	token := ""
	if end < len(filtered) {
		token = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], token, nil
}

func (r *fakeCustomerRepo) EmployeeExists(_ context.Context, employeeID string) (bool, error) {
	return r.employees[employeeID], nil
}

func (r *fakeCustomerRepo) HasNotes(_ context.Context, id string) (bool, error) {
	return r.withNotes[id], nil
}

func (r *fakeCustomerRepo) CountByEmployee(_ context.Context, employeeID string) (int, error) {
	n := 0
	for _, c := range r.customers {
		if c.EmployeeID == employeeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCustomerRepo) Reassign(_ context.Context, customerID, employeeID string, at time.Time) (*Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	c.EmployeeID = employeeID
	c.UpdatedAt = at
	return c.Clone(), nil
}

func (r *fakeCustomerRepo) ReassignAll(_ context.Context, from, to string, at time.Time) (int, error) {
	n := 0
	for _, c := range r.customers {
		if c.EmployeeID == from {
			c.EmployeeID = to
			c.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil, &sequenceIDs{})
}

func validRequest() Request {
	return Request{
		FirstName:  "Ichiro",
		LastName:   "Suzuki",
		Email:      "ichiro@example.com",
		Phone:      "0312345678",
		Address:    "Tokyo",
		EmployeeID: "emp-1",
	}
}

func TestService_CreateCustomer_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeCustomerRepo("emp-1"))
	req := validRequest()
	req.Email = " Ichiro@Example.COM "
	date, err := shared.ParseDate("2024-12-24")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	req.LastInteractionDate = &date

	created, err := svc.CreateCustomer(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateCustomer returned error: %v", err)
	}
	if created.ID != "cus-1" || created.EmployeeID != "emp-1" {
		t.Fatalf("unexpected customer %+v", created)
	}
	if created.Email != "ichiro@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.LastInteractionDate == nil || created.LastInteractionDate.Format(shared.DateLayout) != "2024-12-24" {
		t.Fatalf("unexpected last interaction date %v", created.LastInteractionDate)
	}
}

func TestService_CreateCustomer_UnknownEmployee(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepo()
	svc := newTestService(repo)

	if _, err := svc.CreateCustomer(context.Background(), validRequest()); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if len(repo.customers) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(repo.customers))
	}
}

func TestService_CreateCustomer_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeCustomerRepo("emp-1"))
	req := validRequest()
	req.Phone = "123"
	req.Address = strings.Repeat("a", 101)
	req.EmployeeID = ""

	_, err := svc.CreateCustomer(context.Background(), req)
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := validation.FieldsOf(err)
	if len(fields) != 3 {
		t.Fatalf("expected phone, address and employeeId violations, got %+v", fields)
	}
}

func TestService_CreateCustomer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeCustomerRepo("emp-1"))
	if _, err := svc.CreateCustomer(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateCustomer(context.Background(), validRequest()); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_PatchCustomer_OnlyPresentFields(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepo("emp-1")
	svc := newTestService(repo)
	created, err := svc.CreateCustomer(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	phone := "09012345678"
	patched, err := svc.PatchCustomer(context.Background(), PatchCustomerInput{ID: created.ID, Patch: Patch{Phone: &phone}})
	if err != nil {
		t.Fatalf("PatchCustomer returned error: %v", err)
	}
	if patched.Phone != phone {
		t.Fatalf("expected phone %s, got %s", phone, patched.Phone)
	}
	if patched.Email != created.Email || patched.Address != created.Address || patched.EmployeeID != created.EmployeeID {
		t.Fatalf("expected other fields untouched, got %+v", patched)
	}

	if _, err := svc.PatchCustomer(context.Background(), PatchCustomerInput{ID: created.ID}); err != nil {
		t.Fatalf("empty patch returned error: %v", err)
	}
	if repo.updateCalls != 1 {
		t.Fatalf("expected a single write, got %d", repo.updateCalls)
	}
}

func TestService_UpdateCustomer_KeepsOwner(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeCustomerRepo("emp-1", "emp-2"))
	created, err := svc.CreateCustomer(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := validRequest()
	req.FirstName = "Jiro"
	req.EmployeeID = "emp-2"
	updated, err := svc.UpdateCustomer(context.Background(), UpdateCustomerInput{ID: created.ID, Request: req})
	if err != nil {
		t.Fatalf("UpdateCustomer returned error: %v", err)
	}
	if updated.FirstName != "Jiro" || updated.EmployeeID != "emp-1" {
		t.Fatalf("unexpected updated customer %+v", updated)
	}
}

func TestService_DeleteCustomer(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepo("emp-1")
	svc := newTestService(repo)
	created, err := svc.CreateCustomer(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.withNotes[created.ID] = true
	if err := svc.DeleteCustomer(context.Background(), DeleteCustomerInput{ID: created.ID}); !errors.Is(err, ErrCustomerReferenced) {
		t.Fatalf("expected ErrCustomerReferenced, got %v", err)
	}

	repo.withNotes[created.ID] = false
	if err := svc.DeleteCustomer(context.Background(), DeleteCustomerInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteCustomer returned error: %v", err)
	}
	if _, err := svc.GetCustomer(context.Background(), GetCustomerInput{ID: created.ID}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestService_ListCustomersByEmployee(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeCustomerRepo("emp-1", "emp-2"))
	for i, owner := range []string{"emp-1", "emp-2", "emp-1"} {
		req := validRequest()
		req.Email = fmt.Sprintf("c%d@example.com", i)
		req.EmployeeID = owner
		if _, err := svc.CreateCustomer(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	result, err := svc.ListCustomersByEmployee(context.Background(), ListCustomersByEmployeeInput{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("ListCustomersByEmployee returned error: %v", err)
	}
	if len(result.Customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(result.Customers))
	}

	if _, err := svc.ListCustomersByEmployee(context.Background(), ListCustomersByEmployeeInput{EmployeeID: "emp-9"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := svc.ListCustomersByEmployee(context.Background(), ListCustomersByEmployeeInput{}); !errors.Is(err, ErrInvalidEmployeeID) {
		t.Fatalf("expected ErrInvalidEmployeeID, got %v", err)
	}
}
