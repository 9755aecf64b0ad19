package employee

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

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
	return fmt.Sprintf("emp-%d", s.n)
}

type fakeEmployeeRepo struct {
	employees   map[string]*Employee
	order       []string
	assigned    map[string]bool
	updateCalls int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee), assigned: make(map[string]bool)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	for _, existing := range r.employees {
		if existing.Email == e.Email {
			return nil, ErrEmailAlreadyExists
		}
	}
	r.employees[e.ID] = e.Clone()
	r.order = append(r.order, e.ID)
	return e.Clone(), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.updateCalls++
	r.employees[e.ID] = e.Clone()
	return e.Clone(), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return emp.Clone(), nil
}

func (r *fakeEmployeeRepo) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.Email == email {
			return emp.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.employees[id]
	return ok, nil
}

func (r *fakeEmployeeRepo) HasAssignments(_ context.Context, id string) (bool, error) {
	return r.assigned[id], nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	needle := strings.ToLower(filter.Search)
	for _, id := range r.order {
		emp := r.employees[id]
		if needle != "" &&
			!strings.Contains(strings.ToLower(emp.FirstName), needle) &&
			!strings.Contains(strings.ToLower(emp.Department), needle) {
			continue
		}
		filtered = append(filtered, emp.Clone())
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], nextToken, nil
}

func (r *fakeEmployeeRepo) ListDepartments(_ context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, emp := range r.employees {
		if _, ok := seen[emp.Department]; ok {
			continue
		}
		seen[emp.Department] = struct{}{}
		out = append(out, emp.Department)
	}
	sort.Strings(out)
	return out, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil, &sequenceIDs{})
}

func validRequest() Request {
	return Request{FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com", Department: "Sales"}
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := newTestService(repo)

	created, err := svc.CreateEmployee(context.Background(), Request{
		FirstName:  "  Taro ",
		LastName:   " Yamada",
		Email:      " Taro@Example.com ",
		Department: "Sales ",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.ID != "emp-1" {
		t.Fatalf("expected generated id emp-1, got %s", created.ID)
	}
	if created.FirstName != "Taro" || created.LastName != "Yamada" || created.Department != "Sales" {
		t.Fatalf("expected trimmed fields, got %+v", created)
	}
	if created.Email != "taro@example.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) || created.CreatedAt.IsZero() {
		t.Fatalf("expected timestamps from clock, got %+v", created)
	}
}

func TestService_CreateEmployee_ValidationReportsEveryField(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())

	_, err := svc.CreateEmployee(context.Background(), Request{FirstName: "T", Email: "broken"})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}

	fields := validation.FieldsOf(err)
	got := map[string]bool{}
	for _, f := range fields {
		got[f.Field] = true
	}
	for _, want := range []string{"firstName", "lastName", "email", "department"} {
		if !got[want] {
			t.Errorf("expected violation for %s, got %+v", want, fields)
		}
	}
	if len(fields) != 4 {
		t.Fatalf("expected exactly one violation per field, got %+v", fields)
	}
}

func TestService_CreateEmployee_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	if _, err := svc.CreateEmployee(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := validRequest()
	req.Email = "TARO@example.com"
	if _, err := svc.CreateEmployee(context.Background(), req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_GetEmployee_InvalidID(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: "  "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: "missing"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_PatchEmployee_EmptyPatchLeavesEntityUnchanged(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := newTestService(repo)
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patched, err := svc.PatchEmployee(context.Background(), PatchEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("PatchEmployee returned error: %v", err)
	}
	if *patched != *created {
		t.Fatalf("expected unchanged entity, got %+v want %+v", patched, created)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no write for empty patch, got %d updates", repo.updateCalls)
	}
}

func TestService_PatchEmployee_OnlyPresentFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dept := " Support "
	patched, err := svc.PatchEmployee(context.Background(), PatchEmployeeInput{ID: created.ID, Patch: Patch{Department: &dept}})
	if err != nil {
		t.Fatalf("PatchEmployee returned error: %v", err)
	}
	if patched.Department != "Support" {
		t.Fatalf("expected department Support, got %s", patched.Department)
	}
	if patched.FirstName != created.FirstName || patched.Email != created.Email || patched.LastName != created.LastName {
		t.Fatalf("expected other fields untouched, got %+v", patched)
	}
}

func TestService_PatchEmployee_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := "nope"
	_, err = svc.PatchEmployee(context.Background(), PatchEmployeeInput{ID: created.ID, Patch: Patch{Email: &bad}})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdateEmployee_ReplacesAllFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:      created.ID,
		Request: Request{FirstName: "Hanako", LastName: "Sato", Email: "hanako@example.com", Department: "Support"},
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.ID != created.ID || updated.FirstName != "Hanako" || updated.Email != "hanako@example.com" {
		t.Fatalf("unexpected updated employee %+v", updated)
	}
}

func TestService_UpdateEmployee_EmailTakenByOther(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	first, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := validRequest()
	other.Email = "other@example.com"
	if _, err := svc.CreateEmployee(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := validRequest()
	req.Email = "other@example.com"
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: first.ID, Request: req}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_DeleteEmployee_Referenced(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := newTestService(repo)
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.assigned[created.ID] = true

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeReferenced) {
		t.Fatalf("expected ErrEmployeeReferenced, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), created.ID); err != nil {
		t.Fatalf("expected employee to remain, got %v", err)
	}
}

func TestService_DeleteEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := newTestService(repo)
	created, err := svc.CreateEmployee(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound on second delete, got %v", err)
	}
}

func TestService_ListEmployees_PaginationAndSearch(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeEmployeeRepo())
	for i, dept := range []string{"Sales", "Support", "Sales"} {
		req := validRequest()
		req.Email = fmt.Sprintf("user%d@example.com", i)
		req.Department = dept
		if _, err := svc.CreateEmployee(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	page, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(page.Employees) != 2 || page.NextPageToken != "2" {
		t.Fatalf("unexpected first page %+v", page)
	}

	search, err := svc.ListEmployees(context.Background(), ListEmployeesInput{Search: "supp"})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(search.Employees) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(search.Employees))
	}

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "x"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: 1000}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}

	departments, err := svc.ListDepartments(context.Background())
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(departments) != 2 {
		t.Fatalf("expected 2 departments, got %v", departments)
	}
}
