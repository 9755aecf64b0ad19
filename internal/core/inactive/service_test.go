package inactive

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
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
	return fmt.Sprintf("inactive-%d", s.n)
}

type fakeInactiveRepo struct {
	records     map[string]*InactiveEmployee
	createCalls int
}

func newFakeInactiveRepo() *fakeInactiveRepo {
	return &fakeInactiveRepo{records: make(map[string]*InactiveEmployee)}
}

func (r *fakeInactiveRepo) Create(_ context.Context, e *InactiveEmployee) (*InactiveEmployee, error) {
	r.createCalls++
	r.records[e.OriginalEmployeeID] = e.Clone()
	return e.Clone(), nil
}

func (r *fakeInactiveRepo) FindByID(_ context.Context, id string) (*InactiveEmployee, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return nil, ErrInactiveNotFound
}

func (r *fakeInactiveRepo) FindByOriginalEmployeeID(_ context.Context, originalID string) (*InactiveEmployee, error) {
	rec, ok := r.records[originalID]
	if !ok {
		return nil, ErrInactiveNotFound
	}
	return rec.Clone(), nil
}

func (r *fakeInactiveRepo) ExistsByOriginalEmployeeID(_ context.Context, originalID string) (bool, error) {
	_, ok := r.records[originalID]
	return ok, nil
}

func (r *fakeInactiveRepo) List(_ context.Context, filter ListFilter) ([]*InactiveEmployee, string, error) {
	var out []*InactiveEmployee
	for _, rec := range r.records {
		if filter.Department != "" && rec.Department != filter.Department {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, "", nil
}

func (r *fakeInactiveRepo) AddReassignments(_ context.Context, originalID string, customers, notes int) (*InactiveEmployee, error) {
	rec, ok := r.records[originalID]
	if !ok {
		return nil, ErrInactiveNotFound
	}
	rec.ReassignedCustomers += customers
	rec.ReassignedNotes += notes
	return rec.Clone(), nil
}

var testNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	return NewService(repo, &stubClock{now: testNow}, nil, &sequenceIDs{})
}

func sampleEmployee() *employee.Employee {
	return &employee.Employee{ID: "emp-1", FirstName: "Taro", LastName: "Yamada", Email: "taro@example.com", Department: "Sales"}
}

func TestService_ArchiveEmployee_PreservesAttributes(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeInactiveRepo())
	archived, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{Employee: sampleEmployee(), ReplacementEmployeeID: "emp-2"})
	if err != nil {
		t.Fatalf("ArchiveEmployee returned error: %v", err)
	}

	want := &InactiveEmployee{
		ID:                    "inactive-1",
		OriginalEmployeeID:    "emp-1",
		FirstName:             "Taro",
		LastName:              "Yamada",
		Email:                 "taro@example.com",
		Department:            "Sales",
		ReplacementEmployeeID: "emp-2",
		DeactivatedAt:         testNow,
	}
	if *archived != *want {
		t.Fatalf("unexpected archive record: got %+v want %+v", archived, want)
	}
}

func TestService_ArchiveEmployee_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newFakeInactiveRepo()
	svc := newTestService(repo)
	first, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{Employee: sampleEmployee()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{Employee: sampleEmployee()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID || repo.createCalls != 1 {
		t.Fatalf("expected a single archive record, got %s/%s with %d creates", first.ID, second.ID, repo.createCalls)
	}
}

func TestService_ArchiveEmployee_RejectsMissingEmployee(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeInactiveRepo())
	if _, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{}); !errors.Is(err, transform.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestService_RecordReassignment(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeInactiveRepo())
	if _, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{Employee: sampleEmployee()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.RecordReassignment(context.Background(), RecordReassignmentInput{OriginalEmployeeID: "emp-1", Customers: 2}); err != nil {
		t.Fatalf("RecordReassignment returned error: %v", err)
	}
	updated, err := svc.RecordReassignment(context.Background(), RecordReassignmentInput{OriginalEmployeeID: "emp-1", Notes: 3})
	if err != nil {
		t.Fatalf("RecordReassignment returned error: %v", err)
	}
	if updated.ReassignedCustomers != 2 || updated.ReassignedNotes != 3 {
		t.Fatalf("unexpected counters %+v", updated)
	}

	if _, err := svc.RecordReassignment(context.Background(), RecordReassignmentInput{OriginalEmployeeID: "emp-1", Notes: -1}); !errors.Is(err, ErrInvalidReassignCount) {
		t.Fatalf("expected ErrInvalidReassignCount, got %v", err)
	}
	if _, err := svc.RecordReassignment(context.Background(), RecordReassignmentInput{OriginalEmployeeID: "emp-9"}); !errors.Is(err, ErrInactiveNotFound) {
		t.Fatalf("expected ErrInactiveNotFound, got %v", err)
	}
}

func TestService_Lookups(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeInactiveRepo())
	archived, err := svc.ArchiveEmployee(context.Background(), ArchiveEmployeeInput{Employee: sampleEmployee()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := svc.ExistsByOriginalEmployeeID(context.Background(), "emp-1")
	if err != nil || !exists {
		t.Fatalf("expected archive to exist, got %v %v", exists, err)
	}
	byID, err := svc.GetInactiveEmployee(context.Background(), archived.ID)
	if err != nil || byID.OriginalEmployeeID != "emp-1" {
		t.Fatalf("unexpected lookup result %+v %v", byID, err)
	}
	if _, err := svc.GetByOriginalEmployeeID(context.Background(), " "); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	list, err := svc.ListInactiveEmployees(context.Background(), ListInactiveEmployeesInput{Department: "Sales"})
	if err != nil || len(list.InactiveEmployees) != 1 {
		t.Fatalf("unexpected list result %+v %v", list, err)
	}
}
