package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubWorkflowUseCase struct {
	deactivateInput orchestrator.DeactivateEmployeeInput
	deactivateOut   *orchestrator.DeactivationResult
	deactivateErr   error

	reassignAllInput orchestrator.ReassignCustomersInput
	reassignAllOut   int

	reassignInput orchestrator.ReassignCustomerInput
	customerOut   *customer.Customer
	customerErr   error

	createdForEmployee string
	createdForCustomer string
	noteOut            *note.Note
}

func (s *stubWorkflowUseCase) DeactivateEmployee(ctx context.Context, in orchestrator.DeactivateEmployeeInput) (*orchestrator.DeactivationResult, error) {
	s.deactivateInput = in
	return s.deactivateOut, s.deactivateErr
}

func (s *stubWorkflowUseCase) ReassignCustomers(ctx context.Context, in orchestrator.ReassignCustomersInput) (int, error) {
	s.reassignAllInput = in
	return s.reassignAllOut, nil
}

func (s *stubWorkflowUseCase) ReassignCustomer(ctx context.Context, in orchestrator.ReassignCustomerInput) (*customer.Customer, error) {
	s.reassignInput = in
	return s.customerOut, s.customerErr
}

func (s *stubWorkflowUseCase) CreateCustomerForEmployee(ctx context.Context, employeeID string, req customer.Request) (*customer.Customer, error) {
	s.createdForEmployee = employeeID
	return s.customerOut, s.customerErr
}

func (s *stubWorkflowUseCase) CreateNoteForCustomer(ctx context.Context, customerID string, req note.Request) (*note.Note, error) {
	s.createdForCustomer = customerID
	return s.noteOut, nil
}

func sampleCustomer() *customer.Customer {
	return &customer.Customer{
		ID:         "cus-1",
		FirstName:  "Hanako",
		LastName:   "Suzuki",
		Email:      "hanako@example.com",
		Phone:      "0312345678",
		EmployeeID: "emp-2",
	}
}

func TestWorkflowGrpcHandler_DeactivateEmployee_OverBufconn(t *testing.T) {
	t.Parallel()

	deactivatedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubWorkflowUseCase{deactivateOut: &orchestrator.DeactivationResult{
		Workflow: &orchestrator.Result{
			Workflow: orchestrator.WorkflowDeactivateEmployee,
			Applied:  []string{orchestrator.StepArchiveEmployee, orchestrator.StepReassignCustomers, orchestrator.StepDeleteEmployee},
			Skipped:  []string{orchestrator.StepReassignNotes},
		},
		Inactive: &inactive.InactiveEmployee{
			ID:                    "inact-1",
			OriginalEmployeeID:    "emp-1",
			FirstName:             "Taro",
			LastName:              "Yamada",
			Email:                 "taro@example.com",
			Department:            "Sales",
			ReplacementEmployeeID: "emp-2",
			ReassignedCustomers:   3,
			DeactivatedAt:         deactivatedAt,
		},
		ReassignedCustomers: 3,
	}}
	conn := dialBufconn(t, func(s grpc.ServiceRegistrar) {
		RegisterWorkflowServer(s, NewWorkflowGrpcHandler(stub))
	})

	var resp DeactivateEmployeeResponse
	err := conn.Invoke(context.Background(), "/"+WorkflowServiceName+"/DeactivateEmployee",
		&DeactivateEmployeeRequest{EmployeeID: "emp-1", ReplacementEmployeeID: "emp-2"}, &resp)
	require.NoError(t, err)

	assert.Equal(t, "emp-1", stub.deactivateInput.EmployeeID)
	assert.Equal(t, "emp-2", stub.deactivateInput.ReplacementID)
	require.NotNil(t, resp.InactiveEmployee)
	assert.Equal(t, "inact-1", resp.InactiveEmployee.ID)
	assert.Equal(t, 3, resp.ReassignedCustomers)
	assert.Equal(t, []string{orchestrator.StepReassignNotes}, resp.SkippedSteps)
	assert.Len(t, resp.AppliedSteps, 3)
}

func TestWorkflowGrpcHandler_DeactivateEmployee_StepFailure(t *testing.T) {
	t.Parallel()

	stub := &stubWorkflowUseCase{deactivateErr: &orchestrator.StepError{
		Workflow: orchestrator.WorkflowDeactivateEmployee,
		Step:     orchestrator.StepDeleteEmployee,
		Err:      employee.ErrEmployeeReferenced,
	}}
	h := NewWorkflowGrpcHandler(stub)

	_, err := h.DeactivateEmployee(context.Background(), &DeactivateEmployeeRequest{EmployeeID: "emp-1", ReplacementEmployeeID: "emp-2"})
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Aborted, st.Code())

	var info *errdetails.ErrorInfo
	for _, d := range st.Details() {
		if v, ok := d.(*errdetails.ErrorInfo); ok {
			info = v
		}
	}
	require.NotNil(t, info)
	assert.Equal(t, "WORKFLOW_STEP_FAILED", info.GetReason())
	assert.Equal(t, orchestrator.StepDeleteEmployee, info.GetMetadata()["step"])
}

func TestWorkflowGrpcHandler_DeactivateEmployee_SameEmployee(t *testing.T) {
	t.Parallel()

	h := NewWorkflowGrpcHandler(&stubWorkflowUseCase{deactivateErr: orchestrator.ErrSameEmployee})
	_, err := h.DeactivateEmployee(context.Background(), &DeactivateEmployeeRequest{EmployeeID: "emp-1", ReplacementEmployeeID: "emp-1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWorkflowGrpcHandler_ReassignCustomers(t *testing.T) {
	t.Parallel()

	stub := &stubWorkflowUseCase{reassignAllOut: 4}
	h := NewWorkflowGrpcHandler(stub)

	resp, err := h.ReassignCustomers(context.Background(), &ReassignCustomersRequest{FromEmployeeID: "emp-1", ToEmployeeID: "emp-2"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Count)
	assert.Equal(t, "emp-2", stub.reassignAllInput.ToEmployeeID)
}

func TestWorkflowGrpcHandler_ReassignCustomer_TargetMissing(t *testing.T) {
	t.Parallel()

	stub := &stubWorkflowUseCase{customerErr: customer.ErrEmployeeNotFound}
	h := NewWorkflowGrpcHandler(stub)

	_, err := h.ReassignCustomer(context.Background(), &ReassignCustomerRequest{CustomerID: "cus-1", EmployeeID: "ghost"})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "ghost", stub.reassignInput.EmployeeID)
}

func TestWorkflowGrpcHandler_CreateCustomerForEmployee(t *testing.T) {
	t.Parallel()

	stub := &stubWorkflowUseCase{customerOut: sampleCustomer()}
	h := NewWorkflowGrpcHandler(stub)

	resp, err := h.CreateCustomerForEmployee(context.Background(), &CreateCustomerForEmployeeRequest{EmployeeID: "emp-2"})
	require.NoError(t, err)
	assert.Equal(t, "emp-2", stub.createdForEmployee)
	assert.Equal(t, "cus-1", resp.Customer.ID)
}

func TestWorkflowGrpcHandler_CreateNoteForCustomer(t *testing.T) {
	t.Parallel()

	stub := &stubWorkflowUseCase{noteOut: &note.Note{
		ID:              "note-1",
		Content:         "called",
		Date:            time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		InteractionType: note.InteractionPhoneCall,
		CustomerID:      "cus-1",
		EmployeeID:      "emp-2",
	}}
	h := NewWorkflowGrpcHandler(stub)

	resp, err := h.CreateNoteForCustomer(context.Background(), &CreateNoteForCustomerRequest{CustomerID: "cus-1"})
	require.NoError(t, err)
	assert.Equal(t, "cus-1", stub.createdForCustomer)
	assert.Equal(t, note.InteractionPhoneCall, resp.Note.InteractionType)
}

func TestToStatusError_InternalHidesCause(t *testing.T) {
	t.Parallel()

	err := toStatusError(errors.New("pq: connection reset"))
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "connection reset")
	assert.NoError(t, toStatusError(nil))
}
