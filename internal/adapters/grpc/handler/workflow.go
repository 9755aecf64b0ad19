package handler

import (
	"context"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WorkflowServiceName は複合ワークフローを公開する gRPC サービス名です。
const WorkflowServiceName = "crm.v1.WorkflowService"

// DeactivateEmployeeRequest は社員無効化の要求です。
type DeactivateEmployeeRequest struct {
	EmployeeID            string `json:"employeeId"`
	ReplacementEmployeeID string `json:"replacementEmployeeId"`
}

// DeactivateEmployeeResponse は社員無効化の結果です。
type DeactivateEmployeeResponse struct {
	InactiveEmployee    *inactive.Response `json:"inactiveEmployee,omitempty"`
	ReassignedCustomers int                `json:"reassignedCustomers"`
	ReassignedNotes     int                `json:"reassignedNotes"`
	AppliedSteps        []string           `json:"appliedSteps,omitempty"`
	SkippedSteps        []string           `json:"skippedSteps,omitempty"`
}

type ReassignCustomersRequest struct {
	FromEmployeeID string `json:"fromEmployeeId"`
	ToEmployeeID   string `json:"toEmployeeId"`
}

type ReassignCustomersResponse struct {
	Count int `json:"count"`
}

type ReassignCustomerRequest struct {
	CustomerID string `json:"customerId"`
	EmployeeID string `json:"employeeId"`
}

type CustomerResponse struct {
	Customer customer.Response `json:"customer"`
}

type CreateCustomerForEmployeeRequest struct {
	EmployeeID string           `json:"employeeId"`
	Customer   customer.Request `json:"customer"`
}

type CreateNoteForCustomerRequest struct {
	CustomerID string       `json:"customerId"`
	Note       note.Request `json:"note"`
}

type NoteResponse struct {
	Note note.Response `json:"note"`
}

// WorkflowServer は WorkflowService のサーバー側インターフェースです。
type WorkflowServer interface {
	DeactivateEmployee(ctx context.Context, req *DeactivateEmployeeRequest) (*DeactivateEmployeeResponse, error)
	ReassignCustomers(ctx context.Context, req *ReassignCustomersRequest) (*ReassignCustomersResponse, error)
	ReassignCustomer(ctx context.Context, req *ReassignCustomerRequest) (*CustomerResponse, error)
	CreateCustomerForEmployee(ctx context.Context, req *CreateCustomerForEmployeeRequest) (*CustomerResponse, error)
	CreateNoteForCustomer(ctx context.Context, req *CreateNoteForCustomerRequest) (*NoteResponse, error)
}

var workflowServiceDesc = grpc.ServiceDesc{
	ServiceName: WorkflowServiceName,
	HandlerType: (*WorkflowServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(WorkflowServiceName, "DeactivateEmployee", WorkflowServer.DeactivateEmployee),
		unary(WorkflowServiceName, "ReassignCustomers", WorkflowServer.ReassignCustomers),
		unary(WorkflowServiceName, "ReassignCustomer", WorkflowServer.ReassignCustomer),
		unary(WorkflowServiceName, "CreateCustomerForEmployee", WorkflowServer.CreateCustomerForEmployee),
		unary(WorkflowServiceName, "CreateNoteForCustomer", WorkflowServer.CreateNoteForCustomer),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crm/v1/workflow",
}

// RegisterWorkflowServer は WorkflowService を登録します。
func RegisterWorkflowServer(s grpc.ServiceRegistrar, srv WorkflowServer) {
	s.RegisterService(&workflowServiceDesc, srv)
}

// WorkflowGrpcHandler は WorkflowService の gRPC 実装です。
type WorkflowGrpcHandler struct {
	svc orchestrator.UseCase
}

var _ WorkflowServer = (*WorkflowGrpcHandler)(nil)

// NewWorkflowGrpcHandler は WorkflowGrpcHandler を生成します。
func NewWorkflowGrpcHandler(svc orchestrator.UseCase) *WorkflowGrpcHandler {
	return &WorkflowGrpcHandler{svc: svc}
}

// DeactivateEmployee は社員を無効化し、担当を後任へ引き継ぎます。
func (h *WorkflowGrpcHandler) DeactivateEmployee(ctx context.Context, req *DeactivateEmployeeRequest) (*DeactivateEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.svc.DeactivateEmployee(ctx, orchestrator.DeactivateEmployeeInput{
		EmployeeID:    req.EmployeeID,
		ReplacementID: req.ReplacementEmployeeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	resp := &DeactivateEmployeeResponse{
		ReassignedCustomers: result.ReassignedCustomers,
		ReassignedNotes:     result.ReassignedNotes,
	}
	if result.Workflow != nil {
		resp.AppliedSteps = result.Workflow.Applied
		resp.SkippedSteps = result.Workflow.Skipped
	}
	if result.Inactive != nil {
		archived, err := inactive.EntityToResponse.Transform(result.Inactive)
		if err != nil {
			return nil, toStatusError(err)
		}
		resp.InactiveEmployee = &archived
	}
	return resp, nil
}

// ReassignCustomers は担当顧客を一括で付け替えます。
func (h *WorkflowGrpcHandler) ReassignCustomers(ctx context.Context, req *ReassignCustomersRequest) (*ReassignCustomersResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	count, err := h.svc.ReassignCustomers(ctx, orchestrator.ReassignCustomersInput{
		FromEmployeeID: req.FromEmployeeID,
		ToEmployeeID:   req.ToEmployeeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ReassignCustomersResponse{Count: count}, nil
}

// ReassignCustomer は顧客 1 件の担当社員を変更します。
func (h *WorkflowGrpcHandler) ReassignCustomer(ctx context.Context, req *ReassignCustomerRequest) (*CustomerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.ReassignCustomer(ctx, orchestrator.ReassignCustomerInput{
		CustomerID: req.CustomerID,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toCustomerResponse(updated)
}

// CreateCustomerForEmployee は指定社員を担当とする顧客を作成します。
func (h *WorkflowGrpcHandler) CreateCustomerForEmployee(ctx context.Context, req *CreateCustomerForEmployeeRequest) (*CustomerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.CreateCustomerForEmployee(ctx, req.EmployeeID, req.Customer)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toCustomerResponse(created)
}

// CreateNoteForCustomer は顧客に紐づくノートを作成します。
func (h *WorkflowGrpcHandler) CreateNoteForCustomer(ctx context.Context, req *CreateNoteForCustomerRequest) (*NoteResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.CreateNoteForCustomer(ctx, req.CustomerID, req.Note)
	if err != nil {
		return nil, toStatusError(err)
	}
	resp, err := note.EntityToResponse.Transform(created)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &NoteResponse{Note: resp}, nil
}

func toCustomerResponse(c *customer.Customer) (*CustomerResponse, error) {
	resp, err := customer.EntityToResponse.Transform(c)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &CustomerResponse{Customer: resp}, nil
}
