package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmployeeServiceName は社員管理を公開する gRPC サービス名です。
const EmployeeServiceName = "crm.v1.EmployeeService"

type CreateEmployeeRequest struct {
	Employee employee.Request `json:"employee"`
}

// GetEmployeeRequest は ID またはメールアドレスで社員を指定します。ID が優先されます。
type GetEmployeeRequest struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

type ListEmployeesRequest struct {
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
	Search    string `json:"search,omitempty"`
}

type ListEmployeesResponse struct {
	Employees     []employee.Response `json:"employees"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
}

type UpdateEmployeeRequest struct {
	ID       string           `json:"id"`
	Employee employee.Request `json:"employee"`
}

type PatchEmployeeRequest struct {
	ID    string         `json:"id"`
	Patch employee.Patch `json:"patch"`
}

type DeleteEmployeeRequest struct {
	ID string `json:"id"`
}

type DeleteEmployeeResponse struct{}

type ListDepartmentsRequest struct{}

type ListDepartmentsResponse struct {
	Departments []string `json:"departments"`
}

type EmployeeResponse struct {
	Employee employee.Response `json:"employee"`
}

// EmployeeServer は EmployeeService のサーバー側インターフェースです。
type EmployeeServer interface {
	CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*EmployeeResponse, error)
	GetEmployee(ctx context.Context, req *GetEmployeeRequest) (*EmployeeResponse, error)
	ListEmployees(ctx context.Context, req *ListEmployeesRequest) (*ListEmployeesResponse, error)
	UpdateEmployee(ctx context.Context, req *UpdateEmployeeRequest) (*EmployeeResponse, error)
	PatchEmployee(ctx context.Context, req *PatchEmployeeRequest) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, req *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error)
	ListDepartments(ctx context.Context, req *ListDepartmentsRequest) (*ListDepartmentsResponse, error)
}

var employeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(EmployeeServiceName, "CreateEmployee", EmployeeServer.CreateEmployee),
		unary(EmployeeServiceName, "GetEmployee", EmployeeServer.GetEmployee),
		unary(EmployeeServiceName, "ListEmployees", EmployeeServer.ListEmployees),
		unary(EmployeeServiceName, "UpdateEmployee", EmployeeServer.UpdateEmployee),
		unary(EmployeeServiceName, "PatchEmployee", EmployeeServer.PatchEmployee),
		unary(EmployeeServiceName, "DeleteEmployee", EmployeeServer.DeleteEmployee),
		unary(EmployeeServiceName, "ListDepartments", EmployeeServer.ListDepartments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crm/v1/employee",
}

// RegisterEmployeeServer は EmployeeService を登録します。
func RegisterEmployeeServer(s grpc.ServiceRegistrar, srv EmployeeServer) {
	s.RegisterService(&employeeServiceDesc, srv)
}

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

var _ EmployeeServer = (*EmployeeGrpcHandler)(nil)

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*EmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.CreateEmployee(ctx, req.Employee)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toEmployeeResponse(created)
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *GetEmployeeRequest) (*EmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var (
		found *employee.Employee
		err   error
	)
	switch {
	case strings.TrimSpace(req.ID) != "":
		found, err = h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.ID})
	case strings.TrimSpace(req.Email) != "":
		found, err = h.svc.GetEmployeeByEmail(ctx, req.Email)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or email is required")
	}
	if err != nil {
		return nil, toStatusError(err)
	}
	return toEmployeeResponse(found)
}

// ListEmployees は社員の一覧を取得します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *ListEmployeesRequest) (*ListEmployeesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.svc.ListEmployees(ctx, employee.ListEmployeesInput{
		PageSize:  int(req.PageSize),
		PageToken: req.PageToken,
		Search:    req.Search,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	employees, err := transform.Slice(employee.EntityToResponse, result.Employees)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ListEmployeesResponse{
		Employees:     employees,
		NextPageToken: result.NextPageToken,
	}, nil
}

// UpdateEmployee は社員情報を全体更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *UpdateEmployeeRequest) (*EmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{ID: req.ID, Request: req.Employee})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toEmployeeResponse(updated)
}

// PatchEmployee は指定されたフィールドのみを更新します。
func (h *EmployeeGrpcHandler) PatchEmployee(ctx context.Context, req *PatchEmployeeRequest) (*EmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.PatchEmployee(ctx, employee.PatchEmployeeInput{ID: req.ID, Patch: req.Patch})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toEmployeeResponse(updated)
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: req.ID}); err != nil {
		return nil, toStatusError(err)
	}
	return &DeleteEmployeeResponse{}, nil
}

// ListDepartments は部署名の一覧を返します。
func (h *EmployeeGrpcHandler) ListDepartments(ctx context.Context, _ *ListDepartmentsRequest) (*ListDepartmentsResponse, error) {
	departments, err := h.svc.ListDepartments(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ListDepartmentsResponse{Departments: departments}, nil
}

func toEmployeeResponse(e *employee.Employee) (*EmployeeResponse, error) {
	resp, err := employee.EntityToResponse.Transform(e)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &EmployeeResponse{Employee: resp}, nil
}
