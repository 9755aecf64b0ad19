// Package httpapi は CRM のユースケースを REST API として公開します。
//
// ルーティングには grpc-gateway の runtime.ServeMux を HandlePath で利用し、
// 応答は apiresponse.APIResponse エンベロープで返します。
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

// BasePath は全エンドポイント共通の接頭辞です。
const BasePath = "/api/v2"

// Services は REST API が呼び出すユースケースです。
type Services struct {
	Employees employee.UseCase
	Customers customer.UseCase
	Notes     note.UseCase
	Inactive  inactive.UseCase
	Workflows orchestrator.UseCase
}

// Options はミドルウェアの設定です。
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type route struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

// NewHandler はルーティングとミドルウェアを組み立てた http.Handler を返します。
func NewHandler(svc Services, opts Options) (http.Handler, error) {
	mux := runtime.NewServeMux(runtime.WithRoutingErrorHandler(routingError))

	h := &handlers{svc: svc}
	// runtime.ServeMux は後から登録したパターンを優先して照合します。
	// 固定セグメントを持つパスは同じ長さの {id} パスより後に登録します。
	routes := []route{
		{http.MethodGet, "/employees", h.listEmployees},
		{http.MethodPost, "/employees", h.createEmployee},
		{http.MethodGet, "/employees/{id}", h.getEmployee},
		{http.MethodPut, "/employees/{id}", h.updateEmployee},
		{http.MethodPatch, "/employees/{id}", h.patchEmployee},
		{http.MethodDelete, "/employees/{id}", h.deleteEmployee},
		{http.MethodGet, "/employees/departments", h.listDepartments},
		{http.MethodGet, "/employees/email/{email}", h.getEmployeeByEmail},
		{http.MethodGet, "/employees/{id}/customers", h.listEmployeeCustomers},
		{http.MethodPost, "/employees/{id}/customers", h.createCustomerForEmployee},
		{http.MethodPost, "/employees/{id}/deactivate", h.deactivateEmployee},
		{http.MethodPost, "/employees/{id}/reassign-customers", h.reassignCustomers},

		{http.MethodGet, "/customers", h.listCustomers},
		{http.MethodPost, "/customers", h.createCustomer},
		{http.MethodGet, "/customers/{id}", h.getCustomer},
		{http.MethodPut, "/customers/{id}", h.updateCustomer},
		{http.MethodPatch, "/customers/{id}", h.patchCustomer},
		{http.MethodDelete, "/customers/{id}", h.deleteCustomer},
		{http.MethodGet, "/customers/email/{email}", h.getCustomerByEmail},
		{http.MethodPut, "/customers/{id}/employee", h.reassignCustomer},
		{http.MethodGet, "/customers/{id}/notes", h.listCustomerNotes},
		{http.MethodPost, "/customers/{id}/notes", h.createNoteForCustomer},

		{http.MethodGet, "/notes", h.listNotes},
		{http.MethodPost, "/notes", h.createNote},
		{http.MethodGet, "/notes/{id}", h.getNote},
		{http.MethodPut, "/notes/{id}", h.updateNote},
		{http.MethodPatch, "/notes/{id}", h.patchNote},
		{http.MethodDelete, "/notes/{id}", h.deleteNote},

		{http.MethodGet, "/inactive-employees", h.listInactiveEmployees},
		{http.MethodGet, "/inactive-employees/{id}", h.getInactiveEmployee},
		{http.MethodGet, "/inactive-employees/original/{employeeId}", h.getInactiveByOriginal},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, BasePath+rt.pattern, rt.handle); err != nil {
			return nil, fmt.Errorf("httpapi: register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	var handler http.Handler = mux
	if opts.RateLimitRPS > 0 {
		handler = RateLimit(handler, opts.RateLimitRPS, opts.RateLimitBurst)
	}
	handler = Logging(handler, opts.Logger)
	if len(opts.AllowedOrigins) > 0 {
		handler = newCORS(opts.AllowedOrigins).Handler(handler)
	}
	return handler, nil
}

func routingError(ctx context.Context, _ *runtime.ServeMux, _ runtime.Marshaler, w http.ResponseWriter, r *http.Request, httpStatus int) {
	resp := apiresponse.Error(httpStatus, http.StatusText(httpStatus), validation.FieldError{
		Field:   "Resource",
		Message: fmt.Sprintf("no handler for %s %s", r.Method, r.URL.Path),
	})
	writeResponse(w, r, resp)
}
