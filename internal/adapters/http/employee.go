package httpapi

import (
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

type handlers struct {
	svc Services
}

// DeactivationResponse は社員無効化の結果です。
type DeactivationResponse struct {
	InactiveEmployee    *inactive.Response `json:"inactiveEmployee,omitempty"`
	ReassignedCustomers int                `json:"reassignedCustomers"`
	ReassignedNotes     int                `json:"reassignedNotes"`
	AppliedSteps        []string           `json:"appliedSteps,omitempty"`
	SkippedSteps        []string           `json:"skippedSteps,omitempty"`
}

// ReassignedResponse は一括引き継ぎの件数です。
type ReassignedResponse struct {
	Count int `json:"count"`
}

type deactivateBody struct {
	ReplacementEmployeeID string `json:"replacementEmployeeId"`
}

type reassignCustomersBody struct {
	ToEmployeeID string `json:"toEmployeeId"`
}

func (h *handlers) listEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Employees.ListEmployees(r.Context(), employee.ListEmployeesInput{
		PageSize:  page.size,
		PageToken: page.token,
		Search:    r.URL.Query().Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := transform.Slice(employee.EntityToResponse, result.Employees)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, apiresponse.NewPage(items, result.NextPageToken)))
}

func (h *handlers) createEmployee(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req employee.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Employees.CreateEmployee(r.Context(), req)
	respondEmployee(w, r, http.StatusCreated, created, err)
}

func (h *handlers) getEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: p["id"]})
	respondEmployee(w, r, http.StatusOK, found, err)
}

func (h *handlers) getEmployeeByEmail(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Employees.GetEmployeeByEmail(r.Context(), p["email"])
	respondEmployee(w, r, http.StatusOK, found, err)
}

func (h *handlers) updateEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var req employee.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Employees.UpdateEmployee(r.Context(), employee.UpdateEmployeeInput{ID: p["id"], Request: req})
	respondEmployee(w, r, http.StatusOK, updated, err)
}

func (h *handlers) patchEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var patch employee.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Employees.PatchEmployee(r.Context(), employee.PatchEmployeeInput{ID: p["id"], Patch: patch})
	respondEmployee(w, r, http.StatusOK, updated, err)
}

// deleteEmployee は replacementEmployeeId が指定されていれば無効化ワークフローを、
// なければ単純な削除を行います。
func (h *handlers) deleteEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	if replacement := r.URL.Query().Get("replacementEmployeeId"); replacement != "" {
		h.runDeactivation(w, r, p["id"], replacement)
		return
	}
	if err := h.svc.Employees.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: p["id"]}); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.Message(http.StatusOK, msgCompleted))
}

func (h *handlers) deactivateEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var body deactivateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.runDeactivation(w, r, p["id"], body.ReplacementEmployeeID)
}

func (h *handlers) runDeactivation(w http.ResponseWriter, r *http.Request, employeeID, replacementID string) {
	result, err := h.svc.Workflows.DeactivateEmployee(r.Context(), orchestrator.DeactivateEmployeeInput{
		EmployeeID:    employeeID,
		ReplacementID: replacementID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := DeactivationResponse{
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
			writeError(w, r, err)
			return
		}
		resp.InactiveEmployee = &archived
	}
	writeResponse(w, r, apiresponse.OK(msgCompleted, resp))
}

func (h *handlers) reassignCustomers(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var body reassignCustomersBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	count, err := h.svc.Workflows.ReassignCustomers(r.Context(), orchestrator.ReassignCustomersInput{
		FromEmployeeID: p["id"],
		ToEmployeeID:   body.ToEmployeeID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgCompleted, ReassignedResponse{Count: count}))
}

func (h *handlers) listDepartments(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	departments, err := h.svc.Employees.ListDepartments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if departments == nil {
		departments = []string{}
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, departments))
}

func (h *handlers) listEmployeeCustomers(w http.ResponseWriter, r *http.Request, p map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Customers.ListCustomersByEmployee(r.Context(), customer.ListCustomersByEmployeeInput{
		EmployeeID: p["id"],
		PageSize:   page.size,
		PageToken:  page.token,
	})
	respondCustomerPage(w, r, result, err)
}

func (h *handlers) createCustomerForEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var req customer.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Workflows.CreateCustomerForEmployee(r.Context(), p["id"], req)
	respondCustomer(w, r, http.StatusCreated, created, err)
}

func respondEmployee(w http.ResponseWriter, r *http.Request, statusCode int, e *employee.Employee, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := employee.EntityToResponse.Transform(e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	message := msgSuccess
	if r.Method != http.MethodGet {
		message = msgCompleted
	}
	writeResponse(w, r, apiresponse.Success(statusCode, message, resp))
}
