package httpapi

import (
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

func (h *handlers) listInactiveEmployees(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Inactive.ListInactiveEmployees(r.Context(), inactive.ListInactiveEmployeesInput{
		Department: r.URL.Query().Get("department"),
		PageSize:   page.size,
		PageToken:  page.token,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := transform.Slice(inactive.EntityToResponse, result.InactiveEmployees)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, apiresponse.NewPage(items, result.NextPageToken)))
}

func (h *handlers) getInactiveEmployee(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Inactive.GetInactiveEmployee(r.Context(), p["id"])
	respondInactive(w, r, found, err)
}

func (h *handlers) getInactiveByOriginal(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Inactive.GetByOriginalEmployeeID(r.Context(), p["employeeId"])
	respondInactive(w, r, found, err)
}

func respondInactive(w http.ResponseWriter, r *http.Request, record *inactive.InactiveEmployee, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := inactive.EntityToResponse.Transform(record)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, resp))
}
