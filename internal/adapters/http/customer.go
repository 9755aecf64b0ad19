package httpapi

import (
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

type reassignCustomerBody struct {
	EmployeeID string `json:"employeeId"`
}

func (h *handlers) listCustomers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	result, err := h.svc.Customers.ListCustomers(r.Context(), customer.ListCustomersInput{
		PageSize:   page.size,
		PageToken:  page.token,
		Search:     q.Get("search"),
		EmployeeID: q.Get("employeeId"),
	})
	respondCustomerPage(w, r, result, err)
}

func (h *handlers) createCustomer(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req customer.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Customers.CreateCustomer(r.Context(), req)
	respondCustomer(w, r, http.StatusCreated, created, err)
}

func (h *handlers) getCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Customers.GetCustomer(r.Context(), customer.GetCustomerInput{ID: p["id"]})
	respondCustomer(w, r, http.StatusOK, found, err)
}

func (h *handlers) getCustomerByEmail(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Customers.GetCustomerByEmail(r.Context(), p["email"])
	respondCustomer(w, r, http.StatusOK, found, err)
}

func (h *handlers) updateCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var req customer.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Customers.UpdateCustomer(r.Context(), customer.UpdateCustomerInput{ID: p["id"], Request: req})
	respondCustomer(w, r, http.StatusOK, updated, err)
}

func (h *handlers) patchCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var patch customer.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Customers.PatchCustomer(r.Context(), customer.PatchCustomerInput{ID: p["id"], Patch: patch})
	respondCustomer(w, r, http.StatusOK, updated, err)
}

func (h *handlers) deleteCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	if err := h.svc.Customers.DeleteCustomer(r.Context(), customer.DeleteCustomerInput{ID: p["id"]}); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.Message(http.StatusOK, msgCompleted))
}

func (h *handlers) reassignCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var body reassignCustomerBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Workflows.ReassignCustomer(r.Context(), orchestrator.ReassignCustomerInput{
		CustomerID: p["id"],
		EmployeeID: body.EmployeeID,
	})
	respondCustomer(w, r, http.StatusOK, updated, err)
}

func (h *handlers) listCustomerNotes(w http.ResponseWriter, r *http.Request, p map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Notes.ListNotesByCustomer(r.Context(), note.ListNotesByCustomerInput{
		CustomerID: p["id"],
		PageSize:   page.size,
		PageToken:  page.token,
	})
	respondNotePage(w, r, result, err)
}

func (h *handlers) createNoteForCustomer(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var req note.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Workflows.CreateNoteForCustomer(r.Context(), p["id"], req)
	respondNote(w, r, http.StatusCreated, created, err)
}

func respondCustomer(w http.ResponseWriter, r *http.Request, statusCode int, c *customer.Customer, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := customer.EntityToResponse.Transform(c)
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

func respondCustomerPage(w http.ResponseWriter, r *http.Request, result *customer.ListCustomersResult, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := transform.Slice(customer.EntityToResponse, result.Customers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, apiresponse.NewPage(items, result.NextPageToken)))
}
