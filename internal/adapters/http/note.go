package httpapi

import (
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/apiresponse"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/transform"
)

func (h *handlers) listNotes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.svc.Notes.ListNotes(r.Context(), note.ListNotesInput{
		PageSize:   page.size,
		PageToken:  page.token,
		EmployeeID: r.URL.Query().Get("employeeId"),
	})
	respondNotePage(w, r, result, err)
}

func (h *handlers) createNote(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req note.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Notes.CreateNote(r.Context(), req)
	respondNote(w, r, http.StatusCreated, created, err)
}

func (h *handlers) getNote(w http.ResponseWriter, r *http.Request, p map[string]string) {
	found, err := h.svc.Notes.GetNote(r.Context(), note.GetNoteInput{ID: p["id"]})
	respondNote(w, r, http.StatusOK, found, err)
}

func (h *handlers) updateNote(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var req note.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Notes.UpdateNote(r.Context(), note.UpdateNoteInput{ID: p["id"], Request: req})
	respondNote(w, r, http.StatusOK, updated, err)
}

func (h *handlers) patchNote(w http.ResponseWriter, r *http.Request, p map[string]string) {
	var patch note.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Notes.PatchNote(r.Context(), note.PatchNoteInput{ID: p["id"], Patch: patch})
	respondNote(w, r, http.StatusOK, updated, err)
}

func (h *handlers) deleteNote(w http.ResponseWriter, r *http.Request, p map[string]string) {
	if err := h.svc.Notes.DeleteNote(r.Context(), note.DeleteNoteInput{ID: p["id"]}); err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.Message(http.StatusOK, msgCompleted))
}

func respondNote(w http.ResponseWriter, r *http.Request, statusCode int, n *note.Note, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := note.EntityToResponse.Transform(n)
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

func respondNotePage(w http.ResponseWriter, r *http.Request, result *note.ListNotesResult, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := transform.Slice(note.EntityToResponse, result.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, apiresponse.OK(msgSuccess, apiresponse.NewPage(items, result.NextPageToken)))
}
