package handlers

import (
	"net/http"

	"famlink/internal/service"
)

// NoteHandler handles the shared notice board
type NoteHandler struct {
	noteService *service.NoteService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ListNotes returns the caller's board, or the archive with ?archived=true
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	archived := r.URL.Query().Get("archived") == "true"

	notes, err := h.noteService.ListVisibleNotes(r.Context(), account.ID, archived)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notes)
}

// CreateNote posts a note to the board
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())

	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), account.ID, req.Title, req.Body)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, note)
}

// UpdateNote replaces a note's title and body
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	noteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), account.ID, noteID, req.Title, req.Body)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, note)
}

// ArchiveNote moves a note off the board
func (h *NoteHandler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// UnarchiveNote puts a note back on the board
func (h *NoteHandler) UnarchiveNote(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *NoteHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	account := GetAccountFromContext(r.Context())
	noteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	note, err := h.noteService.SetArchived(r.Context(), account.ID, noteID, archived)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, note)
}

// DeleteNote removes a note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r.Context())
	noteID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), account.ID, noteID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
