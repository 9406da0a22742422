package handler

import (
	"net/http"

	"notes-service/internal/errs"
	"notes-service/internal/service"

	"github.com/labstack/echo/v4"
)

// NoteRequest is the body of note create and update
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks that title and content are present
func (r *NoteRequest) Validate() error {
	if r.Title == "" || r.Content == "" {
		return errs.New(errs.Validation, "Title and content are required")
	}
	return nil
}

// NoteHandler serves the tenant-scoped note endpoints
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler creates a note handler
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func bindNote(c echo.Context) (NoteRequest, error) {
	var req NoteRequest
	if err := bindJSON(c, &req); err != nil {
		return req, err
	}
	return req, req.Validate()
}

// ListNotes returns all notes of the caller's tenant
func (h *NoteHandler) ListNotes(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	notes, err := h.notes.List(c.Request().Context(), identity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// CreateNote adds a note to the caller's tenant
func (h *NoteHandler) CreateNote(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := bindNote(c)
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Create(c.Request().Context(), identity, req.Title, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// GetNote returns one note of the caller's tenant
func (h *NoteHandler) GetNote(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := service.ParseNoteID(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Get(c.Request().Context(), identity, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// UpdateNote replaces title and content of a note of the caller's tenant
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := bindNote(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := service.ParseNoteID(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Update(c.Request().Context(), identity, id, req.Title, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNote removes a note of the caller's tenant
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := service.ParseNoteID(c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	if err := h.notes.Delete(c.Request().Context(), identity, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted successfully"})
}
