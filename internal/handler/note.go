package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anisa/notekeeper/internal/apperror"
	"github.com/anisa/notekeeper/internal/auth"
	"github.com/anisa/notekeeper/internal/service"
)

// NoteHandler serves every note and item route. All of these sit behind
// RequireAuth, so a user id is always present in the request context.
type NoteHandler struct {
	notes  *service.NoteService
	render *Renderer
	logger *slog.Logger
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(notes *service.NoteService, render *Renderer, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		notes:  notes,
		render: render,
		logger: logger,
	}
}

// Main lists the user's notes.
//
// HTTP: GET /main
func (h *NoteHandler) Main(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	notes, err := h.notes.ListNotes(r.Context(), userID)
	if err != nil {
		h.render.renderError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "main", map[string]any{
		"Year":  time.Now().Year(),
		"Notes": notes,
		"Flash": takeFlash(w, r),
	})
}

// ShowNoteForm serves the list-note creation form.
//
// HTTP: GET /note
func (h *NoteHandler) ShowNoteForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "note", map[string]any{
		"Year":  time.Now().Year(),
		"Flash": takeFlash(w, r),
		"Title": "",
	})
}

// ShowVoiceNoteForm serves the voice-note creation form.
//
// HTTP: GET /voiceNote
func (h *NoteHandler) ShowVoiceNoteForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "voicenote", map[string]any{
		"Year":  time.Now().Year(),
		"Flash": takeFlash(w, r),
		"Title": "",
		"Body":  "",
	})
}

// ShowExampleNote serves the static example-note page.
//
// HTTP: GET /exampleNote
func (h *NoteHandler) ShowExampleNote(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "example", map[string]any{
		"Year": time.Now().Year(),
	})
}

// ShowNote renders one note with its items.
//
// HTTP: POST /showNote — field: noteId.
func (h *NoteHandler) ShowNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	h.renderNote(w, r, userID, r.PostFormValue("noteId"), "")
}

// CreateNote creates a titled list from the creation form.
//
// HTTP: POST /note — fields: listTitle, item (repeated).
//
// A duplicate title or an invalid field re-renders the form with the
// message; success goes back to /main with a notice.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	title := r.PostFormValue("listTitle")
	items := r.PostForm["item"]

	if _, err := h.notes.CreateNote(r.Context(), userID, title, items); err != nil {
		if message, ok := formMessage(err); ok {
			h.render.Render(w, http.StatusOK, "note", map[string]any{
				"Year":  time.Now().Year(),
				"Error": message,
				"Title": title,
			})
			return
		}
		h.render.renderError(w, err)
		return
	}

	setFlash(w, "Note created")
	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// CreateVoiceNote creates a note whose single item is the dictated body.
//
// HTTP: POST /voiceNote — fields: noteTitle, noteBody.
func (h *NoteHandler) CreateVoiceNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	title := r.PostFormValue("noteTitle")
	body := r.PostFormValue("noteBody")

	if _, err := h.notes.CreateVoiceNote(r.Context(), userID, title, body); err != nil {
		if message, ok := formMessage(err); ok {
			h.render.Render(w, http.StatusOK, "voicenote", map[string]any{
				"Year":  time.Now().Year(),
				"Error": message,
				"Title": title,
				"Body":  body,
			})
			return
		}
		h.render.renderError(w, err)
		return
	}

	setFlash(w, "Note created")
	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// AddItem appends one item to an existing note and re-renders it.
//
// HTTP: POST /add — fields: noteId, item.
func (h *NoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	noteID := r.PostFormValue("noteId")
	text := r.PostFormValue("item")

	if _, err := h.notes.AddItem(r.Context(), userID, noteID, text); err != nil {
		if message, ok := formMessage(err); ok {
			h.renderNote(w, r, userID, noteID, message)
			return
		}
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "Item added")
}

// EditItem replaces an item's text and re-renders its note.
//
// HTTP: POST /edit — fields: updatedItemId, updatedItem, noteId.
func (h *NoteHandler) EditItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	itemID := r.PostFormValue("updatedItemId")
	text := r.PostFormValue("updatedItem")
	noteID := r.PostFormValue("noteId")

	if err := h.notes.EditItem(r.Context(), userID, itemID, text); err != nil {
		if message, ok := formMessage(err); ok {
			h.renderNote(w, r, userID, noteID, message)
			return
		}
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "Item updated")
}

// EditTitle renames a note.
//
// HTTP: POST /editTitle — fields: updatedTitle, noteId.
func (h *NoteHandler) EditTitle(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	noteID := r.PostFormValue("noteId")
	title := r.PostFormValue("updatedTitle")

	if err := h.notes.RenameNote(r.Context(), userID, noteID, title); err != nil {
		if message, ok := formMessage(err); ok {
			h.renderNote(w, r, userID, noteID, message)
			return
		}
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "Title updated")
}

// CheckOff toggles one item's done flag, identified by the checkbox value
// carrying the item id.
//
// HTTP: POST /checkOff — fields: checkbox (item id), noteId.
func (h *NoteHandler) CheckOff(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	itemID := r.PostFormValue("checkbox")
	noteID := r.PostFormValue("noteId")

	if _, err := h.notes.ToggleItemDone(r.Context(), userID, itemID); err != nil {
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "")
}

// DeleteItem removes one item. The service reports which note the item
// belonged to so the right page can be re-rendered.
//
// HTTP: POST /delete — field: itemId.
func (h *NoteHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	itemID := r.PostFormValue("itemId")

	noteID, err := h.notes.DeleteItem(r.Context(), userID, itemID)
	if err != nil {
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "Item deleted")
}

// DeleteNote removes a note with all its items.
//
// HTTP: POST /delete-note — field: noteId.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	if err := h.notes.DeleteNote(r.Context(), userID, r.PostFormValue("noteId")); err != nil {
		h.render.renderError(w, err)
		return
	}

	setFlash(w, "Note deleted")
	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// DeleteCheckedItems bulk-deletes the note's done items.
//
// HTTP: POST /deleteCheckedItems — field: noteId.
func (h *NoteHandler) DeleteCheckedItems(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	noteID := r.PostFormValue("noteId")

	if err := h.notes.DeleteDoneItems(r.Context(), userID, noteID); err != nil {
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, noteID, "Checked items deleted")
}

// Search looks a note up by exact title. A hit renders the note; a miss
// flashes a notice and returns to /main.
//
// HTTP: POST /search — field: searchTitle.
func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, apperror.ValidationFailed("form", "could not parse form"))
		return
	}

	title := r.PostFormValue("searchTitle")

	note, err := h.notes.SearchByTitle(r.Context(), userID, title)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
			setFlash(w, "No note found with that title")
			http.Redirect(w, r, "/main", http.StatusSeeOther)
			return
		}
		h.render.renderError(w, err)
		return
	}

	h.renderNote(w, r, userID, note.ID, "")
}

// renderNote fetches a note with its items and renders the note page,
// optionally with a status message.
func (h *NoteHandler) renderNote(w http.ResponseWriter, r *http.Request, userID, noteID, message string) {
	note, items, err := h.notes.GetNoteWithItems(r.Context(), userID, noteID)
	if err != nil {
		h.render.renderError(w, err)
		return
	}

	if message == "" {
		message = takeFlash(w, r)
	}

	h.render.Render(w, http.StatusOK, "shownote", map[string]any{
		"Year":    time.Now().Year(),
		"Note":    note,
		"Items":   items,
		"Message": message,
	})
}

// formMessage extracts the user-facing message for errors that re-render a
// form (validation problems and uniqueness conflicts). Other categories —
// not found, forbidden, store failures — go through renderError instead.
func formMessage(err error) (string, bool) {
	if !errors.Is(err, apperror.ErrValidation) && !errors.Is(err, apperror.ErrConflict) {
		return "", false
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
