package handler_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anisa/notekeeper/internal/model"
)

// noteByTitle reads the created note straight from the store; handler tests
// only get ids back through rendered HTML otherwise.
func (a *testApp) noteByTitle(t *testing.T, title string) *model.Note {
	t.Helper()
	note, err := a.db.FindNoteByTitle(context.Background(), title)
	if err != nil {
		t.Fatalf("note %q not found: %v", title, err)
	}
	return note
}

func (a *testApp) noteItems(t *testing.T, noteID string) []model.Item {
	t.Helper()
	items, err := a.db.GetNoteItems(context.Background(), noteID)
	if err != nil {
		t.Fatalf("items for note %q: %v", noteID, err)
	}
	return items
}

func TestCreateNoteFlow(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/note", url.Values{
		"listTitle": {"Groceries"},
		"item":      {"milk", "bread", ""},
	}, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/main", rr.Header().Get("Location"))

	note := app.noteByTitle(t, "Groceries")
	items := app.noteItems(t, note.ID)
	assert.Len(t, items, 2)

	// The new note shows up on /main.
	rr = app.get(t, "/main", session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Groceries")
}

func TestCreateNote_DuplicateTitleRerendersForm(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	form := url.Values{"listTitle": {"Groceries"}, "item": {"milk"}}
	app.postForm(t, "/note", form, session)

	rr := app.postForm(t, "/note", form, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "already exists")
}

func TestCreateVoiceNoteFlow(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/voiceNote", url.Values{
		"noteTitle": {"Dictated"},
		"noteBody":  {"pick up the dry cleaning"},
	}, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	note := app.noteByTitle(t, "Dictated")
	items := app.noteItems(t, note.ID)
	if assert.Len(t, items, 1) {
		assert.Equal(t, "pick up the dry cleaning", items[0].Content)
	}
}

func TestShowNote(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Groceries"}, "item": {"milk"}}, session)
	note := app.noteByTitle(t, "Groceries")

	rr := app.postForm(t, "/showNote", url.Values{"noteId": {note.ID}}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Groceries")
	assert.Contains(t, rr.Body.String(), "milk")
}

func TestShowNote_MissingNoteIs404(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")

	rr := app.postForm(t, "/showNote", url.Values{"noteId": {"no-such-note"}}, session)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddEditToggleDeleteItem(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Groceries"}, "item": {"milk"}}, session)
	note := app.noteByTitle(t, "Groceries")

	// add
	rr := app.postForm(t, "/add", url.Values{"noteId": {note.ID}, "item": {"bread"}}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	items := app.noteItems(t, note.ID)
	assert.Len(t, items, 2)

	var bread model.Item
	for _, it := range items {
		if it.Content == "bread" {
			bread = it
		}
	}

	// edit
	rr = app.postForm(t, "/edit", url.Values{
		"updatedItemId": {bread.ID},
		"updatedItem":   {"rye bread"},
		"noteId":        {note.ID},
	}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rye bread")

	// toggle done
	rr = app.postForm(t, "/checkOff", url.Values{
		"checkbox": {bread.ID},
		"noteId":   {note.ID},
	}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	for _, it := range app.noteItems(t, note.ID) {
		if it.ID == bread.ID {
			assert.True(t, it.Done, "checkOff should have marked the item done")
		}
	}

	// delete
	rr = app.postForm(t, "/delete", url.Values{"itemId": {bread.ID}}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, app.noteItems(t, note.ID), 1)
}

func TestEditTitle(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Old"}, "item": {"milk"}}, session)
	note := app.noteByTitle(t, "Old")

	rr := app.postForm(t, "/editTitle", url.Values{
		"updatedTitle": {"New"},
		"noteId":       {note.ID},
	}, session)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "New")

	app.noteByTitle(t, "New")
}

func TestDeleteCheckedItems(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Groceries"}, "item": {"milk", "bread"}}, session)
	note := app.noteByTitle(t, "Groceries")
	items := app.noteItems(t, note.ID)

	app.postForm(t, "/checkOff", url.Values{"checkbox": {items[0].ID}, "noteId": {note.ID}}, session)

	rr := app.postForm(t, "/deleteCheckedItems", url.Values{"noteId": {note.ID}}, session)
	assert.Equal(t, http.StatusOK, rr.Code)

	remaining := app.noteItems(t, note.ID)
	if assert.Len(t, remaining, 1) {
		assert.Equal(t, items[1].Content, remaining[0].Content)
	}
}

func TestDeleteNoteFlow(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Groceries"}, "item": {"milk"}}, session)
	note := app.noteByTitle(t, "Groceries")

	rr := app.postForm(t, "/delete-note", url.Values{"noteId": {note.ID}}, session)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/main", rr.Header().Get("Location"))

	_, err := app.db.GetNote(context.Background(), note.ID)
	assert.Error(t, err)
}

func TestSearchFlow(t *testing.T) {
	app := newTestApp(t)
	session := app.signup(t, "alice@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Groceries"}, "item": {"milk"}}, session)

	t.Run("hit renders the note", func(t *testing.T) {
		rr := app.postForm(t, "/search", url.Values{"searchTitle": {"Groceries"}}, session)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "milk")
	})

	t.Run("miss bounces to /main", func(t *testing.T) {
		rr := app.postForm(t, "/search", url.Values{"searchTitle": {"Nothing"}}, session)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/main", rr.Header().Get("Location"))
	})
}

// A second user poking at someone else's note gets a 403, never the data.
func TestCrossUserAccessForbidden(t *testing.T) {
	app := newTestApp(t)
	owner := app.signup(t, "owner@example.com", "secret123")
	app.postForm(t, "/note", url.Values{"listTitle": {"Private"}, "item": {"secret"}}, owner)
	note := app.noteByTitle(t, "Private")

	intruder := app.signup(t, "intruder@example.com", "secret123")

	rr := app.postForm(t, "/showNote", url.Values{"noteId": {note.ID}}, intruder)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")

	rr = app.postForm(t, "/delete-note", url.Values{"noteId": {note.ID}}, intruder)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The note is intact for its owner.
	rr = app.postForm(t, "/showNote", url.Values{"noteId": {note.ID}}, owner)
	assert.Equal(t, http.StatusOK, rr.Code)
}
