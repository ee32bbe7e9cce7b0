package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/minddump/internal/server/fixtures"
	"github.com/systemshift/minddump/internal/server/store"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

// setupTestServer serves the embedded fixtures with a fixed clock.
func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	file, err := fixtures.LoadEmbedded()
	require.NoError(t, err)
	seed, err := file.Seed(testNow)
	require.NoError(t, err)
	s, err := store.New(seed, store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	srv := New(s, zerolog.Nop())
	srv.now = func() time.Time { return testNow }
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorDetail {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[ErrorBody](t, w)
	assert.Equal(t, code, body.Error.Code)
	assert.Equal(t, "2025-01-15T12:00:00Z", body.Error.Timestamp)
	assert.NotNil(t, body.Error.Details)
	return body.Error
}

func TestHealthCheck(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	root := decode[map[string]any](t, w)
	assert.Equal(t, "/api/v1", root["api_base"])
}

func TestListNotes(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[Page[NoteResponse]](t, w)
	assert.Equal(t, 19, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
	assert.Equal(t, 20, page.Pagination.Limit)
	assert.False(t, page.Pagination.HasNext)
	require.Len(t, page.Items, 19)

	// Default order is last_update descending.
	for i := 1; i < len(page.Items); i++ {
		assert.GreaterOrEqual(t, page.Items[i-1].LastUpdate, page.Items[i].LastUpdate)
	}

	w = do(t, h, http.MethodGet, "/api/v1/notes?status=archived", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[Page[NoteResponse]](t, w)
	assert.Equal(t, 2, page.Pagination.Total)
	for _, n := range page.Items {
		assert.Equal(t, StatusResponse{ID: "status-archived", Name: "archived"}, n.Status)
	}

	w = do(t, h, http.MethodGet, "/api/v1/notes?priority_min=4", "")
	page = decode[Page[NoteResponse]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Security Audit Findings", page.Items[0].Title)

	w = do(t, h, http.MethodGet, "/api/v1/notes?search=ATOMIC", "")
	page = decode[Page[NoteResponse]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, fixtures.ID("note", "atomic_habits"), page.Items[0].ID)

	w = do(t, h, http.MethodGet, "/api/v1/notes?limit=5&page=4", "")
	page = decode[Page[NoteResponse]](t, w)
	assert.Len(t, page.Items, 4)
	assert.Equal(t, 4, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasPrev)
	assert.False(t, page.Pagination.HasNext)

	w = do(t, h, http.MethodGet, "/api/v1/notes?limit=5&page=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[Page[NoteResponse]](t, w)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	w = do(t, h, http.MethodGet, "/api/v1/notes?limit=100&page=184467440737095517", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page = decode[Page[NoteResponse]](t, w)
	assert.Empty(t, page.Items)
	assert.Equal(t, 19, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
	assert.Equal(t, 184467440737095517, page.Pagination.Page)
	assert.False(t, page.Pagination.HasNext)
}

func TestListNotesInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		path string
		code string
	}{
		{"limit above max", "/api/v1/notes?limit=101", "INVALID_LIMIT"},
		{"zero limit", "/api/v1/notes?limit=0", "INVALID_LIMIT"},
		{"zero page", "/api/v1/notes?page=0", "INVALID_PAGE"},
		{"non numeric page", "/api/v1/notes?page=two", "INVALID_REQUEST"},
		{"unknown sort", "/api/v1/notes?sort_by=color", "INVALID_SORT"},
		{"unknown order", "/api/v1/notes?order=sideways", "INVALID_ORDER"},
		{"unknown status", "/api/v1/notes?status=pending", "INVALID_STATUS"},
	}

	h := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, "")
			requireError(t, w, http.StatusBadRequest, tt.code)
		})
	}
}

func TestCreateNote(t *testing.T) {
	h := setupTestServer(t)

	body := `{
		"title": "Standup",
		"original_text": "three quick updates today",
		"priority": 9,
		"concept_ids": ["` + fixtures.ID("concept", "productivity") + `"],
		"purpose_ids": [{"purpose_id": "purpose-work", "weight": 7}]
	}`
	w := do(t, h, http.MethodPost, "/api/v1/notes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode[NoteResponse](t, w)

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "user-1", note.UserID)
	assert.Equal(t, 4, note.Priority)
	assert.Equal(t, 4, note.WordCount)
	assert.Equal(t, "en", note.Language)
	assert.Equal(t, "active", note.Status.Name)
	assert.Nil(t, note.LastOpen)
	assert.Equal(t, "2025-01-15T12:00:00Z", note.CreationDate)
	require.Len(t, note.Concepts, 1)
	assert.Equal(t, "Productivity", note.Concepts[0].ConceptText)
	require.Len(t, note.Purposes, 1)
	assert.Equal(t, PurposeResponse{ID: "purpose-work", Name: "work", Description: "Work-related notes", Weight: 7}, note.Purposes[0])

	w = do(t, h, http.MethodGet, "/api/v1/notes?limit=1", "")
	page := decode[Page[NoteResponse]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, note.ID, page.Items[0].ID)
	assert.Equal(t, 20, page.Pagination.Total)
}

func TestCreateNoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{invalid`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty body", ``, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing title", `{"original_text":"x"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad status", `{"title":"a","original_text":"b","status_id":"status-gone"}`, http.StatusBadRequest, "INVALID_STATUS"},
		{"bad purpose", `{"title":"a","original_text":"b","purpose_ids":[{"purpose_id":"hobby","weight":1}]}`, http.StatusBadRequest, "INVALID_PURPOSE"},
		{"unknown concept", `{"title":"a","original_text":"b","concept_ids":["nope"]}`, http.StatusNotFound, "CONCEPT_NOT_FOUND"},
	}

	h := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/notes", tt.body)
			requireError(t, w, tt.status, tt.code)
		})
	}

	w := do(t, h, http.MethodGet, "/api/v1/notes", "")
	assert.Equal(t, 19, decode[Page[NoteResponse]](t, w).Pagination.Total)
}

func TestNoteLifecycle(t *testing.T) {
	h := setupTestServer(t)
	id := fixtures.ID("note", "budget_q4")

	w := do(t, h, http.MethodGet, "/api/v1/notes/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	note := decode[NoteResponse](t, w)
	require.NotNil(t, note.LastOpen)
	assert.Equal(t, "2025-01-15T12:00:00Z", *note.LastOpen)

	w = do(t, h, http.MethodPut, "/api/v1/notes/"+id, `{"title":"Budget Review","status_id":"archived"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	note = decode[NoteResponse](t, w)
	assert.Equal(t, "Budget Review", note.Title)
	assert.Equal(t, "archived", note.Status.Name)
	assert.Equal(t, 1, note.Priority)

	w = do(t, h, http.MethodDelete, "/api/v1/notes/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/notes/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	note = decode[NoteResponse](t, w)
	assert.Equal(t, StatusResponse{ID: "status-deleted", Name: "deleted"}, note.Status)
	assert.Equal(t, "Budget Review", note.Title)

	w = do(t, h, http.MethodGet, "/api/v1/notes/missing", "")
	detail := requireError(t, w, http.StatusNotFound, "NOTE_NOT_FOUND")
	assert.Equal(t, "missing", detail.Details["note_id"])

	w = do(t, h, http.MethodDelete, "/api/v1/notes/missing", "")
	requireError(t, w, http.StatusNotFound, "NOTE_NOT_FOUND")
}

func TestPrioritizeNote(t *testing.T) {
	h := setupTestServer(t)
	id := fixtures.ID("note", "auth_review")

	w := do(t, h, http.MethodPost, "/api/v1/notes/"+id+"/prioritize", `{"action":"set","value":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[PrioritizeResponse](t, w)
	assert.Equal(t, PrioritizeResponse{ID: id, Priority: 4, PreviousPriority: 2, LastUpdate: "2025-01-15T12:00:00Z"}, res)

	w = do(t, h, http.MethodPost, "/api/v1/notes/"+id+"/prioritize", `{"action":"decrease"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[PrioritizeResponse](t, w)
	assert.Equal(t, 3, res.Priority)
	assert.Equal(t, 4, res.PreviousPriority)

	w = do(t, h, http.MethodPost, "/api/v1/notes/"+id+"/prioritize", `{"action":"increase","value":9223372036854775807}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[PrioritizeResponse](t, w)
	assert.Equal(t, 4, res.Priority)
	assert.Equal(t, 3, res.PreviousPriority)

	w = do(t, h, http.MethodPost, "/api/v1/notes/"+id+"/prioritize", `{"action":"double"}`)
	requireError(t, w, http.StatusBadRequest, "INVALID_ACTION")

	w = do(t, h, http.MethodPost, "/api/v1/notes/missing/prioritize", `{"action":"increase"}`)
	requireError(t, w, http.StatusNotFound, "NOTE_NOT_FOUND")
}

func TestFolders(t *testing.T) {
	h := setupTestServer(t)
	work := fixtures.ID("folder", "work")
	meetings := fixtures.ID("folder", "meetings")

	w := do(t, h, http.MethodGet, "/api/v1/folders", "")
	require.Equal(t, http.StatusOK, w.Code)
	roots := decode[Page[FolderResponse]](t, w)
	assert.Equal(t, 4, roots.Pagination.Total)
	for _, f := range roots.Items {
		assert.Nil(t, f.ParentFolderID)
		assert.Equal(t, 1, f.CategoryLevel)
	}

	w = do(t, h, http.MethodGet, "/api/v1/folders?parent_id="+work, "")
	children := decode[Page[FolderResponse]](t, w)
	assert.Equal(t, 2, children.Pagination.Total)

	w = do(t, h, http.MethodGet, "/api/v1/folders/"+work, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[FolderResponse](t, w)
	assert.Equal(t, 2, detail.ChildrenCount)
	assert.Len(t, detail.Children, 2)
	require.NotNil(t, detail.NotesCount)
	assert.Equal(t, 0, *detail.NotesCount)

	w = do(t, h, http.MethodGet, "/api/v1/folders/"+meetings, "")
	detail = decode[FolderResponse](t, w)
	require.NotNil(t, detail.NotesCount)
	assert.Equal(t, 3, *detail.NotesCount)
	assert.Equal(t, 2, detail.CategoryLevel)

	w = do(t, h, http.MethodDelete, "/api/v1/folders/"+work, "")
	errDetail := requireError(t, w, http.StatusConflict, "FOLDER_NOT_EMPTY")
	assert.EqualValues(t, 2, errDetail.Details["children_count"])

	w = do(t, h, http.MethodPut, "/api/v1/folders/"+work, `{"parent_folder_id":"`+work+`"}`)
	requireError(t, w, http.StatusBadRequest, "CIRCULAR_REFERENCE")

	w = do(t, h, http.MethodGet, "/api/v1/folders/missing", "")
	requireError(t, w, http.StatusNotFound, "FOLDER_NOT_FOUND")
}

func TestFolderCreateAndTree(t *testing.T) {
	h := setupTestServer(t)
	projects := fixtures.ID("folder", "projects")
	concept := fixtures.ID("concept", "mobile_apps")

	w := do(t, h, http.MethodPost, "/api/v1/folders",
		`{"parent_folder_id":"`+projects+`","concept_id":"`+concept+`","category_level":9}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[FolderResponse](t, w)
	assert.Equal(t, 3, created.CategoryLevel)
	assert.Equal(t, "Mobile Apps", created.Concept.ConceptText)
	require.NotNil(t, created.ParentFolderID)
	assert.Equal(t, projects, *created.ParentFolderID)

	w = do(t, h, http.MethodGet, "/api/v1/folders/"+projects, "")
	assert.Equal(t, 1, decode[FolderResponse](t, w).ChildrenCount)

	w = do(t, h, http.MethodGet, "/api/v1/folders/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[FolderTreeResponse](t, w)
	require.Len(t, tree.Folders, 4)
	work := tree.Folders[0]
	assert.Equal(t, fixtures.ID("folder", "work"), work.ID)
	require.Len(t, work.Children, 2)
	assert.Equal(t, projects, work.Children[0].ID)
	require.Len(t, work.Children[0].Children, 1)
	assert.Equal(t, created.ID, work.Children[0].Children[0].ID)

	w = do(t, h, http.MethodPost, "/api/v1/folders", `{"parent_folder_id":"nope","concept_id":"`+concept+`"}`)
	requireError(t, w, http.StatusNotFound, "FOLDER_NOT_FOUND")

	w = do(t, h, http.MethodPost, "/api/v1/folders", `{}`)
	requireError(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestConcepts(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/concepts", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[Page[ConceptResponse]](t, w)
	assert.Equal(t, 12, page.Pagination.Total)
	assert.Equal(t, 50, page.Pagination.Limit)
	assert.Equal(t, "Software Development", page.Items[0].ConceptText)
	assert.Nil(t, page.Items[0].RelatedNotes)

	w = do(t, h, http.MethodGet, "/api/v1/concepts?min_weight=0.8", "")
	page = decode[Page[ConceptResponse]](t, w)
	assert.Equal(t, 4, page.Pagination.Total)

	w = do(t, h, http.MethodGet, "/api/v1/concepts?limit=201", "")
	requireError(t, w, http.StatusBadRequest, "INVALID_LIMIT")

	w = do(t, h, http.MethodGet, "/api/v1/concepts/"+fixtures.ID("concept", "travel"), "")
	require.Equal(t, http.StatusOK, w.Code)
	concept := decode[ConceptResponse](t, w)
	assert.Equal(t, "travel", concept.NormalizedName)
	require.NotNil(t, concept.RelatedNotes)
	require.Len(t, *concept.RelatedNotes, 1)
	assert.Equal(t, "Travel Planning: Japan 2025", (*concept.RelatedNotes)[0].Title)

	w = do(t, h, http.MethodGet, "/api/v1/concepts/missing", "")
	requireError(t, w, http.StatusNotFound, "CONCEPT_NOT_FOUND")
}

func TestSettingsLifecycle(t *testing.T) {
	h := setupTestServer(t)
	const path = "/api/v1/users/me/settings"

	w := do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[SettingsResponse](t, w)
	assert.Equal(t, "en", st.Language)
	assert.True(t, st.AutoStructureNote)

	w = do(t, h, http.MethodPost, path, `{"language":"fr"}`)
	requireError(t, w, http.StatusConflict, "SETTINGS_ALREADY_EXIST")

	w = do(t, h, http.MethodPut, path, `{"auto_structure_note":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[SettingsResponse](t, w)
	assert.Equal(t, "en", st.Language)
	assert.False(t, st.AutoStructureNote)
	assert.Equal(t, "2025-01-15T12:00:00Z", st.LastUpdate)

	w = do(t, h, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, path, "")
	requireError(t, w, http.StatusNotFound, "SETTINGS_NOT_FOUND")
	w = do(t, h, http.MethodPut, path, `{"language":"de"}`)
	requireError(t, w, http.StatusNotFound, "SETTINGS_NOT_FOUND")
	w = do(t, h, http.MethodDelete, path, "")
	requireError(t, w, http.StatusNotFound, "SETTINGS_NOT_FOUND")

	w = do(t, h, http.MethodPost, path, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	st = decode[SettingsResponse](t, w)
	assert.Equal(t, "en", st.Language)
	assert.True(t, st.AutoStructureNote)
}

func TestUnknownRoute(t *testing.T) {
	h := setupTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/tags", "")
	requireError(t, w, http.StatusNotFound, "ROUTE_NOT_FOUND")
}

func TestPanicsUseErrorBody(t *testing.T) {
	s, err := store.New(store.Seed{})
	require.NoError(t, err)
	srv := New(s, zerolog.Nop())
	srv.now = func() time.Time { return testNow }

	h := srv.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/api/v1/notes", "")
	detail := requireError(t, w, http.StatusInternalServerError, "INTERNAL_ERROR")
	assert.Equal(t, "Internal server error", detail.Message)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
