package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/mocks"
	"github.com/phrazzld/studyace/internal/platform/memory"
	"github.com/phrazzld/studyace/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func capitalsRequest(title string, public bool) SetRequest {
	req := SetRequest{Title: title, IsPublic: public}
	for _, c := range capitals {
		req.Cards = append(req.Cards, CardRequest{Term: c.Term, Definition: c.Definition, Tags: c.Tags})
	}
	return req
}

func TestCreateSet(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	t.Run("created", func(t *testing.T) {
		req := capitalsRequest("Capitals", false)
		req.Cards = append(req.Cards, CardRequest{Term: "Peru"})

		w := a.do(t, request{method: http.MethodPost, path: "/api/sets", body: req, userID: user.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		set := decodeBody[SetResponse](t, w)
		assert.Equal(t, "Capitals", set.Title)
		assert.Equal(t, user.ID, set.UserID)
		require.Len(t, set.Cards, 3, "incomplete rows are dropped")
		assert.Equal(t, []string{"europe", "iberia"}, set.Cards[2].Tags)
	})

	t.Run("too few complete cards", func(t *testing.T) {
		req := SetRequest{Title: "Tiny", Cards: []CardRequest{
			{Term: "a", Definition: "b"},
			{Term: "c"},
		}}
		w := a.do(t, request{method: http.MethodPost, path: "/api/sets", body: req, userID: user.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "A set needs at least 2 cards with both a term and a definition",
			decodeBody[shared.ErrorResponse](t, w).Error)
	})

	t.Run("missing title", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodPost, path: "/api/sets", body: capitalsRequest("", false), userID: user.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid Title: required field", decodeBody[shared.ErrorResponse](t, w).Error)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodPost, path: "/api/sets", body: capitalsRequest("Capitals", false)})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListSets(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")
	a.createSet(t, user.ID, "World capitals", false, capitals...)

	w := a.do(t, request{method: http.MethodGet, path: "/api/sets", userID: user.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]SetSummaryResponse](t, w), 2, "default set plus one")

	w = a.do(t, request{method: http.MethodGet, path: "/api/sets?q=capital", userID: user.ID})
	require.Equal(t, http.StatusOK, w.Code)
	sets := decodeBody[[]SetSummaryResponse](t, w)
	require.Len(t, sets, 2)
	assert.Equal(t, "World capitals", sets[0].Title)
	assert.Equal(t, 3, sets[0].CardCount)
}

func TestGetSet_Visibility(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	owner := a.register(t, "ada")
	other := a.register(t, "grace")
	private := a.createSet(t, owner.ID, "Private", false, capitals...)
	public := a.createSet(t, owner.ID, "Public", true, capitals...)

	tests := []struct {
		name       string
		setID      uuid.UUID
		viewer     uuid.UUID
		wantStatus int
	}{
		{"owner reads private", private.ID, owner.ID, http.StatusOK},
		{"other user cannot see private", private.ID, other.ID, http.StatusNotFound},
		{"anonymous cannot see private", private.ID, uuid.Nil, http.StatusNotFound},
		{"anonymous reads public", public.ID, uuid.Nil, http.StatusOK},
		{"unknown set", uuid.New(), owner.ID, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, request{method: http.MethodGet, path: "/api/sets/" + tt.setID.String(), userID: tt.viewer})
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	w := a.do(t, request{method: http.MethodGet, path: "/api/sets/not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID", decodeBody[shared.ErrorResponse](t, w).Error)
}

func TestUpdateAndDeleteSet(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	owner := a.register(t, "ada")
	other := a.register(t, "grace")
	set := a.createSet(t, owner.ID, "Capitals", true, capitals...)
	path := "/api/sets/" + set.ID.String()

	req := capitalsRequest("Capitals of the world", false)
	w := a.do(t, request{method: http.MethodPut, path: path, body: req, userID: other.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, request{method: http.MethodPut, path: path, body: req, userID: owner.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[SetResponse](t, w)
	assert.Equal(t, "Capitals of the world", updated.Title)
	assert.False(t, updated.IsPublic)

	// Now private, so the other user cannot tell it exists.
	w = a.do(t, request{method: http.MethodDelete, path: path, userID: other.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, request{method: http.MethodDelete, path: path, userID: owner.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := a.sets.GetByID(context.Background(), set.ID)
	assert.Error(t, err)
}

func TestDeleteSet_DefaultProtected(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	sets, err := a.sets.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.True(t, sets[0].IsDefault)

	w := a.do(t, request{method: http.MethodDelete, path: "/api/sets/" + sets[0].ID.String(), userID: user.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "The default set cannot be deleted", decodeBody[shared.ErrorResponse](t, w).Error)
}

func TestSearchAndTags(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")
	set := a.createSet(t, user.ID, "Capitals", true, capitals...)
	base := "/api/sets/" + set.ID.String()

	w := a.do(t, request{method: http.MethodGet, path: base + "/search?q=TOK"})
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeBody[CardsResponse](t, w).Cards
	require.Len(t, found, 1)
	assert.Equal(t, "Japan", found[0].Term)

	w = a.do(t, request{method: http.MethodGet, path: base + "/tags"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"asia", "europe", "iberia"}, decodeBody[TagsResponse](t, w).Tags)

	w = a.do(t, request{method: http.MethodGet, path: base + "/tags?tag=europe"})
	require.Equal(t, http.StatusOK, w.Code)
	tagged := decodeBody[CardsResponse](t, w).Cards
	require.Len(t, tagged, 2)
	assert.Equal(t, "France", tagged[0].Term)
	assert.Equal(t, "Spain", tagged[1].Term)
}

func multipartImport(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportSet(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	tests := []struct {
		name       string
		fields     map[string]string
		filename   string
		content    string
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "csv by extension",
			fields:     map[string]string{"title": "Capitals"},
			filename:   "deck.csv",
			content:    "Term,Definition\nFrance,Paris\nJapan,Tokyo\n",
			wantStatus: http.StatusCreated,
			wantTitle:  "Capitals",
		},
		{
			name:       "json title from file",
			fields:     map[string]string{"format": "json"},
			filename:   "upload",
			content:    `{"title":"Rivers","cards":[{"term":"Nile","definition":"Africa"},{"term":"Amazon","definition":"South America"}]}`,
			wantStatus: http.StatusCreated,
			wantTitle:  "Rivers",
		},
		{
			name:       "unknown format",
			fields:     map[string]string{"title": "X"},
			filename:   "deck.xlsx",
			content:    "whatever",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed csv",
			fields:     map[string]string{"title": "X"},
			filename:   "deck.csv",
			content:    "Front,Back\na,b\n",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no file",
			fields:     map[string]string{"title": "X"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartImport(t, tt.fields, tt.filename, tt.content)
			w := a.do(t, request{
				method: http.MethodPost,
				path:   "/api/sets/import",
				raw:    body,
				header: http.Header{"Content-Type": {contentType}},
				userID: user.ID,
			})
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, tt.wantTitle, decodeBody[SetResponse](t, w).Title)
			}
		})
	}
}

func TestExportSet(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	owner := a.register(t, "ada")
	other := a.register(t, "grace")
	set := a.createSet(t, owner.ID, "World capitals!", true, capitals[:2]...)
	path := "/api/sets/" + set.ID.String() + "/export"

	w := a.do(t, request{method: http.MethodGet, path: path + "?format=csv", userID: owner.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="World_capitals.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Term,Definition,Tags\nFrance,Paris,europe\nJapan,Tokyo,asia\n", w.Body.String())

	w = a.do(t, request{method: http.MethodGet, path: path, userID: owner.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = a.do(t, request{method: http.MethodGet, path: path, userID: other.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, request{method: http.MethodGet, path: path + "?format=pdf", userID: owner.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetHandler_StoreFailureIsOpaque(t *testing.T) {
	t.Parallel()

	failing := new(mocks.MockSetStore)
	failing.On("ListByUser", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	db := memory.NewDB()
	users := memory.NewUserStore(db, 4)
	svc, err := service.NewSetService(failing, memory.NewTransactor(db, users, failing), nil)
	require.NoError(t, err)

	a := newTestAPI(t, func(o *apiOptions) { o.sets = svc })
	w := a.do(t, request{method: http.MethodGet, path: "/api/sets", userID: uuid.New()})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeBody[shared.ErrorResponse](t, w)
	assert.Equal(t, "Failed to list sets", resp.Error)
	assert.NotEmpty(t, resp.TraceID)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	failing.AssertExpectations(t)
}

func TestExportFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Python_default", exportFilename(domain.DefaultSetTitle))
	assert.Equal(t, "flashcards", exportFilename("!!!"))
}
