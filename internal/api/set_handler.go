package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/interchange"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/service"
)

// maxImportBytes bounds an uploaded deck file.
const maxImportBytes = 5 << 20

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SetHandler handles flashcard set requests.
type SetHandler struct {
	sets service.SetService
}

// NewSetHandler creates a new SetHandler.
func NewSetHandler(sets service.SetService) *SetHandler {
	if sets == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sets cannot be nil")
	}
	return &SetHandler{sets: sets}
}

// ListSets handles GET /api/sets?q=.
func (h *SetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	sets, err := h.sets.ListSets(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sets")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, setsToSummaries(sets))
}

// CreateSet handles POST /api/sets.
func (h *SetHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}
	var req SetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.sets.CreateSet(r.Context(), userID, service.CreateSetParams{
		Title:    req.Title,
		IsPublic: req.IsPublic,
		Cards:    cardInputs(req.Cards),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, setToResponse(set))
}

// ImportSet handles POST /api/sets/import, a multipart upload with a "file"
// part and optional "format" and "title" fields. Without a format the file
// extension decides.
func (h *SetHandler) ImportSet(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "A deck file is required", err)
		return
	}
	defer func() { _ = file.Close() }()

	formatName := r.FormValue("format")
	if formatName == "" {
		formatName = filepath.Ext(header.Filename)
	}
	format, err := interchange.ParseFormat(formatName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.sets.ImportSet(r.Context(), userID, r.FormValue("title"), format, file)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import set")
		return
	}

	logger.FromContext(r.Context()).Info("set imported",
		slog.String("set_id", set.ID.String()),
		slog.String("format", string(format)),
		slog.Int("card_count", len(set.Cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, setToResponse(set))
}

// GetSet handles GET /api/sets/{id}.
func (h *SetHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	setID, ok := h.pathSetID(w, r)
	if !ok {
		return
	}
	viewer, _ := getUserIDFromContext(r)

	set, err := h.sets.GetSet(r.Context(), viewer, setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, setToResponse(set))
}

// UpdateSet handles PUT /api/sets/{id}, replacing title, visibility and cards.
func (h *SetHandler) UpdateSet(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req SetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	isPublic := req.IsPublic
	set, err := h.sets.UpdateSet(r.Context(), userID, setID, service.UpdateSetParams{
		Title:    req.Title,
		IsPublic: &isPublic,
		Cards:    cardInputs(req.Cards),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, setToResponse(set))
}

// DeleteSet handles DELETE /api/sets/{id}.
func (h *SetHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sets.DeleteSet(r.Context(), userID, setID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchCards handles GET /api/sets/{id}/search?q=.
func (h *SetHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	setID, ok := h.pathSetID(w, r)
	if !ok {
		return
	}
	viewer, _ := getUserIDFromContext(r)

	cards, err := h.sets.SearchCards(r.Context(), viewer, setID, r.URL.Query().Get("q"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{Cards: cardsToResponse(cards)})
}

// Tags handles GET /api/sets/{id}/tags. With ?tag= it returns the cards
// carrying that tag instead of the tag list.
func (h *SetHandler) Tags(w http.ResponseWriter, r *http.Request) {
	setID, ok := h.pathSetID(w, r)
	if !ok {
		return
	}
	viewer, _ := getUserIDFromContext(r)

	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		cards, err := h.sets.CardsByTag(r.Context(), viewer, setID, tag)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to list tagged cards")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{Cards: cardsToResponse(cards)})
		return
	}

	tags, err := h.sets.Tags(r.Context(), viewer, setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}
	if tags == nil {
		tags = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TagsResponse{Tags: tags})
}

// ExportSet handles GET /api/sets/{id}/export?format=json|csv and streams the
// deck as a download.
func (h *SetHandler) ExportSet(w http.ResponseWriter, r *http.Request) {
	userID, setID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = string(interchange.FormatJSON)
	}
	format, err := interchange.ParseFormat(formatName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Buffer so that a failure can still produce a JSON error response.
	var buf bytes.Buffer
	set, err := h.sets.ExportSet(r.Context(), userID, setID, format, &buf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export set")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.%s"`, exportFilename(set.Title), format))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write export",
			slog.String("error", err.Error()))
	}
}

func (h *SetHandler) pathSetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	setID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return setID, true
}

// exportFilename turns a set title into a safe download name.
func exportFilename(title string) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(title, "_"), "_")
	if name == "" {
		return "flashcards"
	}
	return name
}
