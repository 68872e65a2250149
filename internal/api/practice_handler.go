package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/service/practice"
)

// PracticeHandler serves practice sessions and the daily challenge to signed-in
// users and anonymous sessions alike.
type PracticeHandler struct {
	practice practice.Service
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practice practice.Service) *PracticeHandler {
	if practice == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practice cannot be nil")
	}
	return &PracticeHandler{practice: practice}
}

// CurrentQuestion handles GET /api/practice/{setID}/{discipline}, starting a
// session when none is live.
func (h *PracticeHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}

	q, err := h.practice.StartOrResume(r.Context(), actor, target.setID, target.discipline)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load question")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, q)
}

// SubmitAnswer handles POST /api/practice/{setID}/{discipline}/answer.
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := h.target(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := h.practice.SubmitAnswer(r.Context(), actor, target.setID, target.discipline,
		engine.Answer{Text: req.Answer, Choice: req.Choice})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, outcome)
}

// ChallengeStatus handles GET /api/challenge.
func (h *PracticeHandler) ChallengeStatus(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.practice.ChallengeStatus(r.Context(), actorFromRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load daily challenge")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, challenge)
}

type practiceTarget struct {
	setID      uuid.UUID
	discipline domain.Discipline
}

func (h *PracticeHandler) target(w http.ResponseWriter, r *http.Request) (domain.Actor, practiceTarget, bool) {
	actor := actorFromRequest(r)
	if !actor.Valid() {
		HandleAPIError(w, r, practice.ErrMissingActor, "")
		return domain.Actor{}, practiceTarget{}, false
	}

	setID, err := getPathUUID(r, "setID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return domain.Actor{}, practiceTarget{}, false
	}
	d, err := domain.ParseDiscipline(chi.URLParam(r, "discipline"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return domain.Actor{}, practiceTarget{}, false
	}
	return actor, practiceTarget{setID: setID, discipline: d}, true
}
