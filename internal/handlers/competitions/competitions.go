// Package competitions implements the competition management and leaderboard
// handlers.
package competitions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lildude/competitions/internal/calendarevent"
	"github.com/lildude/competitions/internal/competition"
	"github.com/lildude/competitions/internal/handlers/respond"
	"github.com/lildude/competitions/internal/middleware"
	"github.com/lildude/competitions/internal/scoring"
	"github.com/sirupsen/logrus"
)

type Store interface {
	CreateCompetition(ctx context.Context, c *competition.Competition) (*competition.Competition, error)
	GetCompetition(ctx context.Context, id string) (*competition.Competition, error)
	ListCompetitions(ctx context.Context, userID string) ([]competition.Competition, error)
	UpdateCompetition(ctx context.Context, userID string, c *competition.Competition) (*competition.Competition, error)
	StartCompetition(ctx context.Context, id, userID string, now time.Time) (*competition.Competition, error)
	DeleteCompetition(ctx context.Context, id, userID string) error
	ListParticipants(ctx context.Context, competitionID string) ([]competition.Participant, error)
	Invite(ctx context.Context, competitionID, ownerID, userID string) (*competition.Participant, error)
	RespondToInvite(ctx context.Context, competitionID, userID string, status competition.InviteStatus) (*competition.Participant, error)
}

type Scorer interface {
	Score(ctx context.Context, c *competition.Competition, participants []competition.Participant) (map[string]scoring.Result, error)
}

type EventFinder interface {
	NextEvent(ctx context.Context, feedURL string, from time.Time, match string) (*calendarevent.Event, error)
}

type Handler struct {
	Store    Store
	Scorer   Scorer
	Calendar EventFinder
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewHandler(store Store, scorer Scorer, calendar EventFinder, log logrus.FieldLogger) *Handler {
	return &Handler{Store: store, Scorer: scorer, Calendar: calendar, Log: log, Now: time.Now}
}

// Register adds the competition routes to r. Callers are expected to have
// authenticated the user.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/competitions", h.list).Methods(http.MethodGet)
	r.HandleFunc("/competitions", h.create).Methods(http.MethodPost)
	r.HandleFunc("/competitions/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/competitions/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/competitions/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/competitions/{id}/start", h.start).Methods(http.MethodPost)
	r.HandleFunc("/competitions/{id}/invites", h.invite).Methods(http.MethodPost)
	r.HandleFunc("/competitions/{id}/invites", h.answer).Methods(http.MethodPut)
	r.HandleFunc("/competitions/{id}/scores", h.scores).Methods(http.MethodGet)
}

type competitionRequest struct {
	Name          string              `json:"name"`
	Type          competition.Type    `json:"type"`
	StartDate     *time.Time          `json:"start_date"`
	EndDate       *time.Time          `json:"end_date"`
	ActivityTypes []string            `json:"activity_types"`
	Options       competition.Options `json:"options"`
	CalendarURL   string              `json:"calendar_url"`
}

type competitionResponse struct {
	*competition.Competition
	Status competition.Status `json:"status"`
}

type scoresResponse struct {
	CompetitionID string                    `json:"competition_id"`
	Status        competition.Status        `json:"status"`
	Results       map[string]scoring.Result `json:"results"`
	GoalReached   []string                  `json:"goal_reached,omitempty"`
}

func (h *Handler) withStatus(c *competition.Competition) competitionResponse {
	return competitionResponse{Competition: c, Status: c.Status(h.Now())}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	cs, err := h.Store.ListCompetitions(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	out := make([]competitionResponse, 0, len(cs))
	for i := range cs {
		out = append(out, h.withStatus(&cs[i]))
	}
	respond.JSON(w, h.Log, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	c := req.toCompetition()
	c.OwnerID = middleware.UserID(r.Context())

	if req.CalendarURL != "" && c.StartDate == nil && c.EndDate == nil {
		if h.Calendar == nil {
			respond.BadRequest(w, h.Log, "calendar_url is not supported")
			return
		}
		event, err := h.Calendar.NextEvent(r.Context(), req.CalendarURL, h.Now(), c.Name)
		if err != nil {
			h.Log.WithError(err).WithField("calendar_url", req.CalendarURL).Info("no calendar event for competition")
			respond.BadRequest(w, h.Log, "calendar_url: "+err.Error())
			return
		}
		c.StartDate, c.EndDate = &event.Start, &event.End
		if c.Name == "" {
			c.Name = event.Summary
		}
	}

	if err := competition.Validate(c); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	created, err := h.Store.CreateCompetition(r.Context(), c)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Log.WithFields(logrus.Fields{"competition_id": created.ID, "type": created.Type}).Info("competition created")
	respond.JSON(w, h.Log, http.StatusCreated, h.withStatus(created))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.load(w, r)
	if !ok {
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, h.withStatus(c))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	userID := middleware.UserID(r.Context())
	c := req.toCompetition()
	c.ID = mux.Vars(r)["id"]
	c.OwnerID = userID
	if err := competition.Validate(c); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	updated, err := h.Store.UpdateCompetition(r.Context(), userID, c)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, h.withStatus(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Store.DeleteCompetition(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Log.WithField("competition_id", id).Info("competition deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.StartCompetition(r.Context(), mux.Vars(r)["id"], middleware.UserID(r.Context()), h.Now())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, h.withStatus(c))
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		respond.BadRequest(w, h.Log, "user_id is required")
		return
	}

	p, err := h.Store.Invite(r.Context(), mux.Vars(r)["id"], middleware.UserID(r.Context()), body.UserID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, h.Log, http.StatusCreated, p)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InviteStatus competition.InviteStatus `json:"invite_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, h.Log, "invalid request body")
		return
	}

	p, err := h.Store.RespondToInvite(r.Context(), mux.Vars(r)["id"], middleware.UserID(r.Context()), body.InviteStatus)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, h.Log, http.StatusOK, p)
}

func (h *Handler) scores(w http.ResponseWriter, r *http.Request) {
	c, participants, ok := h.load(w, r)
	if !ok {
		return
	}

	results, err := h.Scorer.Score(r.Context(), c, participants)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, h.Log, http.StatusOK, scoresResponse{
		CompetitionID: c.ID,
		Status:        c.Status(h.Now()),
		Results:       results,
		GoalReached:   scoring.GoalReached(c, results),
	})
}

// load fetches the competition named in the route and checks the caller may
// see it: the owner and anyone invited who has not declined.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*competition.Competition, []competition.Participant, bool) {
	id := mux.Vars(r)["id"]
	c, err := h.Store.GetCompetition(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return nil, nil, false
	}
	participants, err := h.Store.ListParticipants(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return nil, nil, false
	}

	userID := middleware.UserID(r.Context())
	if !visible(c, participants, userID) {
		respond.Error(w, h.Log, &competition.AuthorizationError{UserID: userID, Action: "view competition " + id})
		return nil, nil, false
	}
	return c, participants, true
}

func visible(c *competition.Competition, participants []competition.Participant, userID string) bool {
	if c.OwnerID == userID {
		return true
	}
	for _, p := range participants {
		if p.UserID == userID && p.InviteStatus != competition.Declined {
			return true
		}
	}
	return false
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*competitionRequest, bool) {
	var req competitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var syntaxErr *json.SyntaxError
		msg := "invalid request body"
		if errors.As(err, &syntaxErr) {
			msg = "malformed JSON"
		}
		respond.BadRequest(w, h.Log, msg)
		return nil, false
	}
	return &req, true
}

func (req *competitionRequest) toCompetition() *competition.Competition {
	return &competition.Competition{
		Name:          req.Name,
		Type:          req.Type,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ActivityTypes: req.ActivityTypes,
		Options:       req.Options,
	}
}
