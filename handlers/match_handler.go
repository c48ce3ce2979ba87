package handlers

import (
	"net/http"

	"github.com/courtclub/tournament-engine/models"
	"github.com/courtclub/tournament-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type reportResultRequest struct {
	Sets models.SetScores `json:"sets"`
}

type autoResolveRequest struct {
	WinnerID *string `json:"winner_id,omitempty"`
}

// ReportResult godoc
// @Summary Report a match result
// @Description Records the set scores of a scheduled match and credits each player per set won.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body reportResultRequest true "Set scores"
// @Success 200 {object} services.MatchResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req reportResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.ReportResult(r.Context(), id, req.Sets)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutoResolve godoc
// @Summary Auto-resolve an abandoned match
// @Description Marks a scheduled match auto-resolved, optionally crediting a designated winner.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body autoResolveRequest false "Optional designated winner"
// @Success 200 {object} services.MatchResult
// @Failure 409 {object} map[string]string
// @Router /matches/{matchID}/auto-resolve [post]
func (h *MatchHandler) AutoResolve(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req autoResolveRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.matchService.AutoResolveMatch(r.Context(), id, req.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverrideResult godoc
// @Summary Correct a reported match result
// @Description Reverses the ledger effect of the prior result with compensating entries and applies the corrected set scores. Requires the admin key.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body reportResultRequest true "Corrected set scores"
// @Success 200 {object} services.MatchResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches/{matchID}/override [post]
func (h *MatchHandler) OverrideResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req reportResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.OverrideResult(r.Context(), id, req.Sets)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
