package handlers

import (
	"net/http"

	"github.com/courtclub/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// StartTournament godoc
// @Summary Start a tournament
// @Description Creates a tournament from a roster, generates every round's pairings and activates round one.
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body services.StartTournamentInput true "Roster and series index"
// @Success 201 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tournaments [post]
func (h *TournamentHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	var input services.StartTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.StartTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament godoc
// @Summary Get a tournament
// @Description Returns a tournament with its roster, rounds, matches, balances and lots.
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckAdvanceRound godoc
// @Summary Run the round advancement gate
// @Description Completes the active round if every match is resolved and activates the next one, or opens the auction after the final round. Safe to call repeatedly.
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tournaments/{tournamentID}/advance [post]
func (h *TournamentHandler) CheckAdvanceRound(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CheckAdvanceRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegenerateMatches godoc
// @Summary Regenerate the unplayed matches of a round
// @Description Voids the scheduled matches of the round and re-pairs the freed players. Played, auto-resolved and bye matches are untouched.
// @Tags rounds
// @Produce json
// @Param roundID path int true "Round ID"
// @Success 200 {array} models.Match
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /rounds/{roundID}/regenerate [post]
func (h *TournamentHandler) RegenerateMatches(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.RegenerateMatches(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerBalance godoc
// @Summary Get a player's credit balance
// @Description Returns the sum of the player's ledger entries within the tournament.
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param playerID path string true "Player ID"
// @Success 200 {object} models.Balance
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/balances/{playerID} [get]
func (h *TournamentHandler) PlayerBalance(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		badRequestResponse(w, r, errInvalidPlayerID)
		return
	}

	balance, err := h.tournamentService.PlayerBalance(r.Context(), id, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, balance, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
