package handlers

import (
	"net/http"

	"github.com/courtclub/tournament-engine/services"
)

type DemoHandler struct {
	demoService services.DemoService
}

func NewDemoHandler(demoService services.DemoService) *DemoHandler {
	return &DemoHandler{demoService: demoService}
}

// SeedDemo godoc
// @Summary Seed a demo tournament
// @Description Creates a started tournament with a synthetic roster and a handful of pledge items for client testing.
// @Tags demo
// @Accept json
// @Produce json
// @Param input body services.SeedDemoInput false "Optional roster size, series index and seed"
// @Success 201 {object} models.Tournament
// @Failure 400 {object} map[string]string
// @Router /demo/seed [post]
func (h *DemoHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	var input services.SeedDemoInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	tournament, err := h.demoService.SeedDemo(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
