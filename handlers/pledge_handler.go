package handlers

import (
	"net/http"

	"github.com/courtclub/tournament-engine/services"
)

const maxPhotoUploadSize = 10 << 20 // 10MB

type PledgeHandler struct {
	pledgeService services.PledgeService
}

func NewPledgeHandler(pledgeService services.PledgeService) *PledgeHandler {
	return &PledgeHandler{pledgeService: pledgeService}
}

// CreatePledge godoc
// @Summary Create a pledge item
// @Description Registers a pledge item in Draft status for later approval and auction listing.
// @Tags pledges
// @Accept json
// @Produce json
// @Param input body services.CreatePledgeInput true "Pledge item"
// @Success 201 {object} models.PledgeItem
// @Failure 400 {object} map[string]string
// @Router /pledges [post]
func (h *PledgeHandler) CreatePledge(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePledgeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pledge, err := h.pledgeService.CreatePledge(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, pledge, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApprovePledge godoc
// @Summary Approve a draft pledge item
// @Tags pledges
// @Produce json
// @Param pledgeID path int true "Pledge ID"
// @Success 200 {object} models.PledgeItem
// @Failure 409 {object} map[string]string
// @Router /pledges/{pledgeID}/approve [post]
func (h *PledgeHandler) ApprovePledge(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "pledgeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pledge, err := h.pledgeService.ApprovePledge(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, pledge, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HidePledge godoc
// @Summary Hide a pledge item
// @Description Hidden items never reach the auction.
// @Tags pledges
// @Produce json
// @Param pledgeID path int true "Pledge ID"
// @Success 200 {object} models.PledgeItem
// @Failure 404 {object} map[string]string
// @Router /pledges/{pledgeID}/hide [post]
func (h *PledgeHandler) HidePledge(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "pledgeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pledge, err := h.pledgeService.HidePledge(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, pledge, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadPhoto godoc
// @Summary Upload a pledge item photo
// @Description Accepts a multipart form with a "photo" file field and stores it in object storage.
// @Tags pledges
// @Accept multipart/form-data
// @Produce json
// @Param pledgeID path int true "Pledge ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} models.PledgeItem
// @Failure 400 {object} map[string]string
// @Router /pledges/{pledgeID}/photo [post]
func (h *PledgeHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "pledgeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadSize); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	pledge, err := h.pledgeService.UploadPhoto(r.Context(), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, pledge, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
