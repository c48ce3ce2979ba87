package handlers

import (
	"net/http"

	"github.com/courtclub/tournament-engine/services"
)

type AuctionHandler struct {
	auctionService services.AuctionService
}

func NewAuctionHandler(auctionService services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

type placeBidRequest struct {
	BidderID    string `json:"bidder_id"`
	AmountCents int64  `json:"amount_cents"`
}

// StartAuction godoc
// @Summary List auction lots for a tournament
// @Description Snapshots the approved pledge items as open lots. The tournament must already be in the auction phase.
// @Tags auction
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {array} models.AuctionLot
// @Failure 409 {object} map[string]string
// @Router /tournaments/{tournamentID}/auction/start [post]
func (h *AuctionHandler) StartAuction(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lots, err := h.auctionService.StartAuction(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"lots": lots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLots godoc
// @Summary List the auction lots of a tournament
// @Tags auction
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.AuctionLot
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/auction/lots [get]
func (h *AuctionHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lots, err := h.auctionService.ListLots(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"lots": lots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlaceBid godoc
// @Summary Place a bid on an open lot
// @Description Accepts the bid if it meets the current high bid plus the minimum increment for that price band.
// @Tags auction
// @Accept json
// @Produce json
// @Param lotID path int true "Lot ID"
// @Param input body placeBidRequest true "Bidder and amount"
// @Success 201 {object} models.Bid
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /lots/{lotID}/bids [post]
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "lotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req placeBidRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bid, err := h.auctionService.PlaceBid(r.Context(), id, req.BidderID, req.AmountCents)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, bid, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SettleAuction godoc
// @Summary Settle the auction
// @Description Resolves every open lot in a single transaction, debits each winner and marks the tournament settled. All lots settle or none do.
// @Tags auction
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} services.LotSettlement
// @Failure 409 {object} map[string]string
// @Router /tournaments/{tournamentID}/auction/settle [post]
func (h *AuctionHandler) SettleAuction(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	settlements, err := h.auctionService.SettleAuction(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settlements": settlements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
