package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/coinfolio/internal/clients/coingecko"
	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
)

var validChartDays = map[string]bool{
	"1": true, "7": true, "30": true, "90": true, "365": true, "max": true,
}

// Handler serves the REST API over the portfolio service and market client.
type Handler struct {
	portfolio interfaces.PortfolioService
	market    interfaces.MarketDataClient
	logger    *common.Logger
}

// NewHandler creates the REST handler.
func NewHandler(portfolio interfaces.PortfolioService, market interfaces.MarketDataClient, logger *common.Logger) *Handler {
	return &Handler{portfolio: portfolio, market: market, logger: logger}
}

// statusForMarketError maps a classified market-data error to an HTTP status.
func statusForMarketError(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case coingecko.IsRateLimited(err):
		return http.StatusTooManyRequests
	case coingecko.IsNotFound(err):
		return http.StatusNotFound
	case coingecko.IsNetworkUnavailable(err), coingecko.IsInvalidResponse(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeMarketError(w http.ResponseWriter, err error) {
	h.logger.Error().Err(err).Msg("Market data request failed")
	WriteError(w, statusForMarketError(err), err.Error())
}

// handleListCoins serves GET /api/coins
func (h *Handler) handleListCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := h.market.ListCoins(r.Context())
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, coins)
}

// handleGetMarkets serves GET /api/coins/markets
func (h *Handler) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	coins, err := h.market.GetMarkets(r.Context(), q.Get("vs_currency"), page, perPage, q.Get("order"))
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, coins)
}

// handleGetCoinDetail serves GET /api/coins/{id}
func (h *Handler) handleGetCoinDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail, err := h.market.GetCoinDetail(r.Context(), id)
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// handleGetMarketChart serves GET /api/coins/{id}/chart
func (h *Handler) handleGetMarketChart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()

	days := q.Get("days")
	if days == "" {
		days = "7"
	}
	if !validChartDays[days] {
		WriteError(w, http.StatusBadRequest, "days must be one of 1, 7, 30, 90, 365, max")
		return
	}

	chart, err := h.market.GetMarketChart(r.Context(), id, days, q.Get("vs_currency"))
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, chart)
}

// handleGetPrices serves GET /api/prices?ids=a,b&vs_currencies=usd
func (h *Handler) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ids := splitCSV(q.Get("ids"))
	if len(ids) == 0 {
		WriteError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}
	currencies := splitCSV(q.Get("vs_currencies"))

	prices, err := h.market.GetSimplePrices(r.Context(), ids, currencies)
	if err != nil {
		h.writeMarketError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, prices)
}

// handleListHoldings serves GET /api/portfolio
func (h *Handler) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.portfolio.List(r.Context()))
}

// handleGetHolding serves GET /api/portfolio/{id}
func (h *Handler) handleGetHolding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	holding, ok := h.portfolio.Get(r.Context(), id)
	if !ok {
		WriteError(w, http.StatusNotFound, "Holding not found")
		return
	}
	WriteJSON(w, http.StatusOK, holding)
}

// handleAddHolding serves POST /api/portfolio
func (h *Handler) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var holding models.Holding
	if !DecodeJSON(w, r, &holding) {
		return
	}

	created, err := h.portfolio.Add(r.Context(), holding)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// handleUpdateHolding serves PATCH /api/portfolio/{id}
func (h *Handler) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var update models.HoldingUpdate
	if !DecodeJSON(w, r, &update) {
		return
	}

	updated, err := h.portfolio.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, models.ErrHoldingNotFound) {
			WriteError(w, http.StatusNotFound, "Holding not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// handleDeleteHolding serves DELETE /api/portfolio/{id}
func (h *Handler) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	h.portfolio.Remove(r.Context(), mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// handleSyncPortfolio serves GET /api/portfolio/sync
func (h *Handler) handleSyncPortfolio(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.portfolio.SyncWithPrices(r.Context()))
}

// handleHealth serves GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
