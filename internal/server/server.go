package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/coinfolio/internal/common"
)

// NewRouter builds the HTTP router with all middleware applied.
func NewRouter(h *Handler, logger *common.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/coins", h.handleListCoins).Methods(http.MethodGet)
	api.HandleFunc("/coins/markets", h.handleGetMarkets).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}", h.handleGetCoinDetail).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}/chart", h.handleGetMarketChart).Methods(http.MethodGet)
	api.HandleFunc("/prices", h.handleGetPrices).Methods(http.MethodGet)

	api.HandleFunc("/portfolio", h.handleListHoldings).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", h.handleAddHolding).Methods(http.MethodPost)
	api.HandleFunc("/portfolio/sync", h.handleSyncPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{id}", h.handleGetHolding).Methods(http.MethodGet)
	api.HandleFunc("/portfolio/{id}", h.handleUpdateHolding).Methods(http.MethodPatch)
	api.HandleFunc("/portfolio/{id}", h.handleDeleteHolding).Methods(http.MethodDelete)

	var handler http.Handler = r
	handler = corsMiddleware(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return handler
}
