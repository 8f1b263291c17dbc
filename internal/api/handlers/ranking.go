package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/service"
	"github.com/wonny/yuutai/internal/store"
	"github.com/wonny/yuutai/pkg/logger"
)

// RankingHandler serves rankings and the value master
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	service *service.RankingService
	logger  *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(svc *service.RankingService, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		service: svc,
		logger:  log,
	}
}

// RankingResponse is the ranking of one month
type RankingResponse struct {
	RunID       string                       `json:"run_id"`
	PolicyHash  string                       `json:"policy_hash"`
	Month       int                          `json:"month"`
	InventoryAt string                       `json:"inventory_at"`
	Count       int                          `json:"count"`
	Entries     []contracts.PerformanceEntry `json:"entries"`
	Failures    int                          `json:"failures"`
}

// GetRanking returns the ranking of a settlement month
// GET /api/rankings/{month}?limit=20&in_stock=nikko
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(mux.Vars(r)["month"])
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "month must be 1-12")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	broker := r.URL.Query().Get("in_stock")
	if broker != "" && !h.service.Policy().HasBroker(broker) {
		respondError(w, http.StatusBadRequest, "unknown broker: "+broker)
		return
	}

	result, err := h.service.Rank(r.Context(), month, service.RankOptions{})
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no inventory snapshot for this month")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("month", month).Error("Failed to build ranking")
		respondError(w, http.StatusInternalServerError, "Failed to build ranking")
		return
	}

	ranking := result.Ranking
	if broker != "" {
		ranking = ranking.Filter(func(e contracts.PerformanceEntry) bool { return e.InStock(broker) })
	}
	entries := ranking.Top(limit)

	respondJSON(w, http.StatusOK, RankingResponse{
		RunID:       result.RunID,
		PolicyHash:  result.PolicyHash,
		Month:       month,
		InventoryAt: result.InventoryAt.Format("2006-01-02T15:04:05Z07:00"),
		Count:       len(entries),
		Entries:     entries,
		Failures:    len(result.Failures),
	})
}

// GetMaster returns value master entries, optionally for one month
// GET /api/master?month=3
func (h *RankingHandler) GetMaster(w http.ResponseWriter, r *http.Request) {
	idx, err := h.service.Master()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load value master")
		respondError(w, http.StatusInternalServerError, "Failed to load value master")
		return
	}

	entries := idx.Entries()
	if s := r.URL.Query().Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			respondError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
		entries = idx.ForMonth(month)
	}
	if entries == nil {
		entries = []contracts.ValueMasterEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// GetSummary returns per-month inventory counts
// GET /api/summary
func (h *RankingHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build summary")
		respondError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
