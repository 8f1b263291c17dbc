package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/inventory"
	"github.com/wonny/yuutai/internal/policy"
	"github.com/wonny/yuutai/pkg/logger"
)

// RealtimeFetcher downloads the current inventory of all codes
type RealtimeFetcher interface {
	FetchRealtime(ctx context.Context) (contracts.RawPayload, error)
}

// InventoryHandler serves live broker inventory
type InventoryHandler struct {
	fetcher RealtimeFetcher
	policy  *policy.Policy
	logger  *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(fetcher RealtimeFetcher, p *policy.Policy, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		fetcher: fetcher,
		policy:  p,
		logger:  log,
	}
}

// GetInventory returns realtime inventory for all codes or one
// GET /api/inventory?code=3387
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	payload, err := h.fetcher.FetchRealtime(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch realtime inventory")
		respondError(w, http.StatusBadGateway, "Failed to fetch inventory")
		return
	}

	records := inventory.NewNormalizer(h.policy, h.logger).NormalizeFeed(payload)

	if code := r.URL.Query().Get("code"); code != "" {
		rec, ok := inventory.Index(records)[code]
		if !ok {
			respondError(w, http.StatusNotFound, "code not found: "+code)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": rec})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(records),
		"in_stock": inventory.CountInStock(records, h.policy.PrimaryBroker),
		"data":     records,
	})
}
