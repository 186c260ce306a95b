package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

// PriceService is the slice of the price feed service the HTTP layer uses
type PriceService interface {
	USDPrice(ctx context.Context, symbol string) (fixedpoint.Value, error)
	History(ctx context.Context, query pricefeed.TickQuery) ([]pricefeed.Tick, error)
}

// PriceHandler serves oracle price routes
type PriceHandler struct {
	prices PriceService
	log    *logger.Logger
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(prices PriceService, log *logger.Logger) *PriceHandler {
	return &PriceHandler{prices: prices, log: log}
}

type priceResponse struct {
	Symbol string `json:"symbol"`
	// Price is the raw 18-decimal integer, Display the human rendering.
	Price   string `json:"price"`
	Display string `json:"display"`
}

type tickResponse struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	PriceRaw string    `json:"price_raw"`
	Source   string    `json:"source"`
	At       time.Time `json:"at"`
}

// HandlePrice serves GET /prices/{symbol}
func (h *PriceHandler) HandlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	price, err := h.prices.USDPrice(r.Context(), symbol)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		Symbol:  symbol,
		Price:   price.String(),
		Display: price.Decimal().String(),
	})
}

// HandleHistory serves GET /prices/{symbol}/history
func (h *PriceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	query := pricefeed.TickQuery{
		Symbol: r.PathValue("symbol"),
		Limit:  100,
	}

	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			writeError(w, h.log, errors.NewValidationError("limit", "must be a positive integer", s))
			return
		}
		query.Limit = limit
	}
	if s := q.Get("start"); s != "" {
		start, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, h.log, errors.NewValidationError("start", "must be RFC 3339", s))
			return
		}
		query.StartTime = start
	}
	if s := q.Get("end"); s != "" {
		end, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, h.log, errors.NewValidationError("end", "must be RFC 3339", s))
			return
		}
		query.EndTime = end
	}

	ticks, err := h.prices.History(r.Context(), query)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	out := make([]tickResponse, 0, len(ticks))
	for _, t := range ticks {
		out = append(out, tickResponse{
			Symbol:   t.Symbol,
			Price:    t.Price,
			PriceRaw: t.PriceRaw,
			Source:   t.Source,
			At:       t.At,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
