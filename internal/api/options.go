package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"deltaoption/internal/domain/option"
	optionsvc "deltaoption/internal/services/option"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

// OptionService is the slice of the option service the HTTP layer uses
type OptionService interface {
	Write(ctx context.Context, p optionsvc.WriteParams) (*option.Option, error)
	Buy(ctx context.Context, p optionsvc.BuyParams) error
	Cancel(ctx context.Context, symbol string, id int64, caller string) error
	Exercise(ctx context.Context, p optionsvc.ExerciseParams) error
	RetrieveExpiredFunds(ctx context.Context, symbol string, id int64, caller string) error
	Get(ctx context.Context, symbol string, id int64) (*option.Option, error)
	Quote(ctx context.Context, symbol string, id int64) (fixedpoint.Cost, error)
	List(ctx context.Context, symbol string) ([]optionsvc.Listing, error)
}

// OptionHandler serves the option lifecycle routes
type OptionHandler struct {
	options OptionService
	log     *logger.Logger
}

// NewOptionHandler creates a new option lifecycle handler
func NewOptionHandler(options OptionService, log *logger.Logger) *OptionHandler {
	return &OptionHandler{options: options, log: log}
}

// Quantities travel as raw 18-decimal integer strings, the same
// representation the ledger stores.
type writeOptionRequest struct {
	Symbol  string `json:"symbol"`
	Writer  string `json:"writer"`
	Strike  string `json:"strike"`
	Premium string `json:"premium"`
	Amount  string `json:"amount"`
	Expiry  string `json:"expiry"` // RFC 3339
	Value   string `json:"value"`
}

type buyOptionRequest struct {
	Buyer string `json:"buyer"`
	Value string `json:"value"`
}

type callerRequest struct {
	Caller string `json:"caller"`
}

type exerciseRequest struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
}

type quoteResponse struct {
	Symbol string `json:"symbol"`
	ID     int64  `json:"id"`
	// Cost is quoted at 8 decimals, Value is the same cost rescaled to
	// the 18-decimal payment a caller must attach.
	Cost  string `json:"cost"`
	Value string `json:"value"`
}

func parseValue(field, s string) (fixedpoint.Value, error) {
	v, err := fixedpoint.Parse(s)
	if err != nil {
		return fixedpoint.Value{}, errors.NewValidationError(field, "must be an integer string", s)
	}
	return v, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("id", "must be an integer", r.PathValue("id"))
	}
	return id, nil
}

// HandleWrite serves POST /options
func (h *OptionHandler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	var req writeOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}

	p := optionsvc.WriteParams{Symbol: req.Symbol, Writer: req.Writer}

	var err error
	if p.Strike, err = parseValue("strike", req.Strike); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.Premium, err = parseValue("premium", req.Premium); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.Amount, err = parseValue("amount", req.Amount); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.Value, err = parseValue("value", req.Value); err != nil {
		writeError(w, h.log, err)
		return
	}
	if p.Expiry, err = time.Parse(time.RFC3339, req.Expiry); err != nil {
		writeError(w, h.log, errors.NewValidationError("expiry", "must be RFC 3339", req.Expiry))
		return
	}

	o, err := h.options.Write(r.Context(), p)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// HandleList serves GET /options/{symbol}
func (h *OptionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.options.List(r.Context(), r.PathValue("symbol"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// HandleGet serves GET /options/{symbol}/{id}
func (h *OptionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	o, err := h.options.Get(r.Context(), r.PathValue("symbol"), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// HandleBuy serves POST /options/{symbol}/{id}/buy
func (h *OptionHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req buyOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}

	value, err := parseValue("value", req.Value)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	err = h.options.Buy(r.Context(), optionsvc.BuyParams{
		Symbol: r.PathValue("symbol"),
		ID:     id,
		Buyer:  req.Buyer,
		Value:  value,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "bought"})
}

// HandleCancel serves POST /options/{symbol}/{id}/cancel
func (h *OptionHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}

	if err := h.options.Cancel(r.Context(), r.PathValue("symbol"), id, req.Caller); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// HandleExercise serves POST /options/{symbol}/{id}/exercise
func (h *OptionHandler) HandleExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}

	value, err := parseValue("value", req.Value)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	err = h.options.Exercise(r.Context(), optionsvc.ExerciseParams{
		Symbol: r.PathValue("symbol"),
		ID:     id,
		Caller: req.Caller,
		Value:  value,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exercised"})
}

// HandleReclaim serves POST /options/{symbol}/{id}/reclaim
func (h *OptionHandler) HandleReclaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var req callerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.Wrap(errors.ErrInvalidInput, "malformed request body"))
		return
	}

	if err := h.options.RetrieveExpiredFunds(r.Context(), r.PathValue("symbol"), id, req.Caller); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reclaimed"})
}

// HandleQuote serves GET /options/{symbol}/{id}/cost
func (h *OptionHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	symbol := r.PathValue("symbol")
	cost, err := h.options.Quote(r.Context(), symbol, id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Symbol: symbol,
		ID:     id,
		Cost:   cost.BigInt().String(),
		Value:  cost.AsValue().String(),
	})
}
