package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deltaoption/internal/domain/option"
	optionsvc "deltaoption/internal/services/option"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

type MockOptionService struct {
	mock.Mock
}

func (m *MockOptionService) Write(ctx context.Context, p optionsvc.WriteParams) (*option.Option, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*option.Option), args.Error(1)
}

func (m *MockOptionService) Buy(ctx context.Context, p optionsvc.BuyParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOptionService) Cancel(ctx context.Context, symbol string, id int64, caller string) error {
	args := m.Called(ctx, symbol, id, caller)
	return args.Error(0)
}

func (m *MockOptionService) Exercise(ctx context.Context, p optionsvc.ExerciseParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOptionService) RetrieveExpiredFunds(ctx context.Context, symbol string, id int64, caller string) error {
	args := m.Called(ctx, symbol, id, caller)
	return args.Error(0)
}

func (m *MockOptionService) Get(ctx context.Context, symbol string, id int64) (*option.Option, error) {
	args := m.Called(ctx, symbol, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*option.Option), args.Error(1)
}

func (m *MockOptionService) Quote(ctx context.Context, symbol string, id int64) (fixedpoint.Cost, error) {
	args := m.Called(ctx, symbol, id)
	return args.Get(0).(fixedpoint.Cost), args.Error(1)
}

func (m *MockOptionService) List(ctx context.Context, symbol string) ([]optionsvc.Listing, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]optionsvc.Listing), args.Error(1)
}

func newTestMux(svc OptionService) *http.ServeMux {
	h := NewOptionHandler(svc, logger.Get())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /options", h.HandleWrite)
	mux.HandleFunc("GET /options/{symbol}", h.HandleList)
	mux.HandleFunc("GET /options/{symbol}/{id}", h.HandleGet)
	mux.HandleFunc("GET /options/{symbol}/{id}/cost", h.HandleQuote)
	mux.HandleFunc("POST /options/{symbol}/{id}/buy", h.HandleBuy)
	mux.HandleFunc("POST /options/{symbol}/{id}/cancel", h.HandleCancel)
	mux.HandleFunc("POST /options/{symbol}/{id}/exercise", h.HandleExercise)
	mux.HandleFunc("POST /options/{symbol}/{id}/reclaim", h.HandleReclaim)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleWrite(t *testing.T) {
	svc := new(MockOptionService)
	created := &option.Option{
		ID:      7,
		Symbol:  "ETH",
		Writer:  "0xwriter",
		Strike:  fixedpoint.Whole(1700),
		Premium: fixedpoint.Whole(10),
		Amount:  fixedpoint.Whole(1),
		Expiry:  time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	svc.On("Write", mock.Anything, mock.MatchedBy(func(p optionsvc.WriteParams) bool {
		return p.Symbol == "ETH" &&
			p.Writer == "0xwriter" &&
			p.Strike.Equal(fixedpoint.Whole(1700)) &&
			p.Value.Equal(p.Amount)
	})).Return(created, nil)

	mux := newTestMux(svc)
	body := `{
		"symbol": "ETH",
		"writer": "0xwriter",
		"strike": "1700000000000000000000",
		"premium": "10000000000000000000",
		"amount": "1000000000000000000",
		"expiry": "2027-03-15T00:00:00Z",
		"value": "1000000000000000000"
	}`

	rec := doRequest(t, mux, http.MethodPost, "/options", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
	svc.AssertExpectations(t)
}

func TestHandleWriteBadPayloads(t *testing.T) {
	svc := new(MockOptionService)
	mux := newTestMux(svc)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"strike not a number", `{"symbol":"ETH","writer":"w","strike":"abc","premium":"0","amount":"1","expiry":"2027-03-15T00:00:00Z","value":"1"}`},
		{"bad expiry", `{"symbol":"ETH","writer":"w","strike":"1","premium":"0","amount":"1","expiry":"03/15/2027","value":"1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, http.MethodPost, "/options", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	svc.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", errors.ErrNotFound, http.StatusNotFound},
		{"not the writer", errors.ErrNotWriter, http.StatusForbidden},
		{"already bought", errors.ErrAlreadyBought, http.StatusConflict},
		{"already terminal", errors.ErrAlreadyTerminal, http.StatusConflict},
		{"expired", errors.ErrOptionExpired, http.StatusConflict},
		{"payment mismatch", errors.ErrPaymentMismatch, http.StatusPaymentRequired},
		{"insufficient payment", errors.ErrInsufficientPayment, http.StatusPaymentRequired},
		{"oracle down", errors.ErrOracleUnavailable, http.StatusBadGateway},
		{"wrapped", errors.Wrap(errors.ErrNotBuyer, "exercise"), http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOptionService)
			svc.On("Cancel", mock.Anything, "ETH", int64(3), "0xw").Return(tt.err)

			mux := newTestMux(svc)
			rec := doRequest(t, mux, http.MethodPost, "/options/ETH/3/cancel", `{"caller":"0xw"}`)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestHandleBuy(t *testing.T) {
	svc := new(MockOptionService)
	svc.On("Buy", mock.Anything, optionsvc.BuyParams{
		Symbol: "ETH",
		ID:     3,
		Buyer:  "0xbuyer",
		Value:  fixedpoint.Whole(10),
	}).Return(nil)

	mux := newTestMux(svc)
	rec := doRequest(t, mux, http.MethodPost, "/options/ETH/3/buy",
		`{"buyer":"0xbuyer","value":"10000000000000000000"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bought")
	svc.AssertExpectations(t)
}

func TestHandleBuyBadID(t *testing.T) {
	svc := new(MockOptionService)
	mux := newTestMux(svc)

	rec := doRequest(t, mux, http.MethodPost, "/options/ETH/abc/buy", `{"buyer":"b","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything)
}

func TestHandleQuote(t *testing.T) {
	svc := new(MockOptionService)
	svc.On("Quote", mock.Anything, "ETH", int64(3)).Return(fixedpoint.CostFromInt64(94444444), nil)

	mux := newTestMux(svc)
	rec := doRequest(t, mux, http.MethodGet, "/options/ETH/3/cost", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cost":"94444444"`)
	assert.Contains(t, rec.Body.String(), `"value":"944444440000000000"`)
}

func TestHandleList(t *testing.T) {
	svc := new(MockOptionService)
	svc.On("List", mock.Anything, "ETH").Return([]optionsvc.Listing{
		{
			ID:         1,
			Symbol:     "ETH",
			Writer:     "0xwriter",
			Strike:     "1700",
			Premium:    "10",
			Amount:     "1",
			LatestCost: "0.94444444",
			Expiry:     "03/15/2027",
			Status:     "written",
		},
	}, nil)

	mux := newTestMux(svc)
	rec := doRequest(t, mux, http.MethodGet, "/options/ETH", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"expiry":"03/15/2027"`)
	assert.Contains(t, rec.Body.String(), `"latestCost":"0.94444444"`)
}

func TestHandleExercise(t *testing.T) {
	svc := new(MockOptionService)
	svc.On("Exercise", mock.Anything, optionsvc.ExerciseParams{
		Symbol: "ETH",
		ID:     3,
		Caller: "0xbuyer",
		Value:  fixedpoint.MustParse("944444440000000000"),
	}).Return(nil)

	mux := newTestMux(svc)
	rec := doRequest(t, mux, http.MethodPost, "/options/ETH/3/exercise",
		`{"caller":"0xbuyer","value":"944444440000000000"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandleReclaim(t *testing.T) {
	svc := new(MockOptionService)
	svc.On("RetrieveExpiredFunds", mock.Anything, "ETH", int64(3), "0xwriter").Return(nil)

	mux := newTestMux(svc)
	rec := doRequest(t, mux, http.MethodPost, "/options/ETH/3/reclaim", `{"caller":"0xwriter"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reclaimed")
	svc.AssertExpectations(t)
}
