// Package oracle implements price-feed sources. The Band client speaks
// the StdReference REST API and rescales published prices to 18-decimal
// fixed point.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

const (
	requestPricesPath = "/oracle/v1/request_prices"

	// quoteUSD is Band's native quote: px values are already USD rates,
	// so no cross-rate conversion is needed.
	quoteUSD = "USD"
)

// BandClient fetches reference prices from a Band StdReference endpoint
type BandClient struct {
	endpoint string
	quote    string
	http     *http.Client
	limiter  *rate.Limiter
	log      *logger.Logger
}

// BandConfig holds Band client configuration
type BandConfig struct {
	Endpoint          string
	QuoteSymbol       string
	RequestsPerMinute int
}

// NewBandClient creates a new Band price source
func NewBandClient(cfg BandConfig, httpClient *http.Client) *BandClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	rps := float64(cfg.RequestsPerMinute) / 60.0
	burst := cfg.RequestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	quote := strings.ToUpper(cfg.QuoteSymbol)
	if quote == "" {
		quote = quoteUSD
	}

	return &BandClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		quote:    quote,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		log:      logger.Get().With("component", "band_oracle"),
	}
}

// Name returns the source identifier
func (c *BandClient) Name() string {
	return "band"
}

type priceResult struct {
	Symbol     string `json:"symbol"`
	Multiplier string `json:"multiplier"`
	Px         string `json:"px"`
}

type requestPricesResponse struct {
	PriceResults []priceResult `json:"price_results"`
}

// LatestPrice returns the oracle's last published price for the symbol,
// rescaled to 18 decimals: price = px * 10^18 / multiplier. With a
// non-USD quote symbol configured, both rates come back in one request
// and the result is their cross rate. Staleness is not validated here.
func (c *BandClient) LatestPrice(ctx context.Context, symbol string) (fixedpoint.Value, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return fixedpoint.Value{}, errors.Wrap(err, "oracle rate limiter")
	}

	symbols := url.Values{"symbols": {symbol}}
	if c.quote != quoteUSD {
		symbols["symbols"] = append(symbols["symbols"], c.quote)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.endpoint, requestPricesPath, symbols.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fixedpoint.Value{}, errors.Wrap(err, "build oracle request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fixedpoint.Value{}, errors.Wrapf(errors.ErrOracleUnavailable, "request prices: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fixedpoint.Value{}, errors.Wrapf(errors.ErrOracleUnavailable, "request prices: status %d", resp.StatusCode)
	}

	var parsed requestPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fixedpoint.Value{}, errors.Wrap(err, "decode oracle response")
	}

	price, err := findPrice(parsed, symbol)
	if err != nil {
		return fixedpoint.Value{}, err
	}

	if c.quote != quoteUSD {
		quote, err := findPrice(parsed, c.quote)
		if err != nil {
			return fixedpoint.Value{}, err
		}
		if price, err = crossRate(price, quote); err != nil {
			return fixedpoint.Value{}, errors.Wrapf(err, "cross rate %s/%s", symbol, c.quote)
		}
	}

	c.log.Debugw("Fetched oracle price",
		"symbol", symbol,
		"quote", c.quote,
		"price", price.Decimal(),
	)
	return price, nil
}

// findPrice extracts and rescales the matching price result
func findPrice(parsed requestPricesResponse, symbol string) (fixedpoint.Value, error) {
	for _, result := range parsed.PriceResults {
		if !strings.EqualFold(result.Symbol, symbol) {
			continue
		}

		price, err := rescale(result.Px, result.Multiplier)
		if err != nil {
			return fixedpoint.Value{}, errors.Wrapf(err, "rescale price for %s", symbol)
		}
		return price, nil
	}

	return fixedpoint.Value{}, errors.Wrapf(errors.ErrUnknownSymbol, "symbol %s", symbol)
}

// crossRate divides the base rate by the quote rate at 18-decimal
// scale: price = base * 10^18 / quote
func crossRate(base, quote fixedpoint.Value) (fixedpoint.Value, error) {
	if quote.Sign() <= 0 {
		return fixedpoint.Value{}, errors.ErrZeroPrice
	}

	scaled := new(big.Int).Mul(base.BigInt(), fixedpoint.Whole(1).BigInt())
	scaled.Quo(scaled, quote.BigInt())

	return fixedpoint.New(scaled), nil
}

// rescale converts Band's px/multiplier pair to 18-decimal fixed point
func rescale(px, multiplier string) (fixedpoint.Value, error) {
	p, ok := new(big.Int).SetString(px, 10)
	if !ok {
		return fixedpoint.Value{}, errors.Newf("invalid px %q", px)
	}

	m, ok := new(big.Int).SetString(multiplier, 10)
	if !ok || m.Sign() <= 0 {
		return fixedpoint.Value{}, errors.Newf("invalid multiplier %q", multiplier)
	}

	scaled := new(big.Int).Mul(p, fixedpoint.Whole(1).BigInt())
	scaled.Quo(scaled, m)

	return fixedpoint.New(scaled), nil
}
