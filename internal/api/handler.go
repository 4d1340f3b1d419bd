package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
	"github.com/tradelens/chartdata/pkg/errors"
)

// cacheControlValue advertises a 24-hour shared cache with a 12-hour
// stale-while-revalidate window to intermediaries.
const cacheControlValue = "public, s-maxage=86400, stale-while-revalidate=43200"

// ohlcQuery is the validated query-parameter set of the candle endpoint.
// The interval is handled separately since invalid values silently fall back
// instead of failing validation.
type ohlcQuery struct {
	Symbol           string `validate:"required"`
	StartDate        string `validate:"required,datetime=2006-01-02"`
	EndDate          string `validate:"required,datetime=2006-01-02"`
	MetaapiAccountID string
	Region           string
}

// OHLCMeta describes which source produced the response bars.
type OHLCMeta struct {
	Source types.Source `json:"source"`
}

// OHLCResponse is the success payload of the candle endpoint.
type OHLCResponse struct {
	Bars  []types.Bar `json:"bars"`
	Meta  OHLCMeta    `json:"meta"`
	Count int         `json:"count"`
}

// ErrorResponse is the failure payload of the candle endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleOHLC(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := ohlcQuery{
		Symbol:           q.Get("symbol"),
		StartDate:        q.Get("startDate"),
		EndDate:          q.Get("endDate"),
		MetaapiAccountID: q.Get("metaapiAccountId"),
		Region:           q.Get("region"),
	}

	if err := s.validate.Struct(query); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "symbol, startDate and endDate are required, dates as YYYY-MM-DD"})

		return
	}

	from, to, err := types.DateRangeUnix(query.StartDate, query.EndDate)
	if err != nil || to < from {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date range"})

		return
	}

	req := provider.Request{
		Symbol:    query.Symbol,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		From:      from,
		To:        to,
		Interval:  types.ParseInterval(q.Get("interval")),
		AccountID: query.MetaapiAccountID,
		Region:    query.Region,
	}

	result, err := s.resolver.Resolve(r.Context(), req)
	if err != nil {
		if !hasNoDataCode(err) {
			s.log.Warn("resolver failed", zap.Error(err))
		}

		// Total cascade exhaustion is the only hard failure path; the
		// calling chart component falls back to synthetic data locally.
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no market data available for the requested window"})

		return
	}

	w.Header().Set("Cache-Control", cacheControlValue)
	writeJSON(w, http.StatusOK, OHLCResponse{
		Bars:  result.Bars,
		Meta:  OHLCMeta{Source: result.Source},
		Count: len(result.Bars),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// hasNoDataCode reports whether the resolver failed with cascade exhaustion
// rather than a programming error.
func hasNoDataCode(err error) bool {
	return errors.HasCode(err, errors.ErrCodeNoData)
}
