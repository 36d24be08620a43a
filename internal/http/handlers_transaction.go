package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 60
)

// handleListTransactions filters the user's transactions by date range and
// search query, returning the matching rows plus their summary.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	interval, ok := intervalFromQuery(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")

	txs, err := s.transactions.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	filtered := core.FilterTransactions(txs, interval, query)
	writeJSON(w, http.StatusOK, toTransactionListResponse(filtered, core.Summarize(filtered)))
}

// intervalFromQuery resolves ?range=&start=&end= into a day interval. A bad
// selector or custom range answers 400 so the client keeps its previous view.
func intervalFromQuery(w http.ResponseWriter, r *http.Request) (core.Interval, bool) {
	q := r.URL.Query()

	selector := core.RangeSelector(strings.TrimSpace(q.Get("range")))
	if selector == "" {
		selector = core.RangeAll
	}
	if !selector.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown range selector")
		return core.Interval{}, false
	}

	var customStart, customEnd time.Time
	if selector == core.RangeCustom {
		var err error
		if v := q.Get("start"); v != "" {
			if customStart, err = parseDate(v); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return core.Interval{}, false
			}
		}
		if v := q.Get("end"); v != "" {
			if customEnd, err = parseDate(v); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return core.Interval{}, false
			}
		}
	}

	interval, err := core.ResolveDateRange(selector, customStart, customEnd, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return core.Interval{}, false
	}
	return interval, true
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.Get(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := transactionFromRequest(w, r)
	if !ok {
		return
	}

	saved, err := s.transactions.Create(r.Context(), userIDFrom(r.Context()), t)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := transactionFromRequest(w, r)
	if !ok {
		return
	}
	t.ID = r.PathValue("id")

	saved, err := s.transactions.Update(r.Context(), userIDFrom(r.Context()), t)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(saved))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months := defaultTrendMonths
	if v := r.URL.Query().Get("monthsBack"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "monthsBack must be a positive integer")
			return
		}
		months = min(n, maxTrendMonths)
	}

	userID := userIDFrom(r.Context())
	cacheKey := userID + ":" + strconv.Itoa(months)
	if trend, ok := s.trendCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, trendResponse{Trend: trend})
		return
	}

	trend, err := s.transactions.MonthlyTrend(r.Context(), userID, months, time.Now())
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if trend == nil {
		trend = []storage.TrendPoint{}
	}

	s.trendCache.Set(cacheKey, trend)
	writeJSON(w, http.StatusOK, trendResponse{Trend: trend})
}

type trendResponse struct {
	Trend []storage.TrendPoint `json:"trend"`
}

func transactionFromRequest(w http.ResponseWriter, r *http.Request) (core.Transaction, bool) {
	var req transactionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Transaction{}, false
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return core.Transaction{}, false
	}

	date, err := parseDate(req.TransactionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Transaction{}, false
	}

	t := core.Transaction{
		Title:           strings.TrimSpace(req.Title),
		Amount:          core.Money{Cents: cents},
		Type:            core.TransactionType(req.Type),
		TransactionDate: date,
	}
	if req.CategoryID != "" {
		t.Category = &core.Category{ID: req.CategoryID}
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Transaction{}, false
	}
	return t, true
}
