package http

import (
	"net/http"
	"strings"

	"finreport/internal/core"
	"finreport/internal/log"
	"finreport/internal/sheets"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			log.FromContext(r.Context()).Failure(r.Context(), "Readiness check failed", err,
				log.OpRead, log.ErrorTypeDatabase, nil)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleHome serves the home page for ?date=YYYY-MM-DD HH:MM:SS, defaulting
// to the current time. A failed assembly is reported as 503.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = s.now().Format(core.RequestLayout)
	} else if _, err := core.ParseRequestTime(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must use the layout YYYY-MM-DD HH:MM:SS")
		return
	}

	s.mu.Lock()
	page := s.deps.Assembler.Home(r.Context(), date)
	s.mu.Unlock()

	if page.IsEmpty() {
		writeError(w, http.StatusServiceUnavailable, "home page is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCategory serves ?category= spending over the three months ending at
// ?date=DD.MM.YYYY.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := strings.TrimSpace(query.Get("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	date := strings.TrimSpace(query.Get("date"))

	s.mu.Lock()
	txs := sheets.Load(r.Context(), s.deps.Transactions, log.FromContext(r.Context()))
	out := s.deps.Queries.SpendingByCategory(r.Context(), txs, category, date)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, orEmpty(out))
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	txs := sheets.Load(r.Context(), s.deps.Transactions, log.FromContext(r.Context()))
	out := s.deps.Queries.SearchTransfers(r.Context(), txs)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, orEmpty(out))
}

func orEmpty(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}
