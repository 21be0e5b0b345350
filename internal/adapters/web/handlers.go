package web

import (
	"errors"
	"net/http"
	"time"

	"ledger-engine/internal/app"
	"ledger-engine/internal/core"
	"ledger-engine/internal/obs"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(obs.Instrument)

	r.Get("/api/health", h.health)
	r.Get("/metrics", obs.Handler().ServeHTTP)

	r.Get("/api/reports/balance-sheet", h.balanceSheet)
	r.Get("/api/reports/pnl", h.profitAndLoss)
	r.Get("/api/reports/trial-balance", h.trialBalance)

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// parseCutoff reads the as_of query parameter (YYYY-MM-DD); missing means
// today.
func parseCutoff(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// reportError maps engine failures onto HTTP responses: a misconfigured
// chart is a server-side configuration problem, everything else on this
// read path is an unavailable collaborator store.
func (h *Handler) reportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrDanglingParent),
		errors.Is(err, core.ErrHierarchyCycle),
		errors.Is(err, core.ErrUnknownGroup):
		writeError(w, r, "chart of accounts is misconfigured: "+err.Error(), "CONFIGURATION_ERROR", http.StatusInternalServerError)
	default:
		writeError(w, r, "statement build failed: "+err.Error(), "SOURCE_UNAVAILABLE", http.StatusBadGateway)
	}
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	cutoff, err := parseCutoff(r)
	if err != nil {
		writeError(w, r, "invalid as_of date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetBalanceSheet(r.Context(), cutoff)
	if err != nil {
		h.reportError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	cutoff, err := parseCutoff(r)
	if err != nil {
		writeError(w, r, "invalid as_of date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetProfitAndLoss(r.Context(), cutoff)
	if err != nil {
		h.reportError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	cutoff, err := parseCutoff(r)
	if err != nil {
		writeError(w, r, "invalid as_of date, expected YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetTrialBalance(r.Context(), cutoff)
	if err != nil {
		h.reportError(w, r, err)
		return
	}
	writeJSON(w, result)
}
