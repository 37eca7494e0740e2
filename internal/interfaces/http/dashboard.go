package http

import (
	"net/http"
	"time"
)

type DashboardHandler struct {
	now func() time.Time
}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{now: time.Now}
}

// HandleDashboard handles GET /api/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	overview, err := sess.Accessor.Overview(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleBudget handles GET /api/budget?month=YYYY-MM. The current month is
// used when none is given.
func (h *DashboardHandler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	month := h.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)")
			return
		}
		month = parsed
	}

	summary, err := sess.Accessor.Budget(r.Context(), month)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
