package http

import (
	"net/http"
	"slices"

	"mesada/internal/session"
)

// HandleHealth returns a simple health check response.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Screen names understood by the mobile router.
const (
	ScreenSignIn        = "sign-in"
	ScreenSignUp        = "sign-up"
	ScreenDashboard     = "dashboard"
	ScreenGoals         = "goals"
	ScreenBudget        = "budget"
	ScreenAwards        = "awards"
	ScreenNotifications = "notifications"
	ScreenProfile       = "profile"
	ScreenTips          = "tips"
	ScreenDependents    = "dependents"
	ScreenChangePasswd  = "change-password"
)

var (
	publicScreens = []string{ScreenSignIn, ScreenSignUp}
	memberScreens = []string{
		ScreenDashboard,
		ScreenGoals,
		ScreenBudget,
		ScreenAwards,
		ScreenNotifications,
		ScreenProfile,
		ScreenTips,
	}
)

// Navigation tells the client where to go and which screens it may open.
type Navigation struct {
	Authenticated bool     `json:"authenticated"`
	Route         string   `json:"route"`
	Role          string   `json:"role,omitempty"`
	Screens       []string `json:"screens"`
}

// NavigationFor routes unauthenticated callers to sign-in and everyone else
// to the dashboard. Dependents management is offered to guardians only, and
// a pending password reset takes precedence over the dashboard.
func NavigationFor(sess *session.Session) Navigation {
	if sess == nil {
		return Navigation{Route: ScreenSignIn, Screens: slices.Clone(publicScreens)}
	}

	screens := slices.Clone(memberScreens)
	if sess.IsGuardian() {
		screens = append(screens, ScreenDependents)
	}

	route := ScreenDashboard
	if sess.Profile != nil && sess.Profile.PasswordResetRequired {
		route = ScreenChangePasswd
		screens = append(screens, ScreenChangePasswd)
	}

	return Navigation{
		Authenticated: true,
		Route:         route,
		Role:          string(sess.Role()),
		Screens:       screens,
	}
}

// HandleNavigation handles GET /api/navigation
func HandleNavigation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, _ := session.FromContext(r.Context())
	writeJSON(w, http.StatusOK, NavigationFor(sess))
}
