package auth

import (
	"fmt"
	"strings"
)

// Routes of the dashboard.
const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// Decision is the outcome of guarding a route.
type Decision struct {
	// Pending is set while the session is still loading; nothing should
	// be shown or redirected yet.
	Pending bool
	// Redirect, when not empty, is where the visitor must be sent.
	Redirect string
}

// Allowed reports whether the route may be shown as is.
func (d Decision) Allowed() bool {
	return !d.Pending && d.Redirect == ""
}

func (d Decision) String() string {
	switch {
	case d.Pending:
		return "pending"
	case d.Redirect != "":
		return "redirect " + d.Redirect
	default:
		return "allow"
	}
}

// Guard decides what happens when route is visited in state.
//
//	/            -> /dashboard when authenticated, else /login
//	/login       -> /dashboard when authenticated
//	/dashboard/* -> /login unless authenticated
func Guard(route string, state SessionState) (Decision, error) {
	switch {
	case route == RouteHome:
		if state.IsLoading {
			return Decision{Pending: true}, nil
		}
		if state.IsAuthenticated {
			return Decision{Redirect: RouteDashboard}, nil
		}
		return Decision{Redirect: RouteLogin}, nil
	case route == RouteLogin:
		if state.IsAuthenticated {
			return Decision{Redirect: RouteDashboard}, nil
		}
		return Decision{}, nil
	case route == RouteDashboard || strings.HasPrefix(route, RouteDashboard+"/"):
		if state.IsLoading {
			return Decision{Pending: true}, nil
		}
		if !state.IsAuthenticated {
			return Decision{Redirect: RouteLogin}, nil
		}
		return Decision{}, nil
	default:
		return Decision{}, fmt.Errorf("unknown route %q", route)
	}
}
