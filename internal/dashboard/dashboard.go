// Package dashboard decides where a user lands after login.
package dashboard

import "github.com/JonMunkholm/estateadmin/internal/auth"

// Landing routes.
const (
	RouteLogin = "/login"
	RouteAdmin = "/admin"
	RouteOwner = "/owner"
)

var routes = map[auth.Role]string{
	auth.RoleAdmin:   RouteAdmin,
	auth.RoleManager: RouteAdmin,
	auth.RoleOwner:   RouteOwner,
}

// Route returns the landing route for p. A nil principal goes to the login
// page; an unrecognised role gets the management panel.
func Route(p *auth.Principal) string {
	if p == nil {
		return RouteLogin
	}
	if r, ok := routes[p.Role]; ok {
		return r
	}
	return RouteAdmin
}
