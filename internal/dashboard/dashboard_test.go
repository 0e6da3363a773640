package dashboard

import (
	"testing"

	"github.com/JonMunkholm/estateadmin/internal/auth"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		p    *auth.Principal
		want string
	}{
		{"no principal", nil, RouteLogin},
		{"owner", &auth.Principal{Role: auth.RoleOwner}, RouteOwner},
		{"manager", &auth.Principal{Role: auth.RoleManager}, RouteAdmin},
		{"admin", &auth.Principal{Role: auth.RoleAdmin}, RouteAdmin},
		{"unknown role", &auth.Principal{Role: "auditor"}, RouteAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.p); got != tt.want {
				t.Errorf("Route() = %q, want %q", got, tt.want)
			}
		})
	}
}
