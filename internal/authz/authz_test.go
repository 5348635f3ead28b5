package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eima40x4c/CampusCard/internal/domain"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		tier Tier
		want bool
	}{
		{"public allows anonymous", "", TierPublic, true},
		{"public allows student", domain.RoleStudent, TierPublic, true},
		{"authenticated rejects anonymous", "", TierAuthenticated, false},
		{"authenticated allows student", domain.RoleStudent, TierAuthenticated, true},
		{"authenticated allows admin", domain.RoleAdmin, TierAuthenticated, true},
		{"admin rejects student", domain.RoleStudent, TierAdmin, false},
		{"admin rejects anonymous", "", TierAdmin, false},
		{"admin allows admin", domain.RoleAdmin, TierAdmin, true},
		{"unknown tier rejects everyone", domain.RoleAdmin, Tier("owner"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.role, tt.tier))
		})
	}
}
