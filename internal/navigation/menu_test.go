package navigation

import (
	"testing"

	"muttonhub-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestVisibleItemsPerRole(t *testing.T) {
	cases := map[models.Role][]string{
		models.RoleOwner:      {"dashboard", "buyers", "sellers", "reports", "logs", "users"},
		models.RoleAdmin:      {"dashboard", "buyers", "sellers", "reports"},
		models.RoleAccountant: {"dashboard", "buyers", "sellers", "reports"},
	}

	for role, want := range cases {
		t.Run(string(role), func(t *testing.T) {
			got := ids(VisibleItems(role))
			assert.Equal(t, want, got)
			if role != models.RoleOwner {
				assert.NotContains(t, got, "logs")
				assert.NotContains(t, got, "users")
			}
		})
	}
}

func TestUnknownRoleSeesNothing(t *testing.T) {
	assert.Empty(t, VisibleItems(""))
	assert.Empty(t, VisibleItems("superuser"))
}
