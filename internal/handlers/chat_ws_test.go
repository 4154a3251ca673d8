package handlers

import (
	"testing"

	"github.com/mindhaven/mindhaven-backend/internal/models"
)

func chatUser(role string, active bool) *models.User {
	return &models.User{Role: role, IsActive: active}
}

func TestCanChatWith(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		peer *models.User
		want bool
	}{
		{"client with therapist", chatUser(models.RoleClient, true), chatUser(models.RoleTherapist, true), true},
		{"therapist with client", chatUser(models.RoleTherapist, true), chatUser(models.RoleClient, true), true},
		{"client with client", chatUser(models.RoleClient, true), chatUser(models.RoleClient, true), false},
		{"therapist with therapist", chatUser(models.RoleTherapist, true), chatUser(models.RoleTherapist, true), false},
		{"admin with anyone", chatUser(models.RoleAdmin, true), chatUser(models.RoleClient, true), true},
		{"anyone with admin", chatUser(models.RoleClient, true), chatUser(models.RoleAdmin, true), true},
		{"inactive peer", chatUser(models.RoleClient, true), chatUser(models.RoleTherapist, false), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canChatWith(tc.user, tc.peer); got != tc.want {
				t.Fatalf("canChatWith(%s, %s) = %v, want %v", tc.user.Role, tc.peer.Role, got, tc.want)
			}
		})
	}
}
