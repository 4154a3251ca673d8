package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/models"
)

func testUser(role string, approved bool) *models.User {
	return &models.User{
		ID:         uuid.New(),
		Role:       role,
		IsApproved: approved,
		IsActive:   true,
	}
}

func TestCanRoleGates(t *testing.T) {
	cases := []struct {
		name   string
		user   *models.User
		action Action
		want   bool
	}{
		{"client books", testUser(models.RoleClient, true), ActionBookAppointment, true},
		{"therapist cannot book", testUser(models.RoleTherapist, true), ActionBookAppointment, false},
		{"approved therapist manages availability", testUser(models.RoleTherapist, true), ActionManageAvailability, true},
		{"unapproved therapist blocked", testUser(models.RoleTherapist, false), ActionManageAvailability, false},
		{"client cannot manage availability", testUser(models.RoleClient, true), ActionManageAvailability, false},
		{"client takes assessments", testUser(models.RoleClient, true), ActionTakeAssessment, true},
		{"client cannot manage assessments", testUser(models.RoleClient, true), ActionManageAssessments, false},
		{"therapist cannot manage users", testUser(models.RoleTherapist, true), ActionManageUsers, false},
		{"admin manages users", testUser(models.RoleAdmin, true), ActionManageUsers, true},
		{"admin books too", testUser(models.RoleAdmin, true), ActionBookAppointment, true},
		{"anyone chats", testUser(models.RoleClient, true), ActionChat, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Can(tc.user, tc.action)
			if decision.Allowed != tc.want {
				t.Fatalf("Can(%s, %s) = %v (%s), want %v",
					tc.user.Role, tc.action, decision.Allowed, decision.Reason, tc.want)
			}
			if !decision.Allowed && decision.Reason == "" {
				t.Fatalf("denial without a reason for %s/%s", tc.user.Role, tc.action)
			}
		})
	}
}

func TestCanRejectsMissingAndInactiveUsers(t *testing.T) {
	if d := Can(nil, ActionChat); d.Allowed {
		t.Fatal("nil user must be denied")
	}

	inactive := testUser(models.RoleAdmin, true)
	inactive.IsActive = false
	if d := Can(inactive, ActionManageUsers); d.Allowed {
		t.Fatal("inactive user must be denied even as admin")
	}
}
