package services

import (
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

// Action is a named operation gated by role.
type Action string

const (
	ActionBookAppointment    Action = "appointments.book"
	ActionManageAppointment  Action = "appointments.manage"
	ActionManageAvailability Action = "availability.manage"
	ActionTakeAssessment     Action = "assessments.take"
	ActionManageAssessments  Action = "assessments.manage"
	ActionViewResources      Action = "resources.view"
	ActionManageResources    Action = "resources.manage"
	ActionManageUsers        Action = "users.manage"
	ActionChat               Action = "chat.use"
)

// Decision is a structured allow/deny result. Every entry point consults Can
// and reports Reason on denial instead of scattering role predicates.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Can decides whether user may perform action. Admins pass every check;
// therapists must be approved before any therapist-gated action.
func Can(user *models.User, action Action) Decision {
	if user == nil || !user.IsActive {
		return deny("authentication required")
	}
	if user.Role == models.RoleAdmin {
		return allow()
	}

	switch action {
	case ActionBookAppointment:
		if user.Role != models.RoleClient {
			return deny("only clients can book appointments")
		}
		return allow()

	case ActionManageAvailability:
		if user.Role != models.RoleTherapist {
			return deny("only therapists can manage availability")
		}
		if !user.IsApproved {
			return deny("therapist account is awaiting admin approval")
		}
		return allow()

	case ActionManageAppointment:
		if user.Role != models.RoleTherapist {
			return deny("only therapists can manage appointment status")
		}
		if !user.IsApproved {
			return deny("therapist account is awaiting admin approval")
		}
		return allow()

	case ActionTakeAssessment, ActionViewResources, ActionChat:
		return allow()

	case ActionManageAssessments, ActionManageResources, ActionManageUsers:
		return deny("admin access required")
	}

	return deny("unknown action")
}
