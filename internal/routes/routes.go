package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/mindhaven-backend/internal/handlers"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/logout", handlers.Logout)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/auth/me", handlers.Me)
		r.Put("/api/profile", handlers.UpdateProfile)
		r.Post("/api/profile/picture", handlers.UploadProfilePicture)

		// Therapist directory
		r.Get("/api/therapists", handlers.ListTherapists)
		r.Get("/api/therapists/{therapistID}", handlers.GetTherapist)
		r.Get("/api/therapists/{therapistID}/availability", handlers.ListTherapistAvailability)

		// Availability management (approved therapists)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(services.ActionManageAvailability))
			r.Post("/api/availability", handlers.AddAvailability)
			r.Get("/api/availability", handlers.ListMyAvailability)
			r.Delete("/api/availability/{slotID}", handlers.DeleteAvailability)
		})

		// Appointments
		r.With(middleware.RequirePermission(services.ActionBookAppointment)).
			Post("/api/appointments", handlers.BookAppointment)
		r.Get("/api/appointments", handlers.ListMyAppointments)
		r.Put("/api/appointments/{appointmentID}/status", handlers.UpdateAppointmentStatus)
		r.Delete("/api/appointments/{appointmentID}", handlers.CancelAppointment)

		// Assessments
		r.Get("/api/assessments", handlers.ListAssessments)
		r.Get("/api/assessments/{assessmentID}", handlers.GetAssessment)
		r.With(middleware.RequirePermission(services.ActionTakeAssessment)).
			Post("/api/assessments/{assessmentID}/submit", handlers.SubmitAssessment)
		r.Get("/api/assessments/results/{resultID}", handlers.GetAssessmentResult)
		r.Get("/api/assessments/my-results", handlers.ListMyResults)

		// Resource library
		r.Get("/api/resources", handlers.ListResources)
		r.Get("/api/resources/{resourceID}", handlers.GetResource)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(services.ActionManageResources))
			r.Post("/api/resources", handlers.CreateResource)
			r.Put("/api/resources/{resourceID}", handlers.UpdateResource)
			r.Delete("/api/resources/{resourceID}", handlers.DeleteResource)
		})

		// Direct chat
		r.Get("/api/chat/contacts", handlers.ListChatContacts)
		r.Get("/api/chat/history", handlers.LoadChatHistory)
		r.Put("/api/chat/read", handlers.MarkChatRead)
		r.Get("/api/chat/ws", handlers.ChatWebSocket)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(services.ActionManageUsers))
			r.Get("/api/admin/therapists/pending", handlers.ListPendingTherapists)
			r.Put("/api/admin/therapists/{therapistID}/approve", handlers.SetTherapistApproval(true))
			r.Put("/api/admin/therapists/{therapistID}/revoke", handlers.SetTherapistApproval(false))
			r.Get("/api/admin/users", handlers.ListUsers)
			r.Put("/api/admin/users/{userID}/deactivate", handlers.DeactivateUser)
			r.Delete("/api/admin/users/{userID}", handlers.DeleteUser)
		})

		// Assessment authoring (admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(services.ActionManageAssessments))
			r.Post("/api/admin/assessments", handlers.CreateAssessment)
			r.Post("/api/admin/assessments/{assessmentID}/questions", handlers.AddQuestion)
			r.Delete("/api/admin/assessments/{assessmentID}", handlers.DeleteAssessment)
		})
	})
}
