package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table (all three roles live here; therapist-only columns stay NULL for clients)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'CLIENT',
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			bio TEXT,
			phone_number VARCHAR(20),
			address VARCHAR(255),
			profile_picture_url TEXT,
			specialization VARCHAR(100),
			location VARCHAR(100),
			qualifications TEXT,
			experience_years INTEGER,
			hourly_rate NUMERIC(8,2),
			is_accepting_clients BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Weekly recurring availability, one row per open interval
		`CREATE TABLE IF NOT EXISTS availability_slots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			therapist_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			CHECK (start_time < end_time),
			UNIQUE(therapist_id, day_of_week, start_time, end_time)
		)`,

		// Appointments table (date + start/end time model)
		`CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			client_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			therapist_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			start_time TIME NOT NULL,
			end_time TIME NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Assessment definition tree (admin-authored)
		`CREATE TABLE IF NOT EXISTS assessments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS questions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			assessment_id UUID NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
			text VARCHAR(255) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS choices (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			text VARCHAR(100) NOT NULL,
			score INTEGER NOT NULL
		)`,

		// Completed submissions; feedback is an opaque JSON blob
		`CREATE TABLE IF NOT EXISTS user_assessments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			assessment_id UUID NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			feedback TEXT,
			submitted_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// One answer per (submission, question) — enforced here, relied on by the scorer
		`CREATE TABLE IF NOT EXISTS answers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_assessment_id UUID NOT NULL REFERENCES user_assessments(id) ON DELETE CASCADE,
			question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			choice_id UUID NOT NULL REFERENCES choices(id) ON DELETE CASCADE,
			UNIQUE(user_assessment_id, question_id)
		)`,

		// Resource library (admin-curated; exactly one of file_url/link set)
		`CREATE TABLE IF NOT EXISTS resources (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(200) NOT NULL,
			description TEXT,
			file_url TEXT,
			link VARCHAR(500),
			resource_type VARCHAR(50) NOT NULL DEFAULT 'ARTICLE',
			uploaded_by UUID REFERENCES users(id) ON DELETE SET NULL,
			uploaded_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_availability_therapist_day ON availability_slots(therapist_id, day_of_week)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client_date ON appointments(client_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_therapist_date ON appointments(therapist_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_assessment_id ON questions(assessment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_assessments_user_id ON user_assessments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_assessments_submitted_at ON user_assessments(submitted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_user_assessment_id ON answers(user_assessment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_uploaded_at ON resources(uploaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_resources_resource_type ON resources(resource_type)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
