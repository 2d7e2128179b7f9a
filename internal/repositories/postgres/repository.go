package postgres

import (
	"github.com/traindesk/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	quiz    repositories.QuizRepository
	attempt repositories.AttemptRepository
}

// NewRepository builds the Postgres-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		quiz:    NewQuizPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db),
	}
}

func (r *postgresRepository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *postgresRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}
