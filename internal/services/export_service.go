package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable reports for reviewed attempts.
type ExportService interface {
	ExportAttemptResults(ctx context.Context, attemptID uint) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportAttemptResults renders one attempt as an Excel workbook: one row per
// answered question with the stored value and the trainer's grade.
func (s *exportService) ExportAttemptResults(ctx context.Context, attemptID uint) ([]byte, error) {
	s.logger.Info("Exporting attempt results", "attempt_id", attemptID)

	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Question", "Type", "Answer", "File", "Grade", "Comment", "Graded At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	questionsByID := make(map[uint]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionsByID[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	for rowIndex, answer := range attempt.Answers {
		row := rowIndex + 2
		values := make([]interface{}, len(headers))

		if question, ok := questionsByID[answer.QuestionID]; ok {
			values[0] = question.Content
			values[1] = string(question.AnswerType)
		} else {
			values[0] = fmt.Sprintf("question %d", answer.QuestionID)
		}
		values[2] = string(answer.Value)
		if answer.FileName != nil {
			values[3] = *answer.FileName
		}
		values[4] = string(answer.GradeStatus)
		if answer.GradeComment != nil {
			values[5] = *answer.GradeComment
		}
		if answer.GradedAt != nil {
			values[6] = answer.GradedAt.Format("2006-01-02 15:04:05")
		}

		for colIndex, value := range values {
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
