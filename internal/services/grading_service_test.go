package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traindesk/assessment-engine/internal/cache"
	"github.com/traindesk/assessment-engine/internal/events"
	"github.com/traindesk/assessment-engine/internal/models"
	"github.com/traindesk/assessment-engine/internal/validator"
)

func newGradingFixture(t *testing.T) (GradingService, *fakeRepository, *events.MockEventPublisher, uint) {
	t.Helper()

	repo := newFakeRepository()
	seedQuiz(repo)
	publisher := events.NewMockEventPublisher(serviceTestLogger())

	attemptService := newAttemptService(repo, events.NewMockEventPublisher(serviceTestLogger()))
	resp, err := attemptService.SubmitAnswer(context.Background(), &SubmitAnswerRequest{
		QuizID: 3, QuestionID: 10, UserID: 55, Answer: []byte(`"essay text"`),
	})
	require.NoError(t, err)

	service := NewGradingService(repo, cache.NoopProgressCache{}, publisher, serviceTestLogger(), validator.New())
	return service, repo, publisher, resp.AttemptID
}

func TestGradingService_MarkAnswer(t *testing.T) {
	service, repo, _, attemptID := newGradingFixture(t)
	ctx := context.Background()

	result, err := service.MarkAnswer(ctx, attemptID, &MarkAnswerRequest{
		QuestionID: 10,
		Status:     models.GradeCorrect,
		Assisted:   true,
		GraderID:   7,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(10), result.QuestionID)
	assert.Equal(t, models.GradeCorrect, result.Status)

	answer, err := repo.attempt.GetAnswer(ctx, attemptID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.GradeCorrect, answer.GradeStatus)
	require.NotNil(t, answer.GradedBy)
	assert.Equal(t, uint(7), *answer.GradedBy)
	require.NotNil(t, answer.GradedAt)

	attempt, err := repo.attempt.GetByID(ctx, attemptID)
	require.NoError(t, err)
	assert.True(t, attempt.Assisted, "assisted flag must latch on the attempt")
}

func TestGradingService_MarkAnswer_PendingRejected(t *testing.T) {
	service, _, _, attemptID := newGradingFixture(t)

	_, err := service.MarkAnswer(context.Background(), attemptID, &MarkAnswerRequest{
		QuestionID: 10,
		Status:     models.GradePending,
	})
	assert.ErrorIs(t, err, ErrInvalidGradeStatus)
}

func TestGradingService_CommentAnswer(t *testing.T) {
	service, repo, _, attemptID := newGradingFixture(t)
	ctx := context.Background()

	t.Run("empty comment is rejected before any write", func(t *testing.T) {
		_, err := service.CommentAnswer(ctx, attemptID, &CommentAnswerRequest{
			QuestionID: 10,
			Comment:    "   ",
		})
		assert.ErrorIs(t, err, ErrCommentRequired)

		answer, err := repo.attempt.GetAnswer(ctx, attemptID, 10)
		require.NoError(t, err)
		assert.Nil(t, answer.GradeComment)
	})

	t.Run("comment is trimmed and stored", func(t *testing.T) {
		result, err := service.CommentAnswer(ctx, attemptID, &CommentAnswerRequest{
			QuestionID: 10,
			Comment:    "  cite your sources  ",
			GraderID:   7,
		})
		require.NoError(t, err)
		require.NotNil(t, result.Comment)
		assert.Equal(t, "cite your sources", *result.Comment)

		answer, err := repo.attempt.GetAnswer(ctx, attemptID, 10)
		require.NoError(t, err)
		require.NotNil(t, answer.GradeComment)
		assert.Equal(t, "cite your sources", *answer.GradeComment)
	})
}

func TestGradingService_SubmitFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("empty feedback is rejected", func(t *testing.T) {
		service, _, publisher, attemptID := newGradingFixture(t)
		err := service.SubmitFeedback(ctx, attemptID, &FeedbackRequest{
			Status:   models.AttemptPassed,
			Feedback: " ",
		})
		assert.ErrorIs(t, err, ErrFeedbackRequired)
		assert.Empty(t, publisher.GetPublishedEvents())
	})

	t.Run("non-terminal status is rejected", func(t *testing.T) {
		service, _, _, attemptID := newGradingFixture(t)
		err := service.SubmitFeedback(ctx, attemptID, &FeedbackRequest{
			Status:   models.AttemptCompleted,
			Feedback: "looks good",
		})
		assert.ErrorIs(t, err, ErrInvalidReviewOutcome)
	})

	t.Run("pass verdict closes the review", func(t *testing.T) {
		service, repo, publisher, attemptID := newGradingFixture(t)
		err := service.SubmitFeedback(ctx, attemptID, &FeedbackRequest{
			Status:     models.AttemptPassed,
			Feedback:   "well done",
			ReviewerID: 7,
		})
		require.NoError(t, err)

		attempt, err := repo.attempt.GetByID(ctx, attemptID)
		require.NoError(t, err)
		assert.Equal(t, models.AttemptPassed, attempt.Status)
		require.NotNil(t, attempt.Feedback)
		assert.Equal(t, "well done", *attempt.Feedback)
		require.NotNil(t, attempt.ReviewedAt)
		require.NotNil(t, attempt.ReviewedBy)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAttemptReviewed, published[0].Type)
	})
}

func TestGradingService_ReturnToStudent(t *testing.T) {
	service, repo, publisher, attemptID := newGradingFixture(t)
	ctx := context.Background()

	err := service.ReturnToStudent(ctx, attemptID, &ReviewActionRequest{ReviewerID: 7})
	require.NoError(t, err)

	attempt, err := repo.attempt.GetByID(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptReturned, attempt.Status)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptReturned, published[0].Type)
}

func TestGradingService_EmailResults(t *testing.T) {
	service, _, publisher, attemptID := newGradingFixture(t)

	err := service.EmailResults(context.Background(), attemptID, &ReviewActionRequest{})
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultsEmailed, published[0].Type)
}

func TestGradingService_AttemptNotFound(t *testing.T) {
	service, _, _, _ := newGradingFixture(t)

	_, err := service.MarkAnswer(context.Background(), 404, &MarkAnswerRequest{
		QuestionID: 10,
		Status:     models.GradeCorrect,
	})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGradingService_AnswerNotFound(t *testing.T) {
	service, _, _, attemptID := newGradingFixture(t)

	_, err := service.MarkAnswer(context.Background(), attemptID, &MarkAnswerRequest{
		QuestionID: 999,
		Status:     models.GradeIncorrect,
	})
	assert.ErrorIs(t, err, ErrAnswerNotFound)
}
