// Package submission implements the intake and review lifecycle for
// questionnaire submissions.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nickoine/know/model"
	"github.com/nickoine/know/repository"
)

var (
	ErrDuplicate             = fmt.Errorf("submission: user already submitted this questionnaire")
	ErrQuestionnaireNotFound = fmt.Errorf("submission: questionnaire not found")
	ErrQuestionnaireDraft    = fmt.Errorf("submission: questionnaire is not published")
	ErrNotFound              = fmt.Errorf("submission: submission not found")
	ErrEmptyPayload          = fmt.Errorf("submission: payload must not be empty")
	ErrBadTransition         = fmt.Errorf("submission: illegal status transition")
)

// legalTransitions maps a current status to the statuses reviewers may
// move it to. Approved and rejected are terminal; failed submissions may
// be re-opened as pending for another attempt.
var legalTransitions = map[string][]string{
	model.StatusSubmitted: {model.StatusPending, model.StatusCompleted, model.StatusFailed},
	model.StatusPending:   {model.StatusCompleted, model.StatusApproved, model.StatusRejected, model.StatusFailed},
	model.StatusCompleted: {model.StatusApproved, model.StatusRejected},
	model.StatusFailed:    {model.StatusPending},
}

// Service handles submission intake and status review.
type Service struct {
	submissions    *repository.Repository[*model.Submission]
	payloads       *repository.Repository[*model.SubmissionPayload]
	questionnaires *repository.Repository[*model.Questionnaire]
	log            *logrus.Entry
	now            func() time.Time
}

func NewService(
	submissions *repository.Repository[*model.Submission],
	payloads *repository.Repository[*model.SubmissionPayload],
	questionnaires *repository.Repository[*model.Questionnaire],
	log *logrus.Entry,
) *Service {
	if log == nil {
		log = logrus.StandardLogger().WithField("service", "submission")
	}
	return &Service{
		submissions:    submissions,
		payloads:       payloads,
		questionnaires: questionnaires,
		log:            log,
		now:            time.Now,
	}
}

// Submit records one user's answers for a published questionnaire. The
// payload row is persisted first so the submission never points at a blob
// that failed to write. Each submission is issued a uuid reference for
// external callers.
func (s *Service) Submit(ctx context.Context, userID, questionnaireID int64, payload map[string]any) (*model.Submission, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	qn, ok, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuestionnaireNotFound
	}
	if qn.Scope == model.ScopeDraft {
		return nil, ErrQuestionnaireDraft
	}

	dup, err := s.submissions.Exists(ctx, map[string]any{
		"user_id":          userID,
		"questionnaire_id": questionnaireID,
	})
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicate
	}

	blob, err := s.payloads.Create(ctx, map[string]any{"payload": payload})
	if err != nil {
		return nil, err
	}

	sub, err := s.submissions.Create(ctx, map[string]any{
		"reference":           uuid.NewString(),
		"submission_status":   model.StatusSubmitted,
		"questionnaire_id":    questionnaireID,
		"questionnaire_type":  qn.Type,
		"questionnaire_scope": qn.Scope,
		"user_id":             userID,
		"payload_id":          blob.ID,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"submission_id":    sub.ID,
		"reference":        sub.Reference,
		"questionnaire_id": questionnaireID,
	}).Info("submission recorded")
	return sub, nil
}

// SetStatus moves a submission to a new status, enforcing the review
// lifecycle. staffID attributes manual approvals and rejections.
func (s *Service) SetStatus(ctx context.Context, id int64, status string, staffID int64) (*model.Submission, error) {
	current, ok, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	if !transitionAllowed(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, status)
	}

	fields := map[string]any{
		"submission_status": status,
		"patched_at":        s.now(),
	}
	if status == model.StatusFailed {
		fields["is_failed"] = true
	}
	if staffID > 0 {
		fields["staff_id"] = staffID
	}

	updated, ok, err := s.submissions.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return updated, nil
}

// ListByStatus returns one page of submissions in the given status, most
// useful for review queues, or all submissions when status is empty.
func (s *Service) ListByStatus(ctx context.Context, status string, page, perPage int) (*repository.Page[*model.Submission], error) {
	var filters map[string]any
	if status != "" {
		filters = map[string]any{"submission_status": status}
	}
	return s.submissions.Paginate(ctx, page, perPage, filters)
}

// Payload fetches the response blob behind a submission.
func (s *Service) Payload(ctx context.Context, submissionID int64) (*model.SubmissionPayload, error) {
	sub, ok, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !ok || sub.PayloadID == 0 {
		return nil, ErrNotFound
	}

	blob, ok, err := s.payloads.GetByID(ctx, sub.PayloadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return blob, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
