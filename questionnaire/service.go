// Package questionnaire holds the admin-side business logic for building
// and publishing questionnaires on top of the cached repositories.
package questionnaire

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nickoine/know/model"
	"github.com/nickoine/know/repository"
)

// Validation failures surfaced to API callers.
var (
	ErrUnknownType      = fmt.Errorf("questionnaire: unknown questionnaire type")
	ErrUnknownScope     = fmt.Errorf("questionnaire: unknown questionnaire scope")
	ErrQuestionTaken    = fmt.Errorf("questionnaire: question already added to questionnaire")
	ErrOrderTaken       = fmt.Errorf("questionnaire: order index already used in questionnaire")
	ErrQuestionnaireNotFound = fmt.Errorf("questionnaire: questionnaire not found")
	ErrQuestionNotFound  = fmt.Errorf("questionnaire: question not found")
)

// AdminService encapsulates staff operations over questionnaires. All data
// access goes through the cached repositories so listings benefit from the
// collection caches.
type AdminService struct {
	questionnaires *repository.Repository[*model.Questionnaire]
	questions      *repository.Repository[*model.Question]
	items          *repository.Repository[*model.QuestionnaireQuestion]
	log            *logrus.Entry
}

func NewAdminService(
	questionnaires *repository.Repository[*model.Questionnaire],
	questions *repository.Repository[*model.Question],
	items *repository.Repository[*model.QuestionnaireQuestion],
	log *logrus.Entry,
) *AdminService {
	if log == nil {
		log = logrus.StandardLogger().WithField("service", "questionnaire_admin")
	}
	return &AdminService{
		questionnaires: questionnaires,
		questions:      questions,
		items:          items,
		log:            log,
	}
}

// ListQuestionnaires returns one page of questionnaires, optionally
// narrowed by scope and type.
func (s *AdminService) ListQuestionnaires(ctx context.Context, scope, questionnaireType string, page, perPage int) (*repository.Page[*model.Questionnaire], error) {
	filters := map[string]any{}
	if scope != "" {
		if !model.ValidScope(scope) {
			return nil, ErrUnknownScope
		}
		filters["questionnaire_scope"] = scope
	}
	if questionnaireType != "" {
		if !model.ValidType(questionnaireType) {
			return nil, ErrUnknownType
		}
		filters["questionnaire_type"] = questionnaireType
	}
	if len(filters) == 0 {
		filters = nil
	}
	return s.questionnaires.Paginate(ctx, page, perPage, filters)
}

// CreateQuestionnaire persists a new questionnaire in the draft scope.
func (s *AdminService) CreateQuestionnaire(ctx context.Context, name, about, questionnaireType string, staffID int64) (*model.Questionnaire, error) {
	if !model.ValidType(questionnaireType) {
		return nil, ErrUnknownType
	}

	fields := map[string]any{
		"name":                name,
		"about":               about,
		"questionnaire_type":  questionnaireType,
		"questionnaire_scope": model.ScopeDraft,
	}
	if staffID > 0 {
		fields["staff_id"] = staffID
	}
	return s.questionnaires.Create(ctx, fields)
}

// CreateQuestion persists a reusable question item.
func (s *AdminService) CreateQuestion(ctx context.Context, questionType, referenceCode, text string, rules map[string]any, staffID int64) (*model.Question, error) {
	fields := map[string]any{
		"question_type":  questionType,
		"reference_code": referenceCode,
		"text":           text,
	}
	if len(rules) > 0 {
		fields["validation_rules"] = rules
	}
	if staffID > 0 {
		fields["staff_id"] = staffID
	}
	return s.questions.Create(ctx, fields)
}

// AddQuestion places a question into a questionnaire at orderIndex. The
// question must not already be present, and the position must be free.
func (s *AdminService) AddQuestion(ctx context.Context, questionnaireID, questionID int64, orderIndex int) (*model.QuestionnaireQuestion, error) {
	if _, ok, err := s.questionnaires.GetByID(ctx, questionnaireID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrQuestionnaireNotFound
	}
	if _, ok, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrQuestionNotFound
	}

	taken, err := s.items.Exists(ctx, map[string]any{
		"questionnaire_id": questionnaireID,
		"question_id":      questionID,
	})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrQuestionTaken
	}

	occupied, err := s.items.Exists(ctx, map[string]any{
		"questionnaire_id": questionnaireID,
		"order_index":      orderIndex,
	})
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, ErrOrderTaken
	}

	return s.items.Create(ctx, map[string]any{
		"questionnaire_id": questionnaireID,
		"question_id":      questionID,
		"order_index":      orderIndex,
	})
}

// PublishQuestionnaire moves a questionnaire out of draft into the public
// or assigned scope.
func (s *AdminService) PublishQuestionnaire(ctx context.Context, id int64, scope string) (*model.Questionnaire, error) {
	if scope != model.ScopePublic && scope != model.ScopeAssigned {
		return nil, ErrUnknownScope
	}

	updated, ok, err := s.questionnaires.Update(ctx, id, map[string]any{
		"questionnaire_scope": scope,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuestionnaireNotFound
	}

	s.log.WithFields(logrus.Fields{"questionnaire_id": id, "scope": scope}).Info("questionnaire published")
	return updated, nil
}
