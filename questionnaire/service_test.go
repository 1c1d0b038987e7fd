package questionnaire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickoine/know/model"
	"github.com/nickoine/know/pkg/testsupport"
	"github.com/nickoine/know/repository"
)

type adminFixture struct {
	svc            *AdminService
	questionnaires *testsupport.ManagerStub[*model.Questionnaire]
	questions      *testsupport.ManagerStub[*model.Question]
	items          *testsupport.ManagerStub[*model.QuestionnaireQuestion]
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	f := &adminFixture{
		questionnaires: &testsupport.ManagerStub[*model.Questionnaire]{},
		questions:      &testsupport.ManagerStub[*model.Question]{},
		items:          &testsupport.ManagerStub[*model.QuestionnaireQuestion]{},
	}

	qnRepo, err := repository.NewWithManager[*model.Questionnaire](model.QuestionnaireMeta, f.questionnaires)
	require.NoError(t, err)
	qsRepo, err := repository.NewWithManager[*model.Question](model.QuestionMeta, f.questions)
	require.NoError(t, err)
	itemRepo, err := repository.NewWithManager[*model.QuestionnaireQuestion](model.QuestionnaireQuestionMeta, f.items)
	require.NoError(t, err)

	f.svc = NewAdminService(qnRepo, qsRepo, itemRepo, nil)
	return f
}

func TestCreateQuestionnaireStartsAsDraft(t *testing.T) {
	f := newAdminFixture(t)

	var captured map[string]any
	f.questionnaires.CreateInstanceFunc = func(ctx context.Context, fields map[string]any) (*model.Questionnaire, error) {
		captured = fields
		return &model.Questionnaire{ID: 1, Name: "KYC Form 2025", Scope: model.ScopeDraft}, nil
	}

	qn, err := f.svc.CreateQuestionnaire(context.Background(), "KYC Form 2025", "about", model.TypeVerification, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), qn.ID)
	assert.Equal(t, model.ScopeDraft, captured["questionnaire_scope"])
	assert.Equal(t, model.TypeVerification, captured["questionnaire_type"])
	assert.Equal(t, int64(7), captured["staff_id"])
}

func TestCreateQuestionnaireRejectsUnknownType(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.CreateQuestionnaire(context.Background(), "X", "", "casual", 0)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Empty(t, f.questionnaires.Calls)
}

func TestListQuestionnairesFilters(t *testing.T) {
	f := newAdminFixture(t)
	f.questionnaires.CountFunc = func(ctx context.Context, filters map[string]any) (int, error) {
		return 1, nil
	}
	var seen map[string]any
	f.questionnaires.FilterFunc = func(ctx context.Context, filters map[string]any, limit, offset int) ([]*model.Questionnaire, error) {
		seen = filters
		return []*model.Questionnaire{{ID: 1}}, nil
	}

	page, err := f.svc.ListQuestionnaires(context.Background(), model.ScopePublic, model.TypeRegular, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, map[string]any{
		"questionnaire_scope": model.ScopePublic,
		"questionnaire_type":  model.TypeRegular,
	}, seen)
}

func TestListQuestionnairesRejectsBadFilters(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.ListQuestionnaires(context.Background(), "secret", "", 1, 20)
	assert.ErrorIs(t, err, ErrUnknownScope)

	_, err = f.svc.ListQuestionnaires(context.Background(), "", "casual", 1, 20)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestAddQuestion(t *testing.T) {
	f := newAdminFixture(t)
	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{ID: id}, true, nil
	}
	f.questions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Question, bool, error) {
		return &model.Question{ID: id}, true, nil
	}

	var captured map[string]any
	f.items.CreateInstanceFunc = func(ctx context.Context, fields map[string]any) (*model.QuestionnaireQuestion, error) {
		captured = fields
		return &model.QuestionnaireQuestion{ID: 1, QuestionnaireID: 10, QuestionID: 20, OrderIndex: 3}, nil
	}

	item, err := f.svc.AddQuestion(context.Background(), 10, 20, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, map[string]any{
		"questionnaire_id": int64(10),
		"question_id":      int64(20),
		"order_index":      3,
	}, captured)
	// Both the pair check and the order-index check ran.
	assert.Equal(t, 2, f.items.CallCount("Exists"))
}

func TestAddQuestionMissingParents(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.AddQuestion(context.Background(), 10, 20, 1)
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)

	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{ID: id}, true, nil
	}
	_, err = f.svc.AddQuestion(context.Background(), 10, 20, 1)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestAddQuestionCollisions(t *testing.T) {
	f := newAdminFixture(t)
	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{ID: id}, true, nil
	}
	f.questions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Question, bool, error) {
		return &model.Question{ID: id}, true, nil
	}

	// The same question is already in the questionnaire.
	f.items.ExistsFunc = func(ctx context.Context, filters map[string]any) (bool, error) {
		_, byQuestion := filters["question_id"]
		return byQuestion, nil
	}
	_, err := f.svc.AddQuestion(context.Background(), 10, 20, 1)
	assert.ErrorIs(t, err, ErrQuestionTaken)

	// The position is occupied by another question.
	f.items.ExistsFunc = func(ctx context.Context, filters map[string]any) (bool, error) {
		_, byOrder := filters["order_index"]
		return byOrder, nil
	}
	_, err = f.svc.AddQuestion(context.Background(), 10, 20, 1)
	assert.ErrorIs(t, err, ErrOrderTaken)

	assert.Zero(t, f.items.CallCount("CreateInstance"))
}

func TestPublishQuestionnaire(t *testing.T) {
	f := newAdminFixture(t)
	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{ID: id, Scope: model.ScopeDraft}, true, nil
	}
	var captured map[string]any
	f.questionnaires.UpdateInstanceFunc = func(ctx context.Context, record *model.Questionnaire, fields map[string]any) error {
		captured = fields
		return nil
	}

	_, err := f.svc.PublishQuestionnaire(context.Background(), 5, model.ScopePublic)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questionnaire_scope": model.ScopePublic}, captured)
}

func TestPublishQuestionnaireRejectsDraftScope(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.PublishQuestionnaire(context.Background(), 5, model.ScopeDraft)
	assert.ErrorIs(t, err, ErrUnknownScope)

	_, err = f.svc.PublishQuestionnaire(context.Background(), 5, "hidden")
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestPublishQuestionnaireNotFound(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.PublishQuestionnaire(context.Background(), 5, model.ScopePublic)
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
}
