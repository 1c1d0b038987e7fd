package submission

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickoine/know/model"
	"github.com/nickoine/know/pkg/testsupport"
	"github.com/nickoine/know/repository"
)

type fixture struct {
	svc            *Service
	submissions    *testsupport.ManagerStub[*model.Submission]
	payloads       *testsupport.ManagerStub[*model.SubmissionPayload]
	questionnaires *testsupport.ManagerStub[*model.Questionnaire]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		submissions:    &testsupport.ManagerStub[*model.Submission]{},
		payloads:       &testsupport.ManagerStub[*model.SubmissionPayload]{},
		questionnaires: &testsupport.ManagerStub[*model.Questionnaire]{},
	}

	subRepo, err := repository.NewWithManager[*model.Submission](model.SubmissionMeta, f.submissions)
	require.NoError(t, err)
	payloadRepo, err := repository.NewWithManager[*model.SubmissionPayload](model.SubmissionPayloadMeta, f.payloads)
	require.NoError(t, err)
	qnRepo, err := repository.NewWithManager[*model.Questionnaire](model.QuestionnaireMeta, f.questionnaires)
	require.NoError(t, err)

	f.svc = NewService(subRepo, payloadRepo, qnRepo, nil)
	return f
}

func (f *fixture) publishedQuestionnaire() {
	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{
			ID:    id,
			Type:  model.TypeVerification,
			Scope: model.ScopePublic,
		}, true, nil
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	f.publishedQuestionnaire()

	f.payloads.CreateInstanceFunc = func(ctx context.Context, fields map[string]any) (*model.SubmissionPayload, error) {
		return &model.SubmissionPayload{ID: 55, Payload: fields["payload"].(map[string]any)}, nil
	}

	var captured map[string]any
	f.submissions.CreateInstanceFunc = func(ctx context.Context, fields map[string]any) (*model.Submission, error) {
		captured = fields
		return &model.Submission{ID: 1, Reference: fields["reference"].(string), Status: model.StatusSubmitted}, nil
	}

	sub, err := f.svc.Submit(context.Background(), 3, 10, map[string]any{"FULL_LEGAL_NAME": "Alice Doe"})
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, model.StatusSubmitted, captured["submission_status"])
	assert.Equal(t, int64(3), captured["user_id"])
	assert.Equal(t, int64(10), captured["questionnaire_id"])
	assert.Equal(t, model.TypeVerification, captured["questionnaire_type"])
	assert.Equal(t, model.ScopePublic, captured["questionnaire_scope"])
	assert.Equal(t, int64(55), captured["payload_id"], "payload row is persisted first")

	_, err = uuid.Parse(captured["reference"].(string))
	assert.NoError(t, err, "reference must be a uuid")
}

func TestSubmitRejectsEmptyPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), 3, 10, nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.Empty(t, f.questionnaires.Calls)
}

func TestSubmitMissingQuestionnaire(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), 3, 10, map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
}

func TestSubmitRejectsDraftQuestionnaire(t *testing.T) {
	f := newFixture(t)
	f.questionnaires.GetByIDFunc = func(ctx context.Context, id int64) (*model.Questionnaire, bool, error) {
		return &model.Questionnaire{ID: id, Scope: model.ScopeDraft}, true, nil
	}

	_, err := f.svc.Submit(context.Background(), 3, 10, map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrQuestionnaireDraft)
	assert.Zero(t, f.payloads.CallCount("CreateInstance"))
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.publishedQuestionnaire()
	f.submissions.ExistsFunc = func(ctx context.Context, filters map[string]any) (bool, error) {
		return true, nil
	}

	_, err := f.svc.Submit(context.Background(), 3, 10, map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Zero(t, f.payloads.CallCount("CreateInstance"), "no payload row for a rejected submission")
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{model.StatusSubmitted, model.StatusPending, true},
		{model.StatusSubmitted, model.StatusCompleted, true},
		{model.StatusSubmitted, model.StatusApproved, false},
		{model.StatusPending, model.StatusApproved, true},
		{model.StatusPending, model.StatusRejected, true},
		{model.StatusCompleted, model.StatusApproved, true},
		{model.StatusFailed, model.StatusPending, true},
		{model.StatusApproved, model.StatusRejected, false},
		{model.StatusRejected, model.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			f := newFixture(t)
			f.submissions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Submission, bool, error) {
				return &model.Submission{ID: id, Status: tt.from}, true, nil
			}

			_, err := f.svc.SetStatus(context.Background(), 1, tt.to, 9)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadTransition)
			}
		})
	}
}

func TestSetStatusRecordsReviewer(t *testing.T) {
	f := newFixture(t)
	f.submissions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Submission, bool, error) {
		return &model.Submission{ID: id, Status: model.StatusPending}, true, nil
	}
	var captured map[string]any
	f.submissions.UpdateInstanceFunc = func(ctx context.Context, record *model.Submission, fields map[string]any) error {
		captured = fields
		return nil
	}

	_, err := f.svc.SetStatus(context.Background(), 1, model.StatusFailed, 9)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, captured["submission_status"])
	assert.Equal(t, true, captured["is_failed"])
	assert.Equal(t, int64(9), captured["staff_id"])
	assert.NotNil(t, captured["patched_at"])
}

func TestSetStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(context.Background(), 1, model.StatusPending, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByStatus(t *testing.T) {
	f := newFixture(t)
	f.submissions.CountFunc = func(ctx context.Context, filters map[string]any) (int, error) {
		return 2, nil
	}
	var seen map[string]any
	f.submissions.FilterFunc = func(ctx context.Context, filters map[string]any, limit, offset int) ([]*model.Submission, error) {
		seen = filters
		return []*model.Submission{{ID: 1}, {ID: 2}}, nil
	}

	page, err := f.svc.ListByStatus(context.Background(), model.StatusPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, map[string]any{"submission_status": model.StatusPending}, seen)
}

func TestPayload(t *testing.T) {
	f := newFixture(t)
	f.submissions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Submission, bool, error) {
		return &model.Submission{ID: id, PayloadID: 55}, true, nil
	}
	f.payloads.GetByIDFunc = func(ctx context.Context, id int64) (*model.SubmissionPayload, bool, error) {
		return &model.SubmissionPayload{ID: id, Payload: map[string]any{"a": "b"}}, true, nil
	}

	blob, err := f.svc.Payload(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(55), blob.ID)
}

func TestPayloadMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Payload(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// Submission exists but has no payload attached.
	f.submissions.GetByIDFunc = func(ctx context.Context, id int64) (*model.Submission, bool, error) {
		return &model.Submission{ID: id}, true, nil
	}
	_, err = f.svc.Payload(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
