package model

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/nickoine/know/repository"
)

// Submission lifecycle states.
const (
	StatusSubmitted = "submitted"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

var (
	SubmissionMeta        = repository.Metadata{Namespace: "submission", Name: "submission"}
	SubmissionPayloadMeta = repository.Metadata{Namespace: "submission", Name: "submission_payload"}
)

// Submission records one user's answer set for a questionnaire. Reference
// is an externally shareable identifier; the questionnaire type and scope
// are denormalised at submit time so status reports survive questionnaire
// edits. A user submits a given questionnaire at most once.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:sub"`

	ID                 int64     `bun:"id,pk,autoincrement"`
	Reference          string    `bun:"reference,notnull,unique"`
	Status             string    `bun:"submission_status,notnull"`
	QuestionnaireID    int64     `bun:"questionnaire_id,nullzero,unique:uq_user_questionnaire"`
	QuestionnaireType  string    `bun:"questionnaire_type,notnull"`
	QuestionnaireScope string    `bun:"questionnaire_scope,notnull"`
	UserID             int64     `bun:"user_id,nullzero,unique:uq_user_questionnaire"`
	PayloadID          int64     `bun:"payload_id,nullzero"`
	StaffID            int64     `bun:"staff_id,nullzero"`
	IsFailed           bool      `bun:"is_failed"`
	IsOrphan           bool      `bun:"is_orphan"`
	SubmittedAt        time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
	PatchedAt          time.Time `bun:"patched_at,nullzero"`
}

func (s *Submission) GetID() int64 { return s.ID }

func (s *Submission) ApplyFields(fields map[string]any) error {
	return assignFields(s, fields)
}

// SubmissionPayload holds the full response content for one submission as
// a JSON blob, persisted before the submission row that points at it.
type SubmissionPayload struct {
	bun.BaseModel `bun:"table:submission_payloads,alias:sp"`

	ID      int64          `bun:"id,pk,autoincrement"`
	Payload map[string]any `bun:"payload,notnull"`
	SavedAt time.Time      `bun:"saved_at,nullzero,notnull,default:current_timestamp"`
}

func (p *SubmissionPayload) GetID() int64 { return p.ID }

func (p *SubmissionPayload) ApplyFields(fields map[string]any) error {
	return assignFields(p, fields)
}
