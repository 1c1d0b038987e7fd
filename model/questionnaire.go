package model

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/nickoine/know/repository"
)

// Questionnaire classification.
const (
	TypeRegular      = "regular"
	TypeVerification = "verification"
	TypeMandatory    = "mandatory"
)

// Questionnaire publication state. New questionnaires start as drafts.
const (
	ScopeDraft    = "draft"
	ScopePublic   = "public"
	ScopeAssigned = "assigned"
)

// Cache metadata for the questionnaire app's models. The namespace groups
// all of the app's cache keys under one prefix.
var (
	QuestionnaireMeta         = repository.Metadata{Namespace: "questionnaire", Name: "questionnaire"}
	QuestionMeta              = repository.Metadata{Namespace: "questionnaire", Name: "question"}
	QuestionnaireQuestionMeta = repository.Metadata{Namespace: "questionnaire", Name: "questionnaire_question"}
)

// Questionnaire is a named form composed of ordered questions.
type Questionnaire struct {
	bun.BaseModel `bun:"table:questionnaires,alias:qn"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	About     string    `bun:"about"`
	Type      string    `bun:"questionnaire_type,notnull"`
	Scope     string    `bun:"questionnaire_scope,notnull"`
	StaffID   int64     `bun:"staff_id,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (q *Questionnaire) GetID() int64 { return q.ID }

func (q *Questionnaire) ApplyFields(fields map[string]any) error {
	return assignFields(q, fields)
}

// ValidType reports whether t is a recognised questionnaire type.
func ValidType(t string) bool {
	return t == TypeRegular || t == TypeVerification || t == TypeMandatory
}

// ValidScope reports whether s is a recognised questionnaire scope.
func ValidScope(s string) bool {
	return s == ScopeDraft || s == ScopePublic || s == ScopeAssigned
}

// Question is a reusable question item identified by a unique reference
// code, e.g. "TAX_ID_VERIFICATION".
type Question struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID              int64          `bun:"id,pk,autoincrement"`
	QuestionType    string         `bun:"question_type,notnull"`
	ReferenceCode   string         `bun:"reference_code,notnull,unique"`
	Text            string         `bun:"text,notnull"`
	ValidationRules map[string]any `bun:"validation_rules"`
	StaffID         int64          `bun:"staff_id,nullzero"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (q *Question) GetID() int64 { return q.ID }

func (q *Question) ApplyFields(fields map[string]any) error {
	return assignFields(q, fields)
}

// QuestionnaireQuestion places a question inside a questionnaire at a
// specific position. A question appears at most once per questionnaire.
type QuestionnaireQuestion struct {
	bun.BaseModel `bun:"table:questionnaire_questions,alias:qq"`

	ID              int64 `bun:"id,pk,autoincrement"`
	QuestionnaireID int64 `bun:"questionnaire_id,notnull,unique:qq_pair"`
	QuestionID      int64 `bun:"question_id,notnull,unique:qq_pair"`
	OrderIndex      int   `bun:"order_index,notnull"`
}

func (q *QuestionnaireQuestion) GetID() int64 { return q.ID }

func (q *QuestionnaireQuestion) ApplyFields(fields map[string]any) error {
	return assignFields(q, fields)
}
