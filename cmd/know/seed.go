package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nickoine/know/internal/logging"
	"github.com/nickoine/know/model"
	"github.com/nickoine/know/pkg/di"
	"github.com/nickoine/know/questionnaire"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load development seed data",
	Long:  `Create a staff user and a published sample questionnaire with a few questions. Runs the schema migration first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed(cmd.Context())
	},
}

func seed(ctx context.Context) error {
	if err := migrate(ctx); err != nil {
		return err
	}

	log := logging.ForComponent("seed")

	users, err := di.NewRepository(container, model.UserMeta, func() *model.User { return &model.User{} })
	if err != nil {
		return err
	}
	questionnaires, err := di.NewRepository(container, model.QuestionnaireMeta, func() *model.Questionnaire { return &model.Questionnaire{} })
	if err != nil {
		return err
	}
	questions, err := di.NewRepository(container, model.QuestionMeta, func() *model.Question { return &model.Question{} })
	if err != nil {
		return err
	}
	items, err := di.NewRepository(container, model.QuestionnaireQuestionMeta, func() *model.QuestionnaireQuestion { return &model.QuestionnaireQuestion{} })
	if err != nil {
		return err
	}

	staff, err := users.Create(ctx, map[string]any{
		"username":            "admin",
		"email":               "admin@example.com",
		"registration_method": model.RegistrationEmail,
		"is_staff":            true,
		"is_active":           true,
	})
	if err != nil {
		return err
	}

	admin := questionnaire.NewAdminService(questionnaires, questions, items, nil)

	qn, err := admin.CreateQuestionnaire(ctx, "KYC Form 2025", "Identity verification for new accounts", model.TypeVerification, staff.ID)
	if err != nil {
		return err
	}

	seedQuestions := []struct {
		qtype string
		code  string
		text  string
		rules map[string]any
	}{
		{"text", "FULL_LEGAL_NAME", "What is your full legal name?", map[string]any{"min_length": 2, "max_length": 100}},
		{"date", "DATE_OF_BIRTH", "What is your date of birth?", nil},
		{"text", "TAX_ID_VERIFICATION", "What is your tax identification number?", map[string]any{"min_length": 6}},
	}
	for i, sq := range seedQuestions {
		q, err := admin.CreateQuestion(ctx, sq.qtype, sq.code, sq.text, sq.rules, staff.ID)
		if err != nil {
			return err
		}
		if _, err := admin.AddQuestion(ctx, qn.ID, q.ID, i+1); err != nil {
			return err
		}
	}

	if _, err := admin.PublishQuestionnaire(ctx, qn.ID, model.ScopePublic); err != nil {
		return err
	}

	log.WithField("questionnaire_id", qn.ID).Info("seed data loaded")
	return nil
}
