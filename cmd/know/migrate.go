package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nickoine/know/internal/logging"
	"github.com/nickoine/know/model"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  `Create all platform tables if they do not already exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

// tables lists every model in creation order; join and referencing tables
// come after the tables they point at.
var tables = []any{
	(*model.User)(nil),
	(*model.Questionnaire)(nil),
	(*model.Question)(nil),
	(*model.QuestionnaireQuestion)(nil),
	(*model.SubmissionPayload)(nil),
	(*model.Submission)(nil),
}

func migrate(ctx context.Context) error {
	db := container.DB()
	log := logging.ForComponent("migrate")

	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	log.WithField("tables", len(tables)).Info("schema up to date")
	return nil
}
