package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

func (a *app) importCmd() *cobra.Command {
	var studentID, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a student's profile and records into the database",
		Long: `Import replaces the stored profile and records of one student with the
contents of a JSON or YAML file and drops the student's cached analyses.
Every record is validated; one malformed row rejects the whole file.

Requires DATABASE_URL and REDIS_URL.`,
		Example: "  pulsectl import --student S001 --file s001.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var doc models.StudentImport
			if err := readDocument(file, &doc); err != nil {
				return err
			}

			b, err := a.connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer b.close()

			svc := service.New(b.store, b.cache, nil, service.Options{Logger: a.logger})
			res, err := svc.ImportStudent(cmd.Context(), studentID, doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"imported %s: %d grades, %d attendance, %d study habits (%d cached analyses dropped)\n",
				res.Student.ID, res.Grades, res.Attendance, res.StudyHabits, res.Invalidated)
			return err
		},
	}
	cmd.Flags().StringVarP(&studentID, "student", "s", "", "student id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "import file (.json, .yaml)")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
