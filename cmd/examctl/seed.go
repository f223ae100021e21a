package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/bundled"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	pgRepo "github.com/RoutinizeWellness/aviate-ace-sub001/internal/repository/postgres"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Загрузить встроенные наборы вопросов в PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		sets, err := bundled.StandardSets()
		if err != nil {
			return err
		}
		report, err := seedQuestions(cmd.Context(), pgRepo.NewQuestionRepo(db), sets)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "prepared=%d inserted=%d skipped_invalid=%d\n",
			report.Prepared, report.Inserted, report.Invalid)
		return nil
	},
}

// seedReport: итог загрузки наборов
type seedReport struct {
	Prepared int
	Inserted int64
	Invalid  int
}

// seedQuestions нормализует записи наборов и вставляет их пачкой.
// Невалидные записи пропускаются, повторяющиеся ID внутри наборов берутся один раз.
func seedQuestions(ctx context.Context, repo repository.QuestionRepository, sets []bundled.QuestionSet) (seedReport, error) {
	var report seedReport
	seen := make(map[string]struct{})
	questions := make([]entity.Question, 0)

	for _, set := range sets {
		for _, raw := range set.Questions {
			if raw.Aircraft == "" && raw.AircraftType == "" {
				raw.Aircraft = set.Aircraft
			}
			q, err := examengine.NormalizeRecord(raw, entity.SourceStatic)
			if err != nil {
				log.Printf("[Seed] WARNING: запись %q из набора %s пропущена: %v", raw.ID, set.Name, err)
				report.Invalid++
				continue
			}
			if _, dup := seen[q.ID]; dup {
				continue
			}
			seen[q.ID] = struct{}{}
			questions = append(questions, q)
		}
	}
	report.Prepared = len(questions)
	if len(questions) == 0 {
		return report, nil
	}

	inserted, err := repo.CreateBatch(ctx, questions)
	if err != nil {
		return report, fmt.Errorf("seed questions: %w", err)
	}
	report.Inserted = inserted
	return report, nil
}
