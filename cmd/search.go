package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/orchestrate"
)

var (
	searchQuery        string
	searchLocation     string
	searchSkills       []string
	searchKeywords     []string
	searchRoles        []string
	searchSources      []string
	searchBudgetSecs   int
	searchLimit        int
	searchCriteriaFile string
	searchSave         bool
	searchShowProgress bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one sourcing search",
	Long: `Runs the full pipeline for one set of criteria: concurrent collection from
the selected sources, deduplication into canonical profiles, scoring, and
assembly. The payload is written to stdout as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := loadCriteria()
		if err != nil {
			return err
		}

		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}

		var (
			progress     chan orchestrate.Phase
			progressDone <-chan struct{}
		)
		if searchShowProgress {
			progress = make(chan orchestrate.Phase, 8)
			orch = orch.WithProgress(progress)
			progressDone = streamProgress(progress, os.Stderr)
		}

		result, err := orch.Run(cmd.Context(), criteria)
		if progress != nil {
			// Run has sent its last phase; close so the printer drains and exits.
			close(progress)
			<-progressDone
		}
		if err != nil {
			return err
		}

		if searchSave {
			st, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveRun(cmd.Context(), result); err != nil {
				return err
			}
			n, err := st.UpsertProfiles(cmd.Context(), result.RunID, result.Candidates)
			if err != nil {
				return err
			}
			zap.L().Info("profiles persisted", zap.Int("count", n))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	},
}

// streamProgress prints phase transitions until the channel is closed. The
// returned channel closes once the printer has drained, so the caller can
// close the progress channel and wait instead of leaking the goroutine.
func streamProgress(ch <-chan orchestrate.Phase, w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for phase := range ch {
			fmt.Fprintf(w, "… %s\n", phase)
		}
	}()
	return done
}

// loadCriteria builds SearchCriteria from the criteria file or flags. Flags
// override file values.
func loadCriteria() (model.SearchCriteria, error) {
	var criteria model.SearchCriteria

	if searchCriteriaFile != "" {
		data, err := os.ReadFile(searchCriteriaFile)
		if err != nil {
			return criteria, eris.Wrap(err, "read criteria file")
		}
		if err := json.Unmarshal(data, &criteria); err != nil {
			return criteria, eris.Wrap(err, "parse criteria file")
		}
	}

	if searchQuery != "" {
		criteria.Query = searchQuery
	}
	if searchLocation != "" {
		criteria.Location = searchLocation
	}
	if len(searchSkills) > 0 {
		criteria.Skills = searchSkills
	}
	if len(searchKeywords) > 0 {
		criteria.Keywords = searchKeywords
	}
	if len(searchRoles) > 0 {
		criteria.RoleTypes = searchRoles
	}
	if len(searchSources) > 0 {
		criteria.Sources = searchSources
	}
	if searchBudgetSecs > 0 {
		criteria.TimeBudgetSecs = searchBudgetSecs
	}
	if searchLimit > 0 {
		criteria.Limit = searchLimit
	}

	if criteria.TimeBudgetSecs <= 0 {
		criteria.TimeBudgetSecs = cfg.Search.DefaultBudgetSecs
	}
	if criteria.Limit <= 0 {
		criteria.Limit = cfg.Search.DefaultLimit
	}

	return criteria, nil
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "free-text query")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "normalized location filter")
	searchCmd.Flags().StringSliceVar(&searchSkills, "skills", nil, "skill terms")
	searchCmd.Flags().StringSliceVar(&searchKeywords, "keywords", nil, "keyword terms")
	searchCmd.Flags().StringSliceVar(&searchRoles, "roles", nil, "role type terms")
	searchCmd.Flags().StringSliceVar(&searchSources, "sources", []string{"github", "stackoverflow", "linkedin", "websearch"}, "source allow-list")
	searchCmd.Flags().IntVar(&searchBudgetSecs, "budget", 0, "time budget in seconds")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max candidates to return")
	searchCmd.Flags().StringVar(&searchCriteriaFile, "criteria", "", "JSON criteria file (flags override)")
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "persist the run and upsert profiles")
	searchCmd.Flags().BoolVar(&searchShowProgress, "progress", false, "print phase transitions to stderr")

	rootCmd.AddCommand(searchCmd)
}
