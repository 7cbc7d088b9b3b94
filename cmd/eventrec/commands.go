package main

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/eventrec/config"
	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/filter"
	"github.com/rushteam/eventrec/learning"
	"github.com/rushteam/eventrec/logging"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/recommend"
)

func newLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Append or list interaction records",
	}

	var userID, eventID, action string
	add := &cobra.Command{
		Use:   "add",
		Short: "Append one interaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.log.Add(commandContext(cmd), core.Interaction{
				UserID:  userID,
				EventID: eventID,
				Action:  action,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	add.Flags().StringVar(&userID, "user", "", "user id")
	add.Flags().StringVar(&eventID, "event", "", "event id")
	add.Flags().StringVar(&action, "action", "", "action, e.g. VIEW / ATTENDED / attend")
	_ = add.MarkFlagRequired("user")
	_ = add.MarkFlagRequired("event")
	_ = add.MarkFlagRequired("action")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print all interactions in insertion order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.log.LoadAll(commandContext(cmd))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newTrainCmd(a *app) *cobra.Command {
	var (
		job      string
		parallel bool
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Recompute derived tables from the interaction log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls := a.settings.Learning
			runner := learning.NewRunner(a.log, a.tables,
				learning.WithLogger(logging.WithComponent("learning")),
				learning.WithParallel(parallel || ls.Parallel),
				learning.WithVocabularies(ls.Vocabularies),
				learning.WithDefaultWeights(ls.DefaultWeights),
			)

			var (
				report *learning.Report
				err    error
			)
			if job == "" {
				report, err = runner.Run(commandContext(cmd))
			} else {
				report, err = runner.RunJob(commandContext(cmd), job)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "run a single job: popularity / engagement / similarity / collaborative / weights")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run independent jobs concurrently")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Score a JSON request read from --input or stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			var req recommend.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Recommend(commandContext(cmd), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file (default stdin)")
	return cmd
}

func newWeightsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Print the weight vector used at request time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, fellBack, err := feature.ActiveWeights(commandContext(cmd),
				feature.NewStoreWeightProvider(a.tables),
				a.settings.Scoring.DefaultWeights,
			)
			if err != nil {
				return err
			}
			source := "learned"
			if fellBack {
				source = "default"
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"source": source, "weights": w})
		},
	}
}

func (a *app) service() (*recommend.Service, error) {
	sc := a.settings.Scoring
	opts := []recommend.Option{
		recommend.WithLogger(logging.WithComponent("recommend")),
		recommend.WithDefaultWeights(sc.DefaultWeights),
		recommend.WithMaxDistanceKm(sc.MaxDistanceKm),
		recommend.WithExploration(sc.ExploreRate, sc.ExploreMinItems),
		recommend.WithExplanation(sc.Explain),
		recommend.WithFilterStore(filter.NewStoreAdapter(a.store)),
	}
	if sc.Pipeline != "" {
		p, err := loadPipeline(sc.Pipeline)
		if err != nil {
			return nil, err
		}
		opts = append(opts, recommend.WithPipeline(p))
	}
	return recommend.NewService(a.tables, opts...), nil
}

func loadPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(config.DefaultFactory())
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
