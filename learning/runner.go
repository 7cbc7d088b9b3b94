package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/metrics"
	"github.com/rushteam/eventrec/tables"
)

// 任务名，也是 CLI `train --job` 的取值。
const (
	JobPopularity = "popularity"
	JobEngagement = "engagement"
	JobSimilarity = "similarity"
	JobCollab     = "collaborative"
	JobWeights    = "weights"
)

// Jobs 是任务的固定执行顺序。
var Jobs = []string{JobPopularity, JobEngagement, JobSimilarity, JobCollab, JobWeights}

// JobResult 是单个任务的执行结果。
type JobResult struct {
	Job      string        `json:"job"`
	Entries  int           `json:"entries"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report 是一次批量运行的汇总。
type Report struct {
	RunID   string      `json:"run_id"`
	Records int         `json:"records"`
	Jobs    []JobResult `json:"jobs"`
}

// Runner 读取交互日志快照，按顺序执行五个离线任务并写入派生表。
//
//	popularity → engagement → similarity → collaborative → weights
//
// 并行模式下前三个任务并发执行（共享同一份只读快照），
// collaborative 等 similarity 写完后再执行，weights 最后执行。两种模式产出相同的表。
type Runner struct {
	log      core.InteractionLog
	tables   *tables.Tables
	logger   zerolog.Logger
	vocab    Vocabularies
	defaults feature.Weights
	parallel bool
}

type RunnerOption func(*Runner)

func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithParallel 开启并行模式。
func WithParallel(parallel bool) RunnerOption {
	return func(r *Runner) { r.parallel = parallel }
}

// WithVocabularies 覆盖行为词表，未配置的部分使用内置词表。
func WithVocabularies(v Vocabularies) RunnerOption {
	return func(r *Runner) { r.vocab = v.withDefaults() }
}

// WithDefaultWeights 覆盖日志为空时写出的默认权重。
func WithDefaultWeights(w feature.Weights) RunnerOption {
	return func(r *Runner) {
		if len(w) > 0 {
			r.defaults = w.Clone()
		}
	}
}

func NewRunner(log core.InteractionLog, t *tables.Tables, opts ...RunnerOption) *Runner {
	r := &Runner{
		log:      log,
		tables:   t,
		logger:   zerolog.Nop(),
		vocab:    DefaultVocabularies(),
		defaults: feature.ConfigDefaultWeights(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 执行全部任务。任一任务失败即返回错误，已写入的表保持新值。
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	return r.run(ctx, Jobs)
}

// RunJob 只执行指定任务，仍然从完整日志重新计算。
func (r *Runner) RunJob(ctx context.Context, job string) (*Report, error) {
	for _, j := range Jobs {
		if j == job {
			return r.run(ctx, []string{job})
		}
	}
	return nil, core.NewDomainError(core.ModuleLearning, core.ErrorCodeInvalidInput, fmt.Sprintf("learning: unknown job %q", job))
}

func (r *Runner) run(ctx context.Context, jobs []string) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()

	records, err := r.log.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	logger.Info().Int("records", len(records)).Strs("jobs", jobs).Bool("parallel", r.parallel).Msg("learning run started")

	snap := &snapshot{records: records, vocab: r.vocab}
	report := &Report{RunID: runID, Records: len(records)}

	var mu sync.Mutex
	exec := func(ctx context.Context, job string) error {
		res, err := r.runJob(ctx, logger, snap, job)
		if err != nil {
			return fmt.Errorf("job %s: %w", job, err)
		}
		mu.Lock()
		report.Jobs = append(report.Jobs, res)
		mu.Unlock()
		return nil
	}

	if r.parallel && len(jobs) > 1 {
		err = r.runParallel(ctx, jobs, exec)
	} else {
		for _, job := range jobs {
			if err = exec(ctx, job); err != nil {
				break
			}
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("learning run failed")
		return report, err
	}

	sortResults(report.Jobs)
	logger.Info().Int("jobs", len(report.Jobs)).Msg("learning run finished")
	return report, nil
}

// runParallel 并发执行 popularity / engagement / similarity，再依次执行其余任务。
func (r *Runner) runParallel(ctx context.Context, jobs []string, exec func(context.Context, string) error) error {
	first := map[string]bool{JobPopularity: true, JobEngagement: true, JobSimilarity: true}

	eg, egCtx := errgroup.WithContext(ctx)
	var rest []string
	for _, job := range jobs {
		if !first[job] {
			rest = append(rest, job)
			continue
		}
		j := job
		eg.Go(func() error { return exec(egCtx, j) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for _, job := range rest {
		if err := exec(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

// snapshot 是一次运行共享的只读输入，矩阵只构建一次。
type snapshot struct {
	records []core.Interaction
	vocab   Vocabularies

	matrixOnce sync.Once
	matrix     UserEventMatrix
}

func (s *snapshot) userEventMatrix() UserEventMatrix {
	s.matrixOnce.Do(func() {
		s.matrix = buildMatrix(s.records, s.vocab.Collaborative)
	})
	return s.matrix
}

func (r *Runner) runJob(ctx context.Context, logger zerolog.Logger, snap *snapshot, job string) (JobResult, error) {
	if err := ctx.Err(); err != nil {
		return JobResult{Job: job}, err
	}
	start := time.Now()
	res := JobResult{Job: job}

	var err error
	switch job {
	case JobPopularity:
		t := computePopularity(snap.records, snap.vocab.Popularity)
		res.Entries = len(t)
		err = r.tables.SavePopularity(ctx, t)
	case JobEngagement:
		t := computeEngagement(snap.records, snap.vocab.Engagement)
		res.Entries = len(t)
		err = r.tables.SaveEngagement(ctx, t)
	case JobSimilarity:
		t := ComputeEventSimilarity(snap.userEventMatrix())
		res.Entries = len(t)
		err = r.tables.SaveSimilarity(ctx, t)
	case JobCollab:
		var (
			sim    tables.SimilarityTable
			exists bool
		)
		sim, exists, err = r.tables.LoadSimilarity(ctx)
		if err != nil {
			break
		}
		if !exists {
			// 上一次的 collab 表保持不变
			res.Skipped = true
			logger.Warn().Str("job", job).Msg("no similarity data found, collaborative scores not recomputed")
			break
		}
		t := ComputeCollabScores(snap.userEventMatrix(), sim)
		res.Entries = len(t)
		err = r.tables.SaveCollab(ctx, t)
	case JobWeights:
		t := learnWeights(snap.records, snap.vocab.Reward, r.defaults)
		res.Entries = len(t)
		if len(snap.records) == 0 {
			logger.Info().Str("job", job).Msg("no interactions yet, default weights saved")
		}
		err = r.tables.SaveWeights(ctx, t)
	}
	res.Duration = time.Since(start)

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case res.Skipped:
		status = "skipped"
	}
	metrics.ObserveJob(job, status, start)

	if err != nil {
		return res, err
	}
	logger.Info().Str("job", job).Int("entries", res.Entries).Dur("duration", res.Duration).Bool("skipped", res.Skipped).Msg("job finished")
	return res, nil
}

// sortResults 按固定任务顺序排列结果（并行模式下完成顺序不确定）。
func sortResults(results []JobResult) {
	order := make(map[string]int, len(Jobs))
	for i, j := range Jobs {
		order[j] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return order[results[i].Job] < order[results[j].Job]
	})
}
