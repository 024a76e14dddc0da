package dataset

import (
	"context"
	"sync"

	"github.com/gaitworks/go-gaitpose"
	"github.com/gaitworks/go-gaitpose/align"
	"github.com/gaitworks/go-gaitpose/estimate"
	"github.com/gaitworks/go-gaitpose/gait"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SequenceResult holds the pipeline output for one gait sequence
type SequenceResult struct {
	SequenceID string `json:"sequence_id"`
	// Frames are the pose annotated frames in row order
	Frames []gaitpose.PoseFrame `json:"-"`
	// EstimatedRows and PlaceholderRows record keypoint provenance for
	// data quality auditing
	EstimatedRows   int `json:"estimated_rows"`
	PlaceholderRows int `json:"placeholder_rows"`
	// Features and Assessment are empty when Error is set
	Features   gait.Features   `json:"features"`
	Assessment gait.Assessment `json:"assessment"`
	// Error records a sequence level failure, other sequences are
	// unaffected
	Error string `json:"error,omitempty"`
}

// Report is the aggregate result of one dataset run
type Report struct {
	RunID     string           `json:"run_id"`
	Sequences []SequenceResult `json:"sequences"`
}

// Params configures a dataset run
type Params struct {
	// Workers is the number of sequences converted concurrently.
	// Sequences share no mutable state so they parallelise freely.
	Workers int
	// Aligner configures per sequence conversion
	Aligner align.Params
	// Tinetti configures the clinical scoring thresholds
	Tinetti gait.TinettiParams
	// Processed lists sequence ids already handled by an earlier
	// interrupted run, they are skipped so runs are resumable
	Processed map[string]bool
}

// DefaultParams returns dataset run parameters with moderate parallelism
func DefaultParams() Params {
	return Params{
		Workers: 4,
		Aligner: align.DefaultParams(),
		Tinetti: gait.DefaultTinettiParams(),
	}
}

// Orchestrator drives the full pipeline over a whole dataset, grouping
// rows by sequence and fanning the groups out over a worker pool
type Orchestrator struct {
	Params Params

	aligner *align.SequencePoseAligner
	scorer  *gait.TinettiScorer
}

// NewOrchestrator returns an instance of the Orchestrator
func NewOrchestrator(p Params) *Orchestrator {

	if p.Workers < 1 {
		p.Workers = 1
	}

	return &Orchestrator{
		Params:  p,
		aligner: align.NewSequencePoseAligner(p.Aligner),
		scorer:  gait.NewTinettiScorer(p.Tinetti),
	}
}

// Run processes every sequence in the dataset rows.  A failing sequence
// records its error in the report and never aborts the run, matching the
// per row degradation inside sequence conversion.  Cancelling the context
// stops feeding new sequences to the workers.
func (o *Orchestrator) Run(ctx context.Context, rows []gaitpose.AnnotationRow,
	est estimate.Estimator, resolver align.Resolver) (*Report, error) {

	groups := gaitpose.GroupBySequence(rows)

	pending := make([][]gaitpose.AnnotationRow, 0, len(groups))

	for _, group := range groups {
		if o.Params.Processed[group[0].SequenceID] {
			continue
		}
		pending = append(pending, group)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Sequences: make([]SequenceResult, len(pending)),
	}

	log.Info().
		Str("run", report.RunID).
		Int("sequences", len(pending)).
		Int("workers", o.Params.Workers).
		Msg("starting dataset run")

	jobs := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < o.Params.Workers; w++ {

		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				report.Sequences[idx] = o.runSequence(ctx, pending[idx],
					est, resolver)
			}
		}()
	}

feed:
	for idx := range pending {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}

	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// keep the partial report so the caller can checkpoint progress,
		// dropping the slots of sequences the workers never reached
		done := report.Sequences[:0]

		for _, res := range report.Sequences {
			if res.SequenceID != "" {
				done = append(done, res)
			}
		}

		report.Sequences = done
		return report, err
	}

	return report, nil
}

// runSequence converts one sequence and derives its gait assessment
func (o *Orchestrator) runSequence(ctx context.Context,
	group []gaitpose.AnnotationRow, est estimate.Estimator,
	resolver align.Resolver) SequenceResult {

	res := SequenceResult{
		SequenceID: group[0].SequenceID,
	}

	frames, err := o.aligner.ConvertSequence(ctx, group, est, resolver)

	if err != nil {
		log.Error().
			Err(err).
			Str("sequence", res.SequenceID).
			Msg("sequence conversion failed")

		res.Error = err.Error()
		return res
	}

	res.Frames = frames

	for _, frame := range frames {
		if frame.Origin == gaitpose.OriginEstimated {
			res.EstimatedRows++
		} else {
			res.PlaceholderRows++
		}
	}

	res.Features = gait.Extract(frames)
	res.Assessment = o.scorer.Assess(res.Features)

	log.Info().
		Str("sequence", res.SequenceID).
		Int("frames", len(frames)).
		Int("placeholder_rows", res.PlaceholderRows).
		Int("tinetti_total", res.Assessment.Total).
		Str("risk", res.Assessment.RiskLevel).
		Msg("sequence processed")

	return res
}
