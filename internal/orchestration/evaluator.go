package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/judge"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/scoring"
	"github.com/spboyer/fidelity/internal/validation"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of candidates evaluated at once when no worker
// count is configured.
const DefaultWorkers = 4

// Evaluator scores candidate templates against a reference.
type Evaluator struct {
	judge   judge.Judge
	workers int

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

const (
	EventCandidateStart    EventType = "candidate_start"
	EventCandidateComplete EventType = "candidate_complete"
	EventCandidateFailed   EventType = "candidate_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	ModelFile string
	Num       int
	Total     int
	// Result is set for EventCandidateComplete.
	Result *models.EvaluationResult
	// Err is set for EventCandidateFailed.
	Err error
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithJudge enables semantic enrichment. Without a judge only deterministic
// scores are produced.
func WithJudge(j judge.Judge) EvaluatorOption {
	return func(e *Evaluator) {
		e.judge = j
	}
}

// WithWorkers bounds how many candidates are evaluated concurrently.
func WithWorkers(n int) EvaluatorOption {
	return func(e *Evaluator) {
		e.workers = n
	}
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{workers: DefaultWorkers}
	for _, o := range opts {
		o(e)
	}
	if e.workers <= 0 {
		e.workers = DefaultWorkers
	}
	return e
}

// OnProgress registers a progress listener
func (e *Evaluator) OnProgress(listener ProgressListener) {
	e.progressMu.Lock()
	defer e.progressMu.Unlock()
	e.listeners = append(e.listeners, listener)
}

func (e *Evaluator) notifyProgress(event ProgressEvent) {
	e.progressMu.Lock()
	listeners := make([]ProgressListener, len(e.listeners))
	copy(listeners, e.listeners)
	e.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Evaluate runs the full pipeline for one pair of loaded documents: schema
// validation of the raw candidate, structural matching, optional semantic
// enrichment, scoring and aggregation.
func (e *Evaluator) Evaluate(ctx context.Context, ref, cand *document.Document) *models.EvaluationResult {
	return e.evaluate(ctx, ref, cand, validation.ValidateDocument(cand.Raw), time.Now())
}

func (e *Evaluator) evaluate(ctx context.Context, ref, cand *document.Document, schema models.SchemaValidationResult, start time.Time) *models.EvaluationResult {
	sections := scoring.CompareTemplates(ref.Template, cand.Template)

	status, assessment := models.EnrichmentNone, ""
	if e.judge != nil {
		status, assessment = judge.Enrich(ctx, e.judge, judge.NewRequest(ref.Template, cand.Template, schema), sections)
	}

	scoring.ScoreAll(sections)
	scores := scoring.Aggregate(schema, sections)

	return &models.EvaluationResult{
		RunID:                uuid.NewString(),
		SourceFile:           ref.Path,
		ModelFile:            cand.Path,
		Metadata:             document.ModelMetadata(cand),
		Usage:                document.Usage(cand),
		SchemaValidation:     schema,
		TotalSourceSections:  len(document.Flatten(ref.Template.Root())),
		TotalModelSections:   len(document.Flatten(cand.Template.Root())),
		Sections:             sections,
		Scores:               scores,
		Enrichment:           status,
		Assessment:           assessment,
		Timestamp:            start.UTC().Format(time.RFC3339),
		EvaluationDurationMs: time.Since(start).Milliseconds(),
	}
}

// EvaluateFile loads the candidate at path and evaluates it against ref. A
// candidate that is not valid JSON is still evaluated: it gets a single
// file-level schema error, zero compliance and no structure. Only a file that
// cannot be read is an error.
func (e *Evaluator) EvaluateFile(ctx context.Context, ref *document.Document, path string) (*models.EvaluationResult, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate %s: %w", path, err)
	}

	cand, err := document.ParseCandidate(data)
	if err != nil {
		slog.WarnContext(ctx, "Candidate is not valid JSON", "file", path, "error", err)
		cand = &document.Document{Path: path, Template: &models.Template{}}
		return e.evaluate(ctx, ref, cand, validation.ValidateBytes(data), start), nil
	}

	cand.Path = path
	for _, d := range cand.Dropped {
		slog.DebugContext(ctx, "Candidate node did not decode cleanly", "file", path, "node", d)
	}
	return e.evaluate(ctx, ref, cand, validation.ValidateDocument(cand.Raw), start), nil
}

// EvaluateFiles evaluates every candidate against the reference at refPath,
// several at a time. A candidate that cannot be evaluated is reported in the
// returned report and does not stop the others; only an unreadable reference
// or a cancelled context fails the batch.
func (e *Evaluator) EvaluateFiles(ctx context.Context, refPath string, candPaths []string) (*models.ComparisonReport, error) {
	ref, err := document.LoadReference(refPath)
	if err != nil {
		return nil, err
	}

	results := make([]*models.EvaluationResult, len(candPaths))
	failures := make([]*models.FailedEvaluation, len(candPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, path := range candPaths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			e.notifyProgress(ProgressEvent{EventType: EventCandidateStart, ModelFile: path, Num: i + 1, Total: len(candPaths)})

			result, err := e.EvaluateFile(gctx, ref, path)
			if err != nil {
				slog.WarnContext(gctx, "Failed to evaluate candidate", "file", path, "error", err)
				failures[i] = &models.FailedEvaluation{ModelFile: path, Error: err.Error()}
				e.notifyProgress(ProgressEvent{EventType: EventCandidateFailed, ModelFile: path, Num: i + 1, Total: len(candPaths), Err: err})
				return nil
			}

			results[i] = result
			e.notifyProgress(ProgressEvent{EventType: EventCandidateComplete, ModelFile: path, Num: i + 1, Total: len(candPaths), Result: result})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var evaluated []models.EvaluationResult
	for _, r := range results {
		if r != nil {
			evaluated = append(evaluated, *r)
		}
	}

	report := BuildReport(refPath, evaluated)
	for _, f := range failures {
		if f != nil {
			report.Failed = append(report.Failed, *f)
		}
	}
	return report, nil
}
