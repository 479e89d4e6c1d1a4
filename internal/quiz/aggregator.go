package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/courtdle-api/internal/cache"
	"github.com/JustJay7/courtdle-api/internal/completion"
	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// VerdictMode selects how a user's choice is judged.
type VerdictMode string

const (
	// VerdictModeCompletion asks the completion service to judge the answer.
	VerdictModeCompletion VerdictMode = "completion"
	// VerdictModeExact compares the choice with the recorded winning party.
	VerdictModeExact VerdictMode = "exact"
)

// Aggregator builds the daily quiz and checks answers against it.
type Aggregator struct {
	source      CaseSource
	completer   completion.Completer
	cache       cache.BatchCache
	selector    CaseSelector
	logger      *logger.Logger
	clock       func() time.Time
	concurrency int
	verdictMode VerdictMode
}

// Option is a functional option for Aggregator
type Option func(*Aggregator)

func WithSelector(selector CaseSelector) Option {
	return func(a *Aggregator) {
		a.selector = selector
	}
}

func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// WithConcurrency bounds how many cases are fetched at once while building
// a batch. Results keep the selector's order regardless.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func WithVerdictMode(mode VerdictMode) Option {
	return func(a *Aggregator) {
		a.verdictMode = mode
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(a *Aggregator) {
		a.logger = log
	}
}

func NewAggregator(source CaseSource, completer completion.Completer, batches cache.BatchCache, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:      source,
		completer:   completer,
		cache:       batches,
		selector:    DefaultSelector(),
		logger:      logger.NewNop(),
		clock:       time.Now,
		concurrency: 1,
		verdictMode: VerdictModeCompletion,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns the cache key for the current day.
func (a *Aggregator) Today() string {
	return cache.DateKey(a.clock())
}

// ListCases returns today's summaries, building and caching them on a miss.
// Any case that cannot be summarized fails the whole batch.
func (a *Aggregator) ListCases(ctx context.Context) ([]models.CaseSummary, error) {
	key := a.Today()

	batch, err := a.cache.Get(ctx, key)
	switch {
	case err != nil:
		a.logger.Warn("Cache unreadable, recomputing", "key", key, "error", err)
	case batch != nil:
		a.logger.Info("Cache hit", "key", key, "cases", len(batch.CasesInfo))
		return batch.CasesInfo, nil
	default:
		a.logger.Info("Cache miss", "key", key)
	}

	summaries, err := a.buildBatch(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Put(ctx, key, &models.Batch{Date: key, CasesInfo: summaries}); err != nil {
		a.logger.Error("Failed to save batch", "key", key, "error", err)
	}
	return summaries, nil
}

// Refresh rebuilds today's batch unconditionally and stores it.
func (a *Aggregator) Refresh(ctx context.Context) ([]models.CaseSummary, error) {
	key := a.Today()

	summaries, err := a.buildBatch(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Put(ctx, key, &models.Batch{Date: key, CasesInfo: summaries}); err != nil {
		return nil, fmt.Errorf("save batch %s: %w", key, err)
	}
	return summaries, nil
}

func (a *Aggregator) buildBatch(ctx context.Context) ([]models.CaseSummary, error) {
	sel, err := a.selector.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("select cases: %w", err)
	}

	start := time.Now()
	summaries := make([]models.CaseSummary, len(sel.Cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, id := range sel.Cases {
		g.Go(func() error {
			summary, err := a.BuildSummary(gctx, id, sel.Theme)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Info("Built case batch", "theme", sel.Theme, "cases", len(summaries), "duration", time.Since(start).String())
	return summaries, nil
}

// BuildSummary fetches one case and summarizes it. Missing fields fall back
// to empty values; a failed completion call fails the summary.
func (a *Aggregator) BuildSummary(ctx context.Context, id models.CaseID, theme string) (models.CaseSummary, error) {
	log := a.logger.With("case_id", id.String())
	rec := a.source.Case(id)

	log.Debug("Fetching case info")
	judges := Attempt(ctx, log, "judges", rec.Judges, []string{})
	info := Attempt(ctx, log, "basic_info", fetchBasicInfo(rec), basicInfo{})
	question := Attempt(ctx, log, "question", rec.LegalQuestion, "")
	facts := Attempt(ctx, log, "facts", rec.Facts, "")

	log.Debug("Requesting case summary")
	text, err := a.completer.Complete(ctx, summaryPrompt(info.parties, facts, question))
	if err == nil && strings.TrimSpace(text) == "" {
		err = completion.ErrEmptyResponse
	}
	if err != nil {
		return models.CaseSummary{}, fmt.Errorf("summarize case %s: %w", id, err)
	}

	return models.CaseSummary{
		CaseID:   id.String(),
		Theme:    theme,
		Judges:   nonNil(judges),
		CaseName: info.name,
		Parties:  nonNil(info.parties),
		Question: question,
		Summary:  strings.TrimSpace(text),
	}, nil
}

// CheckAnswer judges userChoice against the case's ruling. The case is
// always fetched fresh.
func (a *Aggregator) CheckAnswer(ctx context.Context, id models.CaseID, userChoice string) (models.AnswerResult, error) {
	log := a.logger.With("case_id", id.String())
	rec := a.source.Case(id)

	info := Attempt(ctx, log, "basic_info", fetchBasicInfo(rec), basicInfo{})
	winner := Attempt(ctx, log, "ruling", func(ctx context.Context) (string, error) {
		ruling, err := rec.Ruling(ctx)
		if err != nil {
			return "", err
		}
		return ruling.WinningParty, nil
	}, "")

	verdict := a.judge(ctx, log, info, winner, userChoice)
	decisions := Attempt(ctx, log, "decisions", rec.JudgeDecisions, []models.JudgeDecision{})

	conclusion, err := a.summarizeConclusion(ctx, log, rec)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("summarize conclusion of %s: %w", id, err)
	}

	return models.AnswerResult{
		Correct:    verdict == models.VerdictCorrect,
		Verdict:    verdict,
		Decisions:  nonNil(decisions),
		Conclusion: conclusion,
	}, nil
}

func (a *Aggregator) judge(ctx context.Context, log *logger.Logger, info basicInfo, winner, userChoice string) models.Verdict {
	if a.verdictMode == VerdictModeExact {
		if winner == "" {
			return models.VerdictIndeterminate
		}
		if strings.TrimSpace(userChoice) == winner {
			return models.VerdictCorrect
		}
		return models.VerdictIncorrect
	}

	reply, err := a.completer.Complete(ctx, verdictPrompt(info.name, info.parties, winner, userChoice))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Verdict request canceled")
		} else {
			log.Warn("Verdict request failed", "error", err)
		}
		return models.VerdictIndeterminate
	}

	verdict := ParseVerdict(reply)
	if verdict == models.VerdictIndeterminate {
		log.Warn("Unrecognized verdict reply", "reply", reply)
	}
	return verdict
}

func (a *Aggregator) summarizeConclusion(ctx context.Context, log *logger.Logger, rec CaseRecord) (string, error) {
	conclusion := Attempt(ctx, log, "conclusion", rec.Conclusion, "")

	text, err := a.completer.Complete(ctx, conclusionPrompt(conclusion))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", completion.ErrEmptyResponse
	}
	return text, nil
}
