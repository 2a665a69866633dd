package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicstudy/civica/pkg/civics"
	"github.com/civicstudy/civica/pkg/directory"
	"github.com/civicstudy/civica/pkg/sources"
	"github.com/civicstudy/civica/pkg/updates"
)

// Fetcher retrieves the raw body of a source URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// ttlFetcher is implemented by fetchers whose cache supports per-request
// TTLs, such as fetch.Client. Sources carrying a cache_ttl override use it
// when available.
type ttlFetcher interface {
	GetWithTTL(ctx context.Context, url string, ttl time.Duration) ([]byte, error)
}

// Builder runs the build pipeline against a source registry.
type Builder struct {
	Fetcher  Fetcher
	Registry *sources.Registry
	Logger   *slog.Logger
}

// BuildResult is the outcome of a pipeline run.
type BuildResult struct {
	Questions []civics.Question
	Manifest  *Manifest
}

// Build fetches the baseline question document, parses it, reconciles the
// published answer updates, and attaches the officeholder directories.
//
// The baseline document is required: a missing questions source or a fetch
// failure aborts the build. The updates and directory steps are optional;
// a missing source skips the step and a failure aborts only that step,
// both recorded in the manifest.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manifest := &Manifest{
		Version: ManifestVersion,
		BuiltAt: time.Now().UTC(),
	}

	questions, err := b.buildBaseline(ctx, logger, manifest)
	if err != nil {
		return nil, err
	}

	questions, err = b.applyUpdates(ctx, logger, manifest, questions)
	if err != nil {
		return nil, err
	}

	questions = b.applyDirectories(ctx, logger, manifest, questions)

	manifest.Stats = civics.Stats(questions)
	logger.Info("build complete",
		"questions", manifest.Stats.Questions,
		"themes", manifest.Stats.Themes,
		"updates_applied", manifest.UpdatesApplied)

	return &BuildResult{Questions: questions, Manifest: manifest}, nil
}

// fetchSource retrieves one source body, honoring its cache TTL override.
func (b *Builder) fetchSource(ctx context.Context, source *sources.Source) ([]byte, error) {
	if source.CacheTTL > 0 {
		if fetcher, ok := b.Fetcher.(ttlFetcher); ok {
			return fetcher.GetWithTTL(ctx, source.URL, source.CacheTTL)
		}
	}
	return b.Fetcher.Get(ctx, source.URL)
}

func (b *Builder) buildBaseline(ctx context.Context, logger *slog.Logger, manifest *Manifest) ([]civics.Question, error) {
	source, ok := b.Registry.First(sources.KindQuestions)
	if !ok {
		return nil, fmt.Errorf("no %s source registered", sources.KindQuestions)
	}

	record := SourceRecord{Name: source.Name, Kind: source.Kind, URL: source.URL}
	body, err := b.fetchSource(ctx, source)
	if err != nil {
		record.Status = StepFailed
		record.Error = err.Error()
		manifest.Sources = append(manifest.Sources, record)
		return nil, fmt.Errorf("fetch %s: %w", source.Name, err)
	}
	record.Bytes = len(body)
	record.Status = StepOK
	manifest.Sources = append(manifest.Sources, record)

	questions := civics.Parse(civics.Clean(string(body)))
	if len(questions) == 0 {
		return nil, fmt.Errorf("source %s produced no questions", source.Name)
	}
	logger.Info("parsed baseline", "source", source.Name, "questions", len(questions))
	return questions, nil
}

func (b *Builder) applyUpdates(ctx context.Context, logger *slog.Logger, manifest *Manifest, questions []civics.Question) ([]civics.Question, error) {
	source, ok := b.Registry.First(sources.KindUpdates)
	if !ok {
		logger.Info("no updates source registered, skipping")
		manifest.Sources = append(manifest.Sources,
			SourceRecord{Kind: sources.KindUpdates, Status: StepSkipped})
		return questions, nil
	}

	record := SourceRecord{Name: source.Name, Kind: source.Kind, URL: source.URL}
	body, err := b.fetchSource(ctx, source)
	if err != nil {
		logger.Warn("updates fetch failed, continuing without updates",
			"source", source.Name, "error", err)
		record.Status = StepFailed
		record.Error = err.Error()
		manifest.Sources = append(manifest.Sources, record)
		return questions, nil
	}
	record.Bytes = len(body)

	partials, err := updates.Extract(string(body))
	if err != nil {
		logger.Warn("updates extraction failed, continuing without updates",
			"source", source.Name, "error", err)
		record.Status = StepFailed
		record.Error = err.Error()
		manifest.Sources = append(manifest.Sources, record)
		return questions, nil
	}

	result, err := civics.Reconcile(questions, partials)
	if err != nil {
		// An invalid partial is an extractor defect, not a document
		// change. Publishing a data set built from it would be wrong.
		record.Status = StepFailed
		record.Error = err.Error()
		manifest.Sources = append(manifest.Sources, record)
		return nil, fmt.Errorf("reconcile %s: %w", source.Name, err)
	}

	record.Status = StepOK
	manifest.Sources = append(manifest.Sources, record)
	manifest.UpdatesApplied = len(partials) - len(result.Skipped)
	manifest.UpdatesSkipped = result.Skipped
	for _, skipped := range result.Skipped {
		logger.Warn("update matched no baseline question", "question", skipped)
	}
	logger.Info("applied updates",
		"source", source.Name,
		"applied", manifest.UpdatesApplied,
		"skipped", len(result.Skipped))
	return result.Merged, nil
}

// directoryStep binds a source kind to its parser and answer type.
type directoryStep struct {
	kind       sources.Kind
	answerType civics.AnswerType
	parse      func(string) ([]directory.Officeholder, error)
}

var directorySteps = []directoryStep{
	{sources.KindSenators, civics.AnswerSenator, directory.ParseSenators},
	{sources.KindRepresentatives, civics.AnswerRepresentative, directory.ParseRepresentatives},
	{sources.KindGovernors, civics.AnswerGovernor, directory.ParseGovernors},
}

func (b *Builder) applyDirectories(ctx context.Context, logger *slog.Logger, manifest *Manifest, questions []civics.Question) []civics.Question {
	for _, step := range directorySteps {
		source, ok := b.Registry.First(step.kind)
		if !ok {
			logger.Info("no directory source registered, skipping", "kind", step.kind)
			manifest.Sources = append(manifest.Sources,
				SourceRecord{Kind: step.kind, Status: StepSkipped})
			continue
		}

		record := SourceRecord{Name: source.Name, Kind: source.Kind, URL: source.URL}
		body, err := b.fetchSource(ctx, source)
		if err != nil {
			logger.Warn("directory fetch failed, skipping",
				"source", source.Name, "error", err)
			record.Status = StepFailed
			record.Error = err.Error()
			manifest.Sources = append(manifest.Sources, record)
			continue
		}
		record.Bytes = len(body)

		officeholders, err := step.parse(string(body))
		if err != nil {
			logger.Warn("directory parse failed, skipping",
				"source", source.Name, "error", err)
			record.Status = StepFailed
			record.Error = err.Error()
			manifest.Sources = append(manifest.Sources, record)
			continue
		}

		merged, found := ApplyOfficeholders(questions, step.answerType, officeholders)
		if !found {
			logger.Warn("variable question not present in baseline",
				"kind", step.kind)
			record.Status = StepFailed
			record.Error = "variable question not found"
			manifest.Sources = append(manifest.Sources, record)
			continue
		}

		questions = merged
		record.Status = StepOK
		manifest.Sources = append(manifest.Sources, record)
		logger.Info("attached directory",
			"source", source.Name,
			"kind", step.kind,
			"officeholders", len(officeholders))
	}
	return questions
}
