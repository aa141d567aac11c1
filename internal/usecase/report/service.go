// Package report orchestrates one weekly digest run: gather storm material,
// generate the three sections, compose the digest, and later deliver it.
// Drafting and publishing are separate operations joined only by the draft
// file, so an operator can review the text before it goes out.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"stormbot/internal/digest"
	"stormbot/internal/infra/generator"
	"stormbot/internal/observability/logging"
	"stormbot/internal/prompt"
)

// Fixed framing lines of the weekly digest. Generated text is quoted between
// them so readers can tell the bot's voice from the model's.
const (
	greetingLine      = "*Beep boop! Here is your weekly tropical outlook report:*"
	triviaIntroLine   = "*I do more than just report inclement weather. Learning about cultural trivia is a great way to support diversity and inclusion in the workplace. Here are a few notes about this week:*"
	activityIntroLine = "*If you are not busy evacuating for a hurricane, here is a fun and engaging weekend activity that I have generated for you:*"
	closingLine       = "*I hope that you have a restful and relaxing break! See you next week—I am sure that it will be a productive one! Beep boop! ☺*"
)

// Generation parameters per section. The storm report runs cold so it sticks
// to the source bulletins; the activity suggestion runs hot for variety.
const (
	stormMaxTokens      = 1000
	stormTemperature    = 0.25
	triviaMaxTokens     = 2000
	activityMaxTokens   = 2000
	activityTemperature = 1
)

// ContentSource gathers the raw weather material fed to the storm prompt.
type ContentSource interface {
	GatherStormContent(ctx context.Context) []string
}

// Generator runs one text generation and reports how it ended. The tagged
// outcome lets the digest distinguish real text from placeholder notices.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) generator.Outcome
}

// DraftStore persists the digest between the drafting and publishing runs.
type DraftStore interface {
	Path() string
	Exists() (bool, error)
	Save(document string) error
	Load() (string, error)
	Archive(now time.Time) (string, error)
}

// DigestNotifier delivers the finished digest to the destination channel.
type DigestNotifier interface {
	Deliver(ctx context.Context, document string) error
}

// Options holds the knobs that default sensibly in production and are pinned
// in tests: where user-facing notices go, the topic picker's randomness, and
// the clock.
type Options struct {
	Stdout io.Writer        // notices such as "Draft saved ..."; defaults to os.Stdout
	Rand   *rand.Rand       // activity topic selection; defaults to a time-seeded source
	Now    func() time.Time // defaults to time.Now
}

// Service runs the draft and publish operations. Construct with NewService.
type Service struct {
	Source   ContentSource
	Gen      Generator
	Drafts   DraftStore
	Notifier DigestNotifier

	lifecycle *Lifecycle
	stdout    io.Writer
	rng       *rand.Rand
	now       func() time.Time
}

// NewService creates a report Service with the provided dependencies. The
// lifecycle starts in the drafted state when a draft file is already present.
func NewService(source ContentSource, gen Generator, drafts DraftStore, notifier DigestNotifier, opts Options) *Service {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- topic selection is not security sensitive.
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	hasDraft, err := drafts.Exists()
	if err != nil {
		slog.Warn("could not check for existing draft", slog.String("error", err.Error()))
	}

	return &Service{
		Source:    source,
		Gen:       gen,
		Drafts:    drafts,
		Notifier:  notifier,
		lifecycle: NewLifecycle(hasDraft),
		stdout:    opts.Stdout,
		rng:       opts.Rand,
		now:       opts.Now,
	}
}

// DraftStats describes one drafting run.
type DraftStats struct {
	Generated int           // sections sent to the generation backend
	Degraded  int           // generations that ended busy or failed
	Duration  time.Duration // wall time of the whole run
	Path      string        // where the draft was written
}

// Draft gathers source material, generates the three digest sections, and
// writes the composed document to the draft store. A generation that ends
// busy or failed degrades to its placeholder line instead of aborting the
// run, so the draft always comes out complete.
func (s *Service) Draft(ctx context.Context) (*DraftStats, error) {
	start := time.Now()
	ctx = logging.NewRunContext(ctx, uuid.New().String())
	logger := logging.WithRunID(ctx, slog.Default())

	if exists, err := s.Drafts.Exists(); err == nil && exists {
		logger.Warn("overwriting existing draft", slog.String("path", s.Drafts.Path()))
	}

	today := s.now()

	parts := s.Source.GatherStormContent(ctx)
	logger.Info("storm content gathered", slog.Int("sources", len(parts)))

	storm := s.generateSection(ctx, logger, "storm-report", generator.Request{
		System:      prompt.SystemMeteorologist,
		Prompt:      prompt.StormReport(prompt.JoinContent(parts)),
		MaxTokens:   stormMaxTokens,
		Temperature: stormTemperature,
	})

	weekOf := prompt.FormatDay(prompt.UpcomingSunday(today))
	trivia := s.generateSection(ctx, logger, "cultural-trivia", generator.Request{
		Prompt:    prompt.CulturalTrivia(weekOf),
		MaxTokens: triviaMaxTokens,
	})

	topic := prompt.RandomTopic(s.rng)
	activity := s.generateSection(ctx, logger, "fun-activity", generator.Request{
		Prompt:      prompt.FunActivity(topic, prompt.MonthName(today)),
		MaxTokens:   activityMaxTokens,
		Temperature: activityTemperature,
	})

	document := composeDigest(storm, trivia, activity)
	if err := s.Drafts.Save(document); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	s.advance(ctx, logger, EventCompose)

	stats := &DraftStats{
		Generated: 3,
		Degraded:  countDegraded(storm, trivia, activity),
		Duration:  time.Since(start),
		Path:      s.Drafts.Path(),
	}
	logger.Info("draft composed",
		slog.Int("generated", stats.Generated),
		slog.Int("degraded", stats.Degraded),
		slog.Int("chars", len(document)),
		slog.Duration("duration", stats.Duration),
		slog.String("path", stats.Path),
	)

	fmt.Fprintf(s.stdout, "Draft saved to %s. Publish with --publish.\n", s.Drafts.Path())
	return stats, nil
}

// PublishStats describes one publishing run. Publishing with no draft on
// disk is a no-op and returns zero stats.
type PublishStats struct {
	Sections    int           // digest sections delivered to the webhook
	Duration    time.Duration // wall time of the whole run
	ArchivePath string        // where the draft was archived, "" for a no-op
}

// Publish loads the stored draft, delivers it, and archives the draft file
// under its delivery timestamp. Publishing with no draft present prints a
// notice and succeeds without delivering anything. The draft is renamed only
// after delivery succeeds, so a failed delivery leaves it in place for the
// next attempt.
func (s *Service) Publish(ctx context.Context) (*PublishStats, error) {
	start := time.Now()
	ctx = logging.NewRunContext(ctx, uuid.New().String())
	logger := logging.WithRunID(ctx, slog.Default())

	exists, err := s.Drafts.Exists()
	if err != nil {
		return nil, fmt.Errorf("check draft: %w", err)
	}
	if !exists {
		logger.Info("publish requested with no draft")
		fmt.Fprintln(s.stdout, "No draft to publish.")
		return &PublishStats{}, nil
	}
	if !s.lifecycle.CanDeliver() {
		// A draft appeared after this service was constructed (for example
		// copied in by an operator). Resync the lifecycle to the filesystem.
		s.advance(ctx, logger, EventCompose)
	}

	document, err := s.Drafts.Load()
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	if err := s.Notifier.Deliver(ctx, document); err != nil {
		return nil, fmt.Errorf("deliver digest: %w", err)
	}
	s.advance(ctx, logger, EventDeliver)

	archived, err := s.Drafts.Archive(s.now())
	if err != nil {
		return nil, fmt.Errorf("archive draft: %w", err)
	}

	stats := &PublishStats{
		Sections:    len(digest.Split(document)),
		Duration:    time.Since(start),
		ArchivePath: archived,
	}
	logger.Info("digest published",
		slog.Int("sections", stats.Sections),
		slog.Int("chars", len(document)),
		slog.String("archived", archived),
	)

	fmt.Fprintf(s.stdout, "Published digest. Draft archived to %s.\n", archived)
	return stats, nil
}

// State reports where the current digest sits in its lifecycle.
func (s *Service) State() string {
	return s.lifecycle.State()
}

func (s *Service) generateSection(ctx context.Context, logger *slog.Logger, name string, req generator.Request) generator.Outcome {
	start := time.Now()
	outcome := s.Gen.Generate(ctx, req)
	logger.Info("section generated",
		slog.String("section", name),
		slog.String("outcome", outcome.Kind.String()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return outcome
}

// advance fires a lifecycle event and logs rather than fails when the machine
// rejects it; the draft file on disk stays the source of truth.
func (s *Service) advance(ctx context.Context, logger *slog.Logger, event string) {
	if err := s.lifecycle.Fire(ctx, event); err != nil {
		logger.Warn("lifecycle transition rejected",
			slog.String("event", event),
			slog.String("state", s.lifecycle.State()),
			slog.String("error", err.Error()),
		)
	}
}

// composeDigest lays out the four digest sections: storm report, cultural
// trivia, weekend activity, and the sign-off.
func composeDigest(storm, trivia, activity generator.Outcome) string {
	d := digest.New()
	d.Append(greetingLine)
	d.AppendQuoted(storm.Render())
	d.Append("")
	d.StartSection()
	d.Append(triviaIntroLine)
	d.AppendQuoted(trivia.Render())
	d.Append("")
	d.StartSection()
	d.Append(activityIntroLine)
	d.AppendQuoted(activity.Render())
	d.Append("")
	d.StartSection()
	d.Append(closingLine)
	return d.String()
}

func countDegraded(outcomes ...generator.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}
