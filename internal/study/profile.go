package study

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/abhisek/boki/internal/catalog"
	"github.com/abhisek/boki/internal/curriculum"
	"github.com/abhisek/boki/internal/store"
)

// profileHistory is how many profile snapshots are kept.
const profileHistory = 10

// MinProgressAnswers is the fewest answers in the current phase before it
// can be completed.
const MinProgressAnswers = 10

// Profile is the learner's study position.
type Profile struct {
	Level              catalog.Level
	Phase              int
	PhaseStartedAt     time.Time // zero counts every answer toward the phase
	MasteredCategories []string
	Saved              bool
}

// CurrentPhase returns the phase the profile is in.
func (p Profile) CurrentPhase() curriculum.Phase {
	ph, _ := curriculum.PhaseFor(p.Phase)
	return ph
}

func defaultProfile() Profile {
	return Profile{
		Level: catalog.LevelBeginner,
		Phase: curriculum.StartingPhase(catalog.LevelBeginner),
	}
}

// Profile returns the latest saved profile, or a beginner profile at the
// start of the plan when none has been saved.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	snap, err := s.st.Profiles().Latest(ctx)
	if err != nil {
		return Profile{}, err
	}
	if snap == nil {
		return defaultProfile(), nil
	}

	p := Profile{
		Level:              catalog.Level(snap.Data.Level),
		Phase:              snap.Data.Phase,
		PhaseStartedAt:     snap.Data.PhaseStartedAt,
		MasteredCategories: snap.Data.MasteredCategories,
		Saved:              true,
	}
	if _, err := catalog.ParseLevel(string(p.Level)); err != nil {
		s.log.WarnContext(ctx, "stored profile has unknown level, using beginner", slog.String("level", string(p.Level)))
		p.Level = catalog.LevelBeginner
	}
	if _, ok := curriculum.PhaseFor(p.Phase); !ok {
		p.Phase = curriculum.StartingPhase(p.Level)
	}
	return p, nil
}

// SetLevel changes the learner's level. A learner whose phase lies before
// the start of the new level's path moves to that start.
func (s *Service) SetLevel(ctx context.Context, level string) (Profile, error) {
	lvl, err := catalog.ParseLevel(level)
	if err != nil {
		return Profile{}, err
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}

	now := s.now().UTC()
	p.Level = lvl
	if start := curriculum.StartingPhase(lvl); p.Phase < start {
		p.Phase = start
		p.PhaseStartedAt = now
	}
	if err := s.saveProfile(ctx, p, now); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx)
}

// MasterCategory marks a category as mastered so selection skips it.
func (s *Service) MasterCategory(ctx context.Context, categoryID string) (Profile, error) {
	if categoryID == "" {
		return Profile{}, fmt.Errorf("category is empty: %w", catalog.ErrInvalidInput)
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}
	if slices.Contains(p.MasteredCategories, categoryID) {
		return p, nil
	}

	now := s.now().UTC()
	p.MasteredCategories = append(slices.Clone(p.MasteredCategories), categoryID)
	slices.Sort(p.MasteredCategories)
	if err := s.saveProfile(ctx, p, now); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx)
}

// Progress is the outcome of CheckProgress.
type Progress struct {
	Phase       curriculum.Phase
	Answers     int     // answers since the phase started, up to the window
	CorrectRate float64 // over those answers
	Advanced    bool
	NextPhase   int // set when Advanced
}

// CheckProgress measures the current phase against its mastery bar and
// moves the profile to the next phase when the bar is met. The last phase
// never advances.
func (s *Service) CheckProgress(ctx context.Context) (Progress, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return Progress{}, err
	}
	events, err := s.st.Answers().Recent(ctx, s.window)
	if err != nil {
		return Progress{}, err
	}

	inPhase := events[:0:0]
	for _, e := range events {
		if !e.Timestamp.Before(p.PhaseStartedAt) {
			inPhase = append(inPhase, e)
		}
	}
	perf := performanceOf(inPhase)
	prog := Progress{
		Phase:       p.CurrentPhase(),
		Answers:     len(inPhase),
		CorrectRate: perf.CorrectRate,
	}

	next := curriculum.NextPhase(p.Phase)
	if next == p.Phase || len(inPhase) < MinProgressAnswers || !curriculum.ShouldAdvance(prog.Phase, perf.CorrectRate) {
		return prog, nil
	}

	now := s.now().UTC()
	p.Phase = next
	p.PhaseStartedAt = now
	if err := s.saveProfile(ctx, p, now); err != nil {
		return Progress{}, err
	}
	prog.Advanced = true
	prog.NextPhase = next
	s.log.InfoContext(ctx, "phase advanced",
		slog.Int("from", prog.Phase.Number),
		slog.Int("to", next),
		slog.Float64("correct_rate", perf.CorrectRate))
	return prog, nil
}

func (s *Service) saveProfile(ctx context.Context, p Profile, now time.Time) error {
	data := store.ProfileData{
		Level:              string(p.Level),
		Phase:              p.Phase,
		PhaseStartedAt:     p.PhaseStartedAt,
		MasteredCategories: p.MasteredCategories,
	}
	if _, err := s.st.Profiles().Save(ctx, data, now); err != nil {
		return err
	}
	// Keep going when pruning fails; the new snapshot is already saved.
	if err := s.st.Profiles().Prune(ctx, profileHistory); err != nil {
		s.log.WarnContext(ctx, "failed to prune profile snapshots", slog.Any("error", err))
	}
	return nil
}
