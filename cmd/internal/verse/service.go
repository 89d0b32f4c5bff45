package verse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoVerses means the verse table is empty; the daily verse cannot be
// chosen until data is loaded.
var ErrNoVerses = errors.New("no verses loaded")

// Service chooses the verse of the day.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a verse Service.
func NewService(log *slog.Logger, store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("verse: nil store")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// VerseOfTheDay returns the verse for the current calendar day. Day N of
// the year selects verse (N-1) mod count in id order, so the choice is
// stable for the whole day and cycles through the full set.
func (s *Service) VerseOfTheDay(ctx context.Context) (Verse, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return Verse{}, fmt.Errorf("verse.daily: %w", err)
	}
	if total == 0 {
		s.log.Warn("verse.daily.empty")
		return Verse{}, ErrNoVerses
	}

	dayOfYear := int64(s.now().YearDay())
	offset := (dayOfYear - 1) % total

	v, err := s.store.ByOffset(ctx, offset)
	if err != nil {
		return Verse{}, fmt.Errorf("verse.daily: %w", err)
	}

	s.log.Info("verse.daily.ok", "sura", v.SuraIndex, "verse", v.VerseNumber)
	return v, nil
}
