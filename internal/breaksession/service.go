package breaksession

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/common/workday"
	breakDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/breaksession"
)

type RepositoryAPI interface {
	Create(ctx context.Context, b *breakDatamodel.BreakSession) error
	GetByID(ctx context.Context, id string) (*breakDatamodel.BreakSession, error)
	End(ctx context.Context, id string, endTime time.Time) error
	Delete(ctx context.Context, id string) error
	// List returns breaks that started inside [from, to], newest first. Zero bounds mean unbounded.
	List(ctx context.Context, from, to time.Time) ([]*breakDatamodel.BreakSession, error)
}

type Service struct {
	repo     RepositoryAPI
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, clk clock.Clock, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, clock: clk, location: location, logger: logger}
}

// Create records a break starting now unless the request carries explicit times.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Break, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.clock.Now().UTC()
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	row := &breakDatamodel.BreakSession{BreakType: req.BreakType, StartTime: start}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		if end.Before(start) {
			return nil, ErrInvalidTimeRange
		}
		row.EndTime = &end
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create break session", "error", err)
		return nil, err
	}
	s.logger.Info("break session created", "break_id", row.ID, "break_type", row.BreakType)
	return FromDataModel(row), nil
}

// End closes an open break at the current time.
func (s *Service) End(ctx context.Context, id string) (*Break, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.EndTime != nil {
		return nil, ErrBreakAlreadyEnded
	}

	end := s.clock.Now().UTC()
	if end.Before(row.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if err := s.repo.End(ctx, id, end); err != nil {
		return nil, err
	}
	row.EndTime = &end
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("break session deleted", "break_id", id)
	return nil
}

// List returns the breaks of one day, or every break when day is empty.
func (s *Service) List(ctx context.Context, day string) ([]*Break, error) {
	var from, to time.Time
	if day = strings.TrimSpace(day); day != "" {
		r, err := workday.Day(day, s.location)
		if err != nil {
			return nil, err
		}
		from, to = r.Start, r.End
	}

	rows, err := s.repo.List(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to list break sessions", "error", err)
		return nil, err
	}
	result := make([]*Break, len(rows))
	for i, b := range rows {
		result[i] = FromDataModel(b)
	}
	return result, nil
}
