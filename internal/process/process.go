package process

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/workforce-presence/internal"
	processDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/process"
)

var (
	ErrProcessNotFound  = internal.NewNotFoundError("Process not found", internal.ErrCodeProcessNotFound)
	ErrProcessNotLinked = internal.NewForbiddenError("No process is linked to this user", internal.ErrCodeProcessNotLinked)
)

type Process struct {
	ID   string `json:"id"`
	Code string `json:"processCode"`
	Name string `json:"name"`
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*processDatamodel.Process, error)
	List(ctx context.Context) ([]*processDatamodel.Process, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// LinkedTo returns the process a process-station account is bound to.
func (s *Service) LinkedTo(ctx context.Context, processID *string) (*Process, error) {
	if processID == nil || strings.TrimSpace(*processID) == "" {
		return nil, ErrProcessNotLinked
	}
	p, err := s.repo.GetByID(ctx, *processID)
	if err != nil {
		if internal.IsNotFound(err) {
			s.logger.Warn("linked process missing", "process_id", *processID)
			return nil, ErrProcessNotLinked.WithCause(err)
		}
		return nil, err
	}
	return FromDataModel(p), nil
}

func (s *Service) List(ctx context.Context) ([]*Process, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list processes", "error", err)
		return nil, err
	}
	result := make([]*Process, len(rows))
	for i, p := range rows {
		result[i] = FromDataModel(p)
	}
	return result, nil
}

func FromDataModel(p *processDatamodel.Process) *Process {
	return &Process{ID: p.ID, Code: p.ProcessCode, Name: p.Name}
}
