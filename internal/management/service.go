// Package management exposes the operational surface of a running
// mediation service: hosted routes, engine and converter statistics, and
// the dead letter archive.
package management

import (
	"context"
	"fmt"

	"drover/internal/converter"
	"drover/internal/deadletter"
	"drover/internal/engine"
	"drover/internal/logger"
	"drover/internal/route"
	"drover/pkg/errors"
)

// ConverterStats is the management view of the conversion registry.
type ConverterStats struct {
	MemoHits   uint64 `json:"memo_hits"`
	MemoMisses uint64 `json:"memo_misses"`
}

type Service struct {
	engine      *engine.Engine
	routes      *route.Registry
	converter   *converter.Registry
	deadLetters deadletter.Store
	logger      logger.Logger
}

func NewService(eng *engine.Engine, routes *route.Registry, conv *converter.Registry, dls deadletter.Store, log logger.Logger) *Service {
	return &Service{
		engine:      eng,
		routes:      routes,
		converter:   conv,
		deadLetters: dls,
		logger:      log,
	}
}

func (s *Service) ListRoutes(_ context.Context) []route.Info {
	return s.routes.List()
}

func (s *Service) GetRoute(_ context.Context, id string) (route.Info, error) {
	r, ok := s.routes.Get(id)
	if !ok {
		return route.Info{}, fmt.Errorf("route %q: %w", id, errors.ErrNotFound)
	}
	return route.Info{ID: r.ID, Steps: r.Steps}, nil
}

func (s *Service) EngineStats(_ context.Context) engine.Stats {
	return s.engine.Stats()
}

func (s *Service) ConverterStats(_ context.Context) ConverterStats {
	hits, misses := s.converter.Stats()
	return ConverterStats{MemoHits: hits, MemoMisses: misses}
}

func (s *Service) ListDeadLetters(ctx context.Context, limit int) ([]deadletter.Entry, error) {
	if s.deadLetters == nil {
		return nil, nil
	}
	return s.deadLetters.List(ctx, limit)
}

func (s *Service) GetDeadLetter(ctx context.Context, id string) (*deadletter.Entry, error) {
	if s.deadLetters == nil {
		return nil, fmt.Errorf("dead letter store not configured: %w", errors.ErrNotFound)
	}
	entry, err := s.deadLetters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("dead letter %q: %w", id, errors.ErrNotFound)
	}
	return entry, nil
}

func (s *Service) DeleteDeadLetter(ctx context.Context, id string) error {
	if s.deadLetters == nil {
		return fmt.Errorf("dead letter store not configured: %w", errors.ErrNotFound)
	}
	if _, err := s.GetDeadLetter(ctx, id); err != nil {
		return err
	}
	return s.deadLetters.Delete(ctx, id)
}
