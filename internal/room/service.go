package room

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, name string) (*Room, error)
	GetByID(ctx context.Context, id int64) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("room_store"),
	}
}

func (s *service) Create(ctx context.Context, name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	// Names are matched exactly; the UNIQUE constraint backs this up on races.
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("room name already taken", zap.String("room", name))
		return nil, ErrNameTaken
	}

	rm := &Room{Name: name}
	if err := s.repo.Create(ctx, rm); err != nil {
		if errors.Is(err, ErrNameTaken) {
			s.logger.Info("room name already taken", zap.String("room", name))
		}
		return nil, err
	}

	s.logger.Info("added room", zap.Int64("room_id", rm.ID), zap.String("room", rm.Name))
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Room, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, rm.ID); err != nil {
		return err
	}

	s.logger.Info("deleted room and its bookings", zap.Int64("room_id", rm.ID), zap.String("room", rm.Name))
	return nil
}
