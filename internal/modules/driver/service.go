// README: Driver service; record management plus the slices other modules consume.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taxiboard/internal/types"
)

var (
	ErrNotFound   = errors.New("driver not found")
	ErrBadRequest = errors.New("bad request")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	if cmd.Name == "" {
		return "", ErrBadRequest
	}
	d := &Driver{
		ID:        types.ID(uuid.NewString()),
		Name:      cmd.Name,
		Available: true,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Driver, error) {
	return s.store.List(ctx)
}

func (s *Service) ListAvailable(ctx context.Context) ([]Driver, error) {
	return s.store.ListAvailable(ctx)
}

func (s *Service) SetAvailability(ctx context.Context, id types.ID, available bool) error {
	return s.store.SetAvailability(ctx, id, available)
}

func (s *Service) UpdateFCMToken(ctx context.Context, id types.ID, token string) error {
	if token == "" {
		return ErrBadRequest
	}
	return s.store.UpdateFCMToken(ctx, id, token)
}

func (s *Service) SetLastKnown(ctx context.Context, id types.ID, p types.Point, address string) error {
	return s.store.SetLastKnown(ctx, id, p, address)
}

// FCMToken fetches the driver's registered device token for pushes.
func (s *Service) FCMToken(ctx context.Context, id types.ID) (string, error) {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return d.FCMToken, nil
}

func (s *Service) RidesToday(ctx context.Context, id types.ID, day time.Time) (int, error) {
	return s.store.RidesToday(ctx, id, day)
}
