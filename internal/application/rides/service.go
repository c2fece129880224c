package rides

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ride-hail-client/internal/application/polling"
	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
	"ride-hail-client/internal/infrastructure/external/rideapi"
)

// RideAPI 後端行程端點。
type RideAPI interface {
	CreateRide(ctx context.Context, in ride.Request) (ride.Ride, error)
	ListRides(ctx context.Context) ([]ride.Ride, error)
	Transition(ctx context.Context, id int64, action ride.Action) (ride.Ride, error)
}

// Service 以目前角色操作行程，並保留最後一次讀到的可見行程。
// 操作先用狀態機在本地檢查，不合法的請求不會送到後端。
type Service struct {
	api  RideAPI
	role auth.Role

	mu      sync.RWMutex
	visible map[int64]ride.Ride
}

func NewService(api RideAPI, role auth.Role) *Service {
	return &Service{api: api, role: role, visible: make(map[int64]ride.Ride)}
}

// Role 回傳此 service 綁定的角色。
func (s *Service) Role() auth.Role { return s.role }

// Request 乘客叫車。
func (s *Service) Request(ctx context.Context, in ride.Request) (ride.Ride, error) {
	if s.role != auth.RoleClient {
		return ride.Ride{}, fmt.Errorf("request ride: %w", ride.ErrUnauthorizedRole)
	}
	if err := in.Validate(); err != nil {
		return ride.Ride{}, err
	}
	r, err := s.api.CreateRide(ctx, in)
	if err != nil {
		return ride.Ride{}, err
	}
	s.remember(r)
	return r, nil
}

// Rides 重新讀取並取代可見行程。
func (s *Service) Rides(ctx context.Context) ([]ride.Ride, error) {
	list, err := s.api.ListRides(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.visible = make(map[int64]ride.Ride, len(list))
	for _, r := range list {
		s.visible[r.ID] = r
	}
	s.mu.Unlock()
	return list, nil
}

// ActiveRide 回傳第一個進行中的行程，沒有則為 nil。
func (s *Service) ActiveRide(ctx context.Context) (*ride.Ride, error) {
	list, err := s.Rides(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := ride.FirstActive(list)
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// AvailableRides 司機可接的行程（requested 且未綁定司機）。
func (s *Service) AvailableRides(ctx context.Context) ([]ride.Ride, error) {
	list, err := s.Rides(ctx)
	if err != nil {
		return nil, err
	}
	return ride.Unclaimed(list), nil
}

// Cached 回傳本地持有的行程副本（可能已過期）。
func (s *Service) Cached(id int64) (ride.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.visible[id]
	if !ok {
		return ride.Ride{}, fmt.Errorf("ride %d: %w", id, ride.ErrUnknownRide)
	}
	return r, nil
}

// Allowed 依本地副本列出目前可執行的操作。
func (s *Service) Allowed(id int64) ([]ride.Action, error) {
	r, err := s.Cached(id)
	if err != nil {
		return nil, err
	}
	return ride.AllowedActions(r.Status, s.role), nil
}

// Act 執行行程操作。本地檢查失敗直接回錯；後端以 409/400 拒絕時回 ErrIllegalTransition。
func (s *Service) Act(ctx context.Context, id int64, action ride.Action) (ride.Ride, error) {
	cur, err := s.Cached(id)
	if err != nil {
		return ride.Ride{}, err
	}
	if _, err := ride.Next(cur.Status, action, s.role); err != nil {
		return ride.Ride{}, fmt.Errorf("ride %d: %w", id, err)
	}
	if action == ride.ActionAccept && cur.Driver != nil {
		return ride.Ride{}, &ride.TransitionError{From: cur.Status, Action: action, Role: s.role, Err: ride.ErrIllegalTransition}
	}

	updated, err := s.api.Transition(ctx, id, action)
	if err != nil {
		return ride.Ride{}, classify(err)
	}
	s.remember(updated)
	return updated, nil
}

func (s *Service) Accept(ctx context.Context, id int64) (ride.Ride, error) {
	return s.Act(ctx, id, ride.ActionAccept)
}

func (s *Service) Start(ctx context.Context, id int64) (ride.Ride, error) {
	return s.Act(ctx, id, ride.ActionStart)
}

func (s *Service) Complete(ctx context.Context, id int64) (ride.Ride, error) {
	return s.Act(ctx, id, ride.ActionComplete)
}

func (s *Service) Cancel(ctx context.Context, id int64) (ride.Ride, error) {
	return s.Act(ctx, id, ride.ActionCancel)
}

// WatchActiveRide 自己進行中行程的輪詢（乘客與司機共用，間隔較短）。
func (s *Service) WatchActiveRide(interval time.Duration, m *polling.Metrics) *polling.Poller[*ride.Ride] {
	return polling.NewPoller("active_ride", s.ActiveRide, interval, m)
}

// WatchAvailableRides 司機端待接行程的輪詢（間隔較長）。
func (s *Service) WatchAvailableRides(interval time.Duration, m *polling.Metrics) *polling.Poller[[]ride.Ride] {
	return polling.NewPoller("available_rides", s.AvailableRides, interval, m)
}

func (s *Service) remember(r ride.Ride) {
	s.mu.Lock()
	s.visible[r.ID] = r
	s.mu.Unlock()
}

// classify 把後端的狀態衝突對應到 ErrIllegalTransition，並保留原錯誤供顯示。
func classify(err error) error {
	var apiErr *rideapi.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Status == http.StatusConflict:
		return fmt.Errorf("%w: %w", ride.ErrIllegalTransition, err)
	case apiErr.Status == http.StatusBadRequest && len(apiErr.Fields) == 0:
		return fmt.Errorf("%w: %w", ride.ErrIllegalTransition, err)
	case apiErr.Status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ride.ErrUnauthorizedRole, err)
	case apiErr.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ride.ErrUnknownRide, err)
	}
	return err
}
