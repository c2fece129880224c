package rides

import (
	"context"
	"log"
	"sync"

	"ride-hail-client/internal/domain/auth"
)

// DriverAPI 司機檔案端點。
type DriverAPI interface {
	DriverProfile(ctx context.Context) (auth.Driver, error)
	SetAvailability(ctx context.Context, available bool) (auth.Driver, error)
}

// Availability 司機接單開關：先顯示暫定值，後端失敗時回復成修改前的值。
type Availability struct {
	api DriverAPI

	setMu sync.Mutex
	mu    sync.RWMutex
	value bool
}

func NewAvailability(api DriverAPI) *Availability {
	return &Availability{api: api}
}

// Load 從後端讀取目前狀態。
func (a *Availability) Load(ctx context.Context) (bool, error) {
	d, err := a.api.DriverProfile(ctx)
	if err != nil {
		return a.Value(), err
	}
	a.store(d.IsAvailable)
	return d.IsAvailable, nil
}

// Value 目前顯示的值（可能是尚未確認的暫定值）。
func (a *Availability) Value() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Set 套用暫定值並送出；失敗時回復原值並回傳錯誤。
func (a *Availability) Set(ctx context.Context, available bool) (bool, error) {
	a.setMu.Lock()
	defer a.setMu.Unlock()

	prev := a.Value()
	a.store(available)

	d, err := a.api.SetAvailability(ctx, available)
	if err != nil {
		log.Printf("[Driver] availability update failed, reverting to %v: %v", prev, err)
		a.store(prev)
		return prev, err
	}
	a.store(d.IsAvailable)
	return d.IsAvailable, nil
}

func (a *Availability) store(v bool) {
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
}
