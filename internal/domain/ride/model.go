package ride

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ride-hail-client/internal/domain/auth"
)

// Status 行程狀態。
type Status string

const (
	StatusRequested  Status = "requested"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid 檢查是否為已知狀態。
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal 完成或取消後不再有任何轉換。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active 行程仍在進行中（乘客畫面需要持續追蹤）。
func (s Status) Active() bool {
	return s == StatusRequested || s == StatusAccepted || s == StatusInProgress
}

// Action 對行程發出的操作。
type Action string

const (
	ActionAccept   Action = "accept"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Endpoint 回傳對應的 REST action 路徑片段。
func (a Action) Endpoint() string {
	return string(a) + "_ride"
}

// ParseAction 接受 "accept" 或 "accept_ride" 兩種寫法。
func ParseAction(raw string) (Action, error) {
	a := Action(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "_ride"))
	switch a {
	case ActionAccept, ActionStart, ActionComplete, ActionCancel:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", raw)
}

// Price 後端以 decimal 字串（"25.00"）回傳，也接受數字。
type Price float64

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(p), 'f', 2, 64))
}

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", raw, err)
	}
	*p = Price(v)
	return nil
}

func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// Ride 後端擁有的行程實體；本地持有的副本在下一次成功讀取前可能是舊的。
type Ride struct {
	ID              int64        `json:"id"`
	Client          *auth.User   `json:"client,omitempty"`
	Driver          *auth.Driver `json:"driver"`
	PickupLocation  string       `json:"pickup_location"`
	PickupLat       float64      `json:"pickup_lat"`
	PickupLng       float64      `json:"pickup_lng"`
	DropoffLocation string       `json:"dropoff_location"`
	DropoffLat      float64      `json:"dropoff_lat"`
	DropoffLng      float64      `json:"dropoff_lng"`
	DistanceKM      float64      `json:"distance_km"`
	Price           Price        `json:"price"`
	Status          Status       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// MinDistanceKM 後端接受的最短距離。
const MinDistanceKM = 0.1

// Request 乘客叫車的輸入。
type Request struct {
	PickupLocation  string  `json:"pickup_location"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DropoffLocation string  `json:"dropoff_location"`
	DropoffLat      float64 `json:"dropoff_lat"`
	DropoffLng      float64 `json:"dropoff_lng"`
	DistanceKM      float64 `json:"distance_km"`
	Price           Price   `json:"price,omitempty"`
}

// Validate 檢查必要欄位。
func (r Request) Validate() error {
	if strings.TrimSpace(r.PickupLocation) == "" {
		return errors.New("pickup_location is required")
	}
	if strings.TrimSpace(r.DropoffLocation) == "" {
		return errors.New("dropoff_location is required")
	}
	if r.DistanceKM < MinDistanceKM {
		return fmt.Errorf("distance_km must be at least %.1f", MinDistanceKM)
	}
	return nil
}

// FirstActive 回傳清單中第一個進行中的行程。
func FirstActive(rides []Ride) (Ride, bool) {
	for _, r := range rides {
		if r.Status.Active() {
			return r, true
		}
	}
	return Ride{}, false
}

// Unclaimed 篩出尚未被司機接走的行程。
func Unclaimed(rides []Ride) []Ride {
	out := make([]Ride, 0, len(rides))
	for _, r := range rides {
		if r.Status == StatusRequested && r.Driver == nil {
			out = append(out, r)
		}
	}
	return out
}

// Find 依 ID 在可見清單中找行程。
func Find(rides []Ride, id int64) (Ride, error) {
	for _, r := range rides {
		if r.ID == id {
			return r, nil
		}
	}
	return Ride{}, fmt.Errorf("ride %d: %w", id, ErrUnknownRide)
}
