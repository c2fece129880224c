package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	authDomain "ride-hail-client/internal/domain/auth"
	rideDomain "ride-hail-client/internal/domain/ride"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Store 為參考後端使用的記憶體資料庫。
// 所有寫入都在同一把鎖下進行，UpdateRide 因此是 accept 競爭的唯一序列化點。
type Store struct {
	mu         sync.RWMutex
	users      map[int64]userRecord
	byUsername map[string]int64
	drivers    map[int64]authDomain.Driver // userID -> driver
	rides      map[int64]rideDomain.Ride
	idSeq      int64
}

type userRecord struct {
	User     authDomain.User
	Password string // 雜湊後密碼
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]userRecord),
		byUsername: make(map[string]int64),
		drivers:    make(map[int64]authDomain.Driver),
		rides:      make(map[int64]rideDomain.Ride),
	}
}

func (s *Store) nextID() int64 {
	s.idSeq++
	return s.idSeq
}

// CreateUser 新增使用者；若為司機一併建立空白司機檔案。
func (s *Store) CreateUser(ctx context.Context, u authDomain.User, passwordHash string) (authDomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Username)
	if _, ok := s.byUsername[key]; ok {
		return authDomain.User{}, ErrUsernameTaken
	}
	u.ID = s.nextID()
	s.users[u.ID] = userRecord{User: u, Password: passwordHash}
	s.byUsername[key] = u.ID
	if u.IsDriver {
		s.drivers[u.ID] = authDomain.Driver{ID: s.nextID(), User: u, Rating: 5.0}
	}
	return u, nil
}

// FindByUsername 回傳使用者與密碼雜湊。
func (s *Store) FindByUsername(ctx context.Context, username string) (authDomain.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return authDomain.User{}, "", ErrNotFound
	}
	rec := s.users[id]
	return rec.User, rec.Password, nil
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(ctx context.Context, id int64) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return authDomain.User{}, ErrNotFound
	}
	return rec.User, nil
}

// UpdateDriverProfile 設定司機車輛資料。
func (s *Store) UpdateDriverProfile(ctx context.Context, userID int64, license, carModel, carPlate string) (authDomain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[userID]
	if !ok {
		return authDomain.Driver{}, ErrNotFound
	}
	d.LicenseNumber, d.CarModel, d.CarPlate = license, carModel, carPlate
	s.drivers[userID] = d
	return d, nil
}

// DriverByUser 依使用者查詢司機檔案。
func (s *Store) DriverByUser(ctx context.Context, userID int64) (authDomain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[userID]
	if !ok {
		return authDomain.Driver{}, ErrNotFound
	}
	return d, nil
}

// SetAvailability 更新司機接單狀態。
func (s *Store) SetAvailability(ctx context.Context, userID int64, available bool) (authDomain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[userID]
	if !ok {
		return authDomain.Driver{}, ErrNotFound
	}
	d.IsAvailable = available
	s.drivers[userID] = d
	return d, nil
}

// AvailableDrivers 列出 is_available 的司機，依 ID 排序。
func (s *Store) AvailableDrivers(ctx context.Context) []authDomain.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []authDomain.Driver
	for _, d := range s.drivers {
		if d.IsAvailable {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateRide 指派 ID 並保存行程。
func (s *Store) CreateRide(ctx context.Context, r rideDomain.Ride) rideDomain.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID()
	s.rides[r.ID] = r
	return r
}

// GetRide 依 ID 取得行程。
func (s *Store) GetRide(ctx context.Context, id int64) (rideDomain.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[id]
	if !ok {
		return rideDomain.Ride{}, ErrNotFound
	}
	return r, nil
}

// ListRides 依 filter 篩選，最新的在前。
func (s *Store) ListRides(ctx context.Context, filter func(rideDomain.Ride) bool) []rideDomain.Ride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rideDomain.Ride, 0)
	for _, r := range s.rides {
		if filter == nil || filter(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// UpdateRide 在寫鎖內讀取、套用 fn、寫回；fn 回錯誤時不寫入。
func (s *Store) UpdateRide(ctx context.Context, id int64, fn func(rideDomain.Ride) (rideDomain.Ride, error)) (rideDomain.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rides[id]
	if !ok {
		return rideDomain.Ride{}, ErrNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	next.ID = id
	s.rides[id] = next
	return next, nil
}
