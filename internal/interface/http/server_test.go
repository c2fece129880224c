package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
	authinfra "ride-hail-client/internal/infrastructure/auth"
	"ride-hail-client/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(config.BackendConfig{Secret: "test-secret"}, nil)
	s.hasher = authinfra.BcryptHasher{Cost: bcrypt.MinCost}
	if err := s.SeedDemo(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server, username string) auth.CredentialPair {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/token/", "", map[string]string{"username": username, "password": DemoPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d. body: %s", username, w.Code, w.Body.String())
	}
	var pair auth.CredentialPair
	_ = json.Unmarshal(w.Body.Bytes(), &pair)
	if !pair.Complete() {
		t.Fatalf("login %s: incomplete pair %s", username, w.Body.String())
	}
	return pair
}

func decodeRide(t *testing.T, w *httptest.ResponseRecorder) ride.Ride {
	t.Helper()
	var r ride.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode ride: %v. body: %s", err, w.Body.String())
	}
	return r
}

func requestRide(t *testing.T, s *Server, token string) ride.Ride {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/rides/", token, ride.Request{
		PickupLocation:  "Piața Unirii",
		DropoffLocation: "Gara Centrală",
		DistanceKM:      5.2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ride: expected 201, got %d. body: %s", w.Code, w.Body.String())
	}
	return decodeRide(t, w)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Token(t *testing.T) {
	s := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		pair := login(t, s, "ana")
		w := do(t, s, http.MethodGet, "/api/users/me/", pair.Access, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var u auth.User
		_ = json.Unmarshal(w.Body.Bytes(), &u)
		if u.Username != "ana" || u.IsDriver {
			t.Errorf("unexpected user %+v", u)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/token/", "", map[string]string{"username": "ana", "password": "nope"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/api/token/", "", map[string]string{})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var errs map[string][]string
		_ = json.Unmarshal(w.Body.Bytes(), &errs)
		if len(errs["username"]) == 0 || len(errs["password"]) == 0 {
			t.Errorf("expected field errors, got %s", w.Body.String())
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s, "ion")

	w := do(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. body: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["access"] == "" {
		t.Fatal("expected new access token")
	}
	if _, ok := resp["refresh"]; ok {
		t.Error("refresh token must not be rotated")
	}

	w = do(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": pair.Access})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("access token must not refresh, got %d", w.Code)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   auth.Registration
		status int
		field  string
	}{
		{"Success", auth.Registration{Username: "elena", Password: "secret123", Password2: "secret123", IsDriver: true}, http.StatusCreated, ""},
		{"Mismatch", auth.Registration{Username: "dan", Password: "a", Password2: "b"}, http.StatusBadRequest, "password"},
		{"Taken", auth.Registration{Username: "ana", Password: "x", Password2: "x"}, http.StatusBadRequest, "username"},
		{"Empty", auth.Registration{}, http.StatusBadRequest, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/users/", "", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d. body: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.field == "" {
				return
			}
			var errs map[string][]string
			_ = json.Unmarshal(w.Body.Bytes(), &errs)
			if len(errs[tt.field]) == 0 {
				t.Errorf("expected %s error, got %s", tt.field, w.Body.String())
			}
		})
	}

	w := do(t, s, http.MethodPost, "/api/token/", "", map[string]string{"username": "elena", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("registered user cannot log in: %d", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s, "ana")

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"NoToken", "", http.StatusUnauthorized},
		{"Garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"RefreshAsAccess", "Bearer " + pair.Refresh, http.StatusUnauthorized},
		{"WrongScheme", "Token " + pair.Access, http.StatusUnauthorized},
		{"Valid", "Bearer " + pair.Access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/api/rides/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestDriverHandler(t *testing.T) {
	s := newTestServer(t)
	driver := login(t, s, "ion")
	client := login(t, s, "ana")

	w := do(t, s, http.MethodGet, "/api/drivers/me/", driver.Access, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = do(t, s, http.MethodPatch, "/api/drivers/me/", driver.Access, map[string]any{"is_available": false, "car_plate": "B-999-XYZ"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. body: %s", w.Code, w.Body.String())
	}
	var d auth.Driver
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.IsAvailable || d.CarPlate != "B-999-XYZ" || d.CarModel != "Dacia Logan" {
		t.Errorf("unexpected driver after patch %+v", d)
	}

	w = do(t, s, http.MethodGet, "/api/drivers/available/", client.Access, nil)
	var avail []auth.Driver
	_ = json.Unmarshal(w.Body.Bytes(), &avail)
	if len(avail) != 1 || avail[0].User.Username != "mihai" {
		t.Errorf("unexpected available drivers %s", w.Body.String())
	}

	w = do(t, s, http.MethodGet, "/api/drivers/me/", client.Access, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("client has no driver profile, got %d", w.Code)
	}
}

func TestRideHandler_Create(t *testing.T) {
	s := newTestServer(t)
	client := login(t, s, "ana")
	driver := login(t, s, "ion")

	r := requestRide(t, s, client.Access)
	if r.Status != ride.StatusRequested || r.Driver != nil {
		t.Errorf("unexpected new ride %+v", r)
	}
	if r.Price.String() != "18.00" {
		t.Errorf("expected price 18.00, got %s", r.Price)
	}
	if r.Client == nil || r.Client.Username != "ana" {
		t.Errorf("client not bound: %+v", r.Client)
	}

	w := do(t, s, http.MethodPost, "/api/rides/", driver.Access, ride.Request{PickupLocation: "A", DropoffLocation: "B", DistanceKM: 1})
	if w.Code != http.StatusForbidden {
		t.Errorf("drivers cannot request rides, got %d", w.Code)
	}

	w = do(t, s, http.MethodPost, "/api/rides/", client.Access, ride.Request{DistanceKM: 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var errs map[string][]string
	_ = json.Unmarshal(w.Body.Bytes(), &errs)
	for _, f := range []string{"pickup_location", "dropoff_location", "distance_km"} {
		if len(errs[f]) == 0 {
			t.Errorf("missing %s error in %s", f, w.Body.String())
		}
	}
}

func TestRideHandler_Visibility(t *testing.T) {
	s := newTestServer(t)
	client := login(t, s, "ana")
	ion := login(t, s, "ion")
	mihai := login(t, s, "mihai")

	first := requestRide(t, s, client.Access)
	second := requestRide(t, s, client.Access)

	if w := do(t, s, http.MethodPost, fmt.Sprintf("/api/rides/%d/accept_ride/", first.ID), ion.Access, nil); w.Code != http.StatusOK {
		t.Fatalf("accept failed: %d %s", w.Code, w.Body.String())
	}

	list := func(token string) []ride.Ride {
		w := do(t, s, http.MethodGet, "/api/rides/", token, nil)
		var out []ride.Ride
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return out
	}

	if got := list(client.Access); len(got) != 2 || got[0].ID != second.ID {
		t.Errorf("client should see both rides newest first, got %+v", got)
	}
	if got := list(ion.Access); len(got) != 2 {
		t.Errorf("ion should see his ride and the open one, got %d", len(got))
	}
	if got := list(mihai.Access); len(got) != 1 || got[0].ID != second.ID {
		t.Errorf("mihai should only see the open ride, got %+v", got)
	}

	w := do(t, s, http.MethodPost, fmt.Sprintf("/api/rides/%d/start_ride/", first.ID), mihai.Access, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other driver must not start a ride he does not own, got %d", w.Code)
	}
	w = do(t, s, http.MethodPost, fmt.Sprintf("/api/rides/%d/cancel_ride/", second.ID), mihai.Access, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("driver must not cancel an unclaimed ride, got %d", w.Code)
	}
}

func TestRideHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	client := login(t, s, "ana")
	driver := login(t, s, "ion")
	r := requestRide(t, s, client.Access)
	path := func(action string) string { return fmt.Sprintf("/api/rides/%d/%s/", r.ID, action) }

	steps := []struct {
		name   string
		token  string
		action string
		status int
		want   ride.Status
	}{
		{"client cannot accept", client.Access, "accept_ride", http.StatusForbidden, ""},
		{"start before accept", driver.Access, "start_ride", http.StatusNotFound, ""},
		{"accept", driver.Access, "accept_ride", http.StatusOK, ride.StatusAccepted},
		{"accept twice", driver.Access, "accept_ride", http.StatusBadRequest, ""},
		{"client cannot start", client.Access, "start_ride", http.StatusForbidden, ""},
		{"start", driver.Access, "start_ride", http.StatusOK, ride.StatusInProgress},
		{"cancel in progress", client.Access, "cancel_ride", http.StatusBadRequest, ""},
		{"complete", driver.Access, "complete_ride", http.StatusOK, ride.StatusCompleted},
		{"cancel completed", client.Access, "cancel_ride", http.StatusBadRequest, ""},
		{"unknown action", driver.Access, "teleport_ride", http.StatusNotFound, ""},
	}
	for _, st := range steps {
		w := do(t, s, http.MethodPost, path(st.action), st.token, nil)
		if w.Code != st.status {
			t.Fatalf("%s: expected %d, got %d. body: %s", st.name, st.status, w.Code, w.Body.String())
		}
		if st.want != "" {
			if got := decodeRide(t, w); got.Status != st.want {
				t.Fatalf("%s: expected %s, got %s", st.name, st.want, got.Status)
			}
		}
	}
}

func TestRideHandler_ConcurrentAccept(t *testing.T) {
	s := newTestServer(t)
	client := login(t, s, "ana")
	drivers := []auth.CredentialPair{login(t, s, "ion"), login(t, s, "mihai")}
	r := requestRide(t, s, client.Access)

	codes := make([]int, len(drivers))
	var wg sync.WaitGroup
	for i, d := range drivers {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			codes[i] = do(t, s, http.MethodPost, fmt.Sprintf("/api/rides/%d/accept_ride/", r.ID), token, nil).Code
		}(i, d.Access)
	}
	wg.Wait()

	ok, rejected := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusBadRequest:
			rejected++
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expected exactly one accept, got codes %v", codes)
	}
}
