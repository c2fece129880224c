package httpapi

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
	"ride-hail-client/internal/infra/memory"

	"github.com/gin-gonic/gin"
)

// 計價：起步 5 lei，每公里 2.5 lei。
const (
	baseFare  = 5.0
	perKMFare = 2.5
)

var errNotVisible = errors.New("ride not visible")

var actionsByEndpoint = func() map[string]ride.Action {
	m := make(map[string]ride.Action)
	for _, a := range []ride.Action{ride.ActionAccept, ride.ActionStart, ride.ActionComplete, ride.ActionCancel} {
		m[a.Endpoint()] = a
	}
	return m
}()

var roleDenied = map[ride.Action]string{
	ride.ActionAccept:   "Doar șoferii pot accepta curse.",
	ride.ActionStart:    "Doar șoferii pot începe curse.",
	ride.ActionComplete: "Doar șoferii pot finaliza curse.",
}

var illegal = map[ride.Action]string{
	ride.ActionAccept:   "Această cursă nu poate fi acceptată.",
	ride.ActionStart:    "Această cursă nu poate fi începută.",
	ride.ActionComplete: "Această cursă nu poate fi finalizată.",
	ride.ActionCancel:   "Această cursă nu poate fi anulată.",
}

func fare(distanceKM float64) ride.Price {
	return ride.Price(math.Round((baseFare+perKMFare*distanceKM)*100) / 100)
}

func (s *Server) handleCreateRide(c *gin.Context) {
	user := currentUser(c)
	if user.IsDriver {
		writeError(c, http.StatusForbidden, "Doar clienții pot solicita curse.")
		return
	}

	var in ride.Request
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	errs := fieldErrors{}
	if strings.TrimSpace(in.PickupLocation) == "" {
		errs.add("pickup_location", msgRequired)
	}
	if strings.TrimSpace(in.DropoffLocation) == "" {
		errs.add("dropoff_location", msgRequired)
	}
	if in.DistanceKM < ride.MinDistanceKM {
		errs.add("distance_km", "Distanța trebuie să fie de cel puțin 0.1 km.")
	}
	if len(errs) > 0 {
		writeFieldErrors(c, errs)
		return
	}

	now := s.now()
	client := user
	r := s.store.CreateRide(c.Request.Context(), ride.Ride{
		Client:          &client,
		PickupLocation:  strings.TrimSpace(in.PickupLocation),
		PickupLat:       in.PickupLat,
		PickupLng:       in.PickupLng,
		DropoffLocation: strings.TrimSpace(in.DropoffLocation),
		DropoffLat:      in.DropoffLat,
		DropoffLng:      in.DropoffLng,
		DistanceKM:      in.DistanceKM,
		Price:           fare(in.DistanceKM),
		Status:          ride.StatusRequested,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	log.Printf("[Backend] ride %d requested by user_id=%d price=%s", r.ID, user.ID, r.Price)
	c.JSON(http.StatusCreated, r)
}

// handleListRides 乘客看到自己的行程；司機看到自己的行程加上尚未被接的行程。
func (s *Server) handleListRides(c *gin.Context) {
	user := currentUser(c)
	driverID := s.driverID(c, user)
	c.JSON(http.StatusOK, s.store.ListRides(c.Request.Context(), func(r ride.Ride) bool {
		return visible(r, user, driverID)
	}))
}

func (s *Server) handleRideAction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return
	}
	action, ok := actionsByEndpoint[c.Param("action")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	actor := ride.Actor{Role: user.Role()}
	var driverID int64
	if user.IsDriver {
		d, err := s.store.DriverByUser(ctx, user.ID)
		if err != nil {
			writeError(c, http.StatusBadRequest, msgNoDriver)
			return
		}
		actor.Driver = &d
		driverID = d.ID
	}

	// 讀取、檢查與寫回都在 store 的寫鎖內，兩位司機同時 accept 只會有一位成功。
	updated, err := s.store.UpdateRide(ctx, id, func(r ride.Ride) (ride.Ride, error) {
		if !actionable(r, user, driverID, action) {
			return r, errNotVisible
		}
		return ride.Apply(r, action, actor, s.now())
	})
	switch {
	case err == nil:
		log.Printf("[Backend] ride %d %s by user_id=%d -> %s", id, action, user.ID, updated.Status)
		c.JSON(http.StatusOK, updated)
	case errors.Is(err, memory.ErrNotFound), errors.Is(err, errNotVisible):
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
	case errors.Is(err, ride.ErrUnauthorizedRole):
		writeError(c, http.StatusForbidden, roleDenied[action])
	case errors.Is(err, ride.ErrIllegalTransition):
		log.Printf("[Backend] ride %d %s rejected for user_id=%d: %v", id, action, user.ID, err)
		writeError(c, http.StatusBadRequest, illegal[action])
	default:
		writeError(c, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) driverID(c *gin.Context, user auth.User) int64 {
	if !user.IsDriver {
		return 0
	}
	d, err := s.store.DriverByUser(c.Request.Context(), user.ID)
	if err != nil {
		return 0
	}
	return d.ID
}

func visible(r ride.Ride, user auth.User, driverID int64) bool {
	if !user.IsDriver {
		return r.Client != nil && r.Client.ID == user.ID
	}
	if r.Driver == nil {
		return r.Status == ride.StatusRequested
	}
	return r.Driver.ID == driverID
}

// actionable 任何司機都可以嘗試 accept（已被接走時由狀態機拒絕），其他操作限自己綁定的行程。
func actionable(r ride.Ride, user auth.User, driverID int64, action ride.Action) bool {
	if user.IsDriver && action == ride.ActionAccept {
		return true
	}
	if !visible(r, user, driverID) {
		return false
	}
	if user.IsDriver {
		return r.Driver != nil && r.Driver.ID == driverID
	}
	return true
}
