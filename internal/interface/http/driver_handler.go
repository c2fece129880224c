package httpapi

import (
	"net/http"

	"ride-hail-client/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleDriverMe(c *gin.Context) {
	d, err := s.store.DriverByUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, http.StatusNotFound, msgNoDriver)
		return
	}
	c.JSON(http.StatusOK, d)
}

// handleDriverUpdate 部分更新：只套用有帶的欄位。
func (s *Server) handleDriverUpdate(c *gin.Context) {
	var body struct {
		IsAvailable   *bool   `json:"is_available"`
		LicenseNumber *string `json:"license_number"`
		CarModel      *string `json:"car_model"`
		CarPlate      *string `json:"car_plate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c).ID
	d, err := s.store.DriverByUser(ctx, userID)
	if err != nil {
		writeError(c, http.StatusNotFound, msgNoDriver)
		return
	}

	if body.LicenseNumber != nil || body.CarModel != nil || body.CarPlate != nil {
		license, model, plate := d.LicenseNumber, d.CarModel, d.CarPlate
		if body.LicenseNumber != nil {
			license = *body.LicenseNumber
		}
		if body.CarModel != nil {
			model = *body.CarModel
		}
		if body.CarPlate != nil {
			plate = *body.CarPlate
		}
		if d, err = s.store.UpdateDriverProfile(ctx, userID, license, model, plate); err != nil {
			writeError(c, http.StatusNotFound, msgNoDriver)
			return
		}
	}
	if body.IsAvailable != nil {
		if d, err = s.store.SetAvailability(ctx, userID, *body.IsAvailable); err != nil {
			writeError(c, http.StatusNotFound, msgNoDriver)
			return
		}
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleAvailableDrivers(c *gin.Context) {
	drivers := s.store.AvailableDrivers(c.Request.Context())
	if drivers == nil {
		drivers = []auth.Driver{}
	}
	c.JSON(http.StatusOK, drivers)
}
