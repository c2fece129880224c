package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/infra/memory"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleToken(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	errs := fieldErrors{}
	if strings.TrimSpace(body.Username) == "" {
		errs.add("username", msgRequired)
	}
	if body.Password == "" {
		errs.add("password", msgRequired)
	}
	if len(errs) > 0 {
		writeFieldErrors(c, errs)
		return
	}

	user, hash, err := s.store.FindByUsername(c.Request.Context(), body.Username)
	if err != nil || !s.hasher.Compare(hash, body.Password) {
		log.Printf("[Auth] login failure for %s", body.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": msgBadCreds})
		return
	}

	pair, err := s.tokenSvc.Issue(user)
	if err != nil {
		log.Printf("[Auth] issue token for %s: %v", body.Username, err)
		writeError(c, http.StatusInternalServerError, "token issue failed")
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if body.Refresh == "" {
		writeFieldErrors(c, fieldErrors{"refresh": {msgRequired}})
		return
	}

	access, err := s.tokenSvc.Refresh(c.Request.Context(), body.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) handleRegister(c *gin.Context) {
	var reg auth.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(reg.Username) == "" {
		errs.add("username", msgRequired)
	}
	if reg.Password == "" {
		errs.add("password", msgRequired)
	} else if reg.Password != reg.Password2 {
		errs.add("password", msgPasswordMatch)
	}
	if reg.Password2 == "" {
		errs.add("password2", msgRequired)
	}
	if len(errs) > 0 {
		writeFieldErrors(c, errs)
		return
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "hash password failed")
		return
	}
	user, err := s.store.CreateUser(c.Request.Context(), auth.User{
		Username:  strings.TrimSpace(reg.Username),
		Email:     reg.Email,
		Phone:     reg.Phone,
		IsDriver:  reg.IsDriver,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}, hash)
	if errors.Is(err, memory.ErrUsernameTaken) {
		writeFieldErrors(c, fieldErrors{"username": {msgUsernameTaken}})
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("[Auth] registered user_id=%d username=%s driver=%v", user.ID, user.Username, user.IsDriver)
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
