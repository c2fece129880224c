package httpapi

import (
	"net/http"
	"time"

	"ride-hail-client/internal/infra/memory"
	authinfra "ride-hail-client/internal/infrastructure/auth"
	"ride-hail-client/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// Server 參考後端：以記憶體資料實作 /api 的帳號、司機與行程端點。
type Server struct {
	engine   *gin.Engine
	store    *memory.Store
	tokenSvc *authinfra.JWTIssuer
	hasher   authinfra.BcryptHasher
	now      func() time.Time
}

// NewServer 建立參考後端；store 為 nil 時使用新的記憶體 Store。
func NewServer(cfg config.BackendConfig, store *memory.Store) *Server {
	if store == nil {
		store = memory.NewStore()
	}
	accessTTL := cfg.TokenTTL
	if accessTTL == 0 {
		accessTTL = 5 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 24 * time.Hour
	}

	s := &Server{
		engine:   gin.New(),
		store:    store,
		tokenSvc: authinfra.NewJWTIssuer(cfg.Secret, accessTTL, refreshTTL, store),
		now:      time.Now,
	}
	s.engine.Use(gin.Recovery(), s.ginLogger(), corsMiddleware())
	s.registerRoutes()
	return s
}

// Handler 回傳路由處理器，供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store 主要用於測試注入初始資料。
func (s *Server) Store() *memory.Store {
	return s.store
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/token/", s.handleToken)
	api.POST("/token/refresh/", s.handleRefresh)
	api.POST("/users/", s.handleRegister)

	authed := api.Group("", s.requireAuth())
	authed.GET("/users/me/", s.handleMe)
	authed.GET("/drivers/me/", s.handleDriverMe)
	authed.PATCH("/drivers/me/", s.handleDriverUpdate)
	authed.GET("/drivers/available/", s.handleAvailableDrivers)
	authed.POST("/rides/", s.handleCreateRide)
	authed.GET("/rides/", s.handleListRides)
	authed.POST("/rides/:id/:action/", s.handleRideAction)
}
