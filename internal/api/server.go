// Package api serves the goal tracker over JSON HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imkarma/trophy/internal/auth"
	"github.com/imkarma/trophy/internal/tracker"
)

// Options configures cookies and auth throttling.
type Options struct {
	CookieName        string
	SecureCookie      bool
	AuthRatePerMinute int // 0 disables limiting
}

// Server is the trophy HTTP API.
type Server struct {
	tracker *tracker.Service
	auth    *auth.Service
	opts    Options
	limiter *clientLimiter
	router  *gin.Engine
	now     func() time.Time
}

// NewServer builds the router. gin's mode is left to the caller.
func NewServer(tr *tracker.Service, au *auth.Service, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "trophy_session"
	}
	router := gin.New()

	s := &Server{
		tracker: tr,
		auth:    au,
		opts:    opts,
		limiter: newClientLimiter(opts.AuthRatePerMinute),
		router:  router,
		now:     time.Now,
	}

	router.Use(gin.Recovery(), requestID(), logRequests())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/signup", s.rateLimit(), s.handleSignup)
		api.POST("/login", s.rateLimit(), s.handleLogin)
		api.POST("/logout", s.handleLogout)
		api.GET("/me", s.handleMe)
	}

	authed := api.Group("", s.requireSession())
	{
		authed.GET("/goals", s.handleListGoals)
		authed.POST("/goals", s.handleCreateGoal)
		authed.GET("/goals/shelf", s.handleShelf)
		authed.GET("/goals/:id", s.handleGetGoal)
		authed.PUT("/goals/:id", s.handleUpdateGoal)
		authed.DELETE("/goals/:id", s.handleDeleteGoal)
		authed.GET("/goals/:id/full", s.handleGoalBoard)
		authed.POST("/goals/:id/complete", s.handleCompleteGoal)
		authed.POST("/goals/:id/accomplishments", s.handleCreateAccomplishment)

		authed.PUT("/accomplishments/:id", s.handleUpdateAccomplishment)
		authed.DELETE("/accomplishments/:id", s.handleDeleteAccomplishment)
		authed.POST("/accomplishments/:id/complete", s.handleCompleteAccomplishment)
		authed.POST("/accomplishments/:id/tasks", s.handleCreateTask)

		authed.PUT("/tasks/:id", s.handleUpdateTask)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)
		authed.POST("/tasks/:id/check", s.handleCheckTask)
		authed.GET("/tasks/:id/completions", s.handleTaskLog)
	}

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
