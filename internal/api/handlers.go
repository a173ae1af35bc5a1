package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imkarma/trophy/internal/tracker"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type titled struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// bind decodes the JSON body into v, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		writeError(c, fmt.Errorf("%w: %v", tracker.ErrInvalidInput, err))
		return false
	}
	return true
}

// pathID parses the :id path parameter, answering 400 on failure.
func pathID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, fmt.Errorf("%w: bad %s", tracker.ErrInvalidInput, what))
		return 0, false
	}
	return id, true
}

// --- Auth ---

func (s *Server) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, token, int(expiresAt.Sub(s.now()).Seconds()), "/", "", s.opts.SecureCookie, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", s.opts.SecureCookie, true)
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	l, err := s.auth.Signup(c.Request.Context(), req.Username, req.Password, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSessionCookie(c, l.Token, l.ExpiresAt)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "username": l.User.Username})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	l, err := s.auth.Login(c.Request.Context(), req.Username, req.Password, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	s.setSessionCookie(c, l.Token, l.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"ok": true, "username": l.User.Username})
}

func (s *Server) handleLogout(c *gin.Context) {
	token, _ := c.Cookie(s.opts.CookieName)
	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleMe(c *gin.Context) {
	token, _ := c.Cookie(s.opts.CookieName)
	username, err := s.auth.Authenticate(c.Request.Context(), token, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{"username": username}})
}

// --- Goals ---

func (s *Server) handleListGoals(c *gin.Context) {
	cards, err := s.tracker.Overview(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req titled
	if !bind(c, &req) {
		return
	}
	g, err := s.tracker.CreateGoal(c.Request.Context(), currentUser(c), req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "goal_id": g.ID, "goal": g})
}

func (s *Server) handleShelf(c *gin.Context) {
	goals, err := s.tracker.Shelf(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (s *Server) handleGetGoal(c *gin.Context) {
	id, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	g, err := s.tracker.GetGoal(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(c *gin.Context) {
	id, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	var req titled
	if !bind(c, &req) {
		return
	}
	g, err := s.tracker.UpdateGoal(c.Request.Context(), currentUser(c), id, req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "goal": g})
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteGoal(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleGoalBoard(c *gin.Context) {
	id, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	b, err := s.tracker.GoalBoard(c.Request.Context(), currentUser(c), id, s.tracker.Today())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"goal":               b.Goal,
		"active":             b.Accomplishments,
		"completed":          b.CompletedAccomplishments,
		"completion_summary": b.Summary,
		"fully_done":         b.FullyDone,
	})
}

func (s *Server) handleCompleteGoal(c *gin.Context) {
	id, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	g, err := s.tracker.CompleteGoal(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "goal": g})
}

// --- Accomplishments ---

func (s *Server) handleCreateAccomplishment(c *gin.Context) {
	goalID, ok := pathID(c, "goal_id")
	if !ok {
		return
	}
	var req titled
	if !bind(c, &req) {
		return
	}
	a, err := s.tracker.CreateAccomplishment(c.Request.Context(), currentUser(c), goalID, req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "accomplishment_id": a.ID, "accomplishment": a})
}

func (s *Server) handleUpdateAccomplishment(c *gin.Context) {
	id, ok := pathID(c, "accomplishment_id")
	if !ok {
		return
	}
	var req titled
	if !bind(c, &req) {
		return
	}
	a, err := s.tracker.UpdateAccomplishment(c.Request.Context(), currentUser(c), id, req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "accomplishment": a})
}

func (s *Server) handleDeleteAccomplishment(c *gin.Context) {
	id, ok := pathID(c, "accomplishment_id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteAccomplishment(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleCompleteAccomplishment(c *gin.Context) {
	id, ok := pathID(c, "accomplishment_id")
	if !ok {
		return
	}
	a, err := s.tracker.CompleteAccomplishment(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "accomplishment": a})
}

// --- Tasks ---

func (s *Server) handleCreateTask(c *gin.Context) {
	accID, ok := pathID(c, "accomplishment_id")
	if !ok {
		return
	}
	var req tracker.TaskInput
	if !bind(c, &req) {
		return
	}
	t, err := s.tracker.CreateTask(c.Request.Context(), currentUser(c), accID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task_id": t.ID, "task": t})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	var req tracker.TaskPatch
	if !bind(c, &req) {
		return
	}
	t, err := s.tracker.UpdateTask(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteTask(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleCheckTask(c *gin.Context) {
	id, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	res, err := s.tracker.CheckTask(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"done":             res.Progress.Done,
		"total":            res.Progress.Total,
		"complete":         res.Progress.Complete,
		"completion_count": res.CompletionCount,
		"total_required":   res.Task.TotalRequired,
		"is_complete":      res.Progress.Complete,

		"accomplishment_completed": res.AccomplishmentCompleted,
	})
}

func (s *Server) handleTaskLog(c *gin.Context) {
	id, ok := pathID(c, "task_id")
	if !ok {
		return
	}
	rows, err := s.tracker.TaskLog(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
