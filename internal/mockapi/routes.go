package mockapi

import (
	"net/http"
	"strconv"

	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/internal/middleware"
	"github.com/DeepalakshmiRajendiran/project-management-ai-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(logger.GinRecovery())
	r.Use(logger.GinLogger())
	r.Use(middleware.CORS())
	r.Use(s.journal.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.hooks(), s.handleWS)

	api := r.Group("/api")
	api.Use(s.hooks())

	auth := api.Group("/auth")
	if s.limiter != nil {
		auth.Use(s.limiter.Middleware())
	}
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.GET("/profile", middleware.AuthRequired(), s.profile)
	}

	// Invitees are not logged in yet.
	api.GET("/invitations/:ref", s.getInvitation)
	api.POST("/invitations/:ref/accept", s.acceptInvitation)
	api.POST("/invitations/:ref/decline", s.declineInvitation)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	{
		protected.GET("/projects", s.listProjects)
		protected.POST("/projects", s.createProject)
		protected.GET("/projects/:id", s.getProject)
		protected.PUT("/projects/:id", s.updateProject)
		protected.DELETE("/projects/:id", s.deleteProject)
		protected.GET("/projects/:id/tasks", s.projectTasks)
		protected.GET("/projects/:id/milestones", s.projectMilestones)
		protected.GET("/projects/:id/team", s.projectTeam)
		protected.GET("/projects/:id/time-logs", s.projectTimeLogs)
		protected.GET("/projects/:id/invitations", s.projectInvitations)

		protected.POST("/tasks", s.createTask)
		protected.PUT("/tasks/:id", s.updateTask)
		protected.DELETE("/tasks/:id", s.deleteTask)
		protected.GET("/tasks/:id/comments", s.taskComments)
		protected.GET("/tasks/:id/time-logs", s.taskTimeLogs)

		protected.POST("/milestones", s.createMilestone)
		protected.PUT("/milestones/:id", s.updateMilestone)
		protected.DELETE("/milestones/:id", s.deleteMilestone)
		protected.GET("/milestones/:id/tasks", s.milestoneTasks)

		protected.POST("/time-logs", s.createTimeLog)
		protected.DELETE("/time-logs/:id", s.deleteTimeLog)

		protected.POST("/comments", s.createComment)

		protected.GET("/team/members", s.teamMembers)
		protected.PUT("/team/members/:id/role", s.updateMemberRole)
		protected.DELETE("/team/members/:id", s.removeMember)

		protected.POST("/invitations", s.createInvitation)
		protected.DELETE("/invitations/:ref", s.cancelInvitation)
		protected.POST("/invitations/:ref/resend", s.resendInvitation)

		protected.GET("/events", s.listEvents)
		protected.POST("/events", s.createEvent)
		protected.PUT("/events/:id", s.updateEvent)
		protected.DELETE("/events/:id", s.deleteEvent)

		protected.GET("/notifications", s.listNotifications)
		protected.PUT("/notifications/read-all", s.markAllRead)
		protected.PUT("/notifications/:id/read", s.markRead)
		protected.DELETE("/notifications/:id", s.deleteNotification)
	}

	return r
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
