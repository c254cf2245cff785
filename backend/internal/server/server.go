package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"graphmem/backend/internal/memory"
	"graphmem/backend/internal/projects"
	"graphmem/backend/internal/tasks"
	apperrors "graphmem/backend/pkg/errors"
	"graphmem/backend/pkg/logger"
)

// Server wires the HTTP API over the memory facade
type Server struct {
	svc      *memory.Service
	tasks    *tasks.Manager
	projects *projects.Explorer
	log      *zap.Logger
}

// New creates the API server
func New(svc *memory.Service, taskMgr *tasks.Manager, explorer *projects.Explorer) *Server {
	return &Server{
		svc:      svc,
		tasks:    taskMgr,
		projects: explorer,
		log:      logger.Named("server"),
	}
}

// Router builds the gin engine with all routes and middleware
func (s *Server) Router(production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(s.log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/entities", s.createEntities)
		api.GET("/entities", s.findEntitiesByLabels)
		api.DELETE("/entities", s.deleteEntities)
		api.GET("/entities/:name", s.getEntity)
		api.PATCH("/entities/:name", s.updateEntity)
		api.GET("/entities/:name/related", s.findRelatedEntities)
		api.PUT("/entities/:name/observations", s.setObservations)
		api.POST("/entities/:name/observations", s.addObservations)
		api.DELETE("/entities/:name/observations", s.removeObservations)

		api.POST("/relationships", s.createRelationships)
		api.GET("/relationships", s.findRelationships)
		api.PATCH("/relationships", s.updateRelationship)
		api.DELETE("/relationships", s.deleteRelationships)

		api.POST("/tasks", s.createTask)
		api.GET("/tasks", s.listTasks)
		api.GET("/tasks/:name", s.getTask)
		api.PATCH("/tasks/:name", s.updateTask)
		api.DELETE("/tasks/:name", s.deleteTask)

		api.GET("/projects", s.listProjects)
		api.GET("/projects/:name/context", s.getProjectContext)
	}

	return router
}

func (s *Server) createEntities(c *gin.Context) {
	var req struct {
		Entities []memory.Entity `json:"entities" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.CreateEntities(c.Request.Context(), req.Entities); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(req.Entities)})
}

func (s *Server) getEntity(c *gin.Context) {
	name := c.Param("name")

	entity, err := s.svc.FindEntityByName(c.Request.Context(), name)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if entity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (s *Server) findEntitiesByLabels(c *gin.Context) {
	var labels []string
	if raw := c.Query("labels"); raw != "" {
		labels = strings.Split(raw, ",")
	}
	mode := memory.ParseLabelMatchMode(c.Query("match"))
	required := c.Query("required_label")

	entities, err := s.svc.FindEntitiesByLabels(c.Request.Context(), labels, mode, required)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (s *Server) findRelatedEntities(c *gin.Context) {
	name := c.Param("name")
	relType := c.Query("type")
	direction := memory.ParseRelationshipDirection(c.Query("direction"))
	depth := 1
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be an integer"})
			return
		}
		depth = parsed
	}

	entities, err := s.svc.FindRelatedEntities(c.Request.Context(), name, relType, direction, depth)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (s *Server) updateEntity(c *gin.Context) {
	name := c.Param("name")

	var update memory.EntityUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.UpdateEntity(c.Request.Context(), name, update); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) deleteEntities(c *gin.Context) {
	var req struct {
		Names []string `json:"names" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.DeleteEntities(c.Request.Context(), req.Names); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.Names)})
}

func (s *Server) setObservations(c *gin.Context) {
	s.observations(c, s.svc.SetObservations)
}

func (s *Server) addObservations(c *gin.Context) {
	s.observations(c, s.svc.AddObservations)
}

func (s *Server) removeObservations(c *gin.Context) {
	s.observations(c, s.svc.RemoveObservations)
}

func (s *Server) observations(c *gin.Context, op func(ctx context.Context, name string, observations []string) error) {
	name := c.Param("name")

	var req struct {
		Observations []string `json:"observations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := op(c.Request.Context(), name, req.Observations); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) createRelationships(c *gin.Context) {
	var req struct {
		Relationships []memory.Relationship `json:"relationships" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.CreateRelationships(c.Request.Context(), req.Relationships); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(req.Relationships)})
}

func (s *Server) findRelationships(c *gin.Context) {
	filter := memory.RelationshipFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
		Name: c.Query("name"),
	}

	relationships, err := s.svc.FindRelationships(c.Request.Context(), filter)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": relationships})
}

func (s *Server) updateRelationship(c *gin.Context) {
	var req struct {
		From   string                    `json:"from" binding:"required"`
		To     string                    `json:"to" binding:"required"`
		Name   string                    `json:"name" binding:"required"`
		Update memory.RelationshipUpdate `json:"update"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.UpdateRelationship(c.Request.Context(), req.From, req.To, req.Name, req.Update); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (s *Server) deleteRelationships(c *gin.Context) {
	var req struct {
		Relationships []memory.RelationshipRef `json:"relationships" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.svc.DeleteRelationships(c.Request.Context(), req.Relationships); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.Relationships)})
}

func (s *Server) createTask(c *gin.Context) {
	var req tasks.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) listTasks(c *gin.Context) {
	project := c.Query("project")
	status := tasks.Status(c.Query("status"))

	list, err := s.tasks.ListTasks(c.Request.Context(), project, status)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.tasks.GetTask(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var patch tasks.TaskUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), c.Param("name"), patch)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.tasks.DeleteTask(c.Request.Context(), c.Param("name")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) listProjects(c *gin.Context) {
	list, err := s.projects.ListProjects(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (s *Server) getProjectContext(c *gin.Context) {
	depth := 1
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be an integer"})
			return
		}
		depth = parsed
	}

	result, err := s.projects.GetContext(c.Request.Context(), c.Param("name"), depth)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// renderError maps domain errors onto HTTP status codes. Validation outcomes
// carry their details; internal failures are logged and masked.
func (s *Server) renderError(c *gin.Context, err error) {
	var valErr *apperrors.ValidationError
	var batchErr *apperrors.BatchError
	var notFound *apperrors.EntityNotFoundError
	switch {
	case errors.As(err, &batchErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": batchErr.Error(), "rejected": batchErr.Items})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.Is(err, apperrors.ErrMissingProject), errors.Is(err, tasks.ErrSelfDependency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// ginLogger is a request logging middleware in front of every route
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
