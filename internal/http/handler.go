package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/wasteops-collections/internal/auth"
	"github.com/nurpe/wasteops-collections/internal/http/middleware"
	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/service"
	"github.com/nurpe/wasteops-collections/internal/stats"
)

type Handler struct {
	identity    *service.IdentityService
	collections *service.CollectionService
	reports     *service.ReportService
	tokens      *auth.Parser
	tokenTTL    time.Duration
	log         zerolog.Logger
}

func NewHandler(
	identity *service.IdentityService,
	collections *service.CollectionService,
	reports *service.ReportService,
	tokens *auth.Parser,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		identity:    identity,
		collections: collections,
		reports:     reports,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/auth/logout", h.logout)
	protected.GET("/auth/me", h.me)

	protected.GET("/collections", h.listCollections)
	protected.POST("/collections", middleware.RequireRole(model.UserRoleClient), h.createCollection)

	company := protected.Group("/collections")
	company.Use(middleware.RequireRole(model.UserRoleCollectionCompany))
	company.GET("/available", h.listAvailable)
	company.POST("/:id/accept", h.acceptCollection)
	company.POST("/:id/complete", h.completeCollection)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(model.UserRoleAdmin))
	admin.GET("/collections", h.listAllCollections)
	admin.GET("/users", h.listUsers)

	protected.GET("/reports", h.listReports)
	protected.GET("/stats", h.stats)
	protected.GET("/stats/export", h.exportStats)
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CompanyName string `json:"company_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	User      *model.User `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := uuid.NewString()
	user, err := h.identity.Register(c.Request.Context(), sessionID, service.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		Role:        model.UserRole(strings.ToLower(strings.TrimSpace(req.Role))),
		Phone:       req.Phone,
		Address:     req.Address,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.respondWithSession(c, http.StatusCreated, user, sessionID)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := uuid.NewString()
	user, ok := h.identity.Login(c.Request.Context(), sessionID, req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	h.respondWithSession(c, http.StatusOK, user, sessionID)
}

func (h *Handler) respondWithSession(c *gin.Context, status int, user *model.User, sessionID string) {
	token, claims, err := h.tokens.Issue(*user, sessionID, h.tokenTTL)
	if err != nil {
		h.identity.Logout(c.Request.Context(), sessionID)
		h.handleError(c, err)
		return
	}

	resp := sessionResponse{Token: token, User: user}
	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time.UTC()
		resp.ExpiresAt = &expiresAt
	}
	c.JSON(status, resp)
}

func (h *Handler) logout(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	h.identity.Logout(c.Request.Context(), principal.SessionID)
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	user, ok := h.identity.GetUser(c.Request.Context(), principal.UserID)
	if !ok {
		h.handleError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

type createCollectionRequest struct {
	WasteType     string `json:"waste_type" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	ScheduledTime string `json:"scheduled_time"`
	Address       string `json:"address"`
	QuantityKg    int    `json:"quantity_kg"`
	Notes         string `json:"notes"`
}

func (h *Handler) createCollection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduled, ok := model.ParseTime(req.ScheduledDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_date"})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		if user, found := h.identity.GetUser(c.Request.Context(), principal.UserID); found {
			address = user.Address()
		}
	}

	created, err := h.collections.Create(c.Request.Context(), service.CreateCollectionInput{
		ClientID:      principal.UserID,
		WasteType:     model.WasteType(strings.ToLower(strings.TrimSpace(req.WasteType))),
		ScheduledDate: scheduled,
		ScheduledTime: strings.TrimSpace(req.ScheduledTime),
		Address:       address,
		QuantityKg:    req.QuantityKg,
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listCollections(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.collections.CollectionsForUser(c.Request.Context(), principal.UserID)})
}

func (h *Handler) listAvailable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.collections.ListAvailable(c.Request.Context())})
}

func (h *Handler) acceptCollection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	accepted, err := h.collections.Accept(c.Request.Context(), c.Param("id"), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, accepted)
}

func (h *Handler) completeCollection(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	completed, err := h.collections.Complete(c.Request.Context(), c.Param("id"), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}

func (h *Handler) listAllCollections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.collections.ListAll(c.Request.Context())})
}

func (h *Handler) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.identity.ListUsers(c.Request.Context())})
}

func (h *Handler) listReports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.reports.Reports(c.Request.Context(), principal)})
}

func (h *Handler) stats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	c.JSON(http.StatusOK, h.reports.Stats(c.Request.Context(), principal, statsFilter(c)))
}

func (h *Handler) exportStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.reports.Export(c.Request.Context(), service.ExportInput{
		Principal: principal,
		Filter:    statsFilter(c),
		Format:    format,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func statsFilter(c *gin.Context) model.StatsFilter {
	return model.StatsFilter{
		Window:    stats.ParseWindow(c.Query("window")),
		WasteType: stats.ParseWasteType(c.Query("type")),
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyAssigned), errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
