package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"price-board/internal/auth"
	"price-board/internal/service"
	"price-board/internal/storage"
)

// Options tunes optional handler behaviour.
type Options struct {
	// ProtectAdmin puts user, price and image mutations behind the bearer token check.
	ProtectAdmin bool
	// MaxUploadBytes caps the request body of image uploads.
	MaxUploadBytes int64
	// AllowOrigin is echoed in Access-Control-Allow-Origin.
	AllowOrigin string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	prices   service.PriceService
	images   storage.Service
	verifier auth.Verifier
	logger   *logrus.Logger
	opts     Options
}

func NewHandler(users service.UserService, prices service.PriceService, images storage.Service, verifier auth.Verifier, logger *logrus.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.AllowOrigin == "" {
		opts.AllowOrigin = "*"
	}
	return &Handler{
		users:    users,
		prices:   prices,
		images:   images,
		verifier: verifier,
		logger:   logger,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware(h.opts.AllowOrigin))

	api := router.Group("/api")
	{
		api.POST("/login", h.login)
		api.GET("/protected", h.requireAuth(), h.protected)

		api.GET("/prices", h.listPrices)
		api.GET("/prices/:date", h.getPrices)
		api.GET("/images", h.listImages)
		api.GET("/images/:name", h.getImage)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	admin := api.Group("")
	if h.opts.ProtectAdmin {
		admin.Use(h.requireAuth())
	}
	{
		admin.GET("/users", h.listUsers)
		admin.POST("/users", h.createUser)
		admin.PUT("/users/:username", h.updateUser)
		admin.DELETE("/users/:username", h.deleteUser)

		admin.POST("/prices", h.replacePrices)
		admin.PUT("/prices/:date", h.setPrices)
		admin.DELETE("/prices/:date", h.deletePrices)

		admin.POST("/images", h.uploadImage)
		admin.DELETE("/images/:name", h.deleteImage)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		h.writeError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

func (h *Handler) protected(c *gin.Context) {
	username, _ := auth.UsernameFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "This is a protected route", "username": username})
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	NewUsername string `json:"newUsername"`
	Password    string `json:"password"`
}

// UserResponse mirrors a persisted user record, hash included.
type UserResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to read users")
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = UserResponse{Username: users[i].Username, Password: users[i].PasswordHash}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if _, err := h.users.AddUser(c.Request.Context(), req.Username, req.Password); err != nil {
		h.writeError(c, err, "Failed to add user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User added successfully"})
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	update := service.UserUpdate{NewUsername: req.NewUsername, Password: req.Password}
	if err := h.users.UpdateUser(c.Request.Context(), c.Param("username"), update); err != nil {
		h.writeError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		h.writeError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// writeError maps domain errors to a status and a {message} body. Anything
// unrecognised is logged and answered with a generic 500.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
	case errors.Is(err, service.ErrPriceDateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "No prices for this date"})
	case errors.Is(err, storage.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Image not found"})
	case errors.Is(err, storage.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid image name"})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
