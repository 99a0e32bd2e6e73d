package handlers

import (
	"scango/internal/middleware"
	"scango/internal/services"
	"scango/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", guards.Authenticated, h.HandleLogout)

	router.Post("/admin/login", h.HandleAdminLogin)
}

// HandleRegister creates a customer account and signs it in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	result, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"session": result.Session,
		"user":    result.User,
	})
}

// LoginRequest is the customer login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest is the administrator login form.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin signs a customer in and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := validation.Struct(h.validate, req); err != nil {
		return respondError(c, h.logger, "Validation failed", err)
	}

	result, err := h.authService.LoginCustomer(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("customer login failed", zap.String("email", req.Email), zap.Error(err))
		return respondError(c, h.logger, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"session": result.Session,
		"user":    result.User,
	})
}

// HandleAdminLogin signs the store administrator in.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := validation.Struct(h.validate, req); err != nil {
		return respondError(c, h.logger, "Validation failed", err)
	}

	result, err := h.authService.LoginAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("admin login failed", zap.String("username", req.Username), zap.Error(err))
		return respondError(c, h.logger, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"session": result.Session,
	})
}

// HandleLogout ends the caller's session; its token stops working immediately.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if err := h.authService.Logout(c.UserContext(), sess.ID); err != nil {
		return respondError(c, h.logger, "Could not log out", err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
