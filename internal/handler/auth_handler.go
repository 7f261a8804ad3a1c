package handler

import (
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	log         *zap.Logger
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, log: log}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(response)
}

// Signup registers a store and its owner, then signs the owner in.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req service.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	response, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), principal(c)); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out", "redirect": "/"})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(response)
}

func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	if err := h.authService.Heartbeat(c.UserContext(), principal(c)); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.authService.ChangePassword(c.UserContext(), principal(c), &req); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	me, err := h.authService.Me(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(me)
}

// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	me, err := h.userService.UpdateProfile(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(me)
}
