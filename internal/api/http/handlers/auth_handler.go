package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/haras-web/internal/api/dto"
	"github.com/spec-kit/haras-web/internal/auth"
	"github.com/spec-kit/haras-web/internal/service"
	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

const (
	msgSignedUp  = "تم إنشاء الحساب بنجاح"
	msgWelcome   = "مرحباً "
	msgLoggedOut = "تم تسجيل الخروج"
)

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookies
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookies) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Signup handles POST /api/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("", apperrors.MsgInvalidPayload)
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, pair, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Set(c, pair)
	return c.JSON(dto.SessionResponse{
		Success: true,
		Message: msgSignedUp,
		UserID:  user.ID,
		Role:    user.Role,
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("", apperrors.MsgInvalidPayload)
	}
	req.Normalize()
	if err := dto.Validate(&req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, pair)
	return c.JSON(dto.SessionResponse{
		Success: true,
		Message: msgWelcome + user.Name,
		UserID:  user.ID,
		Role:    user.Role,
	})
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	pair, err := h.auth.Refresh(c.UserContext(), h.cookies.Refresh(c))
	if err != nil {
		return err
	}
	h.cookies.Set(c, pair)
	return c.JSON(dto.MessageResponse{Success: true})
}

// Logout handles POST /api/logout. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext(), h.cookies.Access(c))
	h.cookies.Clear(c)
	return c.JSON(dto.MessageResponse{Success: true, Message: msgLoggedOut})
}

// Me handles GET /api/me behind the auth gate.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.ErrUnauthenticated
	}
	user, err := h.auth.Me(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.MeResponse{Success: true, User: dto.NewUserResponse(user)})
}
