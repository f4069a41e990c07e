package credstore

import (
	"github.com/gofiber/fiber/v2"

	session "github.com/goliatone/go-session"
)

// HTTPController exposes the service over fiber
type HTTPController struct {
	service *Service
}

// NewHTTPController creates the handlers
func NewHTTPController(service *Service) *HTTPController {
	return &HTTPController{service: service}
}

// RegisterRoutes mounts the auth routes on r, protected routes behind auth
func (h *HTTPController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/signup", h.Signup)
	group.Post("/login", h.Login)
	group.Get("/profile", auth, h.Profile)
	group.Put("/profile", auth, h.UpdateProfile)
}

// Signup handles POST /auth/signup
func (h *HTTPController) Signup(c *fiber.Ctx) error {
	var req session.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}

	res, err := h.service.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /auth/login
func (h *HTTPController) Login(c *fiber.Ctx) error {
	var req session.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}

	res, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(res)
}

// Profile handles GET /auth/profile
func (h *HTTPController) Profile(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return ErrMissingToken
	}

	user, err := h.service.Profile(c.UserContext(), claims.UserID())
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// UpdateProfile handles PUT /auth/profile
func (h *HTTPController) UpdateProfile(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return ErrMissingToken
	}

	var patch session.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidPayload(err)
	}

	echo, err := h.service.UpdateProfile(c.UserContext(), claims.UserID(), patch)
	if err != nil {
		return err
	}

	return c.JSON(echo)
}
