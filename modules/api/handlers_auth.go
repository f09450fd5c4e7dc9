package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/youngcruel/blog-multiutente/modules/auth"
)

// register handles POST /auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	session, err := m.authPort.Register(c.UserContext(), auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		TokenPair: session.Tokens,
		User:      toUserResponse(session.User.ToDomain()),
	})
}

// login handles POST /auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	session, err := m.authPort.Login(c.UserContext(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(SessionResponse{
		TokenPair: session.Tokens,
		User:      toUserResponse(session.User.ToDomain()),
	})
}

// refresh handles POST /auth/refresh.
func (m *APIModule) refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	tokens, err := m.authPort.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}
	return c.JSON(tokens)
}

// forgotPassword handles POST /auth/forgot-password. The response does not
// reveal whether the email is registered.
func (m *APIModule) forgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}

	if err := m.authPort.ForgotPassword(c.UserContext(), req.Email); err != nil {
		log.Printf("[api] Forgot password failed: %v", err)
	}
	return c.JSON(MessageResponse{
		Message: "If the email is registered, a reset link has been sent",
	})
}

// resetPassword handles POST /auth/reset-password/:token.
func (m *APIModule) resetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Password == "" {
		return badRequest(c, "Password is required")
	}

	if err := m.authPort.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Password updated"})
}

// me handles GET /users/me.
func (m *APIModule) me(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := m.authPort.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// updateMe handles PATCH /users/me. It accepts JSON or a multipart form with
// an optional profileImage file.
func (m *APIModule) updateMe(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx := c.UserContext()
	image, err := m.saveUpload(c, "profileImage")
	if err != nil {
		return writeError(c, err)
	}
	if req.Username == nil && image == "" {
		return badRequest(c, "Nothing to update")
	}

	var previous string
	update := auth.UpdateProfileRequest{UserID: claims.UserID, Username: req.Username}
	if image != "" {
		if current, err := m.authPort.GetUser(ctx, claims.UserID); err == nil {
			previous = current.ProfileImage
		}
		update.ProfileImage = &image
	}

	user, err := m.authPort.UpdateProfile(ctx, update)
	if err != nil {
		m.discardUpload(c, image)
		return writeError(c, err)
	}
	m.discardUpload(c, previous)

	return c.JSON(toUserResponse(user))
}
