package authHandler

import (
	"PostureIQ/internal/api/auth"
	"PostureIQ/internal/middleware"
	contextPkg "PostureIQ/pkg/context"
	"PostureIQ/pkg/handlerUtil"
	jwtPkg "PostureIQ/pkg/jwt"
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *AuthHandler) HandleLogin(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req auth.LoginUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fiber.ErrBadRequest, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.authService.Auth().Login(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "login")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     jwtPkg.SessionCookie,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(res.ExpiresInHour * float64(time.Hour))),
		HTTPOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *AuthHandler) HandleLogout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     jwtPkg.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(fiber.Map{"message": "You have been logged out."})
}

func (h *AuthHandler) HandleCSRFToken(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"csrf_token": middleware.CSRFToken(ctx)})
}
