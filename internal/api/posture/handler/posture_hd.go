package postureHandler

import (
	"PostureIQ/internal/api/posture"
	contextPkg "PostureIQ/pkg/context"
	"PostureIQ/pkg/handlerUtil"
	jwtPkg "PostureIQ/pkg/jwt"
	"PostureIQ/pkg/utils"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HandleDetectPosture accepts a JSON base64 image or a multipart "image" file.
func (h *PostureHandler) HandleDetectPosture(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var res posture.DetectResponse
	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		image, err := h.readUpload(ctx)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_file")
		}

		res, err = h.postureService.DetectImage(c, userData.ID, image)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_posture")
		}
	} else {
		var req posture.DetectRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, posture.ErrNoImage, ctx.Path(), "parse_request_body")
		}

		res, err = h.postureService.DetectBase64(c, userData.ID, req.Image)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_posture")
		}
	}

	// A stored record is reported as saved even when the deadline has passed.
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func (h *PostureHandler) readUpload(ctx *fiber.Ctx) ([]byte, error) {
	file, err := ctx.FormFile("image")
	if err != nil {
		return nil, posture.ErrNoImage
	}

	if err := h.utils.ValidateImageFile(file); err != nil {
		switch {
		case errors.Is(err, utils.ErrFileTooLarge):
			return nil, posture.ErrImageTooLarge
		case errors.Is(err, utils.ErrNotAnImage):
			return nil, posture.ErrInvalidImageFile
		default:
			return nil, posture.ErrNoImage
		}
	}

	return h.utils.ReadImageFile(file)
}

func (h *PostureHandler) HandleMockSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req posture.MockSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, posture.ErrInvalidScores, ctx.Path(), "parse_request_body")
	}

	if len(req.Scores) == 0 {
		return errHandler.Handle(ctx, requestID, posture.ErrInvalidScores, ctx.Path(), "validate_scores")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.postureService.SaveMockSession(c, userData.ID, req.Scores)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "save_mock_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func (h *PostureHandler) HandleDashboard(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	res, err := h.postureService.Dashboard(c, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_dashboard")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *PostureHandler) HandleReport(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	report, err := h.postureService.Report(c, userData, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_report")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", report.FileName))
		return ctx.Status(fiber.StatusOK).SendString(report.Body)
	}
}

func (h *PostureHandler) HandleSnapshot(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	res, err := h.postureService.SnapshotURL(c, userData.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_snapshot")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
