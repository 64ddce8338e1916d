package context

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LocalsRequestID is the fiber Locals key set by the request id middleware.
const LocalsRequestID = "X-Request-ID"

const unknownRequestID = "unknown"

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return unknownRequestID
	}
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || requestID == "" {
		return unknownRequestID
	}
	return requestID
}

// FromFiberCtx derives from the request's user context, so a client abort
// cancels downstream work.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	requestID, ok := c.Locals(LocalsRequestID).(string)
	if !ok || requestID == "" {
		requestID = c.Get(fiber.HeaderXRequestID)
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	return WithRequestID(c.UserContext(), requestID)
}

// Detach keeps the request id and values of ctx but not its cancellation,
// for cleanup that has to finish after the response is written.
func Detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
