package postureHandler

import (
	"PostureIQ/internal/entity"
	"PostureIQ/internal/middleware"
	contextPkg "PostureIQ/pkg/context"
	"PostureIQ/pkg/response"
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamFrameTimeout = 15 * time.Second
)

func (h *PostureHandler) handleStream(c *websocket.Conn) {
	user, ok := c.Locals(middleware.UserLocalsKey).(entity.UserLoginData)
	if !ok {
		_ = c.WriteJSON(map[string]string{"error": "Unauthorized"})
		return
	}
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)

	entry := h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	})
	entry.Info("Posture stream client connected")
	defer entry.Info("Posture stream client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			entry.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			entry.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				entry.Errorf("Posture stream error: %v", err)
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			entry.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		var reply interface{}
		ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), streamFrameTimeout)
		result, err := h.postureService.AnalyzeFrame(ctx, user.ID, message)
		cancel()
		if err != nil {
			reply = map[string]string{"error": streamErrorMessage(err)}
		} else {
			reply = result
		}

		if err := c.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			entry.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			entry.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

// streamErrorMessage exposes client errors verbatim and hides the rest.
func streamErrorMessage(err error) string {
	var respErr *response.Error
	if errors.As(err, &respErr) && respErr.Code < 500 {
		return respErr.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout"
	}
	return "Internal server error."
}
