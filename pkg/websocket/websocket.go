package websocketPkg

import (
	"PostureIQ/pkg/analyzer"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const noPersonCode = "no_person"

type IWebsocket interface {
	EstimatePose(ctx context.Context, frame analyzer.Frame) ([]analyzer.Landmark, error)
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type poseResponse struct {
	Landmarks []analyzer.Landmark `json:"landmarks"`
	Error     string              `json:"error,omitempty"`
}

type webSocketClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewPoseClient() IWebsocket {
	timeout := 10 * time.Second
	if v, err := strconv.Atoi(os.Getenv("POSE_TIMEOUT_SECONDS")); err == nil && v > 0 {
		timeout = time.Duration(v) * time.Second
	}

	url := os.Getenv("POSE_SERVICE_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/pose/ws"
	}

	client := New(url, timeout)
	go client.connectInBackground()

	return client
}

func New(url string, readTimeout time.Duration) *webSocketClient {
	return &webSocketClient{
		url:          url,
		pingInterval: 30 * time.Second,
		readTimeout:  readTimeout,
		writeTimeout: 5 * time.Second,
	}
}

func (c *webSocketClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		logrus.Warnf("Initial connection to pose service failed: %v. Will retry on demand.", err)
		return
	}
	logrus.Info("Successfully connected to pose service")
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dialLocked()
}

func (c *webSocketClient) dialLocked() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return errors.New("pose service URL not configured")
	}

	logrus.Debugf("Connecting to pose service at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			logrus.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			logrus.Warnf("Ping failed for pose service, marking connection as dead: %v", err)
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *webSocketClient) dropLocked(conn *websocket.Conn) {
	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

// EstimatePose sends one encoded frame and waits for its landmarks. Requests
// share a single connection, so one exchange runs at a time.
func (c *webSocketClient) EstimatePose(ctx context.Context, frame analyzer.Frame) ([]analyzer.Landmark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.conn == nil {
		if err := c.dialLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to pose service: %w", err)
		}
	}
	conn := c.conn

	readDeadline := time.Now().Add(c.readTimeout)
	writeDeadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok {
		if d.Before(readDeadline) {
			readDeadline = d
		}
		if d.Before(writeDeadline) {
			writeDeadline = d
		}
	}

	conn.SetWriteDeadline(writeDeadline)
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		c.dropLocked(conn)
		return nil, exchangeError(ctx, "error sending pose frame", err)
	}

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.dropLocked(conn)
		return nil, exchangeError(ctx, "error reading pose response", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var res poseResponse
	if err := jsoniter.Unmarshal(message, &res); err != nil {
		return nil, fmt.Errorf("error unmarshaling pose response: %w", err)
	}

	switch {
	case res.Error == noPersonCode:
		return nil, analyzer.ErrNoPersonDetected
	case res.Error != "":
		return nil, fmt.Errorf("pose service error: %s", res.Error)
	case len(res.Landmarks) == 0:
		return nil, analyzer.ErrNoPersonDetected
	}

	logrus.WithFields(logrus.Fields{
		"landmarks": len(res.Landmarks),
		"bytes":     len(frame.Data),
	}).Debug("Received pose landmarks")

	return res.Landmarks, nil
}

// exchangeError reports a socket timeout caused by the caller's deadline as
// that context error, so callers can tell it apart from a sidecar fault.
func exchangeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if d, ok := ctx.Deadline(); ok && !time.Now().Before(d.Add(-time.Millisecond)) {
			return fmt.Errorf("%s: %w", op, context.DeadlineExceeded)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
