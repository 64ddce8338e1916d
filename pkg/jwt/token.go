package jwtPkg

import (
	"PostureIQ/internal/entity"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookie   = "session"
	SecretEnvKey    = "JWT_ACCESS_TOKEN_SECRET"
	defaultTTLHours = 12
)

var (
	ErrNoToken            = errors.New("no session token")
	ErrInvalidAuthHeader  = errors.New("invalid Authorization format")
	ErrSecretNotSet       = errors.New("JWT secret not configured")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

func SessionTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || hours <= 0 {
		hours = defaultTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func Sign(Data map[string]interface{}, ExpiredAt time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(ExpiredAt).Unix()

	JWTSecretKey := os.Getenv(SecretEnvKey)
	if JWTSecretKey == "" {
		return "", 0, fmt.Errorf("%s not set", SecretEnvKey)
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["authorization"] = true

	for i, v := range Data {
		claims[i] = v
	}

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(JWTSecretKey))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// TokenFromRequest returns the session token and whether it came from an
// Authorization header. The header wins over the session cookie.
func TokenFromRequest(c *fiber.Ctx) (string, bool, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return "", true, ErrInvalidAuthHeader
		}
		return token, true, nil
	}

	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie, false, nil
	}

	return "", false, ErrNoToken
}

func IsBearer(c *fiber.Ctx) bool {
	return c.Get(fiber.HeaderAuthorization) != ""
}

func VerifyToken(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	accessToken, _, err := TokenFromRequest(c)
	if err != nil {
		return nil, err
	}

	return Parse(accessToken, secretEnvKey)
}

func Parse(accessToken string, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "Parse")

	JWTSecretKey := os.Getenv(secretEnvKey)
	if JWTSecretKey == "" {
		log.Error("JWT_ACCESS_TOKEN_SECRET environment variable not set")
		return nil, ErrSecretNotSet
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(JWTSecretKey), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		log.WithError(err).Debug("Failed to parse JWT token")
		return nil, err
	}

	return token, nil
}

func LoginDataFromToken(token *jwt.Token) (entity.UserLoginData, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.UserLoginData{}, ErrInvalidTokenClaims
	}

	user, ok := entity.UserLoginDataFromClaims(claims)
	if !ok {
		return entity.UserLoginData{}, ErrInvalidTokenClaims
	}

	return user, nil
}

func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	userData := c.Locals("user")

	user, ok := userData.(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}

	return user, nil
}
