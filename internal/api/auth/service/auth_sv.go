package authService

import (
	"PostureIQ/internal/api/auth"
	contextPkg "PostureIQ/pkg/context"
	jwtPkg "PostureIQ/pkg/jwt"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

func (s *authDomainImpl) Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginUserResponse{}, err
	}

	user, err := repo.Users.GetByUsername(c, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("Login attempt for unknown username")
			return auth.LoginUserResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginUserResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.PasswordHash, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
		}).Warn("Login attempt with wrong password")
		return auth.LoginUserResponse{}, auth.ErrInvalidCredentials
	}

	ttl := jwtPkg.SessionTTL()
	token, _, err := jwtPkg.Sign(user.LoginData().Claims(), ttl)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return auth.LoginUserResponse{}, err
	}

	return auth.LoginUserResponse{
		AccessToken:   token,
		ExpiresInHour: ttl.Hours(),
	}, nil
}
