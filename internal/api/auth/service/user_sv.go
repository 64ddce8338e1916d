package authService

import (
	"PostureIQ/internal/api/auth"
	"PostureIQ/internal/entity"
	"PostureIQ/pkg/bcrypt"
	contextPkg "PostureIQ/pkg/context"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *userDomainImpl) RegisterUser(c context.Context, req auth.CreateUserRequest) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	hashed, err := s.bcryptUtils.HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return auth.UserResponse{}, auth.ErrPasswordTooLong
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.UserResponse{}, err
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate user id")
		return auth.UserResponse{}, err
	}

	user := entity.User{
		ID:           id,
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		CreatedAt:    now,
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.UserResponse{}, err
	}

	if err := repo.Users.CreateUser(c, user); err != nil {
		return auth.UserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
	}).Info("User registered")

	return makeUserResponse(user), nil
}

func (s *userDomainImpl) GetByID(c context.Context, id string) (auth.UserResponse, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(c, id)
	if err != nil {
		return auth.UserResponse{}, err
	}

	return makeUserResponse(user), nil
}

// DeleteUser removes the account and, through the foreign key cascade, its
// records. Stored snapshots are removed after the commit.
func (s *userDomainImpl) DeleteUser(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to begin transaction")
		return err
	}

	keys, err := repo.Users.ListSnapshotKeys(c, id)
	if err != nil {
		_ = repo.Rollback()
		return err
	}

	if err := repo.Users.DeleteUser(c, id); err != nil {
		_ = repo.Rollback()
		return err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit user deletion")
		return err
	}

	if s.s3Client != nil && len(keys) > 0 {
		cleanupCtx, cancel := contextPkg.Detach(c, 30*time.Second)
		defer cancel()

		if err := s.s3Client.DeleteFiles(cleanupCtx, keys); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    id,
				"snapshots":  len(keys),
				"error":      err.Error(),
			}).Warn("Failed to delete stored snapshots")
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    id,
	}).Info("User deleted")

	return nil
}

func makeUserResponse(u entity.User) auth.UserResponse {
	return auth.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
