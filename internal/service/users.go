package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mylearnapp/quiz-platform/internal/apperr"
	"github.com/mylearnapp/quiz-platform/internal/domain/entities"
	"github.com/mylearnapp/quiz-platform/internal/repository"
)

// UserService provisions and manages users mirrored from the identity provider.
type UserService struct {
	store  repository.Store
	tr     repository.Transactor
	logger *zap.Logger
}

func NewUserService(store repository.Store, tr repository.Transactor, logger *zap.Logger) *UserService {
	return &UserService{store: store, tr: tr, logger: logger}
}

// Profile is the identity data received from the identity provider.
type Profile struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	Role      string // optional, defaults to student
}

// Provision creates the user if it does not exist yet. The returned flag
// reports whether a new user was created.
func (s *UserService) Provision(ctx context.Context, p Profile) (*entities.User, bool, error) {
	if strings.TrimSpace(p.ClerkID) == "" {
		return nil, false, apperr.Validation("clerk id is required")
	}

	user := entities.NewUser(p.ClerkID, p.Email, p.FirstName, p.LastName)
	if p.Role != "" {
		role, err := entities.ParseRole(p.Role)
		if err != nil {
			return nil, false, apperr.Validation(err.Error())
		}
		user.Role = role
	}

	created := false
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		existing, err := st.Users().GetByClerkID(ctx, p.ClerkID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if user.ID, err = st.Users().Create(ctx, user); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("user provisioned",
			zap.Int64("user_id", user.ID),
			zap.String("clerk_id", user.ClerkID),
			zap.String("role", string(user.Role)),
		)
	}
	return user, created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*entities.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

func (s *UserService) GetByClerkID(ctx context.Context, clerkID string) (*entities.User, error) {
	return s.store.Users().GetByClerkID(ctx, clerkID)
}

// UpdateRole changes the role of the user.
func (s *UserService) UpdateRole(ctx context.Context, clerkID, role string) (*entities.User, error) {
	r, err := entities.ParseRole(role)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var user *entities.User
	err = s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		if user, err = st.Users().GetByClerkID(ctx, clerkID); err != nil {
			return err
		}
		if err := st.Users().UpdateRole(ctx, user.ID, r); err != nil {
			return err
		}
		user.Role = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the user with their attempts and responses. Quizzes the
// user authored are kept and lose their professor.
func (s *UserService) Delete(ctx context.Context, clerkID string) error {
	var (
		user     *entities.User
		attempts int64
	)
	err := s.tr.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		if user, err = st.Users().GetByClerkID(ctx, clerkID); err != nil {
			return err
		}
		if _, err := st.Responses().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if attempts, err = st.Attempts().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := st.Quizzes().ClearProfessor(ctx, user.ID); err != nil {
			return err
		}
		return st.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.Int64("user_id", user.ID),
		zap.String("clerk_id", clerkID),
		zap.Int64("attempts", attempts),
	)
	return nil
}

// CheckRole returns the role of the user.
func (s *UserService) CheckRole(ctx context.Context, clerkID string) (entities.Role, error) {
	user, err := s.store.Users().GetByClerkID(ctx, clerkID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
