package biz

import (
	"context"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

// UserService handles user accounts and credentials.
type UserService struct {
	ds    store.Factory
	authn auth.Authenticator
}

// NewUserService creates a new UserService.
func NewUserService(ds store.Factory, authn auth.Authenticator) *UserService {
	return &UserService{ds: ds, authn: authn}
}

// Create registers a new user. The plaintext password is hashed before
// it touches the store.
func (s *UserService) Create(ctx context.Context, user *model.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	user.Password = string(hashed)
	return s.ds.Users().Create(ctx, user)
}

// CreateInProject registers a user and enrolls them in a project in
// one transaction. A bad role or project leaves no user behind.
func (s *UserService) CreateInProject(ctx context.Context, user *model.User, password, projectID, roleID string) error {
	if _, err := s.ds.Projects().Get(ctx, projectID); err != nil {
		return err
	}

	role, err := s.ds.Roles().Get(ctx, roleID)
	if err != nil {
		return err
	}
	if !role.IsGlobal && (role.ProjectID == nil || *role.ProjectID != projectID) {
		return errors.ErrRoleScopeInvalid.WithMessage("role belongs to another project")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	user.Password = string(hashed)

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Memberships().Create(ctx, &model.Membership{
			UserID:    user.ID,
			ProjectID: projectID,
			RoleID:    roleID,
		})
	})
}

// ListSupers lists the super users.
func (s *UserService) ListSupers(ctx context.Context) ([]*model.User, error) {
	return s.ds.Users().ListSupers(ctx)
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.ds.Users().Get(ctx, id)
}

// List lists users with pagination.
func (s *UserService) List(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	return s.ds.Users().List(ctx, offset, limit)
}

// Update updates a user's profile fields. Password changes go through
// ChangePassword.
func (s *UserService) Update(ctx context.Context, user *model.User) error {
	current, err := s.ds.Users().Get(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Password = current.Password
	return s.ds.Users().Update(ctx, user)
}

// Delete removes a user and everything hanging off the account:
// memberships, resource grants and API keys go in the same transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.ds.Users().Get(ctx, id); err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Memberships().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Shares().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := tx.Users().DeleteAPIKeysByUser(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
}

// Login verifies the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, username, password string) (auth.Token, *model.User, error) {
	user, err := s.ds.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.IsCode(err, errors.ErrUserNotFound.Code) {
			return nil, nil, errors.ErrPasswordIncorrect
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, errors.ErrPasswordIncorrect
	}

	token, err := s.authn.Sign(ctx, user.ID, auth.WithExtra(map[string]interface{}{
		"username": user.Username,
	}))
	if err != nil {
		return nil, nil, err
	}
	return token, user, nil
}

// Logout revokes the presented token.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.authn.Revoke(ctx, token)
}

// ChangePassword verifies the old password and stores the new hash.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.ds.Users().Get(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.ErrPasswordIncorrect
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	user.Password = string(hashed)
	return s.ds.Users().Update(ctx, user)
}

// IssueAPIKey mints an API key for the user within a project. One key
// per (user, project); re-issuing conflicts.
func (s *UserService) IssueAPIKey(ctx context.Context, userID, projectID string) (*model.APIKey, error) {
	if _, err := s.ds.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.ds.Projects().Get(ctx, projectID); err != nil {
		return nil, err
	}

	key := &model.APIKey{
		UserID:    userID,
		ProjectID: projectID,
		Key:       ulid.Make().String(),
	}
	if err := s.ds.Users().CreateAPIKey(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// GetAPIKey retrieves the API key of the user within a project.
func (s *UserService) GetAPIKey(ctx context.Context, userID, projectID string) (*model.APIKey, error) {
	return s.ds.Users().GetAPIKey(ctx, userID, projectID)
}
