package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrMissingFields      = errors.New("missing required fields")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("old password is incorrect")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrInvalidRole        = errors.New("invalid role")
)

const minPasswordLen = 6

type Service struct {
	repo UserRepository
}

func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// Login checks the credentials against active accounts and records the
// login in the operation log. The audit insert is best effort.
func (s *Service) Login(ctx context.Context, username, password, ip string) (*User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		return nil, "", ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(user.ID, user.Username, user.Name, user.Role)
	if err != nil {
		return nil, "", err
	}

	_ = s.repo.LogOperation(ctx, OperationLog{
		UserID: user.ID,
		Action: "login",
		Detail: "用户登录",
		IP:     ip,
	})

	return user, token, nil
}

type CreateUserInput struct {
	Username string
	Password string
	Name     string
	Role     string
	Phone    *string
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if in.Username == "" || in.Password == "" || in.Name == "" {
		return nil, ErrMissingFields
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if in.Role == "" {
		in.Role = RolePurchaser
	}
	if !ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username: in.Username,
		Password: string(hashed),
		Name:     in.Name,
		Role:     in.Role,
		Phone:    in.Phone,
		Status:   StatusActive,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// ListPurchasers returns the active purchasers, used by review screens
// to filter applications by submitter.
func (s *Service) ListPurchasers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RolePurchaser)
}

type UpdateUserInput struct {
	Name     string
	Role     string
	Phone    *string
	Status   *int
	Password *string
}

func (s *Service) UpdateUser(ctx context.Context, id int, in UpdateUserInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Role != "" {
		if !ValidRole(in.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = in.Role
	}
	if in.Phone != nil {
		user.Phone = in.Phone
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, id, string(hashed)); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id, actorID int) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(ctx, id)
}
