package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func mustCreate(t *testing.T, s *Service, username, password, role string) *User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Password: password,
		Name:     "测试用户",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	service, _ := newTestService(t)

	user := mustCreate(t, service, "zhangsan", "secret123", RolePurchaser)
	if user.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	service, _ := newTestService(t)
	mustCreate(t, service, "zhangsan", "secret123", RolePurchaser)

	_, err := service.CreateUser(context.Background(), CreateUserInput{
		Username: "zhangsan",
		Password: "another123",
		Name:     "李四",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, CreateUserInput{Username: "a", Password: "short", Name: "x"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: err = %v, want ErrPasswordTooShort", err)
	}
	if _, err := service.CreateUser(ctx, CreateUserInput{Username: "", Password: "secret123", Name: "x"}); !errors.Is(err, ErrMissingFields) {
		t.Errorf("empty username: err = %v, want ErrMissingFields", err)
	}
	if _, err := service.CreateUser(ctx, CreateUserInput{Username: "a", Password: "secret123", Name: "x", Role: "manager"}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("unknown role: err = %v, want ErrInvalidRole", err)
	}
}

func TestLoginSuccessIssuesTokenAndLogs(t *testing.T) {
	service, repo := newTestService(t)
	created := mustCreate(t, service, "zhangsan", "secret123", RoleBoss)

	user, token, err := service.Login(context.Background(), "zhangsan", "secret123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Error("empty token")
	}
	if user.ID != created.ID {
		t.Errorf("user ID = %d, want %d", user.ID, created.ID)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != created.ID || claims.Role != RoleBoss || claims.Username != "zhangsan" {
		t.Errorf("claims = %+v", claims)
	}

	logs := repo.Logs()
	if len(logs) != 1 || logs[0].Action != "login" || logs[0].IP != "10.0.0.1" {
		t.Errorf("operation logs = %+v, want one login entry", logs)
	}
}

func TestLoginFailures(t *testing.T) {
	service, _ := newTestService(t)
	user := mustCreate(t, service, "zhangsan", "secret123", RolePurchaser)
	ctx := context.Background()

	if _, _, err := service.Login(ctx, "zhangsan", "wrong-pass", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := service.Login(ctx, "nobody", "secret123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}

	disabled := StatusDisabled
	if _, err := service.UpdateUser(ctx, user.ID, UpdateUserInput{Status: &disabled}); err != nil {
		t.Fatalf("disable user: %v", err)
	}
	if _, _, err := service.Login(ctx, "zhangsan", "secret123", ""); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("disabled account: err = %v, want ErrAccountDisabled", err)
	}
}

func TestChangePassword(t *testing.T) {
	service, _ := newTestService(t)
	user := mustCreate(t, service, "zhangsan", "secret123", RolePurchaser)
	ctx := context.Background()

	if err := service.ChangePassword(ctx, user.ID, "wrong", "newsecret"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong old password: err = %v, want ErrWrongPassword", err)
	}
	if err := service.ChangePassword(ctx, user.ID, "secret123", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short new password: err = %v, want ErrPasswordTooShort", err)
	}

	if err := service.ChangePassword(ctx, user.ID, "secret123", "newsecret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := service.Login(ctx, "zhangsan", "newsecret", ""); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, _, err := service.Login(ctx, "zhangsan", "secret123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works: err = %v", err)
	}
}

func TestDeleteUserGuards(t *testing.T) {
	service, _ := newTestService(t)
	admin := mustCreate(t, service, "admin", "secret123", RoleAdmin)
	other := mustCreate(t, service, "zhangsan", "secret123", RolePurchaser)
	ctx := context.Background()

	if err := service.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrCannotDeleteSelf) {
		t.Errorf("self delete: err = %v, want ErrCannotDeleteSelf", err)
	}
	if err := service.DeleteUser(ctx, other.ID, admin.ID); err != nil {
		t.Fatalf("delete other: %v", err)
	}
	if err := service.DeleteUser(ctx, other.ID, admin.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("delete missing: err = %v, want ErrUserNotFound", err)
	}
}

func TestListPurchasersFiltersRoleAndStatus(t *testing.T) {
	service, _ := newTestService(t)
	mustCreate(t, service, "admin", "secret123", RoleAdmin)
	mustCreate(t, service, "buyer1", "secret123", RolePurchaser)
	buyer2 := mustCreate(t, service, "buyer2", "secret123", RolePurchaser)
	ctx := context.Background()

	disabled := StatusDisabled
	if _, err := service.UpdateUser(ctx, buyer2.ID, UpdateUserInput{Status: &disabled}); err != nil {
		t.Fatalf("disable buyer2: %v", err)
	}

	purchasers, err := service.ListPurchasers(ctx)
	if err != nil {
		t.Fatalf("list purchasers: %v", err)
	}
	if len(purchasers) != 1 || purchasers[0].Username != "buyer1" {
		t.Errorf("purchasers = %+v, want only active buyer1", purchasers)
	}
}
