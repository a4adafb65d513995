package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, repository.ErrDuplicateEntry
		}
	}
	stored := *user
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []domain.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]*domain.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{nextID: 1, tokens: map[string]*domain.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	stored.ID = r.nextID
	r.nextID++
	r.tokens[stored.Token] = &stored
	out := stored
	return &out, nil
}

func (r *fakeRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *fakeRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, t := range r.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func newAuthTestService() (*AuthService, *fakeUserRepo, *fakeRefreshTokenRepo) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	svc := NewAuthService(userRepo, tokenRepo, "test-secret", time.Hour, 7)
	return svc, userRepo, tokenRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"})
	if err != nil {
		t.Fatalf("Register trả về lỗi: %v", err)
	}
	if user.Role != "operator" {
		t.Errorf("role mặc định phải là operator, nhận %q", user.Role)
	}
	if user.Password != "" {
		t.Error("Register không được trả về password hash")
	}

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "operator1", Password: "matkhau123"})
	if err != nil {
		t.Fatalf("Login trả về lỗi: %v", err)
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Error("Login phải trả về cả access token và refresh token")
	}

	_, claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken thất bại với token vừa cấp: %v", err)
	}
	if claims["username"] != "operator1" {
		t.Errorf("claim username sai: %v", claims["username"])
	}
	if claims["role"] != "operator" {
		t.Errorf("claim role sai: %v", claims["role"])
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register lần đầu thất bại: %v", err)
	}
	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "khac456"})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("đăng ký trùng username phải trả về ErrUserAlreadyExists, nhận %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginUserDTO{Username: "operator1", Password: "sai"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("sai mật khẩu phải trả về ErrInvalidCredentials, nhận %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginUserDTO{Username: "khongtontai", Password: "matkhau123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("username không tồn tại phải trả về ErrInvalidCredentials, nhận %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokenRepo := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}
	loginResp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "operator1", Password: "matkhau123"})
	if err != nil {
		t.Fatalf("Login thất bại: %v", err)
	}

	refreshResp, err := svc.Refresh(ctx, domain.RefreshTokenDTO{RefreshToken: loginResp.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh trả về lỗi: %v", err)
	}
	if refreshResp.RefreshToken == loginResp.RefreshToken {
		t.Error("Refresh phải cấp refresh token mới (xoay vòng)")
	}

	// Token cũ đã bị thu hồi, dùng lại phải thất bại
	if _, err := tokenRepo.FindByToken(ctx, loginResp.RefreshToken); !errors.Is(err, repository.ErrNotFound) {
		t.Error("refresh token cũ phải bị xóa khỏi kho sau khi xoay vòng")
	}
	if _, err := svc.Refresh(ctx, domain.RefreshTokenDTO{RefreshToken: loginResp.RefreshToken}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("dùng lại refresh token cũ phải trả về ErrRefreshTokenInvalid, nhận %v", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthTestService()
	ctx := context.Background()

	user, err := userRepo.Create(ctx, &domain.User{Username: "operator1", Role: "operator"})
	if err != nil {
		t.Fatalf("tạo user thất bại: %v", err)
	}
	expired := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     "het-han",
		ExpiresAt: time.Now().Add(-time.Minute).UTC(),
	}
	if _, err := tokenRepo.Create(ctx, expired); err != nil {
		t.Fatalf("tạo refresh token thất bại: %v", err)
	}

	if _, err := svc.Refresh(ctx, domain.RefreshTokenDTO{RefreshToken: "het-han"}); !errors.Is(err, ErrRefreshTokenInvalid) {
		t.Errorf("refresh token hết hạn phải trả về ErrRefreshTokenInvalid, nhận %v", err)
	}
	if _, err := tokenRepo.FindByToken(ctx, "het-han"); !errors.Is(err, repository.ErrNotFound) {
		t.Error("refresh token hết hạn phải bị xóa khi bị từ chối")
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, tokenRepo := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}
	loginResp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "operator1", Password: "matkhau123"})
	if err != nil {
		t.Fatalf("Login thất bại: %v", err)
	}

	if err := svc.Logout(ctx, loginResp.RefreshToken); err != nil {
		t.Fatalf("Logout trả về lỗi: %v", err)
	}
	if _, err := tokenRepo.FindByToken(ctx, loginResp.RefreshToken); !errors.Is(err, repository.ErrNotFound) {
		t.Error("refresh token phải bị xóa sau logout")
	}
	// Logout lặp lại với token đã xóa không được báo lỗi
	if err := svc.Logout(ctx, loginResp.RefreshToken); err != nil {
		t.Errorf("Logout với token không tồn tại phải im lặng, nhận %v", err)
	}
}

func TestGetAllUsersHidesPasswordHash(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}
	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator2", Password: "matkhau456"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}

	users, err := svc.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("GetAllUsers trả về lỗi: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("số người dùng = %d, muốn 2", len(users))
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("danh sách người dùng không được chứa password hash (user %s)", u.Username)
		}
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc, _, _ := newAuthTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "operator1", Password: "matkhau123"}); err != nil {
		t.Fatalf("Register thất bại: %v", err)
	}
	loginResp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "operator1", Password: "matkhau123"})
	if err != nil {
		t.Fatalf("Login thất bại: %v", err)
	}

	// Token ký bằng secret khác phải bị từ chối
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	forged, err := other.SignedString([]byte("secret-khac"))
	if err != nil {
		t.Fatalf("không ký được token giả: %v", err)
	}
	if _, _, err := svc.ValidateToken(forged); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token ký sai secret phải trả về ErrTokenInvalid, nhận %v", err)
	}

	if _, _, err := svc.ValidateToken(loginResp.Token + "x"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token bị sửa phải trả về ErrTokenInvalid, nhận %v", err)
	}
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, userRepo, tokenRepo := newAuthTestService()
	ctx := context.Background()

	user, err := userRepo.Create(ctx, &domain.User{Username: "operator1", Role: "operator"})
	if err != nil {
		t.Fatalf("tạo user thất bại: %v", err)
	}
	if _, err := tokenRepo.Create(ctx, &domain.RefreshToken{UserID: user.ID, Token: "con-han", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("tạo token thất bại: %v", err)
	}
	if _, err := tokenRepo.Create(ctx, &domain.RefreshToken{UserID: user.ID, Token: "het-han", ExpiresAt: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("tạo token thất bại: %v", err)
	}

	svc.CleanupExpiredTokens(ctx)

	if _, err := tokenRepo.FindByToken(ctx, "con-han"); err != nil {
		t.Error("token còn hạn không được bị dọn")
	}
	if _, err := tokenRepo.FindByToken(ctx, "het-han"); !errors.Is(err, repository.ErrNotFound) {
		t.Error("token hết hạn phải bị dọn")
	}
}
