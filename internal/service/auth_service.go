package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

var ErrInvalidCredentials = errors.New("tên đăng nhập hoặc mật khẩu không đúng")
var ErrUserAlreadyExists = errors.New("tên người dùng đã tồn tại")
var ErrTokenInvalid = errors.New("token không hợp lệ hoặc đã hết hạn")
var ErrRefreshTokenInvalid = errors.New("refresh token không hợp lệ hoặc đã hết hạn")

type AuthService struct {
	userRepo           repository.UserRepository
	refreshTokenRepo   repository.RefreshTokenRepository
	jwtSecret          string
	jwtExpirationHours time.Duration
	refreshTokenTTL    time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
	jwtExpHours time.Duration,
	refreshTokenTTLDays int,
) *AuthService {
	return &AuthService{
		userRepo:           userRepo,
		refreshTokenRepo:   refreshTokenRepo,
		jwtSecret:          jwtSecret,
		jwtExpirationHours: jwtExpHours,
		refreshTokenTTL:    time.Duration(refreshTokenTTLDays) * 24 * time.Hour,
	}
}

func (s *AuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error) {
	// Kiểm tra username đã tồn tại chưa
	existingUser, err := s.userRepo.FindByUsername(ctx, dto.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lỗi khi kiểm tra người dùng: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("lỗi hash mật khẩu: %w", err)
	}

	user := &domain.User{
		Username: dto.Username,
		Email:    dto.Email,
		Password: string(hashedPassword),
		Role:     "operator",
	}

	createdUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("lỗi khi tạo người dùng: %w", err)
	}
	createdUser.Password = "" // Không trả về password hash
	return createdUser, nil
}

// GetAllUsers liệt kê người dùng cho admin, không bao giờ trả về password hash
func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("lỗi lấy danh sách người dùng: %w", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByUsername(ctx, dto.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lỗi khi tìm người dùng: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh xoay vòng refresh token: token cũ bị xóa, cấp cặp token mới
func (s *AuthService) Refresh(ctx context.Context, dto domain.RefreshTokenDTO) (*domain.AuthResponseDTO, error) {
	stored, err := s.refreshTokenRepo.FindByToken(ctx, dto.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("lỗi tra cứu refresh token: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		if delErr := s.refreshTokenRepo.Delete(ctx, stored.Token); delErr != nil && !errors.Is(delErr, repository.ErrNotFound) {
			log.Printf("Lỗi xóa refresh token hết hạn: %v", delErr)
		}
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tra cứu người dùng của refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Delete(ctx, stored.Token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lỗi xoay vòng refresh token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.refreshTokenRepo.Delete(ctx, refreshToken)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lỗi xóa refresh token: %w", err)
	}
	return nil
}

// CleanupExpiredTokens chạy định kỳ qua cron để dọn các refresh token hết hạn
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("Lỗi dọn dẹp refresh token hết hạn: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Đã dọn %d refresh token hết hạn", deleted)
	}
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResponseDTO, error) {
	expirationTime := time.Now().Add(s.jwtExpirationHours)
	customClaims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"exp":      expirationTime.Unix(),
		"iat":      time.Now().Unix(),
		"role":     user.Role,
		"username": user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, customClaims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo token: %w", err)
	}

	refreshToken := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL).UTC(),
	}
	if _, err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("lỗi lưu refresh token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:        tokenString,
		RefreshToken: refreshToken.Token,
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
	}, nil
}

// ValidateToken dùng cho middleware
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("phương thức ký không mong muốn: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, nil, fmt.Errorf("%w: token có định dạng sai", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%w: token đã hết hạn", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, nil, fmt.Errorf("%w: token chưa hợp lệ", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}
