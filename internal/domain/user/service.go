// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Sentinel errors surfaced to handlers
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// Service handles user account business logic
type Service struct {
	db          *gorm.DB
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, jwtManager *auth.JWTManager, passwordMgr *auth.PasswordManager) *Service {
	return &Service{
		db:          db,
		jwtManager:  jwtManager,
		passwordMgr: passwordMgr,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents partial profile update data
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	AvatarURL *string `json:"avatar_url"`
}

// TokenPair holds the issued access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	User   *User     `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// Register creates a user account together with its profile, cart and
// wishlist in one transaction so every account starts fully equipped.
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	hashed, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile := Profile{
			UserID:        u.ID,
			Phone:         req.Phone,
			Address:       req.Address,
			WalletBalance: decimal.Zero,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		u.Profile = &profile

		if err := tx.Create(&cart.Cart{UserID: u.ID}).Error; err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}
		if err := tx.Create(&wishlist.Wishlist{UserID: u.ID}).Error; err != nil {
			return fmt.Errorf("failed to create wishlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(&u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: &u, Tokens: *tokens}, nil
}

// Login verifies credentials and issues a token pair
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var u User
	if err := s.db.Preload("Profile").Where("email = ?", req.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordMgr.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := s.issueTokens(&u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: &u, Tokens: *tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var u User
	if err := s.db.Where("id = ?", claims.UserID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(&u)
}

// GetProfile returns the user with profile loaded
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	if err := s.db.Preload("Profile").Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies partial updates to the user and profile
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	if _, err := s.GetProfile(userID); err != nil {
		return nil, err
	}

	userUpdates := make(map[string]interface{})
	if req.FirstName != nil {
		userUpdates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		userUpdates["last_name"] = *req.LastName
	}

	profileUpdates := make(map[string]interface{})
	if req.Phone != nil {
		profileUpdates["phone"] = *req.Phone
	}
	if req.Address != nil {
		profileUpdates["address"] = *req.Address
	}
	if req.AvatarURL != nil {
		profileUpdates["avatar_url"] = *req.AvatarURL
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&User{}).Where("id = ?", userID).Updates(userUpdates).Error; err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}
		if len(profileUpdates) > 0 {
			if err := tx.Model(&Profile{}).Where("user_id = ?", userID).Updates(profileUpdates).Error; err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProfile(userID)
}

// TopUpWallet credits the user's wallet balance. The addition happens
// in Go so the balance stays decimal-exact; the compare-and-swap write
// keeps concurrent credits from losing updates.
func (s *Service) TopUpWallet(userID uint, amount decimal.Decimal) (*Profile, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var profile Profile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to retrieve profile: %w", err)
		}

		newBalance := profile.WalletBalance.Add(amount)
		result := tx.Model(&Profile{}).
			Where("user_id = ? AND wallet_balance = ?", userID, profile.WalletBalance).
			Update("wallet_balance", newBalance)
		if result.Error != nil {
			return fmt.Errorf("failed to credit wallet: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("wallet balance changed during top up")
		}
		profile.WalletBalance = newBalance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) issueTokens(u *User) (*TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
