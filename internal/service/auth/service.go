package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/medibook/medibook-api/config"
	"github.com/medibook/medibook-api/internal/model"
	"github.com/medibook/medibook-api/internal/repository"
	"github.com/medibook/medibook-api/pkg/auth"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

const (
	bcryptCost             = 12
	defaultDoctorImage     = "https://img.freepik.com/free-vector/doctor-character-background_1270-84.jpg"
	defaultDoctorRating    = 4.0
	googleUserInfoURL      = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleAuthEndpoint     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultRefreshValidity = 30 * 24 * time.Hour
)

// Service is the identity provider: it owns sign-in/up/out, the Google
// OAuth redirect flow and session introspection. It is constructed once at
// startup and injected wherever identity is needed.
type Service struct {
	userRepo      repository.UserRepository
	profileRepo   repository.ProfileRepository
	doctorRepo    repository.DoctorRepository
	tokenRepo     repository.TokenRepository
	jwtSvc        auth.JWTService
	oauthCfg      *oauth2.Config
	tokenExpiry   time.Duration
	refreshExpiry time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	doctorRepo repository.DoctorRepository,
	tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService,
	cfg config.JWTConfig,
	google config.GoogleOAuthConfig,
) *Service {
	refreshExpiry := time.Duration(cfg.RefreshExpiryHours) * time.Hour
	if refreshExpiry <= 0 {
		refreshExpiry = defaultRefreshValidity
	}
	return &Service{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		doctorRepo:    doctorRepo,
		tokenRepo:     tokenRepo,
		jwtSvc:        jwtSvc,
		tokenExpiry:   time.Duration(cfg.ExpiryHours) * time.Hour,
		refreshExpiry: refreshExpiry,
		oauthCfg: &oauth2.Config{
			ClientID:     google.ClientID,
			ClientSecret: google.ClientSecret,
			RedirectURL:  google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthEndpoint,
				TokenURL: googleTokenEndpoint,
			},
		},
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	return s.generateTokens(ctx, user)
}

// Register creates a patient account along with its write-once profile row.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.BadRequest("email already registered", ErrEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashed),
		Name:         req.Name,
		Provider:     model.AuthProviderEmail,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &model.Profile{ID: user.ID, FullName: &req.Name}
	if req.Phone != "" {
		profile.Phone = &req.Phone
	}
	if req.DateOfBirth != "" {
		profile.DateOfBirth = &req.DateOfBirth
	}
	if req.Gender != "" {
		profile.Gender = &req.Gender
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.generateTokens(ctx, user)
}

// RegisterDoctor creates an account carrying the doctor capability flag and
// inserts the public doctor row in the same flow.
func (s *Service) RegisterDoctor(ctx context.Context, req *model.RegisterDoctorRequest) (*model.TokenResponse, error) {
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.BadRequest("email already registered", ErrEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashed),
		Name:         req.Name,
		IsDoctor:     true,
		Provider:     model.AuthProviderEmail,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = defaultDoctorImage
	}
	doctor := &model.Doctor{
		ID:             user.ID.String(),
		Name:           req.Name,
		Specialization: req.Specialization,
		Education:      req.Education,
		Experience:     req.Experience,
		About:          req.About,
		ImageURL:       imageURL,
		Rating:         defaultDoctorRating,
	}
	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	return s.generateTokens(ctx, user)
}

func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokenRepo.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid refresh token: %w", err))
	}

	valid, err := s.tokenRepo.IsRefreshTokenValid(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !valid {
		return nil, apperrors.Unauthorized(errors.New("refresh token revoked"))
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokens(ctx, user)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

// CurrentUser backs GET /auth/session.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.Get(ctx, userID)
}

// IsDoctor is a capability check against the account flag, not a role
// lookup.
func (s *Service) IsDoctor(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsDoctor, nil
}

// GoogleAuthURL returns the redirect URL that starts the OAuth flow.
func (s *Service) GoogleAuthURL(state string) string {
	return s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback exchanges the authorization code, upserts the account by
// email and issues the usual token pair.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*model.TokenResponse, error) {
	token, err := s.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("oauth exchange failed: %w", err))
	}

	client := s.oauthCfg.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request returned %d", resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if gu.Email == "" {
		return nil, apperrors.Unauthorized(errors.New("google account has no email"))
	}

	user, err := s.userRepo.GetByEmail(ctx, gu.Email)
	if err != nil {
		user = &model.User{
			ID:       uuid.New(),
			Email:    gu.Email,
			Name:     gu.Name,
			Provider: model.AuthProviderGoogle,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		profile := &model.Profile{ID: user.ID, FullName: &user.Name}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	return s.generateTokens(ctx, user)
}

func (s *Service) generateTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokenRepo.StoreRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.refreshExpiry)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenExpiry.Seconds()),
		User:         user,
	}, nil
}
