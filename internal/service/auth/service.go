package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/notifier"
	"github.com/petfans/petfans-api/internal/repository"
	"github.com/petfans/petfans-api/pkg/auth"
	apperrors "github.com/petfans/petfans-api/pkg/errors"
)

// RequestCooldown is the minimum interval between two codes for the
// same address.
const RequestCooldown = time.Minute

type Service struct {
	users    repository.UserRepository
	codes    repository.LoginCodeRepository
	jwt      auth.JWTService
	notifier *notifier.Notifier
	cooldown *gocache.Cache

	// generateCode is swapped out in tests.
	generateCode func() (string, error)
}

func NewService(users repository.UserRepository, codes repository.LoginCodeRepository, jwtSvc auth.JWTService, n *notifier.Notifier) *Service {
	return &Service{
		users:        users,
		codes:        codes,
		jwt:          jwtSvc,
		notifier:     n,
		cooldown:     gocache.New(RequestCooldown, 5*time.Minute),
		generateCode: randomCode,
	}
}

// RequestCode mails a fresh 6-digit login code to the address. Only the
// bcrypt hash of the code is stored. Requests inside the cooldown
// window are rejected without issuing a code.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	if _, throttled := s.cooldown.Get(email); throttled {
		return apperrors.Conflict("a code was sent recently, try again in a minute", nil)
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate login code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash login code: %w", err)
	}

	lc := &model.LoginCode{
		Email:    email,
		CodeHash: string(hash),
	}
	lc.ID = uuid.New()
	lc.CreatedAt = time.Now()
	lc.UpdatedAt = lc.CreatedAt

	if err := s.codes.Create(ctx, lc); err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}

	msg := notifier.Message{
		Method:    model.MethodEmail,
		Recipient: email,
		Subject:   "Your PetFans login code",
		Body:      fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(model.LoginCodeTTL.Minutes())),
		HTMLBody:  fmt.Sprintf("<p>Your login code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>", code, int(model.LoginCodeTTL.Minutes())),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send login code: %w", err)
	}

	s.cooldown.SetDefault(email, struct{}{})
	return nil
}

// VerifyCode redeems a code. On the first successful verification for
// an address the account is provisioned on the spot. Codes are single
// use and expire after LoginCodeTTL.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (*model.TokenResponse, error) {
	since := time.Now().Add(-model.LoginCodeTTL)
	candidates, err := s.codes.ListRedeemable(ctx, email, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load login codes: %w", err)
	}

	var matched *model.LoginCode
	for _, c := range candidates {
		if !c.IsValid(time.Now()) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) == nil {
			matched = c
			break
		}
	}
	if matched == nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid or expired login code"))
	}

	if err := s.codes.MarkUsed(ctx, matched.ID); err != nil {
		return nil, fmt.Errorf("failed to consume login code: %w", err)
	}

	user, err := s.users.GetOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) issueTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	onboarding := true
	profile, err := s.users.GetProfile(ctx, user.ID)
	if err == nil {
		onboarding = profile.OnboardingRequired()
	}

	return &model.TokenResponse{
		AccessToken:        access,
		RefreshToken:       refresh,
		UserID:             user.ID.String(),
		OnboardingRequired: onboarding,
	}, nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
