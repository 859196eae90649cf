package service

import (
	"context"
	"strings"
	"time"

	"inkbytr/internal/entity"
	"inkbytr/internal/repository"
	"inkbytr/internal/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type AuthService struct {
	users         repository.UserRepository
	emailSender   EmailSender
	passwordHash  PasswordHasher
	sessionTokens SessionTokenIssuer
	clock         Clock
	logger        logrus.FieldLogger
	config        AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	sessionTokens SessionTokenIssuer,
	clock Clock,
	logger logrus.FieldLogger,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		users:         users,
		emailSender:   emailSender,
		passwordHash:  passwordHash,
		sessionTokens: sessionTokens,
		clock:         clock,
		logger:        logger,
		config:        config,
	}
}

// Register creates an unverified account and emails a verification link.
// The plaintext token leaves the process only inside that link.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return ErrInvalidInput
	}

	normalized := utils.NormalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := s.passwordHash.Hash(password)
	if err != nil {
		return err
	}

	user := &entity.User{
		Email:        normalized,
		PasswordHash: hash,
		Role:         entity.UserRoleUser,
		IsVerified:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	token, err := s.issueVerificationToken(ctx, user.ID)
	if err != nil {
		return err
	}
	s.sendEmail(ctx, user.Email, token, emailVerification)
	return nil
}

// Login returns a fresh session token. Unknown email and wrong password
// produce the same error after the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return "", ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, password)
		return "", ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", ErrEmailNotVerified
	}

	token, _, err := s.sessionTokens.IssueSessionToken(*user)
	return token, err
}

// VerifyEmail consumes the verification token and auto-logs the user in.
// Consumption clears the slot in the same document update, so a replayed
// link fails.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}

	user, err := s.users.ConsumeVerificationToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidToken
	}

	signed, _, err := s.sessionTokens.IssueSessionToken(*user)
	return signed, err
}

// ForgotPassword acknowledges identically whether or not the account
// exists, to keep the email space unenumerable.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.issueResetToken(ctx, user.ID)
	if err != nil {
		return err
	}
	s.sendEmail(ctx, user.Email, token, emailReset)
	return nil
}

// ResetPassword consumes the reset token, installs the new password hash
// in the same update, and auto-logs the user in.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(newPassword) == "" {
		return "", ErrInvalidInput
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return "", err
	}

	user, err := s.users.ConsumeResetToken(ctx, utils.HashToken(token), hash, s.now())
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidToken
	}

	signed, _, err := s.sessionTokens.IssueSessionToken(*user)
	return signed, err
}

func (s *AuthService) issueVerificationToken(ctx context.Context, userID bson.ObjectID) (string, error) {
	raw, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	expiresAt := s.now().Add(s.verificationTokenTTL())
	if err := s.users.SetVerificationToken(ctx, userID, utils.HashToken(raw), expiresAt); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *AuthService) issueResetToken(ctx context.Context, userID bson.ObjectID) (string, error) {
	raw, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	expiresAt := s.now().Add(s.resetTokenTTL())
	if err := s.users.SetResetToken(ctx, userID, utils.HashToken(raw), expiresAt); err != nil {
		return "", err
	}
	return raw, nil
}

type emailKind int

const (
	emailVerification emailKind = iota
	emailReset
)

func (s *AuthService) sendEmail(ctx context.Context, email, token string, kind emailKind) {
	if s.emailSender == nil {
		return
	}
	var err error
	switch kind {
	case emailVerification:
		err = s.emailSender.SendVerificationEmail(ctx, email, token)
	case emailReset:
		err = s.emailSender.SendPasswordResetEmail(ctx, email, token)
	}
	if err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("email", email).Error("email delivery failed")
	}
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) verificationTokenTTL() time.Duration {
	if s.config.VerificationTokenTTL > 0 {
		return s.config.VerificationTokenTTL
	}
	return 24 * time.Hour
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return 10 * time.Minute
}
