package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendEmailSender delivers verification and reset links through Resend.
// One-time tokens travel as the final path segment of the frontend URL,
// matching what the SPA routes expect.
type ResendEmailSender struct {
	Client     *resend.Client
	From       string
	AppBaseURL string
	VerifyPath string
	ResetPath  string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendEmailSender{}
	}
	return &ResendEmailSender{
		Client:     resend.NewClient(apiKey),
		From:       from,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		VerifyPath: "/verify-email",
		ResetPath:  "/reset-password",
	}
}

func (s *ResendEmailSender) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL(s.VerifyPath, token)
	html := fmt.Sprintf("<p>Welcome to Inkbytr! Please click the link below to verify your email address:</p><a href=%q>Verify Email</a>", link)
	text := fmt.Sprintf("Verify your email: %s", link)
	return s.send(ctx, email, "Verify Your Email Address", html, text)
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	link := s.buildURL(s.ResetPath, token)
	html := fmt.Sprintf("<p>Forgot your password? Click the link below to reset it.</p><a href=%q>Reset Password</a><p>This link is valid for 10 minutes.</p>", link)
	text := fmt.Sprintf("Reset your password here: %s", link)
	return s.send(ctx, email, "Your Password Reset Token (Valid for 10 min)", html, text)
}

func (s *ResendEmailSender) buildURL(path string, token string) string {
	if s.AppBaseURL == "" {
		return token
	}
	return fmt.Sprintf("%s%s/%s", s.AppBaseURL, path, token)
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string, text string) error {
	if s.Client == nil {
		return errors.New("email sender not configured")
	}
	_, err := s.Client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	return err
}
