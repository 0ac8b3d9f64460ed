package auth

import (
	"context"
	"regexp"

	"github.com/harvestlane/storefront-gateway/internal/upstream"
	pkgerrors "github.com/harvestlane/storefront-gateway/pkg/errors"
	"github.com/harvestlane/storefront-gateway/pkg/logger"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// RequestOTPInput starts a login: an OTP is sent to the phone number.
type RequestOTPInput struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
}

// VerifyOTPInput exchanges the received OTP for a session token.
type VerifyOTPInput struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	OTP   string `json:"otp" validate:"required"`
}

// VerifyResult reports the minted token and whether the account still needs
// profile completion before it can order.
type VerifyResult struct {
	Token             string `json:"token"`
	IsProfileComplete bool   `json:"isProfileComplete"`
}

// ProfileInput completes a freshly registered account.
type ProfileInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required"`
}

// Service drives the phone-OTP login flow against the backend.
type Service struct {
	api  upstream.Caller
	logg *logger.Logger
}

// NewService wires the auth flow with the injected backend client.
func NewService(api upstream.Caller, logg *logger.Logger) *Service {
	return &Service{api: api, logg: logg}
}

// RequestOTP asks the backend to send a one-time password to the phone.
func (s *Service) RequestOTP(ctx context.Context, in RequestOTPInput) error {
	if !phonePattern.MatchString(in.Phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, "enter a valid 10-digit phone number")
	}
	if err := s.api.Post(ctx, "/auth/request-otp", "", in, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "auth.request_otp_failed", err)
		}
		return err
	}
	return nil
}

// VerifyOTP exchanges phone + OTP for a session token. A wrong code comes
// back as a backend error and is passed through untouched so the client can
// retry inline.
func (s *Service) VerifyOTP(ctx context.Context, in VerifyOTPInput) (VerifyResult, error) {
	if !phonePattern.MatchString(in.Phone) {
		return VerifyResult{}, pkgerrors.New(pkgerrors.CodeValidation, "enter a valid 10-digit phone number")
	}
	var result VerifyResult
	if err := s.api.Post(ctx, "/auth/verify-otp", "", in, &result); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "auth.verify_otp_failed", err)
		}
		return VerifyResult{}, err
	}
	if result.Token == "" {
		return VerifyResult{}, pkgerrors.New(pkgerrors.CodeDependency, "backend returned no session token")
	}
	return result, nil
}

// CompleteProfile fills in the account details a new user must provide
// before checkout.
func (s *Service) CompleteProfile(ctx context.Context, token string, in ProfileInput) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if err := s.api.Put(ctx, "/auth/complete-profile", token, in, nil); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "auth.complete_profile_failed", err)
		}
		return err
	}
	return nil
}
