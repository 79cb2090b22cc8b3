package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// FeatureService gates outbound mail and account creation. Each switch has
// an env toggle, plus an optional remote feature-gate endpoint consulted
// when FEATURE_GATE_URL is set; a denied or unreachable gate fails the
// check and the caller propagates that failure unchanged.
type FeatureService struct {
	gateURL       string
	mailEnabled   bool
	signupEnabled bool
	client        *http.Client
}

func NewFeatureService(gateURL string, mailEnabled, signupEnabled bool) *FeatureService {
	return &FeatureService{
		gateURL:       gateURL,
		mailEnabled:   mailEnabled,
		signupEnabled: signupEnabled,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

func NewFeatureServiceFromEnv() *FeatureService {
	return NewFeatureService(
		os.Getenv("FEATURE_GATE_URL"),
		os.Getenv("SENDMAIL_ENABLED") != "false",
		os.Getenv("SIGNUP_ENABLED") != "false",
	)
}

func (s *FeatureService) CheckSendMail() error {
	if !s.mailEnabled {
		return errors.New("Email sending is currently disabled")
	}
	return s.checkRemote("SEND_MAIL")
}

func (s *FeatureService) CheckSignUp() error {
	if !s.signupEnabled {
		return errors.New("Sign up is currently disabled")
	}
	return s.checkRemote("SIGN_UP")
}

func (s *FeatureService) checkRemote(feature string) error {
	if s.gateURL == "" {
		return nil
	}

	resp, err := s.client.Get(fmt.Sprintf("%s?feature=%s", s.gateURL, feature))
	if err != nil {
		return fmt.Errorf("feature gate unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feature %s is not enabled", feature)
	}
	return nil
}
