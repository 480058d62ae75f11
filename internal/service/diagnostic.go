package service

import (
	"context"
	"fmt"

	"whatsapp-disparador/internal/birthday"
	"whatsapp-disparador/internal/config"
	"whatsapp-disparador/internal/model"
	"whatsapp-disparador/pkg/logger"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	keyPrefixLen = 7
	keySuffixLen = 6
)

// DiagnosticRequest is the part of an HTTP request the report inspects
type DiagnosticRequest struct {
	Authorization string
	Origin        string
	Method        string
}

// Reporter assembles the billing/auth configuration report
type Reporter struct {
	secrets  config.SecretSource
	identity IdentityProvider
	clock    birthday.Clock
	logger   *logger.Logger
}

// NewReporter creates a diagnostic reporter
func NewReporter(secrets config.SecretSource, identity IdentityProvider, clock birthday.Clock, log *logger.Logger) *Reporter {
	return &Reporter{
		secrets:  secrets,
		identity: identity,
		clock:    clock,
		logger:   log.WithComponent("diagnostic"),
	}
}

// Now returns the report timestamp for the current instant
func (r *Reporter) Now() string {
	return r.clock.Now().UTC().Format(TimestampLayout)
}

// Run builds the report. Token validation failures are recorded in the
// report; an error is returned only when a secret cannot be read at all.
func (r *Reporter) Run(ctx context.Context, req DiagnosticRequest) (model.DiagnosticReport, error) {
	report := model.DiagnosticReport{Timestamp: r.Now()}

	stripeKey, stripeOK, err := r.secrets.Lookup(config.EnvStripeKey)
	if err != nil {
		return model.DiagnosticReport{}, fmt.Errorf("read %s: %w", config.EnvStripeKey, err)
	}
	oldKey, oldOK, err := r.secrets.Lookup(config.EnvLegacyStripeKey)
	if err != nil {
		return model.DiagnosticReport{}, fmt.Errorf("read %s: %w", config.EnvLegacyStripeKey, err)
	}
	report.Stripe = model.StripeSection{
		KeyConfigured: stripeOK,
		KeySuffix:     fragment(stripeKey, stripeOK, keySuffix),
		KeyPrefix:     fragment(stripeKey, stripeOK, keyPrefix),
		OldKeyExists:  oldOK,
		OldKeySuffix:  fragment(oldKey, oldOK, keySuffix),
	}

	urlSet, err := r.presence(config.EnvBackendURL)
	if err != nil {
		return model.DiagnosticReport{}, err
	}
	roleKeySet, err := r.presence(config.EnvServiceRoleKey)
	if err != nil {
		return model.DiagnosticReport{}, err
	}
	report.Environment = model.EnvironmentSection{
		SupabaseURL:    urlSet,
		ServiceRoleKey: roleKeySet,
	}

	report.Authentication = r.authenticate(ctx, req.Authorization)

	origin := req.Origin
	if origin == "" {
		origin = model.NoOrigin
	}
	report.CORS = model.CORSSection{
		Origin:            origin,
		Method:            req.Method,
		HeadersConfigured: true,
	}

	r.logger.Info("Diagnostic report generated",
		"key_configured", report.Stripe.KeyConfigured,
		"header_present", report.Authentication.HeaderPresent,
		"origin", origin,
	)

	return report, nil
}

func (r *Reporter) authenticate(ctx context.Context, header string) model.AuthenticationReport {
	auth := model.AuthenticationReport{HeaderPresent: header != ""}
	if !auth.HeaderPresent {
		return auth
	}

	user, err := r.lookupUser(ctx, BearerToken(header))
	valid := err == nil
	auth.ValidToken = &valid
	if err != nil {
		msg := err.Error()
		auth.Error = &msg
		r.logger.WithError(err).Debug("Diagnostic token rejected")
		return auth
	}
	if user.ID != "" {
		auth.UserID = &user.ID
	}
	if user.Email != "" {
		auth.UserEmail = &user.Email
	}
	return auth
}

// lookupUser turns a panic inside the identity provider into an error so
// it is reported in the authentication section like any other rejection
func (r *Reporter) lookupUser(ctx context.Context, token string) (user *model.User, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Identity provider panicked", "panic", rec)
			user, err = nil, fmt.Errorf("identity provider panic: %v", rec)
		}
	}()
	return r.identity.GetUser(ctx, token)
}

func (r *Reporter) presence(name string) (string, error) {
	_, ok, err := r.secrets.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if ok {
		return model.ValueSet, nil
	}
	return model.ValueNotSet, nil
}

func fragment(value string, ok bool, cut func(string) string) string {
	if !ok {
		return model.ValueNotSet
	}
	return cut(value)
}

func keyPrefix(s string) string {
	if len(s) <= keyPrefixLen {
		return s
	}
	return s[:keyPrefixLen]
}

func keySuffix(s string) string {
	if len(s) <= keySuffixLen {
		return s
	}
	return s[len(s)-keySuffixLen:]
}
