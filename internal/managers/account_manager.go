package managers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tamuroo-server/internal/metrics"
	"tamuroo-server/internal/store"
	"tamuroo-server/internal/utils"
	"tamuroo-server/internal/validation"
)

const (
	usernameMinLength = 2
	usernameMaxLength = 25
)

// EmailVerifier is an optional deliverability check run after the shape rules pass.
type EmailVerifier interface {
	Verify(email string) bool
}

// Session is the result of a successful login.
type Session struct {
	Token  string
	MaxAge time.Duration
	Claims *SessionClaims
}

// AccountMgr drives registration, login, password reset and activation.
type AccountMgr interface {
	Register(ctx context.Context, username, password, email string) error
	Login(ctx context.Context, username, password string) (*Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetCode, newPassword string) error
	ActivateAccount(ctx context.Context, activationCode string) error
	VerifyToken(token string) (*SessionClaims, error)
	// Wait blocks until every notification mail started so far has been handed off.
	Wait()
}

type AccountManager struct {
	users       store.UserCollection
	credentials CredentialMgr
	sessions    JWTMgr
	mail        MailMgr
	verifier    EmailVerifier
	resetTTL    time.Duration

	now     func() time.Time
	newCode func() (string, error)
	pending sync.WaitGroup
}

type AccountManagerOption func(*AccountManager)

func WithEmailVerifier(verifier EmailVerifier) AccountManagerOption {
	return func(am *AccountManager) {
		am.verifier = verifier
	}
}

func NewAccountManager(users store.UserCollection, credentials CredentialMgr, sessions JWTMgr, mail MailMgr,
	resetTTL time.Duration, opts ...AccountManagerOption) *AccountManager {
	am := &AccountManager{
		users:       users,
		credentials: credentials,
		sessions:    sessions,
		mail:        mail,
		resetTTL:    resetTTL,
		now:         time.Now,
		newCode:     utils.GenerateCode,
	}
	for _, opt := range opts {
		opt(am)
	}
	return am
}

func (am *AccountManager) Register(ctx context.Context, username, password, email string) (err error) {
	defer func() { recordOperation("register", err) }()

	messages := validation.Validate(ctx,
		validation.Field{Name: "username", Value: username, Constraints: validation.Constraints{
			MinLength: usernameMinLength,
			MaxLength: usernameMaxLength,
			Required:  true,
			Unique:    true,
			Scope:     am.users,
		}},
		validation.Field{Name: "email", Value: email, Constraints: validation.Constraints{
			Required: true,
			Email:    true,
			Unique:   true,
			Scope:    am.users,
		}},
		validation.Field{Name: "password", Value: password, Constraints: validation.Constraints{Required: true}},
	)
	if len(messages) == 0 && am.verifier != nil && !am.verifier.Verify(email) {
		messages = append(messages, validation.IsEmail("", "email").Message)
	}
	if len(messages) > 0 {
		return newValidationError(messages...)
	}

	hash, err := am.hashPassword(password)
	if err != nil {
		return err
	}
	activationCode, err := am.newCode()
	if err != nil {
		return err
	}

	user := &store.User{
		Username:       username,
		Email:          email,
		Password:       hash,
		CreatedAt:      am.now().UTC(),
		ActivationCode: &activationCode,
	}
	if _, err := am.users.Create(ctx, user); err != nil {
		var dupErr *store.DuplicateKeyError
		if errors.As(err, &dupErr) && (dupErr.Field == store.FieldUsername || dupErr.Field == store.FieldEmail) {
			return newValidationError(string(dupErr.Field) + " already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}

	utils.LogMessageWithFields(ctx, "info", "Registered user "+username)
	am.notify(ctx, "activation", email, func(ctx context.Context) error {
		return am.mail.SendActivationMail(ctx, email, username, activationCode)
	})
	return nil
}

// Login returns ErrInvalidCredentials for an unknown user and for a wrong password alike.
func (am *AccountManager) Login(ctx context.Context, username, password string) (session *Session, err error) {
	defer func() { recordOperation("login", err) }()

	messages := validation.Validate(ctx,
		validation.Field{Name: "username", Value: username, Constraints: validation.Constraints{Required: true}},
		validation.Field{Name: "password", Value: password, Constraints: validation.Constraints{Required: true}},
	)
	if len(messages) > 0 {
		return nil, newValidationError(messages...)
	}

	user, err := am.users.FindOne(ctx, store.UserFilter{Username: username})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var storedHash string
	if user != nil {
		storedHash = user.Password
	}
	if !am.credentials.Verify(password, storedHash) {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := am.sessions.Issue(SessionClaims{
		Username:         user.Username,
		ActivatedAt:      user.ActivatedAt,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	})
	if err != nil {
		return nil, err
	}

	utils.LogMessageWithFields(ctx, "info", "Authentication successful for "+username)
	return &Session{Token: token, MaxAge: am.sessions.TTL(), Claims: claims}, nil
}

// ForgotPassword succeeds whether or not the address is registered. The reset code only leaves by mail.
func (am *AccountManager) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { recordOperation("forgot_password", err) }()

	messages := validation.Validate(ctx,
		validation.Field{Name: "email", Value: email, Constraints: validation.Constraints{Required: true, Email: true}},
	)
	if len(messages) > 0 {
		return newValidationError(messages...)
	}

	user, err := am.users.FindOne(ctx, store.UserFilter{Email: email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.LogMessageWithFields(ctx, "debug", "Password reset requested for unknown address")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	resetCode, err := am.newCode()
	if err != nil {
		return err
	}
	expiresAt := am.now().Add(am.resetTTL).UnixMilli()
	user.ResetPasswordCode = &resetCode
	user.ResetPasswordAt = &expiresAt

	if err := am.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}

	username := user.Username
	am.notify(ctx, "password_reset", email, func(ctx context.Context) error {
		return am.mail.SendPasswordResetMail(ctx, email, username, resetCode, am.resetTTL)
	})
	return nil
}

// ResetPassword looks the code up before validating the new password, so an unknown
// or expired code is reported even when the password is blank.
func (am *AccountManager) ResetPassword(ctx context.Context, resetCode, newPassword string) (err error) {
	defer func() { recordOperation("reset_password", err) }()

	if resetCode == "" {
		return ErrInvalidOrExpiredResetCode
	}

	user, err := am.users.FindOne(ctx, store.UserFilter{ResetPasswordCode: resetCode, ResetValidAt: am.now()})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredResetCode
		}
		return fmt.Errorf("find user: %w", err)
	}

	messages := validation.Validate(ctx,
		validation.Field{Name: "password", Value: newPassword, Constraints: validation.Constraints{Required: true}},
	)
	if len(messages) > 0 {
		return newValidationError(messages...)
	}

	hash, err := am.hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	user.ResetPasswordCode = nil
	user.ResetPasswordAt = nil

	if err := am.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}

// ActivateAccount consumes a pending activation code. Replaying a consumed code yields ErrAlreadyActivated.
func (am *AccountManager) ActivateAccount(ctx context.Context, activationCode string) (err error) {
	defer func() { recordOperation("activate", err) }()

	if activationCode == "" {
		return ErrActivationCodeNotFound
	}

	user, err := am.users.FindOne(ctx, store.UserFilter{AnyActivationCode: activationCode})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActivationCodeNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsActivated() {
		return ErrAlreadyActivated
	}

	activatedAt := am.now().UTC()
	user.ActivatedAt = &activatedAt
	user.ConsumedActivationCode = user.ActivationCode
	user.ActivationCode = nil

	if err := am.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save activation: %w", err)
	}
	return nil
}

func (am *AccountManager) VerifyToken(token string) (*SessionClaims, error) {
	return am.sessions.Verify(token)
}

func (am *AccountManager) Wait() {
	am.pending.Wait()
}

func (am *AccountManager) hashPassword(password string) (string, error) {
	hash, err := am.credentials.Hash(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return "", newValidationError("password should be at most 72 bytes long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// notify sends a mail in the background. Failures are logged and counted, never returned.
// The send outlives the request, so it runs on a context without the request's cancellation.
func (am *AccountManager) notify(ctx context.Context, kind, recipient string, send func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	am.pending.Add(1)
	go func() {
		defer am.pending.Done()
		if err := send(ctx); err != nil {
			metrics.RecordMailFailure(kind)
			utils.EntryWithTrace(ctx).WithError(err).WithField("recipient", recipient).Warn("Error sending " + kind + " mail")
		}
	}()
}

func recordOperation(operation string, err error) {
	var validationErr *ValidationError
	switch {
	case err == nil:
		metrics.RecordAccountOperation(operation, metrics.ResultSuccess)
	case errors.As(err, &validationErr),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidOrExpiredResetCode),
		errors.Is(err, ErrActivationCodeNotFound),
		errors.Is(err, ErrAlreadyActivated):
		metrics.RecordAccountOperation(operation, metrics.ResultRejected)
	default:
		metrics.RecordAccountOperation(operation, metrics.ResultError)
	}
}
