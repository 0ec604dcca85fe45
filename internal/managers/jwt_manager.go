package managers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "tamuroo.com"

var signingMethods = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SessionClaims is the payload of a session token. The subject is the user id.
type SessionClaims struct {
	Username    string     `json:"username"`
	ActivatedAt *time.Time `json:"activated_at"`
	jwt.RegisteredClaims
}

type JWTMgr interface {
	// Issue signs claims and fills in issuer, issued-at, expiry and token id.
	Issue(claims SessionClaims) (string, *SessionClaims, error)
	Verify(token string) (*SessionClaims, error)
	TTL() time.Duration
}

// JWTManager signs and verifies HMAC session tokens with a shared secret.
type JWTManager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager accepts HS256, HS384 and HS512.
func NewJWTManager(secret, algorithm string, ttl time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}

	return &JWTManager{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (jm *JWTManager) TTL() time.Duration {
	return jm.ttl
}

func (jm *JWTManager) Issue(claims SessionClaims) (string, *SessionClaims, error) {
	now := jm.now()
	claims.Issuer = tokenIssuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(jm.ttl))
	claims.ID = uuid.New().String()

	token, err := jwt.NewWithClaims(jm.method, claims).SignedString(jm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &claims, nil
}

// Verify returns ErrTokenExpired for tokens past their expiry and ErrInvalidToken for everything else that fails.
func (jm *JWTManager) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return jm.secret, nil
	},
		jwt.WithValidMethods([]string{jm.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(jm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
