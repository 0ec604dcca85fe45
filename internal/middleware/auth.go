package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/schemas"
	"tamuroo-server/internal/utils"
)

// TokenCookieName is the cookie Login sets the session token in.
const TokenCookieName = "token"

// TokenVerifier is satisfied by managers.AccountMgr.
type TokenVerifier interface {
	VerifyToken(token string) (*managers.SessionClaims, error)
}

// VerifyToken requires a session token, read from "Authorization: Bearer <token>" or, when that
// header is absent, from the token cookie. Verified claims are stored under utils.ClaimsKey.
func VerifyToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(TokenCookieName)
		}
		if token == "" {
			utils.WriteAndLogError(c, schemas.NoTokenProvided, http.StatusUnauthorized, errors.New("no token provided"))
			return
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			utils.WriteAndLogError(c, schemas.InvalidToken, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
