package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tamuroo-server/internal/managers"
	"tamuroo-server/internal/middleware"
	"tamuroo-server/internal/schemas"
	"tamuroo-server/internal/utils"
)

type UserHdl interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
	Logout(c *gin.Context)
	ActivateAccount(c *gin.Context)
	Me(c *gin.Context)
}

type UserHandler struct {
	AccountManager managers.AccountMgr
	SecureCookies  bool
}

// NewUserHandler returns the account endpoints. secureCookies marks the session cookie Secure and is set in production.
func NewUserHandler(accountMgr managers.AccountMgr, secureCookies bool) UserHdl {
	return &UserHandler{
		AccountManager: accountMgr,
		SecureCookies:  secureCookies,
	}
}

func (handler *UserHandler) Register(c *gin.Context) {
	request := &schemas.RegistrationRequest{}
	if !bindJSON(c, request) {
		return
	}

	if err := handler.AccountManager.Register(c.Request.Context(), request.Username, request.Password, request.Email); err != nil {
		writeAccountError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "User registered successfully"}, http.StatusCreated)
}

func (handler *UserHandler) Login(c *gin.Context) {
	request := &schemas.LoginRequest{}
	if !bindJSON(c, request) {
		return
	}

	session, err := handler.AccountManager.Login(c.Request.Context(), request.Username, request.Password)
	if err != nil {
		writeAccountError(c, err)
		return
	}

	// Max-Age follows the token TTL so the cookie never outlives the token.
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, session.Token, int(session.MaxAge.Seconds()), "/", "", handler.SecureCookies, true)

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Authentication successful!"}, http.StatusOK)
}

func (handler *UserHandler) ForgotPassword(c *gin.Context) {
	request := &schemas.ForgotPasswordRequest{}
	if !bindJSON(c, request) {
		return
	}

	if err := handler.AccountManager.ForgotPassword(c.Request.Context(), request.Email); err != nil {
		writeAccountError(c, err)
		return
	}

	response := &schemas.MessageDTO{Message: "Password reset instructions sent to your email if an account exists."}
	utils.WriteAndLogResponse(c, response, http.StatusOK)
}

func (handler *UserHandler) ResetPassword(c *gin.Context) {
	request := &schemas.ResetPasswordRequest{}
	if !bindJSON(c, request) {
		return
	}

	if err := handler.AccountManager.ResetPassword(c.Request.Context(), request.ResetToken, request.NewPassword); err != nil {
		writeAccountError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password reset successfully"}, http.StatusOK)
}

// Logout only clears the cookie. Tokens stay valid until they expire.
func (handler *UserHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", handler.SecureCookies, true)

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Logout successful"}, http.StatusOK)
}

func (handler *UserHandler) ActivateAccount(c *gin.Context) {
	if err := handler.AccountManager.ActivateAccount(c.Request.Context(), c.Param(utils.ActivationCodeKey)); err != nil {
		writeAccountError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Account activated successfully"}, http.StatusOK)
}

func (handler *UserHandler) Me(c *gin.Context) {
	claims, ok := c.Get(utils.ClaimsKey.String())
	if !ok {
		utils.WriteAndLogError(c, schemas.NoTokenProvided, http.StatusUnauthorized, errors.New("claims missing from context"))
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MeDTO{User: claims.(*managers.SessionClaims)}, http.StatusOK)
}

// bindJSON decodes the request body into obj. An empty body decodes to the zero value
// so that the field rules report what is missing.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteAndLogError(c, schemas.InvalidJSON, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeAccountError(c *gin.Context, err error) {
	var validationErr *managers.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.WriteAndLogError(c, schemas.ValidationFailed, http.StatusUnauthorized, err, validationErr.Messages...)
	case errors.Is(err, managers.ErrInvalidCredentials):
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
	case errors.Is(err, managers.ErrInvalidOrExpiredResetCode):
		utils.WriteAndLogError(c, schemas.InvalidOrExpiredResetToken, http.StatusBadRequest, err)
	case errors.Is(err, managers.ErrActivationCodeNotFound):
		utils.WriteAndLogError(c, schemas.ActivationCodeNotFound, http.StatusNotFound, err)
	case errors.Is(err, managers.ErrAlreadyActivated):
		utils.WriteAndLogError(c, schemas.AlreadyActivated, http.StatusBadRequest, err)
	default:
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
	}
}
