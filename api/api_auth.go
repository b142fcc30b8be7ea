package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type AuthApi struct {
	sessionService *services.SessionService
	validate       *validator.Validate
}

func NewAuthApi(sessionService *services.SessionService) *AuthApi {
	return &AuthApi{
		sessionService: sessionService,
		validate:       newValidator(),
	}
}

// Login method
// @Summary Login with a signed challenge
// @Description Verifies the signature of "Login to Zynexa: <timestamp>" and sets the session cookie
// @Tags Auth
// @Param login body types.InputLogin true "login input"
// @Success 200 {object} types.OutputLogin
// @Failure 400 {object} api.ApiError "Missing required fields"
// @Failure 401 {object} api.ApiError "Invalid signature"
// @Failure 404 {object} api.ApiError "Identity not found"
// @Accept json
// @Produce json
// @Router /api/auth/login [post]
func (aa *AuthApi) Login(c *gin.Context) {
	var input types.InputLogin
	if !bindAndValidate(c, aa.validate, &input) {
		return
	}

	session, identity, err := aa.sessionService.Login(c.Request.Context(), input.PublicKey, input.Message, input.Signature)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "Identity not found. Please register first.")
			return
		}
		AbortWithApiError(c, err)
		return
	}
	token, err := aa.sessionService.Token(session)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	setSessionCookie(c, token, aa.sessionService.TTL())
	level.Info(global.Logger).Log("msg", "login", "publicKey", util.ShortKey(input.PublicKey))

	c.JSON(http.StatusOK, types.OutputLogin{Success: true, Identity: identity})
}

// Logout method
// @Summary Destroys the session
// @Tags Auth
// @Success 200 {object} types.OutputSuccess
// @Produce json
// @Router /api/auth/logout [post]
func (aa *AuthApi) Logout(c *gin.Context) {
	if err := aa.sessionService.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		AbortWithApiError(c, err)
		return
	}
	clearSessionCookie(c)
	c.JSON(http.StatusOK, types.OutputSuccess{Success: true})
}

// Session method
// @Summary Returns the identity of the current session
// @Tags Auth
// @Success 200 {object} types.OutputSession
// @Produce json
// @Router /api/auth/session [get]
func (aa *AuthApi) Session(c *gin.Context) {
	identity, err := aa.sessionService.CurrentIdentity(c.Request.Context(), sessionToken(c))
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			c.JSON(http.StatusOK, types.OutputSession{Authenticated: false})
			return
		}
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputSession{Authenticated: true, Identity: identity})
}
