package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type IdentityApi struct {
	identityService *services.IdentityService
	validate        *validator.Validate
}

func NewIdentityApi(identityService *services.IdentityService) *IdentityApi {
	return &IdentityApi{
		identityService: identityService,
		validate:        newValidator(),
	}
}

// Register identity
// @Summary Register a public key (or update its display name)
// @Tags Identity
// @Param identity body types.InputRegister true "identity"
// @Success 200 {object} types.Identity
// @Failure 400 {object} api.ApiError "validation error"
// @Accept json
// @Produce json
// @Router /api/identity/register [post]
func (ia *IdentityApi) Register(c *gin.Context) {
	var input types.InputRegister
	if !bindAndValidate(c, ia.validate, &input) {
		return
	}
	identity, err := ia.identityService.Register(c.Request.Context(), input.PublicKey, input.DisplayName)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Get identity
// @Summary Returns the identity by public key
// @Tags Identity
// @Param publicKey path string true "base58 public key"
// @Success 200 {object} types.Identity
// @Failure 404 {object} api.ApiError "Identity not found"
// @Produce json
// @Router /api/identity/{publicKey} [get]
func (ia *IdentityApi) GetIdentity(c *gin.Context) {
	identity, err := ia.identityService.Get(c.Request.Context(), c.Param("publicKey"))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "Identity not found")
			return
		}
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Update display name
// @Summary Updates the display name of an identity
// @Tags Identity
// @Param publicKey path string true "base58 public key"
// @Param displayName body types.InputDisplayName true "display name"
// @Success 200 {object} types.Identity
// @Failure 400 {object} api.ApiError "Invalid display name"
// @Failure 404 {object} api.ApiError "Identity not found"
// @Accept json
// @Produce json
// @Router /api/identity/{publicKey} [patch]
func (ia *IdentityApi) UpdateDisplayName(c *gin.Context) {
	var input types.InputDisplayName
	if err := c.ShouldBindJSON(&input); err != nil || ia.validate.Struct(&input) != nil {
		ApiErrorf(c, http.StatusBadRequest, "Invalid display name")
		return
	}
	identity, err := ia.identityService.SetDisplayName(c.Request.Context(), c.Param("publicKey"), input.DisplayName)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "Identity not found")
			return
		}
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Publish identity
// @Summary Anchors the identity on the ledger
// @Description Signature over "Publish identity: <publicKey>". The fee payer sponsors the transaction.
// @Tags Identity
// @Param publish body types.InputPublish true "publish input"
// @Success 200 {object} types.OutputPublish
// @Failure 400 {object} api.ApiError "Missing required fields"
// @Failure 401 {object} api.ApiError "Invalid signature"
// @Failure 500 {object} api.ApiError "Fee payer misconfigured, insufficient funds or ledger error"
// @Accept json
// @Produce json
// @Router /api/identity/publish [post]
func (ia *IdentityApi) Publish(c *gin.Context) {
	var input types.InputPublish
	if !bindAndValidate(c, ia.validate, &input) {
		return
	}
	receipt, err := ia.identityService.Publish(c.Request.Context(), input.PublicKey, input.Signature)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputPublish{
		TxHash:   receipt.TxHash,
		Explorer: util.ExplorerLink(global.Conf.Ledger.ExplorerTxUrl, receipt.TxHash),
	})
}

// Verify signature
// @Summary Checks a detached signature
// @Tags Identity
// @Param verify body types.InputVerifySignature true "message, signature, publicKey"
// @Success 200 {object} types.OutputValid
// @Failure 400 {object} api.ApiError "malformed input"
// @Accept json
// @Produce json
// @Router /api/identity/verify [post]
func (ia *IdentityApi) VerifySignature(c *gin.Context) {
	var input types.InputVerifySignature
	if err := c.ShouldBindJSON(&input); err != nil || ia.validate.Struct(&input) != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "code": CodeValidation, "error": "Missing required fields", "valid": false})
		return
	}
	if !util.IsPublicKey(input.PublicKey) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "code": CodeValidation, "error": "Invalid public key input", "valid": false})
		return
	}
	c.JSON(http.StatusOK, types.OutputValid{Valid: util.VerifyEncoded(input.Message, input.Signature, input.PublicKey)})
}
