package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type FeatureApi struct {
	featureService *services.FeatureService
	validate       *validator.Validate
}

func NewFeatureApi(featureService *services.FeatureService) *FeatureApi {
	return &FeatureApi{
		featureService: featureService,
		validate:       newValidator(),
	}
}

// Verify feature
// @Summary Unlocks a feature with an on-ledger verification transaction
// @Description Signature over "Verify feature: <featureName> for <publicKey>". Each feature can be unlocked once per identity.
// @Tags Features
// @Param feature body types.InputFeatureVerify true "feature verification input"
// @Success 200 {object} types.OutputFeatureVerify
// @Failure 400 {object} api.ApiError "Missing required fields or feature already verified (txHash included)"
// @Failure 401 {object} api.ApiError "Invalid signature"
// @Failure 500 {object} api.ApiError "Fee payer misconfigured, insufficient funds or ledger error"
// @Accept json
// @Produce json
// @Router /api/features/verify [post]
func (fa *FeatureApi) Verify(c *gin.Context) {
	var input types.InputFeatureVerify
	if !bindAndValidate(c, fa.validate, &input) {
		return
	}
	verification, err := fa.featureService.Unlock(c.Request.Context(), input.PublicKey, input.FeatureName, input.Signature)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputFeatureVerify{
		TxHash:       verification.TxHash,
		FeatureName:  verification.FeatureName,
		Explorer:     util.ExplorerLink(global.Conf.Ledger.ExplorerTxUrl, verification.TxHash),
		Verification: verification,
	})
}

// Feature status
// @Summary Lists unlocked features of an identity
// @Tags Features
// @Param publicKey path string true "base58 public key"
// @Success 200 {object} types.OutputFeatureStatus
// @Produce json
// @Router /api/features/status/{publicKey} [get]
func (fa *FeatureApi) Status(c *gin.Context) {
	verifications, err := fa.featureService.ListVerifications(c.Request.Context(), c.Param("publicKey"))
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	names := make([]string, 0, len(verifications))
	for _, v := range verifications {
		names = append(names, v.FeatureName)
	}
	if verifications == nil {
		verifications = []*types.FeatureVerification{}
	}
	c.JSON(http.StatusOK, types.OutputFeatureStatus{VerifiedFeatures: names, Verifications: verifications})
}
