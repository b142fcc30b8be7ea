package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/types"
)

const (
	CodeInvalidSignature      = "invalid_signature"
	CodeUnauthenticated       = "unauthenticated"
	CodeForbidden             = "forbidden"
	CodeFeatureLocked         = "feature_locked"
	CodeNotFound              = "not_found"
	CodeValidation            = "validation_error"
	CodeAlreadyVerified       = "already_verified"
	CodeAlreadyPublished      = "already_published"
	CodeReplayDetected        = "replay_detected"
	CodeRateLimited           = "rate_limited"
	CodeFeePayerMisconfigured = "fee_payer_misconfigured"
	CodeInsufficientFunds     = "insufficient_funds"
	CodeLedger                = "ledger_error"
	CodeInternal              = "internal_error"
)

type ApiError struct {
	// Status is the HTTP status code
	Status int `json:"status"`
	// Code is a stable machine readable error kind
	Code string `json:"code"`
	// Message is the error message
	Message     string `json:"error"`
	TxHash      string `json:"txHash,omitempty"`
	FeatureName string `json:"featureName,omitempty"`
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	}
	return CodeInternal
}

func ApiErrorf(c *gin.Context, status int, format string, args ...interface{}) ApiError {
	ar := ApiError{
		Status:  status,
		Code:    defaultCode(status),
		Message: fmt.Sprintf(format, args...),
	}
	c.AbortWithStatusJSON(status, ar)
	return ar
}

// ToApiError maps service errors to their HTTP representation
func ToApiError(err error) ApiError {
	var alreadyVerified *types.AlreadyVerifiedError
	if errors.As(err, &alreadyVerified) {
		ae := ApiError{Status: http.StatusBadRequest, Code: CodeAlreadyVerified, Message: "Feature already verified"}
		if alreadyVerified.Verification != nil {
			ae.TxHash = alreadyVerified.Verification.TxHash
		}
		return ae
	}
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return ApiError{Status: http.StatusBadRequest, Code: CodeValidation, Message: validationErr.Message}
	}

	switch {
	case errors.Is(err, types.ErrInvalidSignature):
		return ApiError{Status: http.StatusUnauthorized, Code: CodeInvalidSignature, Message: "Invalid signature"}
	case errors.Is(err, types.ErrUnauthenticated):
		return ApiError{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: "Not authenticated"}
	case errors.Is(err, types.ErrFeatureLocked):
		return ApiError{Status: http.StatusForbidden, Code: CodeFeatureLocked, Message: "Feature verification required"}
	case errors.Is(err, types.ErrForbidden):
		return ApiError{Status: http.StatusForbidden, Code: CodeForbidden, Message: err.Error()}
	case errors.Is(err, types.ErrNotFound):
		return ApiError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Not found"}
	case errors.Is(err, types.ErrInvalidPublicKey):
		return ApiError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "Invalid public key"}
	case errors.Is(err, types.ErrValidation):
		return ApiError{Status: http.StatusBadRequest, Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, types.ErrReplayDetected):
		return ApiError{Status: http.StatusBadRequest, Code: CodeReplayDetected, Message: "Signature already used - replay attack detected"}
	case errors.Is(err, types.ErrAlreadyPublished):
		return ApiError{Status: http.StatusBadRequest, Code: CodeAlreadyPublished, Message: err.Error()}
	case errors.Is(err, types.ErrConflict):
		return ApiError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "Record already exists"}
	case errors.Is(err, types.ErrFeePayerNotConfigured):
		return ApiError{Status: http.StatusInternalServerError, Code: CodeFeePayerMisconfigured, Message: "Fee payer not configured"}
	case errors.Is(err, types.ErrFeePayerInvalid):
		return ApiError{Status: http.StatusInternalServerError, Code: CodeFeePayerMisconfigured, Message: "Invalid fee payer private key format"}
	case errors.Is(err, types.ErrInsufficientFunds):
		return ApiError{Status: http.StatusInternalServerError, Code: CodeInsufficientFunds, Message: err.Error()}
	case errors.Is(err, types.ErrLedger):
		return ApiError{Status: http.StatusInternalServerError, Code: CodeLedger, Message: err.Error()}
	}
	return ApiError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error"}
}

// AbortWithApiError writes the mapped error and aborts. Internal errors are logged, their detail is not returned.
func AbortWithApiError(c *gin.Context, err error) ApiError {
	ae := ToApiError(err)
	if ae.Status >= http.StatusInternalServerError {
		level.Error(global.Logger).Log("msg", "request failed", "path", c.FullPath(), "code", ae.Code, "err", err)
	}
	c.AbortWithStatusJSON(ae.Status, ae)
	return ae
}

func ValidatorErrorToUser(err validator.ValidationErrors) string {
	var errorMessages []string
	for _, err := range err {
		switch err.Tag() {
		case "required":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is required", err.Field()))
		case "max":
			errorMessages = append(errorMessages, fmt.Sprintf("%s is too long (max %s)", err.Field(), err.Param()))
		default:
			errorMessages = append(errorMessages, fmt.Sprintf("validation failed on field %s", err.Field()))
		}
	}
	return strings.Join(errorMessages, ". ")
}

// bindAndValidate binds the JSON body and runs validator tags. Writes a 400 and returns false on failure.
func bindAndValidate(c *gin.Context, validate *validator.Validate, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "Missing required fields")
		return false
	}
	if err := validate.Struct(input); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			ApiErrorf(c, http.StatusBadRequest, "%s", ValidatorErrorToUser(vErrs))
			return false
		}
		ApiErrorf(c, http.StatusBadRequest, "Missing required fields")
		return false
	}
	return true
}
