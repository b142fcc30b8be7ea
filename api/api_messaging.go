package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/api/interceptors"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type MessagingApi struct {
	messageService *services.MessageService
	validate       *validator.Validate
}

func NewMessagingApi(messageService *services.MessageService) *MessagingApi {
	return &MessagingApi{
		messageService: messageService,
		validate:       newValidator(),
	}
}

// Send message
// @Summary Relays a signed message as a ledger memo
// @Description Requires a session and the "messages" feature. The signature covers from, to, content, encryption flag and timestamp.
// @Tags Messaging
// @Param message body types.InputSendMessage true "message"
// @Success 200 {object} types.OutputSendMessage
// @Failure 400 {object} api.ApiError "validation error, stale timestamp or replay"
// @Failure 401 {object} api.ApiError "Not authenticated or invalid signature"
// @Failure 403 {object} api.ApiError "Sender is not the session identity or feature locked"
// @Failure 500 {object} api.ApiError "Fee payer misconfigured, insufficient funds or ledger error"
// @Accept json
// @Produce json
// @Router /api/messages/send [post]
func (ma *MessagingApi) Send(c *gin.Context) {
	var input types.InputSendMessage
	if !bindAndValidate(c, ma.validate, &input) {
		return
	}
	message, receipt, err := ma.messageService.Send(c.Request.Context(), interceptors.SessionPublicKey(c), &input)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputSendMessage{
		TxHash:   receipt.TxHash,
		Explorer: util.ExplorerLink(global.Conf.Ledger.ExplorerTxUrl, receipt.TxHash),
		Message:  message,
	})
}

// List messages
// @Summary Lists cached messages sent or received by the session identity
// @Tags Messaging
// @Param publicKey path string true "base58 public key (must match the session)"
// @Success 200 {object} types.OutputMessages
// @Failure 401 {object} api.ApiError "Not authenticated"
// @Failure 403 {object} api.ApiError "Cannot access messages for another identity"
// @Produce json
// @Router /api/messages/{publicKey} [get]
func (ma *MessagingApi) List(c *gin.Context) {
	publicKey := c.Param("publicKey")
	if publicKey != interceptors.SessionPublicKey(c) {
		ApiErrorf(c, http.StatusForbidden, "Cannot access messages for another identity")
		return
	}
	messages, err := ma.messageService.ListFor(c.Request.Context(), publicKey)
	if err != nil {
		AbortWithApiError(c, err)
		return
	}
	if messages == nil {
		messages = []*types.Message{}
	}
	c.JSON(http.StatusOK, types.OutputMessages{Messages: messages})
}
