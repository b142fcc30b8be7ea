package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/ledger"
	"github.com/zynexa/go-zynexa-server/metrics"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type MessageService struct {
	repo             repository.Store
	relay            Relay
	replay           ReplayGuard
	maxContentLength int
	previewLength    int
	window           time.Duration
	now              func() time.Time
}

func NewMessageService(repo repository.Store, relay Relay, replay ReplayGuard, conf global.Config) *MessageService {
	return &MessageService{
		repo:             repo,
		relay:            relay,
		replay:           replay,
		maxContentLength: conf.Messages.MaxContentLength,
		previewLength:    conf.Messages.PreviewLength,
		window:           time.Duration(conf.Replay.WindowMinutes) * time.Minute,
		now:              time.Now,
	}
}

// Record caches a relayed message. Plaintext is shortened to a preview, ciphertext is kept whole.
func (ms *MessageService) Record(ctx context.Context, txHash, fromPublicKey, toPublicKey string, isEncrypted bool, content string) (*types.Message, error) {
	message := &types.Message{
		TxHash:         txHash,
		FromPublicKey:  fromPublicKey,
		ToPublicKey:    toPublicKey,
		IsEncrypted:    isEncrypted,
		ContentPreview: util.ContentPreview(content, isEncrypted, ms.previewLength),
	}
	if err := ms.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (ms *MessageService) ListFor(ctx context.Context, publicKey string) ([]*types.Message, error) {
	return ms.repo.ListMessagesByPublicKey(ctx, publicKey)
}

// Send validates a signed message, relays it as a memo and caches it.
// The session and feature checks happen before (interceptors).
func (ms *MessageService) Send(ctx context.Context, sessionPublicKey string, input *types.InputSendMessage) (*types.Message, *types.RelayReceipt, error) {
	isEncrypted := input.IsEncrypted != nil && *input.IsEncrypted

	if input.FromPublicKey != sessionPublicKey {
		return nil, nil, fmt.Errorf("%w: cannot send messages on behalf of another identity", types.ErrForbidden)
	}

	age := ms.now().Sub(time.UnixMilli(input.Timestamp))
	if age < 0 || age > ms.window {
		return nil, nil, types.NewValidationError("message timestamp is too old or in the future")
	}

	if util.ContentLength(input.Content) > ms.maxContentLength {
		return nil, nil, types.NewValidationError(fmt.Sprintf("message too long (max %d characters)", ms.maxContentLength))
	}
	if isEncrypted && !util.IsCanonicalBase64(input.Content) {
		return nil, nil, types.NewValidationError("encrypted content must be base64 encoded")
	}
	memo := util.MessageMemo(input.FromPublicKey, input.ToPublicKey, input.Content, isEncrypted)
	if len(memo) > ledger.MaxMemoSize {
		return nil, nil, types.NewValidationError(fmt.Sprintf("message too large for a ledger memo (%d bytes, max %d)", len(memo), ledger.MaxMemoSize))
	}

	signed := util.SendMessage(input.FromPublicKey, input.ToPublicKey, input.Content, isEncrypted, input.Timestamp)
	if !util.VerifyEncoded(signed, input.Signature, input.FromPublicKey) {
		return nil, nil, types.ErrInvalidSignature
	}
	signature, err := util.DecodeSignature(input.Signature)
	if err != nil {
		return nil, nil, err
	}
	accepted, err := ms.replay.CheckAndRecord(ctx, signature, time.UnixMilli(input.Timestamp))
	if err != nil {
		return nil, nil, err
	}
	if !accepted {
		metrics.ReplayRejectionsTotal.Inc()
		level.Warn(global.Logger).Log("msg", "replayed message signature rejected", "from", util.ShortKey(input.FromPublicKey))
		return nil, nil, types.ErrReplayDetected
	}

	receipt, err := ms.relay.Submit(ctx, types.RelayRequest{
		Kind: types.RelayKindMessage,
		Memo: memo,
	})
	if err != nil {
		return nil, nil, err
	}

	message, err := ms.Record(ctx, receipt.TxHash, input.FromPublicKey, input.ToPublicKey, isEncrypted, input.Content)
	if err != nil {
		level.Error(global.Logger).Log("msg", "message relayed but not cached", "tx", receipt.TxHash, "correlationId", receipt.CorrelationID, "err", err)
		return nil, nil, err
	}
	level.Info(global.Logger).Log("msg", "message relayed", "from", util.ShortKey(input.FromPublicKey), "to", util.ShortKey(input.ToPublicKey), "tx", receipt.TxHash)
	return message, receipt, nil
}
