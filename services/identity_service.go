package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type IdentityService struct {
	repo        repository.Store
	relay       Relay
	conf        global.LedgerConfig
	publishOnce bool
}

func NewIdentityService(repo repository.Store, relay Relay, conf global.LedgerConfig, publishOnce bool) *IdentityService {
	return &IdentityService{repo: repo, relay: relay, conf: conf, publishOnce: publishOnce}
}

// Register creates the identity or updates its display name. Registering twice is not an error.
func (is *IdentityService) Register(ctx context.Context, publicKey string, displayName *string) (*types.Identity, error) {
	if !util.IsPublicKey(publicKey) {
		return nil, types.NewValidationError("invalid public key")
	}
	return is.repo.CreateOrUpdateIdentity(ctx, publicKey, util.TrimmedOrNil(displayName))
}

func (is *IdentityService) Get(ctx context.Context, publicKey string) (*types.Identity, error) {
	return is.repo.GetIdentity(ctx, publicKey)
}

func (is *IdentityService) SetDisplayName(ctx context.Context, publicKey, displayName string) (*types.Identity, error) {
	return is.repo.UpdateDisplayName(ctx, publicKey, displayName)
}

// MarkPublished stores the publishing tx hash. A missing identity is logged and ignored.
func (is *IdentityService) MarkPublished(ctx context.Context, publicKey, txHash string) error {
	updated, err := is.repo.MarkIdentityPublished(ctx, publicKey, txHash)
	if err != nil {
		return err
	}
	if !updated {
		level.Warn(global.Logger).Log("msg", "published identity is not registered", "publicKey", util.ShortKey(publicKey), "tx", txHash)
	}
	return nil
}

// Publish anchors the identity on the ledger with a small transfer and an identity memo
func (is *IdentityService) Publish(ctx context.Context, publicKey, signature string) (*types.RelayReceipt, error) {
	if !util.VerifyEncoded(util.PublishIdentityMessage(publicKey), signature, publicKey) {
		return nil, types.ErrInvalidSignature
	}
	if is.publishOnce {
		identity, err := is.repo.GetIdentity(ctx, publicKey)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		if identity != nil && identity.OnchainTxHash != nil {
			return nil, fmt.Errorf("%w (tx %s)", types.ErrAlreadyPublished, *identity.OnchainTxHash)
		}
	}

	receipt, err := is.relay.Submit(ctx, types.RelayRequest{
		Kind:      types.RelayKindIdentity,
		Memo:      util.IdentityMemo(publicKey),
		Recipient: publicKey,
		Lamports:  is.conf.PublishTransferLamports,
	})
	if err != nil {
		return nil, err
	}
	if err := is.MarkPublished(ctx, publicKey, receipt.TxHash); err != nil {
		level.Error(global.Logger).Log("msg", "identity published but not recorded", "publicKey", util.ShortKey(publicKey), "tx", receipt.TxHash, "correlationId", receipt.CorrelationID, "err", err)
		return nil, err
	}
	level.Info(global.Logger).Log("msg", "identity published", "publicKey", util.ShortKey(publicKey), "tx", receipt.TxHash)
	return receipt, nil
}
