package services

import (
	"context"
	"errors"

	"github.com/go-kit/log/level"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/metrics"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
	"golang.org/x/sync/singleflight"
)

type FeatureService struct {
	repo  repository.Store
	relay Relay
	conf  global.LedgerConfig
	group singleflight.Group
}

func NewFeatureService(repo repository.Store, relay Relay, conf global.LedgerConfig) *FeatureService {
	return &FeatureService{repo: repo, relay: relay, conf: conf}
}

func (fs *FeatureService) IsUnlocked(ctx context.Context, publicKey, featureName string) (bool, error) {
	_, err := fs.repo.GetFeatureVerification(ctx, publicKey, featureName)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *FeatureService) ListVerifications(ctx context.Context, publicKey string) ([]*types.FeatureVerification, error) {
	return fs.repo.ListFeatureVerifications(ctx, publicKey)
}

// existing returns an AlreadyVerifiedError when the pair is already unlocked
func (fs *FeatureService) existing(ctx context.Context, publicKey, featureName string) error {
	v, err := fs.repo.GetFeatureVerification(ctx, publicKey, featureName)
	if err == nil {
		return &types.AlreadyVerifiedError{Verification: v}
	}
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

// Unlock relays a feature verification transaction and records it.
// At most one verification exists per (publicKey, featureName): the unique index decides.
// Concurrent unlocks of the same pair in this process share one ledger submission,
// only the caller that ran it succeeds, the others get an AlreadyVerifiedError.
func (fs *FeatureService) Unlock(ctx context.Context, publicKey, featureName, signature string) (*types.FeatureVerification, error) {
	if err := fs.existing(ctx, publicKey, featureName); err != nil {
		return nil, err
	}
	if !util.VerifyEncoded(util.VerifyFeatureMessage(featureName, publicKey), signature, publicKey) {
		return nil, types.ErrInvalidSignature
	}

	key := publicKey + "|" + featureName
	// the submission outlives a caller that gives up, joined callers share it
	sharedCtx := context.WithoutCancel(ctx)
	ran := false
	result, err, shared := fs.group.Do(key, func() (interface{}, error) {
		ran = true
		ctx := sharedCtx
		// a caller that finished just before us already recorded it
		if err := fs.existing(ctx, publicKey, featureName); err != nil {
			return nil, err
		}
		receipt, err := fs.relay.Submit(ctx, types.RelayRequest{
			Kind:      types.RelayKindFeature,
			Memo:      util.FeatureMemo(featureName, publicKey),
			Recipient: publicKey,
			Lamports:  fs.conf.FeatureTransferLamports,
		})
		if err != nil {
			return nil, err
		}

		verification := &types.FeatureVerification{
			PublicKey:   publicKey,
			FeatureName: featureName,
			TxHash:      receipt.TxHash,
		}
		if err := fs.repo.CreateFeatureVerification(ctx, verification); err != nil {
			if errors.Is(err, types.ErrConflict) {
				level.Warn(global.Logger).Log("msg", "feature already recorded by another instance, transaction orphaned",
					"publicKey", util.ShortKey(publicKey), "feature", featureName, "orphanTx", receipt.TxHash, "correlationId", receipt.CorrelationID)
				if existingErr := fs.existing(ctx, publicKey, featureName); existingErr != nil {
					return nil, existingErr
				}
			}
			level.Error(global.Logger).Log("msg", "failed to record feature verification", "tx", receipt.TxHash, "correlationId", receipt.CorrelationID, "err", err)
			return nil, err
		}
		metrics.FeatureUnlocksTotal.WithLabelValues(featureName).Inc()
		level.Info(global.Logger).Log("msg", "feature unlocked", "publicKey", util.ShortKey(publicKey), "feature", featureName, "tx", receipt.TxHash)
		return verification, nil
	})
	if err != nil {
		return nil, err
	}
	verification := result.(*types.FeatureVerification)
	if shared && !ran {
		level.Debug(global.Logger).Log("msg", "feature unlock coalesced", "publicKey", util.ShortKey(publicKey), "feature", featureName)
		return nil, &types.AlreadyVerifiedError{Verification: verification}
	}
	return verification, nil
}
