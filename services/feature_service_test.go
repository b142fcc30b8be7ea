package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

var testLedgerConf = global.LedgerConfig{
	MinBalanceLamports:      5000,
	PublishTransferLamports: 1000000,
	FeatureTransferLamports: 100000,
}

func TestUnlockOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	relay := &fakeRelay{}
	fs := NewFeatureService(store, relay, testLedgerConf)
	ctx := context.Background()
	key := newTestKey(t)
	sig := key.sign(t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey))

	unlocked, err := fs.IsUnlocked(ctx, key.publicKey, types.FeatureMessages)
	require.NoError(t, err)
	assert.False(t, unlocked)

	v, err := fs.Unlock(ctx, key.publicKey, types.FeatureMessages, sig)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", v.TxHash)
	require.Equal(t, 1, relay.count())
	assert.Equal(t, key.publicKey, relay.requests[0].Recipient)
	assert.Equal(t, uint64(100000), relay.requests[0].Lamports)
	assert.Equal(t, "ZK-FEAT:messages:"+key.publicKey[:8], string(relay.requests[0].Memo))

	// second attempt returns the first tx hash without a new submission
	_, err = fs.Unlock(ctx, key.publicKey, types.FeatureMessages, sig)
	var already *types.AlreadyVerifiedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, "tx-1", already.Verification.TxHash)
	assert.Equal(t, 1, relay.count())

	unlocked, err = fs.IsUnlocked(ctx, key.publicKey, types.FeatureMessages)
	require.NoError(t, err)
	assert.True(t, unlocked)
}

func TestUnlockInvalidSignature(t *testing.T) {
	relay := &fakeRelay{}
	fs := NewFeatureService(repository.NewMemoryStore(), relay, testLedgerConf)
	key := newTestKey(t)

	// signed for another feature
	sig := key.sign(t, util.VerifyFeatureMessage("other", key.publicKey))
	_, err := fs.Unlock(context.Background(), key.publicKey, types.FeatureMessages, sig)
	assert.True(t, errors.Is(err, types.ErrInvalidSignature))
	assert.Equal(t, 0, relay.count())
}

func TestUnlockRelayFailureRecordsNothing(t *testing.T) {
	store := repository.NewMemoryStore()
	relay := &fakeRelay{err: types.ErrInsufficientFunds}
	fs := NewFeatureService(store, relay, testLedgerConf)
	key := newTestKey(t)
	sig := key.sign(t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey))

	_, err := fs.Unlock(context.Background(), key.publicKey, types.FeatureMessages, sig)
	assert.True(t, errors.Is(err, types.ErrInsufficientFunds))
	list, _ := fs.ListVerifications(context.Background(), key.publicKey)
	assert.Len(t, list, 0)
}

func TestUnlockConflictMapsToAlreadyVerified(t *testing.T) {
	store := repository.NewMemoryStore()
	key := newTestKey(t)
	relay := &fakeRelay{}
	// another instance records the same pair while our transaction is in flight
	relay.onSubmit = func(req types.RelayRequest) {
		store.CreateFeatureVerification(context.Background(), &types.FeatureVerification{
			PublicKey: key.publicKey, FeatureName: types.FeatureMessages, TxHash: "tx-other",
		})
	}
	fs := NewFeatureService(store, relay, testLedgerConf)
	sig := key.sign(t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey))

	_, err := fs.Unlock(context.Background(), key.publicKey, types.FeatureMessages, sig)
	var already *types.AlreadyVerifiedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, "tx-other", already.Verification.TxHash)
}

func TestConcurrentUnlockSubmitsOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	relay := &fakeRelay{onSubmit: func(types.RelayRequest) { time.Sleep(20 * time.Millisecond) }}
	fs := NewFeatureService(store, relay, testLedgerConf)
	key := newTestKey(t)
	sig := key.sign(t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	txHashes := make([]string, 8)
	for i := range txHashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := fs.Unlock(context.Background(), key.publicKey, types.FeatureMessages, sig)
			var already *types.AlreadyVerifiedError
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
				txHashes[i] = v.TxHash
			case errors.As(err, &already):
				txHashes[i] = already.Verification.TxHash
			default:
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, relay.count())
	assert.Equal(t, 1, succeeded, "only one caller unlocks, the rest are already verified")
	for _, tx := range txHashes {
		assert.Equal(t, "tx-1", tx)
	}
}

func TestUnlockSurvivesCallerCancel(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	// the caller goes away while the transaction is in flight
	relay := &fakeRelay{onSubmit: func(types.RelayRequest) { cancel() }}
	fs := NewFeatureService(store, relay, testLedgerConf)
	key := newTestKey(t)
	sig := key.sign(t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey))

	_, err := fs.Unlock(ctx, key.publicKey, types.FeatureMessages, sig)
	require.NoError(t, err)
	unlocked, err := fs.IsUnlocked(context.Background(), key.publicKey, types.FeatureMessages)
	require.NoError(t, err)
	assert.True(t, unlocked)
}
