package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

func TestRegisterValidatesPublicKey(t *testing.T) {
	is := NewIdentityService(repository.NewMemoryStore(), &fakeRelay{}, testLedgerConf, false)
	_, err := is.Register(context.Background(), "not-a-key", nil)
	assert.True(t, errors.Is(err, types.ErrValidation))

	key := newTestKey(t)
	blank := "   "
	identity, err := is.Register(context.Background(), key.publicKey, &blank)
	require.NoError(t, err)
	assert.Nil(t, identity.DisplayName)
	assert.False(t, identity.IsVerified)
}

func TestPublish(t *testing.T) {
	store := repository.NewMemoryStore()
	relay := &fakeRelay{}
	is := NewIdentityService(store, relay, testLedgerConf, false)
	ctx := context.Background()
	key := newTestKey(t)
	_, err := is.Register(ctx, key.publicKey, nil)
	require.NoError(t, err)

	_, err = is.Publish(ctx, key.publicKey, key.sign(t, "Publish identity: someone else"))
	assert.True(t, errors.Is(err, types.ErrInvalidSignature))
	assert.Equal(t, 0, relay.count())

	sig := key.sign(t, util.PublishIdentityMessage(key.publicKey))
	receipt, err := is.Publish(ctx, key.publicKey, sig)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", receipt.TxHash)
	assert.Equal(t, uint64(1000000), relay.requests[0].Lamports)
	assert.Equal(t, "ZK-ID:"+key.publicKey[:8], string(relay.requests[0].Memo))

	identity, err := is.Get(ctx, key.publicKey)
	require.NoError(t, err)
	assert.True(t, identity.IsVerified)
	assert.Equal(t, "tx-1", *identity.OnchainTxHash)

	// publishing again overwrites the hash
	receipt, err = is.Publish(ctx, key.publicKey, sig)
	require.NoError(t, err)
	identity, _ = is.Get(ctx, key.publicKey)
	assert.Equal(t, receipt.TxHash, *identity.OnchainTxHash)
}

func TestPublishUnregisteredIdentity(t *testing.T) {
	relay := &fakeRelay{}
	is := NewIdentityService(repository.NewMemoryStore(), relay, testLedgerConf, false)
	key := newTestKey(t)

	receipt, err := is.Publish(context.Background(), key.publicKey, key.sign(t, util.PublishIdentityMessage(key.publicKey)))
	require.NoError(t, err)
	assert.Equal(t, "tx-1", receipt.TxHash)
	_, err = is.Get(context.Background(), key.publicKey)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestPublishOnce(t *testing.T) {
	relay := &fakeRelay{}
	is := NewIdentityService(repository.NewMemoryStore(), relay, testLedgerConf, true)
	ctx := context.Background()
	key := newTestKey(t)
	is.Register(ctx, key.publicKey, nil)
	sig := key.sign(t, util.PublishIdentityMessage(key.publicKey))

	_, err := is.Publish(ctx, key.publicKey, sig)
	require.NoError(t, err)
	_, err = is.Publish(ctx, key.publicKey, sig)
	assert.True(t, errors.Is(err, types.ErrAlreadyPublished))
	assert.Equal(t, 1, relay.count())
}

func TestSetDisplayName(t *testing.T) {
	is := NewIdentityService(repository.NewMemoryStore(), &fakeRelay{}, testLedgerConf, false)
	ctx := context.Background()
	key := newTestKey(t)

	_, err := is.SetDisplayName(ctx, key.publicKey, "alice")
	assert.True(t, errors.Is(err, types.ErrNotFound))

	is.Register(ctx, key.publicKey, nil)
	identity, err := is.SetDisplayName(ctx, key.publicKey, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", *identity.DisplayName)
}
