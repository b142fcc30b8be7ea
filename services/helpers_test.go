package services

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type testKey struct {
	publicKey  string
	privateKey ed25519.PrivateKey
}

func newTestKey(t *testing.T) testKey {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return testKey{publicKey: util.EncodePublicKey(pub), privateKey: priv}
}

func (k testKey) sign(t *testing.T, message string) string {
	sig, err := util.SignEncoded(message, k.privateKey)
	require.NoError(t, err)
	return sig
}

// fakeRelay records submissions and hands out sequential tx hashes
type fakeRelay struct {
	mu       sync.Mutex
	requests []types.RelayRequest
	err      error
	onSubmit func(req types.RelayRequest)
}

func (f *fakeRelay) Submit(ctx context.Context, req types.RelayRequest) (*types.RelayReceipt, error) {
	if f.onSubmit != nil {
		f.onSubmit(req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &types.RelayReceipt{
		TxHash:        fmt.Sprintf("tx-%d", len(f.requests)),
		CorrelationID: fmt.Sprintf("corr-%d", len(f.requests)),
	}, nil
}

func (f *fakeRelay) Health(ctx context.Context) (*types.FeePayerHealth, error) {
	return &types.FeePayerHealth{Network: "devnet", FeePayerPublicKey: "payer", BalanceLamports: 1000000000, MinBalanceLamports: 5000}, nil
}

func (f *fakeRelay) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
