package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zynexa/go-zynexa-server/types"
)

// MemoryStore keeps the same unique keys as the postgres schema. Used by tests and the dev profile.
type MemoryStore struct {
	mu            sync.RWMutex
	identities    map[string]*types.Identity
	messages      []*types.Message
	messageTxs    map[string]struct{}
	verifications map[string]*types.FeatureVerification // publicKey|featureName
	verifiedTxs   map[string]struct{}
	nextID        int64
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities:    make(map[string]*types.Identity),
		messageTxs:    make(map[string]struct{}),
		verifications: make(map[string]*types.FeatureVerification),
		verifiedTxs:   make(map[string]struct{}),
		now:           time.Now,
	}
}

func verificationKey(publicKey, featureName string) string {
	return publicKey + "|" + featureName
}

func copyIdentity(i *types.Identity) *types.Identity {
	c := *i
	return &c
}

func (s *MemoryStore) CreateOrUpdateIdentity(ctx context.Context, publicKey string, displayName *string) (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.identities[publicKey]
	if !ok {
		existing = &types.Identity{
			PublicKey: publicKey,
			CreatedAt: s.now().UTC(),
		}
		s.identities[publicKey] = existing
	}
	if displayName != nil {
		name := *displayName
		existing.DisplayName = &name
	}
	return copyIdentity(existing), nil
}

func (s *MemoryStore) GetIdentity(ctx context.Context, publicKey string) (*types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[publicKey]
	if !ok {
		return nil, types.ErrNotFound
	}
	return copyIdentity(identity), nil
}

func (s *MemoryStore) UpdateDisplayName(ctx context.Context, publicKey string, displayName string) (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[publicKey]
	if !ok {
		return nil, types.ErrNotFound
	}
	identity.DisplayName = &displayName
	return copyIdentity(identity), nil
}

func (s *MemoryStore) MarkIdentityPublished(ctx context.Context, publicKey string, txHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[publicKey]
	if !ok {
		return false, nil
	}
	identity.OnchainTxHash = &txHash
	identity.IsVerified = true
	return true, nil
}

func (s *MemoryStore) CreateMessage(ctx context.Context, message *types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messageTxs[message.TxHash]; ok {
		return types.ErrConflict
	}
	s.nextID++
	message.ID = s.nextID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = s.now().UTC()
	}
	stored := *message
	s.messages = append(s.messages, &stored)
	s.messageTxs[message.TxHash] = struct{}{}
	return nil
}

func (s *MemoryStore) GetMessageByTxHash(ctx context.Context, txHash string) (*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.TxHash == txHash {
			c := *m
			return &c, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *MemoryStore) ListMessagesByPublicKey(ctx context.Context, publicKey string) ([]*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Message, 0)
	for _, m := range s.messages {
		if m.FromPublicKey == publicKey || m.ToPublicKey == publicKey {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateFeatureVerification(ctx context.Context, verification *types.FeatureVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := verificationKey(verification.PublicKey, verification.FeatureName)
	if _, ok := s.verifications[key]; ok {
		return types.ErrConflict
	}
	if _, ok := s.verifiedTxs[verification.TxHash]; ok {
		return types.ErrConflict
	}
	s.nextID++
	verification.ID = s.nextID
	if verification.VerifiedAt.IsZero() {
		verification.VerifiedAt = s.now().UTC()
	}
	stored := *verification
	s.verifications[key] = &stored
	s.verifiedTxs[verification.TxHash] = struct{}{}
	return nil
}

func (s *MemoryStore) GetFeatureVerification(ctx context.Context, publicKey string, featureName string) (*types.FeatureVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[verificationKey(publicKey, featureName)]
	if !ok {
		return nil, types.ErrNotFound
	}
	c := *v
	return &c, nil
}

func (s *MemoryStore) ListFeatureVerifications(ctx context.Context, publicKey string) ([]*types.FeatureVerification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.FeatureVerification, 0)
	for _, v := range s.verifications {
		if v.PublicKey == publicKey {
			c := *v
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VerifiedAt.Equal(out[j].VerifiedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
