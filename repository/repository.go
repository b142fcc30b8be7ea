package repository

import (
	"context"

	"github.com/zynexa/go-zynexa-server/types"
)

// Store is the relational state of the server: identities, feature verifications and the message cache.
// Implementations map unique constraint violations to types.ErrConflict and missing rows to types.ErrNotFound.
type Store interface {
	// CreateOrUpdateIdentity inserts the identity or, when it exists, updates the display name (if provided)
	CreateOrUpdateIdentity(ctx context.Context, publicKey string, displayName *string) (*types.Identity, error)
	GetIdentity(ctx context.Context, publicKey string) (*types.Identity, error)
	UpdateDisplayName(ctx context.Context, publicKey string, displayName string) (*types.Identity, error)
	// MarkIdentityPublished sets the on-chain tx hash and the verified flag. Returns false when no identity was updated.
	MarkIdentityPublished(ctx context.Context, publicKey string, txHash string) (bool, error)

	CreateMessage(ctx context.Context, message *types.Message) error
	GetMessageByTxHash(ctx context.Context, txHash string) (*types.Message, error)
	// ListMessagesByPublicKey returns messages sent or received by publicKey, newest first
	ListMessagesByPublicKey(ctx context.Context, publicKey string) ([]*types.Message, error)

	CreateFeatureVerification(ctx context.Context, verification *types.FeatureVerification) error
	GetFeatureVerification(ctx context.Context, publicKey string, featureName string) (*types.FeatureVerification, error)
	// ListFeatureVerifications returns all verifications of publicKey, most recent first
	ListFeatureVerifications(ctx context.Context, publicKey string) ([]*types.FeatureVerification, error)

	Close() error
}
