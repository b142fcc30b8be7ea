package types

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	// FeatureMessages gates POST /api/messages/send
	FeatureMessages = "messages"
)

// FeatureVerification records that an identity unlocked a feature with an on-chain transaction.
// At most one record exists per (PublicKey, FeatureName).
type FeatureVerification struct {
	bun.BaseModel `bun:"table:feature_verifications" json:"-"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	PublicKey   string    `bun:"public_key,notnull,unique:feature_verifications_public_key_feature_name" json:"publicKey"`
	FeatureName string    `bun:"feature_name,notnull,unique:feature_verifications_public_key_feature_name" json:"featureName"`
	TxHash      string    `bun:"tx_hash,notnull,unique" json:"txHash"`
	VerifiedAt  time.Time `bun:"verified_at,nullzero,notnull,default:current_timestamp" json:"verifiedAt"`
}
