package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Identity is a registered public key with its profile metadata.
// IsVerified and OnchainTxHash are only ever set by the publish flow.
type Identity struct {
	bun.BaseModel `bun:"table:zk_identities" json:"-"`

	PublicKey     string    `bun:"public_key,pk" json:"publicKey"` // base58 encoded ed25519 public key
	DisplayName   *string   `bun:"display_name" json:"displayName"`
	OnchainTxHash *string   `bun:"onchain_tx_hash" json:"onchainTxHash"`
	IsVerified    bool      `bun:"is_verified,notnull,default:false" json:"isVerified"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
