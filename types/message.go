package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Message is the cached copy of a relayed memo message. TxHash is the natural key.
type Message struct {
	bun.BaseModel `bun:"table:messages" json:"-"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	TxHash         string    `bun:"tx_hash,notnull,unique" json:"txHash"`
	FromPublicKey  string    `bun:"from_public_key,notnull" json:"fromPublicKey"`
	ToPublicKey    string    `bun:"to_public_key,notnull" json:"toPublicKey"`
	IsEncrypted    bool      `bun:"is_encrypted,notnull" json:"isEncrypted"`
	ContentPreview string    `bun:"content_preview" json:"contentPreview"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
