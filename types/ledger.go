package types

// RelayKind labels the purpose of a sponsored ledger transaction (metrics, logs)
type RelayKind string

const (
	RelayKindIdentity RelayKind = "identity"
	RelayKindFeature  RelayKind = "feature"
	RelayKindMessage  RelayKind = "message"
)

// RelayRequest is a memo transaction paid by the platform fee payer.
// Recipient and Lamports are optional; when both are set a transfer is included.
type RelayRequest struct {
	Kind      RelayKind
	Memo      []byte
	Recipient string // base58 public key
	Lamports  uint64
}

// RelayReceipt is returned once the network confirmed the transaction
type RelayReceipt struct {
	TxHash        string `json:"txHash"`
	CorrelationID string `json:"correlationId"`
}

// FeePayerHealth describes the platform fee payer wallet
type FeePayerHealth struct {
	Network            string `json:"network"`
	RpcEndpoint        string `json:"rpcEndpoint"`
	FeePayerPublicKey  string `json:"feePayerPublicKey"`
	BalanceLamports    uint64 `json:"balanceLamports"`
	MinBalanceLamports uint64 `json:"minBalanceLamports"`
}
