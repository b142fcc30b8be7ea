package types

type OutputSuccess struct {
	Success bool `json:"success"`
}

type OutputLogin struct {
	Success  bool      `json:"success"`
	Identity *Identity `json:"identity"`
}

type OutputSession struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity,omitempty"`
}

type OutputPublish struct {
	TxHash   string `json:"txHash"`
	Explorer string `json:"explorer"`
}

type OutputValid struct {
	Valid bool `json:"valid"`
}

type OutputFeatureVerify struct {
	TxHash       string               `json:"txHash"`
	FeatureName  string               `json:"featureName"`
	Explorer     string               `json:"explorer"`
	Verification *FeatureVerification `json:"verification"`
}

type OutputFeatureStatus struct {
	VerifiedFeatures []string               `json:"verifiedFeatures"`
	Verifications    []*FeatureVerification `json:"verifications"`
}

type OutputSendMessage struct {
	TxHash   string   `json:"txHash"`
	Explorer string   `json:"explorer"`
	Message  *Message `json:"message"`
}

type OutputMessages struct {
	Messages []*Message `json:"messages"`
}

type OutputBlockchainHealth struct {
	Status                         string  `json:"status"`
	Network                        string  `json:"network"`
	RpcEndpoint                    string  `json:"rpcEndpoint"`
	FeePayerPublicKey              string  `json:"feePayerPublicKey"`
	Balance                        float64 `json:"balance"` // SOL
	BalanceLamports                uint64  `json:"balanceLamports"`
	IsBalanceSufficient            bool    `json:"isBalanceSufficient"`
	MinBalanceRequired             string  `json:"minBalanceRequired"`
	EstimatedTransactionsRemaining uint64  `json:"estimatedTransactionsRemaining"`
}
