package types

type InputLogin struct {
	PublicKey string `json:"publicKey" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required"` // base64 detached ed25519 signature
}

type InputRegister struct {
	PublicKey   string  `json:"publicKey" validate:"required"`
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=64"`
}

type InputDisplayName struct {
	DisplayName string `json:"displayName" validate:"required,max=64"`
}

type InputPublish struct {
	PublicKey string `json:"publicKey" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type InputVerifySignature struct {
	Message   string `json:"message" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	PublicKey string `json:"publicKey" validate:"required"`
}

type InputFeatureVerify struct {
	PublicKey   string `json:"publicKey" validate:"required"`
	FeatureName string `json:"featureName" validate:"required,max=64"`
	Signature   string `json:"signature" validate:"required"`
}

type InputSendMessage struct {
	FromPublicKey string `json:"fromPublicKey" validate:"required"`
	ToPublicKey   string `json:"toPublicKey" validate:"required"`
	Content       string `json:"content" validate:"required"`
	IsEncrypted   *bool  `json:"isEncrypted" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
	Timestamp     int64  `json:"timestamp" validate:"required"` // unix millis, signed together with the content
}
