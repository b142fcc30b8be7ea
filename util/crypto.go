package util

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/zynexa/go-zynexa-server/types"
)

// DecodePublicKey decodes a base58 encoded ed25519 public key
func DecodePublicKey(publicKeyBase58 string) (ed25519.PublicKey, error) {
	if publicKeyBase58 == "" {
		return nil, types.ErrInvalidPublicKey
	}
	decoded, err := base58.Decode(publicKeyBase58)
	if err != nil {
		return nil, types.ErrInvalidPublicKey
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, types.ErrInvalidPublicKey
	}
	return ed25519.PublicKey(decoded), nil
}

// EncodePublicKey returns the base58 form used everywhere in the API
func EncodePublicKey(publicKey ed25519.PublicKey) string {
	return base58.Encode(publicKey)
}

// IsPublicKey checks if a string is a base58 encoded ed25519 public key.
func IsPublicKey(publicKeyBase58 string) bool {
	_, err := DecodePublicKey(publicKeyBase58)
	return err == nil
}

// DecodeSignature decodes a base64 detached signature
func DecodeSignature(signatureBase64 string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(signatureBase64)
	if err != nil {
		return nil, types.ErrInvalidSignature
	}
	if len(decoded) != ed25519.SignatureSize {
		return nil, types.ErrInvalidSignature
	}
	return decoded, nil
}

// Verify reports whether signature is a valid detached ed25519 signature of message by publicKey.
// Malformed input (wrong key or signature size) is reported as invalid.
func Verify(message []byte, signature []byte, publicKey []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// VerifyEncoded verifies a UTF-8 message with a base64 signature and a base58 public key
func VerifyEncoded(message string, signatureBase64 string, publicKeyBase58 string) bool {
	pubKey, err := DecodePublicKey(publicKeyBase58)
	if err != nil {
		return false
	}
	signature, err := DecodeSignature(signatureBase64)
	if err != nil {
		return false
	}
	return Verify([]byte(message), signature, pubKey)
}

// Signing message using ed25519
func Sign(message []byte, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, types.ErrInvalidSignature
	}
	return ed25519.Sign(privateKey, message), nil
}

// SignEncoded signs a UTF-8 message and returns the base64 signature (the format clients send)
func SignEncoded(message string, privateKey ed25519.PrivateKey) (string, error) {
	signature, err := Sign([]byte(message), privateKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(signature), nil
}

// Generated ed25519 signing key pair and returns base58 public key, base64 private key
// returns publicKey, privateKey, error
func GenerateEd25519KeyPair() (*string, *string, error) {
	pubKey, privKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, err
	}

	pubKeyBase58 := EncodePublicKey(pubKey)
	privKeyBase64 := base64.StdEncoding.EncodeToString(privKey)
	return &pubKeyBase58, &privKeyBase64, nil
}

// SignatureDigest is the replay guard key of a raw signature
func SignatureDigest(signature []byte) [sha256.Size]byte {
	return sha256.Sum256(signature)
}

// ParseKeypairJSON parses a secret key stored as a JSON array of 64 bytes (seed followed by public key)
func ParseKeypairJSON(secret string) (ed25519.PrivateKey, error) {
	var raw []int
	if err := json.Unmarshal([]byte(secret), &raw); err != nil {
		return nil, types.ErrFeePayerInvalid
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, types.ErrFeePayerInvalid
	}
	secretKey := make([]byte, ed25519.PrivateKeySize)
	for i, b := range raw {
		if b < 0 || b > 255 {
			return nil, types.ErrFeePayerInvalid
		}
		secretKey[i] = byte(b)
	}
	privateKey := ed25519.NewKeyFromSeed(secretKey[:ed25519.SeedSize])
	// the trailing 32 bytes must be the public key of the seed
	if !privateKey.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(secretKey[ed25519.SeedSize:])) {
		return nil, types.ErrFeePayerInvalid
	}
	return privateKey, nil
}

// KeypairToJSON serializes a private key into the JSON byte array format
func KeypairToJSON(privateKey ed25519.PrivateKey) (string, error) {
	raw := make([]int, len(privateKey))
	for i, b := range privateKey {
		raw[i] = int(b)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
