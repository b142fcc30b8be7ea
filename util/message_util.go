package util

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	loginMessagePrefix = "Login to Zynexa: "
	shortKeyLength     = 8
	previewEllipsis    = "..."
)

// Canonical signed messages. These strings are signed by clients and must stay byte for byte identical.

func LoginMessage(timestampMillis int64) string {
	return loginMessagePrefix + strconv.FormatInt(timestampMillis, 10)
}

// ParseLoginMessage extracts the client timestamp of a login challenge
func ParseLoginMessage(message string) (int64, bool) {
	if !strings.HasPrefix(message, loginMessagePrefix) {
		return 0, false
	}
	ts, err := strconv.ParseInt(strings.TrimPrefix(message, loginMessagePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

func PublishIdentityMessage(publicKey string) string {
	return "Publish identity: " + publicKey
}

func VerifyFeatureMessage(featureName, publicKey string) string {
	return fmt.Sprintf("Verify feature: %s for %s", featureName, publicKey)
}

func SendMessage(fromPublicKey, toPublicKey, content string, isEncrypted bool, timestampMillis int64) string {
	return fmt.Sprintf("SEND:%s:%s:%s:%t:%d", fromPublicKey, toPublicKey, content, isEncrypted, timestampMillis)
}

// Memo payloads embedded in ledger transactions

func IdentityMemo(publicKey string) []byte {
	return []byte("ZK-ID:" + ShortKey(publicKey))
}

func FeatureMemo(featureName, publicKey string) []byte {
	return []byte(fmt.Sprintf("ZK-FEAT:%s:%s", featureName, ShortKey(publicKey)))
}

func MessageMemo(fromPublicKey, toPublicKey, content string, isEncrypted bool) []byte {
	messageType := "PUBLIC"
	if isEncrypted {
		messageType = "ENCRYPT"
	}
	return []byte(fmt.Sprintf("MSG:%s:%s:%s:%s", messageType, fromPublicKey, toPublicKey, content))
}

// ShortKey returns the first 8 characters of a public key (memo and log form)
func ShortKey(publicKey string) string {
	if len(publicKey) <= shortKeyLength {
		return publicKey
	}
	return publicKey[:shortKeyLength]
}

// ContentLength counts characters, not bytes
func ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// IsCanonicalBase64 reports whether s decodes as standard base64 and re-encodes to exactly s
func IsCanonicalBase64(s string) bool {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return base64.StdEncoding.EncodeToString(decoded) == s
}

// ContentPreview keeps ciphertext intact (truncating would make it undecryptable)
// and shortens plaintext to previewLength characters followed by "...".
func ContentPreview(content string, isEncrypted bool, previewLength int) string {
	if isEncrypted || ContentLength(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + previewEllipsis
}
