package util

import (
	"crypto/ed25519"
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// GenerateMnemonic creates a 12 word english BIP-39 phrase
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// KeypairFromMnemonic derives the identity keypair the same way the web client does:
// the first 32 bytes of the BIP-39 seed (empty passphrase) are the ed25519 seed.
func KeypairFromMnemonic(mnemonic string) (ed25519.PrivateKey, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}
