package util

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/tj/assert"
)

func TestGenerateKeyPair(t *testing.T) {
	pub, priv, err := GenerateEd25519KeyPair()
	if err != nil {
		t.Fatal(err)
	}
	pubKey, kErr := base58.Decode(*pub)
	if kErr != nil {
		t.Fatal(kErr)
	}
	privKey, kErr := base64.StdEncoding.DecodeString(*priv)
	if kErr != nil {
		t.Fatal(kErr)
	}
	if len(pubKey) != 32 {
		t.Fatal("invalid public key length")
	}
	if len(privKey) != 64 {
		t.Fatal("invalid private key length")
	}
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	message := []byte("hello world")
	signature, err := Sign(message, priv)
	if err != nil {
		t.Fatal(err)
	}
	if len(signature) != 64 {
		t.Fatal("invalid signature length")
	}
	assert.True(t, Verify(message, signature, pub))
}

func TestVerifyBitFlips(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	message := []byte("Verify feature: messages for someone")
	signature := ed25519.Sign(priv, message)

	for i := 0; i < len(signature)*8; i += 7 {
		flipped := append([]byte{}, signature...)
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, Verify(message, flipped, pub), "signature bit %d", i)
	}
	for i := 0; i < len(message)*8; i += 5 {
		flipped := append([]byte{}, message...)
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, Verify(flipped, signature, pub), "message bit %d", i)
	}
}

func TestVerifyMalformedInput(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	message := []byte("hello")
	signature := ed25519.Sign(priv, message)

	assert.False(t, Verify(message, signature[:63], pub))
	assert.False(t, Verify(message, signature, pub[:31]))
	assert.False(t, Verify(message, nil, nil))

	pubB58 := EncodePublicKey(pub)
	sigB64 := base64.StdEncoding.EncodeToString(signature)
	assert.True(t, VerifyEncoded("hello", sigB64, pubB58))
	assert.False(t, VerifyEncoded("hello", "not base64!", pubB58))
	assert.False(t, VerifyEncoded("hello", sigB64, "0OIl"))
	assert.False(t, VerifyEncoded("hello", sigB64, ""))
	assert.False(t, VerifyEncoded("hello", sigB64, base58.Encode([]byte("short"))))
}

func TestDecodePublicKey(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	decoded, err := DecodePublicKey(base58.Encode(pub))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, pub, decoded)
	assert.True(t, IsPublicKey(base58.Encode(pub)))
	assert.False(t, IsPublicKey("abc"))
}

func TestKeypairJSONRoundtrip(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	js, err := KeypairToJSON(priv)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseKeypairJSON(js)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, priv, parsed)

	_, err = ParseKeypairJSON("[1,2,3]")
	assert.Error(t, err)
	_, err = ParseKeypairJSON("not json")
	assert.Error(t, err)
}

func TestParseKeypairJSONRejectsMismatchedPublicKey(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	tampered := append(ed25519.PrivateKey{}, priv...)
	tampered[63] ^= 0xff
	js, _ := KeypairToJSON(tampered)
	_, err := ParseKeypairJSON(js)
	assert.Error(t, err)
}

func TestSignatureDigestIsStable(t *testing.T) {
	a := SignatureDigest([]byte{1, 2, 3})
	b := SignatureDigest([]byte{1, 2, 3})
	c := SignatureDigest([]byte{1, 2, 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
