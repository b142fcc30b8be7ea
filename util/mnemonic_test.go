package util

import (
	"strings"
	"testing"

	"github.com/tj/assert"
)

func TestMnemonicDerivationIsDeterministic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 12, len(strings.Fields(mnemonic)))

	k1, err := KeypairFromMnemonic(mnemonic)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := KeypairFromMnemonic("  " + strings.ReplaceAll(mnemonic, " ", "   ") + " ")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, k1, k2)
}

func TestInvalidMnemonic(t *testing.T) {
	_, err := KeypairFromMnemonic("not a real phrase at all")
	assert.Equal(t, ErrInvalidMnemonic, err)
}
