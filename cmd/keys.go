package main

import (
	"crypto/ed25519"
	"time"

	"github.com/spf13/cobra"
	"github.com/zynexa/go-zynexa-server/util"
)

var outputFile string
var mnemonic string

func init() {
	keysGenerateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is stdout)")
	keysDeriveCmd.Flags().StringVarP(&mnemonic, "mnemonic", "m", "", "12 word recovery phrase")
	keysDeriveCmd.MarkFlagRequired("mnemonic")

	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysDeriveCmd)
	rootCmd.AddCommand(keysCmd)
}

// keysCmd groups identity key commands. Keys are derived from the phrase exactly like the web client does.
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Identity keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a recovery phrase and its ed25519 identity",
	Run: func(cmd *cobra.Command, args []string) {
		phrase, err := util.GenerateMnemonic()
		check(err)
		priv, err := util.KeypairFromMnemonic(phrase)
		check(err)
		output(map[string]interface{}{
			"type":      "zynexa_identity_ed25519",
			"mnemonic":  phrase,
			"publicKey": util.EncodePublicKey(priv.Public().(ed25519.PublicKey)),
			"created":   time.Now().UnixMilli(),
		}, outputFile)
	},
}

var keysDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive the public key of a recovery phrase",
	Run: func(cmd *cobra.Command, args []string) {
		priv, err := util.KeypairFromMnemonic(mnemonic)
		check(err)
		output(map[string]interface{}{
			"publicKey": util.EncodePublicKey(priv.Public().(ed25519.PublicKey)),
		}, "")
	},
}
