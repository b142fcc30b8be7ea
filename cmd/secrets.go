package main

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/spf13/cobra"
	"github.com/zynexa/go-zynexa-server/util"
)

var secretOutputFile string

func init() {
	feePayerGenerateCmd.Flags().StringVarP(&secretOutputFile, "output", "o", "", "output file (default is stdout)")
	sessionKeyGenerateCmd.Flags().StringVarP(&secretOutputFile, "output", "o", "", "output file (default is stdout)")

	feePayerCmd.AddCommand(feePayerGenerateCmd)
	sessionKeyCmd.AddCommand(sessionKeyGenerateCmd)
	rootCmd.AddCommand(feePayerCmd, sessionKeyCmd)
}

var feePayerCmd = &cobra.Command{
	Use:   "feepayer",
	Short: "Fee payer account",
}

// the secret goes into ledger.feePayerPrivateKey (or FEE_PAYER_PRIVATE_KEY), the address has to be funded
var feePayerGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fee payer keypair",
	Run: func(cmd *cobra.Command, args []string) {
		_, priv, err := ed25519.GenerateKey(nil)
		check(err)
		secret, err := util.KeypairToJSON(priv)
		check(err)
		output(map[string]interface{}{
			"address":            util.EncodePublicKey(priv.Public().(ed25519.PublicKey)),
			"feePayerPrivateKey": secret,
		}, secretOutputFile)
	},
}

var sessionKeyCmd = &cobra.Command{
	Use:   "session-key",
	Short: "Session cookie signing key",
}

var sessionKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the ed25519 key that signs session cookies",
	Run: func(cmd *cobra.Command, args []string) {
		_, priv, err := ed25519.GenerateKey(nil)
		check(err)
		output(map[string]interface{}{
			"signingKeyBase64": base64.StdEncoding.EncodeToString(priv.Seed()),
		}, secretOutputFile)
	},
}
