package main

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/zynexa/go-zynexa-server/util"
)

var (
	signMnemonic string
	signSecret   string
	featureName  string
	toPublicKey  string
	content      string
	encrypted    bool
)

func init() {
	signCmd.PersistentFlags().StringVarP(&signMnemonic, "mnemonic", "m", "", "recovery phrase of the signing identity")
	signCmd.PersistentFlags().StringVarP(&signSecret, "secret", "s", "", "secret key as a JSON array of 64 bytes (instead of --mnemonic)")

	signFeatureCmd.Flags().StringVarP(&featureName, "feature", "f", "messages", "feature name")

	signSendCmd.Flags().StringVarP(&toPublicKey, "to", "t", "", "recipient public key")
	signSendCmd.Flags().StringVarP(&content, "content", "c", "", "message content (base64 ciphertext when --encrypted)")
	signSendCmd.Flags().BoolVarP(&encrypted, "encrypted", "e", false, "content is encrypted")
	signSendCmd.MarkFlagRequired("to")
	signSendCmd.MarkFlagRequired("content")

	signCmd.AddCommand(signLoginCmd, signPublishCmd, signFeatureCmd, signSendCmd)
	rootCmd.AddCommand(signCmd)
}

func signingKey() (ed25519.PrivateKey, string) {
	var priv ed25519.PrivateKey
	var err error
	switch {
	case signMnemonic != "":
		priv, err = util.KeypairFromMnemonic(signMnemonic)
	case signSecret != "":
		priv, err = util.ParseKeypairJSON(signSecret)
	default:
		err = errors.New("either --mnemonic or --secret is required")
	}
	check(err)
	return priv, util.EncodePublicKey(priv.Public().(ed25519.PublicKey))
}

func sign(priv ed25519.PrivateKey, message string) string {
	signature, err := util.SignEncoded(message, priv)
	check(err)
	return signature
}

// signCmd prints ready to post request bodies for the REST API
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign API requests",
}

var signLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Body for POST /api/auth/login",
	Run: func(cmd *cobra.Command, args []string) {
		priv, publicKey := signingKey()
		message := util.LoginMessage(time.Now().UnixMilli())
		output(map[string]interface{}{
			"publicKey": publicKey,
			"message":   message,
			"signature": sign(priv, message),
		}, "")
	},
}

var signPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Body for POST /api/identity/publish",
	Run: func(cmd *cobra.Command, args []string) {
		priv, publicKey := signingKey()
		output(map[string]interface{}{
			"publicKey": publicKey,
			"signature": sign(priv, util.PublishIdentityMessage(publicKey)),
		}, "")
	},
}

var signFeatureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Body for POST /api/features/verify",
	Run: func(cmd *cobra.Command, args []string) {
		priv, publicKey := signingKey()
		output(map[string]interface{}{
			"publicKey":   publicKey,
			"featureName": featureName,
			"signature":   sign(priv, util.VerifyFeatureMessage(featureName, publicKey)),
		}, "")
	},
}

var signSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Body for POST /api/messages/send",
	Run: func(cmd *cobra.Command, args []string) {
		priv, publicKey := signingKey()
		if !util.IsPublicKey(toPublicKey) {
			check(errors.New("invalid recipient public key"))
		}
		timestamp := time.Now().UnixMilli()
		output(map[string]interface{}{
			"fromPublicKey": publicKey,
			"toPublicKey":   toPublicKey,
			"content":       content,
			"isEncrypted":   encrypted,
			"timestamp":     timestamp,
			"signature":     sign(priv, util.SendMessage(publicKey, toPublicKey, content, encrypted, timestamp)),
		}, "")
	},
}
