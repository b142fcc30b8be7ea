package global

import (
	"crypto/ed25519"
	"os"

	"github.com/go-redis/redis_rate/v10"
	cfg "github.com/mailio/go-web3-kit/config"
)

// Conf global config
var Conf Config

// Session signing key (loaded from session.signingKeyBase64 in conf.yaml or SESSION_SECRET)
var SessionPrivateKey ed25519.PrivateKey

// Global rate limiter
var RateLimiter *redis_rate.Limiter

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	Postgres       PostgresConfig   `yaml:"postgres"`
	Redis          RedisConfig      `yaml:"redis"`
	Ledger         LedgerConfig     `yaml:"ledger"`
	Session        SessionConfig    `yaml:"session"`
	Replay         ReplayConfig     `yaml:"replay"`
	Identity       IdentityConfig   `yaml:"identity"`
	Messages       MessagesConfig   `yaml:"messages"`
	Prometheus     PrometheusConfig `yaml:"prometheus"`
	Cors           CorsConfig       `yaml:"cors"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
}

type LedgerConfig struct {
	RpcEndpoint             string `yaml:"rpcEndpoint"`
	Network                 string `yaml:"network"`
	FeePayerPrivateKey      string `yaml:"feePayerPrivateKey"` // JSON array of 64 bytes
	MinBalanceLamports      uint64 `yaml:"minBalanceLamports"`
	PublishTransferLamports uint64 `yaml:"publishTransferLamports"`
	FeatureTransferLamports uint64 `yaml:"featureTransferLamports"`
	ConfirmTimeoutSeconds   int    `yaml:"confirmTimeoutSeconds"`
	ExplorerTxUrl           string `yaml:"explorerTxUrl"`
}

type SessionConfig struct {
	CookieName                  string `yaml:"cookieName"`
	SigningKeyBase64            string `yaml:"signingKeyBase64"`
	TtlHours                    int    `yaml:"ttlHours"`
	Secure                      bool   `yaml:"secure"`
	LoginChallengeMaxAgeSeconds int    `yaml:"loginChallengeMaxAgeSeconds"` // 0 disables the check
}

type ReplayConfig struct {
	Backend       string `yaml:"backend"` // memory or redis
	WindowMinutes int    `yaml:"windowMinutes"`
	SweepEvery    string `yaml:"sweepEvery"`
}

type IdentityConfig struct {
	PublishOnce bool `yaml:"publishOnce"`
}

type MessagesConfig struct {
	MaxContentLength int `yaml:"maxContentLength"`
	PreviewLength    int `yaml:"previewLength"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type CorsConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

// ApplyDefaults fills in the values the server relies on when conf.yaml leaves them out
func (c *Config) ApplyDefaults() {
	if c.Ledger.RpcEndpoint == "" {
		c.Ledger.RpcEndpoint = "https://api.mainnet-beta.solana.com"
	}
	if c.Ledger.Network == "" {
		c.Ledger.Network = "mainnet-beta"
	}
	if c.Ledger.MinBalanceLamports == 0 {
		c.Ledger.MinBalanceLamports = 5000
	}
	if c.Ledger.PublishTransferLamports == 0 {
		c.Ledger.PublishTransferLamports = 1000000
	}
	if c.Ledger.FeatureTransferLamports == 0 {
		c.Ledger.FeatureTransferLamports = 100000
	}
	if c.Ledger.ConfirmTimeoutSeconds <= 0 {
		c.Ledger.ConfirmTimeoutSeconds = 60
	}
	if c.Ledger.ExplorerTxUrl == "" {
		c.Ledger.ExplorerTxUrl = "https://solscan.io/tx/"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "zynexa.sid"
	}
	if c.Session.TtlHours <= 0 {
		c.Session.TtlHours = 24 * 7
	}
	if c.Replay.Backend == "" {
		c.Replay.Backend = "memory"
	}
	if c.Replay.WindowMinutes <= 0 {
		c.Replay.WindowMinutes = 5
	}
	if c.Replay.SweepEvery == "" {
		c.Replay.SweepEvery = "@every 1m"
	}
	if c.Messages.MaxContentLength <= 0 {
		c.Messages.MaxContentLength = 500
	}
	if c.Messages.PreviewLength <= 0 {
		c.Messages.PreviewLength = 50
	}
}

// ApplyEnvironment overrides secrets with environment variables (when set)
func (c *Config) ApplyEnvironment() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Postgres.DSN = dsn
	}
	if rpc := os.Getenv("SOLANA_RPC_ENDPOINT"); rpc != "" {
		c.Ledger.RpcEndpoint = rpc
	}
	if fp := os.Getenv("FEE_PAYER_PRIVATE_KEY"); fp != "" {
		c.Ledger.FeePayerPrivateKey = fp
	}
	if sk := os.Getenv("SESSION_SECRET"); sk != "" {
		c.Session.SigningKeyBase64 = sk
	}
}
