package services

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/ledger"
	"github.com/zynexa/go-zynexa-server/metrics"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

const lamportsPerSol = 1000000000

// Relay submits sponsored memo transactions and reports on the fee payer wallet
type Relay interface {
	Submit(ctx context.Context, req types.RelayRequest) (*types.RelayReceipt, error)
	Health(ctx context.Context) (*types.FeePayerHealth, error)
}

// LedgerClient is the subset of the ledger rpc the relay needs
type LedgerClient interface {
	Endpoint() string
	GetBalance(ctx context.Context, account string) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (*ledger.LatestBlockhash, error)
	SendTransaction(ctx context.Context, serialized []byte) (string, error)
	ConfirmTransaction(ctx context.Context, signature string, lastValidBlockHeight uint64) error
}

type RelayService struct {
	client         LedgerClient
	conf           global.LedgerConfig
	feePayer       ed25519.PrivateKey
	feePayerErr    error
	confirmTimeout time.Duration
}

// NewRelayService parses the fee payer secret once. A missing or malformed secret
// doesn't stop the server, every submission fails with the configuration error instead.
func NewRelayService(client LedgerClient, conf global.LedgerConfig) *RelayService {
	rs := &RelayService{
		client:         client,
		conf:           conf,
		confirmTimeout: time.Duration(conf.ConfirmTimeoutSeconds) * time.Second,
	}
	if rs.confirmTimeout <= 0 {
		rs.confirmTimeout = 60 * time.Second
	}
	if conf.FeePayerPrivateKey == "" {
		rs.feePayerErr = types.ErrFeePayerNotConfigured
	} else {
		rs.feePayer, rs.feePayerErr = util.ParseKeypairJSON(conf.FeePayerPrivateKey)
	}
	if rs.feePayerErr != nil {
		level.Warn(global.Logger).Log("msg", "fee payer unavailable, ledger relay disabled", "err", rs.feePayerErr)
	} else {
		level.Info(global.Logger).Log("msg", "fee payer loaded", "address", rs.FeePayerAddress(), "network", conf.Network)
	}
	return rs
}

func (rs *RelayService) FeePayerAddress() string {
	if rs.feePayer == nil {
		return ""
	}
	return util.EncodePublicKey(rs.feePayer.Public().(ed25519.PublicKey))
}

func (rs *RelayService) Health(ctx context.Context) (*types.FeePayerHealth, error) {
	if rs.feePayerErr != nil {
		return nil, rs.feePayerErr
	}
	address := rs.FeePayerAddress()
	balance, err := rs.client.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}
	return &types.FeePayerHealth{
		Network:            rs.conf.Network,
		RpcEndpoint:        rs.client.Endpoint(),
		FeePayerPublicKey:  address,
		BalanceLamports:    balance,
		MinBalanceLamports: rs.conf.MinBalanceLamports,
	}, nil
}

// Submit builds, signs and sends the transaction and waits for confirmed commitment.
// Nothing is retried: a failed submission is reported and the caller records nothing.
func (rs *RelayService) Submit(ctx context.Context, req types.RelayRequest) (*types.RelayReceipt, error) {
	if rs.feePayerErr != nil {
		return nil, rs.feePayerErr
	}
	if len(req.Memo) > ledger.MaxMemoSize {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "rejected").Inc()
		return nil, types.NewValidationError(fmt.Sprintf("memo too large: %d bytes (max %d)", len(req.Memo), ledger.MaxMemoSize))
	}
	correlationID := uuid.NewString()
	feePayerPub := rs.feePayer.Public().(ed25519.PublicKey)
	logger := level.Info(global.Logger)

	instructions := []solana.Instruction{}
	if req.Recipient != "" && req.Lamports > 0 {
		recipient, err := util.DecodePublicKey(req.Recipient)
		if err != nil {
			metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "rejected").Inc()
			return nil, err
		}
		instructions = append(instructions, ledger.TransferInstruction(feePayerPub, recipient, req.Lamports))
	}
	instructions = append(instructions, ledger.MemoInstruction(req.Memo))

	balance, err := rs.client.GetBalance(ctx, util.EncodePublicKey(feePayerPub))
	if err != nil {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "failed").Inc()
		return nil, err
	}
	if balance < rs.conf.MinBalanceLamports {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "rejected").Inc()
		level.Error(global.Logger).Log("msg", "fee payer balance too low", "balanceLamports", balance, "correlationId", correlationID)
		return nil, fmt.Errorf("%w: current balance %.9f SOL, please top up the fee payer wallet", types.ErrInsufficientFunds, float64(balance)/lamportsPerSol)
	}

	latest, err := rs.client.GetLatestBlockhash(ctx)
	if err != nil {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "failed").Inc()
		return nil, err
	}
	tx, err := ledger.BuildSignedTransaction(rs.feePayer, latest.Blockhash, instructions...)
	if err != nil {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "rejected").Inc()
		return nil, err
	}

	start := time.Now()
	logger.Log("msg", "submitting transaction", "kind", req.Kind, "tx", tx.ID, "correlationId", correlationID)
	txHash, err := rs.client.SendTransaction(ctx, tx.Raw)
	if err != nil {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "failed").Inc()
		level.Error(global.Logger).Log("msg", "transaction submission failed", "kind", req.Kind, "correlationId", correlationID, "err", err)
		return nil, err
	}

	// once submitted the transaction may land even if the client goes away
	confirmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rs.confirmTimeout)
	defer cancel()
	if err := rs.client.ConfirmTransaction(confirmCtx, txHash, latest.LastValidBlockHeight); err != nil {
		metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "failed").Inc()
		level.Error(global.Logger).Log("msg", "transaction not confirmed", "kind", req.Kind, "tx", txHash, "correlationId", correlationID, "err", err)
		if !errors.Is(err, types.ErrLedger) {
			err = fmt.Errorf("%w: %v", types.ErrLedger, err)
		}
		return nil, err
	}

	metrics.RelaySubmissionsTotal.WithLabelValues(string(req.Kind), "confirmed").Inc()
	metrics.RelayConfirmationLatency.WithLabelValues(string(req.Kind)).Observe(float64(time.Since(start).Milliseconds()))
	logger.Log("msg", "transaction confirmed", "kind", req.Kind, "tx", txHash, "correlationId", correlationID)
	return &types.RelayReceipt{TxHash: txHash, CorrelationID: correlationID}, nil
}
