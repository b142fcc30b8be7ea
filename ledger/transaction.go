package ledger

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/zynexa/go-zynexa-server/types"
)

const (
	// MaxTransactionSize is the largest serialized transaction the network accepts
	MaxTransactionSize = 1232

	// memo only transaction without the memo bytes: one signature (1+64), header (3),
	// fee payer and memo program keys (1+2*32), blockhash (32), one instruction with
	// program index, empty account list and a two byte data length (1+1+1+2)
	memoOnlyOverhead = 170

	// MaxMemoSize is the largest memo a memo only transaction can carry
	MaxMemoSize = MaxTransactionSize - memoOnlyOverhead

	MemoProgramID = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"
)

var memoProgram = solana.MustPublicKeyFromBase58(MemoProgramID)

// TransferInstruction moves lamports from -> to with the system program
func TransferInstruction(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	return system.NewTransferInstruction(lamports, solana.PublicKeyFromBytes(from), solana.PublicKeyFromBytes(to)).Build()
}

// MemoInstruction records arbitrary bytes on the ledger. No accounts are attached.
func MemoInstruction(memo []byte) solana.Instruction {
	return solana.NewInstruction(memoProgram, solana.AccountMetaSlice{}, memo)
}

// SignedTransaction is a legacy transaction paid and signed by the fee payer, ready to send
type SignedTransaction struct {
	ID  string // base58 of the fee payer signature
	Raw []byte
}

// BuildSignedTransaction compiles the instructions against the blockhash and signs with the fee payer (the only signer).
// A transaction larger than MaxTransactionSize is a validation error (usually an oversized memo).
func BuildSignedTransaction(feePayer ed25519.PrivateKey, blockhash string, instructions ...solana.Instruction) (*SignedTransaction, error) {
	hash, err := solana.HashFromBase58(blockhash)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid blockhash %q", types.ErrLedger, blockhash)
	}
	payer := solana.PrivateKey(feePayer)
	payerKey := payer.PublicKey()

	tx, err := solana.NewTransaction(instructions, hash, solana.TransactionPayer(payerKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrLedger, err)
	}
	if int(tx.Message.Header.NumRequiredSignatures) != 1 {
		return nil, fmt.Errorf("%w: only the fee payer may sign", types.ErrLedger)
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payerKey) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrLedger, err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrLedger, err)
	}
	if len(raw) > MaxTransactionSize {
		return nil, types.NewValidationError(fmt.Sprintf("transaction too large: %d bytes (max %d)", len(raw), MaxTransactionSize))
	}
	return &SignedTransaction{ID: tx.Signatures[0].String(), Raw: raw}, nil
}
