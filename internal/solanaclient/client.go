package solanaclient

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	atok "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

const (
	// rent-exempt size of an SPL token mint account
	mintAccountSize = 82

	confirmPollInterval = 2 * time.Second
	confirmTimeout      = 90 * time.Second
)

// Client submits create-NFT transactions against a Solana cluster.
// One client serves the whole service lifetime; it is constructed once
// at wiring and passed into the issuance pipeline explicitly.
type Client struct {
	RpcClient *rpc.Client
	payer     solana.PrivateKey
}

func New(rpcURL string, payer solana.PrivateKey) *Client {
	return &Client{
		RpcClient: rpc.New(rpcURL),
		payer:     payer,
	}
}

// NewFromEnv reads SOLANA_RPC_URL and SOLANA_PAYER_KEY (base58).
func NewFromEnv() (*Client, error) {
	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		rpcURL = rpc.DevNet_RPC
	}

	payer, err := solana.PrivateKeyFromBase58(os.Getenv("SOLANA_PAYER_KEY"))
	if err != nil {
		return nil, errors.New("SOLANA_PAYER_KEY missing or not base58")
	}

	return New(rpcURL, payer), nil
}

// CreateAndSubmitToken mints a single-supply token carrying the given
// metadata URI and returns the transaction signature in its base58
// form. A confirmation whose status set cannot be decoded yields an
// empty signature with a nil error; callers treat that as a distinct
// outcome, not a failure.
func (c *Client) CreateAndSubmitToken(ctx context.Context, name, symbol, uri string, sellerFeeBasisPoints uint16) (string, error) {
	mint, err := solana.NewRandomPrivateKey()
	if err != nil {
		return "", err
	}

	rent, err := c.RpcClient.GetMinimumBalanceForRentExemption(
		ctx,
		mintAccountSize,
		rpc.CommitmentFinalized,
	)
	if err != nil {
		return "", err
	}

	payerPub := c.payer.PublicKey()
	mintPub := mint.PublicKey()

	createMint := system.NewCreateAccountInstruction(
		rent,
		mintAccountSize,
		solana.TokenProgramID,
		payerPub,
		mintPub,
	).Build()

	initMint := token.NewInitializeMintInstruction(
		0, // NFT: zero decimals
		payerPub,
		payerPub,
		mintPub,
		solana.SysVarRentPubkey,
	).Build()

	ata, _, err := solana.FindAssociatedTokenAddress(payerPub, mintPub)
	if err != nil {
		return "", err
	}

	createAta := atok.NewCreateInstruction(
		payerPub,
		payerPub,
		mintPub,
	).Build()

	mintTo := token.NewMintToInstruction(
		1, // single supply
		mintPub,
		ata,
		payerPub,
		nil,
	).Build()

	metadataIx, err := newCreateMetadataInstruction(mintPub, payerPub, payerPub, name, symbol, uri, sellerFeeBasisPoints)
	if err != nil {
		return "", err
	}

	latest, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{createMint, initMint, createAta, mintTo, metadataIx},
		latest.Value.Blockhash,
		solana.TransactionPayer(payerPub),
	)
	if err != nil {
		return "", err
	}

	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(payerPub) {
			return &c.payer
		}
		if pk.Equals(mintPub) {
			return &mint
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sig, err := c.RpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		log.Errorf("Failed to send mint transaction: %v", err)
		return "", err
	}

	log.Infof("Mint transaction sent: %s (mint %s)", sig, mintPub)

	ok, err := c.confirm(ctx, sig)
	if err != nil {
		return "", err
	}
	if !ok {
		// status set did not decode to a list; surface the null
		// outcome instead of failing the whole pipeline
		log.Errorf("Signature status for %s is not a list", sig)
		return "", nil
	}

	return sig.String(), nil
}

// confirm waits for the signature to finalize. It returns false with
// a nil error when the status response cannot be decoded.
func (c *Client) confirm(ctx context.Context, sig solana.Signature) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		out, err := c.RpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return false, err
		}

		if out == nil || out.Value == nil {
			return false, nil
		}

		if len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return false, errors.New("mint transaction failed on chain")
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return true, nil
			}
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}
