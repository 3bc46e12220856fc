package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

type Option func(*Client)

func WithCommitment(commitment solanarpc.CommitmentType) Option {
	return func(c *Client) {
		c.commitment = commitment
	}
}

// WithJito routes submissions through a Jito block engine instead of sendTransaction.
func WithJito(blockEngineURL string, httpClient *http.Client) Option {
	return func(c *Client) {
		c.jito = NewJitoClient(blockEngineURL, httpClient)
	}
}

// Client is the ledger connection. Every transport error is wrapped with
// types.ErrConnectionFailure.
type Client struct {
	rpcClient  *solanarpc.Client
	commitment solanarpc.CommitmentType
	jito       *JitoClient
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		rpcClient:  solanarpc.New(endpoint),
		commitment: solanarpc.CommitmentConfirmed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func connectionError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrConnectionFailure, err)
}

func (c *Client) getAccount(ctx context.Context, addr solana.PublicKey) (*solanarpc.Account, error) {
	resp, err := c.rpcClient.GetAccountInfoWithOpts(ctx, addr, &solanarpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", addr, types.ErrAccountNotFound)
		}
		return nil, connectionError("getAccountInfo "+addr.String(), err)
	}

	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("%s: %w", addr, types.ErrAccountNotFound)
	}

	return resp.Value, nil
}

func (c *Client) GetAccountRaw(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	account, err := c.getAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if account.Data == nil {
		return []byte{}, nil
	}
	return account.Data.GetBinary(), nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	resp, err := c.rpcClient.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, connectionError("getLatestBlockhash", err)
	}
	if resp == nil || resp.Value == nil {
		return solana.Hash{}, connectionError("getLatestBlockhash", errors.New("empty response"))
	}
	return resp.Value.Blockhash, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if c.jito != nil {
		return c.jito.SendTransaction(ctx, tx)
	}

	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, connectionError("sendTransaction", err)
	}
	return sig, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpcClient.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, connectionError("getMinimumBalanceForRentExemption", err)
	}
	return lamports, nil
}

// GetTokenBalance returns the UI amount of a token account. Accounts that do
// not exist or are not owned by the token program are ErrAccountNotFound.
func (c *Client) GetTokenBalance(ctx context.Context, addr solana.PublicKey) (string, error) {
	account, err := c.getAccount(ctx, addr)
	if err != nil {
		return "", err
	}
	if !account.Owner.Equals(solana.TokenProgramID) {
		return "", fmt.Errorf("%s is owned by %s: %w", addr, account.Owner, types.ErrAccountNotFound)
	}

	resp, err := c.rpcClient.GetTokenAccountBalance(ctx, addr, c.commitment)
	if err != nil {
		return "", connectionError("getTokenAccountBalance "+addr.String(), err)
	}
	if resp == nil || resp.Value == nil {
		return "", fmt.Errorf("%s: %w", addr, types.ErrAccountNotFound)
	}

	return resp.Value.UiAmountString, nil
}

func (c *Client) GetLookupTable(ctx context.Context, addr solana.PublicKey) ([]solana.PublicKey, error) {
	data, err := c.GetAccountRaw(ctx, addr)
	if err != nil {
		return nil, err
	}

	var lookupTableState addresslookuptable.AddressLookupTableState
	err = lookupTableState.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("lookup table %s: %w", addr, types.ErrMalformedAccount)
	}

	return lookupTableState.Addresses, nil
}
