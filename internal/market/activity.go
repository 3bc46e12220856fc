package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/generators"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"go.uber.org/zap"
)

// LookupCache holds address lookup table contents between transactions.
type LookupCache interface {
	GetLookup(ctx context.Context, table solana.PublicKey) ([]solana.PublicKey, error)
	SetLookup(ctx context.Context, table solana.PublicKey, addresses []solana.PublicKey) error
}

// LookupSource is implemented by ledgers that can read address lookup tables.
type LookupSource interface {
	GetLookupTable(ctx context.Context, table solana.PublicKey) ([]solana.PublicKey, error)
}

var errLookupUnavailable = errors.New("address lookup tables are not readable from this ledger")

type lookupIndex struct {
	table solana.PublicKey
	index uint8
}

// loadedAddresses lists lookup-loaded accounts in message order: every
// writable index across all tables, then every readonly index.
func loadedAddresses(lookups []generators.TxAddressTableLookup) ([]lookupIndex, error) {
	var indexes []lookupIndex
	for _, writable := range []bool{true, false} {
		for _, lookup := range lookups {
			table, err := solana.PublicKeyFromBase58(lookup.AccountKey)
			if err != nil {
				return nil, fmt.Errorf("lookup table %q: %w", lookup.AccountKey, err)
			}
			source := lookup.ReadonlyIndexes
			if writable {
				source = lookup.WritableIndexes
			}
			for _, index := range source {
				indexes = append(indexes, lookupIndex{table: table, index: index})
			}
		}
	}
	return indexes, nil
}

func (c *Client) lookupTable(ctx context.Context, table solana.PublicKey) ([]solana.PublicKey, error) {
	if c.lookups != nil {
		if addresses, err := c.lookups.GetLookup(ctx, table); err == nil {
			return addresses, nil
		}
	}

	source, ok := c.ledger.(LookupSource)
	if !ok {
		return nil, errLookupUnavailable
	}

	addresses, err := source.GetLookupTable(ctx, table)
	if err != nil {
		return nil, err
	}

	if c.lookups != nil {
		if err := c.lookups.SetLookup(ctx, table, addresses); err != nil {
			c.logger.Warn("failed to cache lookup table", zap.Stringer("table", table), zap.Error(err))
		}
	}

	return addresses, nil
}

// accountKeys resolves the full account list of a pushed transaction,
// including accounts loaded through lookup tables.
func (c *Client) accountKeys(ctx context.Context, txn generators.MempoolTxn) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(txn.AccountKeys))
	for _, key := range txn.AccountKeys {
		pubkey, err := solana.PublicKeyFromBase58(key)
		if err != nil {
			return nil, fmt.Errorf("account key %q: %w", key, err)
		}
		keys = append(keys, pubkey)
	}

	if len(txn.AddressTableLookups) == 0 {
		return keys, nil
	}

	indexes, err := loadedAddresses(txn.AddressTableLookups)
	if err != nil {
		return nil, err
	}

	tables := map[solana.PublicKey][]solana.PublicKey{}
	for _, idx := range indexes {
		addresses, ok := tables[idx.table]
		if !ok {
			if addresses, err = c.lookupTable(ctx, idx.table); err != nil {
				return nil, fmt.Errorf("lookup table %s: %w", idx.table, err)
			}
			tables[idx.table] = addresses
		}

		if int(idx.index) >= len(addresses) {
			return nil, fmt.Errorf("lookup table %s index %d out of range", idx.table, idx.index)
		}
		keys = append(keys, addresses[idx.index])
	}

	return keys, nil
}

func instructionName(decoded interface{}) string {
	switch decoded.(type) {
	case coder.InitBettingMarket:
		return "initBettingMarket"
	case coder.OfferTrade:
		return "offerTrade"
	case coder.Payout:
		return "payout"
	case coder.FreeMint:
		return "freeMint"
	case coder.JudgeManually:
		return "judgeManually"
	case coder.JudgeOracle:
		return "judgeOracle"
	case coder.SetStrikePrice:
		return "setStrikePrice"
	default:
		return "unknown"
	}
}

func instructionFields(decoded interface{}) []zap.Field {
	switch ix := decoded.(type) {
	case coder.OfferTrade:
		return []zap.Field{zap.Bool("isYes", ix.IsYes), zap.Uint64("price", ix.Price), zap.Uint64("amount", ix.Amount)}
	case coder.FreeMint:
		return []zap.Field{zap.Uint64("amount", ix.Amount)}
	case coder.JudgeManually:
		return []zap.Field{zap.Stringer("result", types.Result(ix.Result))}
	case coder.SetStrikePrice:
		return []zap.Field{zap.Uint64("strike", ix.StrikePrice)}
	default:
		return nil
	}
}

// balanceChange is post minus pre for the owner's balance of mint.
func balanceChange(pre, post []types.TxTokenBalance, mint, owner solana.PublicKey) *big.Int {
	find := func(balances []types.TxTokenBalance) *big.Int {
		for _, balance := range balances {
			if balance.Mint == mint.String() && balance.Owner == owner.String() {
				if amount, ok := balance.RawAmount(); ok {
					return amount
				}
			}
		}
		return big.NewInt(0)
	}

	return new(big.Int).Sub(find(post), find(pre))
}

// ProcessActivity inspects a streamed transaction for betting market
// instructions and refreshes the snapshot when one touched the tracked
// market and succeeded. It reports whether a refresh happened.
func (c *Client) ProcessActivity(ctx context.Context, resp generators.GeyserResponse) (bool, error) {
	txn := resp.MempoolTxns

	keys, err := c.accountKeys(ctx, txn)
	if err != nil {
		return false, err
	}

	var (
		decoder      = coder.NewBettingMarketInstructionCoder()
		touched      bool
		computePrice uint32
		computeLimit uint32
	)

	for _, ins := range txn.Instructions {
		if int(ins.ProgramIdIndex) >= len(keys) {
			continue
		}
		programID := keys[ins.ProgramIdIndex]

		if programID.Equals(computebudget.ProgramID) {
			compute, err := decoder.DecodeCompute(ins.Data)
			if err != nil {
				continue
			}
			switch compute.Instruction {
			case 2:
				computeLimit = compute.Value
			case 3:
				computePrice = compute.Value
			}
			continue
		}

		if !programID.Equals(c.cfg.ProgramID) {
			continue
		}

		decoded, err := decoder.Decode(ins.Data)
		if err != nil {
			c.logger.Debug("undecodable instruction", zap.String("signature", txn.Signature), zap.Error(err))
			continue
		}

		name := instructionName(decoded)
		c.metrics.Activity.WithLabelValues(name).Inc()

		for _, idx := range ins.Accounts {
			if int(idx) < len(keys) && keys[idx].Equals(c.cfg.MarketAccount) {
				touched = true
			}
		}

		fields := append([]zap.Field{
			zap.String("instruction", name),
			zap.String("source", txn.Source),
			zap.String("signature", txn.Signature),
			zap.Uint64("slot", txn.Slot),
			zap.String("error", txn.Error),
		}, instructionFields(decoded)...)
		c.logger.Info("market activity", fields...)
	}

	if !touched {
		return false, nil
	}

	if change := balanceChange(txn.PreTokenBalances, txn.PostTokenBalances, c.cfg.UsdTokenMint, c.Owner()); change.Sign() != 0 {
		c.logger.Info("usd balance changed",
			zap.String("signature", txn.Signature),
			zap.Stringer("change", change),
			zap.Uint32("computeLimit", computeLimit),
			zap.Uint32("computePrice", computePrice))
	}

	if txn.Error != "" {
		return false, nil
	}

	if _, err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}
