package instructions

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	programID = solana.NewWallet().PublicKey()
	marketKey = solana.NewWallet().PublicKey()
)

func le(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func tradeAccounts() TradeAccounts {
	return TradeAccounts{
		ProgramID:    programID,
		Market:       marketKey,
		UsdTokenMint: solana.NewWallet().PublicKey(),
		State: &types.MarketState{
			YesTokenMint:    solana.NewWallet().PublicKey(),
			NoTokenMint:     solana.NewWallet().PublicKey(),
			UsdTokenAccount: solana.NewWallet().PublicKey(),
		},
		User: types.TokenAccounts{
			Owner: solana.NewWallet().PublicKey(),
			Usd:   solana.NewWallet().PublicKey(),
			Yes:   solana.NewWallet().PublicKey(),
			No:    solana.NewWallet().PublicKey(),
		},
	}
}

func TestOfferTradeData(t *testing.T) {
	ins, err := NewOfferTradeInstruction(&OfferTradeParams{
		TradeAccounts: tradeAccounts(),
		IsYes:         true,
		Price:         42,
		Amount:        1000,
	})
	require.NoError(t, err)

	data, err := ins.Data()
	require.NoError(t, err)

	want := append([]byte{3, 1}, le(42)...)
	want = append(want, le(1000)...)
	assert.Equal(t, want, data)
	assert.Equal(t, programID, ins.ProgramID())
}

func TestOfferTradeAccounts(t *testing.T) {
	params := tradeAccounts()
	ins, err := NewOfferTradeInstruction(&OfferTradeParams{TradeAccounts: params, Price: 30, Amount: 1})
	require.NoError(t, err)

	pda, err := FindMarketAuthority(programID)
	require.NoError(t, err)

	accounts := ins.Accounts()
	require.Len(t, accounts, 11)

	want := []solana.PublicKey{
		params.User.Owner, pda, marketKey, params.UsdTokenMint,
		params.State.YesTokenMint, params.State.NoTokenMint,
		params.User.Usd, params.User.Yes, params.User.No,
		params.State.UsdTokenAccount, solana.TokenProgramID,
	}
	for i, k := range want {
		assert.Equal(t, k, accounts[i].PublicKey, "account %d", i)
	}

	assert.True(t, accounts[0].IsSigner)
	assert.False(t, accounts[0].IsWritable)
	assert.False(t, accounts[1].IsWritable)
	for i := 2; i <= 9; i++ {
		assert.True(t, accounts[i].IsWritable, "account %d", i)
		assert.False(t, accounts[i].IsSigner, "account %d", i)
	}
	assert.False(t, accounts[10].IsWritable)

	data, err := ins.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[1])
}

func TestPayoutMatchesTradeAccounts(t *testing.T) {
	params := tradeAccounts()
	payout, err := NewPayoutInstruction(&params)
	require.NoError(t, err)
	trade, err := NewOfferTradeInstruction(&OfferTradeParams{TradeAccounts: params})
	require.NoError(t, err)

	assert.Equal(t, trade.Accounts(), payout.Accounts())

	data, err := payout.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
}

func TestSingleArgumentInstructions(t *testing.T) {
	oracle := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	tokenAccount := solana.NewWallet().PublicKey()

	freeMint, err := NewFreeMintInstruction(&FreeMintParams{ProgramID: programID, Mint: mint, TokenAccount: tokenAccount, Amount: 500})
	require.NoError(t, err)

	tests := []struct {
		name     string
		ins      solana.Instruction
		data     []byte
		accounts []solana.PublicKey
	}{
		{"free mint", freeMint, append([]byte{5}, le(500)...), nil},
		{"judge manually", NewJudgeManuallyInstruction(programID, marketKey, 1), append([]byte{6}, le(1)...), []solana.PublicKey{marketKey}},
		{"judge oracle", NewJudgeOracleInstruction(programID, marketKey, oracle), []byte{7}, []solana.PublicKey{marketKey, oracle}},
		{"strike price", NewSetStrikePriceInstruction(programID, marketKey, 65000), append([]byte{8}, le(65000)...), []solana.PublicKey{marketKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.ins.Data()
			require.NoError(t, err)
			assert.Equal(t, tt.data, data)
			assert.Equal(t, programID, tt.ins.ProgramID())

			if tt.accounts != nil {
				accounts := tt.ins.Accounts()
				require.Len(t, accounts, len(tt.accounts))
				for i, k := range tt.accounts {
					assert.Equal(t, k, accounts[i].PublicKey)
				}
				assert.True(t, accounts[0].IsWritable)
			}
		})
	}

	accounts := freeMint.Accounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, mint, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, tokenAccount, accounts[2].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[3].PublicKey)
}

func TestInitBettingMarketInstruction(t *testing.T) {
	params := &InitBettingMarketParams{
		ProgramID:       programID,
		Initializer:     solana.NewWallet().PublicKey(),
		Market:          marketKey,
		UsdTokenMint:    solana.NewWallet().PublicKey(),
		YesTokenMint:    solana.NewWallet().PublicKey(),
		NoTokenMint:     solana.NewWallet().PublicKey(),
		UsdTokenAccount: solana.NewWallet().PublicKey(),
		Judge:           solana.NewWallet().PublicKey(),
	}
	ins, err := NewInitBettingMarketInstruction(params)
	require.NoError(t, err)

	data, err := ins.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data)

	accounts := ins.Accounts()
	require.Len(t, accounts, 11)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, marketKey, accounts[2].PublicKey)
	assert.False(t, accounts[4].IsWritable)
	for i := 5; i <= 7; i++ {
		assert.True(t, accounts[i].IsSigner, "account %d", i)
		assert.True(t, accounts[i].IsWritable, "account %d", i)
	}
	assert.Equal(t, params.Judge, accounts[8].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[9].PublicKey)
	assert.Equal(t, solana.SysVarRentPubkey, accounts[10].PublicKey)
}

func TestDecoderMirrorsEncoder(t *testing.T) {
	ins, err := NewOfferTradeInstruction(&OfferTradeParams{TradeAccounts: tradeAccounts(), IsYes: true, Price: 55, Amount: 12})
	require.NoError(t, err)
	data, err := ins.Data()
	require.NoError(t, err)

	decoded, err := coder.NewBettingMarketInstructionCoder().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, coder.OfferTrade{IsYes: true, Price: 55, Amount: 12}, decoded)
}

func TestFromRequest(t *testing.T) {
	yes := true
	price := uint64(42)
	amount := uint64(1000)

	params, err := FromRequest(coder.OpOfferTrade, Args{IsYes: &yes, Price: &price, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, Params{IsYes: true, Price: 42, Amount: 1000}, params)

	tests := []struct {
		name string
		op   uint8
		args Args
	}{
		{"missing side", coder.OpOfferTrade, Args{Price: &price, Amount: &amount}},
		{"missing amount", coder.OpOfferTrade, Args{IsYes: &yes, Price: &price}},
		{"missing mint amount", coder.OpFreeMint, Args{}},
		{"missing result", coder.OpJudgeManually, Args{}},
		{"missing strike", coder.OpSetStrikePrice, Args{}},
		{"unknown opcode", 9, Args{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRequest(tt.op, tt.args)
			assert.True(t, errors.Is(err, types.ErrInvalidArgument))
		})
	}

	_, err = FromRequest(coder.OpPayout, Args{})
	assert.NoError(t, err)
}

func TestFromRequestFullWidth(t *testing.T) {
	max := uint64(math.MaxUint64)

	params, err := FromRequest(coder.OpFreeMint, Args{Amount: &max})
	require.NoError(t, err)
	assert.Equal(t, max, params.Amount)

	params, err = FromRequest(coder.OpJudgeManually, Args{Result: &max})
	require.NoError(t, err)
	assert.Equal(t, max, params.Result)
}
