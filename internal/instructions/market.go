package instructions

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

var MarketAuthoritySeed = []byte("betting")

// FindMarketAuthority derives the program's token authority PDA.
func FindMarketAuthority(programID solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{MarketAuthoritySeed}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive market authority: %w", err)
	}
	return pda, nil
}

type marketInstruction struct {
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

func (instruction *marketInstruction) ProgramID() solana.PublicKey {
	return instruction.programID
}

func (instruction *marketInstruction) Accounts() (out []*solana.AccountMeta) {
	return instruction.GetAccounts()
}

func encodeInstruction(instruction bin.BinaryMarshaler) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(instruction); err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

func writeUint64s(encoder *bin.Encoder, values ...uint64) error {
	for _, v := range values {
		if err := encoder.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

// TradeAccounts are shared by offer trade and payout.
type TradeAccounts struct {
	ProgramID    solana.PublicKey
	Market       solana.PublicKey
	UsdTokenMint solana.PublicKey
	State        *types.MarketState
	User         types.TokenAccounts
}

func (params *TradeAccounts) metas() ([]*solana.AccountMeta, error) {
	pda, err := FindMarketAuthority(params.ProgramID)
	if err != nil {
		return nil, err
	}

	return []*solana.AccountMeta{
		solana.Meta(params.User.Owner).SIGNER(),
		solana.Meta(pda),
		solana.Meta(params.Market).WRITE(),
		solana.Meta(params.UsdTokenMint).WRITE(),
		solana.Meta(params.State.YesTokenMint).WRITE(),
		solana.Meta(params.State.NoTokenMint).WRITE(),
		solana.Meta(params.User.Usd).WRITE(),
		solana.Meta(params.User.Yes).WRITE(),
		solana.Meta(params.User.No).WRITE(),
		solana.Meta(params.State.UsdTokenAccount).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, nil
}

type InitBettingMarketInstruction struct {
	bin.BaseVariant
	marketInstruction
}

type InitBettingMarketParams struct {
	ProgramID       solana.PublicKey
	Initializer     solana.PublicKey
	Market          solana.PublicKey
	UsdTokenMint    solana.PublicKey
	YesTokenMint    solana.PublicKey
	NoTokenMint     solana.PublicKey
	UsdTokenAccount solana.PublicKey
	Judge           solana.PublicKey
}

func (instruction *InitBettingMarketInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *InitBettingMarketInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint8(coder.OpInitBettingMarket)
}

func NewInitBettingMarketInstruction(params *InitBettingMarketParams) (*InitBettingMarketInstruction, error) {
	pda, err := FindMarketAuthority(params.ProgramID)
	if err != nil {
		return nil, err
	}

	ins := &InitBettingMarketInstruction{}
	ins.programID = params.ProgramID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpInitBettingMarket),
	}
	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(params.Initializer).SIGNER(),
		solana.Meta(pda),
		solana.Meta(params.Market).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(params.UsdTokenMint),
		solana.Meta(params.YesTokenMint).SIGNER().WRITE(),
		solana.Meta(params.NoTokenMint).SIGNER().WRITE(),
		solana.Meta(params.UsdTokenAccount).SIGNER().WRITE(),
		solana.Meta(params.Judge),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}

	return ins, nil
}

type OfferTradeInstruction struct {
	bin.BaseVariant
	IsYes  bool
	Price  uint64
	Amount uint64
	marketInstruction
}

type OfferTradeParams struct {
	TradeAccounts
	IsYes  bool
	Price  uint64
	Amount uint64
}

func (instruction *OfferTradeInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *OfferTradeInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteUint8(coder.OpOfferTrade); err != nil {
		return err
	}
	isYes := uint8(0)
	if instruction.IsYes {
		isYes = 1
	}
	if err = encoder.WriteUint8(isYes); err != nil {
		return err
	}
	return writeUint64s(encoder, instruction.Price, instruction.Amount)
}

func NewOfferTradeInstruction(params *OfferTradeParams) (*OfferTradeInstruction, error) {
	accounts, err := params.metas()
	if err != nil {
		return nil, err
	}

	ins := &OfferTradeInstruction{
		IsYes:  params.IsYes,
		Price:  params.Price,
		Amount: params.Amount,
	}
	ins.programID = params.ProgramID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpOfferTrade),
	}
	ins.AccountMetaSlice = accounts

	return ins, nil
}

type PayoutInstruction struct {
	bin.BaseVariant
	marketInstruction
}

func (instruction *PayoutInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *PayoutInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint8(coder.OpPayout)
}

func NewPayoutInstruction(params *TradeAccounts) (*PayoutInstruction, error) {
	accounts, err := params.metas()
	if err != nil {
		return nil, err
	}

	ins := &PayoutInstruction{}
	ins.programID = params.ProgramID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpPayout),
	}
	ins.AccountMetaSlice = accounts

	return ins, nil
}

type FreeMintInstruction struct {
	bin.BaseVariant
	Amount uint64
	marketInstruction
}

type FreeMintParams struct {
	ProgramID    solana.PublicKey
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	Amount       uint64
}

func (instruction *FreeMintInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *FreeMintInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(coder.OpFreeMint); err != nil {
		return err
	}
	return writeUint64s(encoder, instruction.Amount)
}

func NewFreeMintInstruction(params *FreeMintParams) (*FreeMintInstruction, error) {
	pda, err := FindMarketAuthority(params.ProgramID)
	if err != nil {
		return nil, err
	}

	ins := &FreeMintInstruction{Amount: params.Amount}
	ins.programID = params.ProgramID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpFreeMint),
	}
	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(pda),
		solana.Meta(params.Mint).WRITE(),
		solana.Meta(params.TokenAccount).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}

	return ins, nil
}

type JudgeManuallyInstruction struct {
	bin.BaseVariant
	Result uint64
	marketInstruction
}

func (instruction *JudgeManuallyInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *JudgeManuallyInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(coder.OpJudgeManually); err != nil {
		return err
	}
	return writeUint64s(encoder, instruction.Result)
}

// NewJudgeManuallyInstruction records result (1 = YES, 2 = NO) in the market.
func NewJudgeManuallyInstruction(programID, market solana.PublicKey, result uint64) *JudgeManuallyInstruction {
	ins := &JudgeManuallyInstruction{Result: result}
	ins.programID = programID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpJudgeManually),
	}
	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(market).WRITE(),
	}
	return ins
}

type JudgeOracleInstruction struct {
	bin.BaseVariant
	marketInstruction
}

func (instruction *JudgeOracleInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *JudgeOracleInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	return encoder.WriteUint8(coder.OpJudgeOracle)
}

func NewJudgeOracleInstruction(programID, market, priceAccount solana.PublicKey) *JudgeOracleInstruction {
	ins := &JudgeOracleInstruction{}
	ins.programID = programID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpJudgeOracle),
	}
	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(market).WRITE(),
		solana.Meta(priceAccount),
	}
	return ins
}

type SetStrikePriceInstruction struct {
	bin.BaseVariant
	StrikePrice uint64
	marketInstruction
}

func (instruction *SetStrikePriceInstruction) Data() ([]byte, error) {
	return encodeInstruction(instruction)
}

func (instruction *SetStrikePriceInstruction) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint8(coder.OpSetStrikePrice); err != nil {
		return err
	}
	return writeUint64s(encoder, instruction.StrikePrice)
}

func NewSetStrikePriceInstruction(programID, market solana.PublicKey, price uint64) *SetStrikePriceInstruction {
	ins := &SetStrikePriceInstruction{StrikePrice: price}
	ins.programID = programID
	ins.BaseVariant = bin.BaseVariant{
		Impl:   ins,
		TypeID: bin.TypeIDFromUint8(coder.OpSetStrikePrice),
	}
	ins.AccountMetaSlice = []*solana.AccountMeta{
		solana.Meta(market).WRITE(),
	}
	return ins
}
