package coder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidInstruction = errors.New("invalid instruction")

const (
	OpInitBettingMarket uint8 = 2
	OpOfferTrade        uint8 = 3
	OpPayout            uint8 = 4
	OpFreeMint          uint8 = 5
	OpJudgeManually     uint8 = 6
	OpJudgeOracle       uint8 = 7
	OpSetStrikePrice    uint8 = 8
)

type BettingMarketInstructionCoder struct{}

func NewBettingMarketInstructionCoder() *BettingMarketInstructionCoder {
	return &BettingMarketInstructionCoder{}
}

// Decode decodes instruction data sent to the betting market program.
func (coder *BettingMarketInstructionCoder) Decode(data []byte) (interface{}, error) {
	return decodeData(data)
}

func (coder *BettingMarketInstructionCoder) DecodeCompute(data []byte) (Compute, error) {
	var instruction Compute

	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &instruction.Instruction); err != nil {
		return instruction, fmt.Errorf("compute instruction: %w", ErrInvalidInstruction)
	}
	if err := binary.Read(buf, binary.LittleEndian, &instruction.Value); err != nil {
		return instruction, fmt.Errorf("compute instruction: %w", ErrInvalidInstruction)
	}

	return instruction, nil
}

func decodeData(data []byte) (interface{}, error) {
	buf := bytes.NewReader(data)
	var instructionID byte
	if err := binary.Read(buf, binary.LittleEndian, &instructionID); err != nil {
		return nil, fmt.Errorf("empty payload: %w", ErrInvalidInstruction)
	}

	switch instructionID {
	case OpInitBettingMarket:
		return InitBettingMarket{}, nil
	case OpOfferTrade:
		return decodeOfferTrade(buf)
	case OpPayout:
		return Payout{}, nil
	case OpFreeMint:
		amount, err := readAmount(buf)
		return FreeMint{Amount: amount}, err
	case OpJudgeManually:
		result, err := readAmount(buf)
		return JudgeManually{Result: result}, err
	case OpJudgeOracle:
		return JudgeOracle{}, nil
	case OpSetStrikePrice:
		price, err := readAmount(buf)
		return SetStrikePrice{StrikePrice: price}, err
	default:
		return nil, fmt.Errorf("opcode %d: %w", instructionID, ErrInvalidInstruction)
	}
}

func decodeOfferTrade(buf *bytes.Reader) (OfferTrade, error) {
	var instruction OfferTrade
	var isYes uint8
	if err := binary.Read(buf, binary.LittleEndian, &isYes); err != nil {
		return instruction, fmt.Errorf("offer trade: %w", ErrInvalidInstruction)
	}
	instruction.IsYes = isYes == 1

	var err error
	if instruction.Price, err = readAmount(buf); err != nil {
		return instruction, err
	}
	if instruction.Amount, err = readAmount(buf); err != nil {
		return instruction, err
	}

	return instruction, nil
}

func readAmount(buf *bytes.Reader) (uint64, error) {
	var amount uint64
	if err := binary.Read(buf, binary.LittleEndian, &amount); err != nil {
		return 0, fmt.Errorf("short argument: %w", ErrInvalidInstruction)
	}
	return amount, nil
}
