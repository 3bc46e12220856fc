package coder

type InitBettingMarket struct{}

type OfferTrade struct {
	IsYes  bool
	Price  uint64
	Amount uint64
}

type Payout struct{}

type FreeMint struct {
	Amount uint64
}

type JudgeManually struct {
	Result uint64
}

type JudgeOracle struct{}

type SetStrikePrice struct {
	StrikePrice uint64
}

type Compute struct {
	Instruction uint8
	Value       uint32
}
