package instructions

import (
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
)

func GetAssociatedTokenAccount(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	return tokenAccount, nil
}

func NewCreateAssociatedTokenAccountInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	return associatedtokenaccount.NewCreateInstruction(payer, owner, mint).ValidateAndBuild()
}

// NewCreateMarketAccountInstruction allocates a program-owned market account.
func NewCreateMarketAccountInstruction(payer, market, programID solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	return system.NewCreateAccountInstruction(
		lamports,
		uint64(coder.MarketAccountSize),
		programID,
		payer,
		market).ValidateAndBuild()
}
