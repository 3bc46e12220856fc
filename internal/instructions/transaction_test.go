package instructions

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransactionSignsAllSigners(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	market := solana.NewWallet().PrivateKey

	create, err := NewCreateMarketAccountInstruction(payer.PublicKey(), market.PublicKey(), programID, 696_960_000)
	require.NoError(t, err)

	tx, err := BuildTransaction(
		[]solana.Instruction{create},
		solana.Hash{1},
		payer,
		[]solana.PrivateKey{market},
		ComputeUnit{Units: 200000, MicroLamports: 1000},
	)
	require.NoError(t, err)

	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, payer.PublicKey(), tx.Message.AccountKeys[0])
	assert.Len(t, tx.Message.Instructions, 3)
	require.NoError(t, tx.VerifySignatures())
}

func TestBuildTransactionWithoutCompute(t *testing.T) {
	payer := solana.NewWallet().PrivateKey

	tx, err := BuildTransaction(
		[]solana.Instruction{NewSetStrikePriceInstruction(programID, marketKey, 1)},
		solana.Hash{2},
		payer,
		nil,
		ComputeUnit{},
	)
	require.NoError(t, err)
	assert.Len(t, tx.Message.Instructions, 1)
	assert.Len(t, tx.Signatures, 1)
}

func TestBuildTransactionMissingSigner(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	market := solana.NewWallet().PrivateKey

	create, err := NewCreateMarketAccountInstruction(payer.PublicKey(), market.PublicKey(), programID, 1)
	require.NoError(t, err)

	_, err = BuildTransaction([]solana.Instruction{create}, solana.Hash{3}, payer, nil, ComputeUnit{})
	assert.Error(t, err)
}

func TestAssociatedTokenAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ata, err := GetAssociatedTokenAccount(owner, mint)
	require.NoError(t, err)
	expected, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, ata)

	ins, err := NewCreateAssociatedTokenAccountInstruction(owner, owner, mint)
	require.NoError(t, err)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ins.ProgramID())
}
