package instructions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

type ComputeUnit struct {
	MicroLamports uint64
	Units         uint32
}

func (compute ComputeUnit) instructions() []solana.Instruction {
	ins := []solana.Instruction{}

	if compute.Units > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitLimitInstruction(compute.Units).Build())
	}

	if compute.MicroLamports > 0 {
		ins = append(ins, computebudget.NewSetComputeUnitPriceInstruction(compute.MicroLamports).Build())
	}

	return ins
}

// BuildTransaction prepends compute budget instructions and signs with the
// payer and any extra signers the instructions require.
func BuildTransaction(
	instructions []solana.Instruction,
	blockhash solana.Hash,
	payer solana.PrivateKey,
	signers []solana.PrivateKey,
	compute ComputeUnit) (*solana.Transaction, error) {

	ins := compute.instructions()
	ins = append(ins, instructions...)

	tx, err := solana.NewTransaction(
		ins,
		blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	keys := append([]solana.PrivateKey{payer}, signers...)
	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			for i := range keys {
				if keys[i].PublicKey().Equals(key) {
					return &keys[i]
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	return tx, nil
}
