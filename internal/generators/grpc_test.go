package generators

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	pb "github.com/iqbalbaharum/solana-protos/pb"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRequest(t *testing.T) {
	program := solana.NewWallet().PublicKey().String()

	req := SubscriptionRequest([]string{program}, nil)

	require.Contains(t, req.Transactions, program)
	filter := req.Transactions[program]
	assert.Equal(t, []string{program}, filter.AccountInclude)
	assert.False(t, filter.GetVote())
	assert.False(t, filter.GetFailed())
	assert.Equal(t, pb.CommitmentLevel_CONFIRMED, req.GetCommitment())

	assert.Empty(t, SubscriptionRequest(nil, nil).Transactions)
}

func TestConvertTransaction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()
	table := solana.NewWallet().PublicKey()
	units := uint64(1400)

	update := &pb.SubscribeUpdateTransaction{
		Slot: 321,
		Transaction: &pb.SubscribeUpdateTransactionInfo{
			Signature: []byte{1, 2, 3, 4},
			Transaction: &pb.Transaction{
				Message: &pb.Message{
					AccountKeys:     [][]byte{payer.Bytes(), program.Bytes()},
					RecentBlockhash: make([]byte, 32),
					Instructions: []*pb.CompiledInstruction{
						{ProgramIdIndex: 1, Accounts: []byte{0}, Data: []byte{8, 1}},
					},
					AddressTableLookups: []*pb.MessageAddressTableLookup{
						{AccountKey: table.Bytes(), WritableIndexes: []byte{2}, ReadonlyIndexes: []byte{5}},
					},
				},
			},
			Meta: &pb.TransactionStatusMeta{
				ComputeUnitsConsumed: &units,
				PreTokenBalances: []*pb.TokenBalance{
					{Mint: "mint", Owner: "owner", UiTokenAmount: &pb.UiTokenAmount{Amount: "10", Decimals: 6}},
				},
			},
		},
	}

	txn := ConvertTransaction("geyser", update).MempoolTxns

	assert.Equal(t, "geyser", txn.Source)
	assert.Equal(t, base58.Encode([]byte{1, 2, 3, 4}), txn.Signature)
	assert.Equal(t, []string{payer.String(), program.String()}, txn.AccountKeys)
	assert.Equal(t, []TxInstruction{{ProgramIdIndex: 1, Accounts: []byte{0}, Data: []byte{8, 1}}}, txn.Instructions)
	assert.Equal(t, table.String(), txn.AddressTableLookups[0].AccountKey)
	assert.Equal(t, uint64(1400), txn.ComputeUnitsConsumed)
	assert.Equal(t, uint64(321), txn.Slot)
	assert.Equal(t, "10", txn.PreTokenBalances[0].Amount)
	assert.Equal(t, uint32(6), txn.PreTokenBalances[0].Decimal)
	assert.Empty(t, txn.Error)
}

func TestConvertTransactionError(t *testing.T) {
	update := &pb.SubscribeUpdateTransaction{
		Transaction: &pb.SubscribeUpdateTransactionInfo{
			Transaction: &pb.Transaction{},
			Meta:        &pb.TransactionStatusMeta{Err: &pb.TransactionError{Err: []byte{8, 0, 0, 0, 0, 0, 0, 0, 0, 0x1b}}},
		},
	}

	assert.Equal(t, "0x1b", ConvertTransaction("geyser", update).MempoolTxns.Error)
}
