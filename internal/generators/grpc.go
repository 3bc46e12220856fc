package generators

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/iqbalbaharum/betting-market-client/internal/utils"
	pb "github.com/iqbalbaharum/solana-protos/pb"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

var kacp = keepalive.ClientParameters{
	Time:                10 * time.Minute,
	Timeout:             20 * time.Second,
	PermitWithoutStream: true,
}

type MempoolTxn struct {
	Source               string                  `json:"source"`
	Signature            string                  `json:"signature"`
	AccountKeys          []string                `json:"accountKeys"`
	RecentBlockhash      string                  `json:"recentBlockhash"`
	Instructions         []TxInstruction         `json:"instructions"`
	InnerInstructions    []*pb.InnerInstructions `json:"innerInstructions"`
	AddressTableLookups  []TxAddressTableLookup  `json:"addressTableLookups"`
	PreTokenBalances     []types.TxTokenBalance  `json:"preTokenBalances"`
	PostTokenBalances    []types.TxTokenBalance  `json:"postTokenBalances"`
	ComputeUnitsConsumed uint64                  `json:"computeUnitsConsumed"`
	Slot                 uint64                  `json:"slot"`
	Error                string                  `json:"error"`
}

type TxInstruction struct {
	ProgramIdIndex uint32  `json:"programIdIndex"`
	Accounts       []uint8 `json:"accounts"`
	Data           []byte  `json:"data"`
}

type TxAddressTableLookup struct {
	AccountKey      string  `json:"accountKey"`
	WritableIndexes []uint8 `json:"writableIndexes"`
	ReadonlyIndexes []uint8 `json:"readonlyIndexes"`
}

type GeyserResponse struct {
	MempoolTxns MempoolTxn `json:"mempoolTxns"`
}

type GrpcClient struct {
	conn   *grpc.ClientConn
	client pb.GeyserClient
	logger *zap.Logger
}

func GrpcConnect(address string, plaintext bool, logger *zap.Logger) (*GrpcClient, error) {
	var opts []grpc.DialOption
	if plaintext {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("load system cert pool: %w", err)
		}
		creds := credentials.NewClientTLSFromCert(pool, "")
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}

	opts = append(opts, grpc.WithKeepaliveParams(kacp))
	opts = append(opts, grpc.WithInitialWindowSize(100<<20))
	opts = append(opts, grpc.WithInitialConnWindowSize(100<<20))
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(1<<30)))

	logger.Info("starting grpc client", zap.String("address", address))
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConnectionFailure, err)
	}

	return &GrpcClient{conn: conn, client: pb.NewGeyserClient(conn), logger: logger}, nil
}

func (g *GrpcClient) CloseConnection() error {
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}

// SubscriptionRequest builds a confirmed-transaction filter over the given accounts.
func SubscriptionRequest(accountInclude []string, accountExclude []string) *pb.SubscribeRequest {
	subscription := &pb.SubscribeRequest{
		Slots:        make(map[string]*pb.SubscribeRequestFilterSlots),
		Blocks:       make(map[string]*pb.SubscribeRequestFilterBlocks),
		BlocksMeta:   make(map[string]*pb.SubscribeRequestFilterBlocksMeta),
		Accounts:     make(map[string]*pb.SubscribeRequestFilterAccounts),
		Transactions: make(map[string]*pb.SubscribeRequestFilterTransactions),
		Entry:        make(map[string]*pb.SubscribeRequestFilterEntry),
		Commitment:   pb.CommitmentLevel_CONFIRMED.Enum(),
	}

	if len(accountInclude) > 0 {
		subscription.Transactions[accountInclude[0]] = &pb.SubscribeRequestFilterTransactions{
			Vote:           utils.BoolPointer(false),
			Failed:         utils.BoolPointer(false),
			AccountInclude: accountInclude,
			AccountExclude: accountExclude,
		}
	}

	return subscription
}

// GrpcSubscribeByAddresses streams transactions touching accountInclude into
// txChannel until ctx is cancelled or the stream fails. txChannel is closed on return.
func (g *GrpcClient) GrpcSubscribeByAddresses(ctx context.Context, sourceName string, grpcToken string, accountInclude []string, accountExclude []string, txChannel chan<- GeyserResponse) error {
	defer close(txChannel)

	if g.client == nil {
		return errors.New("grpc not connected")
	}

	subscription := SubscriptionRequest(accountInclude, accountExclude)

	if grpcToken != "" {
		md := metadata.New(map[string]string{"x-token": grpcToken})
		ctx = metadata.NewOutgoingContext(ctx, md)
	}

	stream, err := g.client.Subscribe(ctx, grpc.MaxCallRecvMsgSize(100<<20))
	if err != nil {
		return fmt.Errorf("subscribe: %w: %w", types.ErrConnectionFailure, err)
	}

	if err = stream.Send(subscription); err != nil {
		return fmt.Errorf("send subscription: %w: %w", types.ErrConnectionFailure, err)
	}
	g.logger.Info("geyser subscription started", zap.String("source", sourceName), zap.Strings("accounts", accountInclude))

	for {
		resp, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive update: %w: %w", types.ErrConnectionFailure, err)
		}

		update := resp.GetTransaction()
		if update == nil || update.Transaction == nil || update.Transaction.Transaction == nil {
			continue
		}

		select {
		case txChannel <- ConvertTransaction(sourceName, update):
		case <-ctx.Done():
			return nil
		}
	}
}

func ConvertTransaction(sourceName string, update *pb.SubscribeUpdateTransaction) GeyserResponse {
	info := update.Transaction
	message := info.Transaction.Message
	meta := info.Meta

	txn := MempoolTxn{
		Source:    sourceName,
		Signature: base58.Encode(info.Signature),
		Slot:      update.Slot,
	}

	if message != nil {
		txn.AccountKeys = convertAccountKeys(message.AccountKeys)
		txn.RecentBlockhash = base58.Encode(message.RecentBlockhash)
		txn.Instructions = convertInstructions(message.Instructions)
		txn.AddressTableLookups = convertAddressTableLookups(message.AddressTableLookups)
	}

	if meta != nil {
		if meta.Err != nil {
			if len(meta.Err.Err) > 9 {
				txn.Error = fmt.Sprintf("0x%x", meta.Err.Err[9])
			} else {
				txn.Error = "ERR"
			}
		}
		txn.InnerInstructions = meta.InnerInstructions
		txn.PreTokenBalances = convertTokenBalances(meta.PreTokenBalances)
		txn.PostTokenBalances = convertTokenBalances(meta.PostTokenBalances)
		if meta.ComputeUnitsConsumed != nil {
			txn.ComputeUnitsConsumed = *meta.ComputeUnitsConsumed
		}
	}

	return GeyserResponse{MempoolTxns: txn}
}

func convertAccountKeys(accountKeys [][]byte) []string {
	encodedKeys := make([]string, len(accountKeys))
	for i, key := range accountKeys {
		encodedKeys[i] = base58.Encode(key)
	}
	return encodedKeys
}

func convertInstructions(instructions []*pb.CompiledInstruction) []TxInstruction {
	convertedInstructions := make([]TxInstruction, len(instructions))
	for i, instr := range instructions {
		convertedInstructions[i] = TxInstruction{
			ProgramIdIndex: instr.ProgramIdIndex,
			Accounts:       instr.Accounts,
			Data:           instr.Data,
		}
	}
	return convertedInstructions
}

func convertAddressTableLookups(lookups []*pb.MessageAddressTableLookup) []TxAddressTableLookup {
	convertedLookups := make([]TxAddressTableLookup, len(lookups))
	for i, lookup := range lookups {
		convertedLookups[i] = TxAddressTableLookup{
			AccountKey:      base58.Encode(lookup.AccountKey),
			WritableIndexes: lookup.WritableIndexes,
			ReadonlyIndexes: lookup.ReadonlyIndexes,
		}
	}
	return convertedLookups
}

func convertTokenBalances(tokenBalances []*pb.TokenBalance) []types.TxTokenBalance {
	convertedBalances := make([]types.TxTokenBalance, len(tokenBalances))
	for i, balance := range tokenBalances {
		convertedBalances[i] = types.TxTokenBalance{
			Mint:  balance.Mint,
			Owner: balance.Owner,
		}
		if balance.UiTokenAmount != nil {
			convertedBalances[i].Amount = balance.UiTokenAmount.Amount
			convertedBalances[i].Decimal = balance.UiTokenAmount.Decimals
		}
	}
	return convertedBalances
}
