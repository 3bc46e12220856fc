package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/generators"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"go.uber.org/zap"
)

type SlotNotification struct {
	Slot   uint64 `json:"slot"`
	Parent uint64 `json:"parent"`
	Root   uint64 `json:"root"`
}

type AccountNotification struct {
	Account  solana.PublicKey
	Slot     uint64
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

type wsNotification struct {
	Result       json.RawMessage `json:"result"`
	Subscription uint64          `json:"subscription"`
}

type wsMessage struct {
	ID     *int            `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Method string          `json:"method"`
	Params *wsNotification `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type accountValue struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value struct {
		Data     []string `json:"data"`
		Lamports uint64   `json:"lamports"`
		Owner    string   `json:"owner"`
	} `json:"value"`
}

type handler func(result json.RawMessage)

// WsRpc multiplexes pubsub subscriptions over one websocket connection.
type WsRpc struct {
	wsClient *generators.WSClient
	logger   *zap.Logger
	mutex    sync.Mutex
	nextID   int
	pending  map[int]handler
	active   map[uint64]handler
	closed   chan struct{}
}

func NewWsRpc(url string, logger *zap.Logger) (*WsRpc, error) {
	wsClient, err := generators.NewWSClient(url, "", logger)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w: %w", url, types.ErrConnectionFailure, err)
	}

	w := &WsRpc{
		wsClient: wsClient,
		logger:   logger,
		pending:  make(map[int]handler),
		active:   make(map[uint64]handler),
		closed:   make(chan struct{}),
	}

	messages := make(chan []byte)
	go wsClient.ReadMessages(messages)
	go w.dispatch(messages)

	return w, nil
}

// Done is closed once the connection stops delivering messages.
func (w *WsRpc) Done() <-chan struct{} {
	return w.closed
}

func (w *WsRpc) Close() error {
	return w.wsClient.Close()
}

func (w *WsRpc) subscribe(method string, params []interface{}, h handler) error {
	w.mutex.Lock()
	w.nextID++
	id := w.nextID
	w.pending[id] = h
	w.mutex.Unlock()

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		request["params"] = params
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return err
	}

	if err := w.wsClient.SendMessage(requestData); err != nil {
		w.mutex.Lock()
		delete(w.pending, id)
		w.mutex.Unlock()
		return fmt.Errorf("%s: %w: %w", method, types.ErrConnectionFailure, err)
	}
	return nil
}

func (w *WsRpc) SubscribeToAccount(account solana.PublicKey, accountChan chan<- AccountNotification) error {
	params := []interface{}{
		account.String(),
		map[string]interface{}{
			"encoding":   "base64",
			"commitment": "confirmed",
		},
	}

	return w.subscribe("accountSubscribe", params, func(result json.RawMessage) {
		var value accountValue
		if err := json.Unmarshal(result, &value); err != nil {
			w.logger.Warn("malformed account notification", zap.Error(err))
			return
		}

		notification := AccountNotification{
			Account:  account,
			Slot:     value.Context.Slot,
			Lamports: value.Value.Lamports,
		}
		if owner, err := solana.PublicKeyFromBase58(value.Value.Owner); err == nil {
			notification.Owner = owner
		}
		if len(value.Value.Data) > 0 {
			data, err := base64.StdEncoding.DecodeString(value.Value.Data[0])
			if err != nil {
				w.logger.Warn("account notification data is not base64", zap.Error(err))
				return
			}
			notification.Data = data
		}

		accountChan <- notification
	})
}

func (w *WsRpc) SubscribeToSlot(slotChan chan<- SlotNotification) error {
	return w.subscribe("slotSubscribe", nil, func(result json.RawMessage) {
		var slot SlotNotification
		if err := json.Unmarshal(result, &slot); err != nil {
			w.logger.Warn("malformed slot notification", zap.Error(err))
			return
		}
		slotChan <- slot
	})
}

func (w *WsRpc) dispatch(messages <-chan []byte) {
	defer close(w.closed)

	for message := range messages {
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			w.logger.Warn("failed to unmarshal message", zap.Error(err))
			continue
		}

		if msg.ID != nil {
			w.confirm(*msg.ID, msg)
			continue
		}

		if msg.Params == nil {
			continue
		}

		w.mutex.Lock()
		h, ok := w.active[msg.Params.Subscription]
		w.mutex.Unlock()
		if !ok {
			w.logger.Debug("notification for unknown subscription",
				zap.String("method", msg.Method),
				zap.Uint64("subscription", msg.Params.Subscription))
			continue
		}
		h(msg.Params.Result)
	}
}

func (w *WsRpc) confirm(id int, msg wsMessage) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	h, ok := w.pending[id]
	if !ok {
		return
	}
	delete(w.pending, id)

	if msg.Error != nil {
		w.logger.Error("subscription rejected", zap.Int("id", id), zap.Int("code", msg.Error.Code), zap.String("message", msg.Error.Message))
		return
	}

	var subscription uint64
	if err := json.Unmarshal(msg.Result, &subscription); err != nil {
		w.logger.Error("subscription id is not a number", zap.Int("id", id), zap.ByteString("result", msg.Result))
		return
	}
	w.active[subscription] = h
}
