package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

type JitoRequestBody struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type JitoResponseBody struct {
	Jsonrpc string             `json:"jsonrpc"`
	ID      int                `json:"id"`
	Result  json.RawMessage    `json:"result,omitempty"`
	Error   *JitoErrorResponse `json:"error,omitempty"`
}

type JitoErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type JitoClient struct {
	url        string
	httpClient *http.Client
}

func NewJitoClient(blockEngineURL string, httpClient *http.Client) *JitoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JitoClient{
		url:        fmt.Sprintf("%s/api/v1/transactions", strings.TrimRight(blockEngineURL, "/")),
		httpClient: httpClient,
	}
}

func (j *JitoClient) SendTransaction(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error) {
	msg, err := transaction.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("encode transaction: %w", err)
	}

	requestBody := JitoRequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "sendTransaction",
		Params:  []interface{}{base58.Encode(msg)},
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return solana.Signature{}, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err = gzipWriter.Write(reqBody); err != nil {
		return solana.Signature{}, err
	}
	if err = gzipWriter.Close(); err != nil {
		return solana.Signature{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url, &buf)
	if err != nil {
		return solana.Signature{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return solana.Signature{}, connectionError("jito sendTransaction", err)
	}
	defer resp.Body.Close()

	var responseBody JitoResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return solana.Signature{}, connectionError("jito sendTransaction", fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	if responseBody.Error != nil {
		return solana.Signature{}, connectionError("jito sendTransaction",
			fmt.Errorf("code %d: %s", responseBody.Error.Code, responseBody.Error.Message))
	}

	var signature string
	if err := json.Unmarshal(responseBody.Result, &signature); err != nil {
		return solana.Signature{}, connectionError("jito sendTransaction", errors.New("missing signature in result"))
	}

	return solana.SignatureFromBase58(signature)
}
