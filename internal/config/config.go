package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

const (
	NetworkDevnet  = "devnet"
	NetworkTestnet = "testnet"

	SubmitRouteRPC  = "rpc"
	SubmitRouteJito = "jito"
)

type Network struct {
	RpcHttpUrl         string
	RpcWsUrl           string
	PriceOracleAccount solana.PublicKey
}

// Networks holds the public endpoints and BTC/USD Pyth price account per cluster.
var Networks = map[string]Network{
	NetworkDevnet: {
		RpcHttpUrl:         "https://api.devnet.solana.com",
		RpcWsUrl:           "wss://api.devnet.solana.com",
		PriceOracleAccount: solana.MustPublicKeyFromBase58("HovQMDrbAgAYPCmHVSrezcSmkMtXSSUsLDFANExrZh2J"),
	},
	NetworkTestnet: {
		RpcHttpUrl:         "https://api.testnet.solana.com",
		RpcWsUrl:           "wss://api.testnet.solana.com",
		PriceOracleAccount: solana.MustPublicKeyFromBase58("DJW6f4ZVqCnpYNN9rNuzqUcCvkVtBgixo8mq9FKSsCbJ"),
	},
}

type GrpcConfig struct {
	Addr               string
	Token              string
	InsecureConnection bool
}

type Config struct {
	Network            string
	RpcHttpUrl         string
	RpcWsUrl           string
	ProgramID          solana.PublicKey
	UsdTokenMint       solana.PublicKey
	MarketAccount      solana.PublicKey
	PriceOracleAccount solana.PublicKey
	Payer              solana.PrivateKey
	SubmitRoute        string
	BlockEngineUrl     string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTL        time.Duration
	Grpc               GrpcConfig
	ComputeUnitLimit   uint32
	ComputeUnitPrice   uint64
	Port               int
	LogLevel           string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Network:       valueOr(getenv("NETWORK"), NetworkDevnet),
		SubmitRoute:   valueOr(getenv("SUBMIT_ROUTE"), SubmitRouteRPC),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		LogLevel:      valueOr(getenv("LOG_LEVEL"), "info"),
		Grpc: GrpcConfig{
			Addr:               getenv("GRPC_ENDPOINT"),
			Token:              getenv("GRPC_TOKEN"),
			InsecureConnection: getenv("GRPC_INSECURE") == "true",
		},
	}

	network, ok := Networks[cfg.Network]
	if !ok {
		return nil, fmt.Errorf("NETWORK %q is not one of %s, %s", cfg.Network, NetworkDevnet, NetworkTestnet)
	}
	cfg.RpcHttpUrl = valueOr(getenv("RPC_HTTP_URL"), network.RpcHttpUrl)
	cfg.RpcWsUrl = valueOr(getenv("RPC_WS_URL"), network.RpcWsUrl)

	var err error
	if cfg.ProgramID, err = requiredKey(getenv, "BETTING_MARKET_PROGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.UsdTokenMint, err = requiredKey(getenv, "USD_TOKEN_MINT"); err != nil {
		return nil, err
	}
	if cfg.MarketAccount, err = requiredKey(getenv, "BETTING_MARKET_DATA_ACCOUNT"); err != nil {
		return nil, err
	}

	cfg.PriceOracleAccount = network.PriceOracleAccount
	if v := getenv("PRICE_ORACLE_ACCOUNT"); v != "" {
		if cfg.PriceOracleAccount, err = solana.PublicKeyFromBase58(v); err != nil {
			return nil, fmt.Errorf("PRICE_ORACLE_ACCOUNT: %w", err)
		}
	}

	payer := getenv("PAYER_PRIVATE_KEY")
	if payer == "" {
		return nil, errors.New("PAYER_PRIVATE_KEY is required")
	}
	if cfg.Payer, err = solana.PrivateKeyFromBase58(payer); err != nil {
		return nil, fmt.Errorf("PAYER_PRIVATE_KEY: %w", err)
	}

	switch cfg.SubmitRoute {
	case SubmitRouteRPC:
	case SubmitRouteJito:
		cfg.BlockEngineUrl = getenv("BLOCKENGINE_URL")
		if cfg.BlockEngineUrl == "" {
			return nil, errors.New("BLOCKENGINE_URL is required when SUBMIT_ROUTE=jito")
		}
	default:
		return nil, fmt.Errorf("SUBMIT_ROUTE %q is not one of %s, %s", cfg.SubmitRoute, SubmitRouteRPC, SubmitRouteJito)
	}

	if cfg.RedisDB, err = intOr(getenv, "REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Port, err = intOr(getenv, "PORT", 8080); err != nil {
		return nil, err
	}

	cfg.SnapshotTTL = time.Minute
	if v := getenv("SNAPSHOT_TTL"); v != "" {
		if cfg.SnapshotTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("SNAPSHOT_TTL: %w", err)
		}
	}

	if v := getenv("COMPUTE_UNIT_LIMIT"); v != "" {
		units, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("COMPUTE_UNIT_LIMIT: %w", err)
		}
		cfg.ComputeUnitLimit = uint32(units)
	}
	if v := getenv("COMPUTE_UNIT_PRICE"); v != "" {
		if cfg.ComputeUnitPrice, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("COMPUTE_UNIT_PRICE: %w", err)
		}
	}

	return cfg, nil
}

func valueOr(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func requiredKey(getenv func(string) string, name string) (solana.PublicKey, error) {
	v := getenv(name)
	if v == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}

func intOr(getenv func(string) string, name string, fallback int) (int, error) {
	v := getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
