package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/rangda/adapters/events"
	"github.com/layer-3/rangda/adapters/keydirectory"
	"github.com/layer-3/rangda/adapters/noncestore"
	"github.com/layer-3/rangda/adapters/scheme"
	"github.com/layer-3/rangda/adapters/tokenizer"
	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/eth"
	"github.com/layer-3/rangda/ports"
	"github.com/layer-3/rangda/service"
	"github.com/layer-3/rangda/transport/http"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	signKey, err := loadSessionKey()
	if err != nil {
		log.Error("failed to load session key", "error", err)
		os.Exit(1)
	}

	wmLogger := watermill.NewStdLogger(false, false)

	// Shared nonce store and cross-instance events need Redis; without it
	// the service runs single-node with in-process equivalents.
	var nonces ports.NonceStore
	var publisher message.Publisher
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			log.Error("failed to create redis publisher", "error", err)
			os.Exit(1)
		}

		nonces = noncestore.NewRedisStore(redisClient)
	} else {
		log.Warn("REDIS_URL not set, using in-process nonce store (single node only)")
		nonces = noncestore.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	var directory ports.KeyDirectory
	registryAddr := os.Getenv("REGISTRY_CONTRACT")
	if rpcURL := os.Getenv("REGISTRY_RPC_URL"); rpcURL != "" && registryAddr != "" {
		client, err := ethclient.Dial(rpcURL)
		if err != nil {
			log.Error("failed to dial registry rpc", "error", err)
			os.Exit(1)
		}
		directory, err = keydirectory.NewRegistryDirectory(client, common.HexToAddress(registryAddr))
		if err != nil {
			log.Error("failed to create registry directory", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("registry not configured, verification relies on the default-key path")
		directory = keydirectory.NewStaticDirectory()
	}

	chainID := int64(1)
	if raw := os.Getenv("CHAIN_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			chainID = parsed
		}
	}
	domain := eth.EIP712Domain{
		Name:              "Rangda",
		Version:           "1",
		ChainID:           big.NewInt(chainID),
		VerifyingContract: common.HexToAddress(registryAddr),
	}

	personal := scheme.NewPersonalScheme()
	wallets := map[core.WalletType]service.WalletCapability{
		core.WalletTypeMetaMask:      {Scheme: personal, DefaultKeyFallback: true},
		core.WalletTypeWalletConnect: {Scheme: personal, DefaultKeyFallback: true},
		core.WalletTypeDApp:          {Scheme: scheme.NewTypedScheme(domain), DefaultKeyFallback: false},
	}

	authService := service.NewAuthService(
		nonces,
		directory,
		tokenizer.NewJWTTokenizer(signKey),
		events.NewWatermillPublisher(publisher),
		wallets,
		log,
	)

	router := http.SetupRouter(authService)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	log.Info("starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// loadSessionKey reads the ES256 signing key from SESSION_KEY_FILE, or
// generates an ephemeral one. Ephemeral keys invalidate all outstanding
// credentials on restart, so they are only suitable for development.
func loadSessionKey() (*ecdsa.PrivateKey, error) {
	path := os.Getenv("SESSION_KEY_FILE")
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC key: %w", err)
	}
	return key, nil
}
