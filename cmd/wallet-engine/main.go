// Command wallet-engine wires together the engine's store, chain, proof, and
// network dependencies and runs the task driver as a long-lived process.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/renegade-fi/wallet-engine/config"
	"github.com/renegade-fi/wallet-engine/contractclient"
	"github.com/renegade-fi/wallet-engine/networkqueue"
	"github.com/renegade-fi/wallet-engine/proofclient"
	"github.com/renegade-fi/wallet-engine/statestore"
	"github.com/renegade-fi/wallet-engine/task"
	"github.com/renegade-fi/wallet-engine/wallet"
)

func main() {
	log.Println("Starting wallet-engine...")

	ctx := context.Background()

	dbURL := requireEnv("DATABASE_URL")
	store, err := statestore.ConnectPostgres(ctx, dbURL, getEnvBool("AUTO_REDEEM_FEES", false), config.FeeKeyPair{})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	signingKey, err := crypto.HexToECDSA(requireEnv("SUBMITTER_PRIVATE_KEY"))
	if err != nil {
		log.Fatalf("failed to parse submitter private key: %v", err)
	}

	chainID, err := strconv.ParseUint(getEnvOrDefault("CHAIN_ID", "421614"), 10, 64)
	if err != nil {
		log.Fatalf("invalid CHAIN_ID: %v", err)
	}

	contract, err := contractclient.NewEthClient(
		ctx,
		requireEnv("RPC_URL"),
		common.HexToAddress(requireEnv("DARKPOOL_ADDRESS")),
		chainID,
		signingKey,
	)
	if err != nil {
		log.Fatalf("failed to connect to rpc: %v", err)
	}

	proofs := proofclient.NewClient(requireEnv("PROOF_SERVICE_URL"))

	queue := networkqueue.NewHub()
	go queue.Run()

	cfg := config.New(
		chainID,
		wallet.FeeEncryptionKey{},
		wallet.ZeroFixedPoint(),
		wallet.ZeroFixedPoint(),
		getEnvBool("AUTO_REDEEM_FEES", false),
	)

	driver := task.NewPersistentDriver(maxConcurrentTasks(), store)

	// Re-enter any task that crashed past its commit point: its transaction
	// already landed, and the local projection must catch up before new work
	// touches the same wallet.
	deps := task.Deps{Cfg: cfg, Store: store, Proofs: proofs, Contract: contract, Network: queue}
	resumed, err := task.ResumeUnfinished(ctx, store, deps)
	if err != nil {
		log.Fatalf("failed to resume persisted tasks: %v", err)
	}
	for _, t := range resumed {
		go func(t task.Task) {
			if err := driver.Run(ctx, t); err != nil {
				log.Printf("resumed task %s failed: %v", t.Name(), err)
			}
		}(t)
	}
	if len(resumed) > 0 {
		log.Printf("resumed %d persisted task(s)", len(resumed))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", queue.Subscribe)

	port := getEnvOrDefault("PORT", "8080")
	log.Printf("wallet-engine listening on :%s", port)

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	// Task submission is driven by whatever enqueues work against driver,
	// store, contract, proofs, queue, and cfg (an RPC/queue intake layer is
	// out of scope here). Block forever so the websocket subscribe endpoint
	// and the driver's background goroutines keep running.
	select {}
}

// maxConcurrentTasks bounds how many tasks the driver may step concurrently.
func maxConcurrentTasks() int64 {
	n, err := strconv.ParseInt(getEnvOrDefault("MAX_CONCURRENT_TASKS", "16"), 10, 64)
	if err != nil || n <= 0 {
		return 16
	}
	return n
}

// requireEnv reads a required environment variable and exits if it is not set.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("required environment variable %s is not set", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a fallback for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
