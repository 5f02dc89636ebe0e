package proofclient

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renegade-fi/wallet-engine/statement"
)

const (
	jobCompletedStatus = "completed"
	jobFailedStatus    = "failed"
	pollingInterval    = 1 * time.Second
	jobTimeout         = 45 * time.Second
)

// CircuitKind names one of the engine's settlement circuits, tagging a
// ProofJob's payload the way a protobuf oneof tags its variant.
type CircuitKind string

const (
	CircuitValidWalletCreate              CircuitKind = "valid-wallet-create"
	CircuitValidWalletUpdate              CircuitKind = "valid-wallet-update"
	CircuitValidMatchSettle               CircuitKind = "valid-match-settle"
	CircuitValidMatchSettleAtomic         CircuitKind = "valid-match-settle-atomic"
	CircuitValidMalleableMatchSettleAtomic CircuitKind = "valid-malleable-match-settle-atomic"
	CircuitValidOfflineFeeSettlement      CircuitKind = "valid-offline-fee-settlement"
	CircuitValidRelayerFeeSettlement      CircuitKind = "valid-relayer-fee-settlement"
	CircuitValidFeeRedemption             CircuitKind = "valid-fee-redemption"
)

// ProofJobPayload is implemented by one (statement, witness) wrapper per
// circuit kind. The unexported circuitKind method keeps this a closed set,
// the same closed-variant shape a protobuf oneof enforces, without needing
// Go generics over the statement package's per-circuit statement/witness
// pairs (a generic ProofJob[S, W] cannot itself satisfy a single non-generic
// interface method set, which is what Client.Enqueue needs to dispatch on).
type ProofJobPayload interface {
	circuitKind() CircuitKind
}

// ValidWalletCreatePayload wraps the witness/statement pair for a newWallet proof.
type ValidWalletCreatePayload struct {
	Statement statement.WalletCreateStatement
	Witness   statement.WalletCreateWitness
}

func (ValidWalletCreatePayload) circuitKind() CircuitKind { return CircuitValidWalletCreate }

// ValidWalletUpdatePayload wraps the witness/statement pair for an updateWallet proof.
type ValidWalletUpdatePayload struct {
	Statement statement.WalletUpdateStatement
	Witness   statement.WalletUpdateWitness
}

func (ValidWalletUpdatePayload) circuitKind() CircuitKind { return CircuitValidWalletUpdate }

// ValidMatchSettlePayload wraps the witness/statement pair for a two-party match proof.
type ValidMatchSettlePayload struct {
	Statement statement.MatchSettleStatement
	Witness   statement.MatchSettleWitness
}

func (ValidMatchSettlePayload) circuitKind() CircuitKind { return CircuitValidMatchSettle }

// ValidMatchSettleAtomicPayload wraps the witness/statement pair for a fixed-size atomic match proof.
type ValidMatchSettleAtomicPayload struct {
	Statement statement.MatchSettleAtomicStatement
	Witness   statement.MatchSettleAtomicWitness
}

func (ValidMatchSettleAtomicPayload) circuitKind() CircuitKind { return CircuitValidMatchSettleAtomic }

// ValidMalleableMatchSettleAtomicPayload wraps the witness/statement pair for a malleable atomic match proof.
type ValidMalleableMatchSettleAtomicPayload struct {
	Statement statement.MatchSettleMalleableAtomicStatement
	Witness   statement.MatchSettleMalleableAtomicWitness
}

func (ValidMalleableMatchSettleAtomicPayload) circuitKind() CircuitKind {
	return CircuitValidMalleableMatchSettleAtomic
}

// ValidOfflineFeeSettlementPayload wraps the witness/statement pair for an offline fee payment proof.
type ValidOfflineFeeSettlementPayload struct {
	Statement statement.OfflineFeeSettlementStatement
	Witness   statement.OfflineFeeSettlementWitness
}

func (ValidOfflineFeeSettlementPayload) circuitKind() CircuitKind {
	return CircuitValidOfflineFeeSettlement
}

// ValidRelayerFeeSettlementPayload wraps the witness/statement pair for an online relayer fee payment proof.
type ValidRelayerFeeSettlementPayload struct {
	Statement statement.RelayerFeeSettlementStatement
	Witness   statement.RelayerFeeSettlementWitness
}

func (ValidRelayerFeeSettlementPayload) circuitKind() CircuitKind {
	return CircuitValidRelayerFeeSettlement
}

// ValidFeeRedemptionPayload wraps the witness/statement pair for a fee redemption proof.
type ValidFeeRedemptionPayload struct {
	Statement statement.FeeRedemptionStatement
	Witness   statement.FeeRedemptionWitness
}

func (ValidFeeRedemptionPayload) circuitKind() CircuitKind { return CircuitValidFeeRedemption }

// ProofJob is a request to the proof generation service to produce a bundle
// proving the enclosed (statement, witness) pair.
type ProofJob struct {
	ID      uuid.UUID
	Payload ProofJobPayload
}

// ProofBundle is the proof generation service's response to a completed
// ProofJob: an opaque proof blob alongside the public statement it attests
// to. Actually producing or verifying the proof bytes is out of scope; the
// engine only needs a typed home for the bundle to flow from the proof
// service into a task's submission step.
type ProofBundle struct {
	JobID     uuid.UUID
	Circuit   CircuitKind
	Proof     []byte
	Statement json.RawMessage
}

// jobEnvelope is the wire request body for enqueueing a job.
type jobEnvelope struct {
	ID      uuid.UUID       `json:"id"`
	Circuit CircuitKind     `json:"circuit"`
	Payload json.RawMessage `json:"payload"`
}

// jobStatusResponse is the wire response body for polling a job's status.
type jobStatusResponse struct {
	Status string      `json:"status"`
	Bundle ProofBundle `json:"bundle"`
	Error  string      `json:"error"`
}

// Enqueuer is the subset of Client's surface every task depends on:
// submitting a proof job and awaiting its bundle. Satisfied by both the real
// HTTP-backed Client and FakeClient, mirroring the split between
// contractclient's EthClient and FakeClient.
type Enqueuer interface {
	Enqueue(job ProofJob) (<-chan ProofBundleResult, error)
}

// Client is the engine's view of the proof generation service.
type Client struct {
	http *HttpClient
}

var _ Enqueuer = (*Client)(nil)

// NewClient constructs a Client around an HTTP transport to the proof
// generation service at baseURL. The transport carries no auth key, so the
// Client's enqueue and status-polling requests are sent unsigned.
func NewClient(baseURL string) *Client {
	return &Client{http: NewHttpClient(baseURL, nil)}
}

// Enqueue submits job to the proof generation service and returns a channel
// that receives exactly one ProofBundle (or error) once the job completes or
// the await deadline elapses.
func (c *Client) Enqueue(job ProofJob) (<-chan ProofBundleResult, error) {
	payloadBytes, err := json.Marshal(job.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal proof job payload: %w", err)
	}

	envelope := jobEnvelope{
		ID:      job.ID,
		Circuit: job.Payload.circuitKind(),
		Payload: payloadBytes,
	}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.http.PostJSON("/v0/proof-jobs", envelope, &created); err != nil {
		return nil, fmt.Errorf("failed to enqueue proof job: %w", err)
	}

	resultCh := make(chan ProofBundleResult, 1)
	go c.awaitJob(job.ID, resultCh)
	return resultCh, nil
}

// ProofBundleResult is the outcome delivered on Enqueue's result channel.
type ProofBundleResult struct {
	Bundle ProofBundle
	Err    error
}

// awaitJob polls the proof generation service for jobID's status until it
// completes, fails, or the timeout elapses, then pushes exactly one result
// onto resultCh and closes it.
func (c *Client) awaitJob(jobID uuid.UUID, resultCh chan<- ProofBundleResult) {
	defer close(resultCh)

	log.Printf("proofclient: awaiting proof job %s", jobID)
	deadline := time.Now().Add(jobTimeout)
	path := fmt.Sprintf("/v0/proof-jobs/%s", jobID)

	for time.Now().Before(deadline) {
		var status jobStatusResponse
		if err := c.http.GetJSON(path, nil, &status); err != nil {
			resultCh <- ProofBundleResult{Err: err}
			return
		}

		switch strings.ToLower(status.Status) {
		case jobCompletedStatus:
			log.Printf("proofclient: proof job %s completed", jobID)
			resultCh <- ProofBundleResult{Bundle: status.Bundle}
			return
		case jobFailedStatus:
			log.Printf("proofclient: proof job %s failed: %s", jobID, status.Error)
			resultCh <- ProofBundleResult{Err: fmt.Errorf("proof job failed: %s", status.Error)}
			return
		}

		time.Sleep(pollingInterval)
	}

	resultCh <- ProofBundleResult{Err: fmt.Errorf("proof job %s timed out after %v", jobID, jobTimeout)}
}
