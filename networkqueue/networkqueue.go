// Package networkqueue models the fire-and-forget gossip channel a task uses
// to announce completed proof bundles and wallet updates to the rest of the
// cluster: a send that nobody has to acknowledge. Actually operating a gossip
// network is out of scope; the engine only needs a typed queue interface and
// a broadcast transport, implemented as a websocket hub fanning updates out
// to subscribers.
package networkqueue

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/renegade-fi/wallet-engine/wallet"
)

// MessageKind tags the payload carried by a gossip message.
type MessageKind string

const (
	// MessageKindWalletUpdate announces a wallet's new blinded public share
	// once a task has durably persisted it.
	MessageKindWalletUpdate MessageKind = "wallet-update"
	// MessageKindProofBundle announces a newly generated proof bundle's
	// circuit kind and the task it belongs to, without the bundle itself
	// (proof payloads are the proofclient package's concern).
	MessageKindProofBundle MessageKind = "proof-bundle"
)

// Message is a single gossip announcement.
type Message struct {
	Kind     MessageKind     `json:"kind"`
	WalletID uuid.UUID       `json:"wallet_id"`
	TaskID   uuid.UUID       `json:"task_id"`
	Payload  json.RawMessage `json:"payload"`
}

// WalletUpdatePayload is the Payload carried by a MessageKindWalletUpdate message.
type WalletUpdatePayload struct {
	BlindedPublicShares wallet.WalletShare `json:"blinded_public_shares"`
	Blinder             wallet.Scalar      `json:"blinder"`
}

// Queue is the fire-and-forget gossip transport a task publishes updates to.
// Publish never blocks on a subscriber's behalf and never returns delivery
// confirmation.
type Queue interface {
	Publish(msg Message)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Hub is a Queue backed by a websocket broadcast fan-out: every connected
// subscriber receives every published message, with no replay for
// subscribers that join late. A subscriber that stalls past its write
// deadline is dropped rather than backpressuring the rest.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan Message
	mutex     sync.Mutex
}

// NewHub constructs a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan Message, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast channel and fans each message out to every
// currently-connected client, dropping (and disconnecting) any client whose
// write stalls past the deadline. Run blocks and is meant to be started in
// its own goroutine for the lifetime of the process.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		encoded, err := json.Marshal(msg)
		if err != nil {
			log.Printf("networkqueue: failed to encode message: %v", err)
			continue
		}

		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, encoded); err != nil {
				log.Printf("networkqueue: write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Publish enqueues msg for broadcast to every connected subscriber. If the
// broadcast buffer is full the message is dropped rather than waited on.
func (h *Hub) Publish(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("networkqueue: broadcast buffer full, dropping %s message", msg.Kind)
	}
}

// Subscribe upgrades an incoming HTTP request to a websocket connection and
// registers it as a broadcast recipient. It is a plain http.HandlerFunc
// rather than a gin.Context handler since the engine does not carry gin as a
// dependency; callers wire it into whatever router they use.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("networkqueue: failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

var _ Queue = (*Hub)(nil)
