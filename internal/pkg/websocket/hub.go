package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/pkg/queue"
)

// ErrHubClosed is returned by Serve once the hub has stopped running
var ErrHubClosed = errors.New("notification hub closed")

// delivery is one encoded notification addressed to one account
type delivery struct {
	recipient models.Recipient
	data      []byte
}

// Hub keeps the live notification streams of connected accounts and pushes
// each new notification to every stream its recipient has open.
type Hub struct {
	// Connected clients organized by recipient
	clients map[models.Recipient]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns; senders on register and unregister give up
	done     chan struct{}
	stopOnce sync.Once

	// Guards clients for readers outside the Run loop
	mu sync.RWMutex

	allowedOrigins map[string]bool
	logger         zerolog.Logger
}

// NewHub creates a Hub. An empty allowedOrigins or one containing "*"
// accepts every origin.
func NewHub(logger zerolog.Logger, allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:        make(map[models.Recipient]map[*Client]bool),
		deliver:        make(chan delivery, 64),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		allowedOrigins: origins,
		logger:         logger,
	}
}

// Run handles registrations and deliveries until ctx is done, then closes
// every open stream.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverMessage(d)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.recipient]; !ok {
		h.clients[client.recipient] = make(map[*Client]bool)
	}
	h.clients[client.recipient][client] = true

	h.logger.Info().
		Str("recipient_type", string(client.recipient.Kind)).
		Int64("recipient_id", client.recipient.ID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Notification stream opened")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.recipient]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.recipient)
	}

	h.logger.Info().
		Str("recipient_type", string(client.recipient.Kind)).
		Int64("recipient_id", client.recipient.ID).
		Msg("Notification stream closed")
}

// deliverMessage hands data to each of the recipient's clients. A client
// whose buffer is full is dropped rather than allowed to stall the hub.
func (h *Hub) deliverMessage(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[d.recipient]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- d.data:
		default:
			h.logger.Warn().
				Int64("recipient_id", d.recipient.ID).
				Msg("Dropping slow notification stream")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Publish queues n for every open stream of its recipient. Accounts without
// an open stream simply miss the push; the notification itself is already
// stored.
func (h *Hub) Publish(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(queue.NewNotificationMessage(n))
	if err != nil {
		return err
	}
	select {
	case h.deliver <- delivery{recipient: n.Recipient, data: data}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientsCount returns how many streams recipient has open
func (h *Hub) ClientsCount(recipient models.Recipient) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipient])
}
