// Package session tracks the single active chat on the client side of the
// boundary: which chat the user is looking at and its in-memory turn
// history. The in-memory history is authoritative only until the next
// successful reconciliation with the store.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/talvik/deskchat/internal/chat"
)

var (
	// ErrNoActiveChat means Send was called before NewChat or LoadChat.
	ErrNoActiveChat = errors.New("no active chat")
	// ErrBusy means a send is already in flight for the active chat. One
	// outstanding exchange at a time; the UI is expected to disable the send
	// affordance, this is the backstop.
	ErrBusy = errors.New("a send is already in flight")
)

type Controller struct {
	exchanges *chat.Service
	store     *chat.Store

	mu           sync.Mutex
	activeChatID string
	history      []chat.Turn
	sending      bool
}

func NewController(exchanges *chat.Service, store *chat.Store) *Controller {
	return &Controller{exchanges: exchanges, store: store}
}

// NewChat mints a speculative chat id and makes it active with an empty
// history. Nothing is persisted until the first successful exchange.
func (c *Controller) NewChat() string {
	id := chat.NewChatID()
	c.mu.Lock()
	c.activeChatID = id
	c.history = nil
	c.mu.Unlock()
	return id
}

// ActiveChat returns the active chat id ("" when none) and a copy of its
// in-memory history.
func (c *Controller) ActiveChat() (string, []chat.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeChatID, append([]chat.Turn(nil), c.history...)
}

// Send exchanges one turn on the active chat. The in-memory history gains
// the (user, model) pair only when the exchange succeeds; on failure it is
// left exactly as it was.
func (c *Controller) Send(ctx context.Context, text string) (*chat.ExchangeResult, error) {
	c.mu.Lock()
	if c.activeChatID == "" {
		c.mu.Unlock()
		return nil, ErrNoActiveChat
	}
	if c.sending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.sending = true
	id := c.activeChatID
	prior := append([]chat.Turn(nil), c.history...)
	c.mu.Unlock()

	res, err := c.exchanges.SendTurn(ctx, id, text, prior)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	if err != nil {
		return nil, err
	}
	// Reconcile only if the user is still on the same chat.
	if c.activeChatID == id {
		c.history = append(prior,
			chat.Turn{Role: chat.RoleUser, Text: text},
			chat.Turn{Role: chat.RoleModel, Text: res.Reply},
		)
	}
	return res, nil
}

// LoadChat replaces the active context with the stored history of id. On a
// load failure the controller falls back to having no active chat.
func (c *Controller) LoadChat(ctx context.Context, id string) ([]chat.Turn, error) {
	turns, err := c.store.GetHistory(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.activeChatID = ""
		c.history = nil
		return nil, err
	}
	c.activeChatID = id
	c.history = turns
	return append([]chat.Turn(nil), turns...), nil
}

// DeleteChat removes id from storage. Deleting the active chat also clears
// the active context; deleting any other chat leaves it untouched.
func (c *Controller) DeleteChat(ctx context.Context, id string) (int64, error) {
	n, err := c.store.DeleteChat(ctx, id)
	if err != nil {
		return n, err
	}
	c.mu.Lock()
	if c.activeChatID == id {
		c.activeChatID = ""
		c.history = nil
	}
	c.mu.Unlock()
	return n, nil
}

// ListChats passes through to the store's recency-ordered summary list.
func (c *Controller) ListChats(ctx context.Context) ([]chat.Summary, error) {
	return c.store.ListChats(ctx)
}
