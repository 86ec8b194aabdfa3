package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talvik/deskchat/internal/ai"
)

// ErrEmptyReply means the remote call technically succeeded but returned no
// usable text. Treated as an exchange failure: nothing is persisted.
var ErrEmptyReply = errors.New("model returned an empty reply")

// nameRuneLimit caps derived chat names. Only messages strictly longer than
// the limit get the ellipsis; an exactly-40-rune message is kept verbatim.
const nameRuneLimit = 40

// DeriveName builds a chat's display name from its first user message.
func DeriveName(message string) string {
	r := []rune(message)
	if len(r) > nameRuneLimit {
		return string(r[:nameRuneLimit]) + "..."
	}
	return message
}

// ExchangeResult reports one completed exchange. PersistErr is non-nil when
// the reply arrived but could not be written to the store: the exchange
// itself still succeeded, and callers that care about durability must check
// it rather than assume the reply was saved.
type ExchangeResult struct {
	Reply      string
	PersistErr error
}

// Service coordinates one turn exchange: build the outbound context, call
// the provider, and on success persist the appended (user, model) pair as a
// unit. A failed remote call writes nothing.
type Service struct {
	store    *Store
	provider ai.Provider
	logger   *slog.Logger
}

func NewService(store *Store, provider ai.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, provider: provider, logger: logger}
}

func (s *Service) SendTurn(ctx context.Context, chatID, message string, prior []Turn) (*ExchangeResult, error) {
	outbound := make([]ai.Message, 0, len(prior)+1)
	for _, t := range prior {
		outbound = append(outbound, ai.Message{Role: t.Role, Content: t.Text})
	}
	outbound = append(outbound, ai.Message{Role: ai.RoleUser, Content: message})

	reply, err := s.provider.Chat(ctx, outbound)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyReply
	}

	updated := make([]Turn, 0, len(prior)+2)
	updated = append(updated, prior...)
	updated = append(updated,
		Turn{Role: RoleUser, Text: message},
		Turn{Role: RoleModel, Text: reply},
	)

	res := &ExchangeResult{Reply: reply}

	// Name on first exchange only; later exchanges carry the stored name
	// forward unchanged.
	var name *string
	if len(prior) == 0 {
		n := DeriveName(message)
		name = &n
	} else {
		name, err = s.store.GetName(ctx, chatID)
		if err != nil {
			// Upserting without the name would erase it, so skip the write
			// entirely and report the reply as not persisted.
			s.logger.Error("could not read chat name, skipping persist",
				"chat_id", chatID, "error", err)
			res.PersistErr = err
			return res, nil
		}
	}

	if err := s.store.UpsertChat(ctx, chatID, name, updated); err != nil {
		s.logger.Error("failed to persist exchange",
			"chat_id", chatID, "error", err)
		res.PersistErr = err
	}
	return res, nil
}
