package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/talvik/deskchat/internal/ai"
)

type recordingProvider struct {
	last  []ai.Message
	reply string
	err   error
}

func (p *recordingProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	// copy to avoid mutations
	p.last = append([]ai.Message(nil), messages...)
	if p.err != nil {
		return "", p.err
	}
	if p.reply == "" {
		return "ok", nil
	}
	return p.reply, nil
}

func TestSendTurnPersistsUserAndModelPair(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{}
	svc := NewService(st, prov, nil)

	id := NewChatID()
	res, err := svc.SendTurn(context.Background(), id, "Hello", nil)
	if err != nil {
		t.Fatalf("send turn: %v", err)
	}
	if res.Reply != "ok" {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if res.PersistErr != nil {
		t.Fatalf("unexpected persist error: %v", res.PersistErr)
	}

	turns, err := st.GetHistory(context.Background(), id)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "Hello" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != RoleModel || turns[1].Text != "ok" {
		t.Fatalf("unexpected model turn: %+v", turns[1])
	}

	name, err := st.GetName(context.Background(), id)
	if err != nil {
		t.Fatalf("get name: %v", err)
	}
	if name == nil || *name != "Hello" {
		t.Fatalf("expected name %q, got %v", "Hello", name)
	}
}

func TestSendTurnBuildsOutboundContext(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{}
	svc := NewService(st, prov, nil)

	prior := []Turn{
		{Role: RoleUser, Text: "first"},
		{Role: RoleModel, Text: "reply"},
	}
	id := NewChatID()
	if err := st.UpsertChat(context.Background(), id, strptr("first"), prior); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	if _, err := svc.SendTurn(context.Background(), id, "second", prior); err != nil {
		t.Fatalf("send turn: %v", err)
	}

	if len(prov.last) != 3 {
		t.Fatalf("expected provider to receive 3 messages, got %d", len(prov.last))
	}
	newest := prov.last[len(prov.last)-1]
	if newest.Role != ai.RoleUser || newest.Content != "second" {
		t.Fatalf("expected newest message to be the new user turn, got %+v", newest)
	}
	if prov.last[0].Content != "first" || prov.last[1].Content != "reply" {
		t.Fatalf("prior history not forwarded in order: %+v", prov.last)
	}
}

func TestSendTurnNameTruncation(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{}
	svc := NewService(st, prov, nil)

	msg := "Hello there, how's it going today my friend?"
	id := NewChatID()
	if _, err := svc.SendTurn(context.Background(), id, msg, nil); err != nil {
		t.Fatalf("send turn: %v", err)
	}

	name, err := st.GetName(context.Background(), id)
	if err != nil {
		t.Fatalf("get name: %v", err)
	}
	want := string([]rune(msg)[:40]) + "..."
	if name == nil || *name != want {
		t.Fatalf("expected name %q, got %v", want, name)
	}
}

func TestDeriveNameBoundary(t *testing.T) {
	exact := strings.Repeat("a", 40)
	if got := DeriveName(exact); got != exact {
		t.Fatalf("exactly-40 message must not get an ellipsis, got %q", got)
	}

	over := strings.Repeat("a", 41)
	if got := DeriveName(over); got != strings.Repeat("a", 40)+"..." {
		t.Fatalf("41-char message must be truncated with ellipsis, got %q", got)
	}

	if got := DeriveName("short"); got != "short" {
		t.Fatalf("short message must be kept verbatim, got %q", got)
	}
}

func TestSecondSendTurnKeepsName(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{}
	svc := NewService(st, prov, nil)

	id := NewChatID()
	if _, err := svc.SendTurn(context.Background(), id, "original name source", nil); err != nil {
		t.Fatalf("first send: %v", err)
	}

	prior, err := st.GetHistory(context.Background(), id)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if _, err := svc.SendTurn(context.Background(), id, "a completely different message", prior); err != nil {
		t.Fatalf("second send: %v", err)
	}

	name, err := st.GetName(context.Background(), id)
	if err != nil {
		t.Fatalf("get name: %v", err)
	}
	if name == nil || *name != "original name source" {
		t.Fatalf("name changed after second exchange: %v", name)
	}

	turns, err := st.GetHistory(context.Background(), id)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns after two exchanges, got %d", len(turns))
	}
}

func TestSendTurnRemoteFailureWritesNothing(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{err: errors.New("connection refused")}
	svc := NewService(st, prov, nil)

	id := NewChatID()
	_, err := svc.SendTurn(context.Background(), id, "Hello", nil)
	if err == nil {
		t.Fatalf("expected error from remote failure")
	}

	// no partial write: the chat must not exist at all
	turns, err := st.GetHistory(context.Background(), id)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected no persisted turns after remote failure, got %d", len(turns))
	}
	chats, err := st.ListChats(context.Background())
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no chat row after remote failure, got %d", len(chats))
	}
}

func TestSendTurnEmptyReplyIsAnError(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{reply: "   \n"}
	svc := NewService(st, prov, nil)

	id := NewChatID()
	_, err := svc.SendTurn(context.Background(), id, "Hello", nil)
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}

	chats, err := st.ListChats(context.Background())
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected nothing persisted for empty reply, got %d chats", len(chats))
	}
}

// The exchange still reports its reply when the persistence write fails; the
// failure is carried separately in PersistErr instead of being swallowed.
func TestSendTurnReturnsReplyWhenPersistFails(t *testing.T) {
	st := openTestStore(t)
	prov := &recordingProvider{reply: "still here"}
	svc := NewService(st, prov, nil)

	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	res, err := svc.SendTurn(context.Background(), NewChatID(), "Hello", nil)
	if err != nil {
		t.Fatalf("exchange itself must not fail: %v", err)
	}
	if res.Reply != "still here" {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}
	if !errors.Is(res.PersistErr, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable persist error, got %v", res.PersistErr)
	}
}
