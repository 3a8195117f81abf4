package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/balcaohq/platform/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newConversation(requester string) *model.Conversation {
	now := time.Now().UTC()
	return &model.Conversation{
		ID:          uuid.Must(uuid.NewV7()).String(),
		RequesterID: requester,
		Subject:     "subject",
		Status:      model.StatusOpen,
		Priority:    model.PriorityNormal,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	first, err := db.Migrate()
	if err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if !first.Changed {
		t.Fatal("first migrate must apply the schema")
	}

	second, err := db.Migrate()
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if second.Changed {
		t.Fatal("second migrate must be a no-op")
	}
	if second.Dirty {
		t.Fatal("schema left dirty")
	}
}

func TestConversationCloseStampsAndReopenClears(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := newConversation("user-1")
	if err := db.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("insert: %v", err)
	}

	closed := model.StatusClosed
	got, err := db.UpdateConversation(ctx, conv.ID, &model.UpdateConversationRequest{Status: &closed})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ClosedAt == nil {
		t.Fatal("closing must stamp closed_at")
	}

	open := model.StatusOpen
	got, err = db.UpdateConversation(ctx, conv.ID, &model.UpdateConversationRequest{Status: &open})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ClosedAt != nil {
		t.Fatal("reopening must clear closed_at")
	}
}

func TestGetConversationNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetConversation(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkFirstResponseOnlyOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := newConversation("user-1")
	if err := db.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("insert: %v", err)
	}

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := db.MarkFirstResponse(ctx, conv.ID, first); err != nil {
		t.Fatalf("mark: %v", err)
	}
	later := first.Add(time.Hour)
	if err := db.MarkFirstResponse(ctx, conv.ID, later); err != nil {
		t.Fatalf("mark again: %v", err)
	}

	got, err := db.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstResponseAt == nil || !got.FirstResponseAt.Equal(first) {
		t.Fatalf("first_response_at = %v, want %v", got.FirstResponseAt, first)
	}
}

func TestListConversationsFiltersByStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	open := newConversation("user-1")
	if err := db.InsertConversation(ctx, open); err != nil {
		t.Fatalf("insert: %v", err)
	}
	closedConv := newConversation("user-2")
	closedConv.Status = model.StatusClosed
	if err := db.InsertConversation(ctx, closedConv); err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := db.ListConversations(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}

	onlyOpen, err := db.ListConversations(ctx, model.StatusOpen)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(onlyOpen) != 1 || onlyOpen[0].ID != open.ID {
		t.Fatalf("open filter returned %d rows", len(onlyOpen))
	}
}

func TestWelcomeMessagesForTeamIncludesGlobals(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	teamID := "team-1"
	teamMsg := &model.WelcomeMessage{
		ID: uuid.Must(uuid.NewV7()).String(), TeamID: &teamID,
		Template: "team greeting", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	globalMsg := &model.WelcomeMessage{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Template: "global greeting", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	otherTeam := "team-2"
	otherMsg := &model.WelcomeMessage{
		ID: uuid.Must(uuid.NewV7()).String(), TeamID: &otherTeam,
		Template: "other team", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	inactive := &model.WelcomeMessage{
		ID: uuid.Must(uuid.NewV7()).String(), TeamID: &teamID,
		Template: "inactive", Active: false, CreatedAt: now, UpdatedAt: now,
	}
	for _, m := range []*model.WelcomeMessage{teamMsg, globalMsg, otherMsg, inactive} {
		if err := db.InsertWelcomeMessage(ctx, m); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	msgs, err := db.ListWelcomeMessagesForTeam(ctx, &teamID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want team row + global row", len(msgs))
	}
	if msgs[0].TeamID == nil {
		t.Fatal("team-specific rows must come before globals")
	}
}

func TestMessagesOrderedOldestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := newConversation("user-1")
	if err := db.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("insert conversation: %v", err)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, body := range []string{"first", "second", "third"} {
		msg := &model.Message{
			ID:             uuid.Must(uuid.NewV7()).String(),
			ConversationID: conv.ID,
			SenderID:       "user-1",
			Body:           body,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.InsertMessage(ctx, msg); err != nil {
			t.Fatalf("insert message: %v", err)
		}
	}

	msgs, err := db.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[0].Body != "first" || msgs[2].Body != "third" {
		t.Fatalf("wrong order: %s .. %s", msgs[0].Body, msgs[2].Body)
	}
}

func TestNoteMentionsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := newConversation("user-1")
	if err := db.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("insert conversation: %v", err)
	}

	note := &model.InternalNote{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conv.ID,
		AuthorID:       "agent-1",
		Body:           "cc supervisors",
		MentionedIDs:   []string{"sup-1", "sup-2"},
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.InsertNote(ctx, note); err != nil {
		t.Fatalf("insert note: %v", err)
	}

	notes, err := db.ListNotes(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes", len(notes))
	}
	if len(notes[0].MentionedIDs) != 2 || notes[0].MentionedIDs[1] != "sup-2" {
		t.Fatalf("mentions = %v", notes[0].MentionedIDs)
	}
}

func TestTransferChatWithoutDestinationFails(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := newConversation("user-1")
	if err := db.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("insert conversation: %v", err)
	}

	err := db.TransferChat(ctx, &model.ChatTransfer{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conv.ID,
		FromAgentID:    "agent-1",
		CreatedAt:      time.Now().UTC(),
	})
	if err == nil {
		t.Fatal("expected error for transfer without a destination")
	}

	transfers, err := db.ListTransfers(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(transfers) != 0 {
		t.Fatalf("got %d transfer rows, want none", len(transfers))
	}
}
