package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// recordingFeed captures published change events in memory.
type recordingFeed struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (f *recordingFeed) PublishChange(_ context.Context, evt realtime.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

func (f *recordingFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func createConversation(t *testing.T, svc *ConversationService, requester string) *model.Conversation {
	t.Helper()
	conv, err := svc.Create(context.Background(), requester, &model.CreateConversationRequest{
		Subject: "printer on fire",
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return conv
}

func TestUnauthenticatedWritesRejectedBeforeAnySideEffect(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	convSvc := NewConversationService(db, feed, log)
	if _, err := convSvc.Create(ctx, "", &model.CreateConversationRequest{Subject: "x"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	msgSvc := NewMessageService(db, feed, log)
	if _, err := msgSvc.Send(ctx, "", true, "some-id", &model.SendMessageRequest{Body: "hi"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	bizSvc := NewBusinessService(db, feed, log)
	if _, err := bizSvc.CreateProduct(ctx, "", &model.ProductRequest{Name: "mate"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if feed.count() != 0 {
		t.Fatalf("expected no published events, got %d", feed.count())
	}
	resp, err := convSvc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("expected no conversations persisted, got %d", resp.Total)
	}
}

func TestTransferRequiresExactlyOneDestination(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewTransferService(db, feed, log)

	_, err := svc.Transfer(ctx, "agent-1", conv.ID, &model.TransferRequest{})
	if !errors.Is(err, ErrNoTransferTarget) {
		t.Fatalf("expected ErrNoTransferTarget, got %v", err)
	}

	agent := "agent-2"
	team := "team-1"
	_, err = svc.Transfer(ctx, "agent-1", conv.ID, &model.TransferRequest{ToAgentID: &agent, ToTeamID: &team})
	if !errors.Is(err, ErrAmbiguousTransferTarget) {
		t.Fatalf("expected ErrAmbiguousTransferTarget, got %v", err)
	}

	history, err := svc.History(ctx, conv.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no transfer records after rejected requests, got %d", len(history))
	}
}

func TestTransferReassignsConversationAtomically(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewTransferService(db, feed, log)

	agent := "agent-2"
	transfer, err := svc.Transfer(ctx, "agent-1", conv.ID, &model.TransferRequest{ToAgentID: &agent, Reason: "escalation"})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transfer.FromAgentID != "agent-1" {
		t.Fatalf("expected from agent-1, got %s", transfer.FromAgentID)
	}

	got, err := db.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != agent {
		t.Fatalf("expected conversation assigned to %s, got %v", agent, got.AssignedTo)
	}
}

func TestTransferToMissingConversationLeavesNoRecord(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	svc := NewTransferService(db, feed, testLogger())
	ctx := context.Background()

	agent := "agent-2"
	_, err := svc.Transfer(ctx, "agent-1", "no-such-conversation", &model.TransferRequest{ToAgentID: &agent})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, err := svc.History(ctx, "no-such-conversation")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("transfer record leaked through rollback: %d rows", len(history))
	}
}

func TestTransferToTeamClearsAgentAssignment(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	convSvc := NewConversationService(db, feed, log)
	conv := createConversation(t, convSvc, "user-1")

	agent := "agent-1"
	if _, err := convSvc.Update(ctx, "supervisor-1", conv.ID, &model.UpdateConversationRequest{AssignedTo: &agent}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	team := "team-9"
	svc := NewTransferService(db, feed, log)
	if _, err := svc.Transfer(ctx, agent, conv.ID, &model.TransferRequest{ToTeamID: &team}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	got, err := db.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != team {
		t.Fatalf("expected team %s, got %v", team, got.TeamID)
	}
	if got.AssignedTo != nil {
		t.Fatalf("expected agent assignment cleared, got %v", *got.AssignedTo)
	}
}

func TestStaffMessageMarksFirstResponseOnce(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewMessageService(db, feed, log)

	if _, err := svc.Send(ctx, "user-1", false, conv.ID, &model.SendMessageRequest{Body: "help"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, _ := db.GetConversation(ctx, conv.ID)
	if got.FirstResponseAt != nil {
		t.Fatal("requester message must not mark first response")
	}

	if _, err := svc.Send(ctx, "agent-1", true, conv.ID, &model.SendMessageRequest{Body: "on it"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, _ = db.GetConversation(ctx, conv.ID)
	if got.FirstResponseAt == nil {
		t.Fatal("staff message must mark first response")
	}
	first := *got.FirstResponseAt

	if _, err := svc.Send(ctx, "agent-2", true, conv.ID, &model.SendMessageRequest{Body: "me too"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	got, _ = db.GetConversation(ctx, conv.ID)
	if !got.FirstResponseAt.Equal(first) {
		t.Fatal("first response timestamp must not move on later staff messages")
	}
}

func TestMessageEventsScopedToConversation(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewMessageService(db, feed, log)

	if _, err := svc.Send(ctx, "user-1", false, conv.ID, &model.SendMessageRequest{Body: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()
	var found bool
	for _, evt := range feed.events {
		if evt.Table == TableMessages {
			found = true
			if evt.Scope != conv.ID {
				t.Fatalf("message event scope = %q, want conversation id", evt.Scope)
			}
			if evt.Type != realtime.EventInsert {
				t.Fatalf("message event type = %q, want insert", evt.Type)
			}
		}
	}
	if !found {
		t.Fatal("no message event published")
	}
}

func TestNotePublishesScopedInsertEvent(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewMessageService(db, feed, log)

	note, err := svc.AddNote(ctx, "agent-1", conv.ID, &model.CreateNoteRequest{Body: "cliente vip"})
	if err != nil {
		t.Fatalf("add note: %v", err)
	}

	feed.mu.Lock()
	defer feed.mu.Unlock()
	var found bool
	for _, evt := range feed.events {
		if evt.Table == TableNotes {
			found = true
			if evt.Scope != conv.ID {
				t.Fatalf("note event scope = %q, want conversation id", evt.Scope)
			}
			if evt.Type != realtime.EventInsert {
				t.Fatalf("note event type = %q, want insert", evt.Type)
			}
			var row model.InternalNote
			if err := json.Unmarshal(evt.Row, &row); err != nil {
				t.Fatalf("decode event row: %v", err)
			}
			if row.ID != note.ID {
				t.Fatalf("event row id = %q, want %q", row.ID, note.ID)
			}
		}
	}
	if !found {
		t.Fatal("no note event published")
	}
}

func TestAccountMutationsLeaveAuditTrail(t *testing.T) {
	db := testDB(t)
	svc := NewAccountService(db, testLogger())
	ctx := context.Background()

	account, err := svc.Create(ctx, "admin-1", &model.AccountRequest{
		UserID:      "user-7",
		Email:       "agent@suporte.example.com",
		AccessLevel: model.AccessSupport,
		Active:      true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, "admin-1", account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, err := svc.AuditLog(ctx, "")
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != model.AuditCreate {
		t.Fatalf("first entry action = %s, want create", entries[0].Action)
	}
	if entries[0].AccountID != model.SentinelAccountID {
		t.Fatalf("create entry account id = %s, want sentinel", entries[0].AccountID)
	}
	if entries[1].Action != model.AuditDelete {
		t.Fatalf("second entry action = %s, want delete", entries[1].Action)
	}
	if entries[1].AccountID != account.ID {
		t.Fatalf("delete entry account id = %s, want %s", entries[1].AccountID, account.ID)
	}
	if len(entries[1].OldValue) == 0 {
		t.Fatal("delete entry must carry the final snapshot")
	}
}

func TestSaleComputesTotalAndDecrementsStock(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	svc := NewBusinessService(db, feed, testLogger())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "owner-1", &model.ProductRequest{
		Name:      "erva mate 1kg",
		SalePrice: 25,
		Stock:     10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	sale, err := svc.CreateSale(ctx, "owner-1", &model.SaleRequest{
		Discount:      5,
		PaymentMethod: model.PaymentPix,
		Items: []model.SaleItemRequest{
			{ProductID: product.ID, Quantity: 3, UnitPrice: 25},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.Total != 70 {
		t.Fatalf("sale total = %v, want 70", sale.Total)
	}

	got, err := svc.GetProduct(ctx, "owner-1", product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 7 {
		t.Fatalf("stock = %d, want 7", got.Stock)
	}
}

func TestSaleRejectedOnInsufficientStock(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	svc := NewBusinessService(db, feed, testLogger())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "owner-1", &model.ProductRequest{
		Name:      "alfajor",
		SalePrice: 8,
		Stock:     2,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.CreateSale(ctx, "owner-1", &model.SaleRequest{
		PaymentMethod: model.PaymentCash,
		Items: []model.SaleItemRequest{
			{ProductID: product.ID, Quantity: 5, UnitPrice: 8},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, err := svc.GetProduct(ctx, "owner-1", product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("stock changed on failed sale: %d", got.Stock)
	}
	sales, err := svc.ListSales(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("sale leaked through rollback: %d rows", len(sales))
	}
}

func TestBusinessRowsScopedToOwner(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	svc := NewBusinessService(db, feed, testLogger())
	ctx := context.Background()

	if _, err := svc.CreateClient(ctx, "owner-1", &model.ClientRequest{Name: "Maria"}); err != nil {
		t.Fatalf("create client: %v", err)
	}

	mine, err := svc.ListClients(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("owner sees %d clients, want 1", len(mine))
	}

	theirs, err := svc.ListClients(ctx, "owner-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("other owner sees %d clients, want 0", len(theirs))
	}
}
