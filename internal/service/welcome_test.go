package service

import (
	"context"
	"testing"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

func TestGreetingRendersName(t *testing.T) {
	db := testDB(t)
	svc := NewWelcomeService(db, testLogger())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "admin-1", &model.WelcomeMessageRequest{
		Template: "Olá {{name}}, em que posso ajudar?",
		Active:   true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Greeting(ctx, nil, "Maria", time.Now())
	if err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if got != "Olá Maria, em que posso ajudar?" {
		t.Fatalf("greeting = %q", got)
	}
}

func TestGreetingHonorsTimeWindow(t *testing.T) {
	db := testDB(t)
	svc := NewWelcomeService(db, testLogger())
	ctx := context.Background()

	start := "09:00"
	end := "18:00"
	if _, err := svc.Create(ctx, "admin-1", &model.WelcomeMessageRequest{
		Template:  "Bom dia {{name}}",
		Active:    true,
		StartTime: &start,
		EndTime:   &end,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	inside := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got, err := svc.Greeting(ctx, nil, "João", inside)
	if err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if got == "" {
		t.Fatal("expected greeting inside the window")
	}

	outside := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	got, err = svc.Greeting(ctx, nil, "João", outside)
	if err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no greeting outside the window, got %q", got)
	}
}

func TestGreetingSkipsInactiveMessages(t *testing.T) {
	db := testDB(t)
	svc := NewWelcomeService(db, testLogger())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "admin-1", &model.WelcomeMessageRequest{
		Template: "nunca aparece",
		Active:   false,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Greeting(ctx, nil, "Ana", time.Now())
	if err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if got != "" {
		t.Fatalf("inactive message leaked into greeting: %q", got)
	}
}

func TestAttachTagIdempotent(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewTagService(db, log)

	tag, err := svc.Create(ctx, "agent-1", &model.CreateTagRequest{Name: "urgente", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if err := svc.Attach(ctx, "agent-1", conv.ID, tag.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := svc.Attach(ctx, "agent-1", conv.ID, tag.ID); err != nil {
		t.Fatalf("second attach must be a no-op, got %v", err)
	}

	tags, err := svc.ForConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 attached tag, got %d", len(tags))
	}
}

func TestDeleteTagDetachesEverywhere(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	conv := createConversation(t, NewConversationService(db, feed, log), "user-1")
	svc := NewTagService(db, log)

	tag, err := svc.Create(ctx, "agent-1", &model.CreateTagRequest{Name: "fiscal", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := svc.Attach(ctx, "agent-1", conv.ID, tag.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := svc.Delete(ctx, "agent-1", tag.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tags, err := svc.ForConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("deleted tag still attached: %d", len(tags))
	}
}
