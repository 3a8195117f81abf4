package service

import (
	"context"
	"testing"
	"time"

	"github.com/balcaohq/platform/internal/model"
)

func TestComputeInsightsEmptyDataset(t *testing.T) {
	got := ComputeInsights(nil, 0, nil, nil)

	if got.TotalConversations != 0 {
		t.Fatalf("total = %d, want 0", got.TotalConversations)
	}
	if got.AvgFirstResponseMinutes != 0 || got.AvgResolutionMinutes != 0 {
		t.Fatalf("averages must be zero on an empty set, got %v / %v",
			got.AvgFirstResponseMinutes, got.AvgResolutionMinutes)
	}
	if got.TransferRate != 0 {
		t.Fatalf("transfer rate = %v, want 0", got.TransferRate)
	}
	for _, status := range []model.ConversationStatus{model.StatusOpen, model.StatusInProgress, model.StatusClosed} {
		if got.ByStatus[status] != 0 {
			t.Fatalf("by_status[%s] = %d, want 0", status, got.ByStatus[status])
		}
	}
	if len(got.ChatsByAgent) != 0 || len(got.ChatsByTeam) != 0 || len(got.ChatsByTag) != 0 {
		t.Fatal("group counts must be empty on an empty set")
	}
}

func TestComputeInsightsAverages(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tenMin := base.Add(10 * time.Minute)
	twentyMin := base.Add(20 * time.Minute)

	convs := []model.Conversation{
		{ID: "c1", Status: model.StatusClosed, CreatedAt: base, FirstResponseAt: &tenMin, ClosedAt: &tenMin},
		{ID: "c2", Status: model.StatusOpen, CreatedAt: base, FirstResponseAt: &twentyMin},
	}

	got := ComputeInsights(convs, 1, nil, nil)

	if got.TotalConversations != 2 {
		t.Fatalf("total = %d, want 2", got.TotalConversations)
	}
	if got.AvgFirstResponseMinutes != 15 {
		t.Fatalf("avg first response = %v, want 15", got.AvgFirstResponseMinutes)
	}
	if got.AvgResolutionMinutes != 10 {
		t.Fatalf("avg resolution = %v, want 10", got.AvgResolutionMinutes)
	}
	if got.TransferRate != 50 {
		t.Fatalf("transfer rate = %v, want 50", got.TransferRate)
	}
	if got.ByStatus[model.StatusClosed] != 1 || got.ByStatus[model.StatusOpen] != 1 {
		t.Fatalf("by_status wrong: %v", got.ByStatus)
	}
}

func TestComputeInsightsGroupCountsStableOrder(t *testing.T) {
	agentA := "agent-a"
	agentB := "agent-b"
	convs := []model.Conversation{
		{ID: "c1", Status: model.StatusOpen, AssignedTo: &agentB},
		{ID: "c2", Status: model.StatusOpen, AssignedTo: &agentB},
		{ID: "c3", Status: model.StatusOpen, AssignedTo: &agentA},
	}

	got := ComputeInsights(convs, 0, nil, nil)

	if len(got.ChatsByAgent) != 2 {
		t.Fatalf("expected 2 agent buckets, got %d", len(got.ChatsByAgent))
	}
	if got.ChatsByAgent[0].Key != agentB || got.ChatsByAgent[0].Count != 2 {
		t.Fatalf("first bucket = %+v, want agent-b x2", got.ChatsByAgent[0])
	}
	if got.ChatsByAgent[1].Key != agentA || got.ChatsByAgent[1].Count != 1 {
		t.Fatalf("second bucket = %+v, want agent-a x1", got.ChatsByAgent[1])
	}
}

func TestComputeInsightsTagLabels(t *testing.T) {
	tags := []model.Tag{{ID: "t1", Name: "billing"}}
	links := []model.ConversationTag{
		{ConversationID: "c1", TagID: "t1"},
		{ConversationID: "c2", TagID: "t1"},
	}
	convs := []model.Conversation{
		{ID: "c1", Status: model.StatusOpen},
		{ID: "c2", Status: model.StatusOpen},
	}

	got := ComputeInsights(convs, 0, tags, links)

	if len(got.ChatsByTag) != 1 {
		t.Fatalf("expected 1 tag bucket, got %d", len(got.ChatsByTag))
	}
	if got.ChatsByTag[0].Label != "billing" || got.ChatsByTag[0].Count != 2 {
		t.Fatalf("tag bucket = %+v", got.ChatsByTag[0])
	}
}

func TestInsightsComputeOverStore(t *testing.T) {
	db := testDB(t)
	feed := &recordingFeed{}
	log := testLogger()
	ctx := context.Background()

	convSvc := NewConversationService(db, feed, log)
	conv := createConversation(t, convSvc, "user-1")

	agent := "agent-1"
	transferSvc := NewTransferService(db, feed, log)
	if _, err := transferSvc.Transfer(ctx, "agent-0", conv.ID, &model.TransferRequest{ToAgentID: &agent}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	got, err := NewInsightsService(db, log).Compute(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got.TotalConversations != 1 {
		t.Fatalf("total = %d, want 1", got.TotalConversations)
	}
	if got.TransferRate != 100 {
		t.Fatalf("transfer rate = %v, want 100", got.TransferRate)
	}
	if len(got.ChatsByAgent) != 1 || got.ChatsByAgent[0].Key != agent {
		t.Fatalf("chats by agent = %+v", got.ChatsByAgent)
	}
}
