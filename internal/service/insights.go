package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

// InsightsService computes aggregate support statistics. The computation is
// a full scan over the support dataset; results are derived fresh per call.
type InsightsService struct {
	db     *store.DB
	logger *logger.Logger
}

// NewInsightsService creates a new insights service.
func NewInsightsService(db *store.DB, log *logger.Logger) *InsightsService {
	return &InsightsService{db: db, logger: log}
}

// Compute loads the support dataset and aggregates it.
func (s *InsightsService) Compute(ctx context.Context) (*model.SupportInsights, error) {
	convs, err := s.db.ListConversations(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	transferred, err := s.db.CountTransferredConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}
	tags, err := s.db.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	links, err := s.db.ListAllConversationTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation tags: %w", err)
	}

	return ComputeInsights(convs, transferred, tags, links), nil
}

// ComputeInsights aggregates the given dataset. All fields are zero-valued
// when the conversation set is empty; averages are arithmetic means in
// minutes over the conversations that have the relevant timestamps.
func ComputeInsights(convs []model.Conversation, transferred int, tags []model.Tag, links []model.ConversationTag) *model.SupportInsights {
	insights := &model.SupportInsights{
		TotalConversations: len(convs),
		ByStatus: map[model.ConversationStatus]int{
			model.StatusOpen:       0,
			model.StatusInProgress: 0,
			model.StatusClosed:     0,
		},
		ChatsByAgent: []model.GroupCount{},
		ChatsByTeam:  []model.GroupCount{},
		ChatsByTag:   []model.GroupCount{},
	}

	var (
		firstRespTotal float64
		firstRespCount int
		resolveTotal   float64
		resolveCount   int
		byAgent        = map[string]int{}
		byTeam         = map[string]int{}
	)

	for i := range convs {
		c := &convs[i]
		insights.ByStatus[c.Status]++

		if c.FirstResponseAt != nil {
			firstRespTotal += c.FirstResponseAt.Sub(c.CreatedAt).Minutes()
			firstRespCount++
		}
		if c.ClosedAt != nil {
			resolveTotal += c.ClosedAt.Sub(c.CreatedAt).Minutes()
			resolveCount++
		}
		if c.AssignedTo != nil {
			byAgent[*c.AssignedTo]++
		}
		if c.TeamID != nil {
			byTeam[*c.TeamID]++
		}
	}

	if firstRespCount > 0 {
		insights.AvgFirstResponseMinutes = firstRespTotal / float64(firstRespCount)
	}
	if resolveCount > 0 {
		insights.AvgResolutionMinutes = resolveTotal / float64(resolveCount)
	}
	if len(convs) > 0 {
		insights.TransferRate = float64(transferred) / float64(len(convs)) * 100
	}

	insights.ChatsByAgent = toGroupCounts(byAgent, nil)
	insights.ChatsByTeam = toGroupCounts(byTeam, nil)

	tagNames := make(map[string]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	byTag := map[string]int{}
	for _, l := range links {
		byTag[l.TagID]++
	}
	insights.ChatsByTag = toGroupCounts(byTag, tagNames)

	return insights
}

// toGroupCounts materializes a tally map sorted by count descending, key
// ascending on ties, so the output is stable.
func toGroupCounts(tally map[string]int, labels map[string]string) []model.GroupCount {
	out := make([]model.GroupCount, 0, len(tally))
	for key, count := range tally {
		out = append(out, model.GroupCount{
			Key:   key,
			Label: labels[key],
			Count: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
