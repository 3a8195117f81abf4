package model

// GroupCount is a single grouped tally in the support insights.
type GroupCount struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// SupportInsights is the full-scan aggregation over the support dataset.
// Averages are arithmetic means in minutes; all values are zero when the
// underlying set is empty.
type SupportInsights struct {
	TotalConversations      int                        `json:"total_conversations"`
	ByStatus                map[ConversationStatus]int `json:"by_status"`
	AvgFirstResponseMinutes float64                    `json:"avg_first_response_minutes"`
	AvgResolutionMinutes    float64                    `json:"avg_resolution_minutes"`
	TransferRate            float64                    `json:"transfer_rate"`
	ChatsByAgent            []GroupCount               `json:"chats_by_agent"`
	ChatsByTeam             []GroupCount               `json:"chats_by_team"`
	ChatsByTag              []GroupCount               `json:"chats_by_tag"`
}
