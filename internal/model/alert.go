package model

// Alert is the queue payload produced by the monitors and consumed by the
// notifier. SourceType is "twitter", "rss" or "news"; Kind mirrors the
// relevance verdict that produced it.
type Alert struct {
	SourceType    string        `json:"source_type"`
	Kind          RelevanceType `json:"kind"`
	ItemID        string        `json:"item_id"` // tweet id or rss item id
	SourceHandle  string        `json:"source_handle,omitempty"`
	SourceName    string        `json:"source_name,omitempty"`
	Headline      string        `json:"headline"`
	Link          string        `json:"link,omitempty"`
	Category      Category      `json:"category"`
	FollowerCount int           `json:"follower_count,omitempty"`
	Likes         int           `json:"likes,omitempty"`
	Suggested     string        `json:"suggested"`
	Urgency       string        `json:"urgency"` // "high" or "normal"
}
