package models

// ClusteringPreference stores tunable clustering parameters learned from usage
type ClusteringPreference struct {
	ID                  string  `json:"id"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MaxClusters         int     `json:"max_clusters"`
	PreferredAlgorithm  string  `json:"preferred_algorithm"`
	StrategyHint        string  `json:"strategy_hint"`
	ContentWeight       float64 `json:"content_weight"`
	UsageCount          int     `json:"usage_count"`
	UpdatedAt           int64   `json:"updated_at"`
}

// DefaultClusteringPreference returns the baseline clustering configuration
func DefaultClusteringPreference() ClusteringPreference {
	return ClusteringPreference{
		SimilarityThreshold: 0.6,
		MaxClusters:         10,
		PreferredAlgorithm:  "kmeans",
		StrategyHint:        string(DefaultStrategy),
		ContentWeight:       0.7,
	}
}
