package nlp

import "sort"

// BalancerConfig bounds module sizes during duration balancing
type BalancerConfig struct {
	MaxModuleDuration  int64 // seconds
	MinVideosPerModule int
}

// DefaultBalancerConfig returns the standard balancing limits
func DefaultBalancerConfig() BalancerConfig {
	return BalancerConfig{
		MaxModuleDuration:  3 * 60 * 60,
		MinVideosPerModule: 2,
	}
}

// Balance reshapes clusters so module durations stay within bounds.
// Oversized clusters are split at their weakest internal similarity link;
// undersized clusters merge into their most similar neighbour when the
// combined duration stays within the limit. Original video ordering is
// preserved within every resulting cluster
func Balance(analysis *ContentAnalysis, clusters []Cluster, durations []int64, config BalancerConfig) ([]Cluster, error) {
	if err := validateDurations(clusters, durations); err != nil {
		return nil, err
	}

	groups := make([][]int, 0, len(clusters))
	for _, cluster := range clusters {
		members := append([]int(nil), cluster.Members...)
		sort.Ints(members)
		groups = append(groups, members)
	}

	// Split pass
	var split [][]int
	for _, members := range groups {
		split = append(split, splitOversized(analysis, members, durations, config.MaxModuleDuration)...)
	}

	// Merge pass
	merged := mergeUndersized(analysis, split, durations, config)

	result := make([]Cluster, 0, len(merged))
	for _, members := range merged {
		result = append(result, Cluster{
			Members:         members,
			SimilarityScore: intraClusterSimilarity(analysis, members),
		})
	}
	return result, nil
}

// GroupDuration sums the durations of the given video indices
func GroupDuration(members []int, durations []int64) int64 {
	var total int64
	for _, i := range members {
		total += durations[i]
	}
	return total
}

func validateDurations(clusters []Cluster, durations []int64) error {
	invalid := 0
	for _, cluster := range clusters {
		for _, i := range cluster.Members {
			if i >= len(durations) || durations[i] < 0 {
				invalid++
			}
		}
	}
	if invalid > 0 {
		return &InvalidDurationsError{Count: invalid}
	}
	return nil
}

// splitOversized recursively halves a member list at its weakest adjacent
// similarity link until every part fits the duration limit
func splitOversized(analysis *ContentAnalysis, members []int, durations []int64, maxDuration int64) [][]int {
	if len(members) < 2 || GroupDuration(members, durations) <= maxDuration {
		return [][]int{members}
	}

	weakest := 1
	weakestSim := 2.0
	for i := 1; i < len(members); i++ {
		sim := CosineSimilarity(analysis.Vectors[members[i-1]], analysis.Vectors[members[i]])
		if sim < weakestSim {
			weakestSim = sim
			weakest = i
		}
	}

	var result [][]int
	result = append(result, splitOversized(analysis, members[:weakest], durations, maxDuration)...)
	result = append(result, splitOversized(analysis, members[weakest:], durations, maxDuration)...)
	return result
}

// mergeUndersized folds clusters with too few videos into their most
// similar adjacent cluster when the merged duration stays within bounds
func mergeUndersized(analysis *ContentAnalysis, groups [][]int, durations []int64, config BalancerConfig) [][]int {
	merged := true
	for merged {
		merged = false
		for i := 0; i < len(groups); i++ {
			if len(groups[i]) >= config.MinVideosPerModule {
				continue
			}

			target := -1
			targetSim := -1.0
			for _, j := range []int{i - 1, i + 1} {
				if j < 0 || j >= len(groups) {
					continue
				}
				combined := GroupDuration(groups[i], durations) + GroupDuration(groups[j], durations)
				if combined > config.MaxModuleDuration {
					continue
				}
				sim := groupSimilarity(analysis, groups[i], groups[j])
				if sim > targetSim {
					targetSim = sim
					target = j
				}
			}
			if target < 0 {
				continue
			}

			combined := append(append([]int(nil), groups[i]...), groups[target]...)
			sort.Ints(combined)
			lo := min(i, target)
			groups[lo] = combined
			groups = append(groups[:lo+1], groups[max(i, target)+1:]...)
			merged = true
			break
		}
	}
	return groups
}

func groupSimilarity(analysis *ContentAnalysis, a, b []int) float64 {
	var sum float64
	var n int
	for _, i := range a {
		for _, j := range b {
			sum += CosineSimilarity(analysis.Vectors[i], analysis.Vectors[j])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
