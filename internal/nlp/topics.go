package nlp

import (
	"fmt"
	"sort"
	"strings"
)

const (
	minKeywordFrequency = 2
	minKeywordRelevance = 0.1
	maxModuleKeywords   = 10
)

// ClusterKeywords ranks vocabulary terms for one cluster by the cluster's
// average feature weight times the global idf, keeping terms that appear
// in at least minKeywordFrequency member titles with sufficient relevance
func ClusterKeywords(analysis *ContentAnalysis, members []int) []string {
	if len(members) == 0 {
		return nil
	}

	avg := make([]float64, len(analysis.Vocabulary))
	freq := make([]int, len(analysis.Vocabulary))
	for _, i := range members {
		for d, v := range analysis.Vectors[i].Values {
			avg[d] += v
			if v > 0 {
				freq[d]++
			}
		}
	}
	for d := range avg {
		avg[d] /= float64(len(members))
	}

	type scored struct {
		term  string
		score float64
	}
	var candidates []scored
	for d, term := range analysis.Vocabulary {
		score := avg[d] * analysis.IDF[d]
		if freq[d] < minKeywordFrequency || score < minKeywordRelevance {
			continue
		}
		candidates = append(candidates, scored{term: term, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].term < candidates[j].term
	})

	keywords := make([]string, 0, min(len(candidates), maxModuleKeywords))
	for _, c := range candidates {
		keywords = append(keywords, c.term)
		if len(keywords) == maxModuleKeywords {
			break
		}
	}
	return keywords
}

// ModuleTitle derives a display title from cluster keywords. With no
// keywords the module is labelled Miscellaneous
func ModuleTitle(keywords []string) string {
	if len(keywords) == 0 {
		return "Miscellaneous"
	}
	primary := capitalize(keywords[0])
	if len(keywords) > 1 {
		return fmt.Sprintf("%s and %s", primary, keywords[1])
	}
	return primary
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
