package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusteringFixture(t *testing.T) *ContentAnalysis {
	t.Helper()

	analysis, err := Analyze([]string{
		"Python Basics Tutorial",
		"Python Functions Tutorial",
		"Python Classes Tutorial",
		"Cooking Pasta Recipe",
		"Cooking Soup Recipe",
		"Cooking Bread Recipe",
	})
	require.NoError(t, err)
	return analysis
}

func TestClusterSeparatesTopics(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	clusters, err := clusterer.Cluster(analysis, 2)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	memberSets := make([]map[int]bool, len(clusters))
	for i, cluster := range clusters {
		memberSets[i] = make(map[int]bool)
		for _, m := range cluster.Members {
			memberSets[i][m] = true
		}
	}

	// Programming titles and cooking titles must not share a cluster
	for _, set := range memberSets {
		if set[0] {
			assert.True(t, set[1] && set[2])
			assert.False(t, set[3] || set[4] || set[5])
		} else {
			assert.True(t, set[3] && set[4] && set[5])
		}
	}
}

func TestClusterDeterminism(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	first, err := clusterer.Cluster(analysis, 3)
	require.NoError(t, err)
	second, err := clusterer.Cluster(analysis, 3)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Members, second[i].Members)
	}
}

func TestClusterClampsK(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	clusters, err := clusterer.Cluster(analysis, 100)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(clusters), len(analysis.Vectors))

	clusters, err = clusterer.Cluster(analysis, 0)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 6)
}

func TestClusterCoversAllDocuments(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	clusters, err := clusterer.Cluster(analysis, 3)
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, cluster := range clusters {
		for _, m := range cluster.Members {
			seen[m]++
		}
	}
	require.Len(t, seen, 6)
	for doc, count := range seen {
		assert.Equal(t, 1, count, "document %d assigned to multiple clusters", doc)
	}
}

func TestSingletonClusterScore(t *testing.T) {
	analysis := clusteringFixture(t)
	score := intraClusterSimilarity(analysis, []int{0})
	assert.Equal(t, 1.0, score)
}

func TestQualityScoreFavorsCleanSplit(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	clusters, err := clusterer.Cluster(analysis, 2)
	require.NoError(t, err)

	quality := QualityScore(analysis, clusters)
	assert.Greater(t, quality, 0.0)

	silhouette := Silhouette(analysis, clusters)
	assert.Greater(t, silhouette, 0.0)
}

func TestOptimalClusterCountBounds(t *testing.T) {
	analysis := clusteringFixture(t)
	clusterer := NewKMeansClusterer(DefaultKMeansConfig())

	k := clusterer.OptimalClusterCount(analysis)
	assert.GreaterOrEqual(t, k, 1)
	assert.LessOrEqual(t, k, 3)
}
