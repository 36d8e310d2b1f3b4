package nlp

import "math"

// Cluster groups title indices around a centroid in TF-IDF space
type Cluster struct {
	Members         []int
	Centroid        []float64
	SimilarityScore float64
}

// KMeansConfig tunes the clustering loop
type KMeansConfig struct {
	MaxIterations int
	Epsilon       float64
	MaxClusters   int
}

// DefaultKMeansConfig returns the standard clustering parameters
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		MaxIterations: 100,
		Epsilon:       0.001,
		MaxClusters:   10,
	}
}

// KMeansClusterer partitions title feature vectors into k clusters using
// cosine distance. Seeding is deterministic so identical inputs always
// produce identical memberships
type KMeansClusterer struct {
	config KMeansConfig
}

// NewKMeansClusterer creates a clusterer with the given configuration
func NewKMeansClusterer(config KMeansConfig) *KMeansClusterer {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 100
	}
	if config.Epsilon <= 0 {
		config.Epsilon = 0.001
	}
	if config.MaxClusters <= 0 {
		config.MaxClusters = 10
	}
	return &KMeansClusterer{config: config}
}

// Cluster partitions the analyzed titles into k clusters. k is clamped
// to [1, min(len(documents), MaxClusters)]
func (c *KMeansClusterer) Cluster(analysis *ContentAnalysis, k int) ([]Cluster, error) {
	n := len(analysis.Vectors)
	if n == 0 {
		return nil, &AnalysisFailedError{Reason: "no feature vectors to cluster"}
	}

	maxK := min(n, c.config.MaxClusters)
	k = max(1, min(k, maxK))

	centroids := c.seedCentroids(analysis, k)
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	converged := false
	for iter := 0; iter < c.config.MaxIterations; iter++ {
		changed := false
		for i, vec := range analysis.Vectors {
			nearest := nearestCentroid(vec.Values, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}

		newCentroids := c.recomputeCentroids(analysis, assignments, centroids)

		movement := 0.0
		for j := range centroids {
			movement = math.Max(movement, cosineDistanceValues(centroids[j], newCentroids[j]))
		}
		centroids = newCentroids

		if !changed || movement < c.config.Epsilon {
			converged = true
			break
		}
	}

	if !converged {
		return nil, &ConvergenceFailedError{Iterations: c.config.MaxIterations}
	}

	return c.buildClusters(analysis, assignments, centroids), nil
}

// seedCentroids picks the first document, then repeatedly the document
// furthest (by cosine distance) from all chosen centroids
func (c *KMeansClusterer) seedCentroids(analysis *ContentAnalysis, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
	chosen := make(map[int]bool)

	first := append([]float64(nil), analysis.Vectors[0].Values...)
	centroids = append(centroids, first)
	chosen[0] = true

	for len(centroids) < k {
		bestIdx := -1
		bestDist := -1.0
		for i, vec := range analysis.Vectors {
			if chosen[i] {
				continue
			}
			minDist := math.Inf(1)
			for _, centroid := range centroids {
				minDist = math.Min(minDist, cosineDistanceValues(vec.Values, centroid))
			}
			if minDist > bestDist {
				bestDist = minDist
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		chosen[bestIdx] = true
		centroids = append(centroids, append([]float64(nil), analysis.Vectors[bestIdx].Values...))
	}

	return centroids
}

// recomputeCentroids averages member vectors; empty clusters are reseeded
// from the document furthest from any current centroid
func (c *KMeansClusterer) recomputeCentroids(analysis *ContentAnalysis, assignments []int, current [][]float64) [][]float64 {
	dims := len(analysis.Vocabulary)
	k := len(current)

	sums := make([][]float64, k)
	counts := make([]int, k)
	for j := range sums {
		sums[j] = make([]float64, dims)
	}
	for i, cluster := range assignments {
		counts[cluster]++
		for d, v := range analysis.Vectors[i].Values {
			sums[cluster][d] += v
		}
	}

	result := make([][]float64, k)
	for j := range sums {
		if counts[j] == 0 {
			result[j] = append([]float64(nil), analysis.Vectors[furthestDocument(analysis, current)].Values...)
			continue
		}
		for d := range sums[j] {
			sums[j][d] /= float64(counts[j])
		}
		result[j] = sums[j]
	}
	return result
}

// buildClusters materializes member lists and intra-cluster similarity scores
func (c *KMeansClusterer) buildClusters(analysis *ContentAnalysis, assignments []int, centroids [][]float64) []Cluster {
	clusters := make([]Cluster, len(centroids))
	for j := range clusters {
		clusters[j].Centroid = centroids[j]
	}
	for i, cluster := range assignments {
		clusters[cluster].Members = append(clusters[cluster].Members, i)
	}

	// Drop clusters that stayed empty after the final pass
	result := clusters[:0]
	for _, cluster := range clusters {
		if len(cluster.Members) == 0 {
			continue
		}
		cluster.SimilarityScore = intraClusterSimilarity(analysis, cluster.Members)
		result = append(result, cluster)
	}
	return result
}

// OptimalClusterCount estimates a good k with the WCSS elbow heuristic.
// Candidate k ranges over [1, min(n/2, MaxClusters)]
func (c *KMeansClusterer) OptimalClusterCount(analysis *ContentAnalysis) int {
	n := len(analysis.Vectors)
	maxK := min(n/2, c.config.MaxClusters)
	if maxK < 2 {
		return 1
	}

	wcss := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		clusters, err := c.Cluster(analysis, k)
		if err != nil {
			break
		}
		wcss = append(wcss, withinClusterSumOfSquares(analysis, clusters))
	}
	if len(wcss) < 3 {
		return max(1, len(wcss))
	}

	// Elbow: the k after which the WCSS drop flattens the most
	bestK := 1
	bestDelta := 0.0
	for i := 1; i < len(wcss)-1; i++ {
		delta := (wcss[i-1] - wcss[i]) - (wcss[i] - wcss[i+1])
		if delta > bestDelta {
			bestDelta = delta
			bestK = i + 1
		}
	}
	return bestK
}

// Silhouette computes the mean silhouette coefficient over all documents,
// using cosine distance. Returns 0 for a single cluster
func Silhouette(analysis *ContentAnalysis, clusters []Cluster) float64 {
	if len(clusters) < 2 {
		return 0
	}

	var total float64
	var count int
	for ci, cluster := range clusters {
		for _, i := range cluster.Members {
			a := meanDistanceTo(analysis, i, cluster.Members)
			b := math.Inf(1)
			for cj, other := range clusters {
				if cj == ci {
					continue
				}
				b = math.Min(b, meanDistanceTo(analysis, i, other.Members))
			}
			denom := math.Max(a, b)
			if denom > 0 {
				total += (b - a) / denom
			}
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// QualityScore measures mean intra-cluster similarity minus mean
// inter-cluster similarity, in [-1, 1]
func QualityScore(analysis *ContentAnalysis, clusters []Cluster) float64 {
	var intra, inter float64
	var intraN, interN int

	for ci, cluster := range clusters {
		for ai := 0; ai < len(cluster.Members); ai++ {
			for bi := ai + 1; bi < len(cluster.Members); bi++ {
				intra += CosineSimilarity(analysis.Vectors[cluster.Members[ai]], analysis.Vectors[cluster.Members[bi]])
				intraN++
			}
		}
		for cj := ci + 1; cj < len(clusters); cj++ {
			for _, a := range cluster.Members {
				for _, b := range clusters[cj].Members {
					inter += CosineSimilarity(analysis.Vectors[a], analysis.Vectors[b])
					interN++
				}
			}
		}
	}

	intraMean := 1.0
	if intraN > 0 {
		intraMean = intra / float64(intraN)
	}
	interMean := 0.0
	if interN > 0 {
		interMean = inter / float64(interN)
	}
	return intraMean - interMean
}

func nearestCentroid(values []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for j, centroid := range centroids {
		if d := cosineDistanceValues(values, centroid); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

func furthestDocument(analysis *ContentAnalysis, centroids [][]float64) int {
	best := 0
	bestDist := -1.0
	for i, vec := range analysis.Vectors {
		minDist := math.Inf(1)
		for _, centroid := range centroids {
			minDist = math.Min(minDist, cosineDistanceValues(vec.Values, centroid))
		}
		if minDist > bestDist {
			bestDist = minDist
			best = i
		}
	}
	return best
}

func intraClusterSimilarity(analysis *ContentAnalysis, members []int) float64 {
	if len(members) < 2 {
		return 1
	}
	var sum float64
	var n int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += CosineSimilarity(analysis.Vectors[members[i]], analysis.Vectors[members[j]])
			n++
		}
	}
	return sum / float64(n)
}

func meanDistanceTo(analysis *ContentAnalysis, i int, members []int) float64 {
	var sum float64
	var n int
	for _, j := range members {
		if j == i {
			continue
		}
		sum += 1 - CosineSimilarity(analysis.Vectors[i], analysis.Vectors[j])
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func withinClusterSumOfSquares(analysis *ContentAnalysis, clusters []Cluster) float64 {
	var wcss float64
	for _, cluster := range clusters {
		for _, i := range cluster.Members {
			d := cosineDistanceValues(analysis.Vectors[i].Values, cluster.Centroid)
			wcss += d * d
		}
	}
	return wcss
}

func cosineDistanceValues(a, b []float64) float64 {
	ma, mb := magnitude(a), magnitude(b)
	if ma == 0 || mb == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return 1 - dot/(ma*mb)
}
