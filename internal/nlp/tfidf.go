package nlp

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// MinTitlesForClustering is the minimum corpus size for TF-IDF analysis
const MinTitlesForClustering = 5

// stopWords filters common English words that carry no topical signal
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
	"this": true, "but": true, "they": true, "have": true, "had": true, "what": true,
	"said": true, "each": true, "which": true, "she": true, "do": true, "how": true,
	"their": true, "if": true, "up": true, "out": true, "many": true, "then": true,
	"them": true, "these": true, "so": true, "some": true, "her": true, "would": true,
	"make": true, "like": true, "into": true, "him": true, "time": true, "two": true,
	"more": true, "go": true, "no": true, "way": true, "could": true, "my": true,
	"than": true, "first": true, "been": true, "call": true, "who": true, "now": true,
	"find": true, "down": true, "day": true, "did": true, "get": true, "come": true,
	"made": true, "may": true, "part": true,
}

// FeatureVector is a dense TF-IDF vector for one title with its
// magnitude precomputed
type FeatureVector struct {
	Values    []float64
	Magnitude float64
}

// ContentAnalysis is the result of running TF-IDF over a title corpus
type ContentAnalysis struct {
	Titles     []string
	Vocabulary []string
	TermIndex  map[string]int
	Vectors    []FeatureVector
	IDF        []float64
	TermScores map[string]float64
}

// Tokenize normalizes a title and splits it into significant tokens,
// dropping short tokens, stop words, and purely numeric tokens
func Tokenize(title string) []string {
	var tokens []string
	for _, word := range strings.Fields(Normalize(title)) {
		if len(word) < 2 || stopWords[word] {
			continue
		}
		if !strings.ContainsFunc(word, unicode.IsLetter) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Analyze builds TF-IDF feature vectors for the given titles
func Analyze(titles []string) (*ContentAnalysis, error) {
	if len(titles) < MinTitlesForClustering {
		return nil, &InsufficientContentError{Count: len(titles)}
	}

	docs := make([][]string, len(titles))
	termIndex := make(map[string]int)
	var vocabulary []string

	for i, title := range titles {
		docs[i] = Tokenize(title)
		for _, token := range docs[i] {
			if _, ok := termIndex[token]; !ok {
				termIndex[token] = len(vocabulary)
				vocabulary = append(vocabulary, token)
			}
		}
	}

	if len(vocabulary) == 0 {
		return nil, &AnalysisFailedError{Reason: "empty vocabulary after tokenization"}
	}

	// Document frequency per term
	df := make([]int, len(vocabulary))
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, token := range doc {
			idx := termIndex[token]
			if !seen[idx] {
				seen[idx] = true
				df[idx]++
			}
		}
	}

	n := float64(len(titles))
	idf := make([]float64, len(vocabulary))
	for i, freq := range df {
		idf[i] = math.Log(n / (1 + float64(freq)))
	}

	vectors := make([]FeatureVector, len(titles))
	termScores := make(map[string]float64, len(vocabulary))
	for i, doc := range docs {
		values := make([]float64, len(vocabulary))
		if len(doc) > 0 {
			counts := make(map[int]int)
			for _, token := range doc {
				counts[termIndex[token]]++
			}
			total := float64(len(doc))
			for idx, count := range counts {
				values[idx] = (float64(count) / total) * idf[idx]
			}
		}
		vectors[i] = FeatureVector{Values: values, Magnitude: magnitude(values)}
		for idx, v := range values {
			termScores[vocabulary[idx]] += v
		}
	}
	for term := range termScores {
		termScores[term] /= n
	}

	return &ContentAnalysis{
		Titles:     titles,
		Vocabulary: vocabulary,
		TermIndex:  termIndex,
		Vectors:    vectors,
		IDF:        idf,
		TermScores: termScores,
	}, nil
}

// TopTerms returns up to limit corpus-wide terms ranked by aggregated
// TF-IDF score
func (a *ContentAnalysis) TopTerms(limit int) []string {
	terms := make([]string, 0, len(a.TermScores))
	for term := range a.TermScores {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		si, sj := a.TermScores[terms[i]], a.TermScores[terms[j]]
		if si != sj {
			return si > sj
		}
		return terms[i] < terms[j]
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

func magnitude(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// CosineSimilarity computes the cosine of the angle between two feature
// vectors, returning 0 when either has zero magnitude
func CosineSimilarity(a, b FeatureVector) float64 {
	if a.Magnitude == 0 || b.Magnitude == 0 {
		return 0
	}
	var dot float64
	for i := range a.Values {
		dot += a.Values[i] * b.Values[i]
	}
	return dot / (a.Magnitude * b.Magnitude)
}

// SimilarityMatrix builds the symmetric N x N cosine similarity matrix
// for all titles in the analysis. The diagonal is 1
func (a *ContentAnalysis) SimilarityMatrix() [][]float64 {
	n := len(a.Vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := CosineSimilarity(a.Vectors[i], a.Vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}
