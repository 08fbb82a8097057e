package dedup

import (
	"math"

	"tarmac.news/avdigest/internal/normalize"
)

// DefaultSimilarityThreshold is the cosine at or above which two documents
// are treated as the same story.
const DefaultSimilarityThreshold = 0.85

// Vector is a sparse term-weight map.
type Vector map[string]float64

// BuildTFIDF vectorizes each text over the candidate set. Term frequency is
// count-normalized per document; inverse document frequency is the smoothed
// log((1+N)/(1+df)) + 1.
func BuildTFIDF(texts []string) []Vector {
	tokenized := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		tokenized[i] = normalize.Tokenize(text)
		seen := make(map[string]struct{}, len(tokenized[i]))
		for _, token := range tokenized[i] {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}

	docs := len(texts)
	if docs < 1 {
		docs = 1
	}

	vectors := make([]Vector, len(texts))
	for i, tokens := range tokenized {
		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		total := len(tokens)
		if total < 1 {
			total = 1
		}
		vec := make(Vector, len(tf))
		for token, count := range tf {
			idf := math.Log(float64(1+docs)/float64(1+df[token])) + 1
			vec[token] = (float64(count) / float64(total)) * idf
		}
		vectors[i] = vec
	}
	return vectors
}

// Cosine is the similarity of two sparse vectors: dot product over the key
// union divided by the product of L2 norms. Empty or zero-norm vectors have
// similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dot := 0.0
	for key, av := range a {
		dot += av * b[key]
	}
	normA := 0.0
	for _, v := range a {
		normA += v * v
	}
	normB := 0.0
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BySimilarity is tier 3: process texts in input order (most recent first),
// keep an item unless its vector is similar to an already-kept item's, and
// return the kept indices in order plus the drop count. Quadratic in the
// candidate count, which stays in the low hundreds per daily run.
func BySimilarity(texts []string, threshold float64) ([]int, int) {
	vectors := BuildTFIDF(texts)

	selected := make([]int, 0, len(texts))
	dropped := 0
	for i := range texts {
		isDup := false
		for _, j := range selected {
			if Cosine(vectors[i], vectors[j]) >= threshold {
				isDup = true
				break
			}
		}
		if isDup {
			dropped++
			continue
		}
		selected = append(selected, i)
	}
	return selected, dropped
}
