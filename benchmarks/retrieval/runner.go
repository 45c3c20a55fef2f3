// ABOUTME: Benchmark runner seeding topics and scoring search quality
// ABOUTME: Uses a deterministic bag-of-words embedder so runs need no API key

package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/harper/topicvault/internal/core"
	"github.com/harper/topicvault/internal/search"
	"github.com/harper/topicvault/internal/storage/sqlite"
	"github.com/harper/topicvault/internal/vector"
)

const benchDimension = 256

// hashEmbedder maps text to a normalized bag-of-words vector by hashing each
// word into a fixed number of buckets. Deterministic and offline; overlapping
// vocabulary produces high cosine similarity, which is all the benchmark needs.
type hashEmbedder struct {
	dim int
}

func (h *hashEmbedder) embed(text string) []float32 {
	vec := make([]float32, h.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if word == "" {
			continue
		}
		f := fnv.New32a()
		_, _ = f.Write([]byte(word))
		vec[int(f.Sum32())%h.dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return h.embed(text), nil
}

func (h *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.embed(t)
	}
	return out, nil
}

// BenchmarkRunner executes retrieval scenarios against a fresh in-memory store
type BenchmarkRunner struct {
	verbose bool
	metrics *MetricsCalculator
}

// NewBenchmarkRunner creates a runner
func NewBenchmarkRunner(verbose bool) *BenchmarkRunner {
	return &BenchmarkRunner{verbose: verbose, metrics: NewMetricsCalculator()}
}

// RunTest seeds one scenario's topics, embeds them, runs its queries through
// the exact search path, and scores the results.
func (r *BenchmarkRunner) RunTest(scenario TestScenario) (TestResult, error) {
	ctx := context.Background()

	db, err := sqlite.OpenInMemory()
	if err != nil {
		return TestResult{}, fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	codec, err := vector.NewCodec(benchDimension)
	if err != nil {
		return TestResult{}, err
	}

	topics := sqlite.NewTopicStore(db)
	store := sqlite.NewEmbeddingStore(db)
	embedder := &hashEmbedder{dim: benchDimension}
	planner := core.NewPlanner(0, 0)
	passRunner := core.NewTopicEmbedder(topics, planner, embedder, codec, store, nil)
	searcher := search.New(codec, store, nil)

	for _, topic := range scenario.Topics {
		if err := topics.SaveTopicTree(ctx, topic); err != nil {
			return TestResult{}, fmt.Errorf("seeding topic %s: %w", topic.NodeID, err)
		}
		result, err := passRunner.EmbedTopic(ctx, topic.NodeID)
		if err != nil {
			return TestResult{}, fmt.Errorf("embedding topic %s: %w", topic.NodeID, err)
		}
		if r.verbose {
			fmt.Printf("  seeded %s: strategy=%s units=%d\n",
				topic.NodeID, result.Strategy, result.UnitsWritten)
		}
	}

	outcomes := make([]queryOutcome, 0, len(scenario.Queries))
	for _, q := range scenario.Queries {
		vec := embedder.embed(q.Text)
		results, err := searcher.ExactSearch(ctx, vec, 1.0, q.Limit, "")
		if err != nil {
			return TestResult{}, fmt.Errorf("query %q: %w", q.Text, err)
		}

		outcome := r.metrics.evaluateQuery(q, results)
		if r.verbose {
			fmt.Printf("  query %q: precision=%.2f recall=%.2f (%s)\n",
				q.Text, outcome.precision, outcome.recall, outcome.detail)
		}
		outcomes = append(outcomes, outcome)
	}

	return r.metrics.EvaluateScenario(scenario, outcomes), nil
}

// RunAllTests runs every scenario in order
func (r *BenchmarkRunner) RunAllTests() ([]TestResult, error) {
	var results []TestResult
	for _, scenario := range AllScenarios() {
		if r.verbose {
			fmt.Printf("Running %s: %s\n", scenario.ID, scenario.Name)
		}
		result, err := r.RunTest(scenario)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}
