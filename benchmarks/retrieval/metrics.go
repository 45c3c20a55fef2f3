// ABOUTME: Retrieval metrics for benchmark evaluation
// ABOUTME: Precision, recall, and mean reciprocal rank over expected node hits

package retrieval

import (
	"fmt"

	"github.com/harper/topicvault/internal/models"
)

// MetricsCalculator computes retrieval scores for benchmark queries
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// queryOutcome is the scored result of one benchmark query
type queryOutcome struct {
	precision  float64
	recall     float64
	reciprocal float64
	detail     string
}

// evaluateQuery scores one query's result list against its expected nodes
func (m *MetricsCalculator) evaluateQuery(q Query, results []models.VectorSearchResult) queryOutcome {
	expected := make(map[string]bool, len(q.ExpectedNodes))
	for _, id := range q.ExpectedNodes {
		expected[id] = true
	}

	relevant := 0
	reciprocal := 0.0
	var missing []string

	seen := make(map[string]bool)
	for rank, r := range results {
		if seen[r.NodeID] {
			continue
		}
		seen[r.NodeID] = true
		if expected[r.NodeID] {
			relevant++
			if reciprocal == 0 {
				reciprocal = 1.0 / float64(rank+1)
			}
		}
	}
	for _, id := range q.ExpectedNodes {
		if !seen[id] {
			missing = append(missing, id)
		}
	}

	precision := 0.0
	if len(seen) > 0 {
		precision = float64(relevant) / float64(len(seen))
	}
	recall := float64(relevant) / float64(len(q.ExpectedNodes))

	detail := "all expected nodes retrieved"
	if len(missing) > 0 {
		detail = fmt.Sprintf("missing nodes: %v", missing)
	}

	return queryOutcome{precision: precision, recall: recall, reciprocal: reciprocal, detail: detail}
}

// EvaluateScenario aggregates per-query outcomes into a scenario result.
// Passing requires recall >= 0.9 and precision >= 0.5 on average.
func (m *MetricsCalculator) EvaluateScenario(scenario TestScenario, outcomes []queryOutcome) TestResult {
	var precision, recall, mrr float64
	details := map[string]interface{}{}

	for i, o := range outcomes {
		precision += o.precision
		recall += o.recall
		mrr += o.reciprocal
		details[fmt.Sprintf("query_%d", i)] = o.detail
	}

	n := float64(len(outcomes))
	if n > 0 {
		precision /= n
		recall /= n
		mrr /= n
	}

	status := "FAIL"
	if recall >= 0.9 && precision >= 0.5 {
		status = "PASS"
	}

	return TestResult{
		TestID:       scenario.ID,
		TestName:     scenario.Name,
		Precision:    precision,
		Recall:       recall,
		MRR:          mrr,
		OverallScore: (precision + recall) / 2.0,
		Status:       status,
		Details:      details,
	}
}
