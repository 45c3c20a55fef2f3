// ABOUTME: Command-line benchmark runner for retrieval quality tests
// ABOUTME: Executes search benchmarks and outputs JSON results

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/topicvault/benchmarks/retrieval"
)

func main() {
	// Command-line flags
	testID := flag.String("test", "", "Run specific test (1a, 2a, 3a). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("Topicvault Retrieval Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := retrieval.NewBenchmarkRunner(*verbose)

	var results []retrieval.TestResult
	var err error

	if *testID == "" {
		fmt.Println("Running all retrieval benchmark tests...")
		fmt.Println()

		results, err = runner.RunAllTests()
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		var scenario retrieval.TestScenario

		switch *testID {
		case "1a":
			scenario = retrieval.GetTestDistinctTopics()
		case "2a":
			scenario = retrieval.GetTestSectionRouting()
		case "3a":
			scenario = retrieval.GetTestRecallAtK()
		default:
			log.Fatalf("Unknown test ID: %s (valid options: 1a, 2a, 3a)", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}
		results = append(results, result)
	}

	// Print summary
	passed := 0
	for _, result := range results {
		fmt.Printf("[%s] %s: %s (precision=%.2f recall=%.2f mrr=%.2f)\n",
			result.Status, result.TestID, result.TestName,
			result.Precision, result.Recall, result.MRR)
		if result.Status == "PASS" {
			passed++
		}
	}
	fmt.Printf("\n%d/%d scenarios passed\n", passed, len(results))

	// Write JSON results
	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputPath, jsonData, 0644); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	fmt.Printf("Results written to %s\n", *outputPath)

	if passed < len(results) {
		os.Exit(1)
	}
}
