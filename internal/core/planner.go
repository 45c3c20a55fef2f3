// ABOUTME: Planner decomposes a topic tree into embeddable units by size
// ABOUTME: Picks complete, summary+sections, or hierarchical chunking
package core

import (
	"strings"

	"github.com/harper/topicvault/internal/models"
)

// Default token thresholds for strategy selection. Boundary values round to
// the richer strategy: exactly at the low threshold takes summary+sections,
// exactly at the high threshold stays at summary+sections.
const (
	DefaultTokenThresholdLow  = 512
	DefaultTokenThresholdHigh = 2048
)

// MaxPlanDepth caps hierarchical expansion so a pathological tree cannot
// recurse without bound. Children at the cap become plain section units.
const MaxPlanDepth = 32

// Strategy names the chunking decision made for one embedding pass
type Strategy string

const (
	StrategyComplete     Strategy = "complete"
	StrategySummarySects Strategy = "summary_sections"
	StrategyHierarchical Strategy = "hierarchical"
)

// Planner chooses how to decompose a topic into embedding units
type Planner struct {
	low  int
	high int
}

// NewPlanner creates a Planner with the given token thresholds. Non-positive
// or inverted thresholds fall back to the defaults.
func NewPlanner(low, high int) *Planner {
	if low <= 0 || high <= 0 || high < low {
		low = DefaultTokenThresholdLow
		high = DefaultTokenThresholdHigh
	}
	return &Planner{low: low, high: high}
}

// Plan evaluates the topic tree once and returns the chosen strategy plus the
// ordered unit list. For a fixed tree and fixed thresholds the output is
// deterministic. An empty topic still produces a single complete unit with
// empty text so a stored embedding always exists for a created topic.
func (p *Planner) Plan(root *models.TopicNode) (Strategy, []models.EmbeddingUnit) {
	if root == nil {
		return StrategyComplete, nil
	}

	fullText := flattenTree(root)
	total := EstimateTokens(fullText)

	switch {
	case total < p.low:
		return StrategyComplete, []models.EmbeddingUnit{{
			SourceNodeID:    root.NodeID,
			Role:            models.RoleComplete,
			ParentTopicID:   root.NodeID,
			Depth:           0,
			Text:            fullText,
			EstimatedTokens: total,
		}}
	case total <= p.high:
		return StrategySummarySects, p.summaryAndSections(root)
	default:
		return StrategyHierarchical, p.hierarchical(root)
	}
}

// summaryAndSections emits one summary for the root content plus one section
// per direct child. Section text covers the child's whole subtree so no
// grandchild content is dropped.
func (p *Planner) summaryAndSections(root *models.TopicNode) []models.EmbeddingUnit {
	units := []models.EmbeddingUnit{summaryUnit(root, root.NodeID, 0)}
	for _, child := range root.Children {
		units = append(units, sectionUnit(child, root.NodeID, 1))
	}
	return units
}

// planFrame is one work-list entry during hierarchical expansion
type planFrame struct {
	node  *models.TopicNode
	depth int
}

// hierarchical emits a summary for the root, then walks the tree with an
// explicit work-list instead of recursion. A child whose subtree estimate
// reaches the low threshold gets its own nested summary+sections expansion at
// depth+1; smaller children collapse into a single section unit.
func (p *Planner) hierarchical(root *models.TopicNode) []models.EmbeddingUnit {
	topicID := root.NodeID
	units := []models.EmbeddingUnit{summaryUnit(root, topicID, 0)}

	stack := make([]planFrame, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, planFrame{node: root.Children[i], depth: 1})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subtree := flattenTree(frame.node)
		expand := EstimateTokens(subtree) >= p.low &&
			frame.depth < MaxPlanDepth &&
			len(frame.node.Children) > 0

		if !expand {
			units = append(units, sectionUnit(frame.node, topicID, frame.depth))
			continue
		}

		units = append(units, summaryUnit(frame.node, topicID, frame.depth))
		for i := len(frame.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, planFrame{node: frame.node.Children[i], depth: frame.depth + 1})
		}
	}

	return units
}

// summaryUnit covers only the node's own content
func summaryUnit(node *models.TopicNode, topicID string, depth int) models.EmbeddingUnit {
	return models.EmbeddingUnit{
		SourceNodeID:    node.NodeID,
		Role:            models.RoleSummary,
		ParentTopicID:   topicID,
		Depth:           depth,
		Text:            node.Content,
		EstimatedTokens: EstimateTokens(node.Content),
	}
}

// sectionUnit covers the node's whole subtree as one slice
func sectionUnit(node *models.TopicNode, topicID string, depth int) models.EmbeddingUnit {
	text := flattenTree(node)
	return models.EmbeddingUnit{
		SourceNodeID:    node.NodeID,
		Role:            models.RoleSection,
		ParentTopicID:   topicID,
		Depth:           depth,
		Text:            text,
		EstimatedTokens: EstimateTokens(text),
	}
}

// flattenTree concatenates a node's content and all descendant content in
// document order, separated by blank lines. Empty nodes are skipped.
func flattenTree(node *models.TopicNode) string {
	var parts []string
	stack := []*models.TopicNode{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if strings.TrimSpace(n.Content) != "" {
			parts = append(parts, n.Content)
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return strings.Join(parts, "\n\n")
}
