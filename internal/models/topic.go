// ABOUTME: TopicNode represents a hierarchical document node for embedding
// ABOUTME: A topic is a root node plus its ordered descendant nodes
package models

// TopicNode is one node of a topic's content tree. The root node's ID is the
// topic ID; children are ordered as they appear in the document.
type TopicNode struct {
	NodeID   string       `json:"node_id"`
	Content  string       `json:"content"`
	Children []*TopicNode `json:"children,omitempty"`
}

// TotalContentLength returns the byte length of the node's content plus all
// descendant content, walking iteratively to tolerate deep trees.
func (n *TopicNode) TotalContentLength() int {
	if n == nil {
		return 0
	}
	total := 0
	stack := []*TopicNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total += len(node.Content)
		stack = append(stack, node.Children...)
	}
	return total
}
