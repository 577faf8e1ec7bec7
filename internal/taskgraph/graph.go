package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected indicates the declared prerequisites form a cycle.
	ErrCycleDetected = errors.New("task prerequisites contain cycle")
	// ErrTaskNotFound indicates the requested task name is not registered.
	ErrTaskNotFound = errors.New("task not found")
)

// Node represents a named task with declared prerequisite names.
type Node struct {
	Name          string
	Banner        string
	Prerequisites []string
}

// Graph stores validated task nodes in declaration order.
type Graph struct {
	nodes       []Node
	nameToIndex map[string]int
}

// NewGraph validates the supplied nodes and constructs a Graph.
func NewGraph(nodes []Node) (*Graph, error) {
	nameToIndex := make(map[string]int, len(nodes))
	sanitizedNodes := make([]Node, 0, len(nodes))

	for nodeIndex := range nodes {
		node := nodes[nodeIndex]

		name := strings.TrimSpace(node.Name)
		if len(name) == 0 {
			return nil, errors.New("task missing name")
		}
		if _, exists := nameToIndex[name]; exists {
			return nil, fmt.Errorf("task %q defined multiple times", name)
		}

		sanitizedPrerequisites := make([]string, 0, len(node.Prerequisites))
		seenPrerequisites := make(map[string]struct{}, len(node.Prerequisites))
		for prerequisiteIndex := range node.Prerequisites {
			prerequisiteName := strings.TrimSpace(node.Prerequisites[prerequisiteIndex])
			if len(prerequisiteName) == 0 {
				continue
			}
			if prerequisiteName == name {
				return nil, fmt.Errorf("task %q cannot depend on itself", name)
			}
			if _, alreadyIncluded := seenPrerequisites[prerequisiteName]; alreadyIncluded {
				continue
			}
			seenPrerequisites[prerequisiteName] = struct{}{}
			sanitizedPrerequisites = append(sanitizedPrerequisites, prerequisiteName)
		}

		node.Name = name
		node.Prerequisites = sanitizedPrerequisites
		nameToIndex[name] = len(sanitizedNodes)
		sanitizedNodes = append(sanitizedNodes, node)
	}

	for nodeIndex := range sanitizedNodes {
		for _, prerequisiteName := range sanitizedNodes[nodeIndex].Prerequisites {
			if _, exists := nameToIndex[prerequisiteName]; !exists {
				return nil, fmt.Errorf("task %q requires unknown task %q", sanitizedNodes[nodeIndex].Name, prerequisiteName)
			}
		}
	}

	graph := &Graph{nodes: sanitizedNodes, nameToIndex: nameToIndex}
	if _, orderingError := graph.topologicalOrder(sanitizedNodes); orderingError != nil {
		return nil, orderingError
	}
	return graph, nil
}

// Lookup returns the node registered under the provided name.
func (graph *Graph) Lookup(taskName string) (Node, error) {
	index, exists := graph.nameToIndex[strings.TrimSpace(taskName)]
	if !exists {
		return Node{}, fmt.Errorf("%w: %q", ErrTaskNotFound, taskName)
	}
	return graph.nodes[index], nil
}

// Nodes returns every registered node in topological order.
func (graph *Graph) Nodes() []Node {
	ordered, orderingError := graph.topologicalOrder(graph.nodes)
	if orderingError != nil {
		return nil
	}
	return ordered
}

// Plan returns the transitive prerequisite closure of the target task in
// dependency order, ending with the target itself.
func (graph *Graph) Plan(targetName string) ([]Node, error) {
	target, lookupError := graph.Lookup(targetName)
	if lookupError != nil {
		return nil, lookupError
	}

	closure := make(map[string]struct{})
	pending := []string{target.Name}
	for len(pending) > 0 {
		currentName := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, visited := closure[currentName]; visited {
			continue
		}
		closure[currentName] = struct{}{}

		currentNode := graph.nodes[graph.nameToIndex[currentName]]
		pending = append(pending, currentNode.Prerequisites...)
	}

	closureNodes := make([]Node, 0, len(closure))
	for nodeIndex := range graph.nodes {
		if _, included := closure[graph.nodes[nodeIndex].Name]; included {
			closureNodes = append(closureNodes, graph.nodes[nodeIndex])
		}
	}

	return graph.topologicalOrder(closureNodes)
}

// topologicalOrder applies Kahn's algorithm, keeping declaration order stable
// for nodes that become ready in the same round.
func (graph *Graph) topologicalOrder(nodes []Node) ([]Node, error) {
	included := make(map[string]struct{}, len(nodes))
	for nodeIndex := range nodes {
		included[nodes[nodeIndex].Name] = struct{}{}
	}

	inDegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for nodeIndex := range nodes {
		node := nodes[nodeIndex]
		for _, prerequisiteName := range node.Prerequisites {
			if _, present := included[prerequisiteName]; !present {
				continue
			}
			inDegree[node.Name]++
			adjacency[prerequisiteName] = append(adjacency[prerequisiteName], node.Name)
		}
	}

	ready := make([]string, 0)
	for nodeIndex := range nodes {
		if inDegree[nodes[nodeIndex].Name] == 0 {
			ready = append(ready, nodes[nodeIndex].Name)
		}
	}

	ordered := make([]Node, 0, len(nodes))
	processedSet := make(map[string]struct{}, len(nodes))

	for len(ready) > 0 {
		roundNames := ready
		ready = nil

		for _, name := range roundNames {
			ordered = append(ordered, graph.nodes[graph.nameToIndex[name]])
			processedSet[name] = struct{}{}
		}

		nextReadySet := make(map[string]struct{})
		for _, name := range roundNames {
			for _, dependent := range adjacency[name] {
				if _, alreadyProcessed := processedSet[dependent]; alreadyProcessed {
					continue
				}
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					nextReadySet[dependent] = struct{}{}
				}
			}
		}

		for nodeIndex := range nodes {
			if _, available := nextReadySet[nodes[nodeIndex].Name]; available {
				ready = append(ready, nodes[nodeIndex].Name)
			}
		}
	}

	if len(ordered) != len(nodes) {
		return nil, ErrCycleDetected
	}

	return ordered, nil
}
