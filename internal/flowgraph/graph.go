// Package flowgraph is the node-graph store behind the flow editor. It keeps
// an ordered node list in sync with the flow entries the backend receives;
// edges are layout only and never leave the client.
package flowgraph

import (
	"fmt"

	"github.com/quantumweb/botstudio/internal/botapi"
)

// Position is a layout hint with no semantic meaning.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node wraps one flow entry for the editor.
type Node struct {
	ID       string
	Entry    botapi.FlowEntry
	Position Position
}

// Edge is a visual connection between two node ids.
type Edge struct {
	Source string
	Target string
}

// EntryPatch is a partial edit applied to a node's entry. Nil fields are left
// untouched.
type EntryPatch struct {
	UserMessage *string
	BotResponse *string
	Condition   *string
	ActionType  *botapi.ActionType
	ActionValue *string
}

// Graph owns the ordered node list and its edges. IDs come from a counter
// that only ever grows, so an id freed by deletion is never handed out again
// within a session.
type Graph struct {
	nodes   []Node
	edges   []Edge
	nextID  int
	touched bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nextID: 1}
}

// Touched reports whether the editor has modified the graph at all. Once
// true, the graph is the authoritative flow source for submission.
func (g *Graph) Touched() bool { return g.touched }

// Len returns the node count.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in order. The slice is a copy; entries are values.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns the visual edges.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// AddNode appends a node with a blank entry and returns its id.
func (g *Graph) AddNode() string {
	id := g.allocID()
	g.nodes = append(g.nodes, Node{
		ID:       id,
		Position: Position{X: 40 * len(g.nodes), Y: 60 * len(g.nodes)},
	})
	g.touched = true
	return id
}

// UpdateNode merges a partial edit into the node's entry. Idempotent and
// order-preserving; unknown ids are an error.
func (g *Graph) UpdateNode(id string, patch EntryPatch) error {
	idx := g.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("unknown node %q", id)
	}
	entry := &g.nodes[idx].Entry
	if patch.UserMessage != nil {
		entry.UserMessage = *patch.UserMessage
	}
	if patch.BotResponse != nil {
		entry.BotResponse = *patch.BotResponse
	}
	if patch.Condition != nil {
		entry.Condition = *patch.Condition
	}
	if patch.ActionType != nil || patch.ActionValue != nil {
		if entry.Action == nil {
			entry.Action = &botapi.Action{Type: botapi.ActionNone}
		}
		if patch.ActionType != nil {
			entry.Action.Type = *patch.ActionType
		}
		if patch.ActionValue != nil {
			entry.Action.Value = *patch.ActionValue
		}
		if entry.Action.Type == botapi.ActionNone && entry.Action.Value == "" {
			entry.Action = nil
		}
	}
	g.touched = true
	return nil
}

// DeleteNode removes a node and its edges. The last remaining node cannot be
// removed: a flow list always holds at least one entry while editing.
func (g *Graph) DeleteNode(id string) error {
	if len(g.nodes) <= 1 {
		return fmt.Errorf("el flujo necesita al menos una entrada")
	}
	idx := g.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("unknown node %q", id)
	}
	g.nodes = append(g.nodes[:idx], g.nodes[idx+1:]...)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	g.touched = true
	return nil
}

// Connect records a visual edge. Self-loops, unknown endpoints and duplicate
// edges are rejected.
func (g *Graph) Connect(sourceID, targetID string) error {
	if sourceID == targetID {
		return fmt.Errorf("cannot connect %q to itself", sourceID)
	}
	if g.indexOf(sourceID) < 0 {
		return fmt.Errorf("unknown node %q", sourceID)
	}
	if g.indexOf(targetID) < 0 {
		return fmt.Errorf("unknown node %q", targetID)
	}
	for _, e := range g.edges {
		if e.Source == sourceID && e.Target == targetID {
			return nil
		}
	}
	g.edges = append(g.edges, Edge{Source: sourceID, Target: targetID})
	g.touched = true
	return nil
}

// LoadFromEntries rebuilds the node list 1:1 from a flow list, clearing all
// edges. Used for template application and for editing an existing bot.
func (g *Graph) LoadFromEntries(entries []botapi.FlowEntry) {
	g.nodes = g.nodes[:0]
	g.edges = nil
	for i, e := range entries {
		g.nodes = append(g.nodes, Node{
			ID:       g.allocID(),
			Entry:    e,
			Position: Position{X: 40 * i, Y: 60 * i},
		})
	}
	g.touched = true
}

// ApplyTemplate replaces the graph with one node per template flow entry, in
// template order.
func (g *Graph) ApplyTemplate(t botapi.Template) {
	g.LoadFromEntries(t.Flows)
}

// Entries projects the node list back into the flow-entry shape, in order.
func (g *Graph) Entries() []botapi.FlowEntry {
	out := make([]botapi.FlowEntry, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.Entry)
	}
	return out
}

// Reset empties nodes and edges but keeps the id counter running, preserving
// the never-reuse guarantee across wizard restarts within a session.
func (g *Graph) Reset() {
	g.nodes = g.nodes[:0]
	g.edges = nil
	g.touched = false
}

func (g *Graph) allocID() string {
	id := fmt.Sprintf("n%d", g.nextID)
	g.nextID++
	return id
}

func (g *Graph) indexOf(id string) int {
	for i, n := range g.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
