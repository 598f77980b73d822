package includes

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is the include graph of one output unit. An edge a -> b means a includes b.
type Graph struct {
	graph *simple.DirectedGraph
	ids   map[string]int64 // file name to graph ID
	names map[int64]string // graph ID to file name
	self  map[string]bool  // files that include themselves
}

// NewGraph creates an empty include graph
func NewGraph() *Graph {
	return &Graph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
		self:  make(map[string]bool),
	}
}

// AddFile adds a file node if it is not present yet
func (g *Graph) AddFile(name string) {
	if _, exists := g.ids[name]; exists {
		return
	}
	node := g.graph.NewNode()
	g.graph.AddNode(node)
	g.ids[name] = node.ID()
	g.names[node.ID()] = name
}

// AddInclude records that from includes to
func (g *Graph) AddInclude(from, to string) {
	g.AddFile(from)
	g.AddFile(to)

	// simple graphs reject self edges, track them on the side
	if from == to {
		g.self[from] = true
		return
	}

	fromID, toID := g.ids[from], g.ids[to]
	if !g.graph.HasEdgeFromTo(fromID, toID) {
		g.graph.SetEdge(g.graph.NewEdge(g.graph.Node(fromID), g.graph.Node(toID)))
	}
}

// Includes returns the files that name includes, sorted
func (g *Graph) Includes(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}

	var out []string
	it := g.graph.From(id)
	for it.Next() {
		out = append(out, g.names[it.Node().ID()])
	}
	if g.self[name] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of files in the graph
func (g *Graph) Len() int {
	return len(g.ids)
}

// Cycles returns every include cycle: strongly connected components with more
// than one file, plus files that include themselves. Each cycle is sorted and
// cycles are ordered by their first file.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string

	for _, scc := range topo.TarjanSCC(g.graph) {
		if len(scc) < 2 {
			continue
		}
		files := make([]string, 0, len(scc))
		for _, node := range scc {
			files = append(files, g.names[node.ID()])
		}
		sort.Strings(files)
		cycles = append(cycles, files)
	}

	for name := range g.self {
		cycles = append(cycles, []string{name})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}
