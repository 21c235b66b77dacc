package model

// Graph is the co-occurrence graph handed to the visualization layer: plain
// node/edge data, no rendering concerns.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is one keyword identity appearing at least once in the requested
// range. Weight is the number of appearances.
type GraphNode struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Weight   int    `json:"weight"`
}

// GraphEdge is an undirected co-occurrence edge. Source/Target are ordered
// lexically so the pair has one stable representation.
type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}
