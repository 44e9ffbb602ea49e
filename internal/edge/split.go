package edge

// Segment is a run of edge durations with no idle gap inside it.
// Offset indexes the first duration in the unsplit stream.
type Segment struct {
	Offset int
	Edges  []float64
}

// SplitEdges cuts the stream at every duration longer than maxSymbolUs. The gap
// itself belongs to no segment, and empty runs are dropped.
func SplitEdges(edges []float64, maxSymbolUs float64) []Segment {
	var (
		out   []Segment
		start int
	)
	for i, d := range edges {
		if d <= maxSymbolUs {
			continue
		}
		if i > start {
			out = append(out, Segment{Offset: start, Edges: edges[start:i]})
		}
		start = i + 1
	}
	if start < len(edges) {
		out = append(out, Segment{Offset: start, Edges: edges[start:]})
	}
	return out
}
