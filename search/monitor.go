package search

import "github.com/poiesic/lorekeep/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track planning decisions and intermediate
// results during search.
type SearchMonitor interface {
	Start(query *Query)
	AfterEmbedding(modelVersion string, dimensions int)
	PlanChosen(plan PlanKind, candidates int)
	AfterVectorSearch(matches []core.SimilarityMatch)
	Finish(results []*core.SearchResult)
}

// PlanKind identifies the filtering strategy the planner picked.
type PlanKind int

const (
	// PlanScan ran the vector search over the whole index with no
	// structured constraints.
	PlanScan PlanKind = iota + 1
	// PlanPreFilter resolved the filter to a candidate set first and
	// searched only within it.
	PlanPreFilter
	// PlanPostFilter over-fetched from the index and applied the filter
	// to the hits.
	PlanPostFilter
)

func (p PlanKind) String() string {
	switch p {
	case PlanScan:
		return "scan"
	case PlanPreFilter:
		return "pre-filter"
	case PlanPostFilter:
		return "post-filter"
	default:
		return "unknown"
	}
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Query)                             {}
func (n *noopMonitor) AfterEmbedding(_ string, _ int)             {}
func (n *noopMonitor) PlanChosen(_ PlanKind, _ int)               {}
func (n *noopMonitor) AfterVectorSearch(_ []core.SimilarityMatch) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)              {}
