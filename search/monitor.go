package search

import "github.com/poiesic/recallit/core"

// QueryMonitor provides hooks to observe the query process.
// Implement this interface to track intermediate steps and results during a query.
type QueryMonitor interface {
	Start(query string)
	AfterRetrieval(sources []*core.ScoredUnit)
	AfterGeneration(answer string)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterRetrieval(_ []*core.ScoredUnit)  {}
func (n *noopMonitor) AfterGeneration(_ string)             {}
func (n *noopMonitor) Finish(_ *Response)                   {}
