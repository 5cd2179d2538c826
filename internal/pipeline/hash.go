package pipeline

import (
	"cbridge/internal/project"
	"cbridge/internal/project/dag"
)

// computeModuleHashes fills ModuleHash in reverse topological order, so
// every imported module is hashed before its importers. A cyclic graph is
// left untouched (zero hashes).
func computeModuleHashes(g dag.Graph, slots []dag.ModuleSlot, topo *dag.Topo) bool {
	if topo == nil || topo.Cyclic {
		return false
	}
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if !g.Present[int(to)] {
				continue
			}
			deps = append(deps, slots[int(to)].Meta.ModuleHash)
		}
		slot.Meta.ModuleHash = project.Combine(slot.Meta.ContentHash, deps...)
	}
	return true
}
