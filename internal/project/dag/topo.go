package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of ToposortKahn. Edges run from importer to imported,
// so Batches lists importers first.
type Topo struct {
	Order   []ModuleID   // линейный порядок (только реальные модули)
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Cycles  []ModuleID // узлы, оставшиеся в цикле
}

func moduleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}

// ToposortKahn sorts the present modules of g into batches.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]ModuleID, 0, nodeCount),
		Batches: make([][]ModuleID, 0),
	}

	active := 0
	current := make([]ModuleID, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, moduleID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]ModuleID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := 0; i < nodeCount; i++ {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, moduleID(i))
			}
		}
	}

	return topo
}

// DependencyBatches returns the batches with dependencies first: every
// module comes after all the modules it imports.
func (t *Topo) DependencyBatches() [][]ModuleID {
	if t == nil {
		return nil
	}
	out := make([][]ModuleID, len(t.Batches))
	for i, b := range t.Batches {
		out[len(t.Batches)-1-i] = b
	}
	return out
}
