package dag

import (
	"fmt"
	"slices"
	"strings"

	"cbridge/internal/diag"
	"cbridge/internal/project"
)

// Graph is the import graph of a project.
type Graph struct {
	Edges   [][]ModuleID // Edges[importer] = []imported
	Indeg   []int        // входящие степени для Kahn (учитывает только присутствующие модули)
	Present []bool       // модуль описан в манифесте, а не только импортируется
}

// ModuleNode is one loaded module handed to BuildGraph.
type ModuleNode struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

// ModuleSlot is the per-ID state after BuildGraph.
type ModuleSlot struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	FirstErr *diag.Diagnostic
}

// BuildGraph wires the imports of nodes into a graph. Imports of modules
// outside the project are reported as warnings: their headers are expected
// to exist already.
func BuildGraph(idx ModuleIndex, nodes []ModuleNode) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Name = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Name == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Name]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if node.Reporter != nil {
				b := diag.ReportError(node.Reporter, diag.ProjDuplicateModule, meta.Pos,
					fmt.Sprintf("duplicate module %q", meta.Name))
				if slot.Meta.Pos.IsValid() {
					b = b.WithNote(slot.Meta.Pos, fmt.Sprintf("previous declaration of %q", slot.Meta.Name))
				}
				b.Emit()
			}
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Name == "" {
				continue
			}
			toID, ok := idx.NameToID[dep.Name]
			if !ok {
				continue
			}
			if ModuleID(from) == toID {
				if slot.Reporter != nil {
					diag.ReportError(slot.Reporter, diag.ProjSelfImport, dep.Pos,
						fmt.Sprintf("module %q imports itself", slot.Meta.Name)).Emit()
				}
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			if !g.Present[int(toID)] {
				if slot.Reporter != nil {
					diag.ReportWarning(slot.Reporter, diag.ProjMissingModule, dep.Pos,
						fmt.Sprintf("module %q imports %q which is not part of the project", slot.Meta.Name, dep.Name)).
						WithNote(dep.Pos, fmt.Sprintf("%s_wrap.h is expected to exist", dep.Name)).
						Emit()
				}
				continue
			}
			g.Edges[from] = append(g.Edges[from], toID)
			g.Indeg[int(toID)]++
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles reports every module left in a cycle.
func ReportCycles(idx ModuleIndex, slots []ModuleSlot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("module %q participates in an import cycle: %s", slot.Meta.Name, summary)
		slot.Reporter.Report(diag.ProjImportCycle, diag.SevError, slot.Meta.Pos, msg, nil)
	}
}

// ReportBrokenDeps reports imports of modules that failed to generate.
func ReportBrokenDeps(idx ModuleIndex, slots []ModuleSlot) {
	for i := range slots {
		slotFrom := &slots[i]
		if !slotFrom.Present || slotFrom.Reporter == nil || len(slotFrom.Meta.Imports) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(slotFrom.Meta.Imports))
		for _, imp := range slotFrom.Meta.Imports {
			toID, ok := idx.NameToID[imp.Name]
			if !ok {
				continue
			}
			depSlot := slots[int(toID)]
			if !depSlot.Broken {
				continue
			}
			if _, seen := emitted[imp.Name]; seen {
				continue
			}
			emitted[imp.Name] = struct{}{}

			var notes []diag.Note
			if depSlot.FirstErr != nil {
				notes = append(notes, diag.Note{
					Pos: depSlot.FirstErr.Primary,
					Msg: fmt.Sprintf("first error in dependency: %s", depSlot.FirstErr.Message),
				})
			}

			msg := fmt.Sprintf("dependency module %q has errors", imp.Name)
			slotFrom.Reporter.Report(diag.ProjDependencyFailed, diag.SevError, imp.Pos, msg, notes)
		}
	}
}
