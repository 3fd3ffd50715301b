package scene

import (
	"fmt"

	"github.com/nanoubon/hatyai-flood-simulation/pkg/geo"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/label"
	"github.com/nanoubon/hatyai-flood-simulation/pkg/validation"
)

// boundsTolerance absorbs float noise when comparing boxes.
const boundsTolerance = 1e-6

// ValidateGraph performs structural validation on a scene graph snapshot.
// It checks entity integrity, group index consistency, mesh buffers, and
// bounds enclosure.
func ValidateGraph(g *Graph) *validation.Report {
	r := validation.NewReport()

	if g == nil {
		r.AddError(validation.Result{
			Level:   validation.LevelScene,
			Message: "scene graph is nil",
		})
		return r
	}

	validateEntityIDs(g, r)
	validateGroupIndices(g, r)
	validateGroupMembership(g, r)
	validateMeshBuffers(g, r)
	validateLabels(g, r)
	validateBoundsEnclosure(g, r)

	return r
}

func validateEntityIDs(g *Graph, r *validation.Report) {
	seen := make(map[string]int, len(g.Entities))

	for i, e := range g.Entities {
		if e.ID == "" {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity at index %d has empty ID", i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: "",
				Expected:    "non-empty string",
			})
			continue
		}
		if prev, exists := seen[e.ID]; exists {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("duplicate entity ID %q at indices %d and %d", e.ID, prev, i),
				Path:        fmt.Sprintf("entities[%d].id", i),
				ActualValue: e.ID,
			})
		}
		seen[e.ID] = i
	}
}

func validateGroupIndices(g *Graph, r *validation.Report) {
	entityIDs := make(map[string]bool, len(g.Entities))
	for _, e := range g.Entities {
		entityIDs[e.ID] = true
	}

	checkGroup := func(groupType, groupName string, ids []string) {
		for _, id := range ids {
			if !entityIDs[id] {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("group %s.%s references non-existent entity %q", groupType, groupName, id),
					Path:        fmt.Sprintf("groups.%s.%s", groupType, groupName),
					ActualValue: id,
					Expected:    "existing entity ID",
				})
			}
		}
	}

	for name, ids := range g.Groups.Types {
		checkGroup("types", string(name), ids)
	}
	for name, ids := range g.Groups.Materials {
		checkGroup("materials", name, ids)
	}
}

func validateGroupMembership(g *Graph, r *validation.Report) {
	typeMembers := make(map[EntityType]map[string]bool, len(g.Groups.Types))
	for t, ids := range g.Groups.Types {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		typeMembers[t] = m
	}

	for _, e := range g.Entities {
		if e.ID == "" {
			continue
		}
		if !typeMembers[e.Type][e.ID] {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q has type %q but is not in types group", e.ID, e.Type),
				Path:        fmt.Sprintf("groups.types.%s", e.Type),
				ActualValue: e.ID,
			})
		}

		payloads := 0
		if e.Mesh != nil {
			payloads++
		}
		if e.Sprite != nil {
			payloads++
		}
		if e.Light != nil {
			payloads++
		}
		if payloads != 1 {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q carries %d payloads", e.ID, payloads),
				Path:        fmt.Sprintf("entities.%s", e.ID),
				ActualValue: payloads,
				Expected:    "exactly one of mesh, sprite, light",
			})
		}
	}
}

// validateMeshBuffers checks that index buffers describe whole triangles
// inside the position buffer.
func validateMeshBuffers(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		m := e.Mesh
		if m == nil {
			continue
		}
		if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("mesh %q index count is not a positive multiple of 3", e.ID),
				Path:        fmt.Sprintf("entities.%s.mesh.indices", e.ID),
				ActualValue: len(m.Indices),
			})
			continue
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Positions) {
				r.AddError(validation.Result{
					Level:       validation.LevelScene,
					Message:     fmt.Sprintf("mesh %q index %d out of range", e.ID, idx),
					Path:        fmt.Sprintf("entities.%s.mesh.indices", e.ID),
					ActualValue: idx,
					Expected:    fmt.Sprintf("< %d", len(m.Positions)),
				})
				break
			}
		}
	}
}

// validateLabels warns about labels that would be hidden behind geometry.
func validateLabels(g *Graph, r *validation.Report) {
	for _, e := range g.Entities {
		s := e.Sprite
		if s == nil {
			continue
		}
		if s.DepthTest || s.RenderOrder < label.RenderOrder {
			r.AddWarning(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("label %q can be occluded by buildings", e.ID),
				Path:        fmt.Sprintf("entities.%s.sprite", e.ID),
				ActualValue: s.RenderOrder,
				Expected:    fmt.Sprintf(">= %d without depth test", label.RenderOrder),
			})
		}
	}
}

func validateBoundsEnclosure(g *Graph, r *validation.Report) {
	bounds := g.Metadata.Bounds
	for _, e := range g.Entities {
		if e.Light != nil || e.Bounds.IsEmpty() {
			continue
		}
		if !encloses(bounds, e.Bounds) {
			r.AddError(validation.Result{
				Level:       validation.LevelScene,
				Message:     fmt.Sprintf("entity %q extends outside scene bounds", e.ID),
				Path:        "metadata.bounds",
				ActualValue: e.ID,
			})
		}
	}
}

func encloses(outer, inner geo.Box) bool {
	return inner.Min.X >= outer.Min.X-boundsTolerance &&
		inner.Min.Y >= outer.Min.Y-boundsTolerance &&
		inner.Min.Z >= outer.Min.Z-boundsTolerance &&
		inner.Max.X <= outer.Max.X+boundsTolerance &&
		inner.Max.Y <= outer.Max.Y+boundsTolerance &&
		inner.Max.Z <= outer.Max.Z+boundsTolerance
}
