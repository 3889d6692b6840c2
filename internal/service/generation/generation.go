// Package generation assigns layout generations to persons. Parent edges form
// the backbone; donors sit beside the parents they co-conceived with instead
// of above the child.
package generation

import (
	"family-connections/internal/domain"
	"family-connections/internal/pkg/graphwalk"
)

var palette = []string{
	"#2563eb",
	"#16a34a",
	"#f59e0b",
	"#db2777",
	"#0891b2",
	"#ea580c",
	"#4f46e5",
	"#65a30d",
}

func DonorColor() string {
	return domain.DonorColor
}

func Color(generation int) string {
	i := generation % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return palette[i]
}

func IsDonorConnection(t domain.RelationshipType) bool {
	return t == domain.RelTypeDonor
}

func DonorConnections(conns []domain.Connection) []domain.Connection {
	out := make([]domain.Connection, 0)
	for _, c := range conns {
		if IsDonorConnection(c.RelationshipType) {
			out = append(out, c)
		}
	}
	return out
}

func GenerationalConnections(conns []domain.Connection) []domain.Connection {
	out := make([]domain.Connection, 0, len(conns))
	for _, c := range conns {
		if !IsDonorConnection(c.RelationshipType) {
			out = append(out, c)
		}
	}
	return out
}

// Calculate returns a GenerationInfo for every person. IsDonor is true only
// for persons on the donor side of at least one donor edge; the Person.Donor
// flag alone does not make someone a donor here.
func Calculate(persons []domain.Person, conns []domain.Connection) map[string]domain.GenerationInfo {
	order := make([]string, 0, len(persons))
	for _, p := range persons {
		order = append(order, p.ID)
	}

	backbone := make(map[string][]string)
	for _, c := range GenerationalConnections(conns) {
		if c.RelationshipType == domain.RelTypeParent {
			backbone[c.ToPersonID] = appendUnique(backbone[c.ToPersonID], c.FromPersonID)
		}
	}

	donatedTo := make(map[string][]string)
	donorsOf := make(map[string][]string)
	var donorOrder []string
	for _, c := range DonorConnections(conns) {
		if _, seen := donatedTo[c.FromPersonID]; !seen {
			donorOrder = append(donorOrder, c.FromPersonID)
		}
		donatedTo[c.FromPersonID] = appendUnique(donatedTo[c.FromPersonID], c.ToPersonID)
		donorsOf[c.ToPersonID] = appendUnique(donorsOf[c.ToPersonID], c.FromPersonID)
	}

	// A child known only through donors still needs someone above it.
	placement := make(map[string][]string, len(backbone)+len(donorsOf))
	for child, parents := range backbone {
		placement[child] = parents
	}
	for child, donors := range donorsOf {
		if len(backbone[child]) == 0 {
			placement[child] = donors
		}
	}

	// Each donor is pinned to the recorded co-parents of the children it
	// contributed to.
	targets := make(map[string][]string, len(donorOrder))
	for _, d := range donorOrder {
		for _, child := range donatedTo[d] {
			for _, p := range backbone[child] {
				if p != d {
					targets[d] = appendUnique(targets[d], p)
				}
			}
		}
	}

	// A pin whose co-parent's depth depends on the donor itself (the donor is
	// also an ancestor of that co-parent) can never hold. Such donors keep
	// their unpinned depth.
	pinnable := make(map[string]bool, len(targets))
	for _, d := range donorOrder {
		if len(targets[d]) > 0 {
			pinnable[d] = true
		}
	}
	for _, d := range donorOrder {
		if pinnable[d] && dependsOnSelf(d, targets, placement, pinnable) {
			delete(pinnable, d)
		}
	}

	depths := graphwalk.Depths(order, placement, 0, nil)

	// Pinning a donor can move the co-parents other donors are pinned to. With
	// self-dependent pins removed the pins settle within one pass per donor.
	var pinned map[string]int
	for pass := 0; pass <= len(donorOrder); pass++ {
		next := make(map[string]int, len(pinnable))
		for _, d := range donorOrder {
			if !pinnable[d] {
				continue
			}
			best := depths[targets[d][0]]
			for _, p := range targets[d][1:] {
				if depths[p] > best {
					best = depths[p]
				}
			}
			next[d] = best
		}
		if equalPins(pinned, next) {
			break
		}
		pinned = next
		depths = graphwalk.Depths(order, placement, 0, pinned)
	}

	out := make(map[string]domain.GenerationInfo, len(order))
	for _, id := range order {
		_, isDonor := donatedTo[id]
		info := domain.GenerationInfo{Generation: depths[id], IsDonor: isDonor}
		if isDonor {
			info.Color = DonorColor()
		} else {
			info.Color = Color(info.Generation)
		}
		out[id] = info
	}
	return out
}

// Stats counts donors separately; the per-generation histogram holds
// non-donors only.
func Stats(gens map[string]domain.GenerationInfo) domain.GenerationStats {
	stats := domain.GenerationStats{PersonsPerGeneration: make(map[int]int)}
	for _, info := range gens {
		if info.IsDonor {
			stats.DonorCount++
			continue
		}
		stats.PersonsPerGeneration[info.Generation]++
	}
	stats.TotalGenerations = len(stats.PersonsPerGeneration)
	return stats
}

// dependsOnSelf reports whether the depth of any pin target of d is derived,
// through parents or other pins, from d.
func dependsOnSelf(d string, targets, placement map[string][]string, pinnable map[string]bool) bool {
	seen := make(map[string]bool)
	stack := append([]string(nil), targets[d]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == d {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if pinnable[id] {
			stack = append(stack, targets[id]...)
		} else {
			stack = append(stack, placement[id]...)
		}
	}
	return false
}

func equalPins(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}
