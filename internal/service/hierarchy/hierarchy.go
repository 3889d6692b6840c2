// Package hierarchy answers kinship questions over an in-memory snapshot of
// persons and connections. A Hierarchy is immutable once built and safe for
// concurrent readers.
package hierarchy

import (
	"fmt"
	"strings"

	"family-connections/internal/domain"
	"family-connections/internal/pkg/graphwalk"
)

const DefaultMaxDepth = 10

type Option func(*Hierarchy)

// WithBaseGeneration sets the generation given to persons without parents.
func WithBaseGeneration(base int) Option {
	return func(h *Hierarchy) {
		h.base = base
	}
}

type Hierarchy struct {
	order       []string
	persons     map[string]domain.Person
	conns       []domain.Connection
	base        int
	parentsOf   map[string][]string
	childrenOf  map[string][]string
	stepParents map[string][]string
	generations map[string]int
}

func New(persons []domain.Person, conns []domain.Connection, opts ...Option) *Hierarchy {
	h := &Hierarchy{
		order:       make([]string, 0, len(persons)),
		persons:     make(map[string]domain.Person, len(persons)),
		conns:       conns,
		parentsOf:   make(map[string][]string),
		childrenOf:  make(map[string][]string),
		stepParents: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(h)
	}

	for _, p := range persons {
		if _, dup := h.persons[p.ID]; dup {
			continue
		}
		h.order = append(h.order, p.ID)
		h.persons[p.ID] = p
	}

	for _, c := range conns {
		if c.RelationshipType != domain.RelTypeParent {
			continue
		}
		h.parentsOf[c.ToPersonID] = appendUnique(h.parentsOf[c.ToPersonID], c.FromPersonID)
		h.childrenOf[c.FromPersonID] = appendUnique(h.childrenOf[c.FromPersonID], c.ToPersonID)
		if c.Metadata.Step {
			h.stepParents[c.ToPersonID] = appendUnique(h.stepParents[c.ToPersonID], c.FromPersonID)
		}
	}

	h.generations = graphwalk.Depths(h.order, h.parentsOf, h.base, nil)
	return h
}

func (h *Hierarchy) Person(id string) (domain.Person, bool) {
	p, ok := h.persons[id]
	return p, ok
}

func (h *Hierarchy) Persons() []domain.Person {
	return h.resolve(h.order)
}

func (h *Hierarchy) Connections() []domain.Connection {
	return h.conns
}

func (h *Hierarchy) Parents(id string) []domain.Person {
	return h.resolve(h.parentsOf[id])
}

func (h *Hierarchy) Children(id string) []domain.Person {
	return h.resolve(h.childrenOf[id])
}

func (h *Hierarchy) Siblings(id string) []domain.Person {
	return h.resolve(h.siblingIDs(id))
}

func (h *Hierarchy) siblingIDs(id string) []string {
	var out []string
	for _, p := range h.parentsOf[id] {
		for _, c := range h.childrenOf[p] {
			if c != id {
				out = appendUnique(out, c)
			}
		}
	}
	return out
}

// bloodParents are parents recorded without the step tag.
func (h *Hierarchy) bloodParents(id string) []string {
	var out []string
	for _, p := range h.parentsOf[id] {
		if !contains(h.stepParents[id], p) {
			out = append(out, p)
		}
	}
	return out
}

// stepParentIDs returns parents tagged as step plus partners of blood
// parents who are not parents themselves.
func (h *Hierarchy) stepParentIDs(id string) []string {
	out := append([]string(nil), h.stepParents[id]...)
	blood := h.bloodParents(id)
	for _, p := range blood {
		for _, partner := range h.partnerIDs(p) {
			if partner != id && !contains(blood, partner) {
				out = appendUnique(out, partner)
			}
		}
	}
	return out
}

func (h *Hierarchy) SiblingType(a, b string) domain.SiblingType {
	bloodA, bloodB := h.bloodParents(a), h.bloodParents(b)
	shared := 0
	for _, p := range bloodA {
		if contains(bloodB, p) {
			shared++
		}
	}
	switch {
	case shared >= 2:
		return domain.SiblingFull
	case shared == 1:
		return domain.SiblingHalf
	}

	figuresA := append(append([]string(nil), bloodA...), h.stepParentIDs(a)...)
	figuresB := append(append([]string(nil), bloodB...), h.stepParentIDs(b)...)
	for _, p := range figuresA {
		if contains(figuresB, p) {
			return domain.SiblingStep
		}
	}

	return h.declaredSiblingType(a, b)
}

// declaredSiblingType falls back to an explicit sibling edge when the parents
// say nothing.
func (h *Hierarchy) declaredSiblingType(a, b string) domain.SiblingType {
	for _, c := range h.conns {
		if !linksPair(c, a, b) {
			continue
		}
		switch c.RelationshipType {
		case domain.RelTypeStepSibling:
			return domain.SiblingStep
		case domain.RelTypeHalfSibling:
			return domain.SiblingHalf
		case domain.RelTypeSibling:
			switch {
			case c.Metadata.StepSibling || c.Metadata.Step:
				return domain.SiblingStep
			case c.Metadata.Half:
				return domain.SiblingHalf
			case c.Metadata.Full:
				return domain.SiblingFull
			}
		}
	}
	return domain.SiblingUnknown
}

func (h *Hierarchy) SiblingsWithType(id string) []domain.SiblingInfo {
	ids := h.siblingIDs(id)
	out := make([]domain.SiblingInfo, 0, len(ids))
	for _, p := range h.resolve(ids) {
		out = append(out, domain.SiblingInfo{Person: p, SiblingType: h.SiblingType(id, p.ID)})
	}
	return out
}

func (h *Hierarchy) partnerIDs(id string) []string {
	var out []string
	for _, c := range h.conns {
		if c.RelationshipType != domain.RelTypePartner && c.RelationshipType != domain.RelTypeSpouse {
			continue
		}
		switch id {
		case c.FromPersonID:
			out = appendUnique(out, c.ToPersonID)
		case c.ToPersonID:
			out = appendUnique(out, c.FromPersonID)
		}
	}
	return out
}

func (h *Hierarchy) Partners(id string) []domain.Person {
	return h.resolve(h.partnerIDs(id))
}

func (h *Hierarchy) Donors(id string) []domain.Person {
	var ids []string
	for _, c := range h.conns {
		if c.RelationshipType == domain.RelTypeDonor && c.ToPersonID == id {
			ids = appendUnique(ids, c.FromPersonID)
		}
	}
	return h.resolve(ids)
}

func (h *Hierarchy) BiologicalParents(id string) []domain.Person {
	var ids []string
	for _, c := range h.conns {
		if c.ToPersonID != id {
			continue
		}
		if c.RelationshipType == domain.RelTypeBiologicalParent ||
			(c.RelationshipType == domain.RelTypeParent && c.Metadata.Biological) {
			ids = appendUnique(ids, c.FromPersonID)
		}
	}
	return h.resolve(ids)
}

func (h *Hierarchy) StepSiblings(id string) []domain.Person {
	var candidates []string
	figures := append(append([]string(nil), h.bloodParents(id)...), h.stepParentIDs(id)...)
	for _, p := range figures {
		for _, c := range h.childrenOf[p] {
			if c != id {
				candidates = appendUnique(candidates, c)
			}
		}
	}
	for _, c := range h.conns {
		if c.RelationshipType != domain.RelTypeStepSibling {
			continue
		}
		switch id {
		case c.FromPersonID:
			candidates = appendUnique(candidates, c.ToPersonID)
		case c.ToPersonID:
			candidates = appendUnique(candidates, c.FromPersonID)
		}
	}

	var out []string
	for _, c := range candidates {
		if h.SiblingType(id, c) == domain.SiblingStep {
			out = append(out, c)
		}
	}
	return h.resolve(out)
}

// Generation returns the longest parent chain above id, offset by the base.
// Parent edges that close a cycle are ignored.
func (h *Hierarchy) Generation(id string) int {
	if g, ok := h.generations[id]; ok {
		return g
	}
	return h.base
}

func (h *Hierarchy) Generations() map[string]int {
	out := make(map[string]int, len(h.order))
	for _, id := range h.order {
		out[id] = h.Generation(id)
	}
	return out
}

// Ancestors lists every person reachable through parent edges within
// maxDepth levels, nearest first. maxDepth <= 0 means DefaultMaxDepth.
func (h *Hierarchy) Ancestors(id string, maxDepth int) []domain.Person {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	ids, _ := graphwalk.Levels(id, h.parentsOf, maxDepth)
	return h.resolve(ids)
}

func (h *Hierarchy) Descendants(id string, maxDepth int) []domain.Person {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	ids, _ := graphwalk.Levels(id, h.childrenOf, maxDepth)
	return h.resolve(ids)
}

func (h *Hierarchy) HasCircularRelationship(id string) bool {
	return graphwalk.ReachesCycle(id, h.childrenOf)
}

func (h *Hierarchy) Relations(id string) (*domain.PersonRelations, bool) {
	p, ok := h.persons[id]
	if !ok {
		return nil, false
	}
	return &domain.PersonRelations{
		Person:                  p,
		Generation:              h.Generation(id),
		Parents:                 h.Parents(id),
		Children:                h.Children(id),
		Siblings:                h.SiblingsWithType(id),
		StepSiblings:            h.StepSiblings(id),
		Partners:                h.Partners(id),
		Donors:                  h.Donors(id),
		BiologicalParents:       h.BiologicalParents(id),
		HasCircularRelationship: h.HasCircularRelationship(id),
	}, true
}

// ValidateAgeConsistency reports parent edges whose child is not strictly
// younger than the parent. Edges with an unknown birth date on either side
// are skipped.
func (h *Hierarchy) ValidateAgeConsistency() []string {
	errs := make([]string, 0)
	for _, c := range h.conns {
		if c.RelationshipType != domain.RelTypeParent {
			continue
		}
		parent, okP := h.persons[c.FromPersonID]
		child, okC := h.persons[c.ToPersonID]
		if !okP || !okC || parent.DateOfBirth == nil || child.DateOfBirth == nil {
			continue
		}
		if child.DateOfBirth.Compare(*parent.DateOfBirth) <= 0 {
			errs = append(errs, fmt.Sprintf("%s (born %s) is not younger than parent %s (born %s)",
				child.DisplayName(), child.DateOfBirth, parent.DisplayName(), parent.DateOfBirth))
		}
	}
	return errs
}

func (h *Hierarchy) ValidateRelationshipConsistency() []string {
	errs := make([]string, 0)
	for _, id := range h.order {
		if h.HasCircularRelationship(id) {
			p := h.persons[id]
			errs = append(errs, fmt.Sprintf("circular relationship detected involving %s", p.DisplayName()))
		}
	}

	errs = append(errs, h.ValidateAgeConsistency()...)

	seen := make(map[string]bool, len(h.conns))
	for _, c := range h.conns {
		k := strings.Join([]string{c.FromPersonID, c.ToPersonID, string(c.RelationshipType)}, "|")
		if seen[k] {
			errs = append(errs, fmt.Sprintf("duplicate %s connection from %s to %s",
				c.RelationshipType, h.name(c.FromPersonID), h.name(c.ToPersonID)))
			continue
		}
		seen[k] = true
	}
	return errs
}

func (h *Hierarchy) Stats() domain.FamilyTreeStats {
	stats := domain.FamilyTreeStats{
		TotalPersons:     len(h.order),
		TotalConnections: len(h.conns),
	}

	distinct := make(map[int]struct{})
	for _, id := range h.order {
		distinct[h.Generation(id)] = struct{}{}
		if len(h.parentsOf[id]) == 0 {
			stats.RootPersons++
		}
		if len(h.childrenOf[id]) == 0 {
			stats.LeafPersons++
		}
	}
	stats.Generations = len(distinct)

	if stats.TotalPersons > 0 {
		stats.AverageConnectionsPerPerson = float64(stats.TotalConnections) / float64(stats.TotalPersons)
	}
	return stats
}

func (h *Hierarchy) name(id string) string {
	if p, ok := h.persons[id]; ok {
		return p.DisplayName()
	}
	return id
}

// resolve maps ids to persons, dropping ids that are not in the snapshot.
func (h *Hierarchy) resolve(ids []string) []domain.Person {
	out := make([]domain.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := h.persons[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func linksPair(c domain.Connection, a, b string) bool {
	return (c.FromPersonID == a && c.ToPersonID == b) || (c.FromPersonID == b && c.ToPersonID == a)
}

func appendUnique(list []string, id string) []string {
	if contains(list, id) {
		return list
	}
	return append(list, id)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
