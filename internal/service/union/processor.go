// Package union infers co-parent unions from parent edges and rewrites the
// graph so each union becomes a single node above its children.
package union

import (
	"fmt"
	"sort"
	"strings"

	"family-connections/internal/domain"
)

// Scoring constants. They are tuning values, not invariants.
const (
	baseConfidence     = 0.5
	partnerBonus       = 0.3
	perChildBonus      = 0.1
	maxSharedChildGain = 0.2
)

type Config struct {
	MinSharedChildren    int  `json:"min_shared_children"`
	IncludeSingleParents bool `json:"include_single_parents"`
	GroupSiblings        bool `json:"group_siblings"`
}

func DefaultConfig() Config {
	return Config{
		MinSharedChildren:    1,
		IncludeSingleParents: false,
		GroupSiblings:        true,
	}
}

type Processor struct {
	cfg Config
}

func NewProcessor(cfg Config) *Processor {
	if cfg.MinSharedChildren < 1 {
		cfg.MinSharedChildren = 1
	}
	return &Processor{cfg: cfg}
}

func (p *Processor) Config() Config {
	return p.cfg
}

var (
	marriageTypes    = []string{"spouse", "married", "husband", "wife"}
	partnershipTypes = []string{"partner", "girlfriend", "boyfriend"}
)

// graph is the parent/child view of one input snapshot. Lists keep first-seen
// order so every derived id is reproducible.
type graph struct {
	persons    map[string]domain.Person
	conns      []domain.Connection
	childOrder []string
	parentsOf  map[string][]string
	childrenOf map[string][]string
	parentList []string
}

func newGraph(persons []domain.Person, conns []domain.Connection) *graph {
	g := &graph{
		persons:    make(map[string]domain.Person, len(persons)),
		conns:      conns,
		parentsOf:  make(map[string][]string),
		childrenOf: make(map[string][]string),
	}
	for _, p := range persons {
		g.persons[p.ID] = p
	}
	for _, c := range conns {
		if !domain.IsParentLike(c.RelationshipType) && c.RelationshipType != domain.RelTypeDonor {
			continue
		}
		if _, seen := g.parentsOf[c.ToPersonID]; !seen {
			g.childOrder = append(g.childOrder, c.ToPersonID)
		}
		if _, seen := g.childrenOf[c.FromPersonID]; !seen {
			g.parentList = append(g.parentList, c.FromPersonID)
		}
		g.parentsOf[c.ToPersonID] = appendUnique(g.parentsOf[c.ToPersonID], c.FromPersonID)
		g.childrenOf[c.FromPersonID] = appendUnique(g.childrenOf[c.FromPersonID], c.ToPersonID)
	}
	return g
}

// ProcessConnections is pure: identical input always yields identical output.
func (p *Processor) ProcessConnections(persons []domain.Person, conns []domain.Connection) *domain.UnionProcessedData {
	g := newGraph(persons, conns)
	analysis := p.analyze(g)
	nodes := p.createUnionNodes(g, analysis)
	enhanced := createEnhancedConnections(conns, nodes)
	units := createFamilyUnits(g, nodes, enhanced)

	return &domain.UnionProcessedData{
		UnionNodes:          nodes,
		EnhancedConnections: enhanced,
		FamilyUnits:         units,
		Analysis:            analysis,
	}
}

func (p *Processor) analyze(g *graph) domain.UnionAnalysis {
	analysis := domain.UnionAnalysis{
		PotentialUnions: make([]domain.PotentialUnion, 0),
		SingleParents:   make([]domain.SingleParent, 0),
		SiblingGroups:   make([]domain.SiblingGroup, 0),
	}

	grouped := make(map[string]bool)
	seenSets := make(map[string]bool)
	for _, child := range g.childOrder {
		parents := g.parentsOf[child]
		if len(parents) < 2 {
			continue
		}
		set := sortedCopy(parents)
		key := strings.Join(set, "\x00")
		if seenSets[key] {
			continue
		}
		seenSets[key] = true

		shared := g.sharedChildren(set)
		if len(shared) < p.cfg.MinSharedChildren {
			continue
		}

		analysis.PotentialUnions = append(analysis.PotentialUnions, domain.PotentialUnion{
			ParentIDs:      set,
			SharedChildren: shared,
			Confidence:     g.confidence(set, len(shared)),
			SuggestedType:  g.suggestType(set),
		})
		for _, id := range set {
			grouped[id] = true
		}
	}

	for _, parent := range g.parentList {
		children := g.childrenOf[parent]
		if !grouped[parent] && len(children) >= 1 {
			analysis.SingleParents = append(analysis.SingleParents, domain.SingleParent{
				ParentID: parent,
				ChildIDs: append([]string(nil), children...),
			})
		}
		if p.cfg.GroupSiblings && len(children) >= 2 {
			analysis.SiblingGroups = append(analysis.SiblingGroups, domain.SiblingGroup{
				ParentID: parent,
				ChildIDs: append([]string(nil), children...),
			})
		}
	}
	return analysis
}

// sharedChildren intersects the child lists of every parent in the set,
// keeping the order of the first parent's list.
func (g *graph) sharedChildren(parentIDs []string) []string {
	shared := make([]string, 0)
	for _, c := range g.childrenOf[parentIDs[0]] {
		inAll := true
		for _, p := range parentIDs[1:] {
			if !contains(g.childrenOf[p], c) {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, c)
		}
	}
	return shared
}

func (g *graph) confidence(parentIDs []string, sharedCount int) float64 {
	score := baseConfidence
	if g.pairLinked(parentIDs, marriageTypes) || g.pairLinked(parentIDs, partnershipTypes) {
		score += partnerBonus
	}
	gain := perChildBonus * float64(sharedCount)
	if gain > maxSharedChildGain {
		gain = maxSharedChildGain
	}
	score += gain
	if score > 1 {
		score = 1
	}
	return score
}

func (g *graph) suggestType(parentIDs []string) domain.UnionType {
	switch {
	case g.pairLinked(parentIDs, marriageTypes):
		return domain.UnionMarriage
	case g.pairLinked(parentIDs, partnershipTypes):
		return domain.UnionPartnership
	case g.involvesDonor(parentIDs):
		return domain.UnionDonorRelationship
	}
	return domain.UnionOther
}

// pairLinked reports whether any two of the ids share an edge whose type is
// one of types.
func (g *graph) pairLinked(ids []string, types []string) bool {
	for _, c := range g.conns {
		if !contains(types, string(c.RelationshipType)) {
			continue
		}
		if c.FromPersonID != c.ToPersonID && contains(ids, c.FromPersonID) && contains(ids, c.ToPersonID) {
			return true
		}
	}
	return false
}

func (g *graph) involvesDonor(ids []string) bool {
	for _, id := range ids {
		if g.persons[id].Donor {
			return true
		}
	}
	for _, c := range g.conns {
		if c.RelationshipType == domain.RelTypeDonor && contains(ids, c.FromPersonID) {
			return true
		}
	}
	return false
}

func (p *Processor) createUnionNodes(g *graph, analysis domain.UnionAnalysis) []domain.UnionNode {
	nodes := make([]domain.UnionNode, 0, len(analysis.PotentialUnions))
	for _, pu := range analysis.PotentialUnions {
		nodes = append(nodes, domain.UnionNode{
			ID:         unionID(len(nodes), pu.ParentIDs),
			ParentIDs:  pu.ParentIDs,
			Parents:    g.resolve(pu.ParentIDs),
			UnionType:  pu.SuggestedType,
			Confidence: pu.Confidence,
			ChildIDs:   pu.SharedChildren,
		})
	}

	if p.cfg.IncludeSingleParents {
		for _, sp := range analysis.SingleParents {
			ids := []string{sp.ParentID}
			nodes = append(nodes, domain.UnionNode{
				ID:         unionID(len(nodes), ids),
				ParentIDs:  ids,
				Parents:    g.resolve(ids),
				UnionType:  g.suggestType(ids),
				Confidence: baseConfidence,
				ChildIDs:   sp.ChildIDs,
			})
		}
	}
	return nodes
}

func unionID(index int, sortedParentIDs []string) string {
	return fmt.Sprintf("union_%d_%s", index, strings.Join(sortedParentIDs, "_"))
}

// createEnhancedConnections routes parent edges through the union that owns
// both the parent and the child. Everything else passes through unchanged.
func createEnhancedConnections(conns []domain.Connection, nodes []domain.UnionNode) []domain.EnhancedConnection {
	out := make([]domain.EnhancedConnection, 0, len(conns))
	emitted := make(map[string]bool)

	for _, c := range conns {
		if domain.IsParentLike(c.RelationshipType) {
			if node, ok := owningUnion(nodes, c.FromPersonID, c.ToPersonID); ok {
				id := node.ID + "_to_" + c.ToPersonID
				if !emitted[id] {
					emitted[id] = true
					out = append(out, domain.EnhancedConnection{
						ID:               id,
						FromUnionID:      node.ID,
						ToPersonID:       c.ToPersonID,
						RelationshipType: domain.RelTypeParent,
					})
				}
				continue
			}
		}
		original := c
		out = append(out, domain.EnhancedConnection{
			ID:               c.ID,
			FromPersonID:     c.FromPersonID,
			ToPersonID:       c.ToPersonID,
			RelationshipType: c.RelationshipType,
			Original:         &original,
		})
	}
	return out
}

func owningUnion(nodes []domain.UnionNode, parentID, childID string) (domain.UnionNode, bool) {
	for _, n := range nodes {
		if contains(n.ParentIDs, parentID) && contains(n.ChildIDs, childID) {
			return n, true
		}
	}
	return domain.UnionNode{}, false
}

func createFamilyUnits(g *graph, nodes []domain.UnionNode, enhanced []domain.EnhancedConnection) []domain.FamilyUnit {
	units := make([]domain.FamilyUnit, 0, len(nodes))
	for _, n := range nodes {
		var childIDs []string
		for _, e := range enhanced {
			if e.FromUnionID == n.ID {
				childIDs = appendUnique(childIDs, e.ToPersonID)
			}
		}

		unit := domain.FamilyUnit{Union: n, Children: g.resolve(childIDs)}
		if len(n.Parents) > 0 {
			unit.FamilyName = n.Parents[0].Surname()
		}
		units = append(units, unit)
	}
	return units
}

func (g *graph) resolve(ids []string) []domain.Person {
	out := make([]domain.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := g.persons[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
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
