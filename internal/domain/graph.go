package domain

type SiblingType string

const (
	SiblingFull    SiblingType = "full"
	SiblingHalf    SiblingType = "half"
	SiblingStep    SiblingType = "step"
	SiblingUnknown SiblingType = "unknown"
)

type UnionType string

const (
	UnionMarriage          UnionType = "marriage"
	UnionPartnership       UnionType = "partnership"
	UnionDonorRelationship UnionType = "donor_relationship"
	UnionOther             UnionType = "other"
)

type UnionNode struct {
	ID         string    `json:"id"`
	ParentIDs  []string  `json:"parent_ids"`
	Parents    []Person  `json:"parents"`
	UnionType  UnionType `json:"union_type"`
	Confidence float64   `json:"confidence"`
	ChildIDs   []string  `json:"child_ids"`
}

// EnhancedConnection is either a union-to-child edge (FromUnionID set) or an
// original edge passed through untouched (Original set).
type EnhancedConnection struct {
	ID               string           `json:"id"`
	FromPersonID     string           `json:"from_person_id,omitempty"`
	FromUnionID      string           `json:"from_union_id,omitempty"`
	ToPersonID       string           `json:"to_person_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Original         *Connection      `json:"original,omitempty"`
}

func (e EnhancedConnection) IsUnionEdge() bool {
	return e.FromUnionID != ""
}

type FamilyUnit struct {
	Union      UnionNode `json:"union"`
	Children   []Person  `json:"children"`
	FamilyName string    `json:"family_name"`
}

type PotentialUnion struct {
	ParentIDs      []string  `json:"parent_ids"`
	SharedChildren []string  `json:"shared_children"`
	Confidence     float64   `json:"confidence"`
	SuggestedType  UnionType `json:"suggested_type"`
}

type SingleParent struct {
	ParentID string   `json:"parent_id"`
	ChildIDs []string `json:"child_ids"`
}

type SiblingGroup struct {
	ParentID string   `json:"parent_id"`
	ChildIDs []string `json:"child_ids"`
}

type UnionAnalysis struct {
	PotentialUnions []PotentialUnion `json:"potential_unions"`
	SingleParents   []SingleParent   `json:"single_parents"`
	SiblingGroups   []SiblingGroup   `json:"sibling_groups"`
}

type UnionProcessedData struct {
	UnionNodes          []UnionNode          `json:"union_nodes"`
	EnhancedConnections []EnhancedConnection `json:"enhanced_connections"`
	FamilyUnits         []FamilyUnit         `json:"family_units"`
	Analysis            UnionAnalysis        `json:"analysis"`
}

type GenerationInfo struct {
	Generation int    `json:"generation"`
	IsDonor    bool   `json:"is_donor"`
	Color      string `json:"color"`
}

type GenerationStats struct {
	DonorCount           int         `json:"donor_count"`
	TotalGenerations     int         `json:"total_generations"`
	PersonsPerGeneration map[int]int `json:"persons_per_generation"`
}

type FamilyTreeStats struct {
	TotalPersons                int     `json:"total_persons"`
	TotalConnections            int     `json:"total_connections"`
	Generations                 int     `json:"generations"`
	RootPersons                 int     `json:"root_persons"`
	LeafPersons                 int     `json:"leaf_persons"`
	AverageConnectionsPerPerson float64 `json:"average_connections_per_person"`
}

type SiblingInfo struct {
	Person      Person      `json:"person"`
	SiblingType SiblingType `json:"sibling_type"`
}

type PersonRelations struct {
	Person                  Person        `json:"person"`
	Generation              int           `json:"generation"`
	Parents                 []Person      `json:"parents"`
	Children                []Person      `json:"children"`
	Siblings                []SiblingInfo `json:"siblings"`
	StepSiblings            []Person      `json:"step_siblings"`
	Partners                []Person      `json:"partners"`
	Donors                  []Person      `json:"donors"`
	BiologicalParents       []Person      `json:"biological_parents"`
	HasCircularRelationship bool          `json:"has_circular_relationship"`
}

// TreeView is every derived structure the UI needs to draw one family tree.
type TreeView struct {
	FamilyTreeID    string                    `json:"family_tree_id"`
	Persons         []Person                  `json:"persons"`
	Connections     []Connection              `json:"connections"`
	Generations     map[string]GenerationInfo `json:"generations"`
	GenerationStats GenerationStats           `json:"generation_stats"`
	Unions          *UnionProcessedData       `json:"unions"`
	Stats           FamilyTreeStats           `json:"stats"`
	Consistency     []string                  `json:"consistency"`
}
