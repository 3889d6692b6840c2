package domain

type RelationshipType string

const (
	RelTypeParent           RelationshipType = "parent"
	RelTypeChild            RelationshipType = "child"
	RelTypePartner          RelationshipType = "partner"
	RelTypeSibling          RelationshipType = "sibling"
	RelTypeHalfSibling      RelationshipType = "half_sibling"
	RelTypeStepSibling      RelationshipType = "step_sibling"
	RelTypeSpouse           RelationshipType = "spouse"
	RelTypeDonor            RelationshipType = "donor"
	RelTypeBiologicalParent RelationshipType = "biological_parent"
	RelTypeSocialParent     RelationshipType = "social_parent"
	RelTypeOther            RelationshipType = "other"
)

// Legacy parent vocabulary still found in imported data. Not part of the registry.
const (
	RelTypeFather         RelationshipType = "father"
	RelTypeMother         RelationshipType = "mother"
	RelTypeAdoptiveParent RelationshipType = "adoptive_parent"
)

const DonorColor = "#8b5cf6"

type RelationshipTypeConfig struct {
	Value         RelationshipType `json:"value" yaml:"value"`
	Label         string           `json:"label" yaml:"label"`
	Icon          string           `json:"icon" yaml:"icon"`
	Color         string           `json:"color" yaml:"color"`
	Bidirectional bool             `json:"bidirectional" yaml:"bidirectional"`
	Reciprocal    RelationshipType `json:"reciprocal,omitempty" yaml:"reciprocal"`
}

// Registry is the read-only table of relationship types. Build it once and
// hand the same pointer to every component that needs type semantics.
type Registry struct {
	order   []RelationshipType
	configs map[RelationshipType]RelationshipTypeConfig
}

func NewRegistry(configs []RelationshipTypeConfig) *Registry {
	r := &Registry{
		order:   make([]RelationshipType, 0, len(configs)),
		configs: make(map[RelationshipType]RelationshipTypeConfig, len(configs)),
	}
	for _, c := range configs {
		if _, dup := r.configs[c.Value]; dup {
			continue
		}
		r.order = append(r.order, c.Value)
		r.configs[c.Value] = c
	}
	return r
}

func DefaultRegistry() *Registry {
	return NewRegistry([]RelationshipTypeConfig{
		{Value: RelTypeParent, Label: "Parent", Icon: "user-up", Color: "#2563eb", Reciprocal: RelTypeChild},
		{Value: RelTypeChild, Label: "Child", Icon: "user-down", Color: "#16a34a", Reciprocal: RelTypeParent},
		{Value: RelTypePartner, Label: "Partner", Icon: "heart", Color: "#db2777", Bidirectional: true, Reciprocal: RelTypePartner},
		{Value: RelTypeSibling, Label: "Sibling", Icon: "users", Color: "#f59e0b", Bidirectional: true, Reciprocal: RelTypeSibling},
		{Value: RelTypeHalfSibling, Label: "Half Sibling", Icon: "users", Color: "#fbbf24", Bidirectional: true, Reciprocal: RelTypeHalfSibling},
		{Value: RelTypeStepSibling, Label: "Step Sibling", Icon: "users", Color: "#fcd34d", Bidirectional: true, Reciprocal: RelTypeStepSibling},
		{Value: RelTypeSpouse, Label: "Spouse", Icon: "ring", Color: "#e11d48", Bidirectional: true, Reciprocal: RelTypeSpouse},
		{Value: RelTypeDonor, Label: "Donor", Icon: "dna", Color: DonorColor, Reciprocal: RelTypeChild},
		{Value: RelTypeBiologicalParent, Label: "Biological Parent", Icon: "dna", Color: "#0891b2", Reciprocal: RelTypeChild},
		{Value: RelTypeSocialParent, Label: "Social Parent", Icon: "home", Color: "#0d9488", Reciprocal: RelTypeChild},
		{Value: RelTypeOther, Label: "Other", Icon: "link", Color: "#6b7280"},
	})
}

func (r *Registry) AllTypes() []RelationshipType {
	out := make([]RelationshipType, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Configs() []RelationshipTypeConfig {
	out := make([]RelationshipTypeConfig, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.configs[t])
	}
	return out
}

// Config never fails: unknown types resolve to the "other" entry.
func (r *Registry) Config(t RelationshipType) RelationshipTypeConfig {
	if c, ok := r.configs[t]; ok {
		return c
	}
	if c, ok := r.configs[RelTypeOther]; ok {
		return c
	}
	return RelationshipTypeConfig{Value: RelTypeOther, Label: "Other", Icon: "link", Color: "#6b7280"}
}

func (r *Registry) IsKnown(t RelationshipType) bool {
	_, ok := r.configs[t]
	return ok
}

func (r *Registry) IsBidirectional(t RelationshipType) bool {
	return r.configs[t].Bidirectional
}

func (r *Registry) Reciprocal(t RelationshipType) (RelationshipType, bool) {
	c, ok := r.configs[t]
	if !ok || c.Reciprocal == "" {
		return "", false
	}
	return c.Reciprocal, true
}

func IsParentLike(t RelationshipType) bool {
	switch t {
	case RelTypeParent, RelTypeFather, RelTypeMother, RelTypeBiologicalParent, RelTypeAdoptiveParent:
		return true
	}
	return false
}
