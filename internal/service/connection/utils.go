package connection

import (
	"strings"

	"family-connections/internal/domain"
)

const (
	MsgFromRequired = "From person is required"
	MsgToRequired   = "To person is required"
	MsgTypeRequired = "Relationship type is required"
	MsgTypeInvalid  = "Invalid relationship type"
	MsgSelfRelation = "A person cannot have a relationship with themselves"
)

// Utils holds the edge-level rules. Every type decision goes through the registry.
type Utils struct {
	registry *domain.Registry
}

func NewUtils(registry *domain.Registry) *Utils {
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	return &Utils{registry: registry}
}

func (u *Utils) Registry() *domain.Registry {
	return u.registry
}

func (u *Utils) IsBidirectional(t domain.RelationshipType) bool {
	return u.registry.IsBidirectional(t)
}

func (u *Utils) ReciprocalType(t domain.RelationshipType) (domain.RelationshipType, bool) {
	return u.registry.Reciprocal(t)
}

// MirrorTypes lists the types a mirrored edge of type t may carry: the
// reciprocal first, then every type whose own reciprocal is t. A child edge can
// be mirrored by parent, donor, biological_parent or social_parent.
func (u *Utils) MirrorTypes(t domain.RelationshipType) []domain.RelationshipType {
	var out []domain.RelationshipType
	if rec, ok := u.ReciprocalType(t); ok && rec != t {
		out = append(out, rec)
	}
	for _, cfg := range u.registry.Configs() {
		if cfg.Reciprocal != t || cfg.Value == t {
			continue
		}
		if len(out) > 0 && out[0] == cfg.Value {
			continue
		}
		out = append(out, cfg.Value)
	}
	return out
}

// CanonicalDirection orders bidirectional pairs by id so that either argument
// order yields the same (from, to). Directional types keep the caller's order.
func (u *Utils) CanonicalDirection(a, b string, t domain.RelationshipType) (string, string) {
	if u.IsBidirectional(t) && b < a {
		return b, a
	}
	return a, b
}

func (u *Utils) Canonicalize(c domain.Connection) domain.Connection {
	c.FromPersonID, c.ToPersonID = u.CanonicalDirection(c.FromPersonID, c.ToPersonID, c.RelationshipType)
	return c
}

func (u *Utils) AreEquivalent(x, y domain.Connection) bool {
	if x.RelationshipType != y.RelationshipType {
		return false
	}
	if x.FromPersonID == y.FromPersonID && x.ToPersonID == y.ToPersonID {
		return true
	}
	return u.IsBidirectional(x.RelationshipType) &&
		x.FromPersonID == y.ToPersonID && x.ToPersonID == y.FromPersonID
}

func (u *Utils) key(c domain.Connection) string {
	from, to := u.CanonicalDirection(c.FromPersonID, c.ToPersonID, c.RelationshipType)
	return strings.Join([]string{string(c.RelationshipType), from, to}, "\x00")
}

// Deduplicate keeps the first edge of every equivalence class, in input order.
func (u *Utils) Deduplicate(edges []domain.Connection) []domain.Connection {
	seen := make(map[string]struct{}, len(edges))
	out := make([]domain.Connection, 0, len(edges))
	for _, e := range edges {
		k := u.key(e)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Validate returns every rule the input breaks; an empty slice means valid.
func (u *Utils) Validate(input domain.CreateConnectionInput) []string {
	errs := make([]string, 0)
	if strings.TrimSpace(input.FromPersonID) == "" {
		errs = append(errs, MsgFromRequired)
	}
	if strings.TrimSpace(input.ToPersonID) == "" {
		errs = append(errs, MsgToRequired)
	}
	if input.RelationshipType == "" {
		errs = append(errs, MsgTypeRequired)
	} else if !u.registry.IsKnown(input.RelationshipType) {
		errs = append(errs, MsgTypeInvalid)
	}
	if input.FromPersonID != "" && input.FromPersonID == input.ToPersonID {
		errs = append(errs, MsgSelfRelation)
	}
	return errs
}

func (u *Utils) Exists(edges []domain.Connection, from, to string, t domain.RelationshipType) bool {
	want := domain.Connection{FromPersonID: from, ToPersonID: to, RelationshipType: t}
	for _, e := range edges {
		if u.AreEquivalent(e, want) {
			return true
		}
	}
	return false
}
