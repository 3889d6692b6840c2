package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"family-connections/internal/domain"
	"family-connections/internal/pkg/logger"
	"family-connections/internal/repository"
	"family-connections/internal/service/connection"
	"family-connections/internal/service/generation"
	"family-connections/internal/service/hierarchy"
	"family-connections/internal/service/union"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	viewKeyPattern  = "family:tree:*:view"
)

func viewKey(treeID string) string {
	return fmt.Sprintf("family:tree:%s:view", treeID)
}

// TreeConnections lists the connections that belong to one family tree.
type TreeConnections interface {
	GetConnectionsForFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error)
}

type Service interface {
	GetTreeView(ctx context.Context, treeID string) (*domain.TreeView, error)
	GetPersonRelations(ctx context.Context, treeID, personID string) (*domain.PersonRelations, error)
	GetAncestors(ctx context.Context, treeID, personID string, maxDepth int) ([]domain.Person, error)
	GetDescendants(ctx context.Context, treeID, personID string, maxDepth int) ([]domain.Person, error)
	InvalidateTree(ctx context.Context, treeID string) error
	InvalidateForConnection(ctx context.Context, conn *domain.Connection) error
}

type service struct {
	conns      TreeConnections
	personRepo repository.PersonRepository
	utils      *connection.Utils
	unions     *union.Processor
	redis      *redis.Client
	ttl        time.Duration
	log        *logger.Logger
}

func NewService(conns TreeConnections, personRepo repository.PersonRepository, utils *connection.Utils, unions *union.Processor, redis *redis.Client, ttl time.Duration, log *logger.Logger) Service {
	if utils == nil {
		utils = connection.NewUtils(nil)
	}
	if unions == nil {
		unions = union.NewProcessor(union.DefaultConfig())
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		conns:      conns,
		personRepo: personRepo,
		utils:      utils,
		unions:     unions,
		redis:      redis,
		ttl:        ttl,
		log:        log,
	}
}

func (s *service) GetTreeView(ctx context.Context, treeID string) (*domain.TreeView, error) {
	cacheKey := viewKey(treeID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var view domain.TreeView
			if json.Unmarshal([]byte(cached), &view) == nil {
				return &view, nil
			}
		}
	}

	persons, conns, err := s.snapshot(ctx, treeID)
	if err != nil {
		return nil, err
	}

	h := hierarchy.New(persons, conns)
	gens := generation.Calculate(persons, conns)

	view := &domain.TreeView{
		FamilyTreeID:    treeID,
		Persons:         persons,
		Connections:     conns,
		Generations:     gens,
		GenerationStats: generation.Stats(gens),
		Unions:          s.unions.ProcessConnections(persons, conns),
		Stats:           h.Stats(),
		Consistency:     h.ValidateRelationshipConsistency(),
	}

	if s.redis != nil {
		if viewJSON, err := json.Marshal(view); err == nil {
			if err := s.redis.Set(ctx, cacheKey, viewJSON, s.ttl).Err(); err != nil {
				s.log.Warn("failed to cache tree view", "tree_id", treeID, "error", err)
			}
		}
	}

	return view, nil
}

func (s *service) GetPersonRelations(ctx context.Context, treeID, personID string) (*domain.PersonRelations, error) {
	h, err := s.hierarchy(ctx, treeID)
	if err != nil {
		return nil, err
	}
	rel, ok := h.Relations(personID)
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	return rel, nil
}

func (s *service) GetAncestors(ctx context.Context, treeID, personID string, maxDepth int) ([]domain.Person, error) {
	h, err := s.hierarchy(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if _, ok := h.Person(personID); !ok {
		return nil, domain.ErrPersonNotFound
	}
	return h.Ancestors(personID, maxDepth), nil
}

func (s *service) GetDescendants(ctx context.Context, treeID, personID string, maxDepth int) ([]domain.Person, error) {
	h, err := s.hierarchy(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if _, ok := h.Person(personID); !ok {
		return nil, domain.ErrPersonNotFound
	}
	return h.Descendants(personID, maxDepth), nil
}

func (s *service) InvalidateTree(ctx context.Context, treeID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, viewKey(treeID)).Err()
}

// InvalidateForConnection drops the view of the tree the connection is tagged
// with. An untagged connection can appear in any tree holding both persons,
// so every cached view goes.
func (s *service) InvalidateForConnection(ctx context.Context, conn *domain.Connection) error {
	if s.redis == nil {
		return nil
	}
	if conn.FamilyTreeID != nil {
		return s.InvalidateTree(ctx, *conn.FamilyTreeID)
	}

	var keys []string
	iter := s.redis.Scan(ctx, 0, viewKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.redis.Del(ctx, keys...).Err()
}

func (s *service) hierarchy(ctx context.Context, treeID string) (*hierarchy.Hierarchy, error) {
	persons, conns, err := s.snapshot(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return hierarchy.New(persons, conns), nil
}

// snapshot loads the tree members and their connections with bidirectional
// edges in canonical direction and duplicates removed.
func (s *service) snapshot(ctx context.Context, treeID string) ([]domain.Person, []domain.Connection, error) {
	persons, err := s.personRepo.ListByFamilyTree(ctx, treeID)
	if err != nil {
		return nil, nil, err
	}

	conns, err := s.conns.GetConnectionsForFamilyTree(ctx, treeID)
	if err != nil {
		return nil, nil, err
	}

	canonical := make([]domain.Connection, 0, len(conns))
	for _, c := range conns {
		canonical = append(canonical, s.utils.Canonicalize(c))
	}
	return persons, s.utils.Deduplicate(canonical), nil
}
