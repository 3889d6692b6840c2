package connection

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"family-connections/internal/domain"
	"family-connections/internal/pkg/logger"
	"family-connections/internal/repository"
)

var (
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrDuplicateConnection = errors.New("this connection already exists")
	ErrReciprocalNotFound  = errors.New("reciprocal connection not found")
)

type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid connection: " + strings.Join(e.Messages, "; ")
}

// CacheInvalidator drops derived views that may include the given connection.
type CacheInvalidator interface {
	InvalidateForConnection(ctx context.Context, conn *domain.Connection) error
}

type Service interface {
	CreateConnection(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.Connection, error)
	CreateConnectionWithReciprocal(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.ConnectionResult, error)
	GetConnection(ctx context.Context, id string) (*domain.Connection, error)
	GetConnectionsForPerson(ctx context.Context, personID string) ([]domain.PersonConnection, error)
	GetConnectionsForFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error)
	UpdateConnection(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.Connection, error)
	UpdateConnectionWithReciprocal(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.ConnectionResult, error)
	DeleteConnection(ctx context.Context, userID, id string) error
	DeleteConnectionWithReciprocal(ctx context.Context, userID, id string) (*domain.ConnectionResult, error)
	ConnectionExists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error)
	Validate(input domain.CreateConnectionInput) []string
	SetCacheInvalidator(cache CacheInvalidator)
}

type service struct {
	utils      *Utils
	connRepo   repository.ConnectionRepository
	personRepo repository.PersonRepository
	auditRepo  repository.AuditLogRepository
	log        *logger.Logger
	cache      CacheInvalidator
}

func NewService(utils *Utils, connRepo repository.ConnectionRepository, personRepo repository.PersonRepository, auditRepo repository.AuditLogRepository, log *logger.Logger) Service {
	if utils == nil {
		utils = NewUtils(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		utils:      utils,
		connRepo:   connRepo,
		personRepo: personRepo,
		auditRepo:  auditRepo,
		log:        log,
	}
}

func (s *service) SetCacheInvalidator(cache CacheInvalidator) {
	s.cache = cache
}

func (s *service) Validate(input domain.CreateConnectionInput) []string {
	return s.utils.Validate(input)
}

func (s *service) CreateConnection(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.Connection, error) {
	conn, err := s.insert(ctx, input)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, "CREATE", nil, conn)
	return conn, nil
}

// CreateConnectionWithReciprocal writes the primary edge first. The mirrored
// edge is best-effort: its failure is logged and reported in the result, and
// the primary edge stays.
func (s *service) CreateConnectionWithReciprocal(ctx context.Context, userID string, input domain.CreateConnectionInput) (*domain.ConnectionResult, error) {
	primary, err := s.insert(ctx, input)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, userID, "CREATE", nil, primary)
	defer s.invalidate(ctx, primary)

	result := &domain.ConnectionResult{Primary: primary}
	recType, ok := s.distinctReciprocal(primary.RelationshipType)
	if !ok {
		return result, nil
	}

	recInput := input
	recInput.FromPersonID = primary.ToPersonID
	recInput.ToPersonID = primary.FromPersonID
	recInput.RelationshipType = recType

	rec, err := s.insert(ctx, recInput)
	result.Reciprocal = s.reciprocalOutcome("create", primary, rec, err)
	return result, nil
}

func (s *service) GetConnection(ctx context.Context, id string) (*domain.Connection, error) {
	return s.getExisting(ctx, id)
}

func (s *service) GetConnectionsForPerson(ctx context.Context, personID string) ([]domain.PersonConnection, error) {
	conns, err := s.connRepo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(conns))
	seenIDs := make(map[string]bool)
	for _, c := range conns {
		other := otherEnd(c, personID)
		if !seenIDs[other] {
			seenIDs[other] = true
			otherIDs = append(otherIDs, other)
		}
	}

	names := make(map[string]string, len(otherIDs))
	if len(otherIDs) > 0 {
		persons, err := s.personRepo.GetByIDs(ctx, otherIDs)
		if err != nil {
			return nil, err
		}
		for i := range persons {
			names[persons[i].ID] = persons[i].DisplayName()
		}
	}

	result := make([]domain.PersonConnection, 0, len(conns))
	index := make(map[string]int, len(conns))
	for _, c := range conns {
		pc := domain.PersonConnection{Connection: c, OtherPersonID: otherEnd(c, personID)}
		if c.FromPersonID == personID {
			pc.Direction = domain.DirectionOutgoing
		} else {
			pc.Direction = domain.DirectionIncoming
		}
		pc.OtherPersonName = names[pc.OtherPersonID]
		if pc.OtherPersonName == "" {
			pc.OtherPersonName = pc.OtherPersonID
		}

		k := s.viewKey(pc)
		if i, seen := index[k]; seen {
			if result[i].Direction == domain.DirectionIncoming && pc.Direction == domain.DirectionOutgoing {
				result[i] = pc
			}
			continue
		}
		index[k] = len(result)
		result = append(result, pc)
	}
	return result, nil
}

// GetConnectionsForFamilyTree returns edges tagged with the tree plus untagged
// edges whose two ends are both members of the tree.
func (s *service) GetConnectionsForFamilyTree(ctx context.Context, treeID string) ([]domain.Connection, error) {
	tagged, err := s.connRepo.ListByFamilyTree(ctx, treeID)
	if err != nil {
		return nil, err
	}

	members, err := s.personRepo.ListByFamilyTree(ctx, treeID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]string, 0, len(members))
	for _, p := range members {
		memberIDs = append(memberIDs, p.ID)
	}

	between, err := s.connRepo.ListBetweenPersons(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(tagged)+len(between))
	out := make([]domain.Connection, 0, len(tagged)+len(between))
	for _, c := range tagged {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	for _, c := range between {
		if c.FamilyTreeID != nil || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

func (s *service) UpdateConnection(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.Connection, error) {
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.applyUpdate(ctx, existing, input)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, "UPDATE", existing, updated)
	return updated, nil
}

func (s *service) UpdateConnectionWithReciprocal(ctx context.Context, userID, id string, input domain.UpdateConnectionInput) (*domain.ConnectionResult, error) {
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	primary, err := s.applyUpdate(ctx, existing, input)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, userID, "UPDATE", existing, primary)
	defer s.invalidate(ctx, primary)

	result := &domain.ConnectionResult{Primary: primary}
	newRec, needsMirror := s.distinctReciprocal(primary.RelationshipType)

	oldRec, hadMirror := s.distinctReciprocal(existing.RelationshipType)
	if !hadMirror {
		if needsMirror {
			rec, err := s.insert(ctx, mirrorInput(primary, newRec))
			result.Reciprocal = s.reciprocalOutcome("update", primary, rec, err)
		}
		return result, nil
	}

	rec, err := s.connRepo.FindOne(ctx, existing.ToPersonID, existing.FromPersonID, oldRec)
	if err != nil {
		result.Reciprocal = s.reciprocalOutcome("update", primary, nil, err)
		return result, nil
	}
	if rec == nil {
		result.Reciprocal = s.reciprocalOutcome("update", primary, nil, ErrReciprocalNotFound)
		return result, nil
	}

	if !needsMirror {
		// The new type mirrors onto itself, so the old mirror is stale.
		err := s.translate(s.connRepo.Delete(ctx, rec.ID))
		result.Reciprocal = s.reciprocalOutcome("update", primary, nil, err)
		return result, nil
	}

	mirrored := *rec
	mirrored.FromPersonID = primary.ToPersonID
	mirrored.ToPersonID = primary.FromPersonID
	mirrored.RelationshipType = newRec
	mirrored.Notes = primary.Notes
	mirrored.Metadata = primary.Metadata

	if err := s.connRepo.Update(ctx, &mirrored); err != nil {
		result.Reciprocal = s.reciprocalOutcome("update", primary, nil, s.translate(err))
		return result, nil
	}
	result.Reciprocal = s.reciprocalOutcome("update", primary, &mirrored, nil)
	return result, nil
}

func (s *service) DeleteConnection(ctx context.Context, userID, id string) error {
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}
	if err := s.connRepo.Delete(ctx, existing.ID); err != nil {
		return s.translate(err)
	}
	s.afterWrite(ctx, userID, "DELETE", existing, nil)
	return nil
}

// DeleteConnectionWithReciprocal removes the mirrored edge before the primary
// one. Only the primary delete can fail the call.
func (s *service) DeleteConnectionWithReciprocal(ctx context.Context, userID, id string) (*domain.ConnectionResult, error) {
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &domain.ConnectionResult{Primary: existing}
	if mirrorTypes := s.utils.MirrorTypes(existing.RelationshipType); len(mirrorTypes) > 0 {
		rec, err := s.findMirror(ctx, existing, mirrorTypes)
		switch {
		case err != nil:
			result.Reciprocal = s.reciprocalOutcome("delete", existing, nil, err)
		case rec == nil:
			result.Reciprocal = s.reciprocalOutcome("delete", existing, nil, ErrReciprocalNotFound)
		default:
			err := s.translate(s.connRepo.Delete(ctx, rec.ID))
			result.Reciprocal = s.reciprocalOutcome("delete", existing, rec, err)
		}
	}

	if err := s.connRepo.Delete(ctx, existing.ID); err != nil {
		return nil, s.translate(err)
	}
	s.afterWrite(ctx, userID, "DELETE", existing, nil)
	return result, nil
}

func (s *service) ConnectionExists(ctx context.Context, fromID, toID string, relType domain.RelationshipType, scopeID *string) (bool, error) {
	from, to := s.utils.CanonicalDirection(fromID, toID, relType)
	return s.connRepo.Exists(ctx, from, to, relType, scopeID)
}

func (s *service) insert(ctx context.Context, input domain.CreateConnectionInput) (*domain.Connection, error) {
	if msgs := s.utils.Validate(input); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	from, to := s.utils.CanonicalDirection(input.FromPersonID, input.ToPersonID, input.RelationshipType)
	conn := &domain.Connection{
		ID:               uuid.NewString(),
		FromPersonID:     from,
		ToPersonID:       to,
		RelationshipType: input.RelationshipType,
		FamilyTreeID:     input.FamilyTreeID,
		GroupID:          input.GroupID,
		OrganizationID:   input.OrganizationID,
		Notes:            input.Notes,
		Metadata:         input.Metadata,
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, s.translate(err)
	}
	return conn, nil
}

func (s *service) applyUpdate(ctx context.Context, existing *domain.Connection, input domain.UpdateConnectionInput) (*domain.Connection, error) {
	updated := *existing
	if input.RelationshipType != nil {
		updated.RelationshipType = *input.RelationshipType
	}
	if input.Notes != nil {
		updated.Notes = input.Notes
	}
	if input.Metadata != nil {
		updated.Metadata = *input.Metadata
	}

	if msgs := s.utils.Validate(createInput(updated)); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}
	updated = s.utils.Canonicalize(updated)

	if err := s.connRepo.Update(ctx, &updated); err != nil {
		return nil, s.translate(err)
	}
	return &updated, nil
}

func (s *service) getExisting(ctx context.Context, id string) (*domain.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

// findMirror returns the first reversed edge carrying one of types.
func (s *service) findMirror(ctx context.Context, conn *domain.Connection, types []domain.RelationshipType) (*domain.Connection, error) {
	for _, t := range types {
		rec, err := s.connRepo.FindOne(ctx, conn.ToPersonID, conn.FromPersonID, t)
		if err != nil || rec != nil {
			return rec, err
		}
	}
	return nil, nil
}

func (s *service) distinctReciprocal(t domain.RelationshipType) (domain.RelationshipType, bool) {
	rec, ok := s.utils.ReciprocalType(t)
	if !ok || rec == t {
		return "", false
	}
	return rec, true
}

func (s *service) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUniqueViolation):
		return ErrDuplicateConnection
	case errors.Is(err, repository.ErrNotFound):
		return ErrConnectionNotFound
	}
	return err
}

func (s *service) reciprocalOutcome(op string, primary, rec *domain.Connection, err error) *domain.ReciprocalOutcome {
	out := &domain.ReciprocalOutcome{Connection: rec}
	if err == nil {
		return out
	}

	out.Err = err
	out.Error = err.Error()
	kv := []interface{}{
		"operation", op,
		"connection_id", primary.ID,
		"from", primary.FromPersonID,
		"to", primary.ToPersonID,
		"type", primary.RelationshipType,
		"error", err,
	}
	if errors.Is(err, ErrReciprocalNotFound) {
		s.log.Info("reciprocal connection missing", kv...)
	} else {
		s.log.Warn("reciprocal connection sync failed", kv...)
	}
	return out
}

func (s *service) afterWrite(ctx context.Context, userID, action string, oldConn, newConn *domain.Connection) {
	s.audit(ctx, userID, action, oldConn, newConn)
	if newConn != nil {
		s.invalidate(ctx, newConn)
	} else {
		s.invalidate(ctx, oldConn)
	}
}

func (s *service) audit(ctx context.Context, userID, action string, oldConn, newConn *domain.Connection) {
	entity := newConn
	if entity == nil {
		entity = oldConn
	}

	input := domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     action,
		EntityType: domain.EntityConnection,
		EntityID:   entity.ID,
	}
	if oldConn != nil {
		input.OldValue = oldConn
	}
	if newConn != nil {
		input.NewValue = newConn
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, input)
}

// invalidate runs once the whole write, mirror included, is done.
func (s *service) invalidate(ctx context.Context, conn *domain.Connection) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateForConnection(ctx, conn); err != nil {
		s.log.Warn("failed to invalidate tree cache", "connection_id", conn.ID, "error", err)
	}
}

// viewKey identifies the logical relationship from the viewing person's side,
// so an edge and its mirror collapse onto the same key.
func (s *service) viewKey(pc domain.PersonConnection) string {
	if pc.Direction == domain.DirectionOutgoing {
		return pc.OtherPersonID + "\x00" + string(pc.RelationshipType)
	}
	if rec, ok := s.utils.ReciprocalType(pc.RelationshipType); ok {
		return pc.OtherPersonID + "\x00" + string(rec)
	}
	return pc.OtherPersonID + "\x00in\x00" + string(pc.RelationshipType)
}

func otherEnd(c domain.Connection, personID string) string {
	if c.FromPersonID == personID {
		return c.ToPersonID
	}
	return c.FromPersonID
}

func createInput(c domain.Connection) domain.CreateConnectionInput {
	return domain.CreateConnectionInput{
		FromPersonID:     c.FromPersonID,
		ToPersonID:       c.ToPersonID,
		RelationshipType: c.RelationshipType,
		FamilyTreeID:     c.FamilyTreeID,
		GroupID:          c.GroupID,
		OrganizationID:   c.OrganizationID,
		Notes:            c.Notes,
		Metadata:         c.Metadata,
	}
}

func mirrorInput(c *domain.Connection, recType domain.RelationshipType) domain.CreateConnectionInput {
	in := createInput(*c)
	in.FromPersonID, in.ToPersonID = c.ToPersonID, c.FromPersonID
	in.RelationshipType = recType
	return in
}
