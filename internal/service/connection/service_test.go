package connection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"family-connections/internal/domain"
	"family-connections/internal/mocks"
	"family-connections/internal/pkg/logger"
	"family-connections/internal/repository"
	"family-connections/internal/service/connection"
)

type fixture struct {
	conns  *mocks.ConnectionRepository
	people *mocks.PersonRepository
	audit  *mocks.AuditLogRepository
	logs   *observer.ObservedLogs
	cache  *cacheSpy
	svc    connection.Service
}

type cacheSpy struct {
	invalidated  []string
	onInvalidate func()
}

func (c *cacheSpy) InvalidateForConnection(_ context.Context, conn *domain.Connection) error {
	c.invalidated = append(c.invalidated, conn.ID)
	if c.onInvalidate != nil {
		c.onInvalidate()
	}
	return nil
}

func newFixture() *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		conns:  new(mocks.ConnectionRepository),
		people: new(mocks.PersonRepository),
		audit:  new(mocks.AuditLogRepository),
		logs:   logs,
		cache:  &cacheSpy{},
	}
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	f.svc = connection.NewService(nil, f.conns, f.people, f.audit, log)
	f.svc.SetCacheInvalidator(f.cache)
	return f
}

func edge(id, from, to string, t domain.RelationshipType) *domain.Connection {
	return &domain.Connection{ID: id, FromPersonID: from, ToPersonID: to, RelationshipType: t}
}

func TestService_CreateConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("Bidirectional input is stored canonically", func(t *testing.T) {
		f := newFixture()
		f.conns.On("Create", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.FromPersonID == "a" && c.ToPersonID == "b" && c.ID != ""
		})).Return(nil).Once()

		conn, err := f.svc.CreateConnection(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "b", ToPersonID: "a", RelationshipType: domain.RelTypeSpouse,
		})

		require.NoError(t, err)
		assert.Equal(t, "a", conn.FromPersonID)
		assert.Equal(t, []string{conn.ID}, f.cache.invalidated)
		f.conns.AssertExpectations(t)
		f.audit.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(l *domain.AuditLog) bool {
			return l.Action == "CREATE" && l.EntityType == domain.EntityConnection && l.EntityID == conn.ID
		}))
	})

	t.Run("Validation fails before any write", func(t *testing.T) {
		f := newFixture()

		conn, err := f.svc.CreateConnection(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "a", ToPersonID: "a", RelationshipType: "cousin",
		})

		var verr *connection.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Nil(t, conn)
		assert.Equal(t, []string{connection.MsgTypeInvalid, connection.MsgSelfRelation}, verr.Messages)
		f.conns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate is reported", func(t *testing.T) {
		f := newFixture()
		f.conns.On("Create", ctx, mock.Anything).
			Return(errors.Join(repository.ErrUniqueViolation, errors.New("pq: duplicate key"))).Once()

		_, err := f.svc.CreateConnection(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "a", ToPersonID: "b", RelationshipType: domain.RelTypeParent,
		})

		assert.ErrorIs(t, err, connection.ErrDuplicateConnection)
		assert.Equal(t, "this connection already exists", err.Error())
		assert.Empty(t, f.cache.invalidated)
	})
}

func TestService_CreateConnectionWithReciprocal(t *testing.T) {
	ctx := context.Background()

	t.Run("Parent gets a child mirror", func(t *testing.T) {
		f := newFixture()
		f.conns.On("Create", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.RelationshipType == domain.RelTypeParent && c.FromPersonID == "p" && c.ToPersonID == "c"
		})).Return(nil).Once()
		f.conns.On("Create", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.RelationshipType == domain.RelTypeChild && c.FromPersonID == "c" && c.ToPersonID == "p"
		})).Return(nil).Once()

		res, err := f.svc.CreateConnectionWithReciprocal(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "p", ToPersonID: "c", RelationshipType: domain.RelTypeParent,
		})

		require.NoError(t, err)
		require.NotNil(t, res.Reciprocal)
		assert.NoError(t, res.Reciprocal.Err)
		assert.Equal(t, domain.RelTypeChild, res.Reciprocal.Connection.RelationshipType)
		f.conns.AssertExpectations(t)
	})

	t.Run("Self-reciprocal type writes one edge", func(t *testing.T) {
		f := newFixture()
		f.conns.On("Create", ctx, mock.Anything).Return(nil).Once()

		res, err := f.svc.CreateConnectionWithReciprocal(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "x", ToPersonID: "y", RelationshipType: domain.RelTypeSibling,
		})

		require.NoError(t, err)
		assert.Nil(t, res.Reciprocal)
		f.conns.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Cache is invalidated after the mirror is written", func(t *testing.T) {
		f := newFixture()
		var events []string
		f.conns.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			events = append(events, "create "+string(args.Get(1).(*domain.Connection).RelationshipType))
		}).Return(nil).Twice()
		f.cache.onInvalidate = func() { events = append(events, "invalidate") }

		_, err := f.svc.CreateConnectionWithReciprocal(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "p", ToPersonID: "c", RelationshipType: domain.RelTypeParent,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"create parent", "create child", "invalidate"}, events)
	})

	t.Run("Mirror failure keeps the primary and warns", func(t *testing.T) {
		f := newFixture()
		f.conns.On("Create", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.RelationshipType == domain.RelTypeParent
		})).Return(nil).Once()
		f.conns.On("Create", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.RelationshipType == domain.RelTypeChild
		})).Return(errors.New("connection reset")).Once()

		res, err := f.svc.CreateConnectionWithReciprocal(ctx, "user-1", domain.CreateConnectionInput{
			FromPersonID: "p", ToPersonID: "c", RelationshipType: domain.RelTypeParent,
		})

		require.NoError(t, err)
		require.NotNil(t, res.Primary)
		require.NotNil(t, res.Reciprocal)
		assert.Nil(t, res.Reciprocal.Connection)
		assert.EqualError(t, res.Reciprocal.Err, "connection reset")

		warnings := f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("reciprocal connection sync failed").All()
		require.Len(t, warnings, 1)
		fields := warnings[0].ContextMap()
		assert.Equal(t, "create", fields["operation"])
		assert.Equal(t, res.Primary.ID, fields["connection_id"])
	})
}

func TestService_GetConnection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.conns.On("GetByID", ctx, "missing").Return(nil, nil).Once()

	conn, err := f.svc.GetConnection(ctx, "missing")
	assert.ErrorIs(t, err, connection.ErrConnectionNotFound)
	assert.Nil(t, conn)
}

func TestService_GetConnectionsForPerson(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.conns.On("ListByPerson", ctx, "me").Return([]domain.Connection{
		*edge("1", "mum", "me", domain.RelTypeParent),
		*edge("2", "me", "mum", domain.RelTypeChild),
		*edge("3", "me", "sis", domain.RelTypeSibling),
		*edge("4", "donor", "me", domain.RelTypeDonor),
	}, nil).Once()
	f.people.On("GetByIDs", ctx, []string{"mum", "sis", "donor"}).Return([]domain.Person{
		{ID: "mum", Name: "Ann Lee"},
		{ID: "sis", Name: "Sue Lee"},
	}, nil).Once()

	view, err := f.svc.GetConnectionsForPerson(ctx, "me")
	require.NoError(t, err)
	require.Len(t, view, 3)

	assert.Equal(t, "2", view[0].ID, "outgoing edge replaces its incoming mirror")
	assert.Equal(t, domain.DirectionOutgoing, view[0].Direction)
	assert.Equal(t, "Ann Lee", view[0].OtherPersonName)

	assert.Equal(t, "sis", view[1].OtherPersonID)

	assert.Equal(t, domain.DirectionIncoming, view[2].Direction)
	assert.Equal(t, "donor", view[2].OtherPersonName)
}

func TestService_GetConnectionsForFamilyTree(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tree := "tree-1"

	tagged := *edge("1", "a", "b", domain.RelTypeSpouse)
	tagged.FamilyTreeID = &tree
	untagged := *edge("2", "a", "c", domain.RelTypeParent)

	f.conns.On("ListByFamilyTree", ctx, tree).Return([]domain.Connection{tagged}, nil).Once()
	f.people.On("ListByFamilyTree", ctx, tree).Return([]domain.Person{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil).Once()
	f.conns.On("ListBetweenPersons", ctx, []string{"a", "b", "c"}).Return([]domain.Connection{tagged, untagged}, nil).Once()

	conns, err := f.svc.GetConnectionsForFamilyTree(ctx, tree)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "1", conns[0].ID)
	assert.Equal(t, "2", conns[1].ID)
}

func TestService_UpdateConnectionWithReciprocal(t *testing.T) {
	ctx := context.Background()

	t.Run("Type change rewrites the mirror", func(t *testing.T) {
		f := newFixture()
		existing := edge("1", "p", "c", domain.RelTypeParent)
		mirror := edge("2", "c", "p", domain.RelTypeChild)
		newType := domain.RelTypeBiologicalParent

		f.conns.On("GetByID", ctx, "1").Return(existing, nil).Once()
		f.conns.On("Update", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.ID == "1" && c.RelationshipType == domain.RelTypeBiologicalParent
		})).Return(nil).Once()
		f.conns.On("FindOne", ctx, "c", "p", domain.RelTypeChild).Return(mirror, nil).Once()
		f.conns.On("Update", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.ID == "2" && c.RelationshipType == domain.RelTypeChild && c.FromPersonID == "c"
		})).Return(nil).Once()

		res, err := f.svc.UpdateConnectionWithReciprocal(ctx, "user-1", "1", domain.UpdateConnectionInput{RelationshipType: &newType})

		require.NoError(t, err)
		assert.Equal(t, domain.RelTypeBiologicalParent, res.Primary.RelationshipType)
		require.NotNil(t, res.Reciprocal)
		assert.NoError(t, res.Reciprocal.Err)
		f.conns.AssertExpectations(t)
	})

	t.Run("Missing mirror still succeeds", func(t *testing.T) {
		f := newFixture()
		notes := "updated"
		f.conns.On("GetByID", ctx, "1").Return(edge("1", "p", "c", domain.RelTypeParent), nil).Once()
		f.conns.On("Update", ctx, mock.Anything).Return(nil).Once()
		f.conns.On("FindOne", ctx, "c", "p", domain.RelTypeChild).Return(nil, nil).Once()

		res, err := f.svc.UpdateConnectionWithReciprocal(ctx, "user-1", "1", domain.UpdateConnectionInput{Notes: &notes})

		require.NoError(t, err)
		assert.Equal(t, "updated", *res.Primary.Notes)
		assert.ErrorIs(t, res.Reciprocal.Err, connection.ErrReciprocalNotFound)
	})

	t.Run("Switching to a self-reciprocal type removes the stale mirror", func(t *testing.T) {
		f := newFixture()
		newType := domain.RelTypeSibling
		f.conns.On("GetByID", ctx, "1").Return(edge("1", "b", "a", domain.RelTypeParent), nil).Once()
		f.conns.On("Update", ctx, mock.MatchedBy(func(c *domain.Connection) bool {
			return c.FromPersonID == "a" && c.ToPersonID == "b"
		})).Return(nil).Once()
		f.conns.On("FindOne", ctx, "a", "b", domain.RelTypeChild).Return(edge("2", "a", "b", domain.RelTypeChild), nil).Once()
		var events []string
		f.conns.On("Delete", ctx, "2").Run(func(mock.Arguments) {
			events = append(events, "delete mirror")
		}).Return(nil).Once()
		f.cache.onInvalidate = func() { events = append(events, "invalidate") }

		res, err := f.svc.UpdateConnectionWithReciprocal(ctx, "user-1", "1", domain.UpdateConnectionInput{RelationshipType: &newType})

		require.NoError(t, err)
		assert.NoError(t, res.Reciprocal.Err)
		assert.Equal(t, []string{"delete mirror", "invalidate"}, events)
		f.conns.AssertExpectations(t)
	})
}

func TestService_DeleteConnectionWithReciprocal(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes mirror then primary", func(t *testing.T) {
		f := newFixture()
		f.conns.On("GetByID", ctx, "1").Return(edge("1", "p", "c", domain.RelTypeParent), nil).Once()
		f.conns.On("FindOne", ctx, "c", "p", domain.RelTypeChild).Return(edge("2", "c", "p", domain.RelTypeChild), nil).Once()

		var order []string
		f.conns.On("Delete", ctx, mock.Anything).Run(func(args mock.Arguments) {
			order = append(order, args.String(1))
		}).Return(nil).Twice()

		res, err := f.svc.DeleteConnectionWithReciprocal(ctx, "user-1", "1")

		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, order)
		assert.Equal(t, "2", res.Reciprocal.Connection.ID)
	})

	t.Run("Mirror delete failure does not block the primary", func(t *testing.T) {
		f := newFixture()
		f.conns.On("GetByID", ctx, "1").Return(edge("1", "p", "c", domain.RelTypeParent), nil).Once()
		f.conns.On("FindOne", ctx, "c", "p", domain.RelTypeChild).Return(edge("2", "c", "p", domain.RelTypeChild), nil).Once()
		f.conns.On("Delete", ctx, "2").Return(errors.New("timeout")).Once()
		f.conns.On("Delete", ctx, "1").Return(nil).Once()

		res, err := f.svc.DeleteConnectionWithReciprocal(ctx, "user-1", "1")

		require.NoError(t, err)
		assert.EqualError(t, res.Reciprocal.Err, "timeout")
		assert.Equal(t, 1, f.logs.FilterMessage("reciprocal connection sync failed").Len())
	})

	t.Run("Child side finds a donor mirror", func(t *testing.T) {
		f := newFixture()
		f.conns.On("GetByID", ctx, "1").Return(edge("1", "kid", "donor", domain.RelTypeChild), nil).Once()
		f.conns.On("FindOne", ctx, "donor", "kid", domain.RelTypeParent).Return(nil, nil).Once()
		f.conns.On("FindOne", ctx, "donor", "kid", domain.RelTypeDonor).Return(edge("2", "donor", "kid", domain.RelTypeDonor), nil).Once()
		f.conns.On("Delete", ctx, "2").Return(nil).Once()
		f.conns.On("Delete", ctx, "1").Return(nil).Once()

		res, err := f.svc.DeleteConnectionWithReciprocal(ctx, "user-1", "1")

		require.NoError(t, err)
		require.NotNil(t, res.Reciprocal)
		assert.NoError(t, res.Reciprocal.Err)
		assert.Equal(t, domain.RelTypeDonor, res.Reciprocal.Connection.RelationshipType)
		f.conns.AssertExpectations(t)
		f.conns.AssertNotCalled(t, "FindOne", ctx, "donor", "kid", domain.RelTypeBiologicalParent)
	})

	t.Run("Unknown id", func(t *testing.T) {
		f := newFixture()
		f.conns.On("GetByID", ctx, "x").Return(nil, nil).Once()

		_, err := f.svc.DeleteConnectionWithReciprocal(ctx, "user-1", "x")
		assert.ErrorIs(t, err, connection.ErrConnectionNotFound)
	})
}

func TestService_ConnectionExists(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.conns.On("Exists", ctx, "a", "b", domain.RelTypePartner, (*string)(nil)).Return(true, nil).Once()

	ok, err := f.svc.ConnectionExists(ctx, "b", "a", domain.RelTypePartner, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
