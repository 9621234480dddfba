package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"tracking/internal/adapters/out/postgres/orderrepo"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stage/stagetest"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// OrderRepositoryIntegrationTestSuite verifies order persistence against a real PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, stagetest.Registry())
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_NewOrder_StartsAtVersionOne() {
	ctx := context.Background()
	o := suite.newOrder(stagetest.HomeServices())

	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Equal(1, o.Version())
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_Fails() {
	ctx := context.Background()
	o := suite.newOrder(stagetest.Basic())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	again, err := order.RestoreOrder(stagetest.Basic(), order.State{
		ID:         o.ID(),
		CategoryID: stagetest.BasicID,
		CustomerID: o.CustomerID(),
		Status:     stage.Pending,
		Timestamps: order.Timestamps{stage.Pending: created},
		CreatedAt:  created,
	})
	suite.Require().NoError(err)

	suite.ErrorIs(suite.repository.Add(ctx, again), errs.ErrConflict)
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_RoundTripsEveryField() {
	ctx := context.Background()
	seq := stagetest.Basic()
	o := suite.newOrder(seq)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	worker := kernel.NewUUID()
	suite.Require().NoError(o.Advance(seq, stage.Accepted, created.Add(5*time.Minute)))
	suite.Require().NoError(o.AssignWorker(worker))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.True(got.IsEqual(o))
	suite.Equal(stagetest.BasicID, got.CategoryID())
	suite.Equal(stage.Accepted, got.Status())
	suite.True(o.CustomerID().IsEqual(got.CustomerID()))
	suite.Require().NotNil(got.WorkerID())
	suite.True(worker.IsEqual(*got.WorkerID()))
	suite.Equal(2, got.Version())
	suite.True(created.Equal(got.CreatedAt()))

	stamps := got.StageTimestamps()
	suite.Len(stamps, 2)
	suite.True(created.Equal(stamps[stage.Pending]))
	suite.True(created.Add(5 * time.Minute).Equal(stamps[stage.Accepted]))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_CancelledOrder() {
	ctx := context.Background()
	seq := stagetest.Basic()
	o := suite.newOrder(seq)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	customer, err := kernel.NewActor(o.CustomerID(), kernel.RoleCustomer)
	suite.Require().NoError(err)
	_, err = o.Cancel(seq, customer, "changed my mind", created.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.True(got.IsCancelled())
	suite.Equal("changed my mind", got.CancelReason())
	suite.Require().NotNil(got.CancelledAt())
	suite.True(created.Add(time.Minute).Equal(*got.CancelledAt()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsConflict() {
	ctx := context.Background()
	seq := stagetest.Basic()
	o := suite.newOrder(seq)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	first, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(first.Advance(seq, stage.Accepted, created.Add(time.Minute)))
	suite.Require().NoError(first.AssignWorker(kernel.NewUUID()))
	suite.Require().NoError(suite.repository.Update(ctx, first))

	suite.Require().NoError(second.Advance(seq, stage.Accepted, created.Add(2*time.Minute)))
	suite.Require().NoError(second.AssignWorker(kernel.NewUUID()))
	err = suite.repository.Update(ctx, second)

	suite.ErrorIs(err, errs.ErrConflict)
	suite.Equal(1, second.Version())

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(2, stored.Version())
	suite.True(created.Add(time.Minute).Equal(stored.StageTimestamps()[stage.Accepted]))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	o := suite.newOrder(stagetest.Basic())

	err := suite.repository.Update(context.Background(), o)

	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_UnconstructedOrder_Fails() {
	err := suite.repository.Update(context.Background(), &order.Order{})

	suite.ErrorIs(err, order.ErrOrderIsNotConstructed)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListTimestamps_FiltersByCategory() {
	ctx := context.Background()
	basic := stagetest.Basic()

	for range 2 {
		o := suite.newOrder(basic)
		suite.Require().NoError(o.Advance(basic, stage.Accepted, created.Add(10*time.Minute)))
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}
	suite.Require().NoError(suite.repository.Add(ctx, suite.newOrder(stagetest.HomeServices())))

	timelines, err := suite.repository.ListTimestamps(ctx, stagetest.BasicID)
	suite.Require().NoError(err)

	suite.Len(timelines, 2)
	for _, ts := range timelines {
		suite.True(created.Equal(ts[stage.Pending]))
		suite.True(created.Add(10 * time.Minute).Equal(ts[stage.Accepted]))
	}

	empty, err := suite.repository.ListTimestamps(ctx, "unknown")
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestOrderRepository_ConcurrentReads() {
	ctx := context.Background()
	initial := suite.newOrder(stagetest.HomeServices())
	suite.Require().NoError(suite.repository.Add(ctx, initial))

	results := make(chan *order.Order, 3)
	errors := make(chan error, 3)

	for range 3 {
		go func() {
			got, readErr := suite.repository.Get(ctx, initial.ID())
			if readErr != nil {
				errors <- readErr
			} else {
				results <- got
			}
		}()
	}

	for range 3 {
		select {
		case result := <-results:
			suite.Equal(initial.ID(), result.ID())
		case readErr := <-errors:
			suite.Failf("Unexpected error in concurrent read", "%v", readErr)
		}
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(seq *stage.Sequence) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), seq, kernel.NewUUID(), created)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
