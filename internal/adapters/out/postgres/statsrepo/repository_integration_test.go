package statsrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"tracking/internal/adapters/out/postgres/statsrepo"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const category = "home-services"

type StatsRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *statsrepo.GormStatsRepository
}

func (suite *StatsRepositoryIntegrationTestSuite) SetupSuite() {
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

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&statsrepo.StageStatsDTO{}))
}

func (suite *StatsRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE stage_duration_stats").Error)
	suite.repository = statsrepo.NewGormStatsRepository(suite.db)
}

func (suite *StatsRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *StatsRepositoryIntegrationTestSuite) TestRecordDwell_FirstSampleInserts() {
	ctx := context.Background()

	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Accepted, 10*time.Minute))

	entry := suite.lookup(stage.Accepted)
	suite.Equal(10*time.Minute, entry.Average())
	suite.Equal(1, entry.Samples())
}

func (suite *StatsRepositoryIntegrationTestSuite) TestRecordDwell_FoldsIncrementalMean() {
	ctx := context.Background()

	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Accepted, 10*time.Minute))
	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Accepted, 10*time.Minute))
	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Accepted, 10*time.Minute))
	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Accepted, 30*time.Minute))

	entry := suite.lookup(stage.Accepted)
	suite.Equal(15*time.Minute, entry.Average())
	suite.Equal(4, entry.Samples())
}

func (suite *StatsRepositoryIntegrationTestSuite) TestRecordDwell_ConcurrentWritersLoseNoSample() {
	ctx := context.Background()
	const writers = 10

	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- suite.repository.RecordDwell(ctx, category, stage.InProgress, time.Minute)
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		suite.Require().NoError(err)
	}

	entry := suite.lookup(stage.InProgress)
	suite.Equal(writers, entry.Samples())
	suite.Equal(time.Minute, entry.Average())
}

func (suite *StatsRepositoryIntegrationTestSuite) TestGetByCategory_UnknownCategory_ReturnsEmptyTable() {
	table, err := suite.repository.GetByCategory(context.Background(), "unknown")

	suite.Require().NoError(err)
	suite.Empty(table.Entries())
}

func (suite *StatsRepositoryIntegrationTestSuite) TestReplace_SwapsCategoryRows() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Pending, time.Minute))
	suite.Require().NoError(suite.repository.RecordDwell(ctx, "basic", stage.Pending, time.Minute))

	accepted, err := stats.NewStageDuration(category, stage.Accepted, 20*time.Minute, 7)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Replace(ctx, category, []stats.StageDuration{accepted}))

	table, err := suite.repository.GetByCategory(ctx, category)
	suite.Require().NoError(err)
	suite.Len(table.Entries(), 1)
	_, hasPending := table.Lookup(stage.Pending)
	suite.False(hasPending)
	entry, ok := table.Lookup(stage.Accepted)
	suite.Require().True(ok)
	suite.Equal(20*time.Minute, entry.Average())
	suite.Equal(7, entry.Samples())

	other, err := suite.repository.GetByCategory(ctx, "basic")
	suite.Require().NoError(err)
	suite.Len(other.Entries(), 1)
}

func (suite *StatsRepositoryIntegrationTestSuite) TestReplace_EmptyEntriesClearsCategory() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.RecordDwell(ctx, category, stage.Pending, time.Minute))

	suite.Require().NoError(suite.repository.Replace(ctx, category, nil))

	table, err := suite.repository.GetByCategory(ctx, category)
	suite.Require().NoError(err)
	suite.Empty(table.Entries())
}

func (suite *StatsRepositoryIntegrationTestSuite) lookup(key stage.Key) stats.StageDuration {
	table, err := suite.repository.GetByCategory(context.Background(), category)
	suite.Require().NoError(err)
	entry, ok := table.Lookup(key)
	suite.Require().True(ok, "no statistics for %s", key)
	return entry
}

func TestStatsRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StatsRepositoryIntegrationTestSuite))
}
