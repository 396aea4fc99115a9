package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/ddd"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type discardTracker struct{}

func (discardTracker) Track(ddd.EventSource) {}

type QueriesIntegrationTestSuite struct {
	suite.Suite
	container   *postgres.PostgresContainer
	db          *gorm.DB
	couriers    *courierrepo.GormCourierRepository
	orders      *orderrepo.GormOrderRepository
	allCouriers queries.GetAllCouriersQueryHandler
	busy        queries.GetBusyCouriersQueryHandler
	uncompleted queries.GetUncompletedOrdersQueryHandler
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&courierrepo.CourierDTO{},
		&courierrepo.StoragePlaceDTO{},
		&orderrepo.OrderDTO{},
	))

	suite.couriers = courierrepo.NewGormCourierRepository(db)
	suite.orders = orderrepo.NewGormOrderRepository(db, discardTracker{})
	suite.allCouriers = queries.NewGetAllCouriersQueryHandler(db)
	suite.busy = queries.NewGetBusyCouriersQueryHandler(db)
	suite.uncompleted = queries.NewGetUncompletedOrdersQueryHandler(db)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers, storage_places, orders").Error)
}

func (suite *QueriesIntegrationTestSuite) addCourier(name string, x, y kernel.Coordinate) *courier.Courier {
	location, err := kernel.NewLocation(x, y)
	suite.Require().NoError(err)
	c, err := courier.NewCourier(kernel.NewUUID(), name, 2, location)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.couriers.Add(context.Background(), c))
	return c
}

func (suite *QueriesIntegrationTestSuite) addOrder(x, y kernel.Coordinate) *order.Order {
	location, err := kernel.NewLocation(x, y)
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), location, 3)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orders.Add(context.Background(), o))
	return o
}

func (suite *QueriesIntegrationTestSuite) assign(o *order.Order, c *courier.Courier) {
	ctx := context.Background()
	suite.Require().NoError(o.Assign(c.ID()))
	suite.Require().NoError(c.TakeOrder(o))
	suite.Require().NoError(suite.orders.Update(ctx, o))
	suite.Require().NoError(suite.couriers.Update(ctx, c))
}

func (suite *QueriesIntegrationTestSuite) TestGetAllCouriers_EmptyDatabase_ReturnsEmptySlice() {
	result, err := suite.allCouriers.Handle(context.Background(), queries.NewGetAllCouriersQuery())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *QueriesIntegrationTestSuite) TestGetAllCouriers_ReturnsCouriersOrderedByName() {
	charlie := suite.addCourier("Charlie", 10, 10)
	alice := suite.addCourier("Alice", 3, 4)

	result, err := suite.allCouriers.Handle(context.Background(), queries.NewGetAllCouriersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.Equal(alice.ID(), result[0].ID)
	suite.Equal(alice.Location(), result[0].Location)
	suite.Equal(charlie.ID(), result[1].ID)
}

func (suite *QueriesIntegrationTestSuite) TestGetBusyCouriers_ReturnsOnlyCouriersHoldingOrders() {
	busy := suite.addCourier("Busy", 1, 1)
	suite.addCourier("Idle", 2, 2)
	suite.assign(suite.addOrder(5, 5), busy)

	result, err := suite.busy.Handle(context.Background(), queries.NewGetBusyCouriersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(busy.ID(), result[0].ID)
	suite.Equal("Busy", result[0].Name)
}

func (suite *QueriesIntegrationTestSuite) TestGetUncompletedOrders_ExcludesCompleted() {
	c := suite.addCourier("Bob", 1, 1)
	created := suite.addOrder(3, 3)
	assigned := suite.addOrder(4, 4)
	suite.assign(assigned, c)

	completed := suite.addOrder(6, 6)
	suite.Require().NoError(completed.Assign(kernel.NewUUID()))
	suite.Require().NoError(completed.Complete())
	suite.Require().NoError(suite.orders.Update(context.Background(), completed))

	result, err := suite.uncompleted.Handle(context.Background(), queries.NewGetUncompletedOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.Equal(created.ID(), result[0].ID)
	suite.Equal(order.Created, result[0].Status)
	suite.Nil(result[0].CourierID)
	suite.Equal(assigned.ID(), result[1].ID)
	suite.Equal(order.Assigned, result[1].Status)
	suite.Require().NotNil(result[1].CourierID)
	suite.Equal(c.ID(), *result[1].CourierID)
}

func (suite *QueriesIntegrationTestSuite) TestHandle_CancelledContext_ReturnsError() {
	suite.addCourier("Alice", 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := suite.allCouriers.Handle(ctx, queries.NewGetAllCouriersQuery())

	suite.Require().Error(err)
	suite.Nil(result)
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
