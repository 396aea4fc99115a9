package cmd

import (
	"dispatch/internal/adapters/in/http"
	kafkain "dispatch/internal/adapters/in/kafka"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outbox"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompositionRoot builds use cases and their adapters from shared infrastructure.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *logrus.Entry
	codec      *outbox.Codec
	uowFactory *postgres.GormUnitOfWorkFactory
	random     kernel.RandomSource
	geo        ports.GeoClient
	publisher  ports.EventPublisher
}

// NewCompositionRoot takes the event publisher from the caller so the process decides its lifecycle.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	geo ports.GeoClient,
	publisher ports.EventPublisher,
	logger *logrus.Entry,
) *CompositionRoot {
	codec := NewEventCodec()
	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		codec:      codec,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, codec),
		random:     kernel.NewLockedRandomSource(kernel.NewSeededRandomSource(0)),
		geo:        geo,
		publisher:  publisher,
	}
}

// NewEventCodec registers every event the outbox may hold.
func NewEventCodec() *outbox.Codec {
	codec := outbox.NewCodec()
	codec.Register(order.StatusChangedEventName, order.DecodeStatusChangedEvent)
	return codec
}

func (c *CompositionRoot) CreateAddCourierStorageCommandHandler() commands.AddCourierStorageCommandHandler {
	return commands.NewAddCourierStorageCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.courierUoWFactory(), c.random)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.geo, c.random)
}

func (c *CompositionRoot) CreateMoveCouriersCommandHandler() commands.MoveCouriersCommandHandler {
	return commands.NewMoveCouriersCommandHandler(c.dispatchUoWFactory())
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.dispatchUoWFactory(), services.NewOrderDispatcher())
}

func (c *CompositionRoot) CreateProcessOutboxMessagesCommandHandler() commands.ProcessOutboxMessagesCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessOutboxMessagesCommandHandler(f, c.codec, c.publisher, nil)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBusyCouriersQueryHandler() queries.GetBusyCouriersQueryHandler {
	return queries.NewGetBusyCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() (*http.Server, error) {
	contract, err := http.LoadContract()
	if err != nil {
		return nil, err
	}
	return http.NewServer(http.Handlers{
		CreateCourier:        c.CreateCreateCourierCommandHandler(),
		AddCourierStorage:    c.CreateAddCourierStorageCommandHandler(),
		CreateOrder:          c.CreateCreateOrderCommandHandler(),
		GetAllCouriers:       c.CreateGetAllCouriersQueryHandler(),
		GetBusyCouriers:      c.CreateGetBusyCouriersQueryHandler(),
		GetUncompletedOrders: c.CreateGetUncompletedOrdersQueryHandler(),
	}, contract, c.logger)
}

// CreateJobs returns the manager and the outbox job, which the outbox listener triggers.
func (c *CompositionRoot) CreateJobs() (*jobs.JobManager, *jobs.OutboxJob, error) {
	assignment, err := jobs.NewCourierAssignmentJob(c.CreateAssignCourierCommandHandler(), c.cfg.AssignInterval, c.logger)
	if err != nil {
		return nil, nil, err
	}
	movement, err := jobs.NewCourierMovementJob(c.CreateMoveCouriersCommandHandler(), c.cfg.MoveInterval, c.logger)
	if err != nil {
		return nil, nil, err
	}
	relay, err := jobs.NewOutboxJob(
		c.CreateProcessOutboxMessagesCommandHandler(),
		c.cfg.OutboxInterval,
		c.cfg.OutboxBatchSize,
		c.logger,
	)
	if err != nil {
		return nil, nil, err
	}
	return jobs.NewJobManager(assignment, movement, relay), relay, nil
}

func (c *CompositionRoot) CreateBasketConfirmedConsumer(group sarama.ConsumerGroup) (*kafkain.BasketConfirmedConsumer, error) {
	return kafkain.NewBasketConfirmedConsumer(
		group,
		c.cfg.KafkaBasketConfirmedTopic,
		c.CreateCreateOrderCommandHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateOutboxListener() *postgres.OutboxListener {
	return postgres.NewOutboxListener(c.cfg.DSN(), c.logger)
}

func (c *CompositionRoot) courierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) dispatchUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
