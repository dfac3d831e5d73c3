package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	kafkain "orderflow/internal/adapters/in/kafka"
	"orderflow/internal/adapters/out/azuremaps"
	"orderflow/internal/adapters/out/eventbus"
	"orderflow/internal/adapters/out/geocache"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/inventoryrepo"
	"orderflow/internal/adapters/out/yamlrepo"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/application/usecases/stages"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// CompositionRoot owns the long-lived dependencies of the serve command.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	registry  *prometheus.Registry
	publisher ports.EventPublisher
	ledger    *inventory.Ledger
	stock     ports.InventoryRepository
	geocoder  ports.Geocoder
	router    ports.Router
	timer     ports.TravelTimer
	planner   services.DeliveryPlanner
	warehouse kernel.Coordinate
	tracker   *jobs.DeliveryTracker

	closers []func() error
}

// NewCompositionRoot builds every adapter from cfg. Close releases them.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(c.registry)

	warehouse, err := kernel.NewCoordinate(cfg.WarehouseLatitude, cfg.WarehouseLongitude)
	if err != nil {
		return nil, fmt.Errorf("warehouse position: %w", err)
	}
	c.warehouse = warehouse

	sampler, err := services.NewRouteSampler(cfg.WaypointCount)
	if err != nil {
		return nil, fmt.Errorf("waypoint count: %w", err)
	}
	c.planner = services.NewDeliveryPlanner(sampler)

	if c.ledger, err = inventory.NewLedger(nil); err != nil {
		return nil, err
	}

	transport, err := c.newTransport()
	if err != nil {
		return nil, c.fail(err)
	}
	c.publisher = eventbus.NewPublisher(transport, logger)

	if c.stock, err = c.newInventoryRepository(ctx); err != nil {
		return nil, c.fail(err)
	}

	maps := c.newMapsClient()
	c.router = maps
	c.timer = maps
	c.geocoder = c.newGeocoder(ctx, maps)

	streamer := jobs.NewDeliveryStreamer(c.publisher, cfg.PacingInterval, logger)
	c.tracker = jobs.NewDeliveryTracker(streamer, logger)

	return c, nil
}

func (c *CompositionRoot) CreateReceiveOrderCommandHandler() *commands.ReceiveOrderCommandHandler {
	h := commands.NewReceiveOrderCommandHandler(c.publisher)
	return &h
}

func (c *CompositionRoot) CreateCheckInventoryCommandHandler() *commands.CheckInventoryCommandHandler {
	h := commands.NewCheckInventoryCommandHandler(c.ledger, c.publisher, c.logger)
	return &h
}

func (c *CompositionRoot) CreateProcessFieldServiceEventCommandHandler() *commands.ProcessFieldServiceEventCommandHandler {
	h := commands.NewProcessFieldServiceEventCommandHandler(
		c.publisher, c.geocoder, c.router, c.tracker, c.planner, c.warehouse, c.logger)
	return &h
}

func (c *CompositionRoot) CreateGetInventoryQueryHandler() queries.GetInventoryQueryHandler {
	return queries.NewGetInventoryQueryHandler(c.ledger)
}

func (c *CompositionRoot) CreateEstimateTravelTimeQueryHandler() queries.EstimateTravelTimeQueryHandler {
	return queries.NewEstimateTravelTimeQueryHandler(c.geocoder, c.timer, c.warehouse)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.tracker)
}

// CreateDispatcher routes decoded events to the stage handlers.
func (c *CompositionRoot) CreateDispatcher() *stages.Dispatcher {
	return stages.NewDispatcher(
		c.CreateProcessFieldServiceEventCommandHandler(),
		c.CreateCheckInventoryCommandHandler(),
		c.publisher,
		c.cfg.DeadLetterEnabled(),
		c.logger,
	)
}

// CreateHTTPRouter mounts the intake, the event webhook and the admin API.
func (c *CompositionRoot) CreateHTTPRouter(dispatcher *stages.Dispatcher) *echo.Echo {
	server := httpin.NewServer(
		c.CreateReceiveOrderCommandHandler(),
		c.CreateEstimateTravelTimeQueryHandler(),
		dispatcher,
		c.tracker,
		c.CreateGetInventoryQueryHandler(),
		c.CreateGetActiveDeliveriesQueryHandler(),
		c.logger,
	)
	return httpin.NewRouter(server, c.registry, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	refresh := jobs.NewInventoryRefreshJob(c.stock, c.ledger, c.cfg.InventoryRefreshSchedule, c.logger)
	return jobs.NewJobManager(refresh, c.tracker)
}

// CreateKafkaConsumer subscribes the stages to the orders and warehouse topics.
// It returns nil unless the bus is Kafka and consuming is enabled.
func (c *CompositionRoot) CreateKafkaConsumer(dispatcher *stages.Dispatcher) *kafkain.Consumer {
	if c.cfg.BusBackend != BusKafka || !c.cfg.KafkaConsume {
		return nil
	}
	names := c.topicNames()
	consumer := kafkain.NewConsumer(c.logger)
	consumer.Subscribe(c.cfg.KafkaHost, c.cfg.KafkaConsumerGroup, names[event.TopicOrders],
		stages.StageFieldService, dispatcher.FieldService)
	consumer.Subscribe(c.cfg.KafkaHost, c.cfg.KafkaConsumerGroup, names[event.TopicWarehouse],
		stages.StageWarehouse, dispatcher.Warehouse)
	return consumer
}

// Close releases the bus and storage connections in reverse order.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		closeErrs = append(closeErrs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(closeErrs...)
}

func (c *CompositionRoot) fail(err error) error {
	return errors.Join(err, c.Close())
}

func (c *CompositionRoot) topicNames() eventbus.TopicNames {
	names := eventbus.DefaultTopicNames(c.cfg.TopicPrefix)
	if c.cfg.DeadLetterTopic != "" {
		names[event.TopicDeadLetter] = c.cfg.DeadLetterTopic
	}
	return names
}

func (c *CompositionRoot) newTransport() (eventbus.Transport, error) {
	switch c.cfg.BusBackend {
	case BusEventGrid:
		endpoints := map[event.Topic]eventbus.EventGridEndpoint{
			event.TopicOrders:    {URL: c.cfg.EventGridOrdersEndpoint, Key: c.cfg.EventGridOrdersKey},
			event.TopicWarehouse: {URL: c.cfg.EventGridWarehouseEndpoint, Key: c.cfg.EventGridWarehouseKey},
			event.TopicTracking:  {URL: c.cfg.EventGridTrackingEndpoint, Key: c.cfg.EventGridTrackingKey},
		}
		if c.cfg.DeadLetterEnabled() {
			endpoints[event.TopicDeadLetter] = eventbus.EventGridEndpoint{
				URL: c.cfg.DeadLetterTopic,
				Key: c.cfg.EventGridDeadLetterKey,
			}
		}
		return eventbus.NewEventGridTransport(endpoints, c.cfg.HTTPTimeout), nil

	case BusKafka:
		t := eventbus.NewKafkaTransport(c.cfg.KafkaHost, c.topicNames())
		c.closers = append(c.closers, t.Close)
		return t, nil

	case BusMQTT:
		client, err := eventbus.ConnectMQTT(c.cfg.MQTTBroker, c.cfg.MQTTClientID, c.cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error {
			client.Disconnect(250)
			return nil
		})
		return eventbus.NewMQTTTransport(client, c.topicNames(), c.cfg.HTTPTimeout), nil

	default:
		return eventbus.NewLogTransport(os.Stdout), nil
	}
}

func (c *CompositionRoot) newInventoryRepository(ctx context.Context) (ports.InventoryRepository, error) {
	seed := yamlrepo.NewInventoryRepository(c.cfg.InventoryFile)
	if !c.cfg.UsesDatabase() {
		return seed, nil
	}

	db, err := postgres.Open(postgres.DSN(
		c.cfg.DBHost, c.cfg.DBPort, c.cfg.DBUser, c.cfg.DBPassword, c.cfg.DBName, c.cfg.DBSslMode))
	if err != nil {
		return nil, err
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		c.closers = append(c.closers, sqlDB.Close)
	}

	var store ports.InventoryStore = inventoryrepo.NewGormInventoryRepository(db)
	seeded, err := seedInventory(ctx, store, seed)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		c.logger.InfoContext(ctx, "inventory seeded", "materials", seeded)
	}
	return store, nil
}

// seedInventory copies the seed snapshot into an empty store and returns the
// number of materials written.
func seedInventory(ctx context.Context, store ports.InventoryStore, seed ports.InventoryRepository) (int, error) {
	empty, err := store.IsEmpty(ctx)
	if err != nil || !empty {
		return 0, err
	}
	items, err := seed.LoadStock(ctx)
	if err != nil {
		return 0, err
	}
	if err = store.SaveStock(ctx, items); err != nil {
		return 0, fmt.Errorf("seed inventory: %w", err)
	}
	return len(items), nil
}

func (c *CompositionRoot) newMapsClient() *azuremaps.Client {
	var opts []azuremaps.Option
	if c.cfg.AzureMapsBaseURL != "" {
		opts = append(opts, azuremaps.WithBaseURL(c.cfg.AzureMapsBaseURL))
	}
	return azuremaps.NewClient(c.cfg.AzureMapsKey, c.cfg.HTTPTimeout, opts...)
}

func (c *CompositionRoot) newGeocoder(ctx context.Context, maps ports.Geocoder) ports.Geocoder {
	if c.cfg.RedisAddr == "" {
		return maps
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.RedisAddr,
		Password: c.cfg.RedisPassword,
		DB:       c.cfg.RedisDB,
	})
	c.closers = append(c.closers, rdb.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis not available, geocode lookups will not be cached", "error", err)
	}
	return geocache.NewCachedGeocoder(maps, rdb, c.cfg.GeocodeCacheTTL, c.logger)
}
