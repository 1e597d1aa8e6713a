// Package bootstrap wires the storefront's services to their storage,
// payment processor and event publisher from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	addresspg "github.com/dwikikusuma/storefront/internal/address/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/auth"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartpg "github.com/dwikikusuma/storefront/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderadapter "github.com/dwikikusuma/storefront/internal/order/infra/adapter"
	orderpg "github.com/dwikikusuma/storefront/internal/order/infra/postgres"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	paymentpg "github.com/dwikikusuma/storefront/internal/payment/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/payment/processor"
	shipmentapp "github.com/dwikikusuma/storefront/internal/shipment/app"
	shipmentpg "github.com/dwikikusuma/storefront/internal/shipment/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/storage/memory"
	wishedapp "github.com/dwikikusuma/storefront/internal/wished/app"
	wishedadapter "github.com/dwikikusuma/storefront/internal/wished/infra/adapter"
	wishedpg "github.com/dwikikusuma/storefront/internal/wished/infra/postgres"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App holds every service of one storefront process.
type App struct {
	Catalog   *catalogapp.Service
	Cart      *cartapp.Service
	Orders    *orderapp.Service
	Payments  *paymentapp.Service
	Shipments *shipmentapp.Service
	Addresses *addressapp.Service
	Wished    *wishedapp.Service
	Auth      *auth.Resolver

	// Outbox is the source the event relay drains.
	Outbox   events.Outbox
	Registry *prometheus.Registry
	// Pool is nil for the memory store.
	Pool *pgxpool.Pool

	httpMetrics *metrics.ServerMetrics
	log         *slog.Logger
}

type repos struct {
	products   catalogapp.ProductRepo
	categories catalogapp.CategoryRepo
	reviews    catalogapp.ReviewRepo
	carts      cartapp.CartRepo
	orders     orderapp.OrderRepo
	payments   paymentapp.PaymentRepo
	shipments  shipmentapp.ShipmentRepo
	addresses  addressapp.AddressRepo
	wished     wishedapp.WishedRepo
	outbox     events.Outbox
}

func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	app := &App{
		Auth:     auth.NewResolver(cfg.Auth),
		Registry: prometheus.NewRegistry(),
		log:      log,
	}
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shop := metrics.NewShopMetrics(app.Registry)
	app.httpMetrics = metrics.NewServerMetrics(app.Registry, "api")

	var r repos
	switch cfg.Store.Driver {
	case config.StoreMemory:
		r = memoryRepos(memory.New())
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.Store.DSN(), cfg.Store.Postgres.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		app.Pool = pool
		r = postgresRepos(pool)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	app.Catalog = catalogapp.NewService(r.products, r.categories, r.reviews)
	app.Cart = cartapp.NewService(r.carts, cartadapter.NewCatalogServiceReader(app.Catalog), cfg.Checkout.MaxConcurrent)
	app.Addresses = addressapp.NewService(r.addresses)
	app.Wished = wishedapp.NewService(r.wished, wishedadapter.NewCatalogServiceReader(app.Catalog), cfg.Checkout.MaxConcurrent)
	app.Orders = orderapp.NewService(r.orders, orderadapter.NewAddressServiceReader(app.Addresses), shop, log)
	app.Payments = paymentapp.NewService(r.payments, newProcessor(cfg.Payment), cfg.Payment.Timeout, shop, log)
	app.Shipments = shipmentapp.NewService(r.shipments, shop, log)
	app.Outbox = r.outbox

	log.Info("storefront wired",
		slog.String("store", cfg.Store.Driver),
		slog.Bool("external_processor", cfg.Payment.ProcessorURL != ""),
	)
	return app, nil
}

func memoryRepos(db *memory.DB) repos {
	return repos{
		products:   memory.NewProductRepo(db),
		categories: memory.NewCategoryRepo(db),
		reviews:    memory.NewReviewRepo(db),
		carts:      memory.NewCartRepo(db),
		orders:     memory.NewOrderRepo(db),
		payments:   memory.NewPaymentRepo(db),
		shipments:  memory.NewShipmentRepo(db),
		addresses:  memory.NewAddressRepo(db),
		wished:     memory.NewWishedRepo(db),
		outbox:     memory.NewOutbox(db),
	}
}

func postgresRepos(pool *pgxpool.Pool) repos {
	return repos{
		products:   catalogpg.NewProductRepo(pool),
		categories: catalogpg.NewCategoryRepo(pool),
		reviews:    catalogpg.NewReviewRepo(pool),
		carts:      cartpg.NewCartRepo(pool),
		orders:     orderpg.NewOrderRepo(pool),
		payments:   paymentpg.NewPaymentRepo(pool),
		shipments:  shipmentpg.NewShipmentRepo(pool),
		addresses:  addresspg.NewAddressRepo(pool),
		wished:     wishedpg.NewWishedRepo(pool),
		outbox:     postgres.NewOutbox(pool),
	}
}

func newProcessor(cfg config.PaymentConfig) paymentapp.Processor {
	if cfg.ProcessorURL != "" {
		return processor.NewHTTP(cfg.ProcessorURL, &http.Client{Timeout: cfg.Timeout})
	}
	return processor.Static{Approve: cfg.AutoApprove}
}

// NewPublisher returns the event publisher selected by cfg.Driver.
func NewPublisher(cfg config.EventsConfig, log *slog.Logger) (events.Publisher, error) {
	switch cfg.Driver {
	case config.EventsNone:
		return events.Noop{}, nil
	case config.EventsLog:
		return events.LogPublisher{Log: log}, nil
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.EventsNATS:
		return events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// Handler builds the HTTP API over the wired services.
func (a *App) Handler() http.Handler {
	var ready func(ctx context.Context) error
	if a.Pool != nil {
		ready = a.Pool.Ping
	}
	return httpapi.NewRouter(httpapi.Deps{
		Catalog:   a.Catalog,
		Cart:      a.Cart,
		Orders:    a.Orders,
		Payments:  a.Payments,
		Shipments: a.Shipments,
		Addresses: a.Addresses,
		Wished:    a.Wished,
		Auth:      a.Auth,
		Metrics:   a.httpMetrics,
		Gatherer:  a.Registry,
		Ready:     ready,
		Log:       a.log,
	})
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
