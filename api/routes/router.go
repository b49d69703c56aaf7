package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corralonsoft/corralon-backend/api/controllers"
	"github.com/corralonsoft/corralon-backend/api/middleware"
	catalogsvc "github.com/corralonsoft/corralon-backend/internal/catalog"
	ordersvc "github.com/corralonsoft/corralon-backend/internal/orders"
	pricingsvc "github.com/corralonsoft/corralon-backend/internal/pricing"
	reservationsvc "github.com/corralonsoft/corralon-backend/internal/reservations"
	stocksvc "github.com/corralonsoft/corralon-backend/internal/stock"
	"github.com/corralonsoft/corralon-backend/pkg/config"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	gatherer prometheus.Gatherer,
	catalogService catalogsvc.Service,
	stockService stocksvc.Service,
	reservationService reservationsvc.Service,
	pricingService pricingsvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/models", func(r chi.Router) {
			r.Get("/", controllers.ListModels(catalogService, logg))
			r.Post("/", controllers.CreateModel(catalogService, logg))
			r.Get("/{modelID}", controllers.GetModel(catalogService, logg))
			r.Patch("/{modelID}", controllers.UpdateModel(catalogService, logg))
			r.Delete("/{modelID}", controllers.DeleteModel(catalogService, logg))
			r.Get("/{modelID}/tiers", controllers.ListModelTiers(pricingService, logg))
			r.Put("/{modelID}/tiers", controllers.UpsertModelTier(pricingService, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStock(stockService, logg))
			r.Post("/", controllers.CreateStock(stockService, logg))
			r.Post("/reconcile", controllers.ReconcileAllStock(stockService, logg))
			r.Get("/{stockID}", controllers.GetStock(stockService, logg))
			r.Patch("/{stockID}", controllers.UpdateStockMetadata(stockService, logg))
			r.Get("/{stockID}/availability", controllers.StockAvailability(reservationService, logg))
			r.Post("/{stockID}/add", controllers.AddStock(stockService, logg))
			r.Post("/{stockID}/subtract", controllers.SubtractStock(stockService, logg))
			r.Put("/{stockID}/quantity", controllers.OverwriteStock(stockService, logg))
			r.Post("/{stockID}/reconcile", controllers.ReconcileStock(stockService, logg))
		})

		r.Post("/pricing/bulk", controllers.BulkPricing(pricingService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(orderService, logg))
			r.Post("/", controllers.CreateOrder(orderService, logg))
			r.Get("/{orderID}", controllers.GetOrder(orderService, logg))
			r.Patch("/{orderID}/status", controllers.ChangeOrderStatus(orderService, logg))
		})
	})

	return r
}
