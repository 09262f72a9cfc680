package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/warehouse-backend/api/controllers"
	"github.com/stockroomhq/warehouse-backend/api/middleware"
	"github.com/stockroomhq/warehouse-backend/internal/catalog"
	"github.com/stockroomhq/warehouse-backend/internal/inventory"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/db"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	inventoryService inventory.Service,
	catalogService catalog.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", controllers.CreateReceipt(inventoryService, logg))
			r.Get("/", controllers.ListDocuments(inventoryService, enums.DocumentKindReceipt, logg))
			r.Get("/{documentId}", controllers.GetDocument(inventoryService, enums.DocumentKindReceipt, logg))
			r.Put("/{documentId}", controllers.EditReceipt(inventoryService, logg))
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", controllers.CreateShipment(inventoryService, logg))
			r.Get("/", controllers.ListDocuments(inventoryService, enums.DocumentKindShipment, logg))
			r.Get("/{documentId}", controllers.GetDocument(inventoryService, enums.DocumentKindShipment, logg))
			r.Post("/{documentId}/sign", controllers.SignShipment(inventoryService, logg))
			r.Post("/{documentId}/unsign", controllers.UnsignShipment(inventoryService, logg))
		})

		r.Get("/balances", controllers.ListBalances(inventoryService, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Post("/", controllers.ResourceCreate(catalogService, logg))
			r.Get("/", controllers.ResourceList(catalogService, logg))
			r.Get("/{resourceId}", controllers.ResourceGet(catalogService, logg))
			r.Put("/{resourceId}", controllers.ResourceUpdate(catalogService, logg))
			r.Delete("/{resourceId}", controllers.ResourceDelete(catalogService, logg))
		})

		r.Route("/units", func(r chi.Router) {
			r.Post("/", controllers.UnitCreate(catalogService, logg))
			r.Get("/", controllers.UnitList(catalogService, logg))
			r.Get("/{unitId}", controllers.UnitGet(catalogService, logg))
			r.Put("/{unitId}", controllers.UnitUpdate(catalogService, logg))
			r.Delete("/{unitId}", controllers.UnitDelete(catalogService, logg))
		})
	})

	return r
}
