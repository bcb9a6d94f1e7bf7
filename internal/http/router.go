package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/config"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/http/handlers"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/storefront"
)

type Deps struct {
	Logger *slog.Logger
	Cfg    config.Config

	Registry *storefront.Registry
	Query    *listing.Query

	Identity *clients.IdentityClient
	Listings *clients.ListingClient
	Orders   *clients.OrderClient
	Catalog  *clients.CatalogClient

	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.BearerToken)

	health := &handlers.HealthHandler{Probes: d.HealthProbes}
	r.Get("/health", health.Self)
	r.Get("/health/upstreams", health.Upstreams)

	sess := handlers.NewSessionHandler(d.Registry, d.Identity)
	r.Post("/session", sess.Login)
	r.Post("/session/register", sess.Register)
	r.Delete("/session", sess.Logout)
	r.With(handlers.RequireStorefront(d.Registry)).Get("/session", sess.Current)

	lst := handlers.NewListingHandler(d.Query, d.Listings, d.Catalog)
	r.Get("/listings", lst.Search)
	r.Get("/listings/{id}", lst.Get)
	r.Get("/products", lst.Products)
	r.Get("/products/{productId}", lst.Product)
	r.Get("/products/{productId}/listings", lst.ByProduct)
	r.Get("/catalog/filters", lst.Filters)

	order := handlers.NewOrderHandler(d.Orders)

	r.Route("/me", func(r chi.Router) {
		r.Use(handlers.RequireStorefront(d.Registry))

		cart := handlers.NewCartHandler()
		r.Get("/cart", cart.GetCartMe)
		r.Post("/cart/refresh", cart.RefreshMe)
		r.Post("/cart/items", cart.AddItemMe)
		r.Delete("/cart/items/{itemId}", cart.RemoveItemMe)

		co := handlers.NewCheckoutHandler()
		r.Get("/checkout", co.Summary)
		r.Post("/checkout", co.Submit)

		r.Get("/orders", order.ListOrdersMe)
		r.Get("/orders/{orderId}", order.GetOrderMe)

		seller := handlers.NewSellerHandler(d.Listings)
		r.Get("/listings", seller.ListMine)
		r.Post("/listings", seller.Create)
		r.Delete("/listings/{listingId}", seller.Delete)
	})

	return r
}
