package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaizerhaus/kaizerhaus-backend/api/controllers"
	"github.com/kaizerhaus/kaizerhaus-backend/api/middleware"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/auth"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/cards"
	cartsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/cart"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/catalog"
	checkoutsvc "github.com/kaizerhaus/kaizerhaus-backend/internal/checkout"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/orders"
	"github.com/kaizerhaus/kaizerhaus-backend/internal/tracking"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions middleware.SessionLoader,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	cardsService cards.Service,
	trackingWatcher *tracking.Watcher,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/cardapio", func(r chi.Router) {
		r.Get("/produtos", controllers.CardapioProdutos(catalogService, logg))
		r.Get("/categorias", controllers.CardapioCategorias(catalogService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RoleRedirect(logg))

		r.Route("/sacola", func(r chi.Router) {
			r.Get("/", controllers.SacolaFetch(cartService, logg))
			r.Post("/itens", controllers.SacolaAddItem(cartService, logg))
			r.Patch("/itens/{produtoId}", controllers.SacolaUpdateItem(cartService, logg))
			r.Delete("/itens/{produtoId}", controllers.SacolaRemoveItem(cartService, logg))
			r.Delete("/", controllers.SacolaClear(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Put("/entrega", controllers.CheckoutSetEntrega(checkoutService, logg))
			r.Get("/entrega", controllers.CheckoutGetEntrega(checkoutService, logg))
			r.Put("/pagamento", controllers.CheckoutSetPagamento(checkoutService, logg))
			r.Get("/pagamento", controllers.CheckoutGetPagamento(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
			r.Get("/pix", controllers.CheckoutGetPix(checkoutService, logg))
			r.Post("/conclusao", controllers.CheckoutConclusao(checkoutService, logg))
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", controllers.PedidosList(ordersService, logg))
			r.Get("/{pedidoId}", controllers.PedidosDetail(ordersService, logg))
			r.Get("/{pedidoId}/timeline", controllers.PedidosTimeline(trackingWatcher, logg))
		})

		r.Route("/cartoes", func(r chi.Router) {
			r.Get("/", controllers.CartoesList(cardsService, logg))
			r.Post("/", controllers.CartoesCreate(cardsService, logg))
		})
	})

	r.Route("/funcionario", func(r chi.Router) {
		r.Use(middleware.RedirectAnonymousToLogin(logg))
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireFuncionario(logg))
		r.Get("/pedidos", controllers.FuncionarioPedidos(ordersService, logg))
		r.Patch("/pedidos/{pedidoId}/status", controllers.FuncionarioAdvanceStatus(ordersService, logg))
	})

	return r
}
