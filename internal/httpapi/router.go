package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dshills/orderdesk/internal/service"
)

// Router mounts the REST handlers on a chi mux
type Router struct {
	router *chi.Mux
	logger *slog.Logger
}

// NewRouter wraps router
func NewRouter(router *chi.Mux, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{router: router, logger: logger}
}

// Init registers middleware and every route against svc
func (r *Router) Init(svc *service.Service) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(r.requestLogger)

	h := NewHandler(svc, r.logger)

	r.router.Route("/customers", func(cr chi.Router) {
		cr.Get("/", h.listCustomers)
		cr.Post("/", h.createCustomer)
		cr.Get("/{id}", h.getCustomer)
		cr.Put("/{id}", h.updateCustomer)
		cr.Delete("/{id}", h.deleteCustomer)
	})

	r.router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Get("/{id}", h.getProduct)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})

	r.router.Route("/orders", func(or chi.Router) {
		or.Get("/", h.listOrders)
		or.Get("/{id}", h.getOrder)
		or.Delete("/{id}", h.deleteOrder)
		or.Post("/{id}/draft", h.editOrder)
	})

	r.router.Route("/drafts", func(dr chi.Router) {
		dr.Post("/", h.startOrder)
		dr.Get("/{id}", h.getDraft)
		dr.Delete("/{id}", h.discardDraft)
		dr.Post("/{id}/items", h.addItem)
		dr.Delete("/{id}/items/{index}", h.removeItem)
		dr.Post("/{id}/save", h.saveDraft)
	})

	r.router.Get("/dashboard", h.dashboard)
	r.router.Post("/reports/export", h.exportReport)
	r.router.Get("/reports/summary", h.summarize)
	r.router.Get("/history", h.history)
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		r.logger.Debug("http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(req.Context()),
		)
	})
}
