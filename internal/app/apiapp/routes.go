package apiapp

import (
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/bidaclub/backend/internal/services/auth"
	membershipsvc "github.com/bidaclub/backend/internal/services/memberships"
	paymentsvc "github.com/bidaclub/backend/internal/services/payments"
	"github.com/bidaclub/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	PaymentService    *paymentsvc.Service
	MembershipService *membershipsvc.Service
	JWTManager        *authsvc.JWTManager
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	paymentHandler := handlers.NewPaymentHandler(deps.PaymentService)
	membershipHandler := handlers.NewMembershipHandler(deps.MembershipService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Post("/payments", paymentHandler.Create)
		// The gateway redirects the user's browser here; there is no
		// bearer token on this request.
		r.Get("/payments/vnpay/callback", paymentHandler.Callback)
		r.With(authMW).Get("/payments/{ref}", paymentHandler.Get)
		r.With(authMW).Get("/membership", membershipHandler.Get)
	})
}
