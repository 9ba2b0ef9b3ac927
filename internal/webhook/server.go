package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/suspectuso/gym-storefront/internal/chapa"
	"github.com/suspectuso/gym-storefront/internal/storage"
)

const maxPayloadBytes = 64 << 10

// CallbackPath is where Chapa posts payment outcomes
const CallbackPath = "/api/chapa/callback"

// PaymentResolver applies a payment outcome to the matching user
type PaymentResolver interface {
	Resolve(ctx context.Context, txRef, status string) (*storage.User, error)
}

// Server handles payment callbacks from Chapa
type Server struct {
	resolver     PaymentResolver
	businessName string
	validate     *validator.Validate
	log          *slog.Logger

	server *http.Server
}

// NewServer creates a new webhook server
func NewServer(resolver PaymentResolver, businessName string, log *slog.Logger) *Server {
	return &Server{
		resolver:     resolver,
		businessName: businessName,
		validate:     validator.New(),
		log:          log,
	}
}

// Routes returns the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleHealth)
	r.Get("/success", s.handleReturn)
	r.Post(CallbackPath, s.handleCallback)

	return r
}

// Start starts the webhook server and shuts it down when ctx is cancelled.
// After cancellation it returns only once in-flight requests have finished.
func (s *Server) Start(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.log.Info("starting webhook server", "port", port)
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("webhook server shutdown", "error", err)
		}
	}()

	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf("🏋️ %s Bot (Chapa Integrated) is running 🚀", s.businessName)))
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("✅ Thank you! Your payment is being processed. You will get a confirmation in Telegram shortly."))
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var payload chapa.CallbackPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		s.log.Warn("invalid callback payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		s.log.Warn("invalid callback payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	_, err := s.resolver.Resolve(r.Context(), payload.TxRef, payload.Status)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("callback for unknown transaction", "tx_ref", payload.TxRef)
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("resolve payment", "tx_ref", payload.TxRef, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
