package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/simonvc/minibooks/internal/events"
	"github.com/simonvc/minibooks/internal/ledger"
)

type Options struct {
	CORSOrigins []string
	// PostRate limits write requests per second; zero disables limiting.
	PostRate  float64
	PostBurst int
	// ReportTTL bounds how long a cached report is served for an unchanged ledger.
	ReportTTL time.Duration
	Publisher events.Publisher
	// Quiet disables request logging.
	Quiet bool
}

const (
	outboxSize     = 256
	publishTimeout = 5 * time.Second
)

type outgoing struct {
	topic string
	ev    events.Event
}

type Server struct {
	book    *ledger.Book
	router  chi.Router
	addr    string
	events  events.Publisher
	reports *cache.Cache
	limiter *rate.Limiter

	outMu     sync.RWMutex
	outClosed bool
	outbox    chan outgoing
	delivered chan struct{}
}

func New(book *ledger.Book, addr string, opts Options) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if !opts.Quiet {
		r.Use(middleware.Logger)
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.ReportTTL <= 0 {
		opts.ReportTTL = 30 * time.Second
	}

	s := &Server{
		book:    book,
		router:  r,
		addr:    addr,
		events:  opts.Publisher,
		reports: cache.New(opts.ReportTTL, 2*opts.ReportTTL),

		outbox:    make(chan outgoing, outboxSize),
		delivered: make(chan struct{}),
	}
	go s.deliver()
	if opts.PostRate > 0 {
		burst := max(opts.PostBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(opts.PostRate), burst)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/resume", s.resume)

		// Accounts
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{code}", s.getAccount)
		r.Get("/accounts/{code}/balance", s.getAccountBalance)
		r.Get("/accounts/{code}/entries", s.listAccountEntries)

		// Journal
		r.Get("/entries", s.listEntries)
		r.Get("/entries/{id}", s.getEntry)

		// Writes
		r.Group(func(r chi.Router) {
			r.Use(s.limitWrites)
			r.Post("/accounts", s.createAccount)
			r.Patch("/accounts/{code}", s.updateAccount)
			r.Delete("/accounts/{code}", s.deleteAccount)
			r.Post("/entries", s.postEntry)
			r.Post("/entries/{id}/reverse", s.reverseEntry)
		})

		// Reports
		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/profit-and-loss", s.profitAndLoss)
		r.Get("/reports/vat", s.vatSummary)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/summary", s.summary)

		// Chart of accounts reference
		r.Get("/chart", s.getChart)
	})

	return s
}

// ListenAndServe serves the API on the configured address until ctx is
// cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener. Queued events are
// delivered before it returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("minibooks server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops accepting events and waits for the queued ones to be
// delivered. It is safe to call more than once.
func (s *Server) Close() error {
	s.outMu.Lock()
	if !s.outClosed {
		s.outClosed = true
		close(s.outbox)
	}
	s.outMu.Unlock()
	<-s.delivered
	return nil
}

// publish queues an event once a change is durable. Requests never wait on
// the broker; when the queue is full the event is dropped and logged.
func (s *Server) publish(topic string, ev events.Event) {
	s.outMu.RLock()
	defer s.outMu.RUnlock()
	if s.outClosed {
		log.Printf("publish %s: server closed, event dropped", topic)
		return
	}
	select {
	case s.outbox <- outgoing{topic: topic, ev: ev}:
	default:
		log.Printf("publish %s: queue full, event dropped", topic)
	}
}

// deliver publishes queued events one at a time, in the order the changes
// were made.
func (s *Server) deliver() {
	defer close(s.delivered)
	for out := range s.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := s.events.Publish(ctx, out.topic, out.ev); err != nil {
			log.Printf("publish %s: %v", out.topic, err)
		}
		cancel()
	}
}

// limitWrites rejects write requests beyond the configured rate.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many write requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
