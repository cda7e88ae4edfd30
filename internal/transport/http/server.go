package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rossnomann/terminator/internal/shared/config"
	sloghttp "github.com/samber/slog-http"
)

// Server exposes the health endpoint and, in webhook mode, the Telegram
// webhook endpoint.
type Server struct {
	cfg    *config.Config
	bot    *bot.Bot
	logger *slog.Logger
}

// New creates a new HTTP server.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// SetBot attaches the Telegram bot whose webhook handler is mounted when
// webhook mode is configured.
func (s *Server) SetBot(b *bot.Bot) {
	s.bot = b
}

// SetLogger sets the logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	if s.cfg.WebhookPath != "" && s.bot != nil {
		mux.HandleFunc("POST "+s.cfg.WebhookPath, s.bot.WebhookHandler())
	}

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr, "webhook_path", s.cfg.WebhookPath)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}
