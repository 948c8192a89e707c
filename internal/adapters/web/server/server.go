package server

import (
	"context"
	"log"
	"net/http"

	"time"

	"github.com/lcalzada-xor/vulnscope/internal/adapters/reporting"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr         string
	Service      ports.LookupService
	AuditService ports.AuditService
	WSManager    *websocket.WSManager

	CVEHandler     *handlers.CVEHandler
	HistoryHandler *handlers.HistoryHandler
	ExportHandler  *handlers.ExportHandler
	AuditHandler   *handlers.AuditHandler
	srv            *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, service ports.LookupService, auditService ports.AuditService, wsManager *websocket.WSManager, pdfExporter *reporting.PDFExporter) *Server {
	if wsManager == nil {
		wsManager = websocket.NewWSManager()
	}

	return &Server{
		Addr:         addr,
		Service:      service,
		AuditService: auditService,
		WSManager:    wsManager,

		CVEHandler:     handlers.NewCVEHandler(service, auditService),
		HistoryHandler: handlers.NewHistoryHandler(service, auditService),
		ExportHandler:  handlers.NewExportHandler(service, auditService, pdfExporter),
		AuditHandler:   handlers.NewAuditHandler(auditService),
	}
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	// "vulnscope-server" is the name of the operation (span)
	instrumentedHandler := otelhttp.NewHandler(handler, "vulnscope-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
