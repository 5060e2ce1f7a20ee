// Package monitor serves the rendered floor plan and scan status over HTTP.
package monitor

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/roomtrace-data/floorplan.report/internal/db"
	"github.com/roomtrace-data/floorplan.report/internal/scan"
	"github.com/roomtrace-data/floorplan.report/internal/version"
)

//go:embed status.html
var StatusHTML embed.FS

// WebServer handles the HTTP interface for the live plan view. It renders
// frames on demand from the session; nothing is cached between requests.
type WebServer struct {
	address  string
	session  *scan.Session
	server   *http.Server
	db       *db.DB
	feedPort int
	compass  string
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Session  *scan.Session
	DB       *db.DB
	FeedPort int
	Compass  string
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		session:  config.Session,
		db:       config.DB,
		feedPort: config.FeedPort,
		compass:  config.Compass,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/plan.svg", ws.handlePlanSVG)
	mux.HandleFunc("/api/plan.png", ws.handlePlanPNG)
	mux.HandleFunc("/api/export", ws.handleExport)
	mux.HandleFunc("/api/pan", ws.handlePan)
	mux.HandleFunc("/api/pan/reset", ws.handlePanReset)
	mux.HandleFunc("/api/stats", ws.handleStats)
	mux.HandleFunc("/debug/trail", ws.handleTrailChart)
	mux.HandleFunc("/debug/walls", ws.handleWallChart)

	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

// handleHealth handles the health check endpoint.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "floorplan", "version": "%s", "timestamp": "%s"}`,
		version.Version, time.Now().UTC().Format(time.RFC3339))
}

// handleStatus handles the main status page endpoint.
func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	compassStatus := "disabled"
	if ws.compass != "" {
		compassStatus = ws.compass
	}

	tmpl, err := template.ParseFS(StatusHTML, "status.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stats := ws.session.Stats()
	data := struct {
		HTTPAddress   string
		FeedPort      int
		CompassStatus string
		Stats         scan.SessionStats
	}{
		HTTPAddress:   ws.address,
		FeedPort:      ws.feedPort,
		CompassStatus: compassStatus,
		Stats:         stats,
	}

	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("Error rendering status page: %v", err)
	}
}

// canvasSize reads optional w/h query parameters, falling back to the
// defaults. Values are clamped to a sane range so a bad query cannot demand a
// gigapixel render.
func canvasSize(r *http.Request) (float64, float64) {
	parse := func(name string, def float64) float64 {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 100 || v > 4000 {
			return def
		}
		return v
	}
	return parse("w", DefaultCanvasWidth), parse("h", DefaultCanvasHeight)
}

// handlePlanSVG renders the current frame as SVG.
func (ws *WebServer) handlePlanSVG(w http.ResponseWriter, r *http.Request) {
	ws.renderPlan(w, r, "svg", "image/svg+xml")
}

// handlePlanPNG renders the current frame as PNG.
func (ws *WebServer) handlePlanPNG(w http.ResponseWriter, r *http.Request) {
	ws.renderPlan(w, r, "png", "image/png")
}

func (ws *WebServer) renderPlan(w http.ResponseWriter, r *http.Request, format, contentType string) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	canvasW, canvasH := canvasSize(r)
	prims, _ := ws.session.Frame(canvasW, canvasH)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	if err := RenderPlan(w, prims, canvasW, canvasH, format); err != nil {
		log.Printf("Error rendering %s plan: %v", format, err)
	}
}

// handleExport serves the dimensional export document for the current
// snapshot, persisting a copy when a database is attached.
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	doc, err := ws.session.Export()
	if err != nil {
		ws.writeJSONError(w, http.StatusConflict, err.Error())
		return
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode export: %v", err))
		return
	}

	if ws.db != nil {
		if _, err := ws.db.InsertExport(ws.session.ID(), payload); err != nil {
			log.Printf("Failed to persist export: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=floorplan-%s.json", time.Now().Format("20060102-150405")))
	w.Write(payload)
}

// handlePan applies an additive pan delta in canvas pixels (POST with dx/dy
// form values).
func (ws *WebServer) handlePan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	dx, errX := strconv.ParseFloat(r.FormValue("dx"), 64)
	dy, errY := strconv.ParseFloat(r.FormValue("dy"), 64)
	if errX != nil || errY != nil {
		ws.writeJSONError(w, http.StatusBadRequest, "dx and dy must be numbers")
		return
	}

	ws.session.Pan(dx, dy)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status": "ok"}`)
}

// handlePanReset clears the accumulated pan delta.
func (ws *WebServer) handlePanReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ws.session.ResetPan()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status": "ok"}`)
}

// handleStats returns the session summary as JSON.
func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ws.session.Stats())
}
