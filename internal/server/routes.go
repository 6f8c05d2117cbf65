package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Image pipeline
	mux.HandleFunc("/api/analyze-image", s.app.ImageHandler.AnalyzeImageHandler) // POST multipart image
	mux.HandleFunc("/api/match-image", s.app.ImageHandler.MatchImageHandler)     // POST multipart image + limit/threshold

	// API routes - Sound catalog
	mux.HandleFunc("/api/search-sounds", s.app.SoundHandler.SearchSoundsHandler) // POST {query, limit, threshold}
	mux.HandleFunc("/api/upload-sound", s.app.SoundHandler.UploadSoundHandler)   // POST sound bite
	mux.HandleFunc("/api/schema", s.app.SchemaHandler.GetSchemaHandler)          // GET classes + object counts

	// API routes - Audit trail (only when audit is enabled)
	if s.app.AuditHandler != nil {
		mux.HandleFunc("/api/audit", s.app.AuditHandler.ListAuditHandler)
	}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
