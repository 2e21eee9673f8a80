package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ssoellinger/open-ldap-viewer/directory"
	"github.com/ssoellinger/open-ldap-viewer/registry"
)

//go:embed static/*
var staticFS embed.FS

// Server handles HTTP requests for the web interface.
type Server struct {
	registry *registry.Registry
	defaults directory.ConnectionSettings
	mux      *http.ServeMux
	addr     string
	log      *logrus.Logger
}

// NewServer creates a new web server instance.
func NewServer(reg *registry.Registry, addr string, defaults directory.ConnectionSettings, log *logrus.Logger) *Server {
	s := &Server{
		registry: reg,
		defaults: defaults,
		mux:      http.NewServeMux(),
		addr:     addr,
		log:      log,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// Session management
	s.mux.HandleFunc("GET /api/defaults", s.handleDefaults)
	s.mux.HandleFunc("POST /api/sessions", s.handleConnect)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/sessions/{id}/activate", s.handleActivateSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/reconnect", s.handleReconnectSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleRemoveSession)

	// Tree browsing and entry CRUD
	s.mux.HandleFunc("GET /api/tree", s.handleTree)
	s.mux.HandleFunc("GET /api/tree/count", s.handleChildCount)
	s.mux.HandleFunc("GET /api/entry", s.handleGetEntry)
	s.mux.HandleFunc("GET /api/entry/binary", s.handleBinaryAttribute)
	s.mux.HandleFunc("POST /api/entry", s.handleCreateEntry)
	s.mux.HandleFunc("PATCH /api/entry", s.handleModifyEntry)
	s.mux.HandleFunc("DELETE /api/entry", s.handleDeleteEntry)
	s.mux.HandleFunc("POST /api/entry/move", s.handleMoveEntry)
	s.mux.HandleFunc("POST /api/entry/password", s.handleSetPassword)

	// Search, schema, statistics
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/schema", s.handleSchema)
	s.mux.HandleFunc("GET /api/schema/attributes", s.handleSchemaAttributes)
	s.mux.HandleFunc("GET /api/stats", s.handleStatistics)
	s.mux.HandleFunc("GET /api/stats/ou", s.handleOuStatistics)
	s.mux.HandleFunc("GET /api/contexts", s.handleNamingContexts)
	s.mux.HandleFunc("GET /api/whoami", s.handleWhoAmI)
	s.mux.HandleFunc("POST /api/testbind", s.handleTestBind)

	// LDIF import/export
	s.mux.HandleFunc("POST /api/ldif/apply", s.handleApplyLdif)
	s.mux.HandleFunc("GET /api/export", s.handleExport)

	// Static frontend
	dist, err := fs.Sub(staticFS, "static")
	if err != nil {
		s.log.Warnf("could not load embedded frontend: %v", err)
		return
	}
	s.mux.Handle("/", http.FileServer(http.FS(dist)))
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}
