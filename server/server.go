package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/jrsteele09/go-billdesk/internal/config"
	"github.com/jrsteele09/go-billdesk/server/prefs"
	"github.com/jrsteele09/go-billdesk/session"
)

type Server struct {
	env    string // Environment (e.g., "development", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config

	session *session.Store
	bills   *billing.Client
	prefs   prefs.Repo

	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(config config.Config, sessionStore *session.Store, billsClient *billing.Client, prefsRepo prefs.Repo, options ...ServerOption) (*Server, error) {
	if sessionStore == nil {
		return nil, fmt.Errorf("[Server New] session store is required")
	}
	if billsClient == nil {
		return nil, fmt.Errorf("[Server New] bills client is required")
	}
	if prefsRepo == nil {
		return nil, fmt.Errorf("[Server New] prefs repo is required")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		session: sessionStore,
		bills:   billsClient,
		prefs:   prefsRepo,
		nowTime: time.Now,
	}
	s.env = config.GetEnv()

	for _, opt := range options {
		opt(s)
	}

	// The session must be observing the identity gateway before any guarded
	// route is evaluated.
	s.session.Initialize()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Printf("[%-19s] %s %s\n", displayMethod, path, errorString)
}
