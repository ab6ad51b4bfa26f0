package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gleber2006-sketch/machlog/internal/auth"
	"github.com/gleber2006-sketch/machlog/internal/config"
	"github.com/gleber2006-sketch/machlog/internal/model"
	"github.com/gleber2006-sketch/machlog/internal/repository"
)

type Server struct {
	cfg    config.Config
	store  *repository.Store
	locks  *redis.Client
	logger *slog.Logger
}

// NewServer builds the API server. locks may be nil when Redis is not
// configured; submission locking then relies on the database unique
// constraint alone.
func NewServer(cfg config.Config, store *repository.Store, locks *redis.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: store, locks: locks, logger: logger}
}

// routeRule binds one API route to the roles allowed to call it. A nil
// roles slice means any authenticated profile.
type routeRule struct {
	method  string
	pattern string
	roles   []model.Role
	handler http.HandlerFunc
}

var staffOnly = []model.Role{model.RoleTechnician, model.RoleAdmin}
var adminOnly = []model.Role{model.RoleAdmin}

func (s *Server) routeRules() []routeRule {
	return []routeRule{
		{http.MethodPost, "/auth/logout", nil, s.handleLogout},
		{http.MethodGet, "/auth/me", nil, s.handleMe},
		{http.MethodPost, "/auth/register", adminOnly, s.handleRegister},

		{http.MethodGet, "/api/profiles", adminOnly, s.handleListProfiles},
		{http.MethodGet, "/api/profiles/{profileID}", adminOnly, s.handleGetProfile},
		{http.MethodPatch, "/api/profiles/{profileID}", adminOnly, s.handleUpdateProfile},
		{http.MethodDelete, "/api/profiles/{profileID}", adminOnly, s.handleDeleteProfile},

		{http.MethodGet, "/api/machines", staffOnly, s.handleListMachines},
		{http.MethodPost, "/api/machines", staffOnly, s.handleCreateMachine},
		{http.MethodGet, "/api/machines/{machineID}", staffOnly, s.handleGetMachine},
		{http.MethodPut, "/api/machines/{machineID}", staffOnly, s.handleUpdateMachine},
		{http.MethodDelete, "/api/machines/{machineID}", staffOnly, s.handleDeleteMachine},
		{http.MethodGet, "/api/machines/{machineID}/qr", staffOnly, s.handleMachineQR},

		{http.MethodGet, "/api/scan/{token}", nil, s.handleScan},

		{http.MethodPost, "/api/checkins", nil, s.handleCreateCheckIn},
		{http.MethodGet, "/api/checkins/{checkinID}", nil, s.handleGetCheckIn},
		{http.MethodPost, "/api/checkins/{checkinID}/checklist", nil, s.handleSubmitChecklist},
		{http.MethodGet, "/api/checkins/{checkinID}/checklist", nil, s.handleGetChecklist},

		{http.MethodGet, "/api/checklist/questions", nil, s.handleListQuestions},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)

	for _, rule := range s.routeRules() {
		handler := rule.handler
		if rule.roles == nil {
			r.With(s.authMiddleware).Method(rule.method, rule.pattern, handler)
			continue
		}
		r.With(s.authMiddleware, s.requireRoles(rule.roles...)).Method(rule.method, rule.pattern, handler)
	}

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !roleAllowed(claims.Role, roles) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "machlog_http_requests_total",
	Help: "HTTP requests by method and status.",
}, []string{"method", "status"})

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
			logger.Info("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
