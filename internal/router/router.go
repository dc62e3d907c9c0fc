package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"biovault/internal/adapters/capabilities/tierplan"
	mem "biovault/internal/adapters/storage/memory"
	pg "biovault/internal/adapters/storage/postgres"
	"biovault/internal/domain/access"
	"biovault/internal/domain/assistant"
	"biovault/internal/domain/audit"
	"biovault/internal/domain/emergency"
	"biovault/internal/domain/notifications"
	"biovault/internal/domain/records"
	"biovault/internal/domain/users"
	"biovault/internal/middleware"
	"biovault/internal/platform/logger"
	"biovault/internal/ports/auth"
	assistantport "biovault/internal/ports/assistant"
	"biovault/internal/seed"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// emergencyEventBuffer acota la cola bridge -> engine. Si se llena, el
// bridge loggea la pérdida en vez de bloquear al responder.
const emergencyEventBuffer = 16

// sweepInterval marca cada cuánto el engine revisa grants por vencer.
const sweepInterval = 10 * time.Minute

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory + seed demo.
	DB *sql.DB

	// Opcional: cliente de chat. Si es nil, /assistant/chat responde 503.
	Assistant assistantport.Client

	Log logger.Logger

	// Inyectable para tests; nil => time.Now.
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		usersRepo    users.Repository
		recordsRepo  records.Repository
		auditRepo    audit.Repository
		notifsRepo   notifications.Repository
		requestsRepo access.RequestRepository
		grantsRepo   access.GrantRepository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres open failed, falling back to memory", map[string]any{
					"error": err.Error(),
				})
			}
		}
	}

	// El perfil del owner no tiene tabla propia todavía: siempre memoria.
	usersRepo = mem.NewUsersRepo()

	if db != nil {
		recordsRepo = pg.NewRecordsRepo(db)
		auditRepo = pg.NewAuditRepo(db)
		notifsRepo = pg.NewNotificationsRepo(db)
		requestsRepo = pg.NewAccessRequestsRepo(db)
		grantsRepo = pg.NewAccessGrantsRepo(db)

		if err := seed.LoadUser(context.Background(), usersRepo); err != nil {
			log.Error("seed user failed", map[string]any{"error": err.Error()})
		}
	} else {
		recordsRepo = mem.NewRecordsRepo()
		auditRepo = mem.NewAuditRepo()
		notifsRepo = mem.NewNotificationsRepo()
		requestsRepo = mem.NewAccessRequestsRepo()
		grantsRepo = mem.NewAccessGrantsRepo()

		if err := seed.Load(context.Background(), seed.Repos{
			Users:         usersRepo,
			Records:       recordsRepo,
			AuditLog:      auditRepo,
			Notifications: notifsRepo,
			Requests:      requestsRepo,
			Grants:        grantsRepo,
		}, now()); err != nil {
			log.Error("seed failed", map[string]any{"error": err.Error()})
		}
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo)
	auditSvc := audit.NewService(auditRepo)
	notifsSvc := notifications.NewService(notifsRepo)
	recordsSvc := records.NewService(recordsRepo, auditSvc)
	accessSvc := access.NewService(requestsRepo, grantsRepo, auditSvc, notifsSvc, access.NewLogToaster(log))

	// Bridge de emergencia -> engine, sin import directo entre dominios.
	events := make(chan emergency.ViewEvent, emergencyEventBuffer)
	emergencySvc := emergency.NewService(usersSvc, events, log)

	go drainEmergencyEvents(events, accessSvc, log)
	go sweepExpiringLoop(accessSvc, log)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	records.RegisterRoutes(r, recordsSvc)
	audit.RegisterRoutes(r, auditSvc)
	notifications.RegisterRoutes(r, notifsSvc)
	access.RegisterRoutes(r, accessSvc, auditSvc, recordsSvc)
	emergency.RegisterRoutes(r, emergencySvc)
	assistant.RegisterRoutes(r, opts.Assistant, tierplan.NewResolver(usersSvc))

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// drainEmergencyEvents traduce los eventos del bridge al engine. Corre
// toda la vida del proceso; el canal nunca se cierra.
func drainEmergencyEvents(events <-chan emergency.ViewEvent, svc *access.Service, log logger.Logger) {
	for ev := range events {
		err := svc.EmergencyViewed(context.Background(), access.EmergencyEvent{
			Actor:     ev.Actor,
			Resource:  ev.Resource,
			Location:  ev.Location,
			Timestamp: ev.Timestamp,
		})
		if err != nil {
			log.Error("emergency event processing failed", map[string]any{
				"actor": ev.Actor,
				"error": err.Error(),
			})
		}
	}
}

func sweepExpiringLoop(svc *access.Service, log logger.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		n, err := svc.SweepExpiring(context.Background())
		if err != nil {
			log.Error("expiring sweep failed", map[string]any{"error": err.Error()})
			continue
		}
		if n > 0 {
			log.Info("expiring grants flagged", map[string]any{"count": n})
		}
	}
}
