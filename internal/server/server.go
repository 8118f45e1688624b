package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pumpops/internal/alert"
	"github.com/smallbiznis/pumpops/internal/booking"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"github.com/smallbiznis/pumpops/internal/config"
	"github.com/smallbiznis/pumpops/internal/jobvolume"
	"github.com/smallbiznis/pumpops/internal/kpi"
	kpidomain "github.com/smallbiznis/pumpops/internal/kpi/domain"
	"github.com/smallbiznis/pumpops/internal/ledger"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	"github.com/smallbiznis/pumpops/internal/notify"
	"github.com/smallbiznis/pumpops/internal/observability"
	obsmiddleware "github.com/smallbiznis/pumpops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pumpops/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pumpops/internal/observability/tracing"
	"github.com/smallbiznis/pumpops/internal/overview"
	overviewdomain "github.com/smallbiznis/pumpops/internal/overview/domain"
	"github.com/smallbiznis/pumpops/internal/pump"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	pump.Module,
	ledger.Module,
	jobvolume.Module,
	kpi.Module,
	alert.Module,
	booking.Module,
	notify.Module,
	overview.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	pumpSvc     pumpdomain.Service
	ledgerSvc   ledgerdomain.Service
	kpiSvc      kpidomain.Service
	bookingSvc  bookingdomain.Service
	overviewSvc overviewdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	PumpSvc     pumpdomain.Service
	LedgerSvc   ledgerdomain.Service
	KPISvc      kpidomain.Service
	BookingSvc  bookingdomain.Service
	OverviewSvc overviewdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		pumpSvc:     p.PumpSvc,
		ledgerSvc:   p.LedgerSvc,
		kpiSvc:      p.KPISvc,
		bookingSvc:  p.BookingSvc,
		overviewSvc: p.OverviewSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Pumps --------
	api.GET("/pumps", s.ListPumps)
	api.POST("/pumps", s.CreatePump)
	api.GET("/pumps/:id", s.GetPumpByID)
	api.PATCH("/pumps/:id/status", s.SetPumpStatus)

	// -------- Overview / KPIs --------
	api.GET("/pumps/:id/overview", s.GetPumpOverview)
	api.GET("/pumps/:id/kpis", s.GetPumpKPIs)

	// -------- Ledger --------
	api.GET("/pumps/:id/ledger", s.ListPumpLedger)
	api.POST("/pumps/:id/maintenance", s.RecordMaintenance)
	api.POST("/pumps/:id/fuel", s.RecordFuel)
	api.POST("/pumps/:id/investments", s.RecordInvestment)
	api.POST("/pumps/:id/expenses", s.RecordExpense)
	api.POST("/pumps/:id/jobs", s.RecordJobCompletion)

	// -------- Bookings --------
	api.GET("/bookings/conflicts", s.CheckBookingConflict)
	api.POST("/bookings", s.CreateBooking)
	api.GET("/bookings/:id", s.GetBookingByID)
	api.PUT("/bookings/:id", s.UpdateBooking)
	api.PATCH("/bookings/:id/slot", s.MoveBooking)
	api.DELETE("/bookings/:id", s.DeleteBooking)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
