// Package api exposes the calculator and the Daily G-Code service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// Server serves the REST API and the dashboard websocket.
type Server struct {
	svc        *gcode.Service
	calc       astro.ChartCalculator
	hub        *Hub
	engine     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
	metrics    bool
	logger     *log.Logger
}

// Options contains configuration for creating a Server.
type Options struct {
	Service    *gcode.Service
	Hub        *Hub // Default: a new hub, registered as the service notifier
	Addr       string
	EnableCORS bool
	Debug      bool
	// DisableMetrics hides the /metrics endpoint.
	DisableMetrics bool
	Logger         *log.Logger
}

// NewServer creates the gin engine and registers every route.
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("api: service is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	hub := opts.Hub
	if hub == nil {
		hub = NewHub(logger)
		opts.Service.SetNotifier(hub)
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.Debug {
		engine.Use(gin.Logger())
	}
	if opts.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.AllowWebSockets = true
		engine.Use(cors.New(corsConfig))
	}
	engine.Use(requestMetrics())

	s := &Server{
		svc:       opts.Service,
		calc:      opts.Service.Calculator(),
		hub:       hub,
		engine:    engine,
		startTime: time.Now(),
		metrics:   !opts.DisableMetrics,
		logger:    logger,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	if s.metrics {
		s.engine.GET("/metrics", gin.WrapH(observability.Handler()))
	}
	s.engine.GET("/ws/dashboard", s.handleDashboard)

	v1 := s.engine.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("", s.handleCreateUser)
		users.GET("", s.handleListUsers)
		users.GET("/:id", s.handleGetUser)
		users.PUT("/:id", s.handleUpdateUser)
		users.DELETE("/:id", s.handleDeleteUser)
		users.GET("/:id/natal", s.handleUserNatal)
		users.GET("/:id/houses", s.handleUserHouses)
		users.GET("/:id/wheel", s.handleUserWheel)
		users.GET("/:id/transits", s.handleUserTransits)
		users.GET("/:id/daily", s.handleGetDaily)
		users.POST("/:id/daily", s.handleComputeDaily)
		users.GET("/:id/weekly", s.handleWeekly)
		users.GET("/:id/history", s.handleHistory)
		users.GET("/:id/overview", s.handleOverview)
	}

	charts := v1.Group("/charts")
	{
		charts.POST("/natal", s.handleNatal)
		charts.POST("/transits", s.handleTransits)
		charts.POST("/houses", s.handleHouses)
		charts.POST("/wheel", s.handleWheel)
		charts.POST("/intensity", s.handleIntensity)
	}

	v1.GET("/nodes", s.handleNodes)
	v1.GET("/solar-system", s.handleSolarSystem)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the dashboard hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return ctx.Err()
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.RecordHTTPRequest(route, c.Writer.Status())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"engine":            s.calc.EngineName(),
		"uptime":            time.Since(s.startTime).Round(time.Second).String(),
		"dashboard_clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	var userID uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: user_id %q", storage.ErrInvalidInput, raw))
			return
		}
		userID = id
	}
	s.hub.serve(c.Writer, c.Request, userID)
}

// --- users ---

func (s *Server) handleCreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	u := domain.NewUser("", time.Time{}, "", "", "")
	if err := req.apply(u); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.svc.CreateUser(c.Request.Context(), u); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.svc.ListUsers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetUser(c *gin.Context) {
	u, ok := s.userParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	u, ok := s.userParam(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	if err := req.apply(u); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.svc.UpdateUser(c.Request.Context(), u); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteUser(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUserNatal(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	rec, err := s.svc.NatalChart(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNatalResponse(rec))
}

func (s *Server) handleUserHouses(c *gin.Context) {
	u, ok := s.userParam(c)
	if !ok {
		return
	}
	s.respondHouses(c, gcode.BirthData(u))
}

func (s *Server) handleUserWheel(c *gin.Context) {
	u, ok := s.userParam(c)
	if !ok {
		return
	}
	s.respondWheel(c, gcode.BirthData(u))
}

func (s *Server) handleUserTransits(c *gin.Context) {
	u, ok := s.userParam(c)
	if !ok {
		return
	}
	date, ok := s.dateQuery(c, "date")
	if !ok {
		return
	}
	s.respondTransits(c, gcode.BirthData(u), date)
}

func (s *Server) handleGetDaily(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	date, ok := s.dateQuery(c, "date")
	if !ok {
		return
	}
	g, err := s.svc.GetDailyGCode(c.Request.Context(), id, date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDailyResponse(g))
}

func (s *Server) handleComputeDaily(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	date, ok := s.dateQuery(c, "date")
	if !ok {
		return
	}
	g, err := s.svc.DailyGCode(c.Request.Context(), id, date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDailyResponse(g))
}

func (s *Server) handleWeekly(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	start, ok := s.dateQuery(c, "start")
	if !ok {
		return
	}
	week, err := s.svc.WeeklyForecast(c.Request.Context(), id, start)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]dailyResponse, 0, len(week))
	for _, g := range week {
		out = append(out, toDailyResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHistory(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	end, ok := s.dateQuery(c, "end")
	if !ok {
		return
	}
	start := end.AddDate(0, 0, -29)
	if c.Query("start") != "" {
		if start, ok = s.dateQuery(c, "start"); !ok {
			return
		}
	}
	points, err := s.svc.History(c.Request.Context(), id, start, end)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]scorePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, scorePointResponse{
			TransitDate: p.TransitDate.Format(time.DateOnly),
			Score:       p.Score,
			Level:       p.Level.String(),
			AspectCount: p.AspectCount,
			Engine:      p.Engine,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleOverview(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	o, err := s.svc.Overview(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOverviewResponse(o))
}

// --- stateless charts ---

func (s *Server) handleNatal(c *gin.Context) {
	birth, ok := s.bindBirth(c)
	if !ok {
		return
	}
	start := time.Now()
	chart, err := s.calc.NatalChart(birth)
	if err != nil {
		observability.RecordCalculationError("natal_chart")
		s.writeError(c, err)
		return
	}
	observability.RecordChart("natal", time.Since(start))
	c.JSON(http.StatusOK, chart)
}

func (s *Server) handleTransits(c *gin.Context) {
	var req transitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	birth, err := req.birthData()
	if err != nil {
		s.writeError(c, err)
		return
	}
	target := s.svc.Today()
	if req.TargetDate != "" {
		if target, err = parseDate(req.TargetDate, "target_date"); err != nil {
			s.writeError(c, err)
			return
		}
	}
	s.respondTransits(c, birth, target)
}

func (s *Server) handleHouses(c *gin.Context) {
	birth, ok := s.bindBirth(c)
	if !ok {
		return
	}
	s.respondHouses(c, birth)
}

func (s *Server) handleWheel(c *gin.Context) {
	birth, ok := s.bindBirth(c)
	if !ok {
		return
	}
	s.respondWheel(c, birth)
}

func (s *Server) handleIntensity(c *gin.Context) {
	var req intensityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return
	}
	score := s.calc.Intensity(req.Planets, req.Aspects)
	c.JSON(http.StatusOK, intensityResponse{Score: score, Level: domain.LevelForScore(score).String()})
}

func (s *Server) handleNodes(c *gin.Context) {
	date, ok := s.dateQuery(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.calc.LunarNodes(date))
}

func (s *Server) handleSolarSystem(c *gin.Context) {
	date, ok := s.dateQuery(c, "date")
	if !ok {
		return
	}
	start := time.Now()
	system, err := s.calc.SolarSystemTransits(date)
	if err != nil {
		observability.RecordCalculationError("solar_system")
		s.writeError(c, err)
		return
	}
	observability.RecordChart("solar_system", time.Since(start))
	c.JSON(http.StatusOK, system)
}

// --- helpers ---

func (s *Server) respondTransits(c *gin.Context, birth astro.BirthData, target time.Time) {
	start := time.Now()
	tr, err := s.calc.Transits(birth, target)
	if err != nil {
		observability.RecordCalculationError("transits")
		s.writeError(c, err)
		return
	}
	observability.RecordChart("transits", time.Since(start))
	score := s.calc.Intensity(tr.Planets, tr.Aspects)
	c.JSON(http.StatusOK, gin.H{
		"transits":        tr,
		"g_code_score":    score,
		"intensity_level": domain.LevelForScore(score),
	})
}

func (s *Server) respondHouses(c *gin.Context, birth astro.BirthData) {
	start := time.Now()
	houses, err := s.calc.PlacidusHouses(birth)
	if err != nil {
		observability.RecordCalculationError("houses")
		s.writeError(c, err)
		return
	}
	if houses.System == astro.HouseEqual {
		observability.RecordHouseFallback()
	}
	observability.RecordChart("houses", time.Since(start))
	c.JSON(http.StatusOK, houses)
}

func (s *Server) respondWheel(c *gin.Context, birth astro.BirthData) {
	start := time.Now()
	wheel, err := s.calc.NatalWheel(birth)
	if err != nil {
		observability.RecordCalculationError("natal_wheel")
		s.writeError(c, err)
		return
	}
	if wheel.Houses.System == astro.HouseEqual {
		observability.RecordHouseFallback()
	}
	observability.RecordChart("wheel", time.Since(start))
	c.JSON(http.StatusOK, wheel)
}

func (s *Server) bindBirth(c *gin.Context) (astro.BirthData, bool) {
	var req birthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err))
		return astro.BirthData{}, false
	}
	birth, err := req.birthData()
	if err != nil {
		s.writeError(c, err)
		return astro.BirthData{}, false
	}
	return birth, true
}

func (s *Server) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.writeError(c, fmt.Errorf("%w: user id %q", storage.ErrInvalidInput, c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) userParam(c *gin.Context) (*domain.User, bool) {
	id, ok := s.idParam(c)
	if !ok {
		return nil, false
	}
	u, err := s.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return u, true
}

// dateQuery reads a YYYY-MM-DD query parameter, defaulting to today.
func (s *Server) dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return s.svc.Today(), true
	}
	t, err := parseDate(raw, name)
	if err != nil {
		s.writeError(c, err)
		return time.Time{}, false
	}
	return t, true
}
