package httpserver

import "os"

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api")
	api.GET("/health", s.liveness)
	api.GET("/country/:iso3", s.getCountry)
	api.GET("/places/:iso3", s.listPlaces)
	api.GET("/place/:qid", s.getPlaceDetail)

	s.setupStatic()
}

// setupStatic serves the browser frontend when the configured directory exists.
func (s *Server) setupStatic() {
	dir := s.config.StaticDir
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if s.logger != nil {
			s.logger.WithField("static_dir", dir).Warn("static directory not found; frontend not served")
		}
		return
	}
	fsys := os.DirFS(dir)
	s.echo.FileFS("/", "index.html", fsys)
	s.echo.StaticFS("/", fsys)
}
