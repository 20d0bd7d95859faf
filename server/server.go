package server

import (
	"os"
)

type Server struct {
	Port string
}

// Run starts the router. The PORT environment variable wins over the
// configured port so platform schedulers can override it.
func (s *Server) Run(runner interface{ Run(addr ...string) error }) error {
	port := os.Getenv("PORT")
	if port == "" {
		port = s.Port
	}
	if port == "" {
		port = "8080"
	}
	return runner.Run(":" + port)
}
