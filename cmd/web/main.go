package main

import (
	"log"
	"net/http"
	"os"
)

// Serves the static marketing-site build. The blog API runs separately.
func main() {
	fs := http.FileServer(http.Dir("web/static"))
	http.Handle("/", fs)

	port := os.Getenv("WEB_PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Web server starting on http://localhost:%s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
