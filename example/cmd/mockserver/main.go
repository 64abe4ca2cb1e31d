// Standalone mock FAQ service for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/faqwidget serve -c example/faqwidget.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jclee2044/faqwidget/example/mockbackend"
)

const addr = ":8000"

func main() {
	fmt.Println("Mock FAQ service starting on " + addr)
	fmt.Println("First request per page answers just_crawled, then a stale")
	fmt.Println("cache entry, then the FAQs (sample pages: example.com/,")
	fmt.Println("example.com/pricing, example.com/support)")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockbackend.New(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
