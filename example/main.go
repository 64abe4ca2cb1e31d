package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jclee2044/faqwidget"
	"github.com/jclee2044/faqwidget/example/mockbackend"
)

func main() {
	// start the mock FAQ service
	go func() {
		srv := &http.Server{Addr: ":8000", Handler: mockbackend.New(), ReadHeaderTimeout: 10 * time.Second}
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("mock backend error", "error", err)
			os.Exit(1)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	g, err := faqwidget.NewGallery(
		faqwidget.WithWidget("pricing", faqwidget.Attributes{
			URL:     "https://example.com/pricing",
			Heading: "Pricing questions",
		}),
		faqwidget.WithWidget("support", faqwidget.Attributes{
			URL:    "https://example.com/support",
			Config: `{"fontFamily": "Georgia, serif", "headerBgColor": "#1f2937", "headerTextColor": "#f9fafb"}`,
		}),
		faqwidget.WithWidget("inline", faqwidget.Attributes{
			Heading:    "Shipping",
			InlineData: `[{"question": "Do you ship abroad?", "answer": "Yes, to 40 countries."}, {"question": "How long does delivery take?", "answer": "3 to 5 working days."}]`,
		}),
		faqwidget.WithWidget("missing", faqwidget.Attributes{
			URL: "https://nowhere.test/",
		}),
		faqwidget.WithPort(8080),
		faqwidget.WithRefreshInterval(time.Minute),
		faqwidget.WithWidgetOptions(faqwidget.WithRetryDelay(time.Second)),
	)
	if err != nil {
		slog.Error("failed to create gallery", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   FAQ Widget Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Widgets:                                            ║")
	fmt.Println("  ║   • 2 remote (mock service on :8000)                  ║")
	fmt.Println("  ║   • 1 inline data block                               ║")
	fmt.Println("  ║   • 1 page without FAQs (error view)                  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Widgets re-mount every minute; metrics at /metrics  ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := g.Start(ctx); err != nil {
		slog.Error("gallery error", "error", err)
		os.Exit(1)
	}
}
