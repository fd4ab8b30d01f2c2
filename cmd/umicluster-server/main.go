// Command umicluster-server folds a FASTQ pair once and serves its cluster
// reports over a REST API.
//
// Usage:
//
//	umicluster-server [flags]
//
// It accepts the input and report flags of "umicluster cluster" plus
// --addr (default: localhost:8080).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grailbio/base/log"
	"github.com/spf13/pflag"

	"github.com/11bthornton/clustering/api/handlers"
	"github.com/11bthornton/clustering/api/middleware"
	"github.com/11bthornton/clustering/internal/config"
	"github.com/11bthornton/clustering/pkg/clustering"
)

func main() {
	fs := pflag.NewFlagSet("umicluster-server", pflag.ExitOnError)
	config.AddInputFlags(fs)
	config.AddReportFlags(fs)
	config.AddServerFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(config.New(), fs)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := clustering.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	res.UMIToCDR.FilterThreshold(cfg.Threshold)
	res.CDRToUMI.FilterThreshold(cfg.Threshold)

	reporter, err := clustering.NewReporter(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router(handlers.NewClusters(res, reporter)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Printf("server is shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(sctx); err != nil {
			log.Error.Printf("could not gracefully shut down: %v", err)
		}
		close(done)
	}()

	log.Printf("umicluster API listening on http://%s", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("could not listen on %s: %v", cfg.Addr, err)
	}

	<-done
	log.Printf("server stopped")
}

func router(clusters *handlers.Clusters) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// report endpoints; the first request to each report computes it
		clusters.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))
			r.Post("/align", handlers.AlignHandler)
			r.Post("/diff", handlers.PositionWiseHandler)
			r.Post("/translate", handlers.TranslateHandler)
			r.Post("/quality", handlers.QualityHandler)
		})
	})

	return r
}
