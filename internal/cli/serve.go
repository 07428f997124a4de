package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/pubsearch/internal/apperrors"
	"github.com/example/pubsearch/internal/classifier"
	"github.com/example/pubsearch/internal/index"
	"github.com/example/pubsearch/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// shutdownGrace bounds how long in-flight requests may run after SIGINT or
// SIGTERM before the listener is torn down.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and classification over HTTP",
	Long: `Loads the index and classifier artifacts once and serves them over HTTP:
GET /search?q=<text> for ranked retrieval, POST /classify for topic
classification, GET / for a service banner.

A missing artifact does not prevent startup; the affected endpoint
answers 503 until the process is restarted with the artifact in place.
A corrupt artifact refuses startup.

Example:

  pubsearch serve --index index.bin --classifier classifier.bin --addr :8000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("index", "", "Path to the index file (required)")
	serveCmd.Flags().String("classifier", "", "Path to the classifier file (optional)")
	serveCmd.Flags().String("addr", ":8000", "Listen address")
	serveCmd.Flags().StringSlice("origin", nil, "Frontend origin allowed by CORS (repeatable)")
	_ = serveCmd.MarkFlagRequired("index")
}

func runServe(cmd *cobra.Command, args []string) error {
	indexPath, _ := cmd.Flags().GetString("index")
	classifierPath, _ := cmd.Flags().GetString("classifier")
	addr, _ := cmd.Flags().GetString("addr")
	origins, _ := cmd.Flags().GetStringSlice("origin")
	verbose, _ := cmd.Flags().GetBool("verbose")

	ix, err := loadIndexLenient(indexPath)
	if err != nil {
		return err
	}

	var model *classifier.Model
	if classifierPath != "" {
		model, err = loadClassifierLenient(classifierPath)
		if err != nil {
			return err
		}
	}

	if verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr: addr,
		Handler: server.New(server.Options{
			Index:          ix,
			Classifier:     model,
			AllowedOrigins: origins,
		}).Router(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("serve: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Print("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// loadIndexLenient loads the index, downgrading a missing artifact to a
// warning (the /search endpoint answers 503 until it exists) while still
// refusing to start on a corrupt one.
func loadIndexLenient(path string) (*index.Index, error) {
	ix, err := index.Load(path)
	if err == nil {
		return ix, nil
	}
	var notReady *apperrors.NotReadyError
	if errors.As(err, &notReady) {
		log.Printf("serve: index not available, /search will answer 503: %v", err)
		return nil, nil
	}
	return nil, fmt.Errorf("loading index: %w", err)
}

// loadClassifierLenient mirrors loadIndexLenient for the classifier
// artifact.
func loadClassifierLenient(path string) (*classifier.Model, error) {
	model, err := classifier.Load(path)
	if err == nil {
		return model, nil
	}
	var notReady *apperrors.NotReadyError
	if errors.As(err, &notReady) {
		log.Printf("serve: classifier not available, /classify will answer 503: %v", err)
		return nil, nil
	}
	return nil, fmt.Errorf("loading classifier: %w", err)
}
