/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/manualbot/handler"
	"github.com/tieubaoca/manualbot/service"
)

const shutdownTimeout = 15 * time.Second

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document and chat server",
	Long:  `Serves the upload, manual and ask endpoints plus the /ws chat socket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		router := handler.NewRouter(handler.RouterConfig{
			Ingest:      a.ingest,
			Extractor:   a.extractor,
			Answer:      a.answer,
			Manuals:     a.manuals,
			Search:      a.search,
			Chat:        service.NewWebSocketService(a.answer, cfg.Chat),
			AdminSecret: cfg.Auth.AdminSecret,
		})
		if cfg.Auth.AdminSecret == "" {
			log.Info().Msg("auth.admin_secret not set, DELETE /manual is disabled")
		}

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Str("vector_store", cfg.VectorStore.Type).Msg("Starting server")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
