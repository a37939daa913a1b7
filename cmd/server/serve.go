package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/inamate/inamate/whiteboard/internal/auth"
	"github.com/inamate/inamate/whiteboard/internal/board"
	"github.com/inamate/inamate/whiteboard/internal/collab"
	"github.com/inamate/inamate/whiteboard/internal/config"
	mw "github.com/inamate/inamate/whiteboard/internal/middleware"
	"github.com/inamate/inamate/whiteboard/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the board API and collaboration server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case "memory":
		slog.Warn("using in-memory store; boards are lost on restart")
		return store.NewMemory(), func() {}, nil
	case "postgres":
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	boardService := board.NewService(st)
	boardHandler := board.NewHandler(boardService)

	hub := collab.NewHub(boardService,
		collab.WithSaveInterval(cfg.SaveInterval),
		collab.WithEphemeralBoard(cfg.PlaygroundBoard),
	)
	go hub.Run()

	r := mux.NewRouter()

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	boardHandler.Routes(api)

	ws := &wsHandler{
		hub:        hub,
		auth:       authService,
		boards:     boardService,
		playground: cfg.PlaygroundBoard,
		origins:    originPatterns(cfg.Origins()),
	}
	r.Handle("/ws/board/{boardId}", ws)

	addr := fmt.Sprintf(":%d", cfg.Port)
	// CORS wraps the router so preflights never reach route matching or
	// the auth middleware.
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.Recovery(mw.Logger(mw.CORS(cfg.Origins())(r))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		hub.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	// Save every open board before the store goes away.
	hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// originPatterns turns CORS origins into the host patterns the websocket
// accept check expects.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			out = append(out, o)
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}

type wsHandler struct {
	hub        *collab.Hub
	auth       *auth.Service
	boards     *board.Service
	playground string
	origins    []string
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	var userID, displayName string
	if boardID == h.playground {
		userID = "anon-" + uuid.NewString()[:8]
		displayName = "Anonymous"
	} else {
		// Browsers cannot set headers on websocket requests.
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		var err error
		userID, err = h.auth.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if err := h.boards.CheckMembership(r.Context(), boardID, userID); err != nil {
			if errors.Is(err, board.ErrNotMember) {
				http.Error(w, "not a board member", http.StatusForbidden)
				return
			}
			slog.Error("check membership", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := h.auth.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(h.hub, conn, userID, displayName, boardID, uuid.NewString())
	if err := h.hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
