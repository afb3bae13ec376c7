// Command shikaku plays, serves and generates Shikaku puzzles.
//
// Subcommands:
//
//	play      interactive terminal game (default when no command is given)
//	serve     HTTP server exposing REST API, WebSocket, and an /mcp endpoint
//	mcp       MCP stdio server, reusing a running API server when one exists
//	generate  write generated puzzle files
//	solve     solve a puzzle file and report whether its solution is unique
//
// A .env file is loaded on startup; PORT, CONFIG_DIR, SESSIONS_DIR,
// NGROK_AUTHTOKEN and NGROK_DOMAIN are honored as flag defaults.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/shikaku-go/shikaku/api"
	"github.com/shikaku-go/shikaku/game/config"
	"github.com/shikaku-go/shikaku/game/engine"
	"github.com/shikaku-go/shikaku/game/generator"
	"github.com/shikaku-go/shikaku/game/service"
	"github.com/shikaku-go/shikaku/game/session"
	"github.com/shikaku-go/shikaku/game/solver"
	"github.com/shikaku-go/shikaku/transport/mcp"
	"github.com/shikaku-go/shikaku/transport/websocket"
	"github.com/shikaku-go/shikaku/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Shikaku Puzzle"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	root := &cli.Command{
		Name:           "shikaku",
		Usage:          "play, serve and generate Shikaku puzzles",
		Version:        Version,
		DefaultCommand: "play",
		Commands: []*cli.Command{
			playCommand(),
			serveCommand(),
			mcpCommand(),
			generateCommand(),
			solveCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func configsDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "configs-dir",
		Value:   "configs",
		Usage:   "directory containing puzzle presets",
		Sources: cli.EnvVars("CONFIG_DIR"),
	}
}

func sessionsDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "sessions-dir",
		Value:   "sessions",
		Usage:   "directory for persisted sessions",
		Sources: cli.EnvVars("SESSIONS_DIR"),
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a puzzle in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"},
				Usage: "preset name to play instead of a generated puzzle"},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"},
				Usage: "generated puzzle width (default 10)"},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"},
				Usage: "generated puzzle height (default 10)"},
			&cli.Int64Flag{Name: "seed", Usage: "generation seed (0 picks one)"},
			configsDirFlag(),
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	opts := generator.Options{
		Width:  int(cmd.Int("width")),
		Height: int(cmd.Int("height")),
		Seed:   cmd.Int64("seed"),
	}

	var puzzle *engine.PuzzleConfig
	if name := cmd.String("config"); name != "" {
		manager, err := config.NewManager(cmd.String("configs-dir"))
		if err != nil {
			return fmt.Errorf("config manager: %w", err)
		}
		puzzle, err = manager.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("load preset %q: %w", name, err)
		}
	} else {
		var err error
		puzzle, err = generator.Generate(opts)
		if err != nil {
			return err
		}
	}

	app, err := tui.New(puzzle, opts)
	if err != nil {
		return err
	}
	return app.Run()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port",
				Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain",
				Sources: cli.EnvVars("NGROK_DOMAIN")},
			configsDirFlag(),
			sessionsDirFlag(),
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	log.Printf("Starting %s v%s", AppName, Version)

	gameService, sessionManager, err := initializeServices(
		cmd.String("configs-dir"), cmd.String("sessions-dir"))
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(gameService, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHTTPHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(runCtx, mainRouter, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if err := sessionManager.SaveAllSessions(); err != nil {
		log.Printf("Warning: failed to save sessions on shutdown: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// mcpHTTPHandler exposes the MCP server over plain HTTP: one JSON-RPC
// message per POST body
func mcpHTTPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	}
}

// runNgrokTunnel serves the router through an ngrok tunnel until the
// context is cancelled
func runNgrokTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)
	log.Printf("  Game UI (ngrok): %s/", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires config manager, session persistence, session
// manager and the game service, and starts the background maintenance
// routines.
func initializeServices(configsDir, sessionsDir string) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: failed to load persisted sessions: %v", err)
	} else if n := sessionManager.Count(); n > 0 {
		log.Printf("Restored %d persisted sessions", n)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(sessionManager)
	go filesystemSyncRoutine(sessionManager, persistence)
	go dirtySyncRoutine(sessionManager)

	return gameService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
			log.Printf("Cleaned up %d expired sessions", removed)
		}
	}
}

// filesystemSyncRoutine drops in-memory sessions whose files were
// deleted out from under the server
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, s := range manager.List() {
			if !persistence.Exists(s.ID) {
				if err := manager.DeleteFromMemory(s.ID); err == nil {
					pruned++
					log.Printf("Pruned session %s from memory (file deleted)", s.ID)
				}
			}
		}
		if pruned > 0 {
			log.Printf("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// dirtySyncRoutine flushes mutated sessions to disk
func dirtySyncRoutine(manager *session.Manager) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if saved := manager.SyncDirty(); saved > 0 {
			log.Printf("Persisted %d dirty sessions", saved)
		}
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "run an MCP stdio server for AI agents",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080,
				Usage:   "port of an already-running API server to reuse",
				Sources: cli.EnvVars("PORT")},
			configsDirFlag(),
			sessionsDirFlag(),
		},
		Action: runStdioMCP,
	}
}

// runStdioMCP serves MCP over stdio. It reuses an API server already
// listening on the configured port; otherwise it starts an internal one
// on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	externalURL := fmt.Sprintf("http://localhost:%d", int(cmd.Int("port")))
	baseURL := externalURL

	log.Printf("Checking for API server at %s...", externalURL)
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No API server found, starting internal HTTP server")

		gameService, _, err := initializeServices(
			cmd.String("configs-dir"), cmd.String("sessions-dir"))
		if err != nil {
			return fmt.Errorf("initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("reserve internal port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()

		internal := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		// Give the listener a moment before the first tool call
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", listener.Addr())
		log.Printf("Internal HTTP server on %s for MCP stdio", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "generate puzzle files",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Aliases: []string{"W"},
				Value: engine.DefaultGridWidth, Usage: "puzzle width"},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"},
				Value: engine.DefaultGridHeight, Usage: "puzzle height"},
			&cli.Int64Flag{Name: "seed", Usage: "generation seed (0 picks one)"},
			&cli.IntFlag{Name: "count", Value: 1, Usage: "number of puzzles"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"},
				Usage: "output directory (default prints to stdout)"},
			&cli.BoolFlag{Name: "allow-ambiguous", Usage: "skip the unique-solution check"},
			&cli.BoolFlag{Name: "profile", Usage: "write a CPU profile"},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("profile") {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	opts := generator.Options{
		Width:          int(cmd.Int("width")),
		Height:         int(cmd.Int("height")),
		AllowAmbiguous: cmd.Bool("allow-ambiguous"),
	}

	// Resolve the seed here so a fixed --seed with --count produces a
	// reproducible series
	baseSeed := cmd.Int64("seed")
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	outDir := cmd.String("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	count := int(cmd.Int("count"))
	for i := 0; i < count; i++ {
		opts.Seed = baseSeed + int64(i)
		puzzle, err := generator.Generate(opts)
		if err != nil {
			return fmt.Errorf("puzzle %d of %d: %w", i+1, count, err)
		}

		data, err := json.MarshalIndent(puzzle, "", "  ")
		if err != nil {
			return err
		}

		if outDir == "" {
			fmt.Println(string(data))
			continue
		}

		filename := filepath.Join(outDir,
			fmt.Sprintf("shikaku_%dx%d_%d.json", opts.Width, opts.Height, opts.Seed))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return err
		}
		clues, _ := engine.ParseLayout(puzzle.Layout)
		log.Printf("Wrote %s (%d clues)", filename, len(clues))
	}
	return nil
}

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "solve a puzzle file and report whether its solution is unique",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "profile", Usage: "write a CPU profile"},
		},
		Action: runSolve,
	}
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: solve <file>")
	}

	if cmd.Bool("profile") {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	puzzle, err := engine.LoadPuzzleConfig(path)
	if err != nil {
		return err
	}
	clues, err := engine.ParseLayout(puzzle.Layout)
	if err != nil {
		return err
	}

	start := time.Now()
	rects, ok := solver.Solve(puzzle.Width, puzzle.Height, clues)
	elapsed := time.Since(start)
	if !ok {
		return fmt.Errorf("%s: no solution", path)
	}

	fmt.Printf("%s: %dx%d, %d clues\n", path, puzzle.Width, puzzle.Height, len(clues))
	fmt.Printf("Solved in %v with %d rectangles\n", elapsed.Round(time.Microsecond), len(rects))
	if solver.Count(puzzle.Width, puzzle.Height, clues, 2) == 1 {
		fmt.Println("Solution is unique")
	} else {
		fmt.Println("Multiple solutions exist")
	}
	for _, line := range renderSolution(puzzle.Width, puzzle.Height, rects) {
		fmt.Println(line)
	}
	return nil
}

// renderSolution letters each rectangle and paints the grid with its
// labels
func renderSolution(width, height int, rects []engine.Rect) []string {
	const labels = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	cells := make([]byte, width*height)
	for i := range cells {
		cells[i] = '.'
	}
	for i, r := range rects {
		label := labels[i%len(labels)]
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				cells[y*width+x] = label
			}
		}
	}
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		lines[y] = string(cells[y*width : (y+1)*width])
	}
	return lines
}
