package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rpggio/filetracker/internal/auth"
	"github.com/rpggio/filetracker/internal/config"
	"github.com/rpggio/filetracker/internal/mcp"
	"github.com/rpggio/filetracker/internal/router"
	"github.com/rpggio/filetracker/internal/transport"
	"github.com/rpggio/filetracker/internal/workspace"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var version = "dev"

const usage = `usage: filetracker <command> [folder...]

commands:
  serve [folder...]   serve the panel (default)
  login               sign in and store the session user
  logout              clear the session user
  mcp [folder...]     serve the MCP tools over stdio

Configuration is read from FILETRACKER_CONFIG_PATH and FILETRACKER_* variables.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("filetracker", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cmd, rest := "serve", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitError
	}

	// Stdio mode keeps stdout clean for JSON-RPC.
	var logOut io.Writer = os.Stdout
	if cmd == "mcp" {
		logOut = os.Stderr
	}
	logger, closeLog := newLogger(cfg.Log, logOut)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, folders(cfg, rest, true), logger)
	case "login":
		err = runLogin(ctx, cfg, logger)
	case "logout":
		err = runLogout(ctx, cfg, logger)
	case "mcp":
		err = runMCP(ctx, cfg, folders(cfg, rest, false), logger)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}
	if err != nil {
		logger.Error("filetracker failed", "command", cmd, "error", err)
		return exitError
	}
	return exitOK
}

// folders picks the workspace: folder arguments, then configuration, then
// the working directory when useCwd is set.
func folders(cfg config.Config, args []string, useCwd bool) []string {
	if len(args) > 0 {
		return args
	}
	if len(cfg.Workspace.Folders) > 0 {
		return cfg.Workspace.Folders
	}
	if !useCwd {
		return nil
	}
	if wd, err := os.Getwd(); err == nil {
		return []string{wd}
	}
	return nil
}

func authConfig(cfg config.Config) auth.Config {
	return auth.Config{
		Host:      cfg.Auth.Host,
		Port:      cfg.Auth.Port,
		StaticDir: cfg.Auth.StaticDir,
		OIDC: auth.OIDCConfig{
			IssuerURL:    cfg.Auth.OIDC.Issuer,
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, dirs []string, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	hub := transport.NewHub(logger)
	ws := workspace.New(dirs)
	authServer := auth.NewServer(authConfig(cfg), a.sessions, auth.SystemBrowser, hub, hub, logger)
	r := router.New(a.sessions, a.projects, ws, authServer, hub,
		router.WithLogger(logger),
		router.WithBaseContext(ctx),
	)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           transport.NewServer(r, hub, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	panelURL := "http://" + ln.Addr().String() + "/"
	name, _ := ws.Name()
	logger.Info("panel listening", "url", panelURL, "workspace", name)
	if cfg.Server.OpenBrowser {
		if err := auth.SystemBrowser.Open(panelURL); err != nil {
			logger.Warn("could not open browser", "url", panelURL, "error", err)
		}
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("panel server: %w", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func runLogin(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	authServer := auth.NewServer(authConfig(cfg), a.sessions, auth.SystemBrowser, nil, logNotifier{logger}, logger)
	u, err := authServer.Authenticate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s <%s>\n", u.DisplayName, u.Email)
	return nil
}

func runLogout(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func runMCP(ctx context.Context, cfg config.Config, dirs []string, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("starting stdio transport")
	server := mcp.NewServer(mcp.Config{
		Sessions:  a.sessions,
		Projects:  a.projects,
		Workspace: workspace.New(dirs),
		Version:   version,
		Logger:    logger,
	})
	if err := mcp.Run(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}
