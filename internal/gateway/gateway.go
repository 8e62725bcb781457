// ABOUTME: Gateway orchestrator that coordinates gRPC and HTTP servers
// ABOUTME: Wires store, accounts, documents and collaborators, and manages listener lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"
	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/docket/internal/accounts"
	"github.com/2389/docket/internal/audit"
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/config"
	"github.com/2389/docket/internal/dedupe"
	"github.com/2389/docket/internal/documents"
	"github.com/2389/docket/internal/filestore"
	"github.com/2389/docket/internal/legal"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/rpc"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

// Tailnet ports used when tailscale is enabled.
const (
	tailscaleGRPCPort = ":50051"
	tailscaleHTTPPort = ":80"
)

// maxRequestIDs bounds the idempotency cache.
const maxRequestIDs = 100_000

// Gateway owns the servers and the services behind them.
type Gateway struct {
	config      *config.Config
	store       store.Store
	accounts    *accounts.Service
	documents   *documents.Service
	gate        *auth.Gate
	requests    *dedupe.Cache
	grpcServer  *grpc.Server
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the SQLite store, honoring DOCKET_DB_PATH.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("DOCKET_DB_PATH"); envPath != "" {
		dbPath = envPath
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// newCatalog selects the HTTP catalog when a URL is configured and the
// built-in static catalog otherwise. Both fetch sources over HTTP.
func newCatalog(cfg *config.Config, logger *slog.Logger) legal.Catalog {
	httpCatalog := legal.NewHTTPCatalog(cfg.Legal.CatalogURL, cfg.Legal.Timeout, cfg.Storage.MaxFileSize, logger)
	if cfg.Legal.CatalogURL != "" {
		logger.Info("using remote legal catalog", "url", cfg.Legal.CatalogURL)
		return httpCatalog
	}
	logger.Info("using built-in legal catalog", "entries", len(legal.DefaultEntries))
	return legal.NewStaticCatalog(legal.DefaultEntries, httpCatalog)
}

// New builds a Gateway from cfg. Nothing listens until Run or Serve.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}

	files, err := filestore.New(cfg.Storage.Dir, cfg.Storage.MaxFileSize)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	requests := dedupe.New(cfg.Idempotency.TTL, maxRequestIDs)
	trail := audit.NewTrail(s)
	pol := policy.New()
	gate := auth.NewGate(s, verifier)

	gw := &Gateway{
		config:   cfg,
		store:    s,
		accounts: accounts.NewService(s, verifier, cfg.Auth.TokenTTL, logger),
		documents: documents.NewService(documents.Deps{
			Store:    s,
			Engine:   workflow.NewEngine(s, trail, pol, logger),
			Trail:    trail,
			Policy:   pol,
			Files:    files,
			Catalog:  newCatalog(cfg, logger.With("component", "legal")),
			Requests: requests,
			Logger:   logger,
		}),
		gate:     gate,
		requests: requests,
		logger:   logger.With("component", "gateway"),
	}

	gw.grpcServer = rpc.NewGRPCServer(gate, logger)
	rpc.Register(gw.grpcServer, rpc.Services{
		Accounts:  gw.accounts,
		Documents: gw.documents,
		Users:     s,
		Logger:    logger,
	})

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           gw.routes(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Accounts returns the account service, for bootstrap tooling.
func (g *Gateway) Accounts() *accounts.Service {
	return g.accounts
}

// Handler returns the HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

func (g *Gateway) setupTCPListeners() (grpcLn, httpLn net.Listener, err error) {
	g.logger.Info("starting gateway",
		"grpc_addr", g.config.Server.GRPCAddr,
		"http_addr", g.config.Server.HTTPAddr,
	)

	grpcLn, err = net.Listen("tcp", g.config.Server.GRPCAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on gRPC address: %w", err)
	}

	httpLn, err = net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = grpcLn.Close()
		return nil, nil, fmt.Errorf("listening on HTTP address: %w", err)
	}

	return grpcLn, httpLn, nil
}

func (g *Gateway) setupListeners(ctx context.Context) (grpcLn, httpLn net.Listener, err error) {
	if g.config.Tailscale.Enabled {
		if g.config.Server.GRPCAddr != "" || g.config.Server.HTTPAddr != "" {
			g.logger.Warn("server.grpc_addr and server.http_addr are ignored when tailscale is enabled")
		}
		return g.setupTailscaleListeners(ctx)
	}
	return g.setupTCPListeners()
}

// Run opens the configured listeners and serves until ctx is canceled or a
// server fails, then shuts down.
func (g *Gateway) Run(ctx context.Context) error {
	grpcLn, httpLn, err := g.setupListeners(ctx)
	if err != nil {
		return err
	}
	return g.Serve(ctx, grpcLn, httpLn)
}

// Serve serves on the given listeners until ctx is canceled or a server
// fails, then shuts down.
func (g *Gateway) Serve(ctx context.Context, grpcLn, httpLn net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		g.logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
		if err := g.grpcServer.Serve(grpcLn); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		g.logger.Info("HTTP server listening", "addr", httpLn.Addr().String())
		if err := g.httpServer.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := g.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "docket", "tailscale"), nil
}

func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

func (g *Gateway) setupTailscaleListeners(ctx context.Context) (grpcLn, httpLn net.Listener, err error) {
	tsCfg := g.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, nil, err
	}

	g.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	g.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	st, err := g.tsnetServer.Up(ctx)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, nil, fmt.Errorf("starting tailscale: %w", err)
	}
	g.logTailscaleStatus(tsCfg.Hostname, st)

	grpcLn, err = g.tsnetServer.Listen("tcp", tailscaleGRPCPort)
	if err != nil {
		_ = g.tsnetServer.Close()
		return nil, nil, fmt.Errorf("listening on tailscale gRPC port: %w", err)
	}

	httpLn, err = g.tsnetServer.Listen("tcp", tailscaleHTTPPort)
	if err != nil {
		_ = grpcLn.Close()
		_ = g.tsnetServer.Close()
		return nil, nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
	}
	return grpcLn, httpLn, nil
}

func (g *Gateway) logTailscaleStatus(hostname string, st *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(st.TailscaleIPs) > 0 {
		tsAddr = st.TailscaleIPs[0].String()
	} else {
		g.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if st.Self != nil {
		dnsName = st.Self.DNSName
	}
	g.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// shutdownGRPCServer gracefully stops the gRPC server or force-stops on context cancel.
func (g *Gateway) shutdownGRPCServer(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		g.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		g.grpcServer.Stop()
	}
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops all servers and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))

	g.shutdownGRPCServer(ctx)

	if g.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", g.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", g.store.Close())

	if g.requests != nil {
		g.requests.Close()
	}

	return errors.Join(errs...)
}
