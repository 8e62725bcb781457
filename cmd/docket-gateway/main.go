// ABOUTME: Entry point for the docket-gateway document workflow server
// ABOUTME: Serves gRPC and HTTP, writes configs and bootstraps the first administrator

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/docket/internal/config"
	"github.com/2389/docket/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
     _            _        _
  __| | ___   ___| | _____| |_
 / _' |/ _ \ / __| |/ / _ \ __|
| (_| | (_) | (__|   <  __/ |_
 \__,_|\___/ \___|_|\_\___|\__|
`

// getDataPath returns the path to the docket data directory.
// Priority: XDG_DATA_HOME/docket > ~/.local/share/docket
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "docket")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: docket-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                                Start the gateway server")
		fmt.Println("  init                                 Create a new config file interactively")
		fmt.Println("  bootstrap --name NAME --email EMAIL  Create the first administrator and token")
		fmt.Println("  health                               Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Files:     %s\n", cfg.Storage.Dir)

	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	} else {
		green.Print("    ▶ ")
		fmt.Printf("gRPC:      %s\n", cfg.Server.GRPCAddr)
		green.Print("    ▶ ")
		fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	}

	green.Print("    ▶ ")
	fmt.Printf("Legal:     ")
	if cfg.Legal.CatalogURL != "" {
		fmt.Println(cfg.Legal.CatalogURL)
	} else {
		yellow.Println("built-in catalog")
	}

	fmt.Println()

	logger.Info("starting docket-gateway",
		"config", configPath,
		"grpc_addr", cfg.Server.GRPCAddr,
		"http_addr", cfg.Server.HTTPAddr,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			mu:    &sync.Mutex{},
			out:   os.Stdout,
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
// Handlers derived with WithAttrs share the parent's mutex.
type colorHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + prefix + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, buf.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		mu:     h.mu,
		out:    h.out,
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		mu:     h.mu,
		out:    h.out,
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runHealth checks liveness and then readiness of a running gateway.
func runHealth(ctx context.Context) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	for _, path := range []string{"/health", "/health/ready"} {
		body, err := fetchHealth(ctx, fmt.Sprintf("http://%s%s", cfg.Server.HTTPAddr, path))
		if err != nil {
			return err
		}
		fmt.Printf("%-14s %s\n", path, body)
	}

	fmt.Println("healthy")
	return nil
}

func fetchHealth(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy: %s returned status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

// bootstrapArgs holds the parsed bootstrap flags.
type bootstrapArgs struct {
	name       string
	email      string
	department string
}

// parseBootstrapArgs accepts both "--flag value" and "--flag=value".
func parseBootstrapArgs(args []string) (bootstrapArgs, error) {
	var out bootstrapArgs
	targets := map[string]*string{
		"--name":       &out.name,
		"-n":           &out.name,
		"--email":      &out.email,
		"-e":           &out.email,
		"--department": &out.department,
		"-d":           &out.department,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if key, value, ok := strings.Cut(arg, "="); ok {
			dst, known := targets[key]
			if !known {
				return out, fmt.Errorf("unknown flag: %s", key)
			}
			*dst = value
			continue
		}
		dst, known := targets[arg]
		switch {
		case known:
			if i+1 >= len(args) {
				return out, fmt.Errorf("%s requires a value", arg)
			}
			*dst = args[i+1]
			i++
		case strings.HasPrefix(arg, "-"):
			return out, fmt.Errorf("unknown flag: %s", arg)
		default:
			return out, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	out.name = strings.TrimSpace(out.name)
	out.email = strings.TrimSpace(out.email)
	out.department = strings.TrimSpace(out.department)

	if out.name == "" {
		return out, errors.New("--name flag is required")
	}
	if out.email == "" {
		return out, errors.New("--email flag is required")
	}
	if out.department == "" {
		out.department = "administration"
	}
	return out, nil
}

// runBootstrap performs first-time setup of the gateway:
// 1. Creates config file with random JWT secret (if not exists)
// 2. Creates database and the first ADMIN account
// 3. Saves a token for docket-admin
//
// This is a one-command setup: docket-gateway bootstrap --name "Your Name" --email you@example.com
func runBootstrap(ctx context.Context, rawArgs []string) error {
	args, err := parseBootstrapArgs(rawArgs)
	if err != nil {
		return err
	}

	configPath := config.DefaultPath()
	dataPath := getDataPath()

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		secret, err := generateSecret()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		content := renderConfig(configValues{
			header:     "Generated by docket-gateway bootstrap",
			grpcAddr:   "localhost:50051",
			httpAddr:   "localhost:8080",
			dbPath:     filepath.Join(dataPath, "docket.db"),
			storageDir: filepath.Join(dataPath, "files"),
			jwtSecret:  secret,
			logLevel:   "info",
			logFormat:  "text",
		})
		if err := writeConfig(configPath, content); err != nil {
			return err
		}

		green.Printf("  ✓ Created config: %s\n", configPath)
	} else {
		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw, err := gateway.New(cfg, quiet)
	if err != nil {
		return fmt.Errorf("opening gateway: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = gw.Shutdown(shutdownCtx)
	}()

	green.Printf("  ✓ Database: %s\n", cfg.Database.Path)

	res, password, err := gw.Accounts().Bootstrap(ctx, args.name, args.email, args.department)
	if err != nil {
		return err
	}

	green.Printf("  ✓ Created administrator: %s\n", res.User.Name)

	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if err := os.WriteFile(tokenPath, []byte(res.Token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	green.Printf("  ✓ Saved token: %s\n", tokenPath)

	expiresAt := time.Now().Add(cfg.Auth.TokenTTL).UTC()

	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Administrator")
	cyan.Println("  -------------")
	fmt.Printf("  ID:           %s\n", res.User.ID)
	fmt.Printf("  Name:         %s\n", res.User.Name)
	fmt.Printf("  Email:        %s\n", res.User.Email)
	fmt.Printf("  Department:   %s\n", res.User.Department)
	fmt.Printf("  Role:         %s\n", res.User.Role)
	fmt.Printf("  Password:     %s\n", password)
	fmt.Printf("  Token:        %s (expires %s)\n", tokenPath, expiresAt.Format("Jan 02, 2006 15:04"))
	fmt.Println()

	yellow.Println("  Store the password now; it is not shown again.")
	fmt.Println()
	yellow.Println("  Ready to go:")
	fmt.Println("    docket-gateway serve    # start the gateway")
	fmt.Println("    docket-admin me         # verify your identity")
	fmt.Println()

	return nil
}

func generateSecret() (string, error) {
	secretBytes := make([]byte, config.MinJWTSecretLength)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

// configValues are the answers that go into a generated config file.
type configValues struct {
	header      string
	grpcAddr    string
	httpAddr    string
	dbPath      string
	storageDir  string
	jwtSecret   string
	catalogURL  string
	tailscale   bool
	tsHostname  string
	tsAuthKey   string
	tsEphemeral bool
	logLevel    string
	logFormat   string
}

func renderConfig(v configValues) string {
	var cfg strings.Builder
	cfg.WriteString("# docket-gateway configuration\n")
	cfg.WriteString("# " + v.header + "\n\n")

	cfg.WriteString("server:\n")
	fmt.Fprintf(&cfg, "  grpc_addr: %q\n", v.grpcAddr)
	fmt.Fprintf(&cfg, "  http_addr: %q\n", v.httpAddr)
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	fmt.Fprintf(&cfg, "  path: %q\n", v.dbPath)
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	fmt.Fprintf(&cfg, "  jwt_secret: %q\n", v.jwtSecret)
	cfg.WriteString("  token_ttl: \"24h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("storage:\n")
	fmt.Fprintf(&cfg, "  dir: %q\n", v.storageDir)
	fmt.Fprintf(&cfg, "  max_file_size: %d\n", config.DefaultMaxFileSize)
	cfg.WriteString("\n")

	cfg.WriteString("legal:\n")
	if v.catalogURL != "" {
		fmt.Fprintf(&cfg, "  catalog_url: %q\n", v.catalogURL)
	}
	cfg.WriteString("  timeout: \"15s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("idempotency:\n")
	cfg.WriteString("  ttl: \"10m\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	fmt.Fprintf(&cfg, "  enabled: %t\n", v.tailscale)
	if v.tailscale {
		fmt.Fprintf(&cfg, "  hostname: %q\n", v.tsHostname)
		if v.tsAuthKey != "" {
			fmt.Fprintf(&cfg, "  auth_key: %q\n", v.tsAuthKey)
		}
		fmt.Fprintf(&cfg, "  ephemeral: %t\n", v.tsEphemeral)
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	fmt.Fprintf(&cfg, "  level: %q\n", v.logLevel)
	fmt.Fprintf(&cfg, "  format: %q\n", v.logFormat)

	return cfg.String()
}

func writeConfig(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	// The file holds the JWT secret.
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("docket-gateway configuration setup")
	fmt.Println("==================================")
	fmt.Println()

	defaultDataPath := getDataPath()

	outputFile := prompt(reader, "Config file path", config.DefaultPath())

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, "File exists. Overwrite?", "no")) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	v := configValues{
		header:    "Generated by docket-gateway init",
		jwtSecret: secret,
	}

	fmt.Println("\n--- Server Configuration ---")
	v.grpcAddr = prompt(reader, "gRPC address", "localhost:50051")
	v.httpAddr = prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Storage Configuration ---")
	v.dbPath = prompt(reader, "SQLite database path", filepath.Join(defaultDataPath, "docket.db"))
	v.storageDir = prompt(reader, "Attachment directory", filepath.Join(filepath.Dir(v.dbPath), "files"))

	fmt.Println("\n--- Legal Catalog ---")
	v.catalogURL = prompt(reader, "Catalog URL (leave empty for built-in)", "")

	fmt.Println("\n--- Tailscale Configuration ---")
	v.tailscale = yes(prompt(reader, "Enable Tailscale?", "no"))
	if v.tailscale {
		v.tsHostname = prompt(reader, "Tailscale hostname", "docket")
		v.tsAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		v.tsEphemeral = yes(prompt(reader, "Ephemeral node?", "no"))
	}

	fmt.Println("\n--- Logging Configuration ---")
	v.logLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	v.logFormat = prompt(reader, "Log format (text/json)", "text")

	if err := writeConfig(outputFile, renderConfig(v)); err != nil {
		return err
	}

	dataDir := filepath.Dir(v.dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  docket-gateway bootstrap --name \"Your Name\" --email you@example.com")
	fmt.Println("  docket-gateway serve")

	return nil
}

func yes(answer string) bool {
	a := strings.ToLower(answer)
	return a == "yes" || a == "y"
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
