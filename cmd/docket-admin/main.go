// ABOUTME: Admin CLI for docket-gateway accounts, documents, legal acts and the audit log
// ABOUTME: Talks gRPC with a bearer token read from DOCKET_TOKEN or the saved token file

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"google.golang.org/grpc/status"

	"github.com/2389/docket/internal/config"
	"github.com/2389/docket/internal/rpc"
)

const banner = `
     _            _        _                 _           _
  __| | ___   ___| | _____| |_      __ _  __| |_ __ ___ (_)_ __
 / _' |/ _ \ / __| |/ / _ \ __|____/ _' |/ _' | '_ ' _ \| | '_ \
| (_| | (_) | (__|   <  __/ ||_____| (_| | (_| | | | | | | | | | |
 \__,_|\___/ \___|_|\_\___|\__|     \__,_|\__,_|_| |_| |_|_|_| |_|
`

// callTimeout bounds every RPC issued by the CLI.
const callTimeout = 30 * time.Second

// env holds connection settings resolved from the environment.
type env struct {
	grpcAddr string
	httpURL  string
	token    string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	e := env{
		grpcAddr: getEnv("DOCKET_GATEWAY_GRPC", ""),
		httpURL:  getEnv("DOCKET_GATEWAY_HTTP", ""),
		token:    getToken(),
	}
	if e.grpcAddr == "" || e.httpURL == "" {
		host := getEnv("DOCKET_GATEWAY_HOST", "localhost")
		if e.grpcAddr == "" {
			e.grpcAddr = host + ":50051"
		}
		if e.httpURL == "" {
			e.httpURL = "http://" + host + ":8080"
		}
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(e, args)
	case "register":
		err = cmdRegister(e, args)
	case "me":
		err = cmdMe(e)
	case "status":
		err = cmdStatus(e)
	case "docs", "documents":
		err = cmdDocs(e, args)
	case "legal":
		err = cmdLegal(e, args)
	case "users":
		err = cmdUsers(e, args)
	case "audit":
		err = cmdAudit(e, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		color.Red("Error: %v\n", describeError(err))
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: docket-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login                          Log in and save the token")
	fmt.Println("  register                       Create an account")
	fmt.Println("  me                             Show your identity")
	fmt.Println("  status                         Show gateway status and your identity")
	fmt.Println("  docs list                      List documents (filter by status or department)")
	fmt.Println("  docs get <id>                  Show a document with history and comments")
	fmt.Println("  docs create                    Create a draft document")
	fmt.Println("  docs status <id> <STATUS>      Move a document to a new status")
	fmt.Println("  docs comment <id> <text>       Comment on a document")
	fmt.Println("  docs download <id>             Download a document attachment")
	fmt.Println("  legal search                   Search the external legal catalog")
	fmt.Println("  legal import                   Import a legal act as a document")
	fmt.Println("  legal get <id>                 Show an imported legal document")
	fmt.Println("  users list                     List accounts (admin)")
	fmt.Println("  users delete <id>              Delete an account and revoke its tokens (admin)")
	fmt.Println("  audit                          Show the account audit log (admin)")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  DOCKET_GATEWAY_HOST      Gateway hostname (derives gRPC :50051 and HTTP :8080)")
	fmt.Println("  DOCKET_GATEWAY_GRPC      Gateway gRPC address (overrides host)")
	fmt.Println("  DOCKET_GATEWAY_HTTP      Gateway HTTP base URL (overrides host)")
	fmt.Println("  DOCKET_TOKEN             Bearer token (default: saved token file)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  docket-admin login --email ann@example.com")
	fmt.Println("  docket-admin docs create --title 'Lease' --department legal --file lease.pdf")
	fmt.Println("  docket-admin docs status <id> SUBMITTED --comment 'ready for review'")
	fmt.Println("  docket-admin legal search --query 'personal data' --after 2000-01-01")
	fmt.Println("  docket-admin audit --action login_failed --since 24h")
	fmt.Println()
}

// newFlags returns a flag set for one subcommand.
func newFlags(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	return flagSet
}

// connect dials the gateway and returns a client carrying the token.
func connect(e env) (*rpc.Client, func(), error) {
	conn, err := rpc.Dial(e.grpcAddr)
	if err != nil {
		return nil, nil, err
	}
	return rpc.NewClient(conn, e.token), func() { _ = conn.Close() }, nil
}

func requireToken(e env) error {
	if e.token == "" {
		return errors.New("not logged in: run docket-admin login or set DOCKET_TOKEN")
	}
	return nil
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

// describeError strips the gRPC framing from server errors.
func describeError(err error) string {
	if st, ok := status.FromError(err); ok {
		return fmt.Sprintf("%s (%s)", st.Message(), st.Code())
	}
	return err.Error()
}

func cmdLogin(e env, args []string) error {
	var email, password string
	flags := newFlags("login")
	flags.StringVarP(&email, "email", "e", "", "account email")
	flags.StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if email == "" {
		return errors.New("usage: login --email <email> [--password <password>]")
	}
	if password == "" {
		var err error
		if password, err = readLine("Password: "); err != nil {
			return err
		}
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	path, err := saveToken(resp.Token)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
	fmt.Printf("  Token saved to %s\n", path)
	return nil
}

func cmdRegister(e env, args []string) error {
	var req rpc.RegisterRequest
	var save bool
	flags := newFlags("register")
	flags.StringVarP(&req.Name, "name", "n", "", "full name")
	flags.StringVarP(&req.Email, "email", "e", "", "account email")
	flags.StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	flags.StringVarP(&req.Department, "department", "d", "", "department")
	flags.StringVarP(&req.Role, "role", "r", "", "USER, ADMIN or DEPARTMENT_HEAD (default USER)")
	flags.BoolVar(&save, "save", false, "save the returned token as the active login")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if req.Name == "" || req.Email == "" || req.Department == "" {
		return errors.New("usage: register --name <name> --email <email> --department <dept> [--role <role>]")
	}
	if req.Password == "" {
		var err error
		if req.Password, err = readLine("Password: "); err != nil {
			return err
		}
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.Register(ctx, &req)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Registered: %s\n", resp.User.ID)
	printUser(resp.User)

	if save {
		path, err := saveToken(resp.Token)
		if err != nil {
			return err
		}
		fmt.Printf("  Token saved to %s\n", path)
	}
	return nil
}

func cmdMe(e env) error {
	if err := requireToken(e); err != nil {
		return err
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	user, err := client.Me(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Identity")
	cyan.Println("  --------")
	printUser(user)
	fmt.Println()
	return nil
}

// cmdStatus shows gateway status and identity
func cmdStatus(e env) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	if err := checkHTTP(e.httpURL + "/health/ready"); err != nil {
		yellow.Printf("  Gateway:  ")
		color.Red("UNREACHABLE (%v)\n", err)
		return nil
	}
	green.Printf("  Gateway:  ")
	fmt.Printf("ready at %s (gRPC %s)\n", e.httpURL, e.grpcAddr)

	if e.token == "" {
		yellow.Printf("  Identity: ")
		fmt.Println("(no token - run docket-admin login)")
		fmt.Println()
		return nil
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	user, err := client.Me(ctx)
	if err != nil {
		yellow.Printf("  Identity: ")
		color.Red("auth failed (%s)\n", describeError(err))
	} else {
		green.Printf("  Identity: ")
		fmt.Printf("%s <%s> %s, %s\n", user.Name, user.Email, user.Role, user.Department)
	}
	fmt.Println()
	return nil
}

func cmdDocs(e env, args []string) error {
	if err := requireToken(e); err != nil {
		return err
	}

	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdDocsList(e, args)
	case "get", "show":
		return cmdDocsGet(e, args)
	case "create", "add":
		return cmdDocsCreate(e, args)
	case "status":
		return cmdDocsStatus(e, args)
	case "comment":
		return cmdDocsComment(e, args)
	case "download":
		return cmdDocsDownload(e, args)
	default:
		return fmt.Errorf("unknown docs subcommand: %s (use list, get, create, status, comment, download)", subcmd)
	}
}

func cmdDocsList(e env, args []string) error {
	var req rpc.ListDocumentsRequest
	flags := newFlags("docs list")
	flags.StringVarP(&req.Status, "status", "s", "", "filter by status")
	flags.StringVarP(&req.Department, "department", "d", "", "filter by department")
	flags.IntVar(&req.Page, "page", 0, "page number, starting at 0")
	flags.IntVar(&req.Size, "size", 10, "page size (max 100)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.ListDocuments(ctx, &req)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Documents")
	cyan.Println("  ---------")

	if len(resp.Documents) == 0 {
		fmt.Println("  (no documents)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tTITLE\tDEPARTMENT\tSTATUS\tAUTHOR\tUPDATED")
	fmt.Fprintln(w, "  --\t-----\t----------\t------\t------\t-------")
	for _, d := range resp.Documents {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			truncate(d.Title, 32),
			truncate(d.Department, 16),
			d.Status,
			truncate(d.AuthorName, 20),
			d.UpdatedAt.Local().Format("Jan 02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n  page %d of %d (%d total)\n\n", resp.Page+1, max(resp.TotalPages, 1), resp.TotalElements)
	return nil
}

func cmdDocsGet(e env, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: docs get <document-id>")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	doc, err := client.GetDocument(ctx, &rpc.GetDocumentRequest{ID: args[0]})
	if err != nil {
		return err
	}
	printDocument(doc, e.httpURL)
	return nil
}

func cmdDocsCreate(e env, args []string) error {
	var req rpc.CreateDocumentRequest
	var filePath string
	flags := newFlags("docs create")
	flags.StringVarP(&req.Title, "title", "t", "", "document title")
	flags.StringVarP(&req.Department, "department", "d", "", "owning department")
	flags.StringVar(&req.Description, "description", "", "markdown description")
	flags.StringVarP(&filePath, "file", "f", "", "attachment to upload")
	flags.StringVar(&req.FileType, "type", "", "attachment content type (detected when omitted)")
	flags.StringVar(&req.RequestID, "request-id", "", "idempotency key (generated when omitted)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if req.Title == "" || req.Department == "" {
		return errors.New("usage: docs create --title <title> --department <dept> [--description <md>] [--file <path>]")
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading attachment: %w", err)
		}
		req.FileName = filepath.Base(filePath)
		req.FileContent = data
	}
	if req.RequestID == "" {
		req.RequestID = generateRequestID()
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	doc, err := client.CreateDocument(ctx, &req)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created document: %s\n", doc.ID)
	fmt.Printf("  Title:      %s\n", doc.Title)
	fmt.Printf("  Status:     %s\n", statusColor(doc.Status))
	if doc.FileName != "" {
		fmt.Printf("  File:       %s (%s, %d bytes)\n", doc.FileName, doc.FileType, doc.FileSize)
	}
	return nil
}

func cmdDocsStatus(e env, args []string) error {
	var comment string
	flags := newFlags("docs status")
	flags.StringVarP(&comment, "comment", "c", "", "comment recorded with the change")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) != 2 {
		return errors.New("usage: docs status <document-id> <STATUS> [--comment <text>]")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	doc, err := client.UpdateDocumentStatus(ctx, &rpc.UpdateDocumentStatusRequest{
		DocumentID: rest[0],
		Status:     strings.ToUpper(rest[1]),
		Comment:    comment,
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ %s is now ", doc.ID)
	fmt.Println(statusColor(doc.Status))
	fmt.Printf("  Next: %s\n", formatTransitions(doc.AllowedTransitions))
	return nil
}

func cmdDocsComment(e env, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: docs comment <document-id> <text>")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	c, err := client.AddComment(ctx, &rpc.AddCommentRequest{
		DocumentID: args[0],
		Text:       strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Added comment: %s\n", c.ID)
	return nil
}

func cmdDocsDownload(e env, args []string) error {
	var out string
	flags := newFlags("docs download")
	flags.StringVarP(&out, "output", "o", "", "output path (default: original file name)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) != 1 {
		return errors.New("usage: docs download <document-id> [--output <path>]")
	}

	ctx, cancel := callContext()
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.httpURL+rpc.FileURL(rest[0]), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("download failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == "" {
		out = downloadName(resp.Header.Get("Content-Disposition"), rest[0])
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Saved %s (%d bytes)\n", out, n)
	return nil
}

func cmdLegal(e env, args []string) error {
	if err := requireToken(e); err != nil {
		return err
	}

	subcmd := "search"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "search":
		return cmdLegalSearch(e, args)
	case "import":
		return cmdLegalImport(e, args)
	case "get", "show":
		return cmdLegalGet(e, args)
	default:
		return fmt.Errorf("unknown legal subcommand: %s (use search, import, get)", subcmd)
	}
}

func cmdLegalSearch(e env, args []string) error {
	var req rpc.SearchLegalDocumentsRequest
	flags := newFlags("legal search")
	flags.StringVarP(&req.Query, "query", "q", "", "text to match in title or description")
	flags.StringVarP(&req.DocumentType, "type", "t", "", "document type, e.g. FEDERAL_LAW")
	flags.StringVar(&req.IssuedAfter, "after", "", "issued on or after (YYYY-MM-DD)")
	flags.StringVar(&req.IssuedBefore, "before", "", "issued on or before (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if req.Query == "" && flags.NArg() > 0 {
		req.Query = strings.Join(flags.Args(), " ")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.SearchLegalDocuments(ctx, &req)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Legal Acts")
	cyan.Println("  ----------")

	if len(resp.Documents) == 0 {
		fmt.Println("  (no matches)")
		fmt.Println()
		return nil
	}

	for _, d := range resp.Documents {
		fmt.Printf("  %s\n", d.Title)
		fmt.Printf("    %s  %s\n", d.DocumentType, d.IssuedAt)
		fmt.Printf("    %s\n", d.SourceURL)
		if d.Description != "" {
			color.New(color.FgHiBlack).Printf("    %s\n", truncate(d.Description, 100))
		}
	}
	fmt.Println()
	return nil
}

func cmdLegalImport(e env, args []string) error {
	var req rpc.ImportLegalDocumentRequest
	flags := newFlags("legal import")
	flags.StringVarP(&req.SourceURL, "url", "u", "", "source URL of the act")
	flags.StringVarP(&req.Title, "title", "t", "", "document title")
	flags.StringVarP(&req.Department, "department", "d", "", "owning department")
	flags.StringVar(&req.Description, "description", "", "description (default names the source)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if req.SourceURL == "" || req.Title == "" || req.Department == "" {
		return errors.New("usage: legal import --url <url> --title <title> --department <dept>")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	resp, err := client.ImportLegalDocument(ctx, &req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Imported document: %s\n", resp.DocumentID)
	fmt.Printf("  %s\n", resp.Message)
	return nil
}

func cmdLegalGet(e env, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: legal get <document-id>")
	}

	client, closeConn, err := connect(e)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := callContext()
	defer cancel()

	doc, err := client.GetLegalDocumentDetails(ctx, &rpc.GetLegalDocumentDetailsRequest{DocumentID: args[0]})
	if err != nil {
		return err
	}
	printDocument(doc, e.httpURL)
	return nil
}

func printUser(u *rpc.User) {
	fmt.Printf("  User ID:      %s\n", u.ID)
	fmt.Printf("  Name:         %s\n", u.Name)
	fmt.Printf("  Email:        %s\n", u.Email)
	fmt.Printf("  Department:   %s\n", u.Department)
	color.New(color.FgGreen).Printf("  Role:         %s\n", u.Role)
}

func printDocument(d *rpc.Document, httpURL string) {
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	fmt.Println()
	cyan.Printf("  %s\n", d.Title)
	cyan.Println("  " + strings.Repeat("-", len([]rune(d.Title))))
	fmt.Printf("  ID:           %s\n", d.ID)
	fmt.Printf("  Status:       %s\n", statusColor(d.Status))
	fmt.Printf("  Next:         %s\n", formatTransitions(d.AllowedTransitions))
	fmt.Printf("  Department:   %s\n", d.Department)
	fmt.Printf("  Author:       %s\n", nameOr(d.AuthorName, d.AuthorID))
	fmt.Printf("  Version:      %d\n", d.Version)
	fmt.Printf("  Created:      %s\n", d.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("  Updated:      %s\n", d.UpdatedAt.Local().Format(time.DateTime))
	if d.FileName != "" {
		fmt.Printf("  File:         %s (%s, %d bytes)\n", d.FileName, d.FileType, d.FileSize)
		gray.Printf("                %s%s\n", httpURL, d.FileURL)
	}
	if d.SourceURL != "" {
		fmt.Printf("  Source:       %s\n", d.SourceURL)
	}
	if d.Description != "" {
		fmt.Println()
		for _, line := range strings.Split(d.Description, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}

	if len(d.History) > 0 {
		fmt.Println()
		cyan.Println("  History")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, h := range d.History {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
				h.Seq,
				h.CreatedAt.Local().Format("Jan 02 15:04"),
				h.Status,
				nameOr(h.UserName, h.UserID),
				h.Comment,
			)
		}
		w.Flush()
	}

	if len(d.Comments) > 0 {
		fmt.Println()
		cyan.Println("  Comments")
		for _, c := range d.Comments {
			gray.Printf("  %s %s\n", c.CreatedAt.Local().Format("Jan 02 15:04"), nameOr(c.UserName, c.UserID))
			fmt.Printf("    %s\n", c.Text)
		}
	}
	fmt.Println()
}

func statusColor(s string) string {
	switch s {
	case "APPROVED":
		return color.GreenString(s)
	case "REJECTED":
		return color.RedString(s)
	case "REVIEW_REQUIRED":
		return color.YellowString(s)
	case "SUBMITTED":
		return color.CyanString(s)
	default:
		return s
	}
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// downloadName picks a safe local file name from a Content-Disposition header.
func downloadName(disposition, fallback string) string {
	if _, after, ok := strings.Cut(disposition, "filename="); ok {
		name := filepath.Base(strings.Trim(after, `"`))
		if name != "." && name != "/" && name != "" {
			return name
		}
	}
	return fallback
}

func checkHTTP(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// tokenPath is the token file next to the gateway config.
func tokenPath() string {
	return filepath.Join(filepath.Dir(config.DefaultPath()), "token")
}

// getToken returns the token from DOCKET_TOKEN or the saved token file.
func getToken() string {
	if token := os.Getenv("DOCKET_TOKEN"); token != "" {
		return token
	}
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveToken(token string) (string, error) {
	path := tokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return "", fmt.Errorf("writing token file: %w", err)
	}
	return path, nil
}

func readLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// generateRequestID creates a random idempotency key for document creation.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d-%x", os.Getpid(), time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
