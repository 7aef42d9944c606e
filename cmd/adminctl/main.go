package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/adapters/observability"
	"sevasetu_admin/internal/credstore"
	"sevasetu_admin/internal/shared"
)

const usageText = `adminctl - SevaSetu operations console

usage: adminctl <command> [subcommand] [flags]

  login | logout | me | setup-password    session
  users | acharyas | kyc | bookings       accounts and operations
  disputes | alerts                       moderation
  testimonials | announcements            site content
  coupons | vouchers | broadcast          promotions and messaging
  audit | dashboard | chat                oversight

run "adminctl <command> -h" for the flags of each command.
`

func usage() { fmt.Fprint(os.Stderr, usageText) }

func main() {
	cfg, err := shared.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: %v\n", err)
		os.Exit(2)
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	store, err := credstore.NewFileStore(cfg.CredsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: %v\n", err)
		os.Exit(1)
	}
	client, err := coreapi.New(coreapi.Config{
		BaseURL: cfg.APIBaseURL,
		Creds:   store,
		OnAuthFailure: func(cause error) {
			fmt.Fprintln(os.Stderr, "adminctl: session expired, run `adminctl login` to sign in again")
		},
		Timeout: cfg.HTTPTimeout,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
		Logger:  log.Logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "login":
		err = cmdLogin(ctx, client, args)
	case "setup-password":
		err = cmdSetupPassword(ctx, client, args)
	case "me":
		err = cmdMe(ctx, client)
	case "logout":
		err = cmdLogout(ctx, client)
	case "users":
		err = cmdUsers(ctx, client, args)
	case "acharyas":
		err = cmdAcharyas(ctx, client, args)
	case "kyc":
		err = cmdKYC(ctx, client, cfg.Workers, args)
	case "bookings":
		err = cmdBookings(ctx, client, args)
	case "disputes":
		err = cmdDisputes(ctx, client, args)
	case "alerts":
		err = cmdAlerts(ctx, client, args)
	case "testimonials":
		err = cmdTestimonials(ctx, client, args)
	case "announcements":
		err = cmdAnnouncements(ctx, client, args)
	case "coupons":
		err = cmdCoupons(ctx, client, args)
	case "vouchers":
		err = cmdVouchers(ctx, client, args)
	case "broadcast":
		err = cmdBroadcast(ctx, client, args)
	case "audit":
		err = cmdAudit(ctx, client, args)
	case "dashboard":
		err = cmdDashboard(ctx, client)
	case "chat":
		err = cmdChat(ctx, client, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "adminctl: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "adminctl: %v\n", err)
		os.Exit(1)
	}
}

// printJSON writes v to stdout, indented, for eyes and for jq alike.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTimeFlag accepts RFC3339 or a bare date.
func parseTimeFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("bad time %q, want RFC3339 or YYYY-MM-DD", s)
}

// subcommand peels the first positional argument off args.
func subcommand(args []string, fallback string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return fallback, args
	}
	return args[0], args[1:]
}

// ---- session commands ----

func cmdLogin(ctx context.Context, c *coreapi.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "password (or set SEVA_PASSWORD)")
	_ = fs.Parse(args)
	if *password == "" {
		*password = os.Getenv("SEVA_PASSWORD")
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login: -email and -password are required")
	}

	status, err := c.CheckEmail(ctx, *email)
	if err != nil {
		return err
	}
	if !status.Exists {
		return fmt.Errorf("login: no admin account for %s", *email)
	}
	if !status.PasswordSet {
		return fmt.Errorf("login: password not set for %s, run `adminctl setup-password` with your invite token first", *email)
	}

	user, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func cmdSetupPassword(ctx context.Context, c *coreapi.Client, args []string) error {
	fs := flag.NewFlagSet("setup-password", flag.ExitOnError)
	email := fs.String("email", "", "admin email")
	token := fs.String("token", "", "invite token from the welcome mail")
	password := fs.String("password", "", "new password")
	_ = fs.Parse(args)
	if *email == "" || *token == "" || *password == "" {
		return fmt.Errorf("setup-password: -email, -token and -password are required")
	}
	if err := c.SetupPassword(ctx, *email, *token, *password); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "password set, you can `adminctl login` now")
	return nil
}

func cmdMe(ctx context.Context, c *coreapi.Client) error {
	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(me)
}

func cmdLogout(ctx context.Context, c *coreapi.Client) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "signed out")
	return nil
}
