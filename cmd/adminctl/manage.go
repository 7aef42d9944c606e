package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/app"
	"sevasetu_admin/internal/domain"
)

func cmdUsers(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("users list", flag.ExitOnError)
		search := fs.String("search", "", "match name, email or phone")
		status := fs.String("status", "", "active or suspended")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.Users(ctx, domain.UserQuery{
			Search: *search, Status: *status, Page: *page, PerPage: *perPage,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "get":
		fs := flag.NewFlagSet("users get", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("users get: -id is required")
		}
		out, err := c.User(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "suspend":
		fs := flag.NewFlagSet("users suspend", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		reason := fs.String("reason", "", "reason, recorded in the audit log")
		_ = fs.Parse(rest)
		if *id == "" || *reason == "" {
			return fmt.Errorf("users suspend: -id and -reason are required")
		}
		if err := c.SuspendUser(ctx, *id, *reason); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "user %s suspended\n", *id)
		return nil
	case "reinstate":
		fs := flag.NewFlagSet("users reinstate", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("users reinstate: -id is required")
		}
		if err := c.ReinstateUser(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "user %s reinstated\n", *id)
		return nil
	}
	return fmt.Errorf("users: unknown subcommand %q (list, get, suspend, reinstate)", sub)
}

func cmdAcharyas(ctx context.Context, c *coreapi.Client, args []string) error {
	fs := flag.NewFlagSet("acharyas", flag.ExitOnError)
	verified := fs.String("verified", "", "true or false to filter by verification")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 20, "page size")
	_ = fs.Parse(args)

	var v *bool
	switch *verified {
	case "":
	case "true", "false":
		b := *verified == "true"
		v = &b
	default:
		return fmt.Errorf("acharyas: -verified must be true or false")
	}
	out, err := c.Acharyas(ctx, v, *page, *perPage)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func cmdKYC(ctx context.Context, c *coreapi.Client, workers int, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("kyc list", flag.ExitOnError)
		status := fs.String("status", "", "pending, approved or rejected")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.KYCApplications(ctx, domain.KYCQuery{
			Status: *status, Page: *page, PerPage: *perPage,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "get":
		fs := flag.NewFlagSet("kyc get", flag.ExitOnError)
		id := fs.String("id", "", "application id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("kyc get: -id is required")
		}
		out, err := c.Application(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "approve":
		fs := flag.NewFlagSet("kyc approve", flag.ExitOnError)
		id := fs.String("id", "", "application id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("kyc approve: -id is required")
		}
		if err := c.ApproveKYC(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "application %s approved\n", *id)
		return nil
	case "reject":
		fs := flag.NewFlagSet("kyc reject", flag.ExitOnError)
		id := fs.String("id", "", "application id")
		reason := fs.String("reason", "", "shown to the applicant")
		_ = fs.Parse(rest)
		if *id == "" || *reason == "" {
			return fmt.Errorf("kyc reject: -id and -reason are required")
		}
		if err := c.RejectKYC(ctx, *id, *reason); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "application %s rejected\n", *id)
		return nil
	case "docs":
		fs := flag.NewFlagSet("kyc docs", flag.ExitOnError)
		id := fs.String("id", "", "application id")
		dir := fs.String("dir", ".", "directory to download into")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("kyc docs: -id is required")
		}
		fetcher := app.NewDocFetcher(c, workers, log.Logger)
		n, err := fetcher.DownloadAll(ctx, *id, *dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d documents written to %s\n", n, *dir)
		return nil
	case "upload":
		fs := flag.NewFlagSet("kyc upload", flag.ExitOnError)
		id := fs.String("id", "", "application id")
		kind := fs.String("kind", "", "document slot, e.g. id_proof or bank_proof")
		file := fs.String("file", "", "path of the document to upload")
		_ = fs.Parse(rest)
		if *id == "" || *kind == "" || *file == "" {
			return fmt.Errorf("kyc upload: -id, -kind and -file are required")
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		contentType := mime.TypeByExtension(filepath.Ext(*file))
		out, err := c.UploadKYCDocument(ctx, *id, *kind, filepath.Base(*file), contentType, f)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
	return fmt.Errorf("kyc: unknown subcommand %q (list, get, approve, reject, docs, upload)", sub)
}

func cmdBookings(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("bookings list", flag.ExitOnError)
		status := fs.String("status", "", "booking status")
		category := fs.String("category", "", "puja, havan, astrology or samskara")
		acharya := fs.String("acharya", "", "acharya id")
		fromS := fs.String("from", "", "created after (RFC3339 or YYYY-MM-DD)")
		toS := fs.String("to", "", "created before")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		from, err := parseTimeFlag(*fromS)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(*toS)
		if err != nil {
			return err
		}
		out, err := c.Bookings(ctx, domain.BookingQuery{
			Status: *status, Category: *category, AcharyaID: *acharya,
			From: from, To: to, Page: *page, PerPage: *perPage,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "get":
		fs := flag.NewFlagSet("bookings get", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("bookings get: -id is required")
		}
		out, err := c.Booking(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "stats":
		fs := flag.NewFlagSet("bookings stats", flag.ExitOnError)
		fromS := fs.String("from", "", "period start")
		toS := fs.String("to", "", "period end")
		_ = fs.Parse(rest)
		from, err := parseTimeFlag(*fromS)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(*toS)
		if err != nil {
			return err
		}
		out, err := c.BookingStats(ctx, from, to)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "set-status":
		fs := flag.NewFlagSet("bookings set-status", flag.ExitOnError)
		id := fs.String("id", "", "booking id")
		status := fs.String("status", "", "new status")
		note := fs.String("note", "", "optional note")
		_ = fs.Parse(rest)
		if *id == "" || *status == "" {
			return fmt.Errorf("bookings set-status: -id and -status are required")
		}
		out, err := c.SetBookingStatus(ctx, *id, *status, *note)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
	return fmt.Errorf("bookings: unknown subcommand %q (list, get, stats, set-status)", sub)
}

func cmdDisputes(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("disputes list", flag.ExitOnError)
		status := fs.String("status", "", "dispute status")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.Disputes(ctx, domain.ModerationQuery{Status: *status, Page: *page, PerPage: *perPage})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "get":
		fs := flag.NewFlagSet("disputes get", flag.ExitOnError)
		id := fs.String("id", "", "dispute id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("disputes get: -id is required")
		}
		out, err := c.Dispute(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "resolve":
		fs := flag.NewFlagSet("disputes resolve", flag.ExitOnError)
		id := fs.String("id", "", "dispute id")
		resolution := fs.String("resolution", "", "refund, dismiss or warn_provider")
		note := fs.String("note", "", "explanation for the record")
		_ = fs.Parse(rest)
		if *id == "" || *resolution == "" {
			return fmt.Errorf("disputes resolve: -id and -resolution are required")
		}
		out, err := c.ResolveDispute(ctx, *id, *resolution, *note)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
	return fmt.Errorf("disputes: unknown subcommand %q (list, get, resolve)", sub)
}

func cmdAlerts(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("alerts list", flag.ExitOnError)
		status := fs.String("status", "", "new, confirmed, dismissed or escalated")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.FraudAlerts(ctx, domain.ModerationQuery{Status: *status, Page: *page, PerPage: *perPage})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "set-status":
		fs := flag.NewFlagSet("alerts set-status", flag.ExitOnError)
		id := fs.String("id", "", "alert id")
		status := fs.String("status", "", "confirmed, dismissed or escalated")
		_ = fs.Parse(rest)
		if *id == "" || *status == "" {
			return fmt.Errorf("alerts set-status: -id and -status are required")
		}
		out, err := c.SetAlertStatus(ctx, *id, *status)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
	return fmt.Errorf("alerts: unknown subcommand %q (list, set-status)", sub)
}
