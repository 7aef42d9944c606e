package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/app"
	"sevasetu_admin/internal/domain"
)

func auditQueryFlags(fs *flag.FlagSet) (actor, action, targetKind, from, to *string, limit *int) {
	actor = fs.String("actor", "", "actor id or email")
	action = fs.String("action", "", "action, e.g. user.suspend")
	targetKind = fs.String("target-kind", "", "target kind, e.g. booking")
	from = fs.String("from", "", "after (RFC3339 or YYYY-MM-DD)")
	to = fs.String("to", "", "before")
	limit = fs.Int("limit", 50, "entries per page")
	return
}

func buildAuditQuery(actor, action, targetKind, fromS, toS string, limit int) (domain.AuditQuery, error) {
	from, err := parseTimeFlag(fromS)
	if err != nil {
		return domain.AuditQuery{}, err
	}
	to, err := parseTimeFlag(toS)
	if err != nil {
		return domain.AuditQuery{}, err
	}
	return domain.AuditQuery{
		Actor: actor, Action: action, TargetKind: targetKind,
		From: from, To: to, Limit: limit,
	}, nil
}

func cmdAudit(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("audit list", flag.ExitOnError)
		actor, action, targetKind, fromS, toS, limit := auditQueryFlags(fs)
		cursor := fs.String("cursor", "", "resume from a previous next_cursor")
		_ = fs.Parse(rest)
		q, err := buildAuditQuery(*actor, *action, *targetKind, *fromS, *toS, *limit)
		if err != nil {
			return err
		}
		if *cursor != "" {
			q.Cursor = cursor
		}
		out, err := c.ListAudit(ctx, q)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "export":
		fs := flag.NewFlagSet("audit export", flag.ExitOnError)
		actor, action, targetKind, fromS, toS, limit := auditQueryFlags(fs)
		format := fs.String("format", "csv", "csv or json")
		outPath := fs.String("out", "", "output file, stdout when empty")
		local := fs.Bool("local", false, "assemble the export client-side by paging the list endpoint")
		_ = fs.Parse(rest)
		if *format != "csv" && *format != "json" {
			return fmt.Errorf("audit export: -format must be csv or json")
		}
		q, err := buildAuditQuery(*actor, *action, *targetKind, *fromS, *toS, *limit)
		if err != nil {
			return err
		}

		run := func(w io.Writer) error {
			if *local {
				ex := app.NewExporter(c)
				var n int
				var err error
				if *format == "csv" {
					n, err = ex.CSV(ctx, w, q)
				} else {
					n, err = ex.JSON(ctx, w, q)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%d entries exported\n", n)
				return nil
			}
			rc, err := c.ExportAudit(ctx, q, *format)
			if err != nil {
				return err
			}
			defer rc.Close()
			if _, err := io.Copy(w, rc); err != nil {
				return fmt.Errorf("audit export: %w", err)
			}
			return nil
		}
		if *outPath != "" {
			return atomicWrite(*outPath, run)
		}
		return run(os.Stdout)
	}
	return fmt.Errorf("audit: unknown subcommand %q (list, export)", sub)
}

// atomicWrite streams fn's output into path via a temp file and rename, so
// an interrupted export never leaves a truncated file at the target.
func atomicWrite(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func cmdDashboard(ctx context.Context, c *coreapi.Client) error {
	svc := app.NewDashboardService(c)
	d, err := svc.Overview(ctx)
	if err != nil {
		return err
	}
	return printJSON(d)
}

func cmdChat(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "threads")
	switch sub {
	case "threads":
		fs := flag.NewFlagSet("chat threads", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.Threads(ctx, *page, *perPage)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "messages":
		fs := flag.NewFlagSet("chat messages", flag.ExitOnError)
		thread := fs.String("thread", "", "thread id")
		limit := fs.Int("limit", 0, "newest N messages, 0 for all")
		_ = fs.Parse(rest)
		if *thread == "" {
			return fmt.Errorf("chat messages: -thread is required")
		}
		out, err := c.Messages(ctx, *thread, *limit)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "send":
		fs := flag.NewFlagSet("chat send", flag.ExitOnError)
		thread := fs.String("thread", "", "thread id")
		body := fs.String("body", "", "message text")
		_ = fs.Parse(rest)
		if *thread == "" || *body == "" {
			return fmt.Errorf("chat send: -thread and -body are required")
		}
		out, err := c.SendMessage(ctx, *thread, *body)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "attach":
		fs := flag.NewFlagSet("chat attach", flag.ExitOnError)
		thread := fs.String("thread", "", "thread id")
		file := fs.String("file", "", "path of the file to upload")
		_ = fs.Parse(rest)
		if *thread == "" || *file == "" {
			return fmt.Errorf("chat attach: -thread and -file are required")
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		contentType := mime.TypeByExtension(filepath.Ext(*file))
		out, err := c.UploadAttachment(ctx, *thread, filepath.Base(*file), contentType, f)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "voice":
		fs := flag.NewFlagSet("chat voice", flag.ExitOnError)
		thread := fs.String("thread", "", "thread id")
		file := fs.String("file", "", "path of the recorded clip")
		duration := fs.Int("duration", 0, "clip length in seconds")
		_ = fs.Parse(rest)
		if *thread == "" || *file == "" {
			return fmt.Errorf("chat voice: -thread and -file are required")
		}
		if *duration <= 0 {
			return fmt.Errorf("chat voice: -duration must be positive")
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		out, err := c.UploadVoiceNote(ctx, *thread, *duration, f)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
	return fmt.Errorf("chat: unknown subcommand %q (threads, messages, send, attach, voice)", sub)
}
