package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"sevasetu_admin/internal/adapters/coreapi"
	"sevasetu_admin/internal/domain"
)

func cmdTestimonials(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("testimonials list", flag.ExitOnError)
		published := fs.Bool("published", false, "only published quotes")
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.Testimonials(ctx, *published, *page, *perPage)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "publish":
		fs := flag.NewFlagSet("testimonials publish", flag.ExitOnError)
		id := fs.String("id", "", "testimonial id")
		published := fs.Bool("published", true, "publish or unpublish")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("testimonials publish: -id is required")
		}
		out, err := c.SetTestimonialPublished(ctx, *id, *published)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "delete":
		fs := flag.NewFlagSet("testimonials delete", flag.ExitOnError)
		id := fs.String("id", "", "testimonial id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("testimonials delete: -id is required")
		}
		if err := c.DeleteTestimonial(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "testimonial %s deleted\n", *id)
		return nil
	}
	return fmt.Errorf("testimonials: unknown subcommand %q (list, publish, delete)", sub)
}

func cmdAnnouncements(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		out, err := c.Announcements(ctx)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "create":
		fs := flag.NewFlagSet("announcements create", flag.ExitOnError)
		title := fs.String("title", "", "headline")
		body := fs.String("body", "", "announcement text")
		audience := fs.String("audience", "all", "all, grihastas or acharyas")
		startsS := fs.String("starts", "", "display from (RFC3339 or YYYY-MM-DD)")
		endsS := fs.String("ends", "", "display until")
		published := fs.Bool("published", true, "publish immediately")
		_ = fs.Parse(rest)
		if *title == "" || *body == "" {
			return fmt.Errorf("announcements create: -title and -body are required")
		}
		starts, err := parseTimeFlag(*startsS)
		if err != nil {
			return err
		}
		ends, err := parseTimeFlag(*endsS)
		if err != nil {
			return err
		}
		out, err := c.CreateAnnouncement(ctx, domain.Announcement{
			Title: *title, Body: *body, Audience: *audience,
			StartsAt: starts, EndsAt: ends, Published: *published,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "update":
		fs := flag.NewFlagSet("announcements update", flag.ExitOnError)
		id := fs.String("id", "", "announcement id")
		title := fs.String("title", "", "new headline (empty keeps current)")
		body := fs.String("body", "", "new text (empty keeps current)")
		audience := fs.String("audience", "", "new audience (empty keeps current)")
		startsS := fs.String("starts", "", "display from")
		endsS := fs.String("ends", "", "display until")
		published := fs.Bool("published", true, "published state")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("announcements update: -id is required")
		}
		starts, err := parseTimeFlag(*startsS)
		if err != nil {
			return err
		}
		ends, err := parseTimeFlag(*endsS)
		if err != nil {
			return err
		}
		out, err := c.UpdateAnnouncement(ctx, domain.Announcement{
			ID: *id, Title: *title, Body: *body, Audience: *audience,
			StartsAt: starts, EndsAt: ends, Published: *published,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "delete":
		fs := flag.NewFlagSet("announcements delete", flag.ExitOnError)
		id := fs.String("id", "", "announcement id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("announcements delete: -id is required")
		}
		if err := c.DeleteAnnouncement(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "announcement %s deleted\n", *id)
		return nil
	}
	return fmt.Errorf("announcements: unknown subcommand %q (list, create, update, delete)", sub)
}

func cmdCoupons(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("coupons list", flag.ExitOnError)
		active := fs.Bool("active", false, "only active codes")
		_ = fs.Parse(rest)
		out, err := c.Coupons(ctx, *active)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "create":
		fs := flag.NewFlagSet("coupons create", flag.ExitOnError)
		code := fs.String("code", "", "coupon code")
		description := fs.String("description", "", "what this code is for")
		percent := fs.Int("percent", 0, "percentage discount (exclusive with -flat)")
		flat := fs.Int64("flat", 0, "flat discount in paise (exclusive with -percent)")
		maxRedemptions := fs.Int("max", 0, "redemption cap, 0 for unlimited")
		validS := fs.String("until", "", "valid until (RFC3339 or YYYY-MM-DD)")
		_ = fs.Parse(rest)
		if *code == "" {
			return fmt.Errorf("coupons create: -code is required")
		}
		until, err := parseTimeFlag(*validS)
		if err != nil {
			return err
		}
		cp := domain.Coupon{
			Code: *code, Description: *description,
			MaxRedemptions: *maxRedemptions, ValidUntil: until, Active: true,
		}
		if *percent > 0 {
			cp.Percent = percent
		}
		if *flat > 0 {
			cp.FlatPaise = flat
		}
		out, err := c.CreateCoupon(ctx, cp)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "toggle":
		fs := flag.NewFlagSet("coupons toggle", flag.ExitOnError)
		id := fs.String("id", "", "coupon id")
		active := fs.Bool("active", true, "turn the code on or off")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("coupons toggle: -id is required")
		}
		out, err := c.SetCouponActive(ctx, *id, *active)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "delete":
		fs := flag.NewFlagSet("coupons delete", flag.ExitOnError)
		id := fs.String("id", "", "coupon id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("coupons delete: -id is required")
		}
		if err := c.DeleteCoupon(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "coupon %s deleted\n", *id)
		return nil
	}
	return fmt.Errorf("coupons: unknown subcommand %q (list, create, toggle, delete)", sub)
}

func cmdVouchers(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := flag.NewFlagSet("vouchers list", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 20, "page size")
		_ = fs.Parse(rest)
		out, err := c.Vouchers(ctx, *page, *perPage)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "issue":
		fs := flag.NewFlagSet("vouchers issue", flag.ExitOnError)
		value := fs.Int64("value", 0, "voucher value in paise")
		user := fs.String("user", "", "grihasta id to bind the voucher to")
		code := fs.String("code", "", "explicit code, generated when empty")
		_ = fs.Parse(rest)
		if *value <= 0 {
			return fmt.Errorf("vouchers issue: -value must be positive")
		}
		out, err := c.IssueVoucher(ctx, domain.Voucher{
			ValuePaise: *value, IssuedTo: *user, Code: *code,
		})
		if err != nil {
			return err
		}
		return printJSON(out)
	case "revoke":
		fs := flag.NewFlagSet("vouchers revoke", flag.ExitOnError)
		id := fs.String("id", "", "voucher id")
		_ = fs.Parse(rest)
		if *id == "" {
			return fmt.Errorf("vouchers revoke: -id is required")
		}
		if err := c.RevokeVoucher(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "voucher %s revoked\n", *id)
		return nil
	}
	return fmt.Errorf("vouchers: unknown subcommand %q (list, issue, revoke)", sub)
}

func cmdBroadcast(ctx context.Context, c *coreapi.Client, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		out, err := c.Broadcasts(ctx)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "send":
		fs := flag.NewFlagSet("broadcast send", flag.ExitOnError)
		title := fs.String("title", "", "notification title")
		body := fs.String("body", "", "notification body")
		segment := fs.String("segment", "all", "all, grihastas or acharyas")
		_ = fs.Parse(rest)
		if *title == "" || *body == "" {
			return fmt.Errorf("broadcast send: -title and -body are required")
		}
		out, err := c.SendBroadcast(ctx, *title, *body, *segment)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "broadcast sent to %d recipients\n", out.Recipients)
		return printJSON(out)
	}
	return fmt.Errorf("broadcast: unknown subcommand %q (list, send)", sub)
}
