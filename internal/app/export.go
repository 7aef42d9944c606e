package app

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"sevasetu_admin/internal/domain"
)

// maxExportRows caps a client-side export; past this the operator should use
// a narrower filter.
const maxExportRows = 50000

// Exporter renders the audit log to CSV or JSON. It re-queries through the
// source with the exact filter of the view being exported, so the file always
// matches what the operator is looking at.
type Exporter struct {
	src   domain.AuditSource
	limit int // page size while draining
}

func NewExporter(src domain.AuditSource) *Exporter {
	return &Exporter{src: src, limit: 500}
}

var auditHeader = []string{
	"id", "actor_id", "actor_email", "action",
	"target_kind", "target_id", "detail", "ip", "created_at",
}

// CSV writes a header row plus one record per entry and returns the number
// of entries written.
func (e *Exporter) CSV(ctx context.Context, w io.Writer, q domain.AuditQuery) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(auditHeader); err != nil {
		return 0, fmt.Errorf("export: write header: %w", err)
	}
	n, err := e.drain(ctx, q, func(a domain.AuditEntry) error {
		return cw.Write([]string{
			a.ID, a.ActorID, a.ActorEmail, a.Action,
			a.TargetKind, a.TargetID, a.Detail, a.IP,
			a.CreatedAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return n, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("export: flush: %w", err)
	}
	return n, nil
}

// JSON writes the entries as one JSON array.
func (e *Exporter) JSON(ctx context.Context, w io.Writer, q domain.AuditQuery) (int, error) {
	var all []domain.AuditEntry
	n, err := e.drain(ctx, q, func(a domain.AuditEntry) error {
		all = append(all, a)
		return nil
	})
	if err != nil {
		return n, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if all == nil {
		all = []domain.AuditEntry{}
	}
	if err := enc.Encode(all); err != nil {
		return n, fmt.Errorf("export: encode: %w", err)
	}
	return n, nil
}

// drain walks the cursor chain until the source reports no next page. Only
// the cursor changes between calls; every other filter field stays as given.
func (e *Exporter) drain(ctx context.Context, q domain.AuditQuery, fn func(domain.AuditEntry) error) (int, error) {
	if q.Limit <= 0 {
		q.Limit = e.limit
	}
	n := 0
	for {
		page, err := e.src.ListAudit(ctx, q)
		if err != nil {
			return n, err
		}
		for _, a := range page.Items {
			if n >= maxExportRows {
				return n, fmt.Errorf("export: more than %d rows, narrow the filter", maxExportRows)
			}
			if err := fn(a); err != nil {
				return n, fmt.Errorf("export: write row: %w", err)
			}
			n++
		}
		if page.NextCursor == nil || *page.NextCursor == "" {
			return n, nil
		}
		q.Cursor = page.NextCursor
	}
}
