package coreapi

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"sevasetu_admin/internal/domain"
)

// Acharyas lists provider accounts; verified filters to fully vetted ones.
func (c *Client) Acharyas(ctx context.Context, verified *bool, page, perPage int) ([]domain.Acharya, error) {
	vals := url.Values{}
	if verified != nil {
		if *verified {
			vals.Set("verified", "true")
		} else {
			vals.Set("verified", "false")
		}
	}
	addPage(vals, page, perPage)
	var out []domain.Acharya
	err := c.do(ctx, http.MethodGet, "/v1/admin/acharyas", vals, nil, &out)
	return out, err
}

// KYCApplications lists verification cases, pending first by default.
func (c *Client) KYCApplications(ctx context.Context, q domain.KYCQuery) (domain.KYCPage, error) {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	addPage(vals, q.Page, q.PerPage)
	var out domain.KYCPage
	err := c.do(ctx, http.MethodGet, "/v1/admin/kyc", vals, nil, &out)
	return out, err
}

// Application returns one case with its document list.
func (c *Client) Application(ctx context.Context, id string) (domain.KYCApplication, error) {
	var out domain.KYCApplication
	err := c.do(ctx, http.MethodGet, "/v1/admin/kyc/"+id, nil, nil, &out)
	return out, err
}

// ApproveKYC marks the Acharya as verified.
func (c *Client) ApproveKYC(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/admin/kyc/"+id+"/approve", nil, nil, nil)
}

// RejectKYC turns the case down; reason is mandatory and shown to the
// applicant.
func (c *Client) RejectKYC(ctx context.Context, id, reason string) error {
	in := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/v1/admin/kyc/"+id+"/reject", nil, in, nil)
}

// FetchDocument streams a verification document. The URL on the document
// record may be absolute (object storage) or API-relative; the caller closes
// the reader.
func (c *Client) FetchDocument(ctx context.Context, doc domain.KYCDocument) (io.ReadCloser, error) {
	return c.stream(ctx, http.MethodGet, doc.URL, nil)
}

// UploadKYCDocument adds one verification document to a pending case, kind
// naming the slot it fills (id_proof, address_proof, certification,
// bank_proof). Reviewers use this to attach paperwork received out of band.
func (c *Client) UploadKYCDocument(ctx context.Context, applicationID, kind, filename, contentType string, r io.Reader) (domain.KYCDocument, error) {
	extra := map[string]string{"kind": kind}
	if contentType != "" {
		extra["content_type"] = contentType
	}
	body, ct, err := multipartBody("file", filename, r, extra)
	if err != nil {
		return domain.KYCDocument{}, err
	}
	var out domain.KYCDocument
	err = c.postMultipart(ctx, "/v1/admin/kyc/"+applicationID+"/documents", body, ct, &out)
	return out, err
}
