package coreapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"sevasetu_admin/internal/domain"
)

// maxUploadBytes caps attachment size client-side; the backend enforces the
// same limit.
const maxUploadBytes = 25 << 20

// UploadAttachment sends a file into a chat thread as multipart form data.
func (c *Client) UploadAttachment(ctx context.Context, threadID, filename, contentType string, r io.Reader) (domain.Attachment, error) {
	extra := map[string]string{}
	if contentType != "" {
		extra["content_type"] = contentType
	}
	body, ct, err := multipartBody("file", filename, r, extra)
	if err != nil {
		return domain.Attachment{}, err
	}
	var out domain.Attachment
	err = c.postMultipart(ctx, "/v1/chat/threads/"+threadID+"/attachments", body, ct, &out)
	return out, err
}

// UploadVoiceNote sends a recorded voice clip with its duration so the
// receiving client can render the player without probing the audio.
func (c *Client) UploadVoiceNote(ctx context.Context, threadID string, durationSeconds int, r io.Reader) (domain.Attachment, error) {
	body, ct, err := multipartBody("voice", "voice-note.webm", r, map[string]string{
		"duration_seconds": strconv.Itoa(durationSeconds),
	})
	if err != nil {
		return domain.Attachment{}, err
	}
	var out domain.Attachment
	err = c.postMultipart(ctx, "/v1/chat/threads/"+threadID+"/voice", body, ct, &out)
	return out, err
}

// multipartBody buffers one form file plus any extra fields and returns the
// payload with its content type. The whole body is assembled up front so the
// request can be replayed once after a token refresh.
func multipartBody(field, filename string, r io.Reader, extra map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", fmt.Errorf("coreapi: multipart: %w", err)
	}
	n, err := io.Copy(fw, io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("coreapi: read %s: %w", field, err)
	}
	if n > maxUploadBytes {
		return nil, "", fmt.Errorf("coreapi: %s exceeds %d bytes", field, maxUploadBytes)
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("coreapi: multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("coreapi: multipart: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *Client) postMultipart(ctx context.Context, path string, body []byte, contentType string, out any) error {
	resp, err := c.send(ctx, http.MethodPost, path, nil, body, contentType, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coreapi: read response: %w", err)
	}
	if err := decodeBody(b, out); err != nil {
		return fmt.Errorf("coreapi: decode upload response: %w", err)
	}
	return nil
}
