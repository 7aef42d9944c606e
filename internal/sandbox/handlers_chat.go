package sandbox

import (
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sevasetu_admin/internal/domain"
)

// maxAttachmentBytes matches the limit the client enforces before sending.
const maxAttachmentBytes = 25 << 20

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*domain.ChatThread, len(st.threads))
	copy(out, st.threads)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	start, end := paginate(len(out), page, perPage)
	writeData(w, http.StatusOK, out[start:end])
}

func (st *state) findThread(id string) *domain.ChatThread {
	for _, th := range st.threads {
		if th.ID == id {
			return th
		}
	}
	return nil
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 0)

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	th := st.findThread(chi.URLParam(r, "id"))
	if th == nil {
		writeErr(w, http.StatusNotFound, "thread not found")
		return
	}
	msgs := st.messages[th.ID]
	if limit > 0 && limit < len(msgs) {
		// the newest N, still oldest first
		msgs = msgs[len(msgs)-limit:]
	}
	writeData(w, http.StatusOK, msgs)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Body string `json:"body"`
	}
	if err := decodeInto(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if in.Body == "" {
		writeErr(w, http.StatusUnprocessableEntity, "body is required")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	th := st.findThread(chi.URLParam(r, "id"))
	if th == nil {
		writeErr(w, http.StatusNotFound, "thread not found")
		return
	}
	actor := s.actor(r)
	msg := domain.ChatMessage{
		ID:         st.nextID("msg"),
		ThreadID:   th.ID,
		SenderID:   actor.ID,
		SenderRole: "admin",
		Body:       in.Body,
		SentAt:     st.now().UTC(),
	}
	st.messages[th.ID] = append(st.messages[th.ID], msg)
	th.LastMessageAt = msg.SentAt
	writeData(w, http.StatusOK, msg)
}

// readUpload pulls one form file out of a multipart request, enforcing the
// size cap.
func readUpload(r *http.Request, field string) (data []byte, filename, contentType string, errMsg string) {
	if err := r.ParseMultipartForm(maxAttachmentBytes + 1<<20); err != nil {
		return nil, "", "", "malformed multipart body"
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", field + " field is required"
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", "", "reading upload failed"
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", "", "attachment too large"
	}
	contentType = hdr.Header.Get("Content-Type")
	if ct := r.FormValue("content_type"); ct != "" {
		contentType = ct
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, filepath.Base(hdr.Filename), contentType, ""
}

// attachToThread stores the payload, builds the attachment record and hangs
// it off a new message in the thread. Caller holds the lock.
func (st *state) attachToThread(th *domain.ChatThread, actor domain.AdminUser, kind string, data []byte, filename, contentType string, duration *int) domain.Attachment {
	id := st.nextID("att")
	st.media[id] = mediaObject{contentType: contentType, name: filename, data: data}

	att := domain.Attachment{
		ID:              id,
		Kind:            kind,
		FileName:        filename,
		ContentType:     contentType,
		SizeBytes:       int64(len(data)),
		URL:             "/media/" + id,
		DurationSeconds: duration,
		UploadedAt:      st.now().UTC(),
	}
	msg := domain.ChatMessage{
		ID:         st.nextID("msg"),
		ThreadID:   th.ID,
		SenderID:   actor.ID,
		SenderRole: "admin",
		Attachment: &att,
		SentAt:     att.UploadedAt,
	}
	st.messages[th.ID] = append(st.messages[th.ID], msg)
	th.LastMessageAt = msg.SentAt
	return att
}

func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, errMsg := readUpload(r, "file")
	if errMsg != "" {
		status := http.StatusUnprocessableEntity
		if errMsg == "attachment too large" {
			status = http.StatusRequestEntityTooLarge
		}
		writeErr(w, status, errMsg)
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	th := st.findThread(chi.URLParam(r, "id"))
	if th == nil {
		writeErr(w, http.StatusNotFound, "thread not found")
		return
	}
	att := st.attachToThread(th, s.actor(r), domain.AttachmentFile, data, filename, contentType, nil)
	writeData(w, http.StatusOK, att)
}

func (s *Server) uploadVoice(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, errMsg := readUpload(r, "voice")
	if errMsg != "" {
		status := http.StatusUnprocessableEntity
		if errMsg == "attachment too large" {
			status = http.StatusRequestEntityTooLarge
		}
		writeErr(w, status, errMsg)
		return
	}
	duration, err := strconv.Atoi(r.FormValue("duration_seconds"))
	if err != nil || duration <= 0 {
		writeErr(w, http.StatusUnprocessableEntity, "duration_seconds must be a positive integer")
		return
	}

	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	th := st.findThread(chi.URLParam(r, "id"))
	if th == nil {
		writeErr(w, http.StatusNotFound, "thread not found")
		return
	}
	att := st.attachToThread(th, s.actor(r), domain.AttachmentVoice, data, filename, contentType, &duration)
	writeData(w, http.StatusOK, att)
}

// serveMedia streams a stored attachment payload, no envelope.
func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	st := s.state
	st.mu.Lock()
	obj, ok := st.media[chi.URLParam(r, "id")]
	st.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusNotFound, "media not found")
		return
	}
	w.Header().Set("Content-Type", obj.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
	_, _ = w.Write(obj.data)
}
