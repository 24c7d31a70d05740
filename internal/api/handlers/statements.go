package handlers

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/dvloznov/moneyflow/internal/extract"
	"github.com/dvloznov/moneyflow/internal/gcs"
	"github.com/dvloznov/moneyflow/internal/jobs"
	"github.com/dvloznov/moneyflow/internal/statement"
	"github.com/dvloznov/moneyflow/internal/validate"
	"github.com/rs/zerolog"
)

// MaxStatementSize caps uploaded statement files.
const MaxStatementSize = 20 << 20

// StatementsHandler handles statement preview, upload and ingestion.
type StatementsHandler struct {
	previewer Previewer
	uploader  Uploader
	publisher jobs.Publisher
	jobs      jobs.JobStore
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. uploader may be
// nil, which disables uploads.
func NewStatementsHandler(previewer Previewer, uploader Uploader, publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		previewer: previewer,
		uploader:  uploader,
		publisher: publisher,
		jobs:      jobStore,
		log:       log,
	}
}

// Preview handles POST /api/statements/preview. It accepts a multipart
// "file" or a JSON {"text": ...} body and stores nothing.
func (h *StatementsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		var in validate.PreviewTextInput
		if !decodeJSON(w, r, &in) {
			return
		}
		middleware.WriteJSON(w, http.StatusOK, h.previewer.PreviewText(in.Text, in.DebitOnlyOrDefault(), in.Categories))
		return
	}

	form, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer form.file.Close()

	data, err := io.ReadAll(form.file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc := extract.Document{
		Name:     form.header.Filename,
		MIMEType: form.header.Header.Get("Content-Type"),
		Data:     data,
	}
	result, err := h.previewer.Preview(r.Context(), doc, form.debitOnly, form.categories)
	if err != nil {
		h.log.Error().Err(err).Str("filename", doc.Name).Msg("Failed to preview statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read statement")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// Upload handles POST /api/statements/upload: the file goes to GCS and an
// ingestion job is queued.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Statement uploads are disabled")
		return
	}
	if !isMultipart(r) {
		middleware.WriteError(w, http.StatusBadRequest, "Expected multipart/form-data with a file field")
		return
	}

	form, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer form.file.Close()

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	contentType := form.header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := gcs.ObjectName(userID, form.header.Filename, time.Now())

	uri, err := h.uploader.Upload(ctx, objectName, form.file, contentType)
	if err != nil {
		h.log.Error().Err(err).Str("object", objectName).Msg("Failed to upload statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Str("gcs_uri", uri).
		Int64("bytes", form.header.Size).
		Msg("Statement uploaded")

	h.enqueue(w, r, &jobs.IngestStatementJob{
		UserID:     userID,
		SourceURI:  uri,
		DebitOnly:  form.debitOnly,
		Categories: form.categories,
	})
}

// Ingest handles POST /api/statements/ingest for a file already in GCS.
func (h *StatementsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var in validate.StatementIngestInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ctx := r.Context()
	active, err := h.jobs.ListJobs(ctx, jobs.JobFilter{
		UserID:     middleware.UserID(ctx),
		SourceURI:  in.GCSURI,
		ActiveOnly: true,
		Limit:      1,
	})
	if err != nil {
		h.log.Error().Err(err).Str("gcs_uri", in.GCSURI).Msg("Failed to look up ingestion jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to look up ingestion jobs")
		return
	}
	if len(active) > 0 {
		middleware.WriteJSON(w, http.StatusConflict, map[string]string{
			"error":  "Statement is already being ingested",
			"job_id": active[0].JobID,
			"status": string(active[0].Status),
		})
		return
	}

	h.enqueue(w, r, &jobs.IngestStatementJob{
		UserID:     middleware.UserID(ctx),
		SourceURI:  in.GCSURI,
		DebitOnly:  in.DebitOnlyOrDefault(),
		Categories: in.Categories,
	})
}

func (h *StatementsHandler) enqueue(w http.ResponseWriter, r *http.Request, job *jobs.IngestStatementJob) {
	if err := h.publisher.PublishIngestStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("gcs_uri", job.SourceURI).Msg("Failed to enqueue ingestion job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue ingestion job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("gcs_uri", job.SourceURI).Msg("Ingestion job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": job.SourceURI,
		"status":  string(job.Status),
	})
}

// Categorize handles POST /api/categorize.
func (h *StatementsHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var in validate.CategorizeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"category": statement.Categorize(in.Description, in.Categories),
	})
}

type statementForm struct {
	file       multipart.File
	header     *multipart.FileHeader
	debitOnly  bool
	categories []string
}

func (h *StatementsHandler) readForm(w http.ResponseWriter, r *http.Request) (statementForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxStatementSize)
	if err := r.ParseMultipartForm(MaxStatementSize); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return statementForm{}, false
	}

	debitOnly := true
	if v := r.FormValue("debit_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			middleware.WriteFieldErrors(w, map[string]string{"debit_only": "must be true or false"})
			return statementForm{}, false
		}
		debitOnly = b
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteFieldErrors(w, map[string]string{"file": "is required"})
		return statementForm{}, false
	}

	return statementForm{
		file:       file,
		header:     header,
		debitOnly:  debitOnly,
		categories: splitCategories(r.MultipartForm.Value["categories"]),
	}, true
}

// splitCategories accepts repeated fields and comma separated lists.
func splitCategories(values []string) []string {
	var out []string
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
