// Package api exposes the vault service over HTTP using chi.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-vault/pkg/simplevault"
)

// Form field names for multipart uploads.
const (
	fieldDetailFile    = "detail-file"
	fieldContentFile   = "content-file"
	fieldThumbnailFile = "thumbnail-file"
)

const maxMultipartMemory = 32 << 20

// Response is the shared envelope for every API response.
type Response struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	ResourceID   string      `json:"resource_id,omitempty"`
	ContentID    int         `json:"content_id,omitempty"`
	Error        string      `json:"error,omitempty"`
	BasicMeta    interface{} `json:"basic_meta,omitempty"`
	DetailMeta   interface{} `json:"detail_meta,omitempty"`
	ResponseData interface{} `json:"response_data,omitempty"`
}

// ContentData is the response_data payload for content and thumbnail fetches.
type ContentData struct {
	Content  string `json:"content"`
	Mimetype string `json:"mimetype"`
}

// VaultHandler handles HTTP requests for vault resources.
type VaultHandler struct {
	service simplevault.Service
}

// NewVaultHandler creates a new vault handler
func NewVaultHandler(service simplevault.Service) *VaultHandler {
	return &VaultHandler{service: service}
}

// Routes returns the routes for vault resources
func (h *VaultHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{resourceType}", func(r chi.Router) {
		r.Use(h.resourceTypeCtx)

		r.Get("/summary", h.Summary)
		r.Get("/", h.ListResources)
		r.Get("/ids", h.ResourceIDs)

		r.Post("/", h.CreateResource)
		r.Post("/detail", h.CreateResourceDetail)
		r.Post("/contents", h.CreateResourceContents)

		r.Get("/{id}", h.GetResource)
		r.Put("/{id}", h.UpdateResource)
		r.Delete("/{id}", h.DeleteResource)

		r.Get("/{id}/contents", h.ListContents)
		r.Post("/{id}/contents", h.AddContent)
		r.Get("/{id}/contents/{cid}", h.GetContent)
		r.Put("/{id}/contents/{cid}", h.UpdateContent)
		r.Patch("/{id}/contents/{cid}", h.PatchContentExif)
		r.Delete("/{id}/contents/{cid}", h.DeleteContent)
		r.Get("/{id}/contents/{cid}/{filename}", h.DownloadContent)

		r.Get("/{id}/thumbnail", h.GetThumbnail)
		r.Put("/{id}/thumbnail", h.UpdateThumbnail)
		r.Patch("/{id}/thumbnail", h.RotateThumbnail)

		r.Get("/{id}/address", h.ResourceAddress)
	})

	return r
}

// resourceTypeCtx rejects unknown resource types before any handler runs.
func (h *VaultHandler) resourceTypeCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceType := simplevault.ResourceType(chi.URLParam(r, "resourceType"))
		if !resourceType.IsValid() {
			writeEnvelope(w, r, http.StatusBadRequest, Response{
				Status: "error",
				Error:  "unknown resource type: " + string(resourceType),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestScope(r *http.Request) (user string, resourceType simplevault.ResourceType) {
	return UserFromContext(r.Context()), simplevault.ResourceType(chi.URLParam(r, "resourceType"))
}

// Summary reports resource and content counts for one resource type
func (h *VaultHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	summary, err := h.service.Summary(r.Context(), user, resourceType)
	if err != nil {
		h.writeError(w, r, "summary", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:       "success",
		ResponseData: summary,
	})
}

// ListResources returns a sorted, optionally paginated resource listing
func (h *VaultHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	req := simplevault.ListResourcesRequest{
		Order: r.URL.Query().Get("order"),
		Sort:  r.URL.Query().Get("sort"),
	}
	var err error
	if req.Page, err = intQuery(r, "page"); err != nil {
		h.writeError(w, r, "list", err)
		return
	}
	if req.PerPage, err = intQuery(r, "per_page"); err != nil {
		h.writeError(w, r, "list", err)
		return
	}

	result, err := h.service.ListResources(r.Context(), user, resourceType, req)
	if err != nil {
		h.writeError(w, r, "list", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:       "success",
		ResponseData: result,
	})
}

// ResourceIDs returns the raw resource id list
func (h *VaultHandler) ResourceIDs(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	ids, err := h.service.ResourceIDs(r.Context(), user, resourceType)
	if err != nil {
		h.writeError(w, r, "ids", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:       "success",
		ResponseData: ids,
	})
}

// CreateResource creates a resource from any combination of detail metadata,
// content and thumbnail multipart parts
func (h *VaultHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, r, "create", simplevault.NewValidationError("body", "malformed multipart form"))
		return
	}

	req := simplevault.CreateResourceRequest{
		AutoThumbnail: truthy(r.URL.Query().Get("auto-thumbnail")),
		AutoExif:      truthy(r.URL.Query().Get("auto-exif")),
	}

	detail, err := detailFromForm(r)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}
	req.DetailMeta = detail

	if upload, err := uploadFromForm(r, fieldContentFile); err != nil {
		h.writeError(w, r, "create", err)
		return
	} else {
		req.Content = upload
	}

	if thumb, _, err := fileBytesFromForm(r, fieldThumbnailFile); err != nil {
		h.writeError(w, r, "create", err)
		return
	} else {
		req.Thumbnail = thumb
	}

	h.createResource(w, r, user, resourceType, req)
}

// CreateResourceDetail creates a metadata-only resource from a JSON body
func (h *VaultHandler) CreateResourceDetail(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	var detail simplevault.DetailMeta
	if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
		h.writeError(w, r, "create", simplevault.NewValidationError("body", "malformed JSON"))
		return
	}

	h.createResource(w, r, user, resourceType, simplevault.CreateResourceRequest{DetailMeta: detail})
}

// CreateResourceContents creates a content-only resource from a multipart upload
func (h *VaultHandler) CreateResourceContents(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.writeError(w, r, "create", simplevault.NewValidationError("body", "malformed multipart form"))
		return
	}

	upload, err := uploadFromForm(r, fieldContentFile)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}
	if upload == nil {
		h.writeError(w, r, "create", simplevault.NewValidationError(fieldContentFile, "missing file part"))
		return
	}

	h.createResource(w, r, user, resourceType, simplevault.CreateResourceRequest{
		Content:       upload,
		AutoThumbnail: truthy(r.URL.Query().Get("auto-thumbnail")),
		AutoExif:      truthy(r.URL.Query().Get("auto-exif")),
	})
}

func (h *VaultHandler) createResource(w http.ResponseWriter, r *http.Request, user string, resourceType simplevault.ResourceType, req simplevault.CreateResourceRequest) {
	result, err := h.service.CreateResource(r.Context(), user, resourceType, req)
	if err != nil {
		h.writeError(w, r, "create", err)
		return
	}

	slog.Info("resource created", "user", user, "type", resourceType, "resource_id", result.ResourceID)
	writeEnvelope(w, r, http.StatusCreated, Response{
		Status:     "success",
		Message:    "resource created",
		ResourceID: result.ResourceID,
		ContentID:  result.ContentID,
	})
}

// GetResource returns a resource's full metadata
func (h *VaultHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	meta, err := h.service.GetResourceMeta(r.Context(), user, resourceType, resourceID)
	if err != nil {
		h.writeError(w, r, "get", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		ResourceID: resourceID,
		BasicMeta:  meta.BasicMeta,
		DetailMeta: meta.DetailMeta,
	})
}

// UpdateResource merges the JSON body into the resource's detail metadata
func (h *VaultHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	var detail simplevault.DetailMeta
	if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
		h.writeError(w, r, "update", simplevault.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.service.UpdateDetailMeta(r.Context(), user, resourceType, resourceID, detail); err != nil {
		h.writeError(w, r, "update", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "resource updated",
		ResourceID: resourceID,
	})
}

// DeleteResource removes the resource and everything under it
func (h *VaultHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	if err := h.service.DeleteResource(r.Context(), user, resourceType, resourceID); err != nil {
		h.writeError(w, r, "delete", err)
		return
	}

	slog.Info("resource deleted", "user", user, "type", resourceType, "resource_id", resourceID)
	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "resource deleted",
		ResourceID: resourceID,
	})
}

// ListContents returns the content entries of one resource
func (h *VaultHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	contents, err := h.service.ListContents(r.Context(), user, resourceType, resourceID)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:       "success",
		ResourceID:   resourceID,
		ResponseData: contents,
	})
}

// AddContent attaches a new content item to an existing resource
func (h *VaultHandler) AddContent(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	upload, err := h.uploadFromRequest(r)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	contentID, err := h.service.AddContent(r.Context(), user, resourceType, resourceID, *upload)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	writeEnvelope(w, r, http.StatusCreated, Response{
		Status:     "success",
		Message:    "content added",
		ResourceID: resourceID,
		ContentID:  contentID,
	})
}

// GetContent fetches one content item, optionally converted on the fly
func (h *VaultHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	contentID, err := intParam(r, "cid")
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	opts, err := convertOptions(r)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	result, err := h.service.GetContent(r.Context(), user, resourceType, resourceID, contentID, opts)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	if truthy(r.URL.Query().Get("binary")) {
		w.Header().Set("Content-Type", result.Mimetype)
		w.WriteHeader(http.StatusOK)
		w.Write(result.Data)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		ResourceID: resourceID,
		ContentID:  contentID,
		ResponseData: ContentData{
			Content:  base64.StdEncoding.EncodeToString(result.Data),
			Mimetype: result.Mimetype,
		},
	})
}

// UpdateContent replaces the bytes and identity of one content item
func (h *VaultHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	contentID, err := intParam(r, "cid")
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	upload, err := h.uploadFromRequest(r)
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	if err := h.service.UpdateContent(r.Context(), user, resourceType, resourceID, contentID, *upload); err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "content updated",
		ResourceID: resourceID,
		ContentID:  contentID,
	})
}

// PatchContentExif merges EXIF tags into one content item
func (h *VaultHandler) PatchContentExif(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	contentID, err := intParam(r, "cid")
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	var exif map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&exif); err != nil {
		h.writeError(w, r, "contents", simplevault.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.service.UpdateContentExif(r.Context(), user, resourceType, resourceID, contentID, exif); err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "exif updated",
		ResourceID: resourceID,
		ContentID:  contentID,
	})
}

// DeleteContent removes one content item from a resource
func (h *VaultHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	contentID, err := intParam(r, "cid")
	if err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	if err := h.service.DeleteContent(r.Context(), user, resourceType, resourceID, contentID); err != nil {
		h.writeError(w, r, "contents", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "content deleted",
		ResourceID: resourceID,
		ContentID:  contentID,
	})
}

// DownloadContent streams one content item as a named file
func (h *VaultHandler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")
	filename := chi.URLParam(r, "filename")

	contentID, err := intParam(r, "cid")
	if err != nil {
		h.writeError(w, r, "download", err)
		return
	}

	result, err := h.service.GetContent(r.Context(), user, resourceType, resourceID, contentID, nil)
	if err != nil {
		h.writeError(w, r, "download", err)
		return
	}

	w.Header().Set("Content-Type", result.Mimetype)
	w.Header().Set("Content-Disposition", `attachment; filename="`+simplevault.SanitizeFilename(filename)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// GetThumbnail fetches the thumbnail at the requested size
func (h *VaultHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	size := simplevault.ThumbnailSize(r.URL.Query().Get("size"))
	if size == "" {
		size = simplevault.ThumbnailOriginal
	}

	data, err := h.service.GetThumbnail(r.Context(), user, resourceType, resourceID, size)
	if err != nil {
		h.writeError(w, r, "thumbnail", err)
		return
	}

	if truthy(r.URL.Query().Get("binary")) {
		w.Header().Set("Content-Type", "image/webp")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		ResourceID: resourceID,
		ResponseData: ContentData{
			Content:  base64.StdEncoding.EncodeToString(data),
			Mimetype: "image/webp",
		},
	})
}

// UpdateThumbnail replaces the resource's thumbnail with an uploaded image
func (h *VaultHandler) UpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	var data []byte
	var mimetype string
	if err := r.ParseMultipartForm(maxMultipartMemory); err == nil {
		bytes, header, err := fileBytesFromForm(r, fieldThumbnailFile)
		if err != nil {
			h.writeError(w, r, "thumbnail", err)
			return
		}
		data = bytes
		if header != nil {
			mimetype = header.Header.Get("Content-Type")
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.writeError(w, r, "thumbnail", simplevault.NewValidationError("body", "unreadable body"))
			return
		}
		data = body
		mimetype = r.Header.Get("Content-Type")
	}
	if len(data) == 0 {
		h.writeError(w, r, "thumbnail", simplevault.NewValidationError(fieldThumbnailFile, "missing thumbnail bytes"))
		return
	}

	if err := h.service.UpdateThumbnail(r.Context(), user, resourceType, resourceID, data, mimetype); err != nil {
		h.writeError(w, r, "thumbnail", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "thumbnail updated",
		ResourceID: resourceID,
	})
}

// RotateThumbnail rotates all thumbnail variants by the requested angle
func (h *VaultHandler) RotateThumbnail(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	var req struct {
		Angle int `json:"angle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, "thumbnail", simplevault.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.service.RotateThumbnail(r.Context(), user, resourceType, resourceID, req.Angle); err != nil {
		h.writeError(w, r, "thumbnail", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:     "success",
		Message:    "thumbnail rotated",
		ResourceID: resourceID,
	})
}

// ResourceAddress reverse-geocodes the resource's embedded GPS EXIF
func (h *VaultHandler) ResourceAddress(w http.ResponseWriter, r *http.Request) {
	user, resourceType := requestScope(r)
	resourceID := chi.URLParam(r, "id")

	address, err := h.service.ResourceAddress(r.Context(), user, resourceType, resourceID)
	if err != nil {
		h.writeError(w, r, "address", err)
		return
	}

	writeEnvelope(w, r, http.StatusOK, Response{
		Status:       "success",
		ResourceID:   resourceID,
		ResponseData: map[string]string{"address": address},
	})
}

// uploadFromRequest reads a content upload from either a multipart form or a
// raw request body.
func (h *VaultHandler) uploadFromRequest(r *http.Request) (*simplevault.ContentUpload, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err == nil {
		upload, err := uploadFromForm(r, fieldContentFile)
		if err != nil {
			return nil, err
		}
		if upload == nil {
			return nil, simplevault.NewValidationError(fieldContentFile, "missing file part")
		}
		return upload, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		return nil, simplevault.NewValidationError("body", "missing content bytes")
	}
	return &simplevault.ContentUpload{
		Mimetype: r.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func detailFromForm(r *http.Request) (simplevault.DetailMeta, error) {
	data, _, err := fileBytesFromForm(r, fieldDetailFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var detail simplevault.DetailMeta
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, simplevault.NewValidationError(fieldDetailFile, "malformed JSON")
	}
	return detail, nil
}

func uploadFromForm(r *http.Request, field string) (*simplevault.ContentUpload, error) {
	data, header, err := fileBytesFromForm(r, field)
	if err != nil || data == nil {
		return nil, err
	}
	return &simplevault.ContentUpload{
		Filename: header.Filename,
		Mimetype: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func fileBytesFromForm(r *http.Request, field string) ([]byte, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, simplevault.NewValidationError(field, "unreadable file part")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, simplevault.NewValidationError(field, "unreadable file part")
	}
	return data, header, nil
}

// convertOptions builds conversion parameters from query values. Returns nil
// when no conversion was requested.
func convertOptions(r *http.Request) (*simplevault.ConvertOptions, error) {
	q := r.URL.Query()
	if q.Get("format") == "" && q.Get("width") == "" && q.Get("height") == "" {
		return nil, nil
	}

	opts := &simplevault.ConvertOptions{
		Format:   q.Get("format"),
		Fit:      q.Get("fit"),
		KeepExif: truthy(q.Get("keep-exif")),
	}
	for _, dim := range []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"quality", &opts.Quality},
	} {
		raw := q.Get(dim.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, simplevault.NewValidationError(dim.name, "must be a non-negative integer")
		}
		*dim.dst = v
	}
	return opts, nil
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, simplevault.NewValidationError(name, "must be an integer")
	}
	return v, nil
}

func intQuery(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, simplevault.NewValidationError(name, "must be an integer")
	}
	return &v, nil
}

// truthy reports whether a query flag is set. Accepted values: true, yes, 1.
func truthy(v string) bool {
	switch v {
	case "true", "yes", "1":
		return true
	}
	return false
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, code int, resp Response) {
	render.Status(r, code)
	render.JSON(w, r, resp)
}

// writeError maps service errors onto HTTP statuses and the shared envelope.
func (h *VaultHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := http.StatusInternalServerError
	status := "error"

	var validationErr *simplevault.ValidationError
	var duplicateErr *simplevault.DuplicateContentError
	switch {
	case errors.As(err, &duplicateErr):
		code = http.StatusBadRequest
		status = "warning"
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
	case errors.Is(err, simplevault.ErrResourceNotFound),
		errors.Is(err, simplevault.ErrContentNotFound),
		errors.Is(err, simplevault.ErrThumbnailNotFound):
		code = http.StatusNotFound
	case errors.Is(err, simplevault.ErrUnsupportedOperation):
		code = http.StatusNotImplemented
	}

	if code == http.StatusInternalServerError {
		slog.Error("request failed", "op", op, "error", err)
	} else {
		slog.Info("request rejected", "op", op, "status", code, "error", err)
	}

	writeEnvelope(w, r, code, Response{
		Status: status,
		Error:  err.Error(),
	})
}
