package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-vault/pkg/simplevault"
	"github.com/tendant/simple-vault/pkg/simplevault/api"
	memorystorage "github.com/tendant/simple-vault/pkg/simplevault/storage/memory"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	svc, err := simplevault.New(simplevault.WithStorageBackend(memorystorage.New()))
	require.NoError(t, err)

	r := chi.NewRouter()
	for _, mw := range api.NewAuthenticator("").Middleware() {
		r.Use(mw)
	}
	r.Mount("/", api.NewVaultHandler(svc).Routes())
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(api.HeaderUserID, "alice")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) api.Response {
	t.Helper()

	var resp api.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// multipartBody builds a multipart form with a single file part, returning
// the body and its Content-Type header value.
func multipartBody(t *testing.T, field, filename string, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func createDetailResource(t *testing.T, router chi.Router, resourceType string, detail map[string]interface{}) string {
	t.Helper()

	body, err := json.Marshal(detail)
	require.NoError(t, err)
	rec := doRequest(t, router, http.MethodPost, "/"+resourceType+"/detail", bytes.NewReader(body), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	require.Equal(t, "success", resp.Status)
	require.Len(t, resp.ResourceID, 26)
	return resp.ResourceID
}

func TestAuth_HeaderIdentityRequired(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/books/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp api.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestUnknownResourceType(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/gadgets/summary", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "gadgets")
}

func TestCreateAndGetResource(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune"})

	rec := doRequest(t, router, http.MethodGet, "/books/"+rid, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, rid, resp.ResourceID)
	require.NotNil(t, resp.BasicMeta)
	detail, ok := resp.DetailMeta.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Dune", detail["title"])
}

func TestGetResource_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/books/01ARZ3NDEKTSV4RRFFQ69G5FAV", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decodeResponse(t, rec).Status)
}

func TestCreateResourceContents(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "content-file", "notes.txt", []byte("hello vault"))
	rec := doRequest(t, router, http.MethodPost, "/documents/contents", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.Len(t, resp.ResourceID, 26)
	assert.Equal(t, 1, resp.ContentID)
}

func TestCreateResourceContents_MissingFile(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "no file here"))
	require.NoError(t, w.Close())

	rec := doRequest(t, router, http.MethodPost, "/documents/contents", &buf, map[string]string{"Content-Type": w.FormDataContentType()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decodeResponse(t, rec).Status)
}

func TestGetContent_Base64AndBinary(t *testing.T) {
	router := newTestRouter(t)

	payload := []byte("hello vault")
	body, contentType := multipartBody(t, "content-file", "notes.txt", payload)
	rec := doRequest(t, router, http.MethodPost, "/documents/contents", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code)
	rid := decodeResponse(t, rec).ResourceID

	// default: base64 envelope
	rec = doRequest(t, router, http.MethodGet, "/documents/"+rid+"/contents/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.ResponseData.(map[string]interface{})
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(data["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
	assert.Equal(t, "text/plain", data["mimetype"])

	// binary=1: raw bytes
	rec = doRequest(t, router, http.MethodGet, "/documents/"+rid+"/contents/1?binary=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestAddContent_DuplicateWarns(t *testing.T) {
	router := newTestRouter(t)

	payload := []byte("same bytes")
	body, contentType := multipartBody(t, "content-file", "a.txt", payload)
	rec := doRequest(t, router, http.MethodPost, "/documents/contents", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code)
	rid := decodeResponse(t, rec).ResourceID

	body, contentType = multipartBody(t, "content-file", "b.txt", payload)
	rec = doRequest(t, router, http.MethodPost, "/documents/"+rid+"/contents", body, map[string]string{"Content-Type": contentType})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "warning", decodeResponse(t, rec).Status)
}

func TestDownloadContent_Disposition(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "content-file", "notes.txt", []byte("hello"))
	rec := doRequest(t, router, http.MethodPost, "/documents/contents", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code)
	rid := decodeResponse(t, rec).ResourceID

	rec = doRequest(t, router, http.MethodGet, "/documents/"+rid+"/contents/1/my%20notes.txt", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("hello"), rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="my_notes.txt"`)
}

func TestUpdateResource_MergesDetail(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune", "author": "Herbert"})

	rec := doRequest(t, router, http.MethodPut, "/books/"+rid, strings.NewReader(`{"rating": 5}`), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/books/"+rid, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeResponse(t, rec).DetailMeta.(map[string]interface{})
	assert.Equal(t, "Dune", detail["title"])
	assert.Equal(t, float64(5), detail["rating"])
}

func TestDeleteResource(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune"})

	rec := doRequest(t, router, http.MethodDelete, "/books/"+rid, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/books/"+rid, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListResources_Pagination(t *testing.T) {
	router := newTestRouter(t)

	for _, title := range []string{"a", "b", "c"} {
		createDetailResource(t, router, "books", map[string]interface{}{"title": title})
	}

	rec := doRequest(t, router, http.MethodGet, "/books/?page=1&per_page=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResponse(t, rec).ResponseData.(map[string]interface{})
	assert.Equal(t, float64(3), result["total"])
	assert.Len(t, result["items"], 2)

	// page without per_page is rejected
	rec = doRequest(t, router, http.MethodGet, "/books/?page=1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// non-numeric page is rejected
	rec = doRequest(t, router, http.MethodGet, "/books/?page=abc&per_page=2", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryAndIDs(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune"})

	rec := doRequest(t, router, http.MethodGet, "/books/summary", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeResponse(t, rec).ResponseData.(map[string]interface{})
	assert.Equal(t, float64(1), summary["resource_count"])
	assert.Equal(t, float64(0), summary["content_count"])

	rec = doRequest(t, router, http.MethodGet, "/books/ids", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := decodeResponse(t, rec).ResponseData.([]interface{})
	require.Len(t, ids, 1)
	assert.Equal(t, rid, ids[0])
}

func TestPatchContentExif_UnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartBody(t, "content-file", "notes.txt", []byte("hello"))
	rec := doRequest(t, router, http.MethodPost, "/books/contents", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code)
	rid := decodeResponse(t, rec).ResourceID

	rec = doRequest(t, router, http.MethodPatch, "/books/"+rid+"/contents/1", strings.NewReader(`{"Orientation": 1}`), nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestResourceAddress_UnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune"})

	rec := doRequest(t, router, http.MethodGet, "/books/"+rid+"/address", nil, nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestThumbnailLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "images", map[string]interface{}{"title": "sunset"})

	rec := doRequest(t, router, http.MethodGet, "/images/"+rid+"/thumbnail", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	png := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake pixel data")...)
	rec = doRequest(t, router, http.MethodPut, "/images/"+rid+"/thumbnail", bytes.NewReader(png), map[string]string{"Content-Type": "image/png"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/images/"+rid+"/thumbnail?binary=yes", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
}

func TestUserIsolation(t *testing.T) {
	router := newTestRouter(t)

	rid := createDetailResource(t, router, "books", map[string]interface{}{"title": "Dune"})

	req := httptest.NewRequest(http.MethodGet, "/books/"+rid, nil)
	req.Header.Set(api.HeaderUserID, "bob")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
