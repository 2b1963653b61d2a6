package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/internal/stealth"
)

type stubCrawler struct {
	records  []entity.ImageRecord
	err      error
	lastTask entity.Task
}

func (c *stubCrawler) Crawl(_ context.Context, task entity.Task) ([]entity.ImageRecord, error) {
	c.lastTask = task
	if c.err != nil {
		return nil, c.err
	}
	return c.records, nil
}

func postCrawl(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/crawl-images", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleCrawlImages(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Success, env.Error
}

func TestHandleCrawlImagesReturnsFilteredRecords(t *testing.T) {
	complete := entity.ImageRecord{
		ImageURL: "https://encrypted-tbn0.gstatic.com/images?q=tbn:1",
		Alt:      "a chair", SourceURL: "https://shop.example.org", NearbyText: "wooden chair",
	}
	partial := entity.ImageRecord{ImageURL: "https://encrypted-tbn0.gstatic.com/images?q=tbn:2"}
	crawler := &stubCrawler{records: []entity.ImageRecord{complete, partial}}
	h := NewHandler(crawler, "image-crawler")

	rec := postCrawl(t, h, `{"url":"https://example.com/search?q=chair","maxImages":10}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Success bool                 `json:"success"`
		Count   int                  `json:"count"`
		Data    []entity.ImageRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data, 1, "incomplete records are dropped from the response")
	assert.Equal(t, 1, env.Count)
	assert.Equal(t, complete.ImageURL, env.Data[0].ImageURL)
}

func TestHandleCrawlImagesAppliesDefaults(t *testing.T) {
	crawler := &stubCrawler{}
	h := NewHandler(crawler, "image-crawler")

	rec := postCrawl(t, h, `{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.DefaultMaxImages, crawler.lastTask.MaxImages)
	assert.Equal(t, entity.DefaultDelayMinMS, crawler.lastTask.DelayMinMS)
	assert.Equal(t, entity.DefaultDelayMaxMS, crawler.lastTask.DelayMaxMS)
	assert.Equal(t, entity.DefaultMaxRequestsPerCrawl, crawler.lastTask.MaxRequestsPerCrawl)
}

func TestHandleCrawlImagesRejectsMalformedBody(t *testing.T) {
	h := NewHandler(&stubCrawler{}, "image-crawler")

	rec := postCrawl(t, h, `{"url":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, msg := decodeError(t, rec)
	assert.False(t, success)
	assert.Equal(t, "Invalid request body", msg)
}

func TestHandleCrawlImagesMapsInputErrorsTo400(t *testing.T) {
	crawler := &stubCrawler{err: entity.ErrMissingURL}
	h := NewHandler(crawler, "image-crawler")

	rec := postCrawl(t, h, `{"url":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, msg := decodeError(t, rec)
	assert.False(t, success)
	assert.Equal(t, entity.ErrMissingURL.Error(), msg)
}

func TestHandleCrawlImagesMapsChallengeTo500(t *testing.T) {
	crawler := &stubCrawler{err: stealth.ErrChallengeDetected}
	h := NewHandler(crawler, "image-crawler")

	rec := postCrawl(t, h, `{"url":"https://example.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	success, msg := decodeError(t, rec)
	assert.False(t, success)
	assert.Contains(t, msg, "challenge detected")
}

func TestHandleHealthCheck(t *testing.T) {
	h := NewHandler(&stubCrawler{}, "image-crawler")

	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "image-crawler", body.Service)
}

func TestHandleServiceInfoListsEndpoints(t *testing.T) {
	h := NewHandler(&stubCrawler{}, "image-crawler")

	rec := httptest.NewRecorder()
	h.HandleServiceInfo(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Service   string            `json:"service"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "image-crawler", body.Service)
	assert.Contains(t, body.Endpoints, "POST /api/crawl-images")
}
