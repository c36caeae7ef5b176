package main

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

func uploadRequest(t *testing.T, target, fileName, content, folder string) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if folder != "" {
		require.NoError(t, writer.WriteField("folder", folder))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadJourney(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Upload", mock.Anything, "/videos/video.mp4", mock.Anything, int64(len("fake mpeg")), mock.Anything).Return(nil)
	mockStore.On("PublicURL", "/videos/video.mp4").Return("https://cloud.example.com/remote.php/dav/files/alice/videos/video.mp4")

	e := newTestServer(mockStore)

	req := uploadRequest(t, "/upload/", "video.mp4", "fake mpeg", "/videos")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","file_url":"https://cloud.example.com/remote.php/dav/files/alice/videos/video.mp4"}`, rec.Body.String())
	mockStore.AssertExpectations(t)
}

func TestUploadJourney_WithoutTrailingSlash(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Upload", mock.Anything, "/clip.bin", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStore.On("PublicURL", "/clip.bin").Return("https://cloud.example.com/remote.php/dav/files/alice/clip.bin")

	e := newTestServer(mockStore)

	req := uploadRequest(t, "/upload", "clip.bin", "data", "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStore.AssertExpectations(t)
}

func TestUploadJourney_DefaultFolder(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Upload", mock.Anything, "/report.pdf", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStore.On("PublicURL", "/report.pdf").Return("https://cloud.example.com/remote.php/dav/files/alice/report.pdf")

	e := newTestServer(mockStore)

	req := uploadRequest(t, "/upload/", "report.pdf", "%PDF-1.4", "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStore.AssertExpectations(t)
}

func TestUploadJourney_MissingFile(t *testing.T) {
	mockStore := new(MockStore)
	e := newTestServer(mockStore)

	req := uploadRequest(t, "/upload/", "", "", "/videos")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","detail":"file is required"}`, rec.Body.String())
	mockStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadJourney_RemoteFailure(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Upload", mock.Anything, "/big.bin", mock.Anything, mock.Anything, mock.Anything).
		Return(&nextcloud.RequestError{Method: "PUT", Path: "/big.bin", StatusCode: http.StatusInsufficientStorage, Body: "quota"})

	e := newTestServer(mockStore)

	req := uploadRequest(t, "/upload/", "big.bin", "too much data", "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	assert.Contains(t, rec.Body.String(), "507")
	mockStore.AssertExpectations(t)
}

func TestUploadJourney_FileTooLarge(t *testing.T) {
	mockStore := new(MockStore)
	cfg := testConfig()
	cfg.MaxUploadSize = 4
	e := newTestServerWithConfig(mockStore, cfg)

	req := uploadRequest(t, "/upload/", "big.bin", "way too large", "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	mockStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
