package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cloudpitch/davbridge/internal/nextcloud"
)

func TestCreateDirectoryJourney(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("CreateDirectory", mock.Anything, "/photos/2025").Return(nil)

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodPost, "/directories", strings.NewReader(`{"path":"/photos/2025"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"success","path":"/photos/2025"}`, rec.Body.String())
	mockStore.AssertExpectations(t)
}

func TestCreateDirectoryJourney_MissingPath(t *testing.T) {
	mockStore := new(MockStore)
	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodPost, "/directories", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	mockStore.AssertNotCalled(t, "CreateDirectory", mock.Anything, mock.Anything)
}

func TestCreateDirectoryJourney_RemoteFailure(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("CreateDirectory", mock.Anything, "/photos").
		Return(&nextcloud.RequestError{Method: "MKCOL", Path: "/photos", StatusCode: http.StatusConflict})

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodPost, "/directories", strings.NewReader(`{"path":"/photos"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	mockStore.AssertExpectations(t)
}

func TestListDirectoryJourney(t *testing.T) {
	modTime := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	mockStore := new(MockStore)
	mockStore.On("ListDirectory", mock.Anything, "/videos").Return([]nextcloud.Entry{
		{Name: "holiday", Path: "/videos/holiday", IsDir: true, ModTime: modTime},
		{Name: "video.mp4", Path: "/videos/video.mp4", Size: 3 * 1024 * 1024, ModTime: modTime, ETag: "8f1d3c2b", ContentType: "video/mp4"},
	}, nil)

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/files?path=/videos", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"path":"/videos"`)
	assert.Contains(t, body, `"name":"holiday"`)
	assert.Contains(t, body, `"is_dir":true`)
	assert.Contains(t, body, `"name":"video.mp4"`)
	assert.Contains(t, body, `"formatted_size":"3.0 MB"`)
	assert.Contains(t, body, `"etag":"8f1d3c2b"`)
	mockStore.AssertExpectations(t)
}

func TestListDirectoryJourney_DefaultsToRoot(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("ListDirectory", mock.Anything, "/").Return([]nextcloud.Entry{}, nil)

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/","entries":[]}`, rec.Body.String())
	mockStore.AssertExpectations(t)
}

func TestListDirectoryJourney_RemoteNotFound(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("ListDirectory", mock.Anything, "/nope").
		Return(nil, &nextcloud.RequestError{Method: "PROPFIND", Path: "/nope", StatusCode: http.StatusNotFound})

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodGet, "/files?path=/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	mockStore.AssertExpectations(t)
}

func TestDeleteJourney(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Delete", mock.Anything, "/old.txt").Return(true, nil)

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodDelete, "/files?path=/old.txt", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	mockStore.AssertExpectations(t)
}

func TestDeleteJourney_NotFound(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Delete", mock.Anything, "/missing.txt").Return(false, nil)

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodDelete, "/files?path=/missing.txt", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"not_found"}`, rec.Body.String())
	mockStore.AssertExpectations(t)
}

func TestDeleteJourney_RemoteFailure(t *testing.T) {
	mockStore := new(MockStore)
	mockStore.On("Delete", mock.Anything, "/locked.txt").
		Return(false, &nextcloud.RequestError{Method: "DELETE", Path: "/locked.txt", StatusCode: http.StatusLocked})

	e := newTestServer(mockStore)

	req := httptest.NewRequest(http.MethodDelete, "/files?path=/locked.txt", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	mockStore.AssertExpectations(t)
}
