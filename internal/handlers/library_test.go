package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/catalog/internal/models"
)

func TestCreateAndGetLibrary(t *testing.T) {
	db := initTestDB(t)
	handler := LibraryHandler{DB: db}

	payload := map[string]interface{}{
		"name":  "Main Library",
		"notes": "primary collection",
		"scope": "main",
	}
	bodyBytes, _ := json.Marshal(payload)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/libraries", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.CreateLibrary(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Library
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Main Library", created.Name)
	require.True(t, created.Active)
	require.NotZero(t, created.ID)

	req = httptest.NewRequest(http.MethodGet, "/libraries/"+strconv.Itoa(int(created.ID)), nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("libraryId")
	c.SetParamValues(strconv.Itoa(int(created.ID)))

	require.NoError(t, handler.GetLibrary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Library
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, created.ID, fetched.ID)
}

func TestCreateLibraryMissingName(t *testing.T) {
	db := initTestDB(t)
	handler := LibraryHandler{DB: db}

	bodyBytes, _ := json.Marshal(map[string]interface{}{"scope": "main"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/libraries", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateLibrary(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetLibrariesPagination(t *testing.T) {
	db := initTestDB(t)
	handler := LibraryHandler{DB: db}

	for i := 0; i < 15; i++ {
		require.NoError(t, db.Create(&models.Library{
			Name:   "Library " + strconv.Itoa(i),
			Active: true,
			Scope:  "main",
		}).Error)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/libraries?page=2&size=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.GetLibraries(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Library       `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	require.EqualValues(t, 15, resp.Meta["total"])
	require.Equal(t, true, resp.Meta["has_prev"])
	require.Equal(t, false, resp.Meta["has_next"])
}

func TestPatchAndDeleteLibrary(t *testing.T) {
	db := initTestDB(t)
	handler := LibraryHandler{DB: db}

	library := models.Library{Name: "Old Name", Active: true, Scope: "main"}
	require.NoError(t, db.Create(&library).Error)

	bodyBytes, _ := json.Marshal(map[string]interface{}{"name": "New Name", "active": false})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/libraries/1", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("libraryId")
	c.SetParamValues(strconv.Itoa(int(library.ID)))

	require.NoError(t, handler.PatchLibrary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var patched models.Library
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	require.Equal(t, "New Name", patched.Name)
	require.False(t, patched.Active)
	require.Equal(t, "main", patched.Scope)

	req = httptest.NewRequest(http.MethodDelete, "/libraries/1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("libraryId")
	c.SetParamValues(strconv.Itoa(int(library.ID)))

	require.NoError(t, handler.DeleteLibrary(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Library{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateUser(t *testing.T) {
	db := initTestDB(t)
	handler := UserHandler{DB: db}

	payload := map[string]interface{}{
		"username": "curator",
		"password": "password",
		"name":     "The Curator",
		"scope":    "regular admin",
	}
	bodyBytes, _ := json.Marshal(payload)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.CreateUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "curator", created.Username)
	require.True(t, created.Active)

	var stored models.Account
	require.NoError(t, db.Where("username = ?", "curator").First(&stored).Error)
	require.NotEqual(t, "password", stored.PasswordHash)

	// same username again conflicts
	req = httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(bodyBytes))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	err := handler.CreateUser(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)
}
