// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlnoga/dipfilter/internal/gray"
)

func init() { gin.SetMode(gin.TestMode) }

func TestPing(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestIndexPage(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/api/v1/run")
}

func TestOperators(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/operators", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Operators []string `json:"operators"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Operators, "freqFilter")
	assert.Contains(t, body.Operators, "adaptiveMedian")
}

func TestRunRejectsBadRequests(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"filePatterns":["*.png"]}`,
		`{"filePatterns":["*.png"],"sequence":{"type":"seq","steps":[{"type":"unknown"}]}}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		NewRouter().ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestRunAppliesSequence(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	img, err := gray.NewImageFromRows([][]int{{10, 10, 10}, {10, 250, 10}, {10, 10, 10}})
	require.NoError(t, err)
	require.NoError(t, img.WriteFile("in.png", 0, 255))

	body := `{"filePatterns":["*.png"],"sequence":{"type":"seq","steps":[
		{"type":"median","size":3},
		{"type":"save","filePattern":"out%d.tif","range":"bytes"}
	]}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	NewRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Found 1 files.")
	assert.Contains(t, w.Body.String(), "done")

	out, err := gray.ReadFile("out0.tif", 0)
	require.NoError(t, err)
	assert.InDelta(t, 10*257, out.At(1, 1), 1)
}

func TestRunRefusesPathsOutsideTree(t *testing.T) {
	body := `{"filePatterns":["/etc/*"],"sequence":{"type":"seq","steps":[]}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "error:")
}
