package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/tests"
)

func seedResults(t *testing.T, f fixture) {
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	testutil.SeedResult(t, f.db, "old", "Jane Doe", "REG-12345", "", 20, 50, base)
	testutil.SeedResult(t, f.db, "latest", "Jane Doe", "REG-12345", "CERT-001", 45, 50, base.Add(48*time.Hour))
	testutil.SeedResult(t, f.db, "mid", "Jane Doe", "REG-12345", "", 30, 50, base.Add(24*time.Hour))
	testutil.SeedResult(t, f.db, "other", "John Roe", "REG-99999", "", 10, 50, base.Add(72*time.Hour))
}

func Test_resultApi_lookup(t *testing.T) {
	f := setup(t)
	seedResults(t, f)

	tests := []httpTest{
		{
			name:     "missing registration number",
			method:   http.MethodGet,
			path:     "/api/results/lookup",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{
				Error:  "invalid request",
				Issues: map[string]string{"registrationNumber": "registrationNumber is required"},
			}),
		},
		{
			name:     "registration number too short",
			method:   http.MethodGet,
			path:     "/api/results/lookup?registrationNumber=R1",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{
				Error:  "invalid request",
				Issues: map[string]string{"registrationNumber": "registrationNumber must be at least 5 characters in length"},
			}),
		},
		{
			name:     "no result",
			method:   http.MethodGet,
			path:     "/api/results/lookup?registrationNumber=REG-00000",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "No result found for this registration number"}),
		},
		{
			name:     "latest submission wins",
			method:   http.MethodGet,
			path:     "/api/results/lookup?registrationNumber=" + url.QueryEscape("  REG-12345 "),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, map[string]string{"id": "latest", "redirectTo": "/results/latest"}),
		},
	}
	runHttpTests(t, f, tests)
}

func Test_resultApi_lookupForm(t *testing.T) {
	f := setup(t)
	seedResults(t, f)

	post := func(regNo string) *httptest.ResponseRecorder {
		form := url.Values{"registrationNumber": {regNo}}
		req := httptest.NewRequest(http.MethodPost, "/results/lookup", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		return f.serve(req)
	}

	rec := post("REG-99999")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/results/other", rec.Header().Get(echo.HeaderLocation))

	rec = post("REG-00000")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
}

func Test_resultApi_retrieve(t *testing.T) {
	f := setup(t)
	seedResults(t, f)

	rec := f.serve(newRequest(http.MethodGet, "/api/results/latest"))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "latest", detail["id"])
	assert.Equal(t, "CERT-001", detail["certificateId"])
	assert.Equal(t, 90.0, detail["percentage"])
	assert.Equal(t, "2024-03-16T09:00:00Z", detail["submittedAt"])

	runHttpTests(t, f, []httpTest{
		{
			name:     "unknown result",
			method:   http.MethodGet,
			path:     "/api/results/nope",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "result not found"}),
		},
		{
			name:     "unknown badge",
			method:   http.MethodGet,
			path:     "/api/results/nope/badge.png",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "result not found"}),
		},
	})
}

func Test_resultApi_badge(t *testing.T) {
	f := setup(t)
	seedResults(t, f)

	rec := f.serve(newRequest(http.MethodGet, "/api/results/latest/badge.png"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}
