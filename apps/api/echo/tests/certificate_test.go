package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/edusite/apps/api/echo"
	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/core/exam"
	"github.com/trezcool/edusite/tests"
)

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, certificate.Certificate) ([]byte, error) {
	return nil, errors.New("font not found")
}

func Test_certificateApi_download(t *testing.T) {
	f := setup(t)
	submitted := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	testutil.SeedResult(t, f.db, "r1", "Jane Doe", "REG-12345", "CERT-001", 45, 50, submitted)
	testutil.SeedResult(t, f.db, "r2", "John Doe", "REG-67890", "", 20, 50, submitted)

	tests := []httpTest{
		{
			name:     "no resultId",
			method:   http.MethodGet,
			path:     "/api/download-certificate",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "resultId is required"}),
		},
		{
			name:     "unknown result",
			method:   http.MethodGet,
			path:     "/api/download-certificate?resultId=nope",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "result not found"}),
		},
		{
			name:     "no certificate issued",
			method:   http.MethodGet,
			path:     "/api/download-certificate?resultId=r2",
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "no certificate has been issued for this result"}),
		},
	}
	runHttpTests(t, f, tests)

	t.Run("pdf", func(t *testing.T) {
		rec := f.serve(newRequest(http.MethodGet, "/api/download-certificate?resultId=r1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Jane_Doe_Certificate.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})
}

func Test_certificateApi_download_renderFailure(t *testing.T) {
	f := setup(t, func(deps *ServerDeps) {
		deps.CertificateSvc = certificate.NewService(deps.ExamSvc, failingRenderer{}, deps.Conf)
	})
	testutil.SeedResult(t, f.db, "r1", "Jane Doe", "REG-12345", "CERT-001", 45, 50, time.Now())

	rec := f.serve(newRequest(http.MethodGet, "/api/download-certificate?resultId=r1"))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusInternalServerError,
		wantData: marshallObj(t, httpErr{Error: "failed to generate certificate: font not found"}),
	}, rec)
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
}

func Test_certificateApi_verify(t *testing.T) {
	f := setup(t)
	testutil.SeedResult(t, f.db, "r1", "Jane Doe", "REG-12345", "CERT-001", 45, 50, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))

	svc := certificate.NewService(exam.NewService(f.db), nil, f.conf)
	cert, err := svc.Build(context.Background(), "r1")
	require.NoError(t, err)
	u, err := url.Parse(cert.VerifyURL)
	require.NoError(t, err)
	token := u.Query().Get("token")

	rec := f.serve(newRequest(http.MethodGet, "/api/certificates/verify?token="+url.QueryEscape(token)))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, true, summary["valid"])
	assert.Equal(t, "CERT-001", summary["certificateId"])
	assert.Equal(t, 90.0, summary["percentage"])
	assert.Equal(t, "March 14, 2024", summary["examDate"])

	rec = f.serve(newRequest(http.MethodGet, "/api/certificates/verify?token=garbage"))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: "invalid or expired verification token"}),
	}, rec)

	// certificate re-issued under another id
	testutil.SeedResult(t, f.db, "r1", "Jane Doe", "REG-12345", "CERT-002", 45, 50, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC))
	rec = f.serve(newRequest(http.MethodGet, "/api/certificates/verify?token="+url.QueryEscape(token)))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marshallObj(t, httpErr{Error: "certificate has been revoked"}),
	}, rec)
}
