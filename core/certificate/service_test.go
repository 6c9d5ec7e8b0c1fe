package certificate

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/exam"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
)

type rendererMock struct {
	got []Certificate
	err error
}

func (r *rendererMock) Render(_ context.Context, c Certificate) ([]byte, error) {
	r.got = append(r.got, c)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 fake"), nil
}

var submittedAt = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *rendererMock, core.DocumentStore) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	require.NoError(t, db.Set(ctx, core.CollExamResults, "r1", map[string]interface{}{
		"studentName":        "Jane Mary Doe",
		"registrationNumber": "REG-12345",
		"testName":           "Computer Fundamentals",
		"score":              45,
		"totalMarks":         50,
		"accuracy":           91.5,
		"certificateId":      "CERT-001",
		"submittedAt":        submittedAt,
	}, false))
	require.NoError(t, db.Set(ctx, core.CollExamResults, "no-cert", map[string]interface{}{
		"studentName": "John Doe", "score": 10, "totalMarks": 50, "submittedAt": submittedAt,
	}, false))
	require.NoError(t, db.Set(ctx, core.CollExamResults, "zero-marks", map[string]interface{}{
		"studentName": "Zed", "score": 10, "totalMarks": 0, "certificateId": "CERT-000",
	}, false))

	renderer := new(rendererMock)
	svc := NewService(exam.NewService(db), renderer, core.NewTestConfig())
	return svc, renderer, db
}

func TestService_Build(t *testing.T) {
	svc, _, _ := setup(t)
	today := time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC)
	svc.NowFunc = func() time.Time { return today }

	cert, err := svc.Build(context.Background(), " r1 ")
	require.NoError(t, err)
	assert.Equal(t, 90.00, cert.Percentage)
	assert.Equal(t, "90.00%", cert.PercentageText())
	assert.Equal(t, "April 2, 2024", cert.IssueDateText())
	assert.Equal(t, "March 14, 2024", cert.ExamDateText())
	assert.Equal(t, "Jane_Mary_Doe_Certificate.pdf", cert.Filename())
	assert.Contains(t, cert.VerifyURL, "http://edusite.test/api/certificates/verify?token=")

	zero, err := svc.Build(context.Background(), "zero-marks")
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero.Percentage)
	assert.Equal(t, today, zero.ExamDate, "exam date falls back to the issue date")
}

func TestService_Build_errors(t *testing.T) {
	svc, _, _ := setup(t)

	tests := []struct {
		name     string
		resultID string
		wantKind core.ErrorKind
	}{
		{name: "missing id", resultID: "  ", wantKind: core.InvalidInput},
		{name: "unknown result", resultID: "nope", wantKind: core.NotFound},
		{name: "no certificate", resultID: "no-cert", wantKind: core.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Build(context.Background(), tt.resultID)
			assert.Equal(t, tt.wantKind, core.KindOf(err))
		})
	}
}

func TestService_Generate(t *testing.T) {
	svc, renderer, _ := setup(t)

	cert, doc, err := svc.Generate(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(doc))
	assert.Equal(t, []Certificate{cert}, renderer.got)

	renderer.err = errors.New("font not found")
	_, doc, err = svc.Generate(context.Background(), "r1")
	assert.Nil(t, doc)
	assert.Equal(t, core.InternalError, core.KindOf(err))
	assert.Contains(t, err.Error(), "font not found")
}

func TestService_Verify(t *testing.T) {
	svc, _, db := setup(t)

	cert, err := svc.Build(context.Background(), "r1")
	require.NoError(t, err)
	u, err := url.Parse(cert.VerifyURL)
	require.NoError(t, err)
	token := u.Query().Get("token")

	verified, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "CERT-001", verified.CertificateID)
	assert.Equal(t, "Jane Mary Doe", verified.StudentName)
	assert.Empty(t, verified.VerifyURL)

	_, err = svc.Verify(context.Background(), token+"x")
	assert.Equal(t, core.InvalidInput, core.KindOf(err))
	_, err = svc.Verify(context.Background(), "")
	assert.Equal(t, core.InvalidInput, core.KindOf(err))

	// re-issued certificate: old tokens no longer verify
	require.NoError(t, db.Set(context.Background(), core.CollExamResults, "r1", map[string]interface{}{"certificateId": "CERT-002"}, true))
	_, err = svc.Verify(context.Background(), token)
	assert.Equal(t, core.NotFound, core.KindOf(err))
}

func TestService_Verify_otherAudience(t *testing.T) {
	svc, _, _ := setup(t)
	conf := core.NewTestConfig()

	now := time.Now()
	sign := func(aud string) string {
		claims := jwt.StandardClaims{
			Id:        "CERT-001",
			Subject:   "r1",
			Issuer:    conf.AppName,
			Audience:  aud,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Hour).Unix(),
		}
		ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(conf.SecretKey))
		require.NoError(t, err)
		return ss
	}

	_, err := svc.Verify(context.Background(), sign(TokenAudience))
	require.NoError(t, err)

	for _, aud := range []string{"", "session"} {
		_, err = svc.Verify(context.Background(), sign(aud))
		assert.Equal(t, core.InvalidInput, core.KindOf(err), aud)
	}
}

func TestCertificate_Filename(t *testing.T) {
	assert.Equal(t, "Student_Certificate.pdf", Certificate{}.Filename())
	assert.Equal(t, "Ann_O'Neil_Certificate.pdf", Certificate{StudentName: ` Ann "O'Neil" `}.Filename())
}
