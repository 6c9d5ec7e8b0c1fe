package pdfsvc

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/core/certificate"
)

func TestCertificateRenderer_Render(t *testing.T) {
	r := NewCertificateRenderer("EduSite Computer Institute")
	cert := certificate.Certificate{
		ResultID:           "r1",
		CertificateID:      "CERT-001",
		StudentName:        "Zoë Müller",
		RegistrationNumber: "REG-12345",
		TestName:           "Computer Fundamentals",
		Score:              45,
		TotalMarks:         50,
		Percentage:         90,
		IssueDate:          time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		ExamDate:           time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		VerifyURL:          "http://edusite.test/api/certificates/verify?token=abc",
	}

	doc, err := r.Render(context.Background(), cert)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.True(t, bytes.Contains(doc, []byte("%%EOF")))

	// without a verification link
	cert.VerifyURL = ""
	doc, err = r.Render(context.Background(), cert)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestCertificateRenderer_Render_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCertificateRenderer("EduSite").Render(ctx, certificate.Certificate{})
	assert.Error(t, err)
}

func TestFormatMarks(t *testing.T) {
	assert.Equal(t, "45", formatMarks(45))
	assert.Equal(t, "45.50", formatMarks(45.5))
}
