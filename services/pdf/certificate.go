package pdfsvc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/trezcool/edusite/core/certificate"
)

const (
	pageW = 297.0 // A4 landscape, mm
	pageH = 210.0
	qrKey = "verify-qr"
)

// CertificateRenderer draws certificates as single-page A4 landscape PDFs.
type CertificateRenderer struct {
	institute string
}

var _ certificate.Renderer = (*CertificateRenderer)(nil)

func NewCertificateRenderer(institute string) *CertificateRenderer {
	return &CertificateRenderer{institute: institute}
}

func (r *CertificateRenderer) Render(ctx context.Context, c certificate.Certificate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Achievement - "+c.StudentName, true)
	pdf.SetAuthor(r.institute, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252

	// frame
	pdf.SetDrawColor(30, 64, 175)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(14, 14, pageW-28, pageH-28, "D")

	center := func(y float64, family, style string, size float64, text string) {
		pdf.SetFont(family, style, size)
		pdf.SetXY(20, y)
		pdf.CellFormat(pageW-40, size*0.5, tr(text), "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(30, 64, 175)
	center(28, "Helvetica", "B", 16, r.institute)
	center(44, "Times", "B", 34, "Certificate of Achievement")

	pdf.SetTextColor(55, 65, 81)
	center(66, "Helvetica", "", 13, "This is to certify that")
	pdf.SetTextColor(17, 24, 39)
	center(80, "Times", "BI", 30, c.StudentName)
	pdf.SetTextColor(55, 65, 81)
	center(98, "Helvetica", "", 13, "has successfully completed the examination")
	center(108, "Helvetica", "B", 15, c.TestName)
	center(122, "Helvetica", "", 13, fmt.Sprintf(
		"scoring %s / %s (%s)", formatMarks(c.Score), formatMarks(c.TotalMarks), c.PercentageText()))

	// details
	pdf.SetFont("Helvetica", "", 10)
	rows := [][2]string{
		{"Registration No.", c.RegistrationNumber},
		{"Certificate ID", c.CertificateID},
		{"Exam Date", c.ExamDateText()},
		{"Issue Date", c.IssueDateText()},
	}
	y := 144.0
	for _, row := range rows {
		pdf.SetXY(30, y)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(80, 6, tr(row[1]), "", 0, "L", false, 0, "")
		y += 7
	}

	// signature line
	pdf.SetDrawColor(55, 65, 81)
	pdf.SetLineWidth(0.3)
	pdf.Line(pageW/2-35, 176, pageW/2+35, 176)
	pdf.SetXY(pageW/2-35, 177)
	pdf.CellFormat(70, 6, tr("Director, "+r.institute), "", 0, "C", false, 0, "")

	// verification QR code
	if c.VerifyURL != "" {
		png, err := qrcode.Encode(c.VerifyURL, qrcode.Medium, 256)
		if err != nil {
			return nil, errors.Wrap(err, "encoding verification qr code")
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(qrKey, opts, bytes.NewReader(png))
		pdf.ImageOptions(qrKey, pageW-68, 138, 36, 36, false, opts, 0, c.VerifyURL)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(pageW-72, 175)
		pdf.CellFormat(44, 4, "Scan to verify", "", 0, "C", false, 0, "")
	}

	var buff bytes.Buffer
	if err := pdf.Output(&buff); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buff.Bytes(), nil
}

func formatMarks(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
