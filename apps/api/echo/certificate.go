package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/services/metrics"
)

type certificateApi struct {
	svc     *certificate.Service
	metrics *metricsvc.Metrics
}

func registerCertificateAPI(g *echo.Group, svc *certificate.Service, metrics *metricsvc.Metrics) {
	api := certificateApi{svc: svc, metrics: metrics}

	g.GET("/download-certificate", api.download)
	g.GET("/certificates/verify", api.verify)
}

func (api *certificateApi) download(ctx echo.Context) error {
	cert, doc, err := api.svc.Generate(ctx.Request().Context(), ctx.QueryParam("resultId"))
	if api.metrics != nil {
		api.metrics.CertificateIssued(err == nil)
	}
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+cert.Filename()+`"`)
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

type certificateSummary struct {
	Valid              bool    `json:"valid"`
	CertificateID      string  `json:"certificateId"`
	StudentName        string  `json:"studentName"`
	RegistrationNumber string  `json:"registrationNumber"`
	TestName           string  `json:"testName"`
	Percentage         float64 `json:"percentage"`
	ExamDate           string  `json:"examDate"`
	IssueDate          string  `json:"issueDate"`
}

func (api *certificateApi) verify(ctx echo.Context) error {
	cert, err := api.svc.Verify(ctx.Request().Context(), ctx.QueryParam("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, certificateSummary{
		Valid:              true,
		CertificateID:      cert.CertificateID,
		StudentName:        cert.StudentName,
		RegistrationNumber: cert.RegistrationNumber,
		TestName:           cert.TestName,
		Percentage:         cert.Percentage,
		ExamDate:           cert.ExamDateText(),
		IssueDate:          cert.IssueDateText(),
	})
}
