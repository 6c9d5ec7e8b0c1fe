package certificate

import (
	"context"
	"net/url"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/exam"
)

// TokenAudience marks verification tokens so they are never accepted as anything else.
const TokenAudience = "certificate-verify"

var (
	// errors
	ErrMissingResultID = errors.New("resultId is required")
	ErrInvalidToken    = errors.New("invalid or expired verification token")
)

type (
	// Renderer turns a Certificate into a document (e.g. PDF bytes).
	Renderer interface {
		Render(ctx context.Context, c Certificate) ([]byte, error)
	}

	ResultGetter interface {
		GetResult(ctx context.Context, id string) (exam.Result, error)
	}

	Service struct {
		results     ResultGetter
		renderer    Renderer
		secret      []byte
		issuer      string
		tokenTTL    time.Duration
		siteBaseURL string

		NowFunc func() time.Time // mockable
	}

	verifyClaims struct {
		jwt.StandardClaims
	}
)

func NewService(results ResultGetter, renderer Renderer, conf *core.Config) *Service {
	return &Service{
		results:     results,
		renderer:    renderer,
		secret:      []byte(conf.SecretKey),
		issuer:      conf.AppName,
		tokenTTL:    conf.Certificate.TokenTTL,
		siteBaseURL: conf.SiteBaseURL,
		NowFunc:     time.Now,
	}
}

// Build loads the result and derives the certificate contents.
func (svc *Service) Build(ctx context.Context, resultID string) (Certificate, error) {
	resultID = core.CleanString(resultID)
	if resultID == "" {
		return Certificate{}, core.NewInvalidInputError(ErrMissingResultID.Error())
	}

	res, err := svc.results.GetResult(ctx, resultID)
	if err != nil {
		if errors.Cause(err) == exam.ErrResultNotFound {
			return Certificate{}, core.NewNotFoundError("result not found")
		}
		return Certificate{}, errors.Wrap(err, "getting result")
	}
	if !res.HasCertificate() {
		return Certificate{}, core.NewNotFoundError("no certificate has been issued for this result")
	}

	today := svc.NowFunc()
	examDate := res.SubmittedAt
	if examDate.IsZero() {
		examDate = today
	}

	cert := Certificate{
		ResultID:           res.ID,
		CertificateID:      res.CertificateID,
		StudentName:        res.StudentName,
		RegistrationNumber: res.RegistrationNumber,
		TestName:           res.TestName,
		Score:              res.Score,
		TotalMarks:         res.TotalMarks,
		Accuracy:           res.Accuracy,
		Percentage:         res.Percentage(),
		IssueDate:          today,
		ExamDate:           examDate,
	}
	token, err := svc.Token(cert)
	if err != nil {
		return Certificate{}, err
	}
	cert.VerifyURL = svc.siteBaseURL + "/api/certificates/verify?" + url.Values{"token": {token}}.Encode()
	return cert, nil
}

// Generate builds and renders the certificate of a result.
func (svc *Service) Generate(ctx context.Context, resultID string) (Certificate, []byte, error) {
	cert, err := svc.Build(ctx, resultID)
	if err != nil {
		return Certificate{}, nil, err
	}
	doc, err := svc.renderer.Render(ctx, cert)
	if err != nil {
		return Certificate{}, nil, core.NewInternalError("failed to generate certificate", err)
	}
	return cert, doc, nil
}

// Token signs a verification token for the certificate.
func (svc *Service) Token(cert Certificate) (string, error) {
	now := svc.NowFunc()
	claims := verifyClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        cert.CertificateID,
			Subject:   cert.ResultID,
			Issuer:    svc.issuer,
			Audience:  TokenAudience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(svc.tokenTTL).Unix(),
		},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing verification token")
	}
	return ss, nil
}

// Verify checks a verification token and returns the certificate it stands for.
func (svc *Service) Verify(ctx context.Context, token string) (Certificate, error) {
	if core.CleanString(token) == "" {
		return Certificate{}, core.NewInvalidInputError("token is required")
	}

	claims := new(verifyClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return svc.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Issuer != svc.issuer ||
		claims.Audience != TokenAudience {
		return Certificate{}, core.NewInvalidInputError(ErrInvalidToken.Error())
	}

	cert, err := svc.Build(ctx, claims.Subject)
	if err != nil {
		return Certificate{}, err
	}
	if cert.CertificateID != claims.Id {
		return Certificate{}, core.NewNotFoundError("certificate has been revoked")
	}
	cert.IssueDate = time.Unix(claims.IssuedAt, 0).UTC()
	cert.VerifyURL = ""
	return cert, nil
}
