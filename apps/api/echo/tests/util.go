package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/edusite/apps/api/echo"
	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/certificate"
	"github.com/trezcool/edusite/core/content"
	"github.com/trezcool/edusite/core/exam"
	"github.com/trezcool/edusite/core/forms"
	"github.com/trezcool/edusite/core/notification"
	"github.com/trezcool/edusite/core/progress"
	"github.com/trezcool/edusite/core/user"
	appfs "github.com/trezcool/edusite/fs"
	"github.com/trezcool/edusite/services/badge"
	"github.com/trezcool/edusite/services/email"
	"github.com/trezcool/edusite/services/metrics"
	"github.com/trezcool/edusite/services/pdf"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
	"github.com/trezcool/edusite/tests"
)

type fixture struct {
	app    *Server
	conf   *core.Config
	db     *inmemdb.DB
	auth   *user.AuthMock
	pusher *notification.PusherMock
	email  *emailsvc.ConsoleServiceMock
	events *core.ErrorEvents
}

type option func(*ServerDeps)

func setup(t *testing.T, opts ...option) fixture {
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, true))

	conf := core.NewTestConfig()
	conf.Set("onesignalAppID", "app-1")
	conf.Set("onesignalApiKey", "key-1")

	logger := testutil.NewLogger(t)
	validate, translator := testutil.NewValidator()
	db := inmemdb.NewDB()
	auth := user.NewAuthMock()
	pusher := notification.NewPusherMock()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	events := core.NewErrorEvents(16)

	examSvc := exam.NewService(db)
	deps := ServerDeps{
		Conf:           conf,
		Logger:         logger,
		ErrorEvents:    events,
		Metrics:        metricsvc.New("test"),
		Validate:       validate,
		Translator:     translator,
		Auth:           auth,
		ExamSvc:        examSvc,
		NotifySvc:      notification.NewService(examSvc, pusher, conf, validate, conf.SiteBaseURL),
		CertificateSvc: certificate.NewService(examSvc, pdfsvc.NewCertificateRenderer(conf.AppName), conf),
		ContentSvc:     content.NewService(db),
		FormsSvc:       forms.NewService(db, mailSvc, validate, translator, conf),
		ProgressSvc:    progress.NewService(db, logger),
		Badges:         badgesvc.NewRenderer(conf.AppName),
		DisableReqLogs: true,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	t.Cleanup(func() { _ = db.Close() })
	return fixture{
		app:    NewServer(deps),
		conf:   conf,
		db:     db,
		auth:   auth,
		pusher: pusher,
		email:  mailSvc,
		events: events,
	}
}

func (f fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details interface{}       `json:"details,omitempty"`
	Issues  map[string]string `json:"issues,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) *http.Request {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func newRequest(method, path string, data ...[]byte) *http.Request {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHttpTests(t *testing.T, f fixture, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}
