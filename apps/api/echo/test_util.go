package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
	"github.com/mwalimu/darasa/core/cache"
	"github.com/mwalimu/darasa/core/dataset"
	"github.com/mwalimu/darasa/core/directory"
	"github.com/mwalimu/darasa/core/forms"
	"github.com/mwalimu/darasa/core/lesson"
	"github.com/mwalimu/darasa/core/quiz"
	"github.com/mwalimu/darasa/core/session"
	"github.com/mwalimu/darasa/core/warehouse"
	memorydb "github.com/mwalimu/darasa/storage/database/memory"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
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

type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testMailService struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

func (svc *testMailService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		svc.sent = append(svc.sent, *msg)
	}
}

func testConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		Debug:            false,
		TestMode:         true,
		AppName:          "Darasa",
		SecretKey:        "secret",
		DefaultFromEmail: "noreply@localhost",
		Server: core.ServerConfig{
			Port:                      8000,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		},
		Session: core.SessionConfig{Backend: "memory", TTL: 40 * time.Minute},
	}
}

const chapterOne = `
slug: getting-started
number: 1
part: Fundamentals
title: Getting Started
minutes: 10
sections:
  - kind: text
    body: Welcome to the course.
  - kind: code
    language: python
    body: print("hello")
quiz:
  questions:
    - prompt: What command runs the app?
      kind: choice
      options: [run, serve, start]
      answer: run
      explanation: The CLI uses the run subcommand.
    - prompt: Pages rerun top to bottom.
      kind: checkbox
      answer: "true"
`

const chapterTwo = `
slug: widgets
number: 2
part: Fundamentals
title: Core Widgets
sections:
  - kind: text
    body: Widgets map inputs to values.
  - kind: demo
    demo_id: counter
`

func testCatalog(t *testing.T) *lesson.Catalog {
	t.Helper()
	fsys := fstest.MapFS{
		"01_getting_started.yaml": &fstest.MapFile{Data: []byte(chapterOne)},
		"02_widgets.yaml":         &fstest.MapFile{Data: []byte(chapterTwo)},
	}
	cat, err := lesson.NewCatalog(fsys)
	if err != nil {
		t.Fatalf("testCatalog() failed: %v", err)
	}
	return cat
}

// newTestServer assembles a full server on in-memory backends.
func newTestServer(t *testing.T) (Server, *Options) {
	t.Helper()

	conf := testConfig()
	validate, translator := core.NewValidator()
	account.RegisterValidators(validate, translator)
	forms.RegisterValidators(validate, translator)

	opts := &Options{
		Conf:           conf,
		Logger:         testLogger{},
		Catalog:        testCatalog(t),
		Sessions:       session.NewMemoryStore(conf.Session.TTL),
		QuizSvc:        quiz.NewService(),
		AccountSvc:     account.NewService(conf, testLogger{}, &testMailService{}),
		DirectorySvc:   directory.NewService(memorydb.NewPersonRepository()),
		WarehouseCli:   warehouse.NewClient(conf.Warehouse),
		DataCache:      cache.NewDataCache(time.Minute, 100),
		LiveFeed:       dataset.NewLiveFeed(),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	}
	return NewServer(opts), opts
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// loginToken fetches a JWT for one of the seeded demo accounts.
func loginToken(t *testing.T, app Server, username, password string) string {
	t.Helper()
	body := marshallObj(t, LoginRequest{Username: username, Password: password})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("loginToken() failed: code = %v body = %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("loginToken() failed: %v", err)
	}
	return res.Token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
