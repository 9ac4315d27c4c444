package account

import (
	"sync"
	"time"

	"github.com/mwalimu/darasa/core"
)

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

func (svc *testMailService) sentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func testConfig() *core.Config {
	conf := &core.Config{
		AppName:   "Darasa",
		SecretKey: "secret",
		TestMode:  true,
	}
	conf.Server.PasswordResetTimeoutDelta = 3 * 24 * time.Hour
	return conf
}

func newTestService() (*Service, *testMailService) {
	mailSvc := &testMailService{}
	return NewService(testConfig(), testLogger{}, mailSvc), mailSvc
}
