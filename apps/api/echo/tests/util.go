package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/kymoja/darasa/apps/api/echo"
	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/attendance"
	"github.com/kymoja/darasa/core/auth"
	"github.com/kymoja/darasa/core/enrolment"
	"github.com/kymoja/darasa/core/program"
	"github.com/kymoja/darasa/core/session"
	emailsvc "github.com/kymoja/darasa/services/email"
	"github.com/kymoja/darasa/storage/localstore"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testLogger keeps the suite quiet; failures surface through responses.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type env struct {
	server   Server
	conf     *core.Config
	backend  *localstore.Backend
	session  *session.Manager
	programs *program.Service
}

func setup(t *testing.T) *env {
	t.Helper()

	conf := &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "Darasa",
		SecretKey:                 []byte("secret"),
		Backend:                   core.BackendLocal,
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	db, err := localstore.Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("localstore.Open(): %v", err)
	}

	backend := localstore.NewBackend(db, conf, emailsvc.NewConsoleServiceMock(conf))
	sessionStore := localstore.NewSessionStore(db)
	sessionMgr := session.NewManager(sessionStore)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	auth.RegisterValidators(validate, translator)

	programs := program.NewService(localstore.NewProgramStore(db))

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testLogger{},
		Backend:        backend,
		Session:        sessionMgr,
		AuthFlow:       auth.NewFlow(backend, sessionMgr, sessionStore, validate),
		Attendance:     attendance.NewEngine(localstore.NewAttendanceStore(db)),
		Enrolment:      enrolment.NewEngine(localstore.NewEnrolmentStore(db)),
		Programs:       programs,
		Activity:       activity.NewService(localstore.NewActivityStore(db), testLogger{}),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &env{server: server, conf: conf, backend: backend, session: sessionMgr, programs: programs}
}

// createAccount provisions a verified account directly on the backend, signed
// out again so the flow starts clean.
func createAccount(t *testing.T, e *env, email, name, nric, pwd, role string) account.Account {
	t.Helper()

	na := account.NewAccount{
		Email:      email,
		Role:       role,
		Name:       name,
		MaskedNRIC: account.Mask(nric),
		NRICHash:   account.HashIdentifier(nric),
	}
	if role == account.RoleAdmin {
		na.AdminNo = account.NewAdminNo()
	} else {
		na.StudentNo = account.NewStudentNo()
	}

	acct, err := e.backend.CreateAccount(na, pwd)
	if err != nil {
		t.Fatalf("CreateAccount(): %v", err)
	}
	if err = e.backend.ReserveIdentifierHash(na.NRICHash, acct.ID); err != nil {
		t.Fatalf("ReserveIdentifierHash(): %v", err)
	}
	verified := true
	if acct, err = e.backend.UpdateProfile(acct.ID, account.ProfileUpdate{Verified: &verified}); err != nil {
		t.Fatalf("UpdateProfile(): %v", err)
	}
	if err = e.backend.SignOut(); err != nil {
		t.Fatalf("SignOut(): %v", err)
	}
	return acct
}

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
	extra    interface{}
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

func getToken(t *testing.T, conf *core.Config, acct account.Account) string {
	t.Helper()
	token, err := GenerateToken(conf, GetAccountClaims(conf, acct))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
