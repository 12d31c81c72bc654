package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/program"
)

func Test_programApi_crud(t *testing.T) {
	e := setup(t)
	student := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	studentToken := getToken(t, e.conf, student)
	adminToken := getToken(t, e.conf, admin)

	// empty catalogue, visible to any authed account
	req, rec := newAuthRequest(http.MethodGet, "/v1/programs", studentToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)}, rec)

	// create is admin-only
	body := marchallObj(t, program.Program{Name: "BSc Computer Science", Code: "BSC-CS"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/programs", studentToken, body)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/programs", adminToken, marchallObj(t, program.Program{Code: "BSC-CS"}))
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/programs", adminToken, body)
	e.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var prog program.Program
	if err := json.Unmarshal(rec.Body.Bytes(), &prog); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if prog.ID == "" {
		t.Error("failed! empty program id")
	}
	if prog.Status != program.StatusActive {
		t.Errorf("Status = %q; want %q", prog.Status, program.StatusActive)
	}

	// retrieve, open to students too
	req, rec = newAuthRequest(http.MethodGet, "/v1/programs/"+prog.ID, studentToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, prog)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/programs/nope", studentToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)

	// update
	updated := prog
	updated.Name = "BSc Computer Science & AI"
	updated.Courses = []program.Course{{ID: "crs-1", Code: "CS101", Name: "Programming I", Credits: iPtr(4)}}
	req, rec = newAuthRequest(http.MethodPut, "/v1/programs/"+prog.ID, adminToken, marchallObj(t, updated))
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, updated)}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/programs/nope", adminToken, marchallObj(t, updated))
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/programs", adminToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, updated)}, rec)

	// destroy
	req, rec = newAuthRequest(http.MethodDelete, "/v1/programs/"+prog.ID, studentToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/programs/"+prog.ID, adminToken)
	e.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/programs/"+prog.ID, adminToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
}
