package tests

import (
	"net/http"
	"testing"

	"github.com/kymoja/darasa/core/account"
)

func Test_studentApi_query(t *testing.T) {
	e := setup(t)
	student1 := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	student2 := createAccount(t, e, "bakari@uni.test", "Bakari Juma", "93040566678912", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	adminToken := getToken(t, e.conf, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/students", token: getToken(t, e.conf, student1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all students", path: "/v1/students", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, student1, student2),
		},
		{
			name: "role=admin", path: "/v1/students?role=admin", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, admin),
		},
		{
			name: "role (unknown)", path: "/v1/students?role=lol", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallList(t, []interface{}{}...),
		},
		{
			name: "Roles", path: "/v1/students/roles", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, account.Roles),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	e := setup(t)
	student1 := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	student2 := createAccount(t, e, "bakari@uni.test", "Bakari Juma", "93040566678912", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students/" + student1.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Self", path: "/v1/students/" + student1.ID, token: getToken(t, e.conf, student1),
			wantCode: http.StatusOK, wantData: marchallObj(t, student1),
		},
		{
			name: "Someone else's record is invisible", path: "/v1/students/" + student2.ID, token: getToken(t, e.conf, student1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Admin sees all", path: "/v1/students/" + student2.ID, token: getToken(t, e.conf, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, student2),
		},
		{
			name: "Unknown id", path: "/v1/students/nope", token: getToken(t, e.conf, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_update(t *testing.T) {
	e := setup(t)
	student := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	studentToken := getToken(t, e.conf, student)
	path := "/v1/students/" + student.ID

	// students may not touch program/semester
	body := marchallObj(t, account.ProfileUpdate{Program: "BSc Computer Science"})
	req, rec := newAuthRequest(http.MethodPut, path, studentToken, body)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	// contact details are theirs to change
	body = marchallObj(t, account.ProfileUpdate{Name: "Amina Y. Hassan", Phone: "+254700111222"})
	req, rec = newAuthRequest(http.MethodPut, path, studentToken, body)
	e.server.ServeHTTP(rec, req)
	want := student
	want.Name = "Amina Y. Hassan"
	want.Phone = "+254700111222"
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)

	// admin assigns program and semester
	body = marchallObj(t, account.ProfileUpdate{Program: "BSc Computer Science", Semester: "2026-S1"})
	req, rec = newAuthRequest(http.MethodPut, path, getToken(t, e.conf, admin), body)
	e.server.ServeHTTP(rec, req)
	want.Program = "BSc Computer Science"
	want.Semester = "2026-S1"
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, want)}, rec)

	// the stored record reflects both updates
	got, err := e.backend.FetchProfile(student.ID)
	if err != nil {
		t.Fatalf("FetchProfile(): %v", err)
	}
	if got.Name != want.Name || got.Program != want.Program || got.Semester != want.Semester {
		t.Errorf("stored profile = %+v; want %+v", got, want)
	}
}

func Test_studentApi_destroy(t *testing.T) {
	e := setup(t)
	student := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	adminToken := getToken(t, e.conf, admin)

	// students cannot delete, not even themselves
	req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+student.ID, getToken(t, e.conf, student))
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	// the acting admin cannot delete themselves
	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+admin.ID, adminToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+student.ID, adminToken)
	e.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// gone
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+student.ID, adminToken)
	e.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
}
