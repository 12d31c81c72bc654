package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/kymoja/darasa/apps/api/echo"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/attendance"
)

func Test_attendanceApi_mark(t *testing.T) {
	e := setup(t)
	student1 := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	student2 := createAccount(t, e, "bakari@uni.test", "Bakari Juma", "93040566678912", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	adminToken := getToken(t, e.conf, admin)
	present := func(id string) attendance.Entry { return attendance.Entry{StudentID: id, Status: attendance.StatusPresent} }
	absent := func(id string) attendance.Entry { return attendance.Entry{StudentID: id, Status: attendance.StatusAbsent} }

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, e.conf, student1), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", token: adminToken, body: marchallObj(t, struct{}{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "this field is required", "entries": "this field is required"}),
		},
		{
			name: "bad date", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.MarkAttendanceRequest{Date: "2026-13-45", Entries: []attendance.Entry{present(student1.ID)}}),
			wantData: marchallObj(t, map[string]string{"date": attendance.ErrBadDate.Error()}),
		},
		{
			name: "bad status", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.MarkAttendanceRequest{Date: "2026-03-02", Entries: []attendance.Entry{{StudentID: student1.ID, Status: "late"}}}),
			wantData: marchallObj(t, map[string]string{"entries": attendance.ErrBadStatus.Error()}),
		},
		{
			name: "marked", token: adminToken, wantCode: http.StatusOK,
			body:     marchallObj(t, echoapi.MarkAttendanceRequest{Date: "2026-03-02", Entries: []attendance.Entry{present(student1.ID), absent(student2.ID)}}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Attendance saved for 2026-03-02."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/attendance"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// a second day, then the first day marked over; the re-mark replaces the
	// whole sheet for that date
	mark := func(date string, entries ...attendance.Entry) {
		t.Helper()
		body := marchallObj(t, echoapi.MarkAttendanceRequest{Date: date, Entries: entries})
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", adminToken, body)
		e.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("mark(%s) failed! code = %v; body %s", date, rec.Code, rec.Body.String())
		}
	}
	mark("2026-03-03", present(student1.ID))
	mark("2026-03-02", absent(student1.ID))

	forStudent := func(t *testing.T, id, token string) (int, echoapi.StudentAttendanceResponse) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/students/"+id, token)
		e.server.ServeHTTP(rec, req)
		var resp echoapi.StudentAttendanceResponse
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
		}
		return rec.Code, resp
	}

	// student1: absent 2026-03-02 (re-marked), present 2026-03-03 -> 50%
	code, resp := forStudent(t, student1.ID, getToken(t, e.conf, student1))
	if code != http.StatusOK {
		t.Fatalf("failed! code = %v", code)
	}
	if len(resp.Records) != 2 {
		t.Fatalf("len(Records) = %d; want 2", len(resp.Records))
	}
	if resp.Records[0].Date != "2026-03-03" || resp.Records[1].Date != "2026-03-02" {
		t.Errorf("records not newest-first: %+v", resp.Records)
	}
	if resp.Records[1].Status != attendance.StatusAbsent {
		t.Errorf("re-mark did not replace the day: %+v", resp.Records[1])
	}
	if resp.Percentage != 50 {
		t.Errorf("Percentage = %d; want 50", resp.Percentage)
	}
	if resp.Records[0].MarkedBy != admin.Email {
		t.Errorf("MarkedBy = %q; want %q", resp.Records[0].MarkedBy, admin.Email)
	}

	// student2's 2026-03-02 row was dropped by the re-mark
	code, resp = forStudent(t, student2.ID, adminToken)
	if code != http.StatusOK {
		t.Fatalf("failed! code = %v", code)
	}
	if len(resp.Records) != 0 || resp.Percentage != 0 {
		t.Errorf("expected no records, got %+v (%d%%)", resp.Records, resp.Percentage)
	}

	// students cannot read each other's sheets
	if code, _ = forStudent(t, student1.ID, getToken(t, e.conf, student2)); code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want 404", code)
	}
}

func Test_attendanceApi_summary(t *testing.T) {
	e := setup(t)
	student1 := createAccount(t, e, "amina@uni.test", "Amina Yusuf", "91120455678943", "Zx#48kpq", account.RoleStudent)
	student2 := createAccount(t, e, "bakari@uni.test", "Bakari Juma", "93040566678912", "Zx#48kpq", account.RoleStudent)
	admin := createAccount(t, e, "head@uni.test", "Head Admin", "88050912345671", "Qw#73mnp", account.RoleAdmin)

	adminToken := getToken(t, e.conf, admin)

	body := marchallObj(t, echoapi.MarkAttendanceRequest{Date: "2026-03-02", Entries: []attendance.Entry{
		{StudentID: student1.ID, Status: attendance.StatusPresent},
		{StudentID: student2.ID, Status: attendance.StatusAbsent},
	}})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", adminToken, body)
	e.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/attendance/summary?date=2026-03-02", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/attendance/summary?date=2026-03-02", token: getToken(t, e.conf, student1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "date required", path: "/v1/attendance/summary", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "this field is required"}),
		},
		{
			name: "present count", path: "/v1/attendance/summary?date=2026-03-02", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AttendanceSummaryResponse{Date: "2026-03-02", Present: 1}),
		},
		{
			name: "unmarked day", path: "/v1/attendance/summary?date=2026-03-09", token: adminToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AttendanceSummaryResponse{Date: "2026-03-09", Present: 0}),
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
