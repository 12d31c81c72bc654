package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/attendance"
)

type attendanceApi struct {
	deps ServerDeps
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark, adminMiddleware())
	ag.GET("/summary", api.summary, adminMiddleware())
	ag.GET("/students/:id", api.forStudent, selfOrAdminMiddleware(deps.Backend))
}

// Handlers

// mark replaces the whole sheet for the submitted date.
func (api *attendanceApi) mark(ctx echo.Context) error {
	var data MarkAttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendanceRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err = api.deps.Attendance.Mark(data.Date, data.Entries, claims.Email); err != nil {
		switch errors.Cause(err) {
		case attendance.ErrBadDate:
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: attendance.ErrBadDate.Error()})
		case attendance.ErrBadStatus:
			return core.NewValidationError(nil, core.FieldError{Field: "entries", Error: attendance.ErrBadStatus.Error()})
		}
		return errors.Wrap(err, "marking attendance")
	}

	api.deps.Activity.Record("attendance marked for "+data.Date, claims.Email, activity.KindInfo)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Attendance saved for " + data.Date + "."})
}

func (api *attendanceApi) forStudent(ctx echo.Context) error {
	studentID := ctx.Param("id")

	records, err := api.deps.Attendance.ForStudent(studentID)
	if err != nil {
		return errors.Wrap(err, "loading attendance records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	percentage, err := api.deps.Attendance.Percentage(studentID)
	if err != nil {
		return errors.Wrap(err, "computing attendance percentage")
	}

	return ctx.JSON(http.StatusOK, StudentAttendanceResponse{Records: records, Percentage: percentage})
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	date := ctx.QueryParam("date")
	if date == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}

	present, err := api.deps.Attendance.CountPresentOn(date)
	if err != nil {
		return errors.Wrap(err, "counting present students")
	}
	return ctx.JSON(http.StatusOK, AttendanceSummaryResponse{Date: date, Present: present})
}

type (
	MarkAttendanceRequest struct {
		Date    string             `json:"date" validate:"required"`
		Entries []attendance.Entry `json:"entries" validate:"required"`
	}

	StudentAttendanceResponse struct {
		Records    []attendance.Record `json:"records"`
		Percentage int                 `json:"percentage"`
	}

	AttendanceSummaryResponse struct {
		Date    string `json:"date"`
		Present int    `json:"present"`
	}
)

func (mr *MarkAttendanceRequest) Validate(validate *validator.Validate) error {
	mr.Date = core.CleanString(mr.Date)
	return validate.Struct(mr)
}
