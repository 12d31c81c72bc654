package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/core/enrolment"
	"github.com/kymoja/darasa/core/program"
)

type enrolmentApi struct {
	deps ServerDeps
}

func registerEnrolmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := enrolmentApi{deps: deps}

	eg := g.Group("/students/:id/enrolments", jwt, selfOrAdminMiddleware(deps.Backend))
	eg.GET("", api.list)
	eg.POST("", api.save)
	eg.PUT("", api.adminSave, adminMiddleware())
}

// Handlers

func (api *enrolmentApi) list(ctx echo.Context) error {
	semester := ctx.QueryParam("semester")
	if semester == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "this field is required"})
	}
	studentID := ctx.Param("id")

	records, err := api.deps.Enrolment.ForSemester(studentID, semester)
	if err != nil {
		return errors.Wrap(err, "loading enrolments")
	}
	if records == nil {
		records = []enrolment.Record{}
	}
	credits, err := api.deps.Enrolment.CreditTotal(studentID, semester)
	if err != nil {
		return errors.Wrap(err, "computing credit total")
	}

	return ctx.JSON(http.StatusOK, EnrolmentListResponse{Records: records, CreditTotal: credits})
}

// save replaces the student's own course selection for the semester.
func (api *enrolmentApi) save(ctx echo.Context) error {
	acct, ok := ctx.Get("object").(account.Account)
	if !ok {
		return errors.Wrap(errAcctNotFoundInCtx, "retrieving object from context")
	}

	var data SaveEnrolmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveEnrolmentRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	prog, err := api.resolveProgram(data.ProgramID, acct)
	if err != nil {
		return err
	}

	if err = api.deps.Enrolment.Save(acct.ID, data.Semester, data.CourseIDs, prog); err != nil {
		return mapEnrolmentError(err)
	}

	api.deps.Activity.Record("enrolment updated for "+acct.Email+" ("+data.Semester+")", acct.Email, activity.KindInfo)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Enrolment saved for " + data.Semester + "."})
}

// adminSave replaces the semester's rows wholesale, statuses included.
func (api *enrolmentApi) adminSave(ctx echo.Context) error {
	acct, ok := ctx.Get("object").(account.Account)
	if !ok {
		return errors.Wrap(errAcctNotFoundInCtx, "retrieving object from context")
	}

	var data AdminSaveEnrolmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminSaveEnrolmentRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.Enrolment.AdminSave(acct.ID, data.Semester, data.Rows); err != nil {
		return mapEnrolmentError(err)
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.deps.Activity.Record("enrolment edited for "+acct.Email+" ("+data.Semester+")", claims.Email, activity.KindInfo)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Enrolment saved for " + data.Semester + "."})
}

// resolveProgram prefers an explicit program id and falls back to the loose
// name linkage on the student's record.
func (api *enrolmentApi) resolveProgram(programID string, acct account.Account) (program.Program, error) {
	if programID != "" {
		prog, err := api.deps.Programs.Get(programID)
		if err != nil {
			if errors.Cause(err) == program.ErrNotFound {
				return program.Program{}, core.NewValidationError(nil, core.FieldError{Field: "program_id", Error: "unknown program"})
			}
			return program.Program{}, errors.Wrap(err, "finding program by ID")
		}
		return prog, nil
	}

	prog, err := api.deps.Programs.ByName(acct.Program)
	if err != nil {
		if errors.Cause(err) == program.ErrNotFound {
			return program.Program{}, core.NewValidationError(nil, core.FieldError{Field: "program_id", Error: "no program on record; supply program_id"})
		}
		return program.Program{}, errors.Wrap(err, "finding program by name")
	}
	return prog, nil
}

func mapEnrolmentError(err error) error {
	switch errors.Cause(err) {
	case enrolment.ErrUnknownCourse:
		return core.NewValidationError(nil, core.FieldError{Field: "course_ids", Error: enrolment.ErrUnknownCourse.Error()})
	case enrolment.ErrBadSemester:
		return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: enrolment.ErrBadSemester.Error()})
	case enrolment.ErrBadStatus:
		return core.NewValidationError(nil, core.FieldError{Field: "rows", Error: enrolment.ErrBadStatus.Error()})
	}
	return errors.Wrap(err, "saving enrolment")
}

type (
	SaveEnrolmentRequest struct {
		Semester  string   `json:"semester" validate:"required"`
		ProgramID string   `json:"program_id"`
		CourseIDs []string `json:"course_ids" validate:"required,min=1"`
	}

	AdminSaveEnrolmentRequest struct {
		Semester string             `json:"semester" validate:"required"`
		Rows     []enrolment.Record `json:"rows" validate:"required"`
	}

	EnrolmentListResponse struct {
		Records     []enrolment.Record `json:"records"`
		CreditTotal int                `json:"credit_total"`
	}
)

func (sr *SaveEnrolmentRequest) Validate(validate *validator.Validate) error {
	sr.Semester = core.CleanString(sr.Semester)
	return validate.Struct(sr)
}

func (ar *AdminSaveEnrolmentRequest) Validate(validate *validator.Validate) error {
	ar.Semester = core.CleanString(ar.Semester)
	return validate.Struct(ar)
}
