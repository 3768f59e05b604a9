package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/featureswitch"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
)

type (
	// TitleSummary is the list entry of modules and assignments.
	TitleSummary struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	GradeSummary struct {
		AssignmentID int     `json:"assignment_id"`
		Score        float64 `json:"score"`
	}
)

// modules

type moduleApi struct {
	svc *module.Service
}

func registerModuleAPI(app *echo.Echo, gate *auth.Gate, svc *module.Service) {
	api := moduleApi{svc: svc}
	mg := app.Group("/modules", authorize(gate, auth.TeacherOnly))
	mg.POST("/create", api.create)
	mg.GET("/list", api.query)
}

func (api *moduleApi) create(ctx echo.Context) error {
	teacher, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	var data module.NewModule
	if err = ctx.Bind(&data); err != nil {
		return core.NewInvalidParamsError()
	}

	mod, err := api.svc.Create(ctx.Request().Context(), teacher, data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: module.CreatedMessage(mod)})
}

func (api *moduleApi) query(ctx echo.Context) error {
	mods, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	resp := make([]TitleSummary, 0, len(mods))
	for _, mod := range mods {
		resp = append(resp, TitleSummary{ID: mod.ID, Title: mod.Title})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// assignments

type assignmentApi struct {
	svc *assignment.Service
}

func registerAssignmentAPI(app *echo.Echo, gate *auth.Gate, svc *assignment.Service) {
	api := assignmentApi{svc: svc}
	ag := app.Group("/assignments", authorize(gate, auth.TeacherOnly))
	ag.POST("/create", api.create)
	ag.GET("/list", api.query)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return core.NewInvalidParamsError()
	}

	asg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: assignment.CreatedMessage(asg)})
}

func (api *assignmentApi) query(ctx echo.Context) error {
	asgs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	resp := make([]TitleSummary, 0, len(asgs))
	for _, asg := range asgs {
		resp = append(resp, TitleSummary{ID: asg.ID, Title: asg.Title})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// grades

type gradeApi struct {
	svc *grade.Service
}

func registerGradeAPI(app *echo.Echo, gate *auth.Gate, svc *grade.Service) {
	api := gradeApi{svc: svc}
	gg := app.Group("/grades")
	gg.POST("/create", api.create, authorize(gate, auth.TeacherOnly))
	gg.GET("/view", api.view, authorize(gate, auth.AnyAuthenticated))
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return core.NewInvalidParamsError()
	}

	grd, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: grade.CreatedMessage(grd)})
}

func (api *gradeApi) view(ctx echo.Context) error {
	caller, err := mustContextUser(ctx)
	if err != nil {
		return err
	}

	grds, err := api.svc.View(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "viewing grades")
	}
	resp := make([]GradeSummary, 0, len(grds))
	for _, grd := range grds {
		resp = append(resp, GradeSummary{AssignmentID: grd.AssignmentID, Score: grd.Score})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// feature switches

type featureSwitchApi struct {
	svc  *featureswitch.Service
	name string
}

func registerFeatureSwitchAPI(app *echo.Echo, svc *featureswitch.Service, name string) {
	api := featureSwitchApi{svc: svc, name: name}
	app.POST("/feature_switch/"+name, api.toggle)
}

func (api *featureSwitchApi) toggle(ctx echo.Context) error {
	var data featureswitch.Toggle
	if err := ctx.Bind(&data); err != nil {
		return core.NewBadRequestError(featureswitch.MsgInvalidActive)
	}

	fs, err := api.svc.Toggle(ctx.Request().Context(), api.name, data)
	if err != nil {
		return errors.Wrap(err, "toggling feature switch")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: featureswitch.ToggledMessage(fs)})
}
