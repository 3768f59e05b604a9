package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/auth"
	"github.com/teamunity/lms/core/user"
)

type (
	UserDetail struct {
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
		Email     string    `json:"email"`
		Username  string    `json:"username"`
		Role      user.Role `json:"role_id"`
	}

	StudentSummary struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(app *echo.Echo, gate *auth.Gate, svc *user.Service) {
	api := userApi{svc: svc}

	ug := app.Group("/users")
	ug.POST("/create", api.create, authorize(gate, auth.AdminOnly))
	ug.GET("/list", api.query, authorize(gate, auth.AdminOrTeacher))
	ug.GET("/list_students", api.queryStudents, authorize(gate, auth.AdminOrTeacher))
	ug.GET("/:id", api.retrieve, authorize(gate, auth.AdminOnly))
	ug.PUT("/:id", api.update, authorize(gate, auth.AdminOnly))
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return core.NewInvalidParamsError()
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: user.CreatedMessage(usr)})
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.Query(ctx.Request().Context(), nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	resp := make([]StudentSummary, 0, len(students))
	for _, usr := range students {
		resp = append(resp, StudentSummary{ID: usr.ID, FirstName: usr.FirstName, LastName: usr.LastName})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return core.NewNotFoundError(user.MsgNotFound)
	}

	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewNotFoundError(user.MsgNotFound)
		}
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, UserDetail{
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Email:     usr.Email,
		Username:  usr.Username,
		Role:      usr.Role,
	})
}

func (api *userApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return core.NewNotFoundError(user.MsgUpdateNotFound)
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return core.NewInvalidParamsError()
	}

	if _, err = api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: user.MsgUpdated})
}
