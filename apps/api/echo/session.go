package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/teamunity/lms/core"
	"github.com/teamunity/lms/core/session"
	"github.com/teamunity/lms/core/user"
)

const contextUserKey = "user"

type (
	// LoginRequest fields are pointers so that an empty object can be told apart from blank credentials.
	LoginRequest struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}

	LoginResponse struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

type sessionApi struct {
	mgr *session.Manager
}

func registerSessionAPI(app *echo.Echo, mgr *session.Manager) {
	api := sessionApi{mgr: mgr}
	app.POST("/login", api.login)
	app.PUT("/logout", api.logout)
}

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewBadRequestError(core.MsgBadRequest)
	}
	if data.Username == nil && data.Password == nil {
		return core.NewBadRequestError(core.MsgBadRequest)
	}

	sess, err := api.mgr.Login(ctx.Request().Context(), deref(data.Username), deref(data.Password))
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Message: session.MsgLoggedIn, Token: sess.Token})
}

func (api *sessionApi) logout(ctx echo.Context) error {
	if err := api.mgr.Logout(ctx.Request().Context(), bearerToken(ctx)); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: session.MsgLoggedOut})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header, or "".
func bearerToken(ctx echo.Context) string {
	splits := strings.Fields(ctx.Request().Header.Get(echo.HeaderAuthorization))
	if len(splits) != 2 || !strings.EqualFold(splits[0], "bearer") {
		return ""
	}
	return splits[1]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func mustContextUser(ctx echo.Context) (user.User, error) {
	usr, ok := getContextUser(ctx)
	if !ok {
		return user.User{}, errors.New("user object not found in echo.Context")
	}
	return usr, nil
}
