package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/edusite/core/user"
)

const contextUserKey = "user"

// authMiddleware verifies the Bearer ID token and puts its user in the context.
func authMiddleware(auth user.Authenticator) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(token string, ctx echo.Context) (bool, error) {
			usr, err := auth.VerifyToken(ctx.Request().Context(), token)
			if err != nil {
				return false, nil
			}
			ctx.Set(contextUserKey, usr)
			return true, nil
		},
		ErrorHandler: func(error, echo.Context) error {
			return errUnauthorized
		},
	})
}

// adminMiddleware must come after authMiddleware.
func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, ok := getContextUser(ctx)
		if !ok {
			return errUnauthorized
		}
		if !usr.IsAdmin() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func mustContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := getContextUser(ctx); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func me(ctx echo.Context) error {
	usr, err := mustContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}
