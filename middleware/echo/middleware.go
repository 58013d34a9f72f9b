package echomw

import (
	"github.com/labstack/echo/v4"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/middleware"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// Accept validates the request params (query, form, JSON body and echo path
// params) against the tree built by declare. On success the rewritten params
// are stored in the request context; otherwise the error payload is returned
// with 400 (500 for broken declarations).
func Accept(a *acceptparams.Acceptor, declare func(*acceptparams.Rules), opts ...acceptparams.Option) echo.MiddlewareFunc {
	if a == nil {
		a = acceptparams.DefaultAcceptor()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			params, err := middleware.ParamsFromRequest(c.Request(), maxBody)
			if err != nil {
				return c.JSON(middleware.StatusOf(err), middleware.ErrorPayload(err))
			}
			names, values := c.ParamNames(), c.ParamValues()
			for i, name := range names {
				if i < len(values) {
					params[name] = values[i]
				}
			}
			if err := a.Accept(c.Request().Context(), params, declare, opts...); err != nil {
				return c.JSON(middleware.StatusOf(err), middleware.ErrorPayload(err))
			}
			ctx := middleware.ContextWithParams(c.Request().Context(), params)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetParams fetches the validated params from echo.Context.
func GetParams(c echo.Context) (map[string]any, bool) {
	return middleware.ParamsFromContext(c.Request().Context())
}
