package ginmw

import (
	"github.com/gin-gonic/gin"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/middleware"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// Accept validates the request params (query, form, JSON body and gin path
// params) against the tree built by declare, stores the rewritten params in
// the request context and aborts with the error payload on failure.
func Accept(a *acceptparams.Acceptor, declare func(*acceptparams.Rules), opts ...acceptparams.Option) gin.HandlerFunc {
	if a == nil {
		a = acceptparams.DefaultAcceptor()
	}
	return func(c *gin.Context) {
		params, err := middleware.ParamsFromRequest(c.Request, maxBody)
		if err != nil {
			c.AbortWithStatusJSON(middleware.StatusOf(err), middleware.ErrorPayload(err))
			return
		}
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		if err := a.Accept(c.Request.Context(), params, declare, opts...); err != nil {
			c.AbortWithStatusJSON(middleware.StatusOf(err), middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithParams(c.Request.Context(), params))
		c.Next()
	}
}

// GetParams fetches the validated params from gin.Context.
func GetParams(c *gin.Context) (map[string]any, bool) {
	return middleware.ParamsFromContext(c.Request.Context())
}
