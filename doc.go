// Package acceptparams validates request parameters against a declared
// schema.
//
// A caller declares, per request, which parameters are expected at each
// nesting level, their types, whether they are required, their defaults and
// extra constraints. Validation then checks a live params mapping against
// the declaration and rewrites it in place:
//
//   - required parameters must be present (MissingParam)
//   - values are type-checked and coerced, "42" becomes int64(42)
//     (InvalidParamType)
//   - minvalue/maxvalue/in/maxlength/pattern/not-empty/check constraints run
//     after coercion (InvalidParamValue)
//   - defaults are filled in for absent optional parameters
//   - undeclared keys fail the request, or are ignored or stripped
//     depending on Settings (UnexpectedParam)
//
// Design policy:
//   - Keep the engine in the root package; wire formats, HTTP, configuration
//     files and metrics live in satellite packages (middleware, config,
//     schemafile, metrics, sqlmodel).
//   - A declared tree is built fresh for every call and never shared.
//   - Validation is fail-fast: the first problem is returned as an *Error.
//
// Typical usage:
//
//	err := acceptparams.Accept(ctx, params, func(p *acceptparams.Rules) {
//	    p.Integer("id", acceptparams.Required())
//	    p.Namespace("user", func(u *acceptparams.Rules) {
//	        u.String("login", acceptparams.Required(), acceptparams.MaxLength(32))
//	        u.Boolean("admin", acceptparams.Default(false))
//	    })
//	    p.Integer("page", acceptparams.MinValue(1), acceptparams.Default(int64(1)))
//	})
//	if errors.Is(err, acceptparams.ErrMissingParam) {
//	    // 400
//	}
//
// Process-wide defaults are set once at startup with SetDefaults (or through
// the config package) and can be overridden per call with Options such as
// WithIgnoreUnexpected.
package acceptparams
