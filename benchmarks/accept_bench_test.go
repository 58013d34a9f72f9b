package benchmarks_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/rs/zerolog"

	ap "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/schemafile"
)

// ---- Helpers ----

var zipRe = regexp.MustCompile(`^\d{5}$`)

func signupRules(p *ap.Rules) {
	p.Integer("id", ap.Required(), ap.MinValue(1))
	p.Integer("per_page", ap.Default(int64(20)), ap.MaxValue(100))
	p.Namespace("user", func(u *ap.Rules) {
		u.String("login", ap.Required(), ap.MaxLength(16))
		u.String("zip", ap.Pattern(zipRe), ap.Format("NNNNN"))
		u.Boolean("admin", ap.Default(false))
		u.Array("tags")
	})
}

func signupParams() map[string]any {
	return map[string]any{
		"id":   "42",
		"user": map[string]any{"login": "alice", "zip": "94110", "admin": "0", "tags": "a,b,c"},
	}
}

// wideParams returns a flat mapping of n string params plus the matching
// declaration.
func wideParams(n int) (map[string]any, func(*ap.Rules)) {
	params := make(map[string]any, n)
	for i := 0; i < n; i++ {
		params[fmt.Sprintf("k%d", i)] = fmt.Sprintf("%d", i)
	}
	declare := func(p *ap.Rules) {
		for i := 0; i < n; i++ {
			p.Integer(fmt.Sprintf("k%d", i))
		}
	}
	return params, declare
}

const benchSchema = `
params:
  - name: id
    type: integer
    required: true
  - name: user
    fields:
      - name: login
        type: string
        required: true
      - name: age
        type: integer
        check: value >= 18
`

// ---- Benchmarks ----

func BenchmarkAccept_Signup(b *testing.B) {
	a := ap.NewAcceptor(ap.WithLogger(zerolog.Nop()))
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := a.Accept(ctx, signupParams(), signupRules); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAccept_Rejected(b *testing.B) {
	a := ap.NewAcceptor(ap.WithLogger(zerolog.Nop()))
	ctx := context.Background()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		params := signupParams()
		params["user"].(map[string]any)["zip"] = "nope"
		if err := a.Accept(ctx, params, signupRules); err == nil {
			b.Fatal("expected rejection")
		}
	}
}

func BenchmarkAccept_Wide(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := ap.NewAcceptor(ap.WithLogger(zerolog.Nop()))
			ctx := context.Background()
			base, declare := wideParams(n)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				params := make(map[string]any, len(base))
				for k, v := range base {
					params[k] = v
				}
				b.StartTimer()
				if err := a.Accept(ctx, params, declare); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Declaring once and reusing the tree versus rebuilding it per request.
func BenchmarkRules_DeclareOnly(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := ap.NewRules()
		signupRules(r)
		if r.Err() != nil {
			b.Fatal(r.Err())
		}
	}
}

func BenchmarkSchemaFile_Accept(b *testing.B) {
	doc, err := schemafile.Parse([]byte(benchSchema), schemafile.YAML)
	if err != nil {
		b.Fatalf("schema parse failed: %v", err)
	}
	a := ap.NewAcceptor(ap.WithLogger(zerolog.Nop()))
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		params := map[string]any{"id": "1", "user": map[string]any{"login": "bob", "age": "30"}}
		if err := doc.Accept(ctx, a, params); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseParams_JSON(b *testing.B) {
	data := []byte(`{"id":1,"user":{"login":"alice","tags":["a","b"],"meta":{"score":1.5}}}`)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if _, err := schemafile.ParseParams(data, schemafile.JSON); err != nil {
			b.Fatal(err)
		}
	}
}
