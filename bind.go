package acceptparams

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// timeLayouts are tried in order when binding a datetime string.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func stringToTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, err
}

// Bind copies validated params into dst, a pointer to a struct. Fields are
// matched by their `param` tag, falling back to a case-insensitive match
// on the field name. Nested namespaces bind to nested structs.
func Bind(params map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "param",
		Result:           dst,
		WeaklyTypedInput: false,
		DecodeHook:       mapstructure.DecodeHookFuncType(stringToTimeHook),
	})
	if err != nil {
		return fmt.Errorf("acceptparams: bind: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("acceptparams: bind: %w", err)
	}
	return nil
}

// AcceptInto validates params with the default Acceptor and binds the
// result into dst.
func AcceptInto(ctx context.Context, params map[string]any, dst any, declare func(*Rules), opts ...Option) error {
	if err := Accept(ctx, params, declare, opts...); err != nil {
		return err
	}
	return Bind(params, dst)
}
