package schemafile

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"
)

type dupFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
	pendingKey   string
	// path is the canonical name of the container, "" at the top level.
	path string
}

func (f *dupFrame) childPath() string {
	if !f.object {
		return f.path
	}
	return joinPath(f.path, f.pendingKey)
}

func (f *dupFrame) valueDone() {
	if f.object {
		f.expectingKey = true
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "[" + key + "]"
}

// DuplicateKey scans a JSON document and returns the canonical name
// ("user[login]") of the first key that appears twice in the same object.
// Decoding into a map would silently keep the last value.
func DuplicateKey(data []byte) (string, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var stack []dupFrame
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		var top *dupFrame
		if len(stack) > 0 {
			top = &stack[len(stack)-1]
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				path := ""
				if top != nil {
					path = top.childPath()
				}
				stack = append(stack, dupFrame{
					object:       d == '{',
					keys:         map[string]struct{}{},
					expectingKey: d == '{',
					path:         path,
				})
			case '}', ']':
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					stack[len(stack)-1].valueDone()
				}
			}
			continue
		}

		if top != nil && top.object && top.expectingKey {
			key, _ := tok.(string)
			if _, seen := top.keys[key]; seen {
				return joinPath(top.path, key), true, nil
			}
			top.keys[key] = struct{}{}
			top.pendingKey = key
			top.expectingKey = false
			continue
		}
		if top != nil {
			top.valueDone()
		}
	}
}
