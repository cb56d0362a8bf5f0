package confload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Indirection prefixes recognized inside string values.
const (
	PrefixEnv  = "env://"
	PrefixFile = "file://"
	PrefixJSON = "json://"
	PrefixYAML = "yaml://"
)

type stub struct {
	path   string
	schema *jsonschema.Schema
}

// Loader loads configuration structures and validates them against
// registered schema stubs. The zero value is not usable; create one with
// New.
type Loader struct {
	mu    sync.RWMutex
	stubs map[string]stub
	log   logrus.FieldLogger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for watch and reload diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		stubs: make(map[string]stub),
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses a YAML document and resolves every indirection in it.
func (l *Loader) Load(data []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolve, err)
	}

	resolved, err := Resolve(raw)
	if err != nil {
		return nil, err
	}

	values, ok := resolved.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level document is not a mapping", ErrResolve)
	}
	return values, nil
}

// LoadFile reads, loads and validates a configuration file.
func (l *Loader) LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolve, err)
	}
	values, err := l.Load(data)
	if err != nil {
		return nil, err
	}
	if err := l.Validate(values); err != nil {
		return nil, err
	}
	return values, nil
}

// Resolve walks a decoded structure and replaces every prefixed string with
// its loaded value. Maps and sequences are resolved in place, recursively;
// loaded values are themselves resolved again, so indirections may chain.
func Resolve(v any) (any, error) {
	switch value := v.(type) {
	case string:
		return resolveString(value)
	case map[string]any:
		for k, child := range value {
			resolved, err := Resolve(child)
			if err != nil {
				return nil, err
			}
			value[k] = resolved
		}
		return value, nil
	case []any:
		for i, child := range value {
			resolved, err := Resolve(child)
			if err != nil {
				return nil, err
			}
			value[i] = resolved
		}
		return value, nil
	default:
		return v, nil
	}
}

func resolveString(s string) (any, error) {
	switch {
	case strings.HasPrefix(s, PrefixEnv):
		name := strings.TrimPrefix(s, PrefixEnv)
		value, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("%w: environment variable %q is not set", ErrResolve, name)
		}
		return Resolve(value)

	case strings.HasPrefix(s, PrefixFile):
		data, err := os.ReadFile(strings.TrimPrefix(s, PrefixFile))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		return Resolve(string(data))

	case strings.HasPrefix(s, PrefixJSON):
		data, err := os.ReadFile(strings.TrimPrefix(s, PrefixJSON))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		return Resolve(parsed)

	case strings.HasPrefix(s, PrefixYAML):
		data, err := os.ReadFile(strings.TrimPrefix(s, PrefixYAML))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		var parsed any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolve, err)
		}
		return Resolve(parsed)

	default:
		return s, nil
	}
}

// RegisterStub registers a validation stub: a gjson path into the resolved
// configuration plus a JSON-Schema document (a decoded document, or raw
// JSON as []byte or string). Registering an existing id overwrites.
func (l *Loader) RegisterStub(id, path string, schema any) error {
	if path == "" {
		return fmt.Errorf("%w: empty path (id=%s)", ErrInvalidStub, id)
	}

	doc, err := schemaDocument(schema)
	if err != nil {
		return fmt.Errorf("%w: %v (id=%s, path=%s)", ErrInvalidStub, err, id, path)
	}

	compiler := jsonschema.NewCompiler()
	resource := fmt.Sprintf("inline://stub/%s.json", id)
	if err := compiler.AddResource(resource, doc); err != nil {
		return fmt.Errorf("%w: %v (id=%s, path=%s)", ErrInvalidStub, err, id, path)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("%w: %v (id=%s, path=%s)", ErrInvalidStub, err, id, path)
	}

	l.mu.Lock()
	l.stubs[id] = stub{path: path, schema: compiled}
	l.mu.Unlock()
	return nil
}

func schemaDocument(schema any) (any, error) {
	switch doc := schema.(type) {
	case []byte:
		return jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	case string:
		return jsonschema.UnmarshalJSON(strings.NewReader(doc))
	default:
		return doc, nil
	}
}

// Validate checks the configuration against every registered stub. Each
// stub's path must match a value, and that value must satisfy the stub's
// schema.
func (l *Loader) Validate(values map[string]any) error {
	document, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for id, st := range l.stubs {
		result := gjson.GetBytes(document, st.path)
		if !result.Exists() {
			return fmt.Errorf("%w: path %q (stub %s) matches nothing", ErrValidation, st.path, id)
		}

		instance, err := jsonschema.UnmarshalJSON(strings.NewReader(result.Raw))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if err := st.schema.Validate(instance); err != nil {
			return fmt.Errorf("%w: stub %s at %q: %v", ErrValidation, id, st.path, err)
		}
	}
	return nil
}
