package factory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

type marker struct {
	value    any
	hasValue bool
}

type builder struct {
	fn      reflect.Value
	typ     reflect.Type // the function type
	product reflect.Type // the first return value
	markers map[string]marker
}

// Factory is a registry of named builders. Safe for concurrent use.
type Factory struct {
	mu       sync.Mutex
	builders map[string]*builder
	order    []string // registration order, for deterministic selection
	def      string
	log      logrus.FieldLogger
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used for selection fallthrough warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Factory) {
		f.log = log
	}
}

// New creates an empty Factory.
func New(opts ...Option) *Factory {
	f := &Factory{
		builders: make(map[string]*builder),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterOption attaches metadata to a builder at registration.
type RegisterOption func(*builder)

// Marker attaches a named marker with a value to the builder, matchable
// with WithMarker or WithMarkerValue.
func Marker(name string, value any) RegisterOption {
	return func(b *builder) {
		b.markers[name] = marker{value: value, hasValue: true}
	}
}

// MarkerFlag attaches a named, valueless marker to the builder.
func MarkerFlag(name string) RegisterOption {
	return func(b *builder) {
		b.markers[name] = marker{}
	}
}

// Register adds a constructor function under a key. The constructor must
// return its product, optionally followed by an error. The first
// registration becomes the default builder.
func (f *Factory) Register(key string, fn any, opts ...RegisterOption) error {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if v.Kind() != reflect.Func {
		return fmt.Errorf("%w: %q is not a function", ErrInvalidBuilder, key)
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return fmt.Errorf("%w: %q must return a product and an optional error", ErrInvalidBuilder, key)
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return fmt.Errorf("%w: %q second return value must be an error", ErrInvalidBuilder, key)
	}

	b := &builder{
		fn:      v,
		typ:     t,
		product: t.Out(0),
		markers: make(map[string]marker),
	}
	for _, opt := range opts {
		opt(b)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.builders[key]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, key)
	}
	f.builders[key] = b
	f.order = append(f.order, key)
	if f.def == "" {
		f.def = key
	}
	return nil
}

// SetDefault names the builder used when no other selection mechanism
// matches.
func (f *Factory) SetDefault(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.builders[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBuilder, key)
	}
	f.def = key
	return nil
}

// DefaultKey returns the current default builder's key.
func (f *Factory) DefaultKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.def
}

// Keys returns the registered keys in registration order.
func (f *Factory) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, len(f.order))
	copy(keys, f.order)
	return keys
}

type createOptions struct {
	key            string
	markerName     string
	markerValue    any
	hasMarkerValue bool
	args           []any
	baseType       reflect.Type
}

// CreateOption directs builder selection.
type CreateOption func(*createOptions)

// WithKey requests a builder directly by key.
func WithKey(key string) CreateOption {
	return func(o *createOptions) {
		o.key = key
	}
}

// WithMarker selects the first builder carrying a marker with this name.
func WithMarker(name string) CreateOption {
	return func(o *createOptions) {
		o.markerName = name
	}
}

// WithMarkerValue selects the builder carrying a marker with this name and
// value; when none matches exactly, selection falls back to name-only
// matching.
func WithMarkerValue(name string, value any) CreateOption {
	return func(o *createOptions) {
		o.markerName = name
		o.markerValue = value
		o.hasMarkerValue = true
	}
}

// WithArgs supplies constructor arguments; they also drive signature-based
// selection.
func WithArgs(args ...any) CreateOption {
	return func(o *createOptions) {
		o.args = args
	}
}

// WithBaseType restricts candidates to builders whose product is assignable
// to t (use reflect.TypeFor[MyInterface]()).
func WithBaseType(t reflect.Type) CreateOption {
	return func(o *createOptions) {
		o.baseType = t
	}
}

// Create selects a builder and invokes it with the supplied arguments.
func (f *Factory) Create(opts ...CreateOption) (any, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	f.mu.Lock()
	key, err := f.choose(&o)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	b := f.builders[key]
	f.mu.Unlock()

	return f.build(key, b, o.args)
}

// choose picks a builder key; the caller holds the lock.
func (f *Factory) choose(o *createOptions) (string, error) {
	if len(f.builders) == 0 {
		return "", ErrNoBuilders
	}

	candidates := f.candidateKeys(o.baseType)
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no builder produces %s", ErrNoBuilders, o.baseType)
	}

	defaultKey := func() (string, error) {
		if o.baseType != nil && !f.builders[f.def].product.AssignableTo(o.baseType) {
			return "", fmt.Errorf("%w: default builder %q does not produce %s",
				ErrNoBuilders, f.def, o.baseType)
		}
		return f.def, nil
	}

	// No hints at all: hand out the default.
	if o.key == "" && o.markerName == "" && len(o.args) == 0 {
		return defaultKey()
	}

	// Give them what they asked for.
	if o.key != "" {
		for _, key := range candidates {
			if key == o.key {
				return key, nil
			}
		}
		f.log.WithField("key", o.key).
			Warn("builder not found, using other mechanisms to select product")
	}

	if o.markerName != "" {
		if key, ok := f.selectByMarker(o, candidates); ok {
			return key, nil
		}
		f.log.WithField("marker", o.markerName).
			Warn("marker not found, using other mechanisms to select product")
	}

	if key, ok := f.selectByArgs(o.args, candidates); ok {
		return key, nil
	}
	if len(o.args) > 0 {
		f.log.WithField("args", len(o.args)).
			Warn("no builder matches the supplied arguments, using default builder")
	}
	return defaultKey()
}

func (f *Factory) candidateKeys(baseType reflect.Type) []string {
	if baseType == nil {
		return f.order
	}
	var keys []string
	for _, key := range f.order {
		if f.builders[key].product.AssignableTo(baseType) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (f *Factory) selectByMarker(o *createOptions, candidates []string) (string, bool) {
	named := ""
	for _, key := range candidates {
		m, ok := f.builders[key].markers[o.markerName]
		if !ok {
			continue
		}
		if named == "" {
			named = key
		}
		if o.hasMarkerValue && m.hasValue && reflect.DeepEqual(m.value, o.markerValue) {
			return key, true
		}
	}
	if o.hasMarkerValue && named != "" {
		f.log.WithFields(logrus.Fields{
			"marker": o.markerName,
			"value":  o.markerValue,
		}).Warn("marker value not matched, selecting by marker name")
	}
	if named != "" {
		return named, true
	}
	return "", false
}

// selectByArgs returns the first builder whose constructor can be invoked
// with the supplied arguments.
func (f *Factory) selectByArgs(args []any, candidates []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	for _, key := range candidates {
		if callableWith(f.builders[key].typ, args) {
			return key, true
		}
	}
	return "", false
}

func callableWith(t reflect.Type, args []any) bool {
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return false
		}
	} else if len(args) != t.NumIn() {
		return false
	}

	for i, arg := range args {
		var want reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			want = t.In(t.NumIn() - 1).Elem()
		} else {
			want = t.In(i)
		}
		if arg == nil {
			// nil only fits nilable parameters
			switch want.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface,
				reflect.Map, reflect.Pointer, reflect.Slice:
			default:
				return false
			}
			continue
		}
		if !reflect.TypeOf(arg).AssignableTo(want) {
			return false
		}
	}
	return true
}

func (f *Factory) build(key string, b *builder, args []any) (any, error) {
	if !callableWith(b.typ, args) {
		return nil, fmt.Errorf("%w: builder %q cannot accept the supplied arguments", ErrBuild, key)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			var want reflect.Type
			if b.typ.IsVariadic() && i >= b.typ.NumIn()-1 {
				want = b.typ.In(b.typ.NumIn() - 1).Elem()
			} else {
				want = b.typ.In(i)
			}
			in[i] = reflect.Zero(want)
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	out := b.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("%w: %q: %v", ErrBuild, key, out[1].Interface())
	}
	return out[0].Interface(), nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
