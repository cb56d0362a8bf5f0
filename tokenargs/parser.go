package tokenargs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// tokenPattern matches either a word or a quoted phrase.
var tokenPattern = regexp.MustCompile(`\b\w+\b|"[^"]*"|'[^']*'`)

// quotePattern strips leading/trailing quotes from a matched phrase.
var quotePattern = regexp.MustCompile(`^["']|["']$`)

// Tokenize splits free text into word and quoted-phrase tokens, with the
// quotes removed.
func Tokenize(input string) []string {
	matches := tokenPattern.FindAllString(input, -1)
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = quotePattern.ReplaceAllString(m, "")
	}
	return tokens
}

// Result holds the parsed arguments, keyed by argument name.
type Result struct {
	values map[string]any
}

// Has reports whether the argument was set (or defaulted).
func (r *Result) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Get returns the raw typed value of an argument.
func (r *Result) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// String returns a string argument, or "" when absent.
func (r *Result) String(name string) string {
	if v, ok := r.values[name].(string); ok {
		return v
	}
	return ""
}

// Int returns an int argument, or 0 when absent.
func (r *Result) Int(name string) int {
	if v, ok := r.values[name].(int); ok {
		return v
	}
	return 0
}

// Float returns a float argument, or 0 when absent.
func (r *Result) Float(name string) float64 {
	if v, ok := r.values[name].(float64); ok {
		return v
	}
	return 0
}

// Bool returns a boolean argument; absent means false.
func (r *Result) Bool(name string) bool {
	if v, ok := r.values[name].(bool); ok {
		return v
	}
	return false
}

// Strings returns a multi-value string argument, or nil when absent.
func (r *Result) Strings(name string) []string {
	if v, ok := r.values[name].([]string); ok {
		return v
	}
	return nil
}

// Map returns all parsed values.
func (r *Result) Map() map[string]any {
	return r.values
}

// Parser parses token streams against a set of declared arguments.
type Parser struct {
	log       logrus.FieldLogger
	args      map[string]*Argument
	order     []string
	mandatory []string
	defaults  []string
	drop      map[string]struct{}
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for unknown-token and conversion warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithDropTokens names tokens removed from the stream before parsing
// (filler words, prompt prefixes).
func WithDropTokens(tokens ...string) Option {
	return func(p *Parser) {
		for _, t := range tokens {
			p.drop[t] = struct{}{}
		}
	}
}

// NewParser creates a Parser for the declared arguments.
func NewParser(args []Argument, opts ...Option) (*Parser, error) {
	p := &Parser{
		log:  logrus.StandardLogger(),
		args: make(map[string]*Argument),
		drop: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, a := range args {
		if err := p.AddArgument(a); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddArgument declares another argument. Names must be unique.
func (p *Parser) AddArgument(a Argument) error {
	if err := a.normalize(); err != nil {
		return err
	}
	if _, exists := p.args[a.Name]; exists {
		return fmt.Errorf("%w: %q", ErrArgumentDefined, a.Name)
	}

	p.args[a.Name] = &a
	p.order = append(p.order, a.Name)
	if a.Required {
		p.mandatory = append(p.mandatory, a.Name)
	}
	if a.Default != nil {
		p.defaults = append(p.defaults, a.Name)
	}
	return nil
}

// isArg reports whether a token names a declared argument.
func (p *Parser) isArg(token string) bool {
	_, ok := p.args[token]
	return ok
}

// Parse tokenizes the input and parses it.
func (p *Parser) Parse(input string) (*Result, error) {
	return p.ParseTokens(Tokenize(input))
}

// ParseTokens parses an already tokenized stream. The first occurrence of
// an argument wins; repeats are logged and skipped. Conversion failures are
// logged with the argument's help text and dropped. Parsing fails when an
// argument has too few values or a mandatory argument is absent.
func (p *Parser) ParseTokens(tokens []string) (*Result, error) {
	raw, err := p.collect(p.dropTokens(tokens))
	if err != nil {
		return nil, err
	}

	result := &Result{values: make(map[string]any)}
	for name, values := range raw {
		arg := p.args[name]
		converted, err := arg.convert(values)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"argument": name,
				"values":   values,
				"help":     arg.help(),
			}).WithError(err).Error("failed to parse argument")
			continue
		}
		result.values[name] = converted
	}

	p.applyDefaults(result)
	if err := p.checkMandatory(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Parser) dropTokens(tokens []string) []string {
	if len(p.drop) == 0 {
		return tokens
	}
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, drop := p.drop[t]; !drop {
			kept = append(kept, t)
		}
	}
	return kept
}

// collect walks the token stream, grouping values under the argument names
// that precede them.
func (p *Parser) collect(tokens []string) (map[string][]string, error) {
	raw := make(map[string][]string)
	offset := 0
	for offset < len(tokens) {
		token := tokens[offset]
		if !p.isArg(token) {
			p.log.WithField("token", token).Warn("unknown token")
			offset++
			continue
		}

		arg := p.args[token]
		offset++

		values := []string{}
		for offset < len(tokens) && len(values) < arg.MaxValues && !p.isArg(tokens[offset]) {
			values = append(values, tokens[offset])
			offset++
		}
		if len(values) < arg.MinValues {
			return nil, fmt.Errorf("%w: argument %s requires at least %d values",
				ErrMissingValues, arg.Name, arg.MinValues)
		}

		if _, exists := raw[token]; exists {
			p.log.WithFields(logrus.Fields{
				"argument": token,
				"values":   values,
			}).Warn("argument already set, skipping value")
			continue
		}
		raw[token] = values
	}
	return raw, nil
}

func (p *Parser) applyDefaults(result *Result) {
	for _, name := range p.defaults {
		if _, set := result.values[name]; !set {
			result.values[name] = p.args[name].Default
		}
	}
}

func (p *Parser) checkMandatory(result *Result) error {
	var missing []string
	for _, name := range p.mandatory {
		if _, set := result.values[name]; !set {
			missing = append(missing, fmt.Sprintf("%s - %s", name, p.args[name].help()))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingArgument, strings.Join(missing, "; "))
	}
	return nil
}

// Usage renders a help string listing every declared argument.
func (p *Parser) Usage() string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	for _, name := range p.order {
		fmt.Fprintf(&b, " %s\n", p.args[name].help())
	}
	return b.String()
}
