package tokenargs

import (
	"fmt"
	"strconv"
)

// Type is the value type an argument converts its tokens to.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Argument declares one named argument.
//
// MinValues and MaxValues default to 1. Boolean arguments take no values:
// their presence means true, they are always optional and cannot carry a
// default.
type Argument struct {
	Name      string
	Required  bool
	Default   any
	Type      Type
	Help      string
	MinValues int
	MaxValues int
	Boolean   bool

	// Validate, when set, inspects the raw values before conversion.
	Validate func(values []string) error
}

// normalize applies defaults and checks the declaration for consistency.
func (a *Argument) normalize() error {
	if a.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}

	if a.Type == TypeBool {
		a.Boolean = true
	}
	if a.Boolean {
		if a.Default != nil {
			return fmt.Errorf("%w: boolean argument %q cannot have a default", ErrInvalidArgument, a.Name)
		}
		if a.Required {
			return fmt.Errorf("%w: boolean argument %q cannot be mandatory", ErrInvalidArgument, a.Name)
		}
		a.Type = TypeBool
		a.MinValues = 0
		a.MaxValues = 0
		return nil
	}

	if a.MinValues == 0 {
		a.MinValues = 1
	}
	if a.MaxValues == 0 {
		a.MaxValues = 1
	}
	if a.MinValues > a.MaxValues {
		return fmt.Errorf("%w: %q wants at least %d but at most %d values",
			ErrInvalidArgument, a.Name, a.MinValues, a.MaxValues)
	}

	if a.Default != nil {
		// Untyped arguments inherit the type of their default.
		if a.Type == TypeString {
			switch a.Default.(type) {
			case string:
			case int:
				a.Type = TypeInt
			case float64:
				a.Type = TypeFloat
			default:
				return fmt.Errorf("%w: %q default %T is not a supported type",
					ErrInvalidArgument, a.Name, a.Default)
			}
		}
		if err := a.checkDefaultType(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Argument) checkDefaultType() error {
	ok := false
	switch a.Type {
	case TypeString:
		_, ok = a.Default.(string)
	case TypeInt:
		_, ok = a.Default.(int)
	case TypeFloat:
		_, ok = a.Default.(float64)
	}
	if !ok {
		return fmt.Errorf("%w: %q default %T does not match declared type %s",
			ErrInvalidArgument, a.Name, a.Default, a.Type)
	}
	return nil
}

// convert turns collected raw values into the argument's typed value: the
// single converted value for MaxValues == 1, a typed slice otherwise.
func (a *Argument) convert(values []string) (any, error) {
	if a.Boolean {
		return true, nil
	}

	if a.Validate != nil {
		if err := a.Validate(values); err != nil {
			return nil, fmt.Errorf("validation failed for %v: %w", values, err)
		}
	}
	if len(values) < a.MinValues {
		return nil, fmt.Errorf("too few values for %s, expected at least %d got %d",
			a.Name, a.MinValues, len(values))
	}
	if len(values) > a.MaxValues {
		return nil, fmt.Errorf("too many values for %s, expected at most %d got %d",
			a.Name, a.MaxValues, len(values))
	}

	if a.MaxValues == 1 {
		return a.convertOne(values[0])
	}

	switch a.Type {
	case TypeInt:
		out := make([]int, 0, len(values))
		for _, v := range values {
			c, err := a.convertOne(v)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(int))
		}
		return out, nil
	case TypeFloat:
		out := make([]float64, 0, len(values))
		for _, v := range values {
			c, err := a.convertOne(v)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(float64))
		}
		return out, nil
	default:
		out := make([]string, len(values))
		copy(out, values)
		return out, nil
	}
}

func (a *Argument) convertOne(value string) (any, error) {
	switch a.Type {
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not an int", value)
		}
		return n, nil
	case TypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a float", value)
		}
		return f, nil
	default:
		return value, nil
	}
}

// help renders a one-line usage description.
func (a *Argument) help() string {
	s := a.Name
	if !a.Required {
		s = "[" + s + "]"
	}
	s = fmt.Sprintf("%s{%s}", s, a.Type)
	if a.Help != "" {
		s = fmt.Sprintf("%s: %s", s, a.Help)
	}
	if a.MaxValues > 0 {
		s = fmt.Sprintf("%s [params(%d,%d)]", s, a.MinValues, a.MaxValues)
	}
	if a.Default != nil {
		s = fmt.Sprintf("%s (default: %v)", s, a.Default)
	}
	return s
}
