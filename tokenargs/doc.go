// Package tokenargs is a token-based micro argument parser for free text.
//
// Input is split into word and quoted-phrase tokens. Tokens matching a
// declared argument name start that argument; following tokens become its
// values, up to its maximum, until the next argument name appears. Unknown
// tokens are logged and skipped, which lets arguments be embedded in
// ordinary prose:
//
//	p, _ := tokenargs.NewParser([]tokenargs.Argument{
//	    {Name: "name", Required: true, Help: "name of the person"},
//	    {Name: "age", Type: tokenargs.TypeInt},
//	    {Name: "student", Boolean: true},
//	    {Name: "address", MaxValues: 3},
//	})
//
//	res, err := p.Parse("A person with name John, student, of age 25")
//	res.String("name") // "John"
//	res.Int("age")     // 25
//	res.Bool("student") // true
//
// Parsing fails only for missing mandatory arguments or too few values;
// value conversion errors are logged with the argument's help text and the
// value is dropped, keeping the parser forgiving for end-user input.
package tokenargs
