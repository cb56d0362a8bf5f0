// Package confload resolves indirections in configuration structures and
// validates the result against registered schema stubs.
//
// Values anywhere in a nested structure may point elsewhere instead of
// carrying data:
//
//   - "env://NAME" is replaced by the environment variable NAME
//   - "file://path" is replaced by the contents of the file
//   - "json://path" is replaced by the file parsed as JSON
//   - "yaml://path" is replaced by the file parsed as YAML
//
// Loaded values are resolved recursively, so a file may itself contain
// further indirections.
//
// Validation is stub-based: each stub pairs a gjson path into the resolved
// configuration with a JSON-Schema document. Validate extracts the
// sub-document at each path and checks it against the compiled schema.
//
//	loader := confload.New()
//	loader.RegisterStub("db", "database", map[string]any{
//	    "type":     "object",
//	    "required": []any{"host"},
//	})
//
//	values, err := loader.Load([]byte(yamlText))
//	if err == nil {
//	    err = loader.Validate(values)
//	}
//
// Watch reloads a configuration file on change, keeping the last good value
// when a reload fails.
package confload
