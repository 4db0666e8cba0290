package render

import "fmt"

// UndefinedVariableError is returned when a template references a variable
// that is not present in the data.
type UndefinedVariableError struct {
	Name string
	Err  error
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("template references undefined variable %q", e.Name)
}

func (e *UndefinedVariableError) Unwrap() error {
	return e.Err
}

// TemplateError is returned for template syntax and execution errors other
// than undefined variables.
type TemplateError struct {
	Err error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("failed to render template: %v", e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
