package dao

// Parameter narrows a List call, e.g. State=finished
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter; more than one value matches any of them
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
