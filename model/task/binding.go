package task

// Binding carries the resource assignment handed to the executor at launch
// time: Values fill command placeholders, Env extends the child environment.
type Binding struct {
	Kind   string
	Unit   string
	Values map[string]string
	Env    map[string]string
}

// Environ returns Env as KEY=VALUE pairs
func (b *Binding) Environ() []string {
	if b == nil || len(b.Env) == 0 {
		return nil
	}
	result := make([]string, 0, len(b.Env))
	for k, v := range b.Env {
		result = append(result, k+"="+v)
	}
	return result
}

// Lookup returns a placeholder value
func (b *Binding) Lookup(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	value, ok := b.Values[name]
	return value, ok
}
