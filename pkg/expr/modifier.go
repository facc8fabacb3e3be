package expr

// Modifier transforms an expression before it is handed to a builder.
type Modifier interface {
	Modify(e Expression) (Expression, error)
}

// ModifierFunc adapts a function to the Modifier interface.
type ModifierFunc func(e Expression) (Expression, error)

// Modify calls f(e).
func (f ModifierFunc) Modify(e Expression) (Expression, error) { return f(e) }

// Identity returns every expression unchanged.
var Identity Modifier = ModifierFunc(func(e Expression) (Expression, error) { return e, nil })

// Chain applies modifiers left to right. nil entries are skipped.
func Chain(mods ...Modifier) Modifier {
	return ModifierFunc(func(e Expression) (Expression, error) {
		var err error
		for _, m := range mods {
			if m == nil {
				continue
			}
			if e, err = m.Modify(e); err != nil {
				return nil, err
			}
		}
		return e, nil
	})
}

// Rename replaces variable names found in names.
func Rename(names map[string]string) Modifier {
	return ModifierFunc(func(e Expression) (Expression, error) {
		if len(names) == 0 {
			return e, nil
		}
		return Transform(e, func(n Expression) (Expression, error) {
			if v, ok := n.(*Variable); ok {
				if to, ok := names[v.Name]; ok {
					return Var(to), nil
				}
			}
			return n, nil
		})
	})
}

// Normalize rewrites e into its sum-of-products tree. Targets that only take
// AND/OR arrays can use it to surface ExpressionErrors at emission time.
var Normalize Modifier = ModifierFunc(func(e Expression) (Expression, error) {
	s, err := ToSOP(e)
	if err != nil {
		return nil, err
	}
	return s.Expression(), nil
})
