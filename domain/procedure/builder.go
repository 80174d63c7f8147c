package procedure

// Builder registers procedures under dotted namespaces and flattens them
// into a Table once at startup. The deeply nested procedure tree exists
// only during registration; matching always runs against the flat table.
type Builder struct {
	reg    *registry
	prefix string
}

type registry struct {
	procs []Procedure
}

// NewBuilder creates an empty procedure builder.
func NewBuilder() *Builder {
	return &Builder{reg: &registry{}}
}

// Namespace returns a builder whose registrations are prefixed with the
// given name. Namespaces nest: b.Namespace("a").Namespace("b") yields
// procedures named "a.b.<name>".
func (b *Builder) Namespace(name string) *Builder {
	return &Builder{reg: b.reg, prefix: b.qualify(name)}
}

// Query registers a query procedure. The method defaults to GET.
func (b *Builder) Query(name string, p Procedure) *Builder {
	p.Name = b.qualify(name)
	p.Kind = KindQuery
	b.reg.procs = append(b.reg.procs, p)
	return b
}

// Mutation registers a mutation procedure. The method defaults to POST.
func (b *Builder) Mutation(name string, p Procedure) *Builder {
	p.Name = b.qualify(name)
	p.Kind = KindMutation
	b.reg.procs = append(b.reg.procs, p)
	return b
}

// Add registers a fully specified procedure without renaming it.
func (b *Builder) Add(p Procedure) *Builder {
	if b.prefix != "" {
		p.Name = b.prefix + "." + p.Name
	}
	b.reg.procs = append(b.reg.procs, p)
	return b
}

// Build validates and flattens all registered procedures into a Table.
func (b *Builder) Build() (*Table, error) {
	return NewTable(b.reg.procs)
}

func (b *Builder) qualify(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}
