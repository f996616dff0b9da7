// Package graph exposes the application services as a GraphQL schema. Every
// operation takes a single "input" argument and answers with an
// { ok, error, <payload> } object; role checks run before the resolver and
// fail the field with a GraphQL error instead.
package graph

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode"

	"needsstep/internal/app"
	"needsstep/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/graphql-go/graphql"
)

// ErrForbiddenResource is returned for operations the caller's role may not run.
var ErrForbiddenResource = errors.New("Forbidden resource")

// Role is the minimum capability an operation requires.
type Role int

const (
	// Any admits every authenticated user.
	Any Role = iota
	// Admin admits users holding domain.RoleAdmin.
	Admin
)

func (r Role) allows(u *domain.User) bool {
	if u == nil {
		return false
	}
	return r == Any || u.IsAdmin()
}

// Request is the standard GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// Schema is an executable GraphQL schema bound to the services.
type Schema struct {
	schema graphql.Schema
}

// Option configures New.
type Option func(*builder)

// WithLogger sets the logger used for role denials.
func WithLogger(l *log.Logger) Option {
	return func(b *builder) { b.log = l }
}

// WithObserver registers fn to be called after every operation with its
// name and whether it answered ok.
func WithObserver(fn func(op string, ok bool)) Option {
	return func(b *builder) { b.observe = fn }
}

// New builds the schema for the need and target services.
func New(needs *app.NeedService, targets *app.TargetService, opts ...Option) (*Schema, error) {
	b := &builder{
		log:      log.New(io.Discard),
		observe:  func(string, bool) {},
		query:    graphql.Fields{},
		mutation: graphql.Fields{},
	}
	for _, opt := range opts {
		opt(b)
	}

	b.me()
	b.needs(needs)
	b.targets(targets)

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: b.query}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: b.mutation}),
	})
	if err != nil {
		return nil, err
	}
	return &Schema{schema: s}, nil
}

// Do executes req with ctx, which carries the caller (see app.WithUser).
func (s *Schema) Do(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

type builder struct {
	log      *log.Logger
	observe  func(op string, ok bool)
	query    graphql.Fields
	mutation graphql.Fields
}

// resolveFn is the body of an operation. A returned error is reported as
// { ok:false, error } rather than as a GraphQL error.
type resolveFn func(ctx context.Context, u *domain.User, in args) (map[string]any, error)

type operation struct {
	name    string
	role    Role
	input   graphql.InputObjectConfigFieldMap
	payload graphql.Fields
	resolve resolveFn
}

func (b *builder) addQuery(op operation)    { b.query[op.name] = b.field(op) }
func (b *builder) addMutation(op operation) { b.mutation[op.name] = b.field(op) }

func (b *builder) field(op operation) *graphql.Field {
	fields := graphql.Fields{
		"ok":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"error": &graphql.Field{Type: graphql.String},
	}
	for name, f := range op.payload {
		fields[name] = f
	}
	f := &graphql.Field{
		Type: graphql.NewObject(graphql.ObjectConfig{
			Name:   pascal(op.name) + "Output",
			Fields: fields,
		}),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			u := app.UserFromContext(p.Context)
			if !op.role.allows(u) {
				b.log.Debug("operation denied", "op", op.name)
				return nil, ErrForbiddenResource
			}
			in, _ := p.Args["input"].(map[string]any)
			out, err := op.resolve(p.Context, u, args(in))
			if err != nil {
				b.observe(op.name, false)
				return map[string]any{"ok": false, "error": app.Message(err)}, nil
			}
			b.observe(op.name, true)
			if out == nil {
				out = map[string]any{}
			}
			out["ok"] = true
			return out, nil
		},
	}
	if op.input != nil {
		f.Args = graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewInputObject(graphql.InputObjectConfig{
					Name:   pascal(op.name) + "Input",
					Fields: op.input,
				})),
			},
		}
	}
	return f
}

// pascal turns "measure need" or "findNeedByDate" into "MeasureNeed" and
// "FindNeedByDate".
func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == ' ' || r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// camel turns "measure need" into "measureNeed".
func camel(s string) string {
	p := pascal(s)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}

func required(t graphql.Input) *graphql.InputObjectFieldConfig {
	return &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(t)}
}

func optional(t graphql.Input) *graphql.InputObjectFieldConfig {
	return &graphql.InputObjectFieldConfig{Type: t}
}
