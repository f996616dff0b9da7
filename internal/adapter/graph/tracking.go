package graph

import (
	"context"

	"needsstep/internal/app"
	"needsstep/internal/domain"

	"github.com/graphql-go/graphql"
)

// tracking registers the daily-entry and measurement operations of t. item is
// the object type of t's catalog.
func (b *builder) tracking(t *app.Tracker, item *graphql.Object) {
	k := t.Kind()
	var (
		entryID   = camel(k.Entry) + "Id"
		itemID    = camel(k.Item) + "Id"
		measureID = camel(k.Measure) + "Id"
		measure   = camel(k.Measure)
		measures  = measure + "s"
	)

	measureType := graphql.NewObject(graphql.ObjectConfig{
		Name: pascal(k.Measure),
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			k.Value: &graphql.Field{
				Type: graphql.NewNonNull(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return sourceMeasurement(p).Value, nil
				},
			},
			entryID: &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return sourceMeasurement(p).EntryID, nil
				},
			},
			camel(k.Item): &graphql.Field{
				Type: item,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					it, err := t.Item(p.Context, sourceMeasurement(p))
					if err != nil || it == nil {
						return nil, err
					}
					return it, nil
				},
			},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	entryType := graphql.NewObject(graphql.ObjectConfig{
		Name: pascal(k.Entry),
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"date":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
			measures: &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(measureType)),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					e, _ := p.Source.(*domain.Entry)
					if e == nil {
						return nil, nil
					}
					ms, err := t.MeasurementsOf(p.Context, e)
					if err != nil {
						return nil, err
					}
					return measurementRefs(ms), nil
				},
			},
		},
	})

	b.addQuery(operation{
		name:    "find" + pascal(k.Entry) + "ByDate",
		input:   graphql.InputObjectConfigFieldMap{"date": required(graphql.String)},
		payload: graphql.Fields{camel(k.Entry): &graphql.Field{Type: entryType}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			e, err := t.FindByDate(ctx, u.ID, in.str("date"))
			if err != nil {
				return nil, err
			}
			return map[string]any{camel(k.Entry): e}, nil
		},
	})

	b.addQuery(operation{
		name:    "my" + pascal(k.Entry),
		payload: graphql.Fields{camel(k.Entry) + "s": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(entryType))}},
		resolve: func(ctx context.Context, u *domain.User, _ args) (map[string]any, error) {
			es, err := t.Mine(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			return map[string]any{camel(k.Entry) + "s": entryRefs(es)}, nil
		},
	})

	b.addMutation(operation{
		name: "delete" + pascal(k.Entry),
		input: graphql.InputObjectConfigFieldMap{
			"date":  optional(graphql.String),
			entryID: optional(graphql.Int),
		},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			return nil, t.DeleteEntry(ctx, u.ID, in.str("date"), in.id(entryID))
		},
	})

	b.addMutation(operation{
		name: "create" + pascal(k.Measure),
		input: graphql.InputObjectConfigFieldMap{
			"date":  required(graphql.String),
			itemID:  required(graphql.Int),
			k.Value: required(graphql.Float),
		},
		payload: graphql.Fields{measureID: &graphql.Field{Type: graphql.Int}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			id, err := t.Record(ctx, u.ID, in.str("date"), in.id(itemID), in.number(k.Value))
			if err != nil {
				return nil, err
			}
			return map[string]any{measureID: id}, nil
		},
	})

	b.addQuery(operation{
		name:    "find" + pascal(k.Measure),
		input:   graphql.InputObjectConfigFieldMap{measureID: required(graphql.Int)},
		payload: graphql.Fields{measure: &graphql.Field{Type: measureType}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			m, err := t.Measurement(ctx, u.ID, in.id(measureID))
			if err != nil {
				return nil, err
			}
			return map[string]any{measure: m}, nil
		},
	})

	b.addQuery(operation{
		name:    "find" + pascal(k.Measure) + "sBy" + pascal(k.Entry),
		input:   graphql.InputObjectConfigFieldMap{"date": required(graphql.String)},
		payload: graphql.Fields{measures: &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(measureType))}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			ms, err := t.MeasurementsByDate(ctx, u.ID, in.str("date"))
			if err != nil {
				return nil, err
			}
			return map[string]any{measures: measurementRefs(ms)}, nil
		},
	})

	b.addMutation(operation{
		name: "edit" + pascal(k.Measure),
		input: graphql.InputObjectConfigFieldMap{
			measureID: required(graphql.Int),
			k.Value:   required(graphql.Float),
		},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			return nil, t.EditMeasurement(ctx, u.ID, in.id(measureID), in.number(k.Value))
		},
	})

	b.addMutation(operation{
		name:  "delete" + pascal(k.Measure),
		input: graphql.InputObjectConfigFieldMap{measureID: required(graphql.Int)},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			return nil, t.DeleteMeasurement(ctx, u.ID, in.id(measureID))
		},
	})
}

func sourceMeasurement(p graphql.ResolveParams) *domain.Measurement {
	if m, ok := p.Source.(*domain.Measurement); ok && m != nil {
		return m
	}
	return &domain.Measurement{}
}

// entryRefs and measurementRefs hand resolvers pointers, so nested field
// resolvers see one source type.
func entryRefs(es []domain.Entry) []*domain.Entry {
	out := make([]*domain.Entry, len(es))
	for i := range es {
		out[i] = &es[i]
	}
	return out
}

func measurementRefs(ms []domain.Measurement) []*domain.Measurement {
	out := make([]*domain.Measurement, len(ms))
	for i := range ms {
		out[i] = &ms[i]
	}
	return out
}
