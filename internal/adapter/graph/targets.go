package graph

import (
	"context"

	"needsstep/internal/app"
	"needsstep/internal/domain"

	"github.com/graphql-go/graphql"
)

func (b *builder) targets(s *app.TargetService) {
	targetNameType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TargetName",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"positive":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	b.tracking(s.Tracker, targetNameType)

	b.addMutation(operation{
		name: "createTargetName",
		input: graphql.InputObjectConfigFieldMap{
			"content":  required(graphql.String),
			"positive": required(graphql.Boolean),
		},
		payload: graphql.Fields{"targetNameId": &graphql.Field{Type: graphql.Int}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			id, err := s.CreateName(ctx, u.ID, in.str("content"), in.boolean("positive"))
			if err != nil {
				return nil, err
			}
			return map[string]any{"targetNameId": id}, nil
		},
	})

	b.addQuery(operation{
		name:    "myTargetNames",
		payload: graphql.Fields{"targetNames": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(targetNameType))}},
		resolve: func(ctx context.Context, u *domain.User, _ args) (map[string]any, error) {
			ns, err := s.MyNames(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			out := make([]*domain.TargetName, len(ns))
			for i := range ns {
				out[i] = &ns[i]
			}
			return map[string]any{"targetNames": out}, nil
		},
	})

	b.addMutation(operation{
		name: "editTargetName",
		input: graphql.InputObjectConfigFieldMap{
			"targetNameId": required(graphql.Int),
			"content":      optional(graphql.String),
			"positive":     optional(graphql.Boolean),
		},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			return nil, s.EditName(ctx, u.ID, in.id("targetNameId"), domain.TargetNamePatch{
				Content:  in.optStr("content"),
				Positive: in.optBool("positive"),
			})
		},
	})

	b.addMutation(operation{
		name:  "deleteTargetName",
		input: graphql.InputObjectConfigFieldMap{"targetNameId": required(graphql.Int)},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			return nil, s.DeleteName(ctx, u.ID, in.id("targetNameId"))
		},
	})
}

func (b *builder) me() {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"role": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					u, _ := p.Source.(*domain.User)
					if u == nil {
						return nil, nil
					}
					return string(u.Role), nil
				},
			},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	b.addQuery(operation{
		name:    "me",
		payload: graphql.Fields{"user": &graphql.Field{Type: userType}},
		resolve: func(_ context.Context, u *domain.User, _ args) (map[string]any, error) {
			return map[string]any{"user": u}, nil
		},
	})
}
