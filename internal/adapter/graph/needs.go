package graph

import (
	"context"

	"needsstep/internal/app"
	"needsstep/internal/domain"

	"github.com/graphql-go/graphql"
)

func (b *builder) needs(s *app.NeedService) {
	needQuestionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NeedQuestion",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"stage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"subStage":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})
	b.tracking(s.Tracker, needQuestionType)

	questions := graphql.Fields{
		"needQuestions": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(needQuestionType))},
	}

	b.addMutation(operation{
		name: "createNeedQuestion",
		role: Admin,
		input: graphql.InputObjectConfigFieldMap{
			"stage":    required(graphql.Int),
			"subStage": required(graphql.Int),
			"content":  required(graphql.String),
		},
		payload: graphql.Fields{"needQuestionId": &graphql.Field{Type: graphql.Int}},
		resolve: func(ctx context.Context, u *domain.User, in args) (map[string]any, error) {
			id, err := s.CreateQuestion(ctx, u, in.integer("stage"), in.integer("subStage"), in.str("content"))
			if err != nil {
				return nil, err
			}
			return map[string]any{"needQuestionId": id}, nil
		},
	})

	b.addQuery(operation{
		name:    "allNeedQuestions",
		payload: questions,
		resolve: func(ctx context.Context, _ *domain.User, _ args) (map[string]any, error) {
			qs, err := s.AllQuestions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"needQuestions": questionRefs(qs)}, nil
		},
	})

	b.addQuery(operation{
		name:    "findNeedQuestionsByStage",
		input:   graphql.InputObjectConfigFieldMap{"stage": required(graphql.Int)},
		payload: questions,
		resolve: func(ctx context.Context, _ *domain.User, in args) (map[string]any, error) {
			qs, err := s.QuestionsByStage(ctx, in.integer("stage"))
			if err != nil {
				return nil, err
			}
			return map[string]any{"needQuestions": questionRefs(qs)}, nil
		},
	})

	b.addMutation(operation{
		name: "editNeedQuestion",
		role: Admin,
		input: graphql.InputObjectConfigFieldMap{
			"needQuestionId": required(graphql.Int),
			"stage":          optional(graphql.Int),
			"subStage":       optional(graphql.Int),
			"content":        optional(graphql.String),
		},
		resolve: func(ctx context.Context, _ *domain.User, in args) (map[string]any, error) {
			return nil, s.EditQuestion(ctx, in.id("needQuestionId"), domain.NeedQuestionPatch{
				Stage:    in.optInt("stage"),
				SubStage: in.optInt("subStage"),
				Content:  in.optStr("content"),
			})
		},
	})

	b.addMutation(operation{
		name:  "deleteNeedQuestion",
		role:  Admin,
		input: graphql.InputObjectConfigFieldMap{"needQuestionId": required(graphql.Int)},
		resolve: func(ctx context.Context, _ *domain.User, in args) (map[string]any, error) {
			return nil, s.DeleteQuestion(ctx, in.id("needQuestionId"))
		},
	})
}

func questionRefs(qs []domain.NeedQuestion) []*domain.NeedQuestion {
	out := make([]*domain.NeedQuestion, len(qs))
	for i := range qs {
		out[i] = &qs[i]
	}
	return out
}
