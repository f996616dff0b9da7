package main

import (
	"context"
	"fmt"

	"needsstep/internal/app"
	"needsstep/internal/domain"
)

// CreateUserCmd adds a password account.
type CreateUserCmd struct {
	Username string `arg:"" help:"Login name."`
	Password string `help:"Password." env:"NEEDSSTEP_PASSWORD" required:""`
	Admin    bool   `help:"Grant the Admin role."`
}

func (c *CreateUserCmd) Run(rc *runContext) error {
	role := domain.RoleFree
	if c.Admin {
		role = domain.RoleAdmin
	}
	authSvc := app.NewAuthService(rc.Store.Users(), rc.Store.Sessions(), 0)
	u, err := authSvc.CreateUser(context.Background(), c.Username, c.Password, role)
	if err != nil {
		return fmt.Errorf("create user %q: %w", c.Username, err)
	}
	rc.Log.Info("user created", "id", u.ID, "username", u.Username, "role", u.Role)
	return nil
}
