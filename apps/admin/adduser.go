package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = uname
	}

	usr, err := cli.findUser(ctx, uname, email)
	isNew := errors.Is(err, user.ErrNotFound)
	if err != nil && !isNew {
		return err
	}
	if isNew {
		usr = user.User{
			Username: uname,
			Email:    email,
			Roles:    []string{user.RoleStudent},
		}
	}
	var excluded []user.User
	if !isNew {
		excluded = append(excluded, usr)
	}
	if err = cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email, excluded...); err != nil {
		return err
	}

	usr.Name = name
	usr.IsActive = true
	if email != "" {
		usr.Email = email
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	now := time.Now().UTC()
	usr.UpdatedAt = now

	if isNew {
		usr.CreatedAt = now
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}

func (cli *commandLine) findUser(ctx context.Context, keys ...string) (user.User, error) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: key})
		if err == nil || !errors.Is(err, user.ErrNotFound) {
			return usr, err
		}
	}
	return user.User{}, user.ErrNotFound
}
