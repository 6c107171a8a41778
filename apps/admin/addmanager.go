package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

// addManager updates or creates an active manager account.
func (cli *commandLine) addManager(email, first, last, pwd string) error {
	repo, err := cli.getRepo()
	if err != nil {
		return err
	}

	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	mgr, err := repo.GetManagerByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return err
		}
		mgr.Email = email
		mgr.CreatedAt = now
	}
	mgr.FirstName = core.CleanString(first)
	mgr.LastName = core.CleanString(last)
	mgr.IsActive = true
	mgr.UpdatedAt = now
	if err = mgr.SetPassword(pwd); err != nil {
		return err
	}

	if mgr.ID == 0 {
		_, err = repo.CreateManager(ctx, mgr)
	} else {
		_, err = repo.UpdateManager(ctx, mgr)
	}
	return err
}
