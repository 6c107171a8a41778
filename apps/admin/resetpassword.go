package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

// resetPassword sets a new password on the manager or facilitator account
// registered under the email.
func (cli *commandLine) resetPassword(email, pwd string) error {
	repo, err := cli.getRepo()
	if err != nil {
		return err
	}

	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	if mgr, err := repo.GetManagerByEmail(ctx, email); err == nil {
		if err = mgr.SetPassword(pwd); err != nil {
			return err
		}
		mgr.UpdatedAt = now
		_, err = repo.UpdateManager(ctx, mgr)
		return err
	} else if errors.Cause(err) != core.ErrNotFound {
		return err
	}

	fac, err := repo.GetFacilitatorByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = fac.SetPassword(pwd); err != nil {
		return err
	}
	fac.UpdatedAt = now
	_, err = repo.UpdateFacilitator(ctx, fac)
	return err
}
