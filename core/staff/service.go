package staff

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kozi/core"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account deactivated")

	errEmailExists      = "email already exists"
	errEmployeeIDExists = "employee ID already exists"
)

type (
	Repository interface {
		CreateManager(ctx context.Context, m Manager) (Manager, error)
		GetManagerByID(ctx context.Context, id int) (Manager, error)
		GetManagerByEmail(ctx context.Context, email string) (Manager, error)
		// FilterManagers applies AND on the filter fields and returns the page
		// of rows plus the unpaginated count.
		FilterManagers(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Manager, int64, error)
		UpdateManager(ctx context.Context, m Manager) (Manager, error)
		DeleteManager(ctx context.Context, id int) error

		CreateFacilitator(ctx context.Context, f Facilitator) (Facilitator, error)
		GetFacilitatorByID(ctx context.Context, id int) (Facilitator, error)
		GetFacilitatorByEmail(ctx context.Context, email string) (Facilitator, error)
		GetFacilitatorByEmployeeID(ctx context.Context, employeeID string) (Facilitator, error)
		FilterFacilitators(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Facilitator, int64, error)
		UpdateFacilitator(ctx context.Context, f Facilitator) (Facilitator, error)
		DeleteFacilitator(ctx context.Context, id int) error
	}

	// AssignmentCounter reports how many active course offerings are assigned
	// to a facilitator; deletion is blocked while any exist.
	AssignmentCounter interface {
		CountActiveAssignments(ctx context.Context, facilitatorID int) (int64, error)
	}

	Service struct {
		repo        Repository
		assignments AssignmentCounter
		mailSvc     core.EmailService
		conf        *core.Config
	}
)

func NewService(conf *core.Config, repo Repository, assignments AssignmentCounter, mailSvc core.EmailService) *Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{
		repo:        repo,
		assignments: assignments,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

// Authenticate resolves an email+password pair to a role-tagged account.
// Managers are looked up first, then facilitators.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acct, err := svc.getAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err = acct.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acct.IsActive() {
		return Account{}, ErrAccountDeactivated
	}
	return acct, nil
}

// GetAccount re-fetches the caller's account; used on every authed request so
// deactivated accounts lose access immediately.
func (svc *Service) GetAccount(ctx context.Context, caller core.Caller) (Account, error) {
	switch caller.Role {
	case core.RoleManager:
		m, err := svc.repo.GetManagerByID(ctx, caller.ID)
		if err != nil {
			return Account{}, err
		}
		return Account{Role: core.RoleManager, Manager: &m}, nil
	case core.RoleFacilitator:
		f, err := svc.repo.GetFacilitatorByID(ctx, caller.ID)
		if err != nil {
			return Account{}, err
		}
		return Account{Role: core.RoleFacilitator, Facilitator: &f}, nil
	}
	return Account{}, core.ErrNotFound
}

func (svc *Service) getAccountByEmail(ctx context.Context, email string) (Account, error) {
	if m, err := svc.repo.GetManagerByEmail(ctx, email); err == nil {
		return Account{Role: core.RoleManager, Manager: &m}, nil
	} else if errors.Cause(err) != core.ErrNotFound {
		return Account{}, err
	}
	f, err := svc.repo.GetFacilitatorByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	return Account{Role: core.RoleFacilitator, Facilitator: &f}, nil
}

// checkEmailUniqueness rejects an email already used by any manager or
// facilitator, excluding the given account itself.
func (svc *Service) checkEmailUniqueness(ctx context.Context, email string, excl ...Account) error {
	if _, err := svc.getAccountByEmail(ctx, email); err == nil {
		for _, acct := range excl {
			if acct.Email() == email {
				return nil
			}
		}
		return core.NewConflictError(errEmailExists)
	} else if errors.Cause(err) != core.ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) CreateManager(ctx context.Context, nm NewManager) (Manager, error) {
	if err := svc.checkEmailUniqueness(ctx, nm.Email); err != nil {
		return Manager{}, err
	}

	now := time.Now().UTC()
	mgr := Manager{
		FirstName: nm.FirstName,
		LastName:  nm.LastName,
		Email:     nm.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := mgr.SetPassword(nm.Password); err != nil {
		return Manager{}, err
	}
	mgr, err := svc.repo.CreateManager(ctx, mgr)
	if err != nil {
		return Manager{}, err
	}
	svc.sendWelcomeMail(mgr.FullName(), mgr.Email)
	return mgr, nil
}

func (svc *Service) CreateFacilitator(ctx context.Context, nf NewFacilitator) (Facilitator, error) {
	if err := svc.checkEmailUniqueness(ctx, nf.Email); err != nil {
		return Facilitator{}, err
	}
	if _, err := svc.repo.GetFacilitatorByEmployeeID(ctx, nf.EmployeeID); err == nil {
		return Facilitator{}, core.NewConflictError(errEmployeeIDExists)
	} else if errors.Cause(err) != core.ErrNotFound {
		return Facilitator{}, err
	}

	now := time.Now().UTC()
	fac := Facilitator{
		FirstName:  nf.FirstName,
		LastName:   nf.LastName,
		Email:      nf.Email,
		EmployeeID: nf.EmployeeID,
		Department: nf.Department,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := fac.SetPassword(nf.Password); err != nil {
		return Facilitator{}, err
	}
	fac, err := svc.repo.CreateFacilitator(ctx, fac)
	if err != nil {
		return Facilitator{}, err
	}
	svc.sendWelcomeMail(fac.FullName(), fac.Email)
	return fac, nil
}

func (svc *Service) QueryManagers(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Manager, int64, error) {
	return svc.repo.FilterManagers(ctx, filter, p, ord...)
}

func (svc *Service) GetManager(ctx context.Context, id int) (Manager, error) {
	return svc.repo.GetManagerByID(ctx, id)
}

func (svc *Service) UpdateManager(ctx context.Context, id int, um UpdateManager) (Manager, error) {
	mgr, err := svc.repo.GetManagerByID(ctx, id)
	if err != nil {
		return Manager{}, err
	}

	if um.Email != nil && *um.Email != mgr.Email {
		if err = svc.checkEmailUniqueness(ctx, *um.Email); err != nil {
			return Manager{}, err
		}
		mgr.Email = *um.Email
	}
	if um.FirstName != nil {
		mgr.FirstName = *um.FirstName
	}
	if um.LastName != nil {
		mgr.LastName = *um.LastName
	}
	if um.IsActive != nil {
		mgr.IsActive = *um.IsActive
	}
	if um.Password != nil {
		if err = mgr.SetPassword(*um.Password); err != nil {
			return Manager{}, err
		}
	}
	mgr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateManager(ctx, mgr)
}

// DeleteManager removes a manager account; callers can never delete their own.
func (svc *Service) DeleteManager(ctx context.Context, id int, caller core.Caller) error {
	if caller.IsManager() && caller.ID == id {
		return core.NewReferentialError("cannot delete your own account")
	}
	if _, err := svc.repo.GetManagerByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteManager(ctx, id)
}

func (svc *Service) QueryFacilitators(ctx context.Context, filter core.Filter, p core.Pagination, ord ...core.DBOrdering) ([]Facilitator, int64, error) {
	return svc.repo.FilterFacilitators(ctx, filter, p, ord...)
}

func (svc *Service) GetFacilitator(ctx context.Context, id int) (Facilitator, error) {
	return svc.repo.GetFacilitatorByID(ctx, id)
}

func (svc *Service) UpdateFacilitator(ctx context.Context, id int, uf UpdateFacilitator) (Facilitator, error) {
	fac, err := svc.repo.GetFacilitatorByID(ctx, id)
	if err != nil {
		return Facilitator{}, err
	}

	if uf.Email != nil && *uf.Email != fac.Email {
		if err = svc.checkEmailUniqueness(ctx, *uf.Email); err != nil {
			return Facilitator{}, err
		}
		fac.Email = *uf.Email
	}
	if uf.EmployeeID != nil && *uf.EmployeeID != fac.EmployeeID {
		if _, err = svc.repo.GetFacilitatorByEmployeeID(ctx, *uf.EmployeeID); err == nil {
			return Facilitator{}, core.NewConflictError(errEmployeeIDExists)
		} else if errors.Cause(err) != core.ErrNotFound {
			return Facilitator{}, err
		}
		fac.EmployeeID = *uf.EmployeeID
	}
	if uf.FirstName != nil {
		fac.FirstName = *uf.FirstName
	}
	if uf.LastName != nil {
		fac.LastName = *uf.LastName
	}
	if uf.Department != nil {
		fac.Department = *uf.Department
	}
	if uf.IsActive != nil {
		fac.IsActive = *uf.IsActive
	}
	if uf.Password != nil {
		if err = fac.SetPassword(*uf.Password); err != nil {
			return Facilitator{}, err
		}
	}
	fac.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateFacilitator(ctx, fac)
}

// DeleteFacilitator removes a facilitator unless active course offerings are
// still assigned to them.
func (svc *Service) DeleteFacilitator(ctx context.Context, id int) error {
	if _, err := svc.repo.GetFacilitatorByID(ctx, id); err != nil {
		return err
	}
	count, err := svc.assignments.CountActiveAssignments(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting active assignments")
	}
	if count > 0 {
		return core.NewReferentialError("cannot delete facilitator with active course assignments")
	}
	return svc.repo.DeleteFacilitator(ctx, id)
}

// CountActiveAssignments reports how many active course offerings the
// facilitator is assigned to.
func (svc *Service) CountActiveAssignments(ctx context.Context, facilitatorID int) (int64, error) {
	return svc.assignments.CountActiveAssignments(ctx, facilitatorID)
}

// RequestPasswordReset emails a timed reset link to the account behind email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := svc.getAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(acct)
	return nil
}

// ResetPassword sets a new password from a (uid, token) pair.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetAccountPassword) error {
	role, id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(err)
	}
	acct, err := svc.GetAccount(ctx, core.Caller{ID: id, Role: role})
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(acct, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	now := time.Now().UTC()
	switch {
	case acct.Manager != nil:
		if err = acct.Manager.SetPassword(rp.Password); err != nil {
			return err
		}
		acct.Manager.UpdatedAt = now
		_, err = svc.repo.UpdateManager(ctx, *acct.Manager)
	case acct.Facilitator != nil:
		if err = acct.Facilitator.SetPassword(rp.Password); err != nil {
			return err
		}
		acct.Facilitator.UpdatedAt = now
		_, err = svc.repo.UpdateFacilitator(ctx, *acct.Facilitator)
	}
	return err
}

func (svc *Service) sendWelcomeMail(name, email string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: email}},
		Subject: "Welcome to " + svc.conf.AppName,
		BodyStr: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour %s account has been created. Sign in at %s with your email address.\r\n",
			name, svc.conf.AppName, svc.conf.FrontendBaseURL,
		),
	})
}

func (svc *Service) sendPasswordResetMail(acct Account) {
	var name string
	if acct.Manager != nil {
		name = acct.Manager.FullName()
	} else {
		name = acct.Facilitator.FullName()
	}
	link := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(acct), makeToken(acct))
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: acct.Email()}},
		Subject: "Password reset",
		BodyStr: fmt.Sprintf(
			"Hi %s,\r\n\r\nFollow this link to reset your password:\r\n%s\r\n\r\n"+
				"If you did not request a reset, you can ignore this email.\r\n",
			name, link,
		),
	})
}
