package staff

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kozi/core"
)

// Manager is a back-office administrator with full read/write access.
type Manager struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash []byte    `json:"-" gorm:"not null"`
	IsActive     bool      `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (Manager) TableName() string { return "managers" }

func (m *Manager) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

func (m *Manager) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(pwd))
}

func (m *Manager) FullName() string { return m.FirstName + " " + m.LastName }

// Facilitator teaches course offerings; their visibility is scoped to their
// own assignments and activity logs.
type Facilitator struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	EmployeeID   string    `json:"employeeId" gorm:"size:50;uniqueIndex;not null"`
	Department   string    `json:"department" gorm:"size:100"`
	PasswordHash []byte    `json:"-" gorm:"not null"`
	IsActive     bool      `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (Facilitator) TableName() string { return "facilitators" }

func (f *Facilitator) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	f.PasswordHash = hash
	return nil
}

func (f *Facilitator) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(f.PasswordHash, []byte(pwd))
}

func (f *Facilitator) FullName() string { return f.FirstName + " " + f.LastName }

// Account is a role-tagged login identity: exactly one of Manager or
// Facilitator is set.
type Account struct {
	Role        string
	Manager     *Manager
	Facilitator *Facilitator
}

func (a Account) ID() int {
	if a.Manager != nil {
		return a.Manager.ID
	}
	if a.Facilitator != nil {
		return a.Facilitator.ID
	}
	return 0
}

func (a Account) Email() string {
	if a.Manager != nil {
		return a.Manager.Email
	}
	if a.Facilitator != nil {
		return a.Facilitator.Email
	}
	return ""
}

func (a Account) IsActive() bool {
	if a.Manager != nil {
		return a.Manager.IsActive
	}
	if a.Facilitator != nil {
		return a.Facilitator.IsActive
	}
	return false
}

func (a Account) CheckPassword(pwd string) error {
	if a.Manager != nil {
		return a.Manager.CheckPassword(pwd)
	}
	return a.Facilitator.CheckPassword(pwd)
}

func (a Account) passwordHash() []byte {
	if a.Manager != nil {
		return a.Manager.PasswordHash
	}
	return a.Facilitator.PasswordHash
}

func (a Account) Caller() core.Caller {
	return core.Caller{ID: a.ID(), Email: a.Email(), Role: a.Role}
}

// User returns the JSON-serializable profile behind the account.
func (a Account) User() interface{} {
	if a.Manager != nil {
		return a.Manager
	}
	return a.Facilitator
}

// NewManager contains information needed to register a Manager.
type NewManager struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

func (nm *NewManager) Validate() error {
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	return core.Validate.Struct(nm)
}

// NewFacilitator contains information needed to register a Facilitator.
type NewFacilitator struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	EmployeeID string `json:"employeeId" validate:"required"`
	Department string `json:"department"`
	Password   string `json:"password" validate:"required"`
}

func (nf *NewFacilitator) Validate() error {
	nf.FirstName = core.CleanString(nf.FirstName)
	nf.LastName = core.CleanString(nf.LastName)
	nf.Email = core.CleanString(nf.Email, true /* lower */)
	nf.EmployeeID = core.CleanString(nf.EmployeeID)
	return core.Validate.Struct(nf)
}

// UpdateManager defines what may be modified on an existing Manager.
// Nil fields keep their stored value; a present-but-zero value overwrites.
type UpdateManager struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" validate:"omitempty,email"`
	IsActive  *bool   `json:"isActive"`
	Password  *string `json:"password"`
}

func (um *UpdateManager) Validate() error {
	if um.Email != nil {
		email := core.CleanString(*um.Email, true /* lower */)
		um.Email = &email
	}
	return core.Validate.Struct(um)
}

// UpdateFacilitator defines what may be modified on an existing Facilitator.
type UpdateFacilitator struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email" validate:"omitempty,email"`
	EmployeeID *string `json:"employeeId"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"isActive"`
	Password   *string `json:"password"`
}

func (uf *UpdateFacilitator) Validate() error {
	if uf.Email != nil {
		email := core.CleanString(*uf.Email, true /* lower */)
		uf.Email = &email
	}
	return core.Validate.Struct(uf)
}

// ResetAccountPassword confirms a password reset.
type ResetAccountPassword struct {
	Token    string `json:"token" validate:"required"`
	UID      string `json:"uid" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (rp ResetAccountPassword) Validate() error { return core.Validate.Struct(rp) }
