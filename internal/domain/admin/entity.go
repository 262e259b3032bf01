package admin

import "time"

// ProjectID identifies the office an admin works for
type ProjectID string

const (
	ProjectOffice1 ProjectID = "office_1"
	ProjectOffice2 ProjectID = "office_2"
)

// Permissions are the per-admin feature flags
type Permissions struct {
	CanAddCars     bool `json:"canAddCars"`
	CanViewCars    bool `json:"canViewCars"`
	CanManageLeads bool `json:"canManageLeads"`
	CanViewLeads   bool `json:"canViewLeads"`
}

// Admin mirrors the backend admin account
type Admin struct {
	ID            int64        `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name,omitempty"`
	IsSuper       bool         `json:"isSuper"`
	IsLeadManager bool         `json:"isLeadManager,omitempty"`
	ProjectID     ProjectID    `json:"projectId,omitempty"`
	Permissions   *Permissions `json:"permissions,omitempty"`
	WorkingDays   []WorkingDay `json:"workingDays,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	DeletedAt     *time.Time   `json:"deletedAt,omitempty"`
}

// IsActive is false for removed admins
func (a *Admin) IsActive() bool {
	return a.DeletedAt == nil
}

// DisplayName falls back to email when the admin has no name
func (a *Admin) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// Can returns the effective permissions. Super admins can do everything.
func (a *Admin) Can() Permissions {
	if a.IsSuper {
		return Permissions{CanAddCars: true, CanViewCars: true, CanManageLeads: true, CanViewLeads: true}
	}
	if a.Permissions == nil {
		return Permissions{}
	}
	return *a.Permissions
}

// Summary counts admins by state
type Summary struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Removed int `json:"removed"`
	Super   int `json:"super"`
}

// Summarize counts active, removed and super admins. Super admins are counted
// regardless of state.
func Summarize(admins []Admin) Summary {
	s := Summary{Total: len(admins)}
	for i := range admins {
		if admins[i].IsActive() {
			s.Active++
		} else {
			s.Removed++
		}
		if admins[i].IsSuper {
			s.Super++
		}
	}
	return s
}

// CreateRequest is the body of POST /admins/admin
type CreateRequest struct {
	Email       string       `json:"email" validate:"required,email"`
	Password    string       `json:"password" validate:"required,min=6"`
	Name        string       `json:"name,omitempty"`
	IsSuper     bool         `json:"isSuper"`
	ProjectID   ProjectID    `json:"projectId,omitempty" validate:"omitempty,oneof=office_1 office_2"`
	Permissions *Permissions `json:"permissions,omitempty"`
}

// UpdateRequest is the body of PUT /admins/admin/:id. Nil fields are not sent.
type UpdateRequest struct {
	Email         *string      `json:"email,omitempty" validate:"omitempty,email"`
	Password      *string      `json:"password,omitempty" validate:"omitempty,min=6"`
	Name          *string      `json:"name,omitempty"`
	IsSuper       *bool        `json:"isSuper,omitempty"`
	IsLeadManager *bool        `json:"isLeadManager,omitempty"`
	ProjectID     *ProjectID   `json:"projectId,omitempty" validate:"omitempty,oneof=office_1 office_2"`
	Permissions   *Permissions `json:"permissions,omitempty"`
	WorkingDays   []WorkingDay `json:"workingDays,omitempty"`
}
