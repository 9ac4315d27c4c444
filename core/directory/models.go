package directory

import (
	"time"

	"github.com/mwalimu/darasa/core"
)

// Person is the database chapter's demo row: id, name, email, role,
// created_at, and a uniqueness requirement on email enforced by the engine.
type Person struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

type NewPerson struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

func (np *NewPerson) Clean() {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	if np.Role == "" {
		np.Role = "user"
	}
}

type UpdatePerson struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

func (up *UpdatePerson) Clean(orig Person) {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if email := core.CleanString(up.Email, true /* lower */); email != "" {
		up.Email = email
	} else {
		up.Email = orig.Email
	}
	if up.Role == "" {
		up.Role = orig.Role
	}
}
