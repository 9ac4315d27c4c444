package directory

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("person not found")
	ErrEmailExists = errors.New("a person with this email already exists")
)

type (
	Repository interface {
		CreatePerson(ctx context.Context, p Person) (Person, error)
		QueryAllPersons(ctx context.Context) ([]Person, error)
		GetPersonByID(ctx context.Context, id int) (Person, error)
		// SearchPersons does a case-insensitive substring match on Name or Email.
		SearchPersons(ctx context.Context, query string) ([]Person, error)
		UpdatePerson(ctx context.Context, p Person) (Person, error)
		DeletePersonByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewPerson) (Person, error) {
	np.Clean()
	p := Person{
		Name:      np.Name,
		Email:     np.Email,
		Role:      np.Role,
		CreatedAt: time.Now().UTC(),
	}
	p, err := svc.repo.CreatePerson(ctx, p)
	if errors.Cause(err) == ErrEmailExists {
		return Person{}, core.NewValidationError(ErrEmailExists,
			core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return p, err
}

func (svc *Service) QueryAll(ctx context.Context) ([]Person, error) {
	return svc.repo.QueryAllPersons(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Person, error) {
	return svc.repo.GetPersonByID(ctx, id)
}

func (svc *Service) Search(ctx context.Context, query string) ([]Person, error) {
	query = core.CleanString(query)
	if query == "" {
		return svc.repo.QueryAllPersons(ctx)
	}
	return svc.repo.SearchPersons(ctx, query)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdatePerson) (Person, error) {
	orig, err := svc.repo.GetPersonByID(ctx, id)
	if err != nil {
		return Person{}, err
	}
	up.Clean(orig)

	orig.Name = up.Name
	orig.Email = up.Email
	orig.Role = up.Role

	p, err := svc.repo.UpdatePerson(ctx, orig)
	if errors.Cause(err) == ErrEmailExists {
		return Person{}, core.NewValidationError(ErrEmailExists,
			core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}
	return p, err
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeletePersonByID(ctx, id)
}
