package memorydb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mwalimu/darasa/core/directory"
)

// personRepository is the in-memory directory store used by tests and by the
// server when it runs without a database file.
type personRepository struct {
	mu      sync.RWMutex
	table   map[int]*directory.Person
	pkCount int
}

var _ directory.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository() directory.Repository {
	return &personRepository{table: make(map[int]*directory.Person)}
}

// query returns all rows ordered by id; the caller must hold the lock.
func (repo *personRepository) query() []directory.Person {
	persons := make([]directory.Person, 0, len(repo.table))
	for _, p := range repo.table {
		persons = append(persons, *p)
	}
	sort.Slice(persons, func(i, j int) bool { return persons[i].ID < persons[j].ID })
	return persons
}

func (repo *personRepository) CreatePerson(_ context.Context, p directory.Person) (directory.Person, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.table {
		if existing.Email == p.Email {
			return directory.Person{}, directory.ErrEmailExists
		}
	}
	repo.pkCount++
	p.ID = repo.pkCount
	repo.table[p.ID] = &p
	return p, nil
}

func (repo *personRepository) QueryAllPersons(context.Context) ([]directory.Person, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return repo.query(), nil
}

func (repo *personRepository) GetPersonByID(_ context.Context, id int) (directory.Person, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if p, ok := repo.table[id]; ok {
		return *p, nil
	}
	return directory.Person{}, directory.ErrNotFound
}

func (repo *personRepository) SearchPersons(_ context.Context, query string) ([]directory.Person, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	query = strings.ToLower(query)
	var matched []directory.Person
	for _, p := range repo.query() {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Email), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (repo *personRepository) UpdatePerson(_ context.Context, p directory.Person) (directory.Person, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	existing, ok := repo.table[p.ID]
	if !ok {
		return directory.Person{}, directory.ErrNotFound
	}
	for id, other := range repo.table {
		if id != p.ID && other.Email == p.Email {
			return directory.Person{}, directory.ErrEmailExists
		}
	}
	p.CreatedAt = existing.CreatedAt
	repo.table[p.ID] = &p
	return p, nil
}

func (repo *personRepository) DeletePersonByID(_ context.Context, id int) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.table[id]; !ok {
		return directory.ErrNotFound
	}
	delete(repo.table, id)
	return nil
}
