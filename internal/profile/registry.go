package profile

import (
	"fmt"
	"sort"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// DefaultProfileID is used when no profile is configured.
const DefaultProfileID = "custom"

// Registry holds all packager profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates a registry with all built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
	}

	r.Register(NewElectronBuilderProfile())
	r.Register(NewElectronForgeProfile())
	r.Register(NewCustomProfile())

	return r
}

// NewRegistryWithProfiles creates a registry with custom profiles (for testing).
func NewRegistryWithProfiles(profiles ...Profile) *Registry {
	r := &Registry{
		profiles: make(map[string]Profile),
	}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

// Register adds a profile to the registry.
func (r *Registry) Register(p Profile) {
	r.profiles[p.ID()] = p
}

// Get returns a profile by ID.
func (r *Registry) Get(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// GetAll returns all registered profiles sorted by ID.
func (r *Registry) GetAll() []Profile {
	result := make([]Profile, 0, len(r.profiles))
	for _, id := range r.List() {
		result = append(result, r.profiles[id])
	}
	return result
}

// List returns all profile IDs in sorted order.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegistryProfileStore adapts Registry to implement domain.ProfileStore interface.
type RegistryProfileStore struct {
	registry *Registry
}

// NewProfileStore creates a ProfileStore backed by the default Registry.
func NewProfileStore() domain.ProfileStore {
	return &RegistryProfileStore{registry: NewRegistry()}
}

// NewProfileStoreWithRegistry creates a ProfileStore backed by r.
func NewProfileStoreWithRegistry(r *Registry) *RegistryProfileStore {
	return &RegistryProfileStore{registry: r}
}

func (s *RegistryProfileStore) GetByID(id string, opts domain.ProfileOptions) (*domain.SessionPlan, error) {
	p, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("profile not found: %s", id)
	}
	return ToSessionPlan(p, opts), nil
}

func (s *RegistryProfileStore) List() []string {
	return s.registry.List()
}

// Ensure RegistryProfileStore implements domain.ProfileStore.
var _ domain.ProfileStore = (*RegistryProfileStore)(nil)
