package permissions

import (
	"errors"
	"sync"

	"letterdesk/apperr"
	"letterdesk/models"

	"gorm.io/gorm"
)

// Set is an effective permission set resolved for one user. Admin sets
// answer true for every code; inactive non-admin users get an empty set.
type Set struct {
	admin bool
	codes map[Code]struct{}
}

// Has reports whether the set grants code. A code carrying the ":own"
// suffix is also satisfied by the unscoped base code: this layer grants
// capability only, ownership itself is checked at the resource layer.
func (s *Set) Has(code Code) bool {
	if s == nil {
		return false
	}
	if s.admin {
		return true
	}
	if _, ok := s.codes[code]; ok {
		return true
	}
	if code.Own() {
		if _, ok := s.codes[code.Base()]; ok {
			return true
		}
	}
	return false
}

// HasAny is vacuously true for an empty list.
func (s *Set) HasAny(codes ...Code) bool {
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Admin reports whether this is the universal admin set.
func (s *Set) Admin() bool {
	return s != nil && s.admin
}

// Codes returns the granted codes, for display. Empty for admin sets.
func (s *Set) Codes() []Code {
	if s == nil {
		return nil
	}
	out := make([]Code, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	return out
}

// Resolver computes effective permission sets from role defaults plus
// custom grants, caching one set per user. The cache is recomputed
// wholesale on Invalidate or Reload, never patched in place.
type Resolver struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[uint]*Set
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db, cache: make(map[uint]*Set)}
}

// Resolve returns the effective set for userID, computing and caching it
// on first use.
func (r *Resolver) Resolve(userID uint) (*Set, error) {
	r.mu.RLock()
	set, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok {
		return set, nil
	}
	return r.Reload(userID)
}

// Reload recomputes the set for userID from the store, replacing any
// cached value.
func (r *Resolver) Reload(userID uint) (*Set, error) {
	var user models.User
	if err := r.db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.NotFound, "user %d not found", userID)
		}
		return nil, apperr.Wrap(apperr.Transient, "failed to load user", err)
	}

	set, err := r.resolve(&user)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[userID] = set
	r.mu.Unlock()
	return set, nil
}

// Invalidate drops the cached set for userID. Call after any change to
// the user's role or grants; the next Resolve recomputes.
func (r *Resolver) Invalidate(userID uint) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

func (r *Resolver) resolve(user *models.User) (*Set, error) {
	if user.IsAdmin() {
		return &Set{admin: true}, nil
	}
	if !user.IsActive {
		// Deactivated non-admin users are denied everything.
		return &Set{codes: map[Code]struct{}{}}, nil
	}

	codes := make(map[Code]struct{})
	for _, c := range DefaultPermissions(user.Role) {
		codes[c] = struct{}{}
	}

	var grants []models.UserPermission
	if err := r.db.Where("user_id = ? AND is_deleted = false", user.ID).Find(&grants).Error; err != nil {
		return nil, apperr.Wrap(apperr.Transient, "failed to load permission grants", err)
	}
	for _, g := range grants {
		if g.BundleRole != "" {
			for _, c := range DefaultPermissions(g.BundleRole) {
				codes[c] = struct{}{}
			}
			continue
		}
		if g.Code != "" {
			codes[Code(g.Code)] = struct{}{}
		}
	}

	return &Set{codes: codes}, nil
}
