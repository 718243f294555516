package services

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/ml"
)

// ModelHandle is an immutable snapshot of one tenant's model generation: the
// scorer plus the index maps that are only valid against it. A tenant moves
// between handles by full replacement, never in-place mutation.
type ModelHandle struct {
	Generation uint64
	Scorer     ml.Scorer
	Users      *ml.IndexMap
	Items      *ml.IndexMap
}

func (h *ModelHandle) UserCount() int { return h.Users.Len() }
func (h *ModelHandle) ItemCount() int { return h.Items.Len() }

// handleCell holds the current handle for one tenant. Readers load the
// pointer atomically; the swap mutex serializes writers without ever blocking
// readers.
type handleCell struct {
	handle atomic.Pointer[ModelHandle]
	swapMu sync.Mutex
}

// ModelRegistry owns the current ModelHandle per tenant. Reads return a
// shared immutable snapshot that stays valid across concurrent swaps; the
// registry lock guards only the tenant map, never scoring or training work.
type ModelRegistry struct {
	mu      sync.RWMutex
	tenants map[string]*handleCell
	logger  *logrus.Logger
}

func NewModelRegistry(logger *logrus.Logger) *ModelRegistry {
	return &ModelRegistry{
		tenants: make(map[string]*handleCell),
		logger:  logger,
	}
}

// Register installs the initial handle for a new tenant. It is only valid on
// the tenant creation path; registering an existing tenant fails.
func (r *ModelRegistry) Register(tenantKey string, model *ml.TrainedModel) (*ModelHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants[tenantKey]; exists {
		return nil, ErrTenantExists
	}

	handle := &ModelHandle{
		Generation: 1,
		Scorer:     model.Scorer,
		Users:      model.Users,
		Items:      model.Items,
	}

	cell := &handleCell{}
	cell.handle.Store(handle)
	r.tenants[tenantKey] = cell

	r.logger.WithFields(logrus.Fields{
		"tenant": tenantKey,
		"users":  handle.UserCount(),
		"items":  handle.ItemCount(),
	}).Info("Tenant model registered")

	return handle, nil
}

// Get returns the tenant's current handle. The returned snapshot remains
// fully usable even if a swap lands immediately after.
func (r *ModelRegistry) Get(tenantKey string) (*ModelHandle, error) {
	r.mu.RLock()
	cell, exists := r.tenants[tenantKey]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrTenantNotFound
	}

	handle := cell.handle.Load()
	if handle == nil {
		return nil, ErrModelNotFound
	}
	return handle, nil
}

// Has reports whether the tenant key is registered.
func (r *ModelRegistry) Has(tenantKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tenants[tenantKey]
	return exists
}

// Swap atomically replaces the tenant's handle with a new generation built
// from the trained model, returning the previous handle. Readers observe
// either the old handle or the new one in full, never a mix.
func (r *ModelRegistry) Swap(tenantKey string, model *ml.TrainedModel) (previous, current *ModelHandle, err error) {
	r.mu.RLock()
	cell, exists := r.tenants[tenantKey]
	r.mu.RUnlock()

	if !exists {
		return nil, nil, ErrTenantNotFound
	}

	cell.swapMu.Lock()
	defer cell.swapMu.Unlock()

	prev := cell.handle.Load()
	next := &ModelHandle{
		Generation: 1,
		Scorer:     model.Scorer,
		Users:      model.Users,
		Items:      model.Items,
	}
	if prev != nil {
		next.Generation = prev.Generation + 1
	}
	cell.handle.Store(next)

	r.logger.WithFields(logrus.Fields{
		"tenant":     tenantKey,
		"generation": next.Generation,
		"users":      next.UserCount(),
		"items":      next.ItemCount(),
	}).Info("Tenant model swapped")

	return prev, next, nil
}

// Generation returns the current generation id for a tenant, 0 when no model
// is installed yet.
func (r *ModelRegistry) Generation(tenantKey string) uint64 {
	handle, err := r.Get(tenantKey)
	if err != nil {
		return 0
	}
	return handle.Generation
}

// TenantKeys lists all registered tenant keys.
func (r *ModelRegistry) TenantKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.tenants))
	for key := range r.tenants {
		keys = append(keys, key)
	}
	return keys
}
