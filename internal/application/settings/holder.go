// Package settings guarda el snapshot activo de settings y tablas de precios.
//
// El snapshot se reemplaza entero (Store) y nunca se modifica in situ: quien
// haya hecho Load sigue viendo un estado coherente aunque otro goroutine
// publique uno nuevo a mitad de ciclo.
package settings

import (
	"sync"
	"sync/atomic"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/alejandrodnm/flipscore/internal/pricing"
)

// Snapshot es el estado inmutable con el que se evalúa un ciclo.
type Snapshot struct {
	Settings domain.Settings
	Pricing  *pricing.Store
	Version  uint64
}

// Holder publica snapshots de forma atómica.
type Holder struct {
	cur     atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializa escritores
	version uint64
}

// NewHolder crea un Holder con el snapshot inicial.
// Si store es nil usa la tabla de precios embebida.
func NewHolder(s domain.Settings, store *pricing.Store) *Holder {
	h := &Holder{}
	h.Store(s, store)
	return h
}

// Load devuelve el snapshot activo.
func (h *Holder) Load() *Snapshot {
	return h.cur.Load()
}

// Store publica un snapshot nuevo y devuelve su versión.
func (h *Holder) Store(s domain.Settings, store *pricing.Store) uint64 {
	if store == nil {
		store = pricing.Default()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version++
	h.cur.Store(&Snapshot{Settings: s, Pricing: store, Version: h.version})
	return h.version
}

// UpdateSettings publica un snapshot con settings nuevos y la misma tabla de precios.
func (h *Holder) UpdateSettings(s domain.Settings) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.version++
	h.cur.Store(&Snapshot{Settings: s, Pricing: h.cur.Load().Pricing, Version: h.version})
	return h.version
}
