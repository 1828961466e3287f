package roles

import (
	"errors"
	"time"

	"m4aledger/core/events"
)

var (
	errNilState               = errors.New("roles engine: state not configured")
	ErrAlreadyInitialized     = errors.New("roles engine: registry already initialized")
	ErrNotInitialized         = errors.New("roles engine: registry not initialized")
	ErrNotCEO                 = errors.New("roles engine: caller is not the ceo")
	ErrNotTreasurer           = errors.New("roles engine: caller is not the treasurer")
	ErrZeroAddress            = errors.New("roles engine: address must not be zero")
	ErrSuccessorMatchesHolder = errors.New("roles engine: successor already holds the role")
)

// Registry is the singleton record of the two administrative roles. The CEO
// gates privileged ledger operations, the treasurer receives intake fees.
type Registry struct {
	CEO       [20]byte
	Treasurer [20]byte
	UpdatedAt int64
}

type engineState interface {
	RoleRegistryGet() (*Registry, bool, error)
	RoleRegistryPut(registry *Registry) error
}

// Engine wires role management with persistence and event emission.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs a roles engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

var zeroAddress [20]byte

// Initialize records the founding CEO and treasurer. It may run exactly once;
// every later handover goes through PassOnCEO or PassOnTreasurer.
func (e *Engine) Initialize(ceo, treasurer [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if ceo == zeroAddress || treasurer == zeroAddress {
		return ErrZeroAddress
	}
	if _, ok, err := e.state.RoleRegistryGet(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	registry := &Registry{CEO: ceo, Treasurer: treasurer, UpdatedAt: e.nowFn()}
	if err := e.state.RoleRegistryPut(registry); err != nil {
		return err
	}
	e.emitter.Emit(initializedEvent(registry))
	return nil
}

// PassOnCEO transfers the CEO role to a successor. Only the sitting CEO may
// hand the role over.
func (e *Engine) PassOnCEO(caller, successor [20]byte) error {
	registry, err := e.requireRegistry()
	if err != nil {
		return err
	}
	if registry.CEO != caller {
		return ErrNotCEO
	}
	if successor == zeroAddress {
		return ErrZeroAddress
	}
	if successor == registry.CEO {
		return ErrSuccessorMatchesHolder
	}
	registry.CEO = successor
	registry.UpdatedAt = e.nowFn()
	if err := e.state.RoleRegistryPut(registry); err != nil {
		return err
	}
	e.emitter.Emit(rolePassedEvent("ceo", caller, successor))
	return nil
}

// PassOnTreasurer transfers the treasurer role to a successor. Only the
// sitting treasurer may hand the role over.
func (e *Engine) PassOnTreasurer(caller, successor [20]byte) error {
	registry, err := e.requireRegistry()
	if err != nil {
		return err
	}
	if registry.Treasurer != caller {
		return ErrNotTreasurer
	}
	if successor == zeroAddress {
		return ErrZeroAddress
	}
	if successor == registry.Treasurer {
		return ErrSuccessorMatchesHolder
	}
	registry.Treasurer = successor
	registry.UpdatedAt = e.nowFn()
	if err := e.state.RoleRegistryPut(registry); err != nil {
		return err
	}
	e.emitter.Emit(rolePassedEvent("treasurer", caller, successor))
	return nil
}

// IsCEO reports whether addr currently holds the CEO role.
func (e *Engine) IsCEO(addr [20]byte) (bool, error) {
	registry, err := e.requireRegistry()
	if err != nil {
		return false, err
	}
	return registry.CEO == addr, nil
}

// IsTreasurer reports whether addr currently holds the treasurer role.
func (e *Engine) IsTreasurer(addr [20]byte) (bool, error) {
	registry, err := e.requireRegistry()
	if err != nil {
		return false, err
	}
	return registry.Treasurer == addr, nil
}

// Treasurer returns the current treasurer address.
func (e *Engine) Treasurer() ([20]byte, error) {
	registry, err := e.requireRegistry()
	if err != nil {
		return [20]byte{}, err
	}
	return registry.Treasurer, nil
}

func (e *Engine) requireRegistry() (*Registry, error) {
	if e.state == nil {
		return nil, errNilState
	}
	registry, ok, err := e.state.RoleRegistryGet()
	if err != nil {
		return nil, err
	}
	if !ok || registry == nil {
		return nil, ErrNotInitialized
	}
	return registry, nil
}
