package fees

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"time"

	"m4aledger/core/events"
)

// FlatFeeUSD is the default intake charge applied once per claim lifecycle
// action that touches the queue or resolves a claim.
const FlatFeeUSD = 0.04

var (
	errNilState             = errors.New("fees engine: state not configured")
	ErrNotAuthorized        = errors.New("fees engine: caller is not authorized")
	ErrTokenNotRegistered   = errors.New("fees engine: token not registered")
	ErrTokenAlreadyExists   = errors.New("fees engine: token already registered")
	ErrEmptyToken           = errors.New("fees engine: token symbol must not be empty")
	ErrInsufficientFeeFunds = errors.New("fees engine: payer cannot cover the fee")
)

// TokenEntry describes a token accepted for fee payment.
type TokenEntry struct {
	Token    string
	Decimals uint8
	AddedAt  int64
}

// Collector moves the flat fee from a payer to the treasury. Implementations
// decide what "moving value" means; the ledger only cares that a failed
// charge aborts the surrounding operation.
type Collector interface {
	ChargeFee(payer, payee [20]byte, token string, amount *big.Int) error
}

// NoopCollector accepts every charge without moving value. Useful for tests
// and deployments where fee settlement happens out of band.
type NoopCollector struct{}

// ChargeFee implements the Collector interface.
func (NoopCollector) ChargeFee(payer, payee [20]byte, token string, amount *big.Int) error {
	return nil
}

// Amount converts a flat USD fee into base token units for the given number
// of decimals. A $0.04 fee on a 6-decimal token yields 40000.
func Amount(flatUSD float64, decimals uint8) *big.Int {
	scaled := flatUSD * math.Pow10(int(decimals))
	return new(big.Int).SetUint64(uint64(math.Round(scaled)))
}

type engineState interface {
	FeeTokenEntryGet(token string) (*TokenEntry, bool, error)
	FeeTokenEntryPut(entry *TokenEntry) error
	FeeTokenEntryDelete(token string) error
}

type authority interface {
	IsCEO(addr [20]byte) (bool, error)
}

// Engine manages the registry of fee payment tokens. Mutations are gated on
// the CEO role.
type Engine struct {
	state   engineState
	auth    authority
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs a fees engine with default dependencies.
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

// SetAuthority configures the role lookup used for mutation gating.
func (e *Engine) SetAuthority(auth authority) { e.auth = auth }

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

// Bootstrap seeds a token entry from operator configuration when none exists
// yet. Unlike AddTokenEntry it is not role-gated: it runs before any role
// registry is initialized, and an already-registered token is left untouched.
func (e *Engine) Bootstrap(token string, decimals uint8) error {
	if e.state == nil {
		return errNilState
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if _, ok, err := e.state.FeeTokenEntryGet(token); err != nil {
		return err
	} else if ok {
		return nil
	}
	entry := &TokenEntry{Token: token, Decimals: decimals, AddedAt: e.nowFn()}
	if err := e.state.FeeTokenEntryPut(entry); err != nil {
		return err
	}
	e.emitter.Emit(tokenEntryEvent(EventTypeTokenAdded, entry))
	return nil
}

// AddTokenEntry registers a token for fee payment.
func (e *Engine) AddTokenEntry(caller [20]byte, token string, decimals uint8) error {
	if e.state == nil {
		return errNilState
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if _, ok, err := e.state.FeeTokenEntryGet(token); err != nil {
		return err
	} else if ok {
		return ErrTokenAlreadyExists
	}
	entry := &TokenEntry{Token: token, Decimals: decimals, AddedAt: e.nowFn()}
	if err := e.state.FeeTokenEntryPut(entry); err != nil {
		return err
	}
	e.emitter.Emit(tokenEntryEvent(EventTypeTokenAdded, entry))
	return nil
}

// RemoveTokenEntry drops a token from the fee registry.
func (e *Engine) RemoveTokenEntry(caller [20]byte, token string) error {
	if e.state == nil {
		return errNilState
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	entry, ok, err := e.state.FeeTokenEntryGet(token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotRegistered
	}
	if err := e.state.FeeTokenEntryDelete(token); err != nil {
		return err
	}
	e.emitter.Emit(tokenEntryEvent(EventTypeTokenRemoved, entry))
	return nil
}

// TokenEntry returns the registered entry for a token symbol.
func (e *Engine) TokenEntry(token string) (*TokenEntry, error) {
	if e.state == nil {
		return nil, errNilState
	}
	entry, ok, err := e.state.FeeTokenEntryGet(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotRegistered
	}
	return entry, nil
}

func (e *Engine) requireCEO(caller [20]byte) error {
	if e.auth == nil {
		return ErrNotAuthorized
	}
	ok, err := e.auth.IsCEO(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
