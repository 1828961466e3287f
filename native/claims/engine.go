package claims

import (
	"math/big"
	"time"

	"m4aledger/core/events"
	"m4aledger/native/fees"
)

// engineState is the persistence surface the claim engine needs. The state
// package provides the production implementation; tests use an in-memory
// mock.
type engineState interface {
	ProtocolGet() (*Protocol, bool, error)
	ProtocolPut(protocol *Protocol) error
	ClaimQueueGet() (*ClaimQueue, bool, error)
	ClaimQueuePut(queue *ClaimQueue) error
	ProcessorStatsGet() (*ProcessorStats, bool, error)
	ProcessorStatsPut(stats *ProcessorStats) error
	HospitalStatsGet() (*HospitalStats, bool, error)
	HospitalStatsPut(stats *HospitalStats) error
	InsuranceCompanyStatsGet() (*InsuranceCompanyStats, bool, error)
	InsuranceCompanyStatsPut(stats *InsuranceCompanyStats) error
	SubmitterGet(addr [20]byte) (*Submitter, bool, error)
	SubmitterPut(submitter *Submitter) error
	PatientGet(submitter [20]byte, patientIndex uint8) (*Patient, bool, error)
	PatientPut(patient *Patient) error
	ProcessorGet(addr [20]byte) (*Processor, bool, error)
	ProcessorPut(processor *Processor) error
	StateGet(countryIndex uint16, stateIndex uint32) (*State, bool, error)
	StatePut(state *State) error
	HospitalGet(countryIndex uint16, stateIndex uint32, hospitalIndex uint32) (*Hospital, bool, error)
	HospitalPut(hospital *Hospital) error
	InsuranceCompanyGet(index uint16) (*InsuranceCompany, bool, error)
	InsuranceCompanyPut(company *InsuranceCompany) error
	ClaimGet(submitter [20]byte) (*Claim, bool, error)
	ClaimPut(claim *Claim) error
	ClaimDelete(submitter [20]byte) error
	ProcessedClaimGet(processor [20]byte, countIndex uint64) (*ProcessedClaim, bool, error)
	ProcessedClaimPut(claim *ProcessedClaim) error
	PatientRecordGet(submitter [20]byte, patientIndex uint8, recordIndex uint32) (*PatientRecord, bool, error)
	PatientRecordPut(record *PatientRecord) error
	HospitalRecordGet(countryIndex uint16, stateIndex uint32, hospitalIndex uint32, recordIndex uint64) (*HospitalRecord, bool, error)
	HospitalRecordPut(record *HospitalRecord) error
	InsuranceCompanyRecordGet(companyIndex uint16, recordIndex uint64) (*InsuranceCompanyRecord, bool, error)
	InsuranceCompanyRecordPut(record *InsuranceCompanyRecord) error
}

// authority is the role lookup consumed by the authorization gate, wired to
// the roles engine in production.
type authority interface {
	IsCEO(addr [20]byte) (bool, error)
	Treasurer() ([20]byte, error)
}

// feeSchedule resolves a fee token to its registered decimals.
type feeSchedule interface {
	TokenEntry(token string) (*fees.TokenEntry, error)
}

// Engine wires the claim lifecycle state machine with persistence, role
// checks, fee collection and event emission. Every operation loads the
// entities it touches, validates all preconditions, mutates in memory and
// only then persists, so a failed precondition never leaves partial state.
type Engine struct {
	state      engineState
	auth       authority
	schedule   feeSchedule
	collector  fees.Collector
	emitter    events.Emitter
	nowFn      func() int64
	queueLimit uint32
	flatFeeUSD float64
}

// NewEngine constructs a claims engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		collector: fees.NoopCollector{},
		emitter:   events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
		queueLimit: DefaultQueueSizeLimit,
		flatFeeUSD: fees.FlatFeeUSD,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAuthority configures the role lookup used by the authorization gate.
func (e *Engine) SetAuthority(auth authority) { e.auth = auth }

// SetFeeSchedule configures the token registry consulted for fee charges.
func (e *Engine) SetFeeSchedule(schedule feeSchedule) { e.schedule = schedule }

// SetCollector configures the payment collaborator that moves intake fees.
func (e *Engine) SetCollector(collector fees.Collector) {
	if collector == nil {
		e.collector = fees.NoopCollector{}
		return
	}
	e.collector = collector
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetDefaultQueueSizeLimit overrides the queue bound applied when the
// protocol is first initialized. Has no effect on an existing queue; use
// SetClaimQueueSizeLimit for that.
func (e *Engine) SetDefaultQueueSizeLimit(limit uint32) {
	if limit == 0 {
		e.queueLimit = DefaultQueueSizeLimit
		return
	}
	e.queueLimit = limit
}

// SetFlatFeeUSD overrides the flat intake fee.
func (e *Engine) SetFlatFeeUSD(fee float64) {
	if fee < 0 {
		e.flatFeeUSD = fees.FlatFeeUSD
		return
	}
	e.flatFeeUSD = fee
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

// --- authorization gate ---

func (e *Engine) requireCEO(caller [20]byte) error {
	if e.auth == nil {
		return ErrNotCEO
	}
	ok, err := e.auth.IsCEO(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCEO
	}
	return nil
}

// requireSuperAdminOrCEO passes for the sitting CEO or for a processor
// carrying the super-admin flag. The caller's processor entity is returned
// when one exists so admin-scoped counters can be bumped on it; a CEO
// without a processor entity gets nil.
func (e *Engine) requireSuperAdminOrCEO(caller [20]byte) (*Processor, error) {
	isCEO := false
	if e.auth != nil {
		ok, err := e.auth.IsCEO(caller)
		if err != nil {
			return nil, err
		}
		isCEO = ok
	}
	admin, found, err := e.state.ProcessorGet(caller)
	if err != nil {
		return nil, err
	}
	if isCEO {
		if !found {
			return nil, nil
		}
		return admin, nil
	}
	if !found || !admin.IsSuperAdmin {
		return nil, ErrNotSuperAdminOrCEO
	}
	return admin, nil
}

// requireAssignedProcessor checks that the caller is an active processor
// currently holding the given claim.
func (e *Engine) requireAssignedProcessor(caller [20]byte, claim *Claim) (*Processor, error) {
	processor, found, err := e.state.ProcessorGet(caller)
	if err != nil {
		return nil, err
	}
	if !found || !processor.IsActive {
		return nil, ErrNotActiveProcessor
	}
	if processor.ClaimSubmitterAddress != claim.SubmitterAddress {
		return nil, ErrNotTheProcessor
	}
	return processor, nil
}

// --- fee collection ---

// chargeFee debits the flat fee from the payer to the treasury. Called after
// all preconditions pass and before any state is persisted, so a failed
// charge aborts the operation cleanly.
func (e *Engine) chargeFee(payer [20]byte, token string) (*big.Int, error) {
	if e.schedule == nil || e.auth == nil {
		return nil, fees.ErrTokenNotRegistered
	}
	entry, err := e.schedule.TokenEntry(token)
	if err != nil {
		return nil, err
	}
	treasury, err := e.auth.Treasurer()
	if err != nil {
		return nil, err
	}
	amount := fees.Amount(e.flatFeeUSD, entry.Decimals)
	if err := e.collector.ChargeFee(payer, treasury, entry.Token, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// --- shared loaders ---

func (e *Engine) requireQueue() (*ClaimQueue, error) {
	queue, found, err := e.state.ClaimQueueGet()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotInitialized
	}
	return queue, nil
}

func (e *Engine) requireProcessorStats() (*ProcessorStats, error) {
	stats, found, err := e.state.ProcessorStatsGet()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotInitialized
	}
	return stats, nil
}

func (e *Engine) requireSubmitter(addr [20]byte) (*Submitter, error) {
	submitter, found, err := e.state.SubmitterGet(addr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return submitter, nil
}

func (e *Engine) requirePatient(submitter [20]byte, index uint8) (*Patient, error) {
	patient, found, err := e.state.PatientGet(submitter, index)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return patient, nil
}

func (e *Engine) requireClaim(submitter [20]byte) (*Claim, error) {
	claim, found, err := e.state.ClaimGet(submitter)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return claim, nil
}

func (e *Engine) requireProcessedClaim(processor [20]byte, countIndex uint64) (*ProcessedClaim, error) {
	processed, found, err := e.state.ProcessedClaimGet(processor, countIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return processed, nil
}

func (e *Engine) requireState(countryIndex uint16, stateIndex uint32) (*State, error) {
	region, found, err := e.state.StateGet(countryIndex, stateIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return region, nil
}

func (e *Engine) requireHospital(countryIndex uint16, stateIndex uint32, hospitalIndex uint32) (*Hospital, error) {
	hospital, found, err := e.state.HospitalGet(countryIndex, stateIndex, hospitalIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return hospital, nil
}

func (e *Engine) requireInsuranceCompany(index uint16) (*InsuranceCompany, error) {
	company, found, err := e.state.InsuranceCompanyGet(index)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return company, nil
}

func (e *Engine) requirePatientRecord(submitter [20]byte, patientIndex uint8, recordIndex uint32) (*PatientRecord, error) {
	record, found, err := e.state.PatientRecordGet(submitter, patientIndex, recordIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return record, nil
}

func (e *Engine) requireHospitalRecord(countryIndex uint16, stateIndex uint32, hospitalIndex uint32, recordIndex uint64) (*HospitalRecord, error) {
	record, found, err := e.state.HospitalRecordGet(countryIndex, stateIndex, hospitalIndex, recordIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return record, nil
}

func (e *Engine) requireInsuranceCompanyRecord(companyIndex uint16, recordIndex uint64) (*InsuranceCompanyRecord, error) {
	record, found, err := e.state.InsuranceCompanyRecordGet(companyIndex, recordIndex)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	return record, nil
}

// persistAll writes the given mutations in order, stopping at the first
// failure.
func persistAll(writes ...func() error) error {
	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}
