package claims

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"m4aledger/native/fees"
)

type patientKey struct {
	submitter [20]byte
	index     uint8
}

type stateKey struct {
	country uint16
	state   uint32
}

type hospitalKey struct {
	country  uint16
	state    uint32
	hospital uint32
}

type processedKey struct {
	processor  [20]byte
	countIndex uint64
}

type patientRecordKey struct {
	submitter [20]byte
	patient   uint8
	record    uint32
}

type hospitalRecordKey struct {
	country  uint16
	state    uint32
	hospital uint32
	record   uint64
}

type companyRecordKey struct {
	company uint16
	record  uint64
}

type mockState struct {
	protocol     *Protocol
	queue        *ClaimQueue
	pStats       *ProcessorStats
	hStats       *HospitalStats
	iStats       *InsuranceCompanyStats
	submitters   map[[20]byte]*Submitter
	patients     map[patientKey]*Patient
	processors   map[[20]byte]*Processor
	states       map[stateKey]*State
	hospitals    map[hospitalKey]*Hospital
	companies    map[uint16]*InsuranceCompany
	claims       map[[20]byte]*Claim
	processed    map[processedKey]*ProcessedClaim
	patientRecs  map[patientRecordKey]*PatientRecord
	hospitalRecs map[hospitalRecordKey]*HospitalRecord
	companyRecs  map[companyRecordKey]*InsuranceCompanyRecord
}

func newMockState() *mockState {
	return &mockState{
		submitters:   make(map[[20]byte]*Submitter),
		patients:     make(map[patientKey]*Patient),
		processors:   make(map[[20]byte]*Processor),
		states:       make(map[stateKey]*State),
		hospitals:    make(map[hospitalKey]*Hospital),
		companies:    make(map[uint16]*InsuranceCompany),
		claims:       make(map[[20]byte]*Claim),
		processed:    make(map[processedKey]*ProcessedClaim),
		patientRecs:  make(map[patientRecordKey]*PatientRecord),
		hospitalRecs: make(map[hospitalRecordKey]*HospitalRecord),
		companyRecs:  make(map[companyRecordKey]*InsuranceCompanyRecord),
	}
}

func (m *mockState) ProtocolGet() (*Protocol, bool, error) {
	if m.protocol == nil {
		return nil, false, nil
	}
	copied := *m.protocol
	return &copied, true, nil
}

func (m *mockState) ProtocolPut(protocol *Protocol) error {
	copied := *protocol
	m.protocol = &copied
	return nil
}

func (m *mockState) ClaimQueueGet() (*ClaimQueue, bool, error) {
	if m.queue == nil {
		return nil, false, nil
	}
	copied := *m.queue
	return &copied, true, nil
}

func (m *mockState) ClaimQueuePut(queue *ClaimQueue) error {
	copied := *queue
	m.queue = &copied
	return nil
}

func (m *mockState) ProcessorStatsGet() (*ProcessorStats, bool, error) {
	if m.pStats == nil {
		return nil, false, nil
	}
	copied := *m.pStats
	return &copied, true, nil
}

func (m *mockState) ProcessorStatsPut(stats *ProcessorStats) error {
	copied := *stats
	m.pStats = &copied
	return nil
}

func (m *mockState) HospitalStatsGet() (*HospitalStats, bool, error) {
	if m.hStats == nil {
		return nil, false, nil
	}
	copied := *m.hStats
	return &copied, true, nil
}

func (m *mockState) HospitalStatsPut(stats *HospitalStats) error {
	copied := *stats
	m.hStats = &copied
	return nil
}

func (m *mockState) InsuranceCompanyStatsGet() (*InsuranceCompanyStats, bool, error) {
	if m.iStats == nil {
		return nil, false, nil
	}
	copied := *m.iStats
	return &copied, true, nil
}

func (m *mockState) InsuranceCompanyStatsPut(stats *InsuranceCompanyStats) error {
	copied := *stats
	m.iStats = &copied
	return nil
}

func (m *mockState) SubmitterGet(addr [20]byte) (*Submitter, bool, error) {
	submitter, ok := m.submitters[addr]
	if !ok {
		return nil, false, nil
	}
	copied := *submitter
	return &copied, true, nil
}

func (m *mockState) SubmitterPut(submitter *Submitter) error {
	copied := *submitter
	m.submitters[submitter.Address] = &copied
	return nil
}

func (m *mockState) PatientGet(submitter [20]byte, index uint8) (*Patient, bool, error) {
	patient, ok := m.patients[patientKey{submitter, index}]
	if !ok {
		return nil, false, nil
	}
	copied := *patient
	return &copied, true, nil
}

func (m *mockState) PatientPut(patient *Patient) error {
	copied := *patient
	m.patients[patientKey{patient.SubmitterAddress, patient.Index}] = &copied
	return nil
}

func (m *mockState) ProcessorGet(addr [20]byte) (*Processor, bool, error) {
	processor, ok := m.processors[addr]
	if !ok {
		return nil, false, nil
	}
	copied := *processor
	return &copied, true, nil
}

func (m *mockState) ProcessorPut(processor *Processor) error {
	copied := *processor
	m.processors[processor.Address] = &copied
	return nil
}

func (m *mockState) StateGet(country uint16, state uint32) (*State, bool, error) {
	region, ok := m.states[stateKey{country, state}]
	if !ok {
		return nil, false, nil
	}
	copied := *region
	return &copied, true, nil
}

func (m *mockState) StatePut(region *State) error {
	copied := *region
	m.states[stateKey{region.CountryIndex, region.StateIndex}] = &copied
	return nil
}

func (m *mockState) HospitalGet(country uint16, state uint32, hospital uint32) (*Hospital, bool, error) {
	entity, ok := m.hospitals[hospitalKey{country, state, hospital}]
	if !ok {
		return nil, false, nil
	}
	copied := *entity
	return &copied, true, nil
}

func (m *mockState) HospitalPut(hospital *Hospital) error {
	copied := *hospital
	m.hospitals[hospitalKey{hospital.CountryIndex, hospital.StateIndex, hospital.HospitalIndex}] = &copied
	return nil
}

func (m *mockState) InsuranceCompanyGet(index uint16) (*InsuranceCompany, bool, error) {
	company, ok := m.companies[index]
	if !ok {
		return nil, false, nil
	}
	copied := *company
	return &copied, true, nil
}

func (m *mockState) InsuranceCompanyPut(company *InsuranceCompany) error {
	copied := *company
	m.companies[company.Index] = &copied
	return nil
}

func (m *mockState) ClaimGet(submitter [20]byte) (*Claim, bool, error) {
	claim, ok := m.claims[submitter]
	if !ok {
		return nil, false, nil
	}
	copied := *claim
	return &copied, true, nil
}

func (m *mockState) ClaimPut(claim *Claim) error {
	copied := *claim
	m.claims[claim.SubmitterAddress] = &copied
	return nil
}

func (m *mockState) ClaimDelete(submitter [20]byte) error {
	delete(m.claims, submitter)
	return nil
}

func (m *mockState) ProcessedClaimGet(processor [20]byte, countIndex uint64) (*ProcessedClaim, bool, error) {
	processed, ok := m.processed[processedKey{processor, countIndex}]
	if !ok {
		return nil, false, nil
	}
	copied := *processed
	return &copied, true, nil
}

func (m *mockState) ProcessedClaimPut(claim *ProcessedClaim) error {
	copied := *claim
	m.processed[processedKey{claim.ProcessorAddress, claim.ProcessorCountIndex}] = &copied
	return nil
}

func (m *mockState) PatientRecordGet(submitter [20]byte, patientIndex uint8, recordIndex uint32) (*PatientRecord, bool, error) {
	record, ok := m.patientRecs[patientRecordKey{submitter, patientIndex, recordIndex}]
	if !ok {
		return nil, false, nil
	}
	copied := *record
	return &copied, true, nil
}

func (m *mockState) PatientRecordPut(record *PatientRecord) error {
	copied := *record
	m.patientRecs[patientRecordKey{record.SubmitterAddress, record.PatientIndex, record.RecordIndex}] = &copied
	return nil
}

func (m *mockState) HospitalRecordGet(country uint16, state uint32, hospital uint32, recordIndex uint64) (*HospitalRecord, bool, error) {
	record, ok := m.hospitalRecs[hospitalRecordKey{country, state, hospital, recordIndex}]
	if !ok {
		return nil, false, nil
	}
	copied := *record
	return &copied, true, nil
}

func (m *mockState) HospitalRecordPut(record *HospitalRecord) error {
	copied := *record
	m.hospitalRecs[hospitalRecordKey{record.CountryIndex, record.StateIndex, record.HospitalIndex, record.RecordIndex}] = &copied
	return nil
}

func (m *mockState) InsuranceCompanyRecordGet(company uint16, recordIndex uint64) (*InsuranceCompanyRecord, bool, error) {
	record, ok := m.companyRecs[companyRecordKey{company, recordIndex}]
	if !ok {
		return nil, false, nil
	}
	copied := *record
	return &copied, true, nil
}

func (m *mockState) InsuranceCompanyRecordPut(record *InsuranceCompanyRecord) error {
	copied := *record
	m.companyRecs[companyRecordKey{record.InsuranceCompanyIndex, record.RecordIndex}] = &copied
	return nil
}

type mockAuthority struct {
	ceo       [20]byte
	treasurer [20]byte
}

func (m *mockAuthority) IsCEO(addr [20]byte) (bool, error) { return addr == m.ceo, nil }

func (m *mockAuthority) Treasurer() ([20]byte, error) { return m.treasurer, nil }

type mockSchedule struct{}

func (mockSchedule) TokenEntry(token string) (*fees.TokenEntry, error) {
	if token != "USDC" {
		return nil, fees.ErrTokenNotRegistered
	}
	return &fees.TokenEntry{Token: token, Decimals: 6}, nil
}

type charge struct {
	payer  [20]byte
	payee  [20]byte
	token  string
	amount *big.Int
}

type captureCollector struct {
	charges []charge
	err     error
}

func (c *captureCollector) ChargeFee(payer, payee [20]byte, token string, amount *big.Int) error {
	if c.err != nil {
		return c.err
	}
	c.charges = append(c.charges, charge{payer, payee, token, amount})
	return nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

var (
	ceoAddr       = addr(1)
	treasurerAddr = addr(2)
	submitterAddr = addr(10)
	processorAddr = addr(20)
)

type testEnv struct {
	t         *testing.T
	engine    *Engine
	state     *mockState
	collector *captureCollector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	state := newMockState()
	collector := &captureCollector{}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetAuthority(&mockAuthority{ceo: ceoAddr, treasurer: treasurerAddr})
	engine.SetFeeSchedule(mockSchedule{})
	engine.SetCollector(collector)
	engine.SetNowFunc(func() int64 { return 1700000000 })
	return &testEnv{t: t, engine: engine, state: state, collector: collector}
}

func validClaimFields() ClaimFields {
	return ClaimFields{
		HospitalType:              HospitalGeneral,
		HospitalName:              "St. Mungo's",
		HospitalAddress:           "1 Ward Way",
		HospitalCity:              "Springfield",
		HospitalZipCode:           62704,
		HospitalPhoneNumber:       "555-0001",
		HospitalBillInvoiceNumber: "INV-1000",
		Note:                      "routine visit",
		ClaimAmount:               100,
		Ailment:                   "broken arm",
		InsuranceCompanyName:      "Acme Mutual",
	}
}

func validHospitalFields() HospitalFields {
	fields := validClaimFields()
	return HospitalFields{
		Type:        fields.HospitalType,
		Longitude:   -89.65,
		Latitude:    39.78,
		Name:        fields.HospitalName,
		Address:     fields.HospitalAddress,
		City:        fields.HospitalCity,
		ZipCode:     fields.HospitalZipCode,
		PhoneNumber: fields.HospitalPhoneNumber,
	}
}

// bootstrap initializes the protocol and registers the default submitter,
// patient and processor.
func (env *testEnv) bootstrap() {
	env.t.Helper()
	require.NoError(env.t, env.engine.InitializeProtocolAndQueue(ceoAddr))
	require.NoError(env.t, env.engine.InitializeStats(ceoAddr))
	require.NoError(env.t, env.engine.CreateSubmitterAccount(submitterAddr))
	require.NoError(env.t, env.engine.CreatePatientAccount(submitterAddr, "Jo", "Doe"))
	require.NoError(env.t, env.engine.CreateProcessorAccount(ceoAddr, processorAddr))
}

// submitAndAssign files the default claim and assigns the default processor.
func (env *testEnv) submitAndAssign() {
	env.t.Helper()
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(env.t, err)
	require.NoError(env.t, env.engine.AssignClaim(processorAddr, submitterAddr))
}

// buildFullClaim walks the default claim through state, hospital, insurer and
// all three records, leaving it ready for a full-records resolution.
func (env *testEnv) buildFullClaim() {
	env.t.Helper()
	env.submitAndAssign()
	require.NoError(env.t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(env.t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(env.t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))
	require.NoError(env.t, env.engine.CreatePatientRecord(processorAddr, submitterAddr))
	require.NoError(env.t, env.engine.CreateHospitalAndInsuranceCompanyRecords(processorAddr, submitterAddr))
}

func TestInitializeProtocolRunsOnce(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.engine.InitializeProtocolAndQueue(ceoAddr))
	require.ErrorIs(t, env.engine.InitializeProtocolAndQueue(ceoAddr), ErrAlreadyInitialized)
	require.True(t, env.state.queue.Enabled)
	require.Equal(t, DefaultQueueSizeLimit, env.state.queue.QueueSizeLimit)
}

func TestInitializeStatsRequiresCEO(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.engine.InitializeProtocolAndQueue(ceoAddr))
	require.ErrorIs(t, env.engine.InitializeStats(submitterAddr), ErrNotCEO)
	require.NoError(t, env.engine.InitializeStats(ceoAddr))
	require.ErrorIs(t, env.engine.InitializeStats(ceoAddr), ErrAlreadyInitialized)
}

func TestSubmitClaimQueueBound(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.engine.SetClaimQueueSizeLimit(ceoAddr, 1))

	other := addr(11)
	require.NoError(t, env.engine.CreateSubmitterAccount(other))
	require.NoError(t, env.engine.CreatePatientAccount(other, "Al", "Roe"))

	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)
	_, err = env.engine.SubmitClaim(other, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.ErrorIs(t, err, ErrTooManyClaimsInQueue)
}

func TestSubmitClaimQueueDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.engine.SetClaimQueueFlag(ceoAddr, false))
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.ErrorIs(t, err, ErrClaimQueueDisabled)
}

func TestSubmitClaimOneInFlightPerSubmitter(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)
	_, err = env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.ErrorIs(t, err, ErrEntityAlreadyExists)
}

func TestSubmitClaimRejectsUnknownHospitalType(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	fields := validClaimFields()
	fields.HospitalType = HospitalType(9)
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, fields)
	require.ErrorIs(t, err, ErrHospitalTypeInvalid)
}

func TestSubmitClaimChargesFlatFee(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	require.Len(t, env.collector.charges, 1)
	charged := env.collector.charges[0]
	require.Equal(t, submitterAddr, charged.payer)
	require.Equal(t, treasurerAddr, charged.payee)
	require.Equal(t, "USDC", charged.token)
	// 0.04 USD at six decimals.
	require.Equal(t, big.NewInt(40000), charged.amount)
}

func TestSubmitClaimFeeFailureAborts(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.collector.err = errors.New("insufficient balance")

	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.Error(t, err)

	_, found, getErr := env.state.ClaimGet(submitterAddr)
	require.NoError(t, getErr)
	require.False(t, found)
	require.Zero(t, env.state.queue.CurrentClaimQueueCount)
	require.Zero(t, env.state.queue.SubmittedClaimCount)
}

func TestAssignClaimMutualExclusion(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()

	other := addr(11)
	require.NoError(t, env.engine.CreateSubmitterAccount(other))
	require.NoError(t, env.engine.CreatePatientAccount(other, "Al", "Roe"))
	_, err := env.engine.SubmitClaim(other, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	// A busy processor cannot take a second claim, and an assigned claim
	// cannot be taken by a second processor.
	require.ErrorIs(t, env.engine.AssignClaim(processorAddr, other), ErrProcessorAlreadyWorkingOnClaim)
	secondProcessor := addr(21)
	require.NoError(t, env.engine.CreateProcessorAccount(ceoAddr, secondProcessor))
	require.ErrorIs(t, env.engine.AssignClaim(secondProcessor, submitterAddr), ErrClaimAlreadyAssigned)
}

func TestUnassignClaimReturnsToPending(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.SetProcessorPrivilege(ceoAddr, processorAddr, true))

	require.NoError(t, env.engine.UnassignClaim(processorAddr, submitterAddr))

	claim := env.state.claims[submitterAddr]
	require.Equal(t, StatusPending, claim.Status)
	require.Equal(t, zeroAddress, claim.ProcessorAddress)
	require.False(t, env.state.processors[processorAddr].IsProcessingClaim)
}

func TestReassignClaimMovesBusyFlagToNewProcessor(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()

	adminAddr := addr(30)
	require.NoError(t, env.engine.CreateProcessorAccount(ceoAddr, adminAddr))
	require.NoError(t, env.engine.SetProcessorPrivilege(ceoAddr, adminAddr, true))

	require.NoError(t, env.engine.ReassignClaim(adminAddr, submitterAddr))

	claim := env.state.claims[submitterAddr]
	require.Equal(t, adminAddr, claim.ProcessorAddress)
	require.Equal(t, StatusProcessing, claim.Status)
	require.True(t, env.state.processors[adminAddr].IsProcessingClaim)
	require.Equal(t, submitterAddr, env.state.processors[adminAddr].ClaimSubmitterAddress)
	require.False(t, env.state.processors[processorAddr].IsProcessingClaim)
	require.Equal(t, zeroAddress, env.state.processors[processorAddr].ClaimSubmitterAddress)
	require.Equal(t, uint64(2), env.state.pStats.SetOrUnsetProcessorOnClaimCount)

	// The caller's busy flag is checked before the claim is touched, so the
	// new holder bounces off its own claim.
	require.ErrorIs(t, env.engine.ReassignClaim(adminAddr, submitterAddr), ErrProcessorAlreadyWorkingOnClaim)
}

func TestReassignClaimRequiresAssignedClaim(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.engine.SetProcessorPrivilege(ceoAddr, processorAddr, true))
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	require.ErrorIs(t, env.engine.ReassignClaim(processorAddr, submitterAddr), ErrClaimNotAssigned)
}

func TestSetPatientFlagRejectsNoOp(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.ErrorIs(t, env.engine.SetPatientFlag(submitterAddr, 0, true), ErrFlagSameState)
	require.NoError(t, env.engine.SetPatientFlag(submitterAddr, 0, false))
	require.Zero(t, env.state.submitters[submitterAddr].ActivePatientCount)
}

func TestCreatePatientRecordOrdering(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))

	require.NoError(t, env.engine.CreatePatientRecord(processorAddr, submitterAddr))
	require.ErrorIs(t, env.engine.CreatePatientRecord(processorAddr, submitterAddr), ErrRecordAlreadyCreated)

	record := env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}]
	require.NotNil(t, record)
	require.Equal(t, uint32(0), record.RecordIndex)
	require.Equal(t, uint32(1), record.RecordID)
	require.True(t, record.PatientRecordOnly)
	require.Equal(t, StatusProcessing, record.Status)
	require.Equal(t, uint32(1), env.state.patients[patientKey{submitterAddr, 0}].RecordCount)
}

func TestSupportingRecordsRequirePatientRecord(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))

	require.ErrorIs(t, env.engine.CreateHospitalAndInsuranceCompanyRecords(processorAddr, submitterAddr), ErrRecordNotCreated)
	require.NoError(t, env.engine.CreatePatientRecord(processorAddr, submitterAddr))
	require.NoError(t, env.engine.CreateHospitalAndInsuranceCompanyRecords(processorAddr, submitterAddr))
	require.ErrorIs(t, env.engine.CreateHospitalAndInsuranceCompanyRecords(processorAddr, submitterAddr), ErrRecordAlreadyCreated)

	require.False(t, env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].PatientRecordOnly)
}

func TestHospitalTypeBucketsTrackEdits(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))

	require.Equal(t, uint32(1), env.state.hStats.GeneralHospitalCount)

	edited := validHospitalFields()
	edited.Type = HospitalDental
	require.NoError(t, env.engine.EditHospital(ceoAddr, 1, 5, 0, true, edited))

	require.Zero(t, env.state.hStats.GeneralHospitalCount)
	require.Equal(t, uint32(1), env.state.hStats.DentalHospitalCount)
	region := env.state.states[stateKey{1, 5}]
	require.Zero(t, region.GeneralHospitalCount)
	require.Equal(t, uint32(1), region.DentalHospitalCount)
}
