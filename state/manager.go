package state

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"

	"m4aledger/native/claims"
	"m4aledger/native/fees"
	"m4aledger/native/roles"
	"m4aledger/storage"
)

// Manager is the production persistence layer behind every engine. Entities
// are stored under keccak-derived keys so lookups stay O(1) regardless of how
// the backing store orders them, and values are JSON so the schema can grow
// without a migration.
type Manager struct {
	db storage.Database
}

// NewManager wraps a key-value database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func entityKey(namespace string, parts ...[]byte) []byte {
	buf := []byte(namespace)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return crypto.Keccak256(buf)
}

func u8(v uint8) []byte { return []byte{v} }

func u16(v uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, v)
	return out
}

func u32(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

func u64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

func (m *Manager) getJSON(key []byte, out any) (bool, error) {
	raw, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) putJSON(key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, raw)
}

// --- singletons ---

func (m *Manager) ProtocolGet() (*claims.Protocol, bool, error) {
	var protocol claims.Protocol
	found, err := m.getJSON(entityKey("claims/protocol"), &protocol)
	if !found || err != nil {
		return nil, false, err
	}
	return &protocol, true, nil
}

func (m *Manager) ProtocolPut(protocol *claims.Protocol) error {
	return m.putJSON(entityKey("claims/protocol"), protocol)
}

func (m *Manager) ClaimQueueGet() (*claims.ClaimQueue, bool, error) {
	var queue claims.ClaimQueue
	found, err := m.getJSON(entityKey("claims/queue"), &queue)
	if !found || err != nil {
		return nil, false, err
	}
	return &queue, true, nil
}

func (m *Manager) ClaimQueuePut(queue *claims.ClaimQueue) error {
	return m.putJSON(entityKey("claims/queue"), queue)
}

func (m *Manager) ProcessorStatsGet() (*claims.ProcessorStats, bool, error) {
	var stats claims.ProcessorStats
	found, err := m.getJSON(entityKey("claims/stats/processor"), &stats)
	if !found || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (m *Manager) ProcessorStatsPut(stats *claims.ProcessorStats) error {
	return m.putJSON(entityKey("claims/stats/processor"), stats)
}

func (m *Manager) HospitalStatsGet() (*claims.HospitalStats, bool, error) {
	var stats claims.HospitalStats
	found, err := m.getJSON(entityKey("claims/stats/hospital"), &stats)
	if !found || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (m *Manager) HospitalStatsPut(stats *claims.HospitalStats) error {
	return m.putJSON(entityKey("claims/stats/hospital"), stats)
}

func (m *Manager) InsuranceCompanyStatsGet() (*claims.InsuranceCompanyStats, bool, error) {
	var stats claims.InsuranceCompanyStats
	found, err := m.getJSON(entityKey("claims/stats/insurance_company"), &stats)
	if !found || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (m *Manager) InsuranceCompanyStatsPut(stats *claims.InsuranceCompanyStats) error {
	return m.putJSON(entityKey("claims/stats/insurance_company"), stats)
}

// --- identities ---

func (m *Manager) SubmitterGet(addr [20]byte) (*claims.Submitter, bool, error) {
	var submitter claims.Submitter
	found, err := m.getJSON(entityKey("claims/submitter", addr[:]), &submitter)
	if !found || err != nil {
		return nil, false, err
	}
	return &submitter, true, nil
}

func (m *Manager) SubmitterPut(submitter *claims.Submitter) error {
	return m.putJSON(entityKey("claims/submitter", submitter.Address[:]), submitter)
}

func (m *Manager) PatientGet(submitter [20]byte, patientIndex uint8) (*claims.Patient, bool, error) {
	var patient claims.Patient
	found, err := m.getJSON(entityKey("claims/patient", submitter[:], u8(patientIndex)), &patient)
	if !found || err != nil {
		return nil, false, err
	}
	return &patient, true, nil
}

func (m *Manager) PatientPut(patient *claims.Patient) error {
	return m.putJSON(entityKey("claims/patient", patient.SubmitterAddress[:], u8(patient.Index)), patient)
}

func (m *Manager) ProcessorGet(addr [20]byte) (*claims.Processor, bool, error) {
	var processor claims.Processor
	found, err := m.getJSON(entityKey("claims/processor", addr[:]), &processor)
	if !found || err != nil {
		return nil, false, err
	}
	return &processor, true, nil
}

func (m *Manager) ProcessorPut(processor *claims.Processor) error {
	return m.putJSON(entityKey("claims/processor", processor.Address[:]), processor)
}

// --- reference entities ---

func (m *Manager) StateGet(countryIndex uint16, stateIndex uint32) (*claims.State, bool, error) {
	var region claims.State
	found, err := m.getJSON(entityKey("claims/state", u16(countryIndex), u32(stateIndex)), &region)
	if !found || err != nil {
		return nil, false, err
	}
	return &region, true, nil
}

func (m *Manager) StatePut(region *claims.State) error {
	return m.putJSON(entityKey("claims/state", u16(region.CountryIndex), u32(region.StateIndex)), region)
}

func (m *Manager) HospitalGet(countryIndex uint16, stateIndex uint32, hospitalIndex uint32) (*claims.Hospital, bool, error) {
	var hospital claims.Hospital
	found, err := m.getJSON(entityKey("claims/hospital", u16(countryIndex), u32(stateIndex), u32(hospitalIndex)), &hospital)
	if !found || err != nil {
		return nil, false, err
	}
	return &hospital, true, nil
}

func (m *Manager) HospitalPut(hospital *claims.Hospital) error {
	return m.putJSON(entityKey("claims/hospital", u16(hospital.CountryIndex), u32(hospital.StateIndex), u32(hospital.HospitalIndex)), hospital)
}

func (m *Manager) InsuranceCompanyGet(index uint16) (*claims.InsuranceCompany, bool, error) {
	var company claims.InsuranceCompany
	found, err := m.getJSON(entityKey("claims/insurance_company", u16(index)), &company)
	if !found || err != nil {
		return nil, false, err
	}
	return &company, true, nil
}

func (m *Manager) InsuranceCompanyPut(company *claims.InsuranceCompany) error {
	return m.putJSON(entityKey("claims/insurance_company", u16(company.Index)), company)
}

// --- claims and records ---

func (m *Manager) ClaimGet(submitter [20]byte) (*claims.Claim, bool, error) {
	var claim claims.Claim
	found, err := m.getJSON(entityKey("claims/claim", submitter[:]), &claim)
	if !found || err != nil {
		return nil, false, err
	}
	return &claim, true, nil
}

func (m *Manager) ClaimPut(claim *claims.Claim) error {
	return m.putJSON(entityKey("claims/claim", claim.SubmitterAddress[:]), claim)
}

func (m *Manager) ClaimDelete(submitter [20]byte) error {
	return m.db.Delete(entityKey("claims/claim", submitter[:]))
}

func (m *Manager) ProcessedClaimGet(processor [20]byte, countIndex uint64) (*claims.ProcessedClaim, bool, error) {
	var processed claims.ProcessedClaim
	found, err := m.getJSON(entityKey("claims/processed_claim", processor[:], u64(countIndex)), &processed)
	if !found || err != nil {
		return nil, false, err
	}
	return &processed, true, nil
}

func (m *Manager) ProcessedClaimPut(claim *claims.ProcessedClaim) error {
	return m.putJSON(entityKey("claims/processed_claim", claim.ProcessorAddress[:], u64(claim.ProcessorCountIndex)), claim)
}

func (m *Manager) PatientRecordGet(submitter [20]byte, patientIndex uint8, recordIndex uint32) (*claims.PatientRecord, bool, error) {
	var record claims.PatientRecord
	found, err := m.getJSON(entityKey("claims/patient_record", submitter[:], u8(patientIndex), u32(recordIndex)), &record)
	if !found || err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (m *Manager) PatientRecordPut(record *claims.PatientRecord) error {
	return m.putJSON(entityKey("claims/patient_record", record.SubmitterAddress[:], u8(record.PatientIndex), u32(record.RecordIndex)), record)
}

func (m *Manager) HospitalRecordGet(countryIndex uint16, stateIndex uint32, hospitalIndex uint32, recordIndex uint64) (*claims.HospitalRecord, bool, error) {
	var record claims.HospitalRecord
	found, err := m.getJSON(entityKey("claims/hospital_record", u16(countryIndex), u32(stateIndex), u32(hospitalIndex), u64(recordIndex)), &record)
	if !found || err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (m *Manager) HospitalRecordPut(record *claims.HospitalRecord) error {
	return m.putJSON(entityKey("claims/hospital_record", u16(record.CountryIndex), u32(record.StateIndex), u32(record.HospitalIndex), u64(record.RecordIndex)), record)
}

func (m *Manager) InsuranceCompanyRecordGet(companyIndex uint16, recordIndex uint64) (*claims.InsuranceCompanyRecord, bool, error) {
	var record claims.InsuranceCompanyRecord
	found, err := m.getJSON(entityKey("claims/insurance_company_record", u16(companyIndex), u64(recordIndex)), &record)
	if !found || err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (m *Manager) InsuranceCompanyRecordPut(record *claims.InsuranceCompanyRecord) error {
	return m.putJSON(entityKey("claims/insurance_company_record", u16(record.InsuranceCompanyIndex), u64(record.RecordIndex)), record)
}

// --- roles ---

func (m *Manager) RoleRegistryGet() (*roles.Registry, bool, error) {
	var registry roles.Registry
	found, err := m.getJSON(entityKey("roles/registry"), &registry)
	if !found || err != nil {
		return nil, false, err
	}
	return &registry, true, nil
}

func (m *Manager) RoleRegistryPut(registry *roles.Registry) error {
	return m.putJSON(entityKey("roles/registry"), registry)
}

// --- fees ---

func (m *Manager) FeeTokenEntryGet(token string) (*fees.TokenEntry, bool, error) {
	var entry fees.TokenEntry
	found, err := m.getJSON(entityKey("fees/token", []byte(token)), &entry)
	if !found || err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (m *Manager) FeeTokenEntryPut(entry *fees.TokenEntry) error {
	return m.putJSON(entityKey("fees/token", []byte(entry.Token)), entry)
}

func (m *Manager) FeeTokenEntryDelete(token string) error {
	return m.db.Delete(entityKey("fees/token", []byte(token)))
}
