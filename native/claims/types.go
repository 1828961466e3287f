package claims

// ClaimStatus tracks where a claim sits in its lifecycle. The values are
// stable and persisted, never renumber.
type ClaimStatus uint8

const (
	StatusPending ClaimStatus = iota
	StatusProcessing
	StatusApproved
	StatusDenied
	StatusAppealed
)

// Valid reports whether the status is a known lifecycle state.
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusDenied, StatusAppealed:
		return true
	default:
		return false
	}
}

// String renders the status for logs and events.
func (s ClaimStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusApproved:
		return "approved"
	case StatusDenied:
		return "denied"
	case StatusAppealed:
		return "appealed"
	default:
		return "unknown"
	}
}

// HospitalType classifies a hospital for the per-type count buckets.
type HospitalType uint8

const (
	HospitalGeneral HospitalType = iota
	HospitalDental
	HospitalVision
	HospitalMental
)

// Valid reports whether the type is a member of the four-value enum.
func (t HospitalType) Valid() bool {
	return t <= HospitalMental
}

// String renders the hospital type for logs and events.
func (t HospitalType) String() string {
	switch t {
	case HospitalGeneral:
		return "general"
	case HospitalDental:
		return "dental"
	case HospitalVision:
		return "vision"
	case HospitalMental:
		return "mental"
	default:
		return "unknown"
	}
}

// Field-length ceilings enforced at intake and on every edit.
const (
	MaxPatientNameLen          = 52
	MaxHospitalNameLen         = 50
	MaxHospitalAddressLen      = 100
	MaxHospitalCityLen         = 40
	MaxPhoneNumberLen          = 20
	MaxInvoiceNumberLen        = 20
	MaxAilmentLen              = 45
	MaxNoteLen                 = 144
	MaxInsuranceCompanyNameLen = 35
)

// DefaultQueueSizeLimit bounds in-flight claims until the CEO resizes it.
const DefaultQueueSizeLimit uint32 = 100

// Protocol is the singleton bookkeeping record for entity creation totals.
type Protocol struct {
	InitiatorAddress      [20]byte
	SubmitterAccountTotal uint64
	PatientAccountTotal   uint64
	StateAccountTotal     uint32
}

// ClaimQueue bounds the number of in-flight claims and is the monotonic
// source of claim ids.
type ClaimQueue struct {
	SubmittedClaimCount    uint64
	CurrentClaimQueueCount uint32
	QueueSizeLimit         uint32
	Enabled                bool
}

// ProcessorStats is the global rollup of processor activity.
type ProcessorStats struct {
	ProcessorAccountTotal           uint64
	ProcessorActiveAccountTotal     uint64
	ProcessorSuperAdminAccountTotal uint64
	// Assignment churn counter consumed by off-ledger indexers.
	SetOrUnsetProcessorOnClaimCount                    uint64
	EditedProcessorCount                               uint32
	CreatedPatientRecordCount                          uint64
	CreatedHospitalAndInsuranceCompanyRecordsCount     uint64
	ProcessedClaimCount                                uint64
	EditedClaimOrProcessedClaimCount                   uint64
	ApprovedClaimAmount                                uint64
	ApprovedClaimCount                                 uint64
	MaxDeniedClaimCount                                uint64
	DeniedClaimCount                                   uint64
	UndeniedClaimCount                                 uint64
	SubmittedAppealCount                               uint64
	DeniedAppealCount                                  uint64
	RevokedApprovalCount                               uint64
	DenialHammerDroppedCount                           uint64
}

// HospitalStats is the global rollup of hospital registry activity.
type HospitalStats struct {
	HospitalCount        uint32
	GeneralHospitalCount uint32
	DentalHospitalCount  uint32
	VisionHospitalCount  uint32
	MentalHospitalCount  uint32
	EditedHospitalCount  uint32
}

// InsuranceCompanyStats is the global rollup of the insurer registry.
type InsuranceCompanyStats struct {
	InitializedInsuranceCompanyCount uint16
	AdditionalInsuranceCompanyCount  uint16
	EditedInsuranceCompanyCount      uint32
}

// Submitter is the per-filer identity record. One per unique owner address.
type Submitter struct {
	ID                  uint64
	Address             [20]byte
	ActivePatientCount  uint8
	PatientCount        uint8
	SubmittedClaimCount uint32
	ApprovedClaimAmount uint64
	ApprovedClaimCount  uint32
	MaxDeniedClaimCount uint32
	DeniedClaimCount    uint32
	UndeniedClaimCount  uint32
	SubmittedAppealCount uint32
	DeniedAppealCount    uint32
	RevokedApprovalCount uint32
}

// Patient is a dependent of a submitter, indexed 0..n under that submitter.
type Patient struct {
	ID               uint64
	SubmitterAddress [20]byte
	Index            uint8
	IsActive         bool
	FirstName        string
	LastName         string
	RecordCount      uint32
	// Edit counter consumed by off-ledger indexers.
	EditedRecordCount    uint32
	SubmittedClaimCount  uint32
	ApprovedClaimAmount  uint64
	ApprovedClaimCount   uint32
	MaxDeniedClaimCount  uint32
	DeniedClaimCount     uint32
	UndeniedClaimCount   uint32
	SubmittedAppealCount uint32
	DeniedAppealCount    uint32
	RevokedApprovalCount uint32
}

// Processor is a claim reviewer identity. Created only by the CEO.
type Processor struct {
	ID           uint64
	Address      [20]byte
	IsActive     bool
	IsSuperAdmin bool
	IsProcessingClaim bool
	// Submitter address of the claim currently being worked, zero when idle.
	ClaimSubmitterAddress              [20]byte
	CreatedPatientRecordCount          uint64
	CreatedHospitalCount               uint64
	CreatedHospitalRecordCount         uint64
	CreatedInsuranceCompanyCount       uint16
	CreatedInsuranceCompanyRecordCount uint32
	ProcessedClaimCount                uint64
	ApprovedClaimAmount                uint64
	ApprovedClaimCount                 uint64
	MaxDeniedClaimCount                uint64
	DeniedClaimCount                   uint64
	UndeniedClaimCount                 uint64
	DeniedAppealCount                  uint64
	RevokedApprovalCount               uint64
	DenialHammerDroppedCount           uint64
}

// State is a regional rollup keyed by (countryIndex, stateIndex), created
// lazily by a processor while working a claim.
type State struct {
	ID                   uint32
	CountryIndex         uint16
	StateIndex           uint32
	ApprovedClaimAmount  uint64
	ApprovedClaimCount   uint64
	DeniedClaimCount     uint64
	UndeniedClaimCount   uint64
	SubmittedAppealCount uint64
	DeniedAppealCount    uint64
	RevokedApprovalCount uint64
	HospitalCount        uint32
	GeneralHospitalCount uint32
	DentalHospitalCount  uint32
	VisionHospitalCount  uint32
	MentalHospitalCount  uint32
	EditedHospitalCount  uint32
}

// Hospital is a lazily created reference entity scoped under a region.
type Hospital struct {
	ID            uint32
	IsActive      bool
	CountryIndex  uint16
	StateIndex    uint32
	HospitalIndex uint32
	Type          HospitalType
	Longitude     float64
	Latitude      float64
	Name          string
	Address       string
	City          string
	ZipCode       uint32
	PhoneNumber   string
	Note          string
	RecordCount   uint64
	// Edit counter consumed by off-ledger indexers.
	EditedRecordCount    uint32
	ApprovedClaimAmount  uint64
	ApprovedClaimCount   uint64
	DeniedClaimCount     uint64
	UndeniedClaimCount   uint64
	SubmittedAppealCount uint64
	DeniedAppealCount    uint64
	RevokedApprovalCount uint64
}

// InsuranceCompany is a lazily created reference entity indexed globally.
type InsuranceCompany struct {
	ID          uint16
	Index       uint16
	IsActive    bool
	Name        string
	Note        string
	RecordCount uint64
	// Edit counter consumed by off-ledger indexers.
	EditedRecordCount    uint32
	ApprovedClaimAmount  uint64
	ApprovedClaimCount   uint64
	DeniedClaimCount     uint64
	UndeniedClaimCount   uint64
	SubmittedAppealCount uint64
	DeniedAppealCount    uint64
	RevokedApprovalCount uint64
}

// Claim is the in-flight filing. It is deleted from state the moment it
// reaches any terminal resolution; a ProcessedClaim (when one is produced)
// becomes the authoritative record.
type Claim struct {
	ID                            uint64
	Status                        ClaimStatus
	PatientRecordCreated          bool
	HospitalRecordCreated         bool
	InsuranceCompanyRecordCreated bool
	PatientRecordIndex            uint32
	HospitalRecordIndex           uint64
	InsuranceCompanyRecordIndex   uint64
	SubmitterAddress              [20]byte
	ProcessorAddress              [20]byte
	PatientIndex                  uint8
	CountryIndex                  uint16
	StateIndex                    uint32
	// Negative until a processor attaches a hospital to the claim.
	HospitalIndex             int32
	HospitalType              HospitalType
	HospitalName              string
	HospitalAddress           string
	HospitalCity              string
	HospitalZipCode           uint32
	HospitalPhoneNumber       string
	HospitalBillInvoiceNumber string
	Note                      string
	ClaimAmount               uint64
	Ailment                   string
	SubmittedTime             int64
	// Negative until a processor attaches an insurer to the claim.
	InsuranceCompanyIndex int16
	InsuranceCompanyName  string
}

// ProcessedClaim is the permanent resolution record, keyed by the resolving
// processor and that processor's running resolution index.
type ProcessedClaim struct {
	ProcessedClaimID              uint64
	ClaimID                       uint64
	ProcessorCountIndex           uint64
	Status                        ClaimStatus
	DenialReason                  string
	AppealReason                  string
	PatientRecordCreated          bool
	HospitalRecordCreated         bool
	InsuranceCompanyRecordCreated bool
	PatientRecordIndex            uint32
	HospitalRecordIndex           uint64
	InsuranceCompanyRecordIndex   uint64
	ProcessorAddress              [20]byte
	SubmitterAddress              [20]byte
	PatientIndex                  uint8
	CountryIndex                  uint16
	StateIndex                    uint32
	HospitalIndex                 int32
	HospitalType                  HospitalType
	HospitalName                  string
	HospitalAddress               string
	HospitalCity                  string
	HospitalZipCode               uint32
	HospitalPhoneNumber           string
	HospitalBillInvoiceNumber     string
	Note                          string
	ClaimAmount                   uint64
	Ailment                       string
	SubmittedTime                 int64
	ProcessedTime                 int64
	InsuranceCompanyIndex         int16
	InsuranceCompanyName          string
}

// PatientRecord is the per-claim snapshot scoped under a patient. It may
// exist alone before the hospital and insurer records do; that partial state
// is itself valid and appealable.
type PatientRecord struct {
	RecordID            uint32
	RecordIndex         uint32
	ClaimID             uint64
	Status              ClaimStatus
	PatientRecordOnly   bool
	DenialReason        string
	AppealReason        string
	SubmitterAddress    [20]byte
	PatientIndex        uint8
	ProcessorAddress    [20]byte
	ProcessorCountIndex uint64
	CountryIndex        uint16
	StateIndex          uint32
	HospitalIndex       uint32
	InsuranceCompanyIndex     uint16
	HospitalBillInvoiceNumber string
	ClaimAmount               uint64
	Ailment                   string
	Note                      string
	SubmittedTime             int64
	ProcessedTime             int64
}

// HospitalRecord is the per-claim snapshot scoped under a hospital.
type HospitalRecord struct {
	RecordID            uint64
	RecordIndex         uint64
	HospitalIndex       uint32
	ClaimID             uint64
	Status              ClaimStatus
	DenialReason        string
	AppealReason        string
	SubmitterAddress    [20]byte
	PatientIndex        uint8
	ProcessorAddress    [20]byte
	ProcessorCountIndex uint64
	CountryIndex        uint16
	StateIndex          uint32
	InsuranceCompanyIndex     uint16
	HospitalBillInvoiceNumber string
	ClaimAmount               uint64
	Ailment                   string
	Note                      string
	SubmittedTime             int64
	ProcessedTime             int64
}

// InsuranceCompanyRecord is the per-claim snapshot scoped under an insurer.
type InsuranceCompanyRecord struct {
	RecordID              uint64
	RecordIndex           uint64
	InsuranceCompanyIndex uint16
	ClaimID               uint64
	Status              ClaimStatus
	DenialReason        string
	AppealReason        string
	SubmitterAddress    [20]byte
	PatientIndex        uint8
	ProcessorAddress    [20]byte
	ProcessorCountIndex uint64
	CountryIndex        uint16
	StateIndex          uint32
	HospitalIndex             uint32
	HospitalBillInvoiceNumber string
	ClaimAmount               uint64
	Ailment                   string
	Note                      string
	SubmittedTime             int64
	ProcessedTime             int64
}
