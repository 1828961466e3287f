package claims

import "errors"

// Authorization errors.
var (
	ErrNotCEO                       = errors.New("claims: only the ceo can call this function")
	ErrNotTreasurer                 = errors.New("claims: only the treasurer can call this function")
	ErrNotSuperAdminOrCEO           = errors.New("claims: only a super admin or the ceo can call this function")
	ErrNotActiveProcessor           = errors.New("claims: only an active processor can call this function")
	ErrNotTheProcessor              = errors.New("claims: only the person who is processing the claim can call this function")
	ErrNotSubmitter                 = errors.New("claims: only the submitter can call this function")
	ErrClaimAlreadyHasProcessor     = errors.New("claims: a claim can only have one processor")
	ErrProcessorAlreadyWorkingOnClaim = errors.New("claims: a processor can only assign themselves to one claim at a time")
)

// Invalid-operation errors.
var (
	ErrNoRatFuckeryAllowed     = errors.New("claims: you're doing something the ui never would have allowed")
	ErrTooManyClaimsInQueue    = errors.New("claims: the claim queue is full")
	ErrClaimQueueDisabled      = errors.New("claims: claim queue is currently disabled")
	ErrFlagSameState           = errors.New("claims: can't set flag to the same state")
	ErrRecordAlreadyCreated    = errors.New("claims: record has already been created")
	ErrRecordNotCreated        = errors.New("claims: record hasn't been created yet")
	ErrClaimAlreadyAssigned    = errors.New("claims: claim must not be assigned to assign it")
	ErrClaimNotAssigned        = errors.New("claims: claim must be assigned to unassign or reassign it")
	ErrClaimNotPending         = errors.New("claims: claim must be in a pending state to max deny it")
	ErrClaimNotBeingProcessed  = errors.New("claims: claim must be being processed already")
	ErrClaimNotDenied          = errors.New("claims: claim must be in a denied state to appeal it")
	ErrClaimNotAppealed        = errors.New("claims: can't deny appeal of a claim that isn't in an appealed state")
	ErrClaimNotDeniedOrAppealed = errors.New("claims: claim must be in a denied or appealed state to undeny it")
	ErrClaimNotApproved        = errors.New("claims: claim must be in an approved state to revoke approval")
	ErrAlreadyInitialized      = errors.New("claims: already initialized")
	ErrNotInitialized          = errors.New("claims: not initialized")
	ErrEntityNotFound          = errors.New("claims: entity not found")
	ErrEntityAlreadyExists     = errors.New("claims: entity already exists")
	ErrCounterOverflow         = errors.New("claims: counter overflow")
	ErrCounterUnderflow        = errors.New("claims: counter underflow")
)

// Invalid-length errors.
var (
	ErrPatientFirstNameTooLong          = errors.New("claims: patient first name can't be longer than 52 characters")
	ErrPatientLastNameTooLong           = errors.New("claims: patient last name can't be longer than 52 characters")
	ErrHospitalNameTooLong              = errors.New("claims: hospital name can't be longer than 50 characters")
	ErrHospitalAddressTooLong           = errors.New("claims: hospital address can't be longer than 100 characters")
	ErrHospitalCityTooLong              = errors.New("claims: hospital city can't be longer than 40 characters")
	ErrHospitalPhoneNumberTooLong       = errors.New("claims: hospital phone number can't be longer than 20 characters")
	ErrHospitalBillInvoiceNumberTooLong = errors.New("claims: hospital bill invoice number can't be longer than 20 characters")
	ErrAilmentTooLong                   = errors.New("claims: ailment can't be longer than 45 characters")
	ErrNoteTooLong                      = errors.New("claims: note can't be longer than 144 characters")
	ErrInsuranceCompanyNameTooLong      = errors.New("claims: insurance company name can't be longer than 35 characters")
)

// Invalid-type errors.
var (
	ErrHospitalTypeInvalid = errors.New("claims: hospital type must be general, dental, vision, or mental")
)

var errNilState = errors.New("claims engine: state not configured")
