package claims

// SubmitClaim files a new claim on behalf of one of the caller's patients.
// The claim enters the queue in pending status and the flat fee is debited
// from the caller to the treasury. A submitter can have one in-flight claim
// at a time.
func (e *Engine) SubmitClaim(caller [20]byte, patientIndex uint8, feeToken string,
	countryIndex uint16, stateIndex uint32, hospitalIndex int32,
	insuranceCompanyIndex int16, fields ClaimFields) (*Claim, error) {
	if e.state == nil {
		return nil, errNilState
	}
	queue, err := e.requireQueue()
	if err != nil {
		return nil, err
	}
	if !queue.Enabled {
		return nil, ErrClaimQueueDisabled
	}
	if queue.CurrentClaimQueueCount+1 > queue.QueueSizeLimit {
		return nil, ErrTooManyClaimsInQueue
	}
	if err := validateClaimFields(fields); err != nil {
		return nil, err
	}
	if _, found, err := e.state.ClaimGet(caller); err != nil {
		return nil, err
	} else if found {
		return nil, ErrEntityAlreadyExists
	}
	submitter, err := e.requireSubmitter(caller)
	if err != nil {
		return nil, err
	}
	patient, err := e.requirePatient(caller, patientIndex)
	if err != nil {
		return nil, err
	}

	if err := incChecked(&queue.SubmittedClaimCount); err != nil {
		return nil, err
	}
	if err := incChecked(&queue.CurrentClaimQueueCount); err != nil {
		return nil, err
	}
	if err := incChecked(&submitter.SubmittedClaimCount); err != nil {
		return nil, err
	}
	if err := incChecked(&patient.SubmittedClaimCount); err != nil {
		return nil, err
	}

	claim := &Claim{
		ID:                        queue.SubmittedClaimCount,
		Status:                    StatusPending,
		SubmitterAddress:          caller,
		PatientIndex:              patientIndex,
		CountryIndex:              countryIndex,
		StateIndex:                stateIndex,
		HospitalIndex:             hospitalIndex,
		HospitalType:              fields.HospitalType,
		HospitalName:              fields.HospitalName,
		HospitalAddress:           fields.HospitalAddress,
		HospitalCity:              fields.HospitalCity,
		HospitalZipCode:           fields.HospitalZipCode,
		HospitalPhoneNumber:       fields.HospitalPhoneNumber,
		HospitalBillInvoiceNumber: fields.HospitalBillInvoiceNumber,
		Note:                      fields.Note,
		ClaimAmount:               fields.ClaimAmount,
		Ailment:                   fields.Ailment,
		SubmittedTime:             e.nowFn(),
		InsuranceCompanyIndex:     insuranceCompanyIndex,
		InsuranceCompanyName:      fields.InsuranceCompanyName,
	}

	feeAmount, err := e.chargeFee(caller, feeToken)
	if err != nil {
		return nil, err
	}

	if err := persistAll(
		func() error { return e.state.ClaimQueuePut(queue) },
		func() error { return e.state.SubmitterPut(submitter) },
		func() error { return e.state.PatientPut(patient) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return nil, err
	}
	e.emitter.Emit(claimSubmittedEvent(claim, queue, feeAmount))
	return claim, nil
}
