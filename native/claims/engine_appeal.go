package claims

// The appeal surface operates on processed claims and their records: the
// in-flight claim is already deleted by the time any of these run. Everything
// is located from the patient record, whose processor address and count index
// lead back to the processed claim.

// appealContext gathers what every appeal-surface operation needs.
type appealContext struct {
	stats         *ProcessorStats
	submitter     *Submitter
	patient       *Patient
	patientRecord *PatientRecord
	processed     *ProcessedClaim
	processor     *Processor
	region        *State
}

func (e *Engine) loadAppealContext(submitterAddr [20]byte, patientIndex uint8, recordIndex uint32) (*appealContext, error) {
	stats, err := e.requireProcessorStats()
	if err != nil {
		return nil, err
	}
	submitter, err := e.requireSubmitter(submitterAddr)
	if err != nil {
		return nil, err
	}
	patient, err := e.requirePatient(submitterAddr, patientIndex)
	if err != nil {
		return nil, err
	}
	patientRecord, err := e.requirePatientRecord(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return nil, err
	}
	processed, err := e.requireProcessedClaim(patientRecord.ProcessorAddress, patientRecord.ProcessorCountIndex)
	if err != nil {
		return nil, err
	}
	processor, found, err := e.state.ProcessorGet(patientRecord.ProcessorAddress)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEntityNotFound
	}
	region, err := e.requireState(processed.CountryIndex, processed.StateIndex)
	if err != nil {
		return nil, err
	}
	return &appealContext{
		stats: stats, submitter: submitter, patient: patient,
		patientRecord: patientRecord, processed: processed,
		processor: processor, region: region,
	}, nil
}

// loadAppealRecords loads the hospital, insurer and their two records from
// the processed claim's indexes, for the all-records appeal surface.
func (e *Engine) loadAppealRecords(processed *ProcessedClaim) (*Hospital, *InsuranceCompany, *HospitalRecord, *InsuranceCompanyRecord, error) {
	hospital, err := e.requireHospital(processed.CountryIndex, processed.StateIndex, uint32(processed.HospitalIndex))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	company, err := e.requireInsuranceCompany(uint16(processed.InsuranceCompanyIndex))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	hospitalRec, err := e.requireHospitalRecord(processed.CountryIndex, processed.StateIndex, uint32(processed.HospitalIndex), processed.HospitalRecordIndex)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	companyRec, err := e.requireInsuranceCompanyRecord(uint16(processed.InsuranceCompanyIndex), processed.InsuranceCompanyRecordIndex)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return hospital, company, hospitalRec, companyRec, nil
}

// requirePatientOnlyResolution gates the patient-record-only appeal surface:
// calling it against a fully recorded resolution is rejected outright.
func requirePatientOnlyResolution(processed *ProcessedClaim) error {
	if !processed.PatientRecordCreated || processed.HospitalRecordCreated || processed.InsuranceCompanyRecordCreated {
		return ErrNoRatFuckeryAllowed
	}
	return nil
}

// requireFullResolution gates the all-records appeal surface the same way.
func requireFullResolution(processed *ProcessedClaim) error {
	if !processed.PatientRecordCreated || !processed.HospitalRecordCreated || !processed.InsuranceCompanyRecordCreated {
		return ErrNoRatFuckeryAllowed
	}
	return nil
}

// AppealDeniedClaimWithOnlyPatientRecord lets the original submitter appeal a
// denial that produced only a patient record. The flat fee is charged again;
// the processed claim and patient record move to appealed. The resolution
// timestamp is left at the original denial.
func (e *Engine) AppealDeniedClaimWithOnlyPatientRecord(caller [20]byte, patientIndex uint8, recordIndex uint32, feeToken, appealReason string) error {
	if e.state == nil {
		return errNilState
	}
	if err := validateNote(appealReason); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(caller, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.SubmitterAddress != caller {
		return ErrNotSubmitter
	}
	if ac.processed.Status != StatusDenied {
		return ErrClaimNotDenied
	}
	if err := requirePatientOnlyResolution(ac.processed); err != nil {
		return err
	}

	if err := incChecked(&ac.stats.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.submitter.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.patient.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.region.SubmittedAppealCount); err != nil {
		return err
	}

	ac.processed.Status = StatusAppealed
	ac.processed.AppealReason = appealReason
	ac.patientRecord.Status = StatusAppealed
	ac.patientRecord.AppealReason = appealReason

	feeAmount, err := e.chargeFee(caller, feeToken)
	if err != nil {
		return err
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.SubmitterPut(ac.submitter) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimAppealedEvent(ac.processed, feeAmount))
	return nil
}

// DenyAppealedClaimWithOnlyPatientRecord denies a patient-record-only appeal.
// Unlike the all-records variant this carries no role gate; any account can
// settle the appeal, which mirrors the patient-only surface as shipped.
func (e *Engine) DenyAppealedClaimWithOnlyPatientRecord(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32, denialReason string) error {
	if e.state == nil {
		return errNilState
	}
	if err := validateNote(denialReason); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.Status != StatusAppealed {
		return ErrClaimNotAppealed
	}
	if err := requirePatientOnlyResolution(ac.processed); err != nil {
		return err
	}
	now := e.nowFn()

	if err := incChecked(&ac.stats.DeniedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.submitter.DeniedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.patient.DeniedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.processor.DeniedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.region.DeniedAppealCount); err != nil {
		return err
	}

	ac.processed.Status = StatusDenied
	ac.processed.DenialReason = denialReason
	ac.processed.ProcessedTime = now
	ac.patientRecord.Status = StatusDenied
	ac.patientRecord.DenialReason = denialReason
	ac.patientRecord.ProcessedTime = now

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.SubmitterPut(ac.submitter) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.ProcessorPut(ac.processor) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(appealDeniedEvent(ac.processed, caller))
	return nil
}

// AppealDeniedClaimWithAllRecords lets the original submitter appeal a fully
// recorded denial. The flat fee is charged again and the processed claim plus
// all three records move to appealed. The submitter entity's appeal counter
// does not move on this surface; only the patient's does.
func (e *Engine) AppealDeniedClaimWithAllRecords(caller [20]byte, patientIndex uint8, recordIndex uint32, feeToken, appealReason string) error {
	if e.state == nil {
		return errNilState
	}
	if err := validateNote(appealReason); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(caller, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.SubmitterAddress != caller {
		return ErrNotSubmitter
	}
	if ac.processed.Status != StatusDenied {
		return ErrClaimNotDenied
	}
	if err := requireFullResolution(ac.processed); err != nil {
		return err
	}
	hospital, company, hospitalRec, companyRec, err := e.loadAppealRecords(ac.processed)
	if err != nil {
		return err
	}

	if err := incChecked(&ac.stats.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.patient.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.region.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&hospital.SubmittedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&company.SubmittedAppealCount); err != nil {
		return err
	}

	ac.processed.Status = StatusAppealed
	ac.processed.AppealReason = appealReason
	for _, update := range []struct {
		status *ClaimStatus
		reason *string
	}{
		{&ac.patientRecord.Status, &ac.patientRecord.AppealReason},
		{&hospitalRec.Status, &hospitalRec.AppealReason},
		{&companyRec.Status, &companyRec.AppealReason},
	} {
		*update.status = StatusAppealed
		*update.reason = appealReason
	}

	feeAmount, err := e.chargeFee(caller, feeToken)
	if err != nil {
		return err
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.HospitalRecordPut(hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(companyRec) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimAppealedEvent(ac.processed, feeAmount))
	return nil
}

// DenyAppealedClaimWithAllRecords settles a fully recorded appeal as denied.
// CEO only.
func (e *Engine) DenyAppealedClaimWithAllRecords(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32, denialReason string) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if err := validateNote(denialReason); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.Status != StatusAppealed {
		return ErrClaimNotAppealed
	}
	if err := requireFullResolution(ac.processed); err != nil {
		return err
	}
	hospital, company, hospitalRec, companyRec, err := e.loadAppealRecords(ac.processed)
	if err != nil {
		return err
	}
	now := e.nowFn()

	for _, counter := range []*uint64{
		&ac.stats.DeniedAppealCount, &ac.processor.DeniedAppealCount,
		&ac.region.DeniedAppealCount, &hospital.DeniedAppealCount,
		&company.DeniedAppealCount,
	} {
		if err := incChecked(counter); err != nil {
			return err
		}
	}
	if err := incChecked(&ac.submitter.DeniedAppealCount); err != nil {
		return err
	}
	if err := incChecked(&ac.patient.DeniedAppealCount); err != nil {
		return err
	}

	ac.processed.Status = StatusDenied
	ac.processed.DenialReason = denialReason
	ac.processed.ProcessedTime = now
	for _, update := range []struct {
		status *ClaimStatus
		reason *string
		when   *int64
	}{
		{&ac.patientRecord.Status, &ac.patientRecord.DenialReason, &ac.patientRecord.ProcessedTime},
		{&hospitalRec.Status, &hospitalRec.DenialReason, &hospitalRec.ProcessedTime},
		{&companyRec.Status, &companyRec.DenialReason, &companyRec.ProcessedTime},
	} {
		*update.status = StatusDenied
		*update.reason = denialReason
		*update.when = now
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.SubmitterPut(ac.submitter) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.ProcessorPut(ac.processor) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.HospitalRecordPut(hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(companyRec) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(appealDeniedEvent(ac.processed, caller))
	return nil
}

// UndenyClaimWithAllRecords reverses a fully recorded denial or appealed
// denial into an approval: the undenied and approved counters rise, the
// denied counters are walked back, and the amount is added at every scope.
// CEO only.
func (e *Engine) UndenyClaimWithAllRecords(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.Status != StatusDenied && ac.processed.Status != StatusAppealed {
		return ErrClaimNotDeniedOrAppealed
	}
	if err := requireFullResolution(ac.processed); err != nil {
		return err
	}
	hospital, company, hospitalRec, companyRec, err := e.loadAppealRecords(ac.processed)
	if err != nil {
		return err
	}
	now := e.nowFn()

	set := scopeSet{
		stats: ac.stats, submitter: ac.submitter, patient: ac.patient,
		processor: ac.processor, state: ac.region, hospital: hospital,
		insurer: company,
	}
	if err := set.applyUndenial(ac.processed.ClaimAmount); err != nil {
		return err
	}

	ac.processed.Status = StatusApproved
	ac.processed.ProcessedTime = now
	for _, update := range []struct {
		status *ClaimStatus
		when   *int64
	}{
		{&ac.patientRecord.Status, &ac.patientRecord.ProcessedTime},
		{&hospitalRec.Status, &hospitalRec.ProcessedTime},
		{&companyRec.Status, &companyRec.ProcessedTime},
	} {
		*update.status = StatusApproved
		*update.when = now
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.SubmitterPut(ac.submitter) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.ProcessorPut(ac.processor) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.HospitalRecordPut(hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(companyRec) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimUndeniedEvent(ac.processed))
	return nil
}

// UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords reverses a
// patient-record-only denial into an approval and backfills the two missing
// records. The hospital and insurer scopes gain the approval without a
// denied-count walkback since the denial never reached them. CEO only.
func (e *Engine) UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if ac.processed.Status != StatusDenied && ac.processed.Status != StatusAppealed {
		return ErrClaimNotDeniedOrAppealed
	}
	if err := requirePatientOnlyResolution(ac.processed); err != nil {
		return err
	}
	hospital, err := e.requireHospital(ac.processed.CountryIndex, ac.processed.StateIndex, uint32(ac.processed.HospitalIndex))
	if err != nil {
		return err
	}
	company, err := e.requireInsuranceCompany(uint16(ac.processed.InsuranceCompanyIndex))
	if err != nil {
		return err
	}
	now := e.nowFn()

	set := scopeSet{
		stats: ac.stats, submitter: ac.submitter, patient: ac.patient,
		processor: ac.processor, state: ac.region,
	}
	if err := set.applyUndenial(ac.processed.ClaimAmount); err != nil {
		return err
	}
	for _, counter := range []*uint64{
		&hospital.UndeniedClaimCount, &hospital.ApprovedClaimCount,
		&company.UndeniedClaimCount, &company.ApprovedClaimCount,
	} {
		if err := incChecked(counter); err != nil {
			return err
		}
	}
	if err := addChecked(&hospital.ApprovedClaimAmount, ac.processed.ClaimAmount); err != nil {
		return err
	}
	if err := addChecked(&company.ApprovedClaimAmount, ac.processed.ClaimAmount); err != nil {
		return err
	}
	if err := incChecked(&ac.stats.CreatedHospitalAndInsuranceCompanyRecordsCount); err != nil {
		return err
	}

	ac.patientRecord.PatientRecordOnly = false
	ac.patientRecord.Status = StatusApproved
	ac.patientRecord.ProcessedTime = now

	ac.processed.HospitalRecordIndex = hospital.RecordCount
	ac.processed.HospitalRecordCreated = true
	hospitalRec := &HospitalRecord{
		RecordIndex:               hospital.RecordCount,
		HospitalIndex:             hospital.HospitalIndex,
		ClaimID:                   ac.processed.ClaimID,
		Status:                    StatusApproved,
		SubmitterAddress:          ac.processed.SubmitterAddress,
		PatientIndex:              ac.processed.PatientIndex,
		ProcessorAddress:          ac.processed.ProcessorAddress,
		ProcessorCountIndex:       ac.processed.ProcessorCountIndex,
		CountryIndex:              ac.processed.CountryIndex,
		StateIndex:                ac.processed.StateIndex,
		InsuranceCompanyIndex:     uint16(ac.processed.InsuranceCompanyIndex),
		HospitalBillInvoiceNumber: ac.processed.HospitalBillInvoiceNumber,
		ClaimAmount:               ac.processed.ClaimAmount,
		Ailment:                   ac.processed.Ailment,
		Note:                      ac.processed.Note,
		SubmittedTime:             ac.processed.SubmittedTime,
		ProcessedTime:             now,
	}
	if err := incChecked(&hospital.RecordCount); err != nil {
		return err
	}
	hospitalRec.RecordID = hospital.RecordCount

	ac.processed.InsuranceCompanyRecordIndex = company.RecordCount
	ac.processed.InsuranceCompanyRecordCreated = true
	companyRec := &InsuranceCompanyRecord{
		RecordIndex:               company.RecordCount,
		InsuranceCompanyIndex:     company.Index,
		ClaimID:                   ac.processed.ClaimID,
		Status:                    StatusApproved,
		SubmitterAddress:          ac.processed.SubmitterAddress,
		PatientIndex:              ac.processed.PatientIndex,
		ProcessorAddress:          ac.processed.ProcessorAddress,
		ProcessorCountIndex:       ac.processed.ProcessorCountIndex,
		CountryIndex:              ac.processed.CountryIndex,
		StateIndex:                ac.processed.StateIndex,
		HospitalIndex:             uint32(ac.processed.HospitalIndex),
		HospitalBillInvoiceNumber: ac.processed.HospitalBillInvoiceNumber,
		ClaimAmount:               ac.processed.ClaimAmount,
		Ailment:                   ac.processed.Ailment,
		Note:                      ac.processed.Note,
		SubmittedTime:             ac.processed.SubmittedTime,
		ProcessedTime:             now,
	}
	if err := incChecked(&company.RecordCount); err != nil {
		return err
	}
	companyRec.RecordID = company.RecordCount

	ac.processed.Status = StatusApproved
	ac.processed.ProcessedTime = now

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.SubmitterPut(ac.submitter) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.ProcessorPut(ac.processor) },
		func() error { return e.state.StatePut(ac.region) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.HospitalRecordPut(hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(companyRec) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimUndeniedEvent(ac.processed))
	return nil
}
