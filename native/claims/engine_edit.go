package claims

// RecordEdits carries the correctable financial fields of a processed claim
// and its records.
type RecordEdits struct {
	HospitalBillInvoiceNumber string
	Note                      string
	ClaimAmount               uint64
	Ailment                   string
}

func validateRecordEdits(edits RecordEdits) error {
	if len(edits.HospitalBillInvoiceNumber) > MaxInvoiceNumberLen {
		return ErrHospitalBillInvoiceNumberTooLong
	}
	if len(edits.Ailment) > MaxAilmentLen {
		return ErrAilmentTooLong
	}
	return validateNote(edits.Note)
}

// EditProcessedClaimAndPatientRecord corrects a patient-record-only
// resolution, optionally repointing it at a different hospital and insurer.
// The descriptive fields are refreshed from the current registry entries. No
// approved-amount rebalancing happens on this surface. CEO only.
func (e *Engine) EditProcessedClaimAndPatientRecord(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32,
	hospitalIndex uint32, companyIndex uint16, edits RecordEdits) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if err := validateRecordEdits(edits); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if err := requirePatientOnlyResolution(ac.processed); err != nil {
		return err
	}
	hospital, err := e.requireHospital(ac.processed.CountryIndex, ac.processed.StateIndex, hospitalIndex)
	if err != nil {
		return err
	}
	company, err := e.requireInsuranceCompany(companyIndex)
	if err != nil {
		return err
	}
	now := e.nowFn()

	if err := incChecked(&ac.patient.EditedRecordCount); err != nil {
		return err
	}
	if err := incChecked(&ac.stats.EditedClaimOrProcessedClaimCount); err != nil {
		return err
	}

	ac.processed.HospitalIndex = int32(hospitalIndex)
	ac.processed.HospitalType = hospital.Type
	ac.processed.HospitalName = hospital.Name
	ac.processed.HospitalAddress = hospital.Address
	ac.processed.HospitalCity = hospital.City
	ac.processed.HospitalZipCode = hospital.ZipCode
	ac.processed.HospitalPhoneNumber = hospital.PhoneNumber
	ac.processed.InsuranceCompanyIndex = int16(companyIndex)
	ac.processed.InsuranceCompanyName = company.Name
	ac.processed.HospitalBillInvoiceNumber = edits.HospitalBillInvoiceNumber
	ac.processed.Note = edits.Note
	ac.processed.ClaimAmount = edits.ClaimAmount
	ac.processed.Ailment = edits.Ailment
	ac.processed.ProcessedTime = now

	ac.patientRecord.HospitalIndex = hospitalIndex
	ac.patientRecord.InsuranceCompanyIndex = companyIndex
	ac.patientRecord.HospitalBillInvoiceNumber = edits.HospitalBillInvoiceNumber
	ac.patientRecord.Note = edits.Note
	ac.patientRecord.ClaimAmount = edits.ClaimAmount
	ac.patientRecord.Ailment = edits.Ailment
	ac.patientRecord.ProcessedTime = now

	return persistAll(
		func() error { return e.state.ProcessorStatsPut(ac.stats) },
		func() error { return e.state.PatientPut(ac.patient) },
		func() error { return e.state.PatientRecordPut(ac.patientRecord) },
		func() error { return e.state.ProcessedClaimPut(ac.processed) },
	)
}

// EditProcessedClaimAndAllRecords corrects a fully recorded resolution.
// When the resolution is approved, the approved amount at every scope is
// rebalanced from the old amount to the new one. CEO only.
func (e *Engine) EditProcessedClaimAndAllRecords(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32, edits RecordEdits) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if err := validateRecordEdits(edits); err != nil {
		return err
	}
	ac, err := e.loadAppealContext(submitterAddr, patientIndex, recordIndex)
	if err != nil {
		return err
	}
	if err := requireFullResolution(ac.processed); err != nil {
		return err
	}
	hospital, company, hospitalRec, companyRec, err := e.loadAppealRecords(ac.processed)
	if err != nil {
		return err
	}
	now := e.nowFn()

	if err := incChecked(&ac.patient.EditedRecordCount); err != nil {
		return err
	}
	if err := incChecked(&hospital.EditedRecordCount); err != nil {
		return err
	}
	if err := incChecked(&company.EditedRecordCount); err != nil {
		return err
	}
	if err := incChecked(&ac.stats.EditedClaimOrProcessedClaimCount); err != nil {
		return err
	}

	if ac.processed.Status == StatusApproved && edits.ClaimAmount != ac.processed.ClaimAmount {
		set := scopeSet{
			stats: ac.stats, submitter: ac.submitter, patient: ac.patient,
			processor: ac.processor, state: ac.region, hospital: hospital,
			insurer: company,
		}
		if err := set.applyAmountCorrection(ac.processed.ClaimAmount, edits.ClaimAmount); err != nil {
			return err
		}
	}

	ac.processed.HospitalBillInvoiceNumber = edits.HospitalBillInvoiceNumber
	ac.processed.Note = edits.Note
	ac.processed.ClaimAmount = edits.ClaimAmount
	ac.processed.Ailment = edits.Ailment
	ac.processed.ProcessedTime = now
	for _, record := range []struct {
		invoice *string
		note    *string
		amount  *uint64
		ailment *string
		when    *int64
	}{
		{&ac.patientRecord.HospitalBillInvoiceNumber, &ac.patientRecord.Note, &ac.patientRecord.ClaimAmount, &ac.patientRecord.Ailment, &ac.patientRecord.ProcessedTime},
		{&hospitalRec.HospitalBillInvoiceNumber, &hospitalRec.Note, &hospitalRec.ClaimAmount, &hospitalRec.Ailment, &hospitalRec.ProcessedTime},
		{&companyRec.HospitalBillInvoiceNumber, &companyRec.Note, &companyRec.ClaimAmount, &companyRec.Ailment, &companyRec.ProcessedTime},
	} {
		*record.invoice = edits.HospitalBillInvoiceNumber
		*record.note = edits.Note
		*record.amount = edits.ClaimAmount
		*record.ailment = edits.Ailment
		*record.when = now
	}

	return persistAll(
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
	)
}

// RevokeApproval reverses a fully recorded approval into a denial, the exact
// mirror of UndenyClaimWithAllRecords. CEO only.
func (e *Engine) RevokeApproval(caller, submitterAddr [20]byte, patientIndex uint8, recordIndex uint32, denialReason string) error {
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
	if ac.processed.Status != StatusApproved {
		return ErrClaimNotApproved
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
	if err := set.applyRevocation(ac.processed.ClaimAmount); err != nil {
		return err
	}

	ac.processed.Status = StatusDenied
	ac.processed.DenialReason = denialReason
	ac.processed.ProcessedTime = now
	for _, record := range []struct {
		status *ClaimStatus
		reason *string
		when   *int64
	}{
		{&ac.patientRecord.Status, &ac.patientRecord.DenialReason, &ac.patientRecord.ProcessedTime},
		{&hospitalRec.Status, &hospitalRec.DenialReason, &hospitalRec.ProcessedTime},
		{&companyRec.Status, &companyRec.DenialReason, &companyRec.ProcessedTime},
	} {
		*record.status = StatusDenied
		*record.reason = denialReason
		*record.when = now
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
	e.emitter.Emit(approvalRevokedEvent(ac.processed))
	return nil
}

// DropDenialHammer bulk-deletes in-flight claims without producing processed
// claims or moving any per-submitter counters. The hammer counter rises once
// per call. Processors left busy by a hammered claim are freed afterwards
// with ClearProcessorBusyFlag. CEO only.
func (e *Engine) DropDenialHammer(caller [20]byte, submitterAddrs [][20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if len(submitterAddrs) == 0 {
		return ErrEntityNotFound
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return err
	}
	claims := make([]*Claim, 0, len(submitterAddrs))
	for _, addr := range submitterAddrs {
		claim, err := e.requireClaim(addr)
		if err != nil {
			return err
		}
		claims = append(claims, claim)
	}

	if err := incChecked(&stats.DenialHammerDroppedCount); err != nil {
		return err
	}
	if err := subChecked(&queue.CurrentClaimQueueCount, uint32(len(claims))); err != nil {
		return err
	}

	writes := []func() error{
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ClaimQueuePut(queue) },
	}
	if admin, found, err := e.state.ProcessorGet(caller); err != nil {
		return err
	} else if found {
		if err := incChecked(&admin.DenialHammerDroppedCount); err != nil {
			return err
		}
		writes = append(writes, func() error { return e.state.ProcessorPut(admin) })
	}
	for _, claim := range claims {
		addr := claim.SubmitterAddress
		writes = append(writes, func() error { return e.state.ClaimDelete(addr) })
	}

	if err := persistAll(writes...); err != nil {
		return err
	}
	e.emitter.Emit(denialHammerEvent(caller, len(claims), queue))
	return nil
}
