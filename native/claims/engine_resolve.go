package claims

// resolutionContext gathers everything a full-records resolution touches.
type resolutionContext struct {
	claim         *Claim
	processor     *Processor
	stats         *ProcessorStats
	queue         *ClaimQueue
	submitter     *Submitter
	patient       *Patient
	region        *State
	hospital      *Hospital
	company       *InsuranceCompany
	patientRecord *PatientRecord
	hospitalRec   *HospitalRecord
	companyRec    *InsuranceCompanyRecord
}

// loadResolutionContext loads the claim, its assigned processor, every
// aggregate scope and all three sub-records. The record lookups fail with
// ErrEntityNotFound when the records were never created, which keeps a
// full-records resolution off a partially worked claim.
func (e *Engine) loadResolutionContext(caller, submitterAddr [20]byte) (*resolutionContext, error) {
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return nil, err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return nil, err
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return nil, err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return nil, err
	}
	submitter, err := e.requireSubmitter(submitterAddr)
	if err != nil {
		return nil, err
	}
	patient, err := e.requirePatient(submitterAddr, claim.PatientIndex)
	if err != nil {
		return nil, err
	}
	region, err := e.requireState(claim.CountryIndex, claim.StateIndex)
	if err != nil {
		return nil, err
	}
	hospital, err := e.requireHospital(claim.CountryIndex, claim.StateIndex, uint32(claim.HospitalIndex))
	if err != nil {
		return nil, err
	}
	company, err := e.requireInsuranceCompany(uint16(claim.InsuranceCompanyIndex))
	if err != nil {
		return nil, err
	}
	patientRecord, err := e.requirePatientRecord(submitterAddr, claim.PatientIndex, claim.PatientRecordIndex)
	if err != nil {
		return nil, err
	}
	hospitalRec, err := e.requireHospitalRecord(claim.CountryIndex, claim.StateIndex, uint32(claim.HospitalIndex), claim.HospitalRecordIndex)
	if err != nil {
		return nil, err
	}
	companyRec, err := e.requireInsuranceCompanyRecord(uint16(claim.InsuranceCompanyIndex), claim.InsuranceCompanyRecordIndex)
	if err != nil {
		return nil, err
	}
	return &resolutionContext{
		claim: claim, processor: processor, stats: stats, queue: queue,
		submitter: submitter, patient: patient, region: region,
		hospital: hospital, company: company, patientRecord: patientRecord,
		hospitalRec: hospitalRec, companyRec: companyRec,
	}, nil
}

func (rc *resolutionContext) scopes() scopeSet {
	return scopeSet{
		stats:     rc.stats,
		submitter: rc.submitter,
		patient:   rc.patient,
		processor: rc.processor,
		state:     rc.region,
		hospital:  rc.hospital,
		insurer:   rc.company,
	}
}

// buildProcessedClaim snapshots the claim into its permanent resolution
// record. The global processed count has already been incremented; the
// processor's count is incremented afterwards so the record is indexed by
// the processor's running total at resolution time.
func buildProcessedClaim(claim *Claim, processor *Processor, stats *ProcessorStats, status ClaimStatus, now int64) *ProcessedClaim {
	return &ProcessedClaim{
		ProcessedClaimID:              stats.ProcessedClaimCount,
		ClaimID:                       claim.ID,
		ProcessorCountIndex:           processor.ProcessedClaimCount,
		Status:                        status,
		PatientRecordCreated:          claim.PatientRecordCreated,
		HospitalRecordCreated:         claim.HospitalRecordCreated,
		InsuranceCompanyRecordCreated: claim.InsuranceCompanyRecordCreated,
		PatientRecordIndex:            claim.PatientRecordIndex,
		HospitalRecordIndex:           claim.HospitalRecordIndex,
		InsuranceCompanyRecordIndex:   claim.InsuranceCompanyRecordIndex,
		ProcessorAddress:              processor.Address,
		SubmitterAddress:              claim.SubmitterAddress,
		PatientIndex:                  claim.PatientIndex,
		CountryIndex:                  claim.CountryIndex,
		StateIndex:                    claim.StateIndex,
		HospitalIndex:                 claim.HospitalIndex,
		HospitalType:                  claim.HospitalType,
		HospitalName:                  claim.HospitalName,
		HospitalAddress:               claim.HospitalAddress,
		HospitalCity:                  claim.HospitalCity,
		HospitalZipCode:               claim.HospitalZipCode,
		HospitalPhoneNumber:           claim.HospitalPhoneNumber,
		HospitalBillInvoiceNumber:     claim.HospitalBillInvoiceNumber,
		Note:                          claim.Note,
		ClaimAmount:                   claim.ClaimAmount,
		Ailment:                       claim.Ailment,
		SubmittedTime:                 claim.SubmittedTime,
		ProcessedTime:                 now,
		InsuranceCompanyIndex:         claim.InsuranceCompanyIndex,
		InsuranceCompanyName:          claim.InsuranceCompanyName,
	}
}

// ApproveClaim resolves the claim as approved: the processed claim is
// created, all three sub-records flip to approved, and the approved count
// and amount are added at every scope. The claim itself is destroyed.
func (e *Engine) ApproveClaim(caller, submitterAddr [20]byte) (*ProcessedClaim, error) {
	if e.state == nil {
		return nil, errNilState
	}
	rc, err := e.loadResolutionContext(caller, submitterAddr)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()

	if err := rc.scopes().applyApproval(rc.claim.ClaimAmount); err != nil {
		return nil, err
	}
	if err := incChecked(&rc.stats.ProcessedClaimCount); err != nil {
		return nil, err
	}
	if err := decChecked(&rc.queue.CurrentClaimQueueCount); err != nil {
		return nil, err
	}

	processed := buildProcessedClaim(rc.claim, rc.processor, rc.stats, StatusApproved, now)
	processed.PatientRecordCreated = true
	processed.HospitalRecordCreated = true
	processed.InsuranceCompanyRecordCreated = true

	rc.patientRecord.Status = StatusApproved
	rc.patientRecord.ProcessorCountIndex = rc.processor.ProcessedClaimCount
	rc.patientRecord.ProcessedTime = now
	rc.hospitalRec.Status = StatusApproved
	rc.hospitalRec.ProcessorCountIndex = rc.processor.ProcessedClaimCount
	rc.hospitalRec.ProcessedTime = now
	rc.companyRec.Status = StatusApproved
	rc.companyRec.ProcessorCountIndex = rc.processor.ProcessedClaimCount
	rc.companyRec.ProcessedTime = now

	if err := incChecked(&rc.processor.ProcessedClaimCount); err != nil {
		return nil, err
	}
	rc.processor.IsProcessingClaim = false

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(rc.stats) },
		func() error { return e.state.ClaimQueuePut(rc.queue) },
		func() error { return e.state.SubmitterPut(rc.submitter) },
		func() error { return e.state.PatientPut(rc.patient) },
		func() error { return e.state.StatePut(rc.region) },
		func() error { return e.state.HospitalPut(rc.hospital) },
		func() error { return e.state.InsuranceCompanyPut(rc.company) },
		func() error { return e.state.PatientRecordPut(rc.patientRecord) },
		func() error { return e.state.HospitalRecordPut(rc.hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(rc.companyRec) },
		func() error { return e.state.ProcessedClaimPut(processed) },
		func() error { return e.state.ProcessorPut(rc.processor) },
		func() error { return e.state.ClaimDelete(submitterAddr) },
	); err != nil {
		return nil, err
	}
	e.emitter.Emit(claimResolvedEvent(processed, rc.queue, "approved"))
	return processed, nil
}

// ApproveClaimWithEdits is ApproveClaim with the hospital, insurer and claim
// fields corrected in the same call before snapshotting. A changed hospital
// type also rebalances the per-type count buckets.
func (e *Engine) ApproveClaimWithEdits(caller, submitterAddr [20]byte, hospitalEdits HospitalFields, fields ClaimFields) (*ProcessedClaim, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if err := validateClaimFields(fields); err != nil {
		return nil, err
	}
	if err := validateHospitalEntityFields(hospitalEdits); err != nil {
		return nil, err
	}
	rc, err := e.loadResolutionContext(caller, submitterAddr)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()

	if err := rc.scopes().applyApproval(fields.ClaimAmount); err != nil {
		return nil, err
	}
	if err := incChecked(&rc.stats.ProcessedClaimCount); err != nil {
		return nil, err
	}
	if err := decChecked(&rc.queue.CurrentClaimQueueCount); err != nil {
		return nil, err
	}

	hospitalStats, found, err := e.state.HospitalStatsGet()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotInitialized
	}
	if rc.hospital.Type != hospitalEdits.Type {
		if err := dropHospitalTypeBucket(hospitalStats, rc.region, rc.hospital.Type); err != nil {
			return nil, err
		}
		if err := bumpHospitalTypeBucket(hospitalStats, rc.region, hospitalEdits.Type); err != nil {
			return nil, err
		}
	}

	rc.hospital.Type = hospitalEdits.Type
	rc.hospital.Longitude = hospitalEdits.Longitude
	rc.hospital.Latitude = hospitalEdits.Latitude
	rc.hospital.Name = fields.HospitalName
	rc.hospital.Address = fields.HospitalAddress
	rc.hospital.City = fields.HospitalCity
	rc.hospital.ZipCode = fields.HospitalZipCode
	rc.hospital.PhoneNumber = fields.HospitalPhoneNumber
	rc.company.Name = fields.InsuranceCompanyName

	rc.claim.HospitalType = fields.HospitalType
	rc.claim.HospitalName = fields.HospitalName
	rc.claim.HospitalAddress = fields.HospitalAddress
	rc.claim.HospitalCity = fields.HospitalCity
	rc.claim.HospitalZipCode = fields.HospitalZipCode
	rc.claim.HospitalPhoneNumber = fields.HospitalPhoneNumber
	rc.claim.HospitalBillInvoiceNumber = fields.HospitalBillInvoiceNumber
	rc.claim.Note = fields.Note
	rc.claim.ClaimAmount = fields.ClaimAmount
	rc.claim.Ailment = fields.Ailment
	rc.claim.InsuranceCompanyName = fields.InsuranceCompanyName

	processed := buildProcessedClaim(rc.claim, rc.processor, rc.stats, StatusApproved, now)
	processed.PatientRecordCreated = true
	processed.HospitalRecordCreated = true
	processed.InsuranceCompanyRecordCreated = true

	countIndex := rc.processor.ProcessedClaimCount

	rc.patientRecord.Status = StatusApproved
	rc.patientRecord.ProcessorCountIndex = countIndex
	rc.patientRecord.HospitalIndex = uint32(rc.claim.HospitalIndex)
	rc.patientRecord.InsuranceCompanyIndex = uint16(rc.claim.InsuranceCompanyIndex)
	rc.patientRecord.HospitalBillInvoiceNumber = fields.HospitalBillInvoiceNumber
	rc.patientRecord.ClaimAmount = fields.ClaimAmount
	rc.patientRecord.Ailment = fields.Ailment
	rc.patientRecord.Note = fields.Note
	rc.patientRecord.ProcessedTime = now

	rc.hospitalRec.Status = StatusApproved
	rc.hospitalRec.ProcessorCountIndex = countIndex
	rc.hospitalRec.InsuranceCompanyIndex = uint16(rc.claim.InsuranceCompanyIndex)
	rc.hospitalRec.HospitalBillInvoiceNumber = fields.HospitalBillInvoiceNumber
	rc.hospitalRec.ClaimAmount = fields.ClaimAmount
	rc.hospitalRec.Ailment = fields.Ailment
	rc.hospitalRec.Note = fields.Note
	rc.hospitalRec.ProcessedTime = now

	rc.companyRec.Status = StatusApproved
	rc.companyRec.ProcessorCountIndex = countIndex
	rc.companyRec.HospitalIndex = uint32(rc.claim.HospitalIndex)
	rc.companyRec.HospitalBillInvoiceNumber = fields.HospitalBillInvoiceNumber
	rc.companyRec.ClaimAmount = fields.ClaimAmount
	rc.companyRec.Ailment = fields.Ailment
	rc.companyRec.Note = fields.Note
	rc.companyRec.ProcessedTime = now

	if err := incChecked(&rc.processor.ProcessedClaimCount); err != nil {
		return nil, err
	}
	rc.processor.IsProcessingClaim = false

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(rc.stats) },
		func() error { return e.state.HospitalStatsPut(hospitalStats) },
		func() error { return e.state.ClaimQueuePut(rc.queue) },
		func() error { return e.state.SubmitterPut(rc.submitter) },
		func() error { return e.state.PatientPut(rc.patient) },
		func() error { return e.state.StatePut(rc.region) },
		func() error { return e.state.HospitalPut(rc.hospital) },
		func() error { return e.state.InsuranceCompanyPut(rc.company) },
		func() error { return e.state.PatientRecordPut(rc.patientRecord) },
		func() error { return e.state.HospitalRecordPut(rc.hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(rc.companyRec) },
		func() error { return e.state.ProcessedClaimPut(processed) },
		func() error { return e.state.ProcessorPut(rc.processor) },
		func() error { return e.state.ClaimDelete(submitterAddr) },
	); err != nil {
		return nil, err
	}
	e.emitter.Emit(claimResolvedEvent(processed, rc.queue, "approved"))
	return processed, nil
}

func requireUnworkedClaim(claim *Claim) error {
	if claim.PatientRecordCreated || claim.HospitalRecordCreated || claim.InsuranceCompanyRecordCreated {
		return ErrRecordAlreadyCreated
	}
	return nil
}

// maxDeny discards an unworked claim with no processed claim: only the
// max-denied counters move and the queue slot is released.
func (e *Engine) maxDeny(caller, submitterAddr [20]byte, claim *Claim) error {
	admin, err := e.requireSuperAdminOrCEO(caller)
	if err != nil {
		return err
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return err
	}
	submitter, err := e.requireSubmitter(submitterAddr)
	if err != nil {
		return err
	}
	patient, err := e.requirePatient(submitterAddr, claim.PatientIndex)
	if err != nil {
		return err
	}

	set := scopeSet{stats: stats, submitter: submitter, patient: patient, processor: admin}
	if err := set.applyMaxDenial(); err != nil {
		return err
	}
	if err := decChecked(&queue.CurrentClaimQueueCount); err != nil {
		return err
	}

	writes := []func() error{
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ClaimQueuePut(queue) },
		func() error { return e.state.SubmitterPut(submitter) },
		func() error { return e.state.PatientPut(patient) },
	}

	if claim.Status == StatusProcessing && claim.ProcessorAddress != zeroAddress {
		if admin != nil && claim.ProcessorAddress == admin.Address {
			admin.IsProcessingClaim = false
			admin.ClaimSubmitterAddress = zeroAddress
		} else {
			claimProcessor, found, err := e.state.ProcessorGet(claim.ProcessorAddress)
			if err != nil {
				return err
			}
			if !found {
				return ErrEntityNotFound
			}
			claimProcessor.IsProcessingClaim = false
			claimProcessor.ClaimSubmitterAddress = zeroAddress
			writes = append(writes, func() error { return e.state.ProcessorPut(claimProcessor) })
		}
	}
	if admin != nil {
		writes = append(writes, func() error { return e.state.ProcessorPut(admin) })
	}
	writes = append(writes, func() error { return e.state.ClaimDelete(submitterAddr) })

	if err := persistAll(writes...); err != nil {
		return err
	}
	e.emitter.Emit(claimDiscardedEvent(claim, queue))
	return nil
}

// MaxDenyPendingClaim fast-path rejects a pending claim no processor has
// worked. CEO or super admin only; no processed claim is produced.
func (e *Engine) MaxDenyPendingClaim(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if claim.Status != StatusPending {
		return ErrClaimNotPending
	}
	if err := requireUnworkedClaim(claim); err != nil {
		return err
	}
	return e.maxDeny(caller, submitterAddr, claim)
}

// MaxDenyInProgressClaim fast-path rejects an assigned claim whose processor
// never created any record, freeing that processor's busy flag. CEO or super
// admin only; no processed claim is produced.
func (e *Engine) MaxDenyInProgressClaim(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if claim.Status != StatusProcessing {
		return ErrClaimNotBeingProcessed
	}
	if err := requireUnworkedClaim(claim); err != nil {
		return err
	}
	return e.maxDeny(caller, submitterAddr, claim)
}

// CreatePatientRecordAndDenyClaim denies a claim whose patient record was
// never created, snapshotting one in denied patient-record-only mode
// alongside the processed claim. Hospital and insurer scopes are untouched.
func (e *Engine) CreatePatientRecordAndDenyClaim(caller, submitterAddr [20]byte, denialReason string) (*ProcessedClaim, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if err := validateNote(denialReason); err != nil {
		return nil, err
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return nil, err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return nil, err
	}
	if claim.PatientRecordCreated {
		return nil, ErrRecordAlreadyCreated
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return nil, err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return nil, err
	}
	submitter, err := e.requireSubmitter(submitterAddr)
	if err != nil {
		return nil, err
	}
	patient, err := e.requirePatient(submitterAddr, claim.PatientIndex)
	if err != nil {
		return nil, err
	}
	region, err := e.requireState(claim.CountryIndex, claim.StateIndex)
	if err != nil {
		return nil, err
	}
	now := e.nowFn()

	set := scopeSet{stats: stats, submitter: submitter, patient: patient, processor: processor, state: region}
	if err := set.applyDenial(); err != nil {
		return nil, err
	}
	if err := incChecked(&stats.ProcessedClaimCount); err != nil {
		return nil, err
	}
	if err := incChecked(&stats.CreatedPatientRecordCount); err != nil {
		return nil, err
	}
	if err := incChecked(&processor.CreatedPatientRecordCount); err != nil {
		return nil, err
	}
	if err := decChecked(&queue.CurrentClaimQueueCount); err != nil {
		return nil, err
	}

	claim.PatientRecordIndex = patient.RecordCount
	claim.PatientRecordCreated = true
	processed := buildProcessedClaim(claim, processor, stats, StatusDenied, now)
	processed.DenialReason = denialReason

	record := &PatientRecord{
		RecordIndex:               claim.PatientRecordIndex,
		ClaimID:                   claim.ID,
		Status:                    StatusDenied,
		PatientRecordOnly:         true,
		DenialReason:              denialReason,
		SubmitterAddress:          claim.SubmitterAddress,
		PatientIndex:              claim.PatientIndex,
		ProcessorAddress:          caller,
		ProcessorCountIndex:       processor.ProcessedClaimCount,
		CountryIndex:              claim.CountryIndex,
		StateIndex:                claim.StateIndex,
		HospitalIndex:             uint32(claim.HospitalIndex),
		InsuranceCompanyIndex:     uint16(claim.InsuranceCompanyIndex),
		HospitalBillInvoiceNumber: claim.HospitalBillInvoiceNumber,
		ClaimAmount:               claim.ClaimAmount,
		Ailment:                   claim.Ailment,
		Note:                      claim.Note,
		SubmittedTime:             claim.SubmittedTime,
		ProcessedTime:             now,
	}
	if err := incChecked(&patient.RecordCount); err != nil {
		return nil, err
	}
	record.RecordID = patient.RecordCount

	if err := incChecked(&processor.ProcessedClaimCount); err != nil {
		return nil, err
	}
	processor.IsProcessingClaim = false

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ClaimQueuePut(queue) },
		func() error { return e.state.SubmitterPut(submitter) },
		func() error { return e.state.PatientPut(patient) },
		func() error { return e.state.StatePut(region) },
		func() error { return e.state.PatientRecordPut(record) },
		func() error { return e.state.ProcessedClaimPut(processed) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.ClaimDelete(submitterAddr) },
	); err != nil {
		return nil, err
	}
	e.emitter.Emit(claimResolvedEvent(processed, queue, "denied"))
	return processed, nil
}

// DenyClaimWithAllRecords denies a fully worked claim: all three sub-records
// and the new processed claim flip to denied, and the denied count rises at
// every scope including hospital and insurer.
func (e *Engine) DenyClaimWithAllRecords(caller, submitterAddr [20]byte, denialReason string) (*ProcessedClaim, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if err := validateNote(denialReason); err != nil {
		return nil, err
	}
	rc, err := e.loadResolutionContext(caller, submitterAddr)
	if err != nil {
		return nil, err
	}
	if rc.claim.Status != StatusProcessing {
		return nil, ErrClaimNotBeingProcessed
	}
	if !rc.claim.PatientRecordCreated || !rc.claim.HospitalRecordCreated || !rc.claim.InsuranceCompanyRecordCreated {
		return nil, ErrRecordNotCreated
	}
	now := e.nowFn()

	if err := rc.scopes().applyDenial(); err != nil {
		return nil, err
	}
	if err := incChecked(&rc.stats.ProcessedClaimCount); err != nil {
		return nil, err
	}
	if err := decChecked(&rc.queue.CurrentClaimQueueCount); err != nil {
		return nil, err
	}

	processed := buildProcessedClaim(rc.claim, rc.processor, rc.stats, StatusDenied, now)
	processed.DenialReason = denialReason

	countIndex := rc.processor.ProcessedClaimCount
	rc.patientRecord.Status = StatusDenied
	rc.patientRecord.ProcessorCountIndex = countIndex
	rc.patientRecord.DenialReason = denialReason
	rc.patientRecord.ProcessedTime = now
	rc.hospitalRec.Status = StatusDenied
	rc.hospitalRec.ProcessorCountIndex = countIndex
	rc.hospitalRec.DenialReason = denialReason
	rc.hospitalRec.ProcessedTime = now
	rc.companyRec.Status = StatusDenied
	rc.companyRec.ProcessorCountIndex = countIndex
	rc.companyRec.DenialReason = denialReason
	rc.companyRec.ProcessedTime = now

	if err := incChecked(&rc.processor.ProcessedClaimCount); err != nil {
		return nil, err
	}
	rc.processor.IsProcessingClaim = false

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(rc.stats) },
		func() error { return e.state.ClaimQueuePut(rc.queue) },
		func() error { return e.state.SubmitterPut(rc.submitter) },
		func() error { return e.state.PatientPut(rc.patient) },
		func() error { return e.state.StatePut(rc.region) },
		func() error { return e.state.HospitalPut(rc.hospital) },
		func() error { return e.state.InsuranceCompanyPut(rc.company) },
		func() error { return e.state.PatientRecordPut(rc.patientRecord) },
		func() error { return e.state.HospitalRecordPut(rc.hospitalRec) },
		func() error { return e.state.InsuranceCompanyRecordPut(rc.companyRec) },
		func() error { return e.state.ProcessedClaimPut(processed) },
		func() error { return e.state.ProcessorPut(rc.processor) },
		func() error { return e.state.ClaimDelete(submitterAddr) },
	); err != nil {
		return nil, err
	}
	e.emitter.Emit(claimResolvedEvent(processed, rc.queue, "denied"))
	return processed, nil
}
