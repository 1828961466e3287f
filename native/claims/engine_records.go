package claims

// CreateState lazily materializes the regional rollup for a claim's
// (country, state) pair. Caller must be the claim's assigned processor.
func (e *Engine) CreateState(caller, submitterAddr [20]byte, countryIndex uint16, stateIndex uint32) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if _, err := e.requireAssignedProcessor(caller, claim); err != nil {
		return err
	}
	if _, found, err := e.state.StateGet(countryIndex, stateIndex); err != nil {
		return err
	} else if found {
		return ErrEntityAlreadyExists
	}
	protocol, found, err := e.state.ProtocolGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}

	if err := incChecked(&protocol.StateAccountTotal); err != nil {
		return err
	}
	region := &State{
		ID:           protocol.StateAccountTotal,
		CountryIndex: countryIndex,
		StateIndex:   stateIndex,
	}

	if err := persistAll(
		func() error { return e.state.ProtocolPut(protocol) },
		func() error { return e.state.StatePut(region) },
	); err != nil {
		return err
	}
	e.emitter.Emit(stateCreatedEvent(region))
	return nil
}

// HospitalFields carries the descriptive fields of a hospital creation or
// edit.
type HospitalFields struct {
	Type        HospitalType
	Longitude   float64
	Latitude    float64
	Name        string
	Address     string
	City        string
	ZipCode     uint32
	PhoneNumber string
	Note        string
}

func validateHospitalEntityFields(fields HospitalFields) error {
	if !fields.Type.Valid() {
		return ErrHospitalTypeInvalid
	}
	if err := validateHospitalFields(fields.Name, fields.Address, fields.City, fields.PhoneNumber); err != nil {
		return err
	}
	return validateNote(fields.Note)
}

func bumpHospitalTypeBucket(stats *HospitalStats, region *State, hospitalType HospitalType) error {
	switch hospitalType {
	case HospitalGeneral:
		if err := incChecked(&stats.GeneralHospitalCount); err != nil {
			return err
		}
		return incChecked(&region.GeneralHospitalCount)
	case HospitalDental:
		if err := incChecked(&stats.DentalHospitalCount); err != nil {
			return err
		}
		return incChecked(&region.DentalHospitalCount)
	case HospitalVision:
		if err := incChecked(&stats.VisionHospitalCount); err != nil {
			return err
		}
		return incChecked(&region.VisionHospitalCount)
	default:
		if err := incChecked(&stats.MentalHospitalCount); err != nil {
			return err
		}
		return incChecked(&region.MentalHospitalCount)
	}
}

func dropHospitalTypeBucket(stats *HospitalStats, region *State, hospitalType HospitalType) error {
	switch hospitalType {
	case HospitalGeneral:
		if err := decChecked(&stats.GeneralHospitalCount); err != nil {
			return err
		}
		return decChecked(&region.GeneralHospitalCount)
	case HospitalDental:
		if err := decChecked(&stats.DentalHospitalCount); err != nil {
			return err
		}
		return decChecked(&region.DentalHospitalCount)
	case HospitalVision:
		if err := decChecked(&stats.VisionHospitalCount); err != nil {
			return err
		}
		return decChecked(&region.VisionHospitalCount)
	default:
		if err := decChecked(&stats.MentalHospitalCount); err != nil {
			return err
		}
		return decChecked(&region.MentalHospitalCount)
	}
}

// CreateHospital lazily materializes a hospital under a region and points
// the claim at it. Caller must be the claim's assigned processor. The new
// hospital takes the region's next index and the descriptive fields are
// copied onto the claim so the eventual snapshot reflects the registry
// entry.
func (e *Engine) CreateHospital(caller, submitterAddr [20]byte, countryIndex uint16, stateIndex uint32, fields HospitalFields) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return err
	}
	if err := validateHospitalEntityFields(fields); err != nil {
		return err
	}
	region, err := e.requireState(countryIndex, stateIndex)
	if err != nil {
		return err
	}
	stats, found, err := e.state.HospitalStatsGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}

	if err := incChecked(&stats.HospitalCount); err != nil {
		return err
	}
	if err := incChecked(&processor.CreatedHospitalCount); err != nil {
		return err
	}

	hospital := &Hospital{
		ID:            stats.HospitalCount,
		IsActive:      true,
		CountryIndex:  countryIndex,
		StateIndex:    stateIndex,
		HospitalIndex: region.HospitalCount,
		Type:          fields.Type,
		Longitude:     fields.Longitude,
		Latitude:      fields.Latitude,
		Name:          fields.Name,
		Address:       fields.Address,
		City:          fields.City,
		ZipCode:       fields.ZipCode,
		PhoneNumber:   fields.PhoneNumber,
		Note:          fields.Note,
	}

	claim.CountryIndex = countryIndex
	claim.StateIndex = stateIndex
	claim.HospitalType = fields.Type
	claim.HospitalIndex = int32(region.HospitalCount)
	claim.HospitalName = fields.Name
	claim.HospitalAddress = fields.Address
	claim.HospitalCity = fields.City
	claim.HospitalZipCode = fields.ZipCode
	claim.HospitalPhoneNumber = fields.PhoneNumber

	if err := incChecked(&region.HospitalCount); err != nil {
		return err
	}
	if err := bumpHospitalTypeBucket(stats, region, fields.Type); err != nil {
		return err
	}

	if err := persistAll(
		func() error { return e.state.HospitalStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.StatePut(region) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(hospitalCreatedEvent(hospital))
	return nil
}

// EditHospital overwrites a hospital's descriptive fields and rebalances the
// per-type count buckets when the type changes. CEO only.
func (e *Engine) EditHospital(caller [20]byte, countryIndex uint16, stateIndex uint32, hospitalIndex uint32, isActive bool, fields HospitalFields) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if err := validateHospitalEntityFields(fields); err != nil {
		return err
	}
	hospital, err := e.requireHospital(countryIndex, stateIndex, hospitalIndex)
	if err != nil {
		return err
	}
	region, err := e.requireState(countryIndex, stateIndex)
	if err != nil {
		return err
	}
	stats, found, err := e.state.HospitalStatsGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}

	if err := dropHospitalTypeBucket(stats, region, hospital.Type); err != nil {
		return err
	}
	if err := bumpHospitalTypeBucket(stats, region, fields.Type); err != nil {
		return err
	}
	if err := incChecked(&stats.EditedHospitalCount); err != nil {
		return err
	}
	if err := incChecked(&region.EditedHospitalCount); err != nil {
		return err
	}

	hospital.IsActive = isActive
	hospital.Type = fields.Type
	hospital.Longitude = fields.Longitude
	hospital.Latitude = fields.Latitude
	hospital.Name = fields.Name
	hospital.Address = fields.Address
	hospital.City = fields.City
	hospital.ZipCode = fields.ZipCode
	hospital.PhoneNumber = fields.PhoneNumber
	hospital.Note = fields.Note

	return persistAll(
		func() error { return e.state.HospitalStatsPut(stats) },
		func() error { return e.state.StatePut(region) },
		func() error { return e.state.HospitalPut(hospital) },
	)
}

// CreateInsuranceCompany lazily materializes an insurer and points the claim
// at it. Caller must be the claim's assigned processor.
func (e *Engine) CreateInsuranceCompany(caller, submitterAddr [20]byte, companyIndex uint16, name, note string) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return err
	}
	if len(name) > MaxInsuranceCompanyNameLen {
		return ErrInsuranceCompanyNameTooLong
	}
	if err := validateNote(note); err != nil {
		return err
	}
	if _, found, err := e.state.InsuranceCompanyGet(companyIndex); err != nil {
		return err
	} else if found {
		return ErrEntityAlreadyExists
	}
	stats, found, err := e.state.InsuranceCompanyStatsGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}

	if err := incChecked(&stats.InitializedInsuranceCompanyCount); err != nil {
		return err
	}
	// Indices above ten are write-ins beyond the curated insurer list.
	if companyIndex > 10 {
		if err := incChecked(&stats.AdditionalInsuranceCompanyCount); err != nil {
			return err
		}
	}
	if err := incChecked(&processor.CreatedInsuranceCompanyCount); err != nil {
		return err
	}

	company := &InsuranceCompany{
		ID:       stats.InitializedInsuranceCompanyCount,
		Index:    companyIndex,
		IsActive: true,
		Name:     name,
		Note:     note,
	}
	claim.InsuranceCompanyIndex = int16(companyIndex)
	claim.InsuranceCompanyName = name

	if err := persistAll(
		func() error { return e.state.InsuranceCompanyStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(insuranceCompanyCreatedEvent(company))
	return nil
}

// EditInsuranceCompany overwrites an insurer's fields. CEO only.
func (e *Engine) EditInsuranceCompany(caller [20]byte, companyIndex uint16, isActive bool, name, note string) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if len(name) > MaxInsuranceCompanyNameLen {
		return ErrInsuranceCompanyNameTooLong
	}
	if err := validateNote(note); err != nil {
		return err
	}
	company, err := e.requireInsuranceCompany(companyIndex)
	if err != nil {
		return err
	}
	stats, found, err := e.state.InsuranceCompanyStatsGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}

	if err := incChecked(&stats.EditedInsuranceCompanyCount); err != nil {
		return err
	}
	company.IsActive = isActive
	company.Name = name
	company.Note = note

	return persistAll(
		func() error { return e.state.InsuranceCompanyStatsPut(stats) },
		func() error { return e.state.InsuranceCompanyPut(company) },
	)
}

// UpdateClaimHospitalIndex repoints the claim at a different hospital.
// Rejected once the hospital record exists so a record is never orphaned.
func (e *Engine) UpdateClaimHospitalIndex(caller, submitterAddr [20]byte, hospitalIndex uint32) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if _, err := e.requireAssignedProcessor(caller, claim); err != nil {
		return err
	}
	if claim.HospitalRecordCreated {
		return ErrRecordAlreadyCreated
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	if err := incChecked(&stats.EditedClaimOrProcessedClaimCount); err != nil {
		return err
	}
	claim.HospitalIndex = int32(hospitalIndex)

	return persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ClaimPut(claim) },
	)
}

// UpdateClaimInsuranceCompanyIndex repoints the claim at a different
// insurer. Rejected once the insurer record exists.
func (e *Engine) UpdateClaimInsuranceCompanyIndex(caller, submitterAddr [20]byte, companyIndex uint16) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if _, err := e.requireAssignedProcessor(caller, claim); err != nil {
		return err
	}
	if claim.InsuranceCompanyRecordCreated {
		return ErrRecordAlreadyCreated
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	if err := incChecked(&stats.EditedClaimOrProcessedClaimCount); err != nil {
		return err
	}
	claim.InsuranceCompanyIndex = int16(companyIndex)

	return persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ClaimPut(claim) },
	)
}

// CreatePatientRecord snapshots the claim into a new record under the
// patient, in processing status and patient-record-only mode. Allowed once
// per claim.
func (e *Engine) CreatePatientRecord(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return err
	}
	if claim.PatientRecordCreated {
		return ErrRecordAlreadyCreated
	}
	patient, err := e.requirePatient(submitterAddr, claim.PatientIndex)
	if err != nil {
		return err
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	if err := incChecked(&stats.CreatedPatientRecordCount); err != nil {
		return err
	}
	if err := incChecked(&processor.CreatedPatientRecordCount); err != nil {
		return err
	}

	claim.PatientRecordIndex = patient.RecordCount
	claim.PatientRecordCreated = true
	record := &PatientRecord{
		RecordIndex:               patient.RecordCount,
		ClaimID:                   claim.ID,
		Status:                    StatusProcessing,
		PatientRecordOnly:         true,
		SubmitterAddress:          claim.SubmitterAddress,
		PatientIndex:              claim.PatientIndex,
		ProcessorAddress:          caller,
		CountryIndex:              claim.CountryIndex,
		StateIndex:                claim.StateIndex,
		HospitalIndex:             uint32(claim.HospitalIndex),
		InsuranceCompanyIndex:     uint16(claim.InsuranceCompanyIndex),
		HospitalBillInvoiceNumber: claim.HospitalBillInvoiceNumber,
		ClaimAmount:               claim.ClaimAmount,
		Ailment:                   claim.Ailment,
		Note:                      claim.Note,
		SubmittedTime:             claim.SubmittedTime,
	}
	if err := incChecked(&patient.RecordCount); err != nil {
		return err
	}
	record.RecordID = patient.RecordCount

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.PatientPut(patient) },
		func() error { return e.state.PatientRecordPut(record) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(patientRecordCreatedEvent(record))
	return nil
}

// CreateHospitalAndInsuranceCompanyRecords snapshots the claim into records
// under its hospital and insurer, atomically, and flips the patient record
// out of patient-record-only mode. The patient record must already exist;
// the two new records are always created together.
func (e *Engine) CreateHospitalAndInsuranceCompanyRecords(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	processor, err := e.requireAssignedProcessor(caller, claim)
	if err != nil {
		return err
	}
	if !claim.PatientRecordCreated {
		return ErrRecordNotCreated
	}
	if claim.HospitalRecordCreated || claim.InsuranceCompanyRecordCreated {
		return ErrRecordAlreadyCreated
	}
	patientRecord, err := e.requirePatientRecord(submitterAddr, claim.PatientIndex, claim.PatientRecordIndex)
	if err != nil {
		return err
	}
	hospital, err := e.requireHospital(claim.CountryIndex, claim.StateIndex, uint32(claim.HospitalIndex))
	if err != nil {
		return err
	}
	company, err := e.requireInsuranceCompany(uint16(claim.InsuranceCompanyIndex))
	if err != nil {
		return err
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	if err := incChecked(&stats.CreatedHospitalAndInsuranceCompanyRecordsCount); err != nil {
		return err
	}
	if err := incChecked(&processor.CreatedHospitalRecordCount); err != nil {
		return err
	}
	if err := incChecked(&processor.CreatedInsuranceCompanyRecordCount); err != nil {
		return err
	}

	patientRecord.PatientRecordOnly = false

	claim.HospitalRecordIndex = hospital.RecordCount
	claim.HospitalRecordCreated = true
	hospitalRecord := &HospitalRecord{
		RecordIndex:               hospital.RecordCount,
		HospitalIndex:             hospital.HospitalIndex,
		ClaimID:                   claim.ID,
		Status:                    StatusProcessing,
		SubmitterAddress:          claim.SubmitterAddress,
		PatientIndex:              claim.PatientIndex,
		ProcessorAddress:          caller,
		CountryIndex:              claim.CountryIndex,
		StateIndex:                claim.StateIndex,
		InsuranceCompanyIndex:     uint16(claim.InsuranceCompanyIndex),
		HospitalBillInvoiceNumber: claim.HospitalBillInvoiceNumber,
		ClaimAmount:               claim.ClaimAmount,
		Ailment:                   claim.Ailment,
		Note:                      claim.Note,
		SubmittedTime:             claim.SubmittedTime,
	}
	if err := incChecked(&hospital.RecordCount); err != nil {
		return err
	}
	hospitalRecord.RecordID = hospital.RecordCount

	claim.InsuranceCompanyRecordIndex = company.RecordCount
	claim.InsuranceCompanyRecordCreated = true
	companyRecord := &InsuranceCompanyRecord{
		RecordIndex:               company.RecordCount,
		InsuranceCompanyIndex:     company.Index,
		ClaimID:                   claim.ID,
		Status:                    StatusProcessing,
		SubmitterAddress:          claim.SubmitterAddress,
		PatientIndex:              claim.PatientIndex,
		ProcessorAddress:          caller,
		CountryIndex:              claim.CountryIndex,
		StateIndex:                claim.StateIndex,
		HospitalIndex:             uint32(claim.HospitalIndex),
		HospitalBillInvoiceNumber: claim.HospitalBillInvoiceNumber,
		ClaimAmount:               claim.ClaimAmount,
		Ailment:                   claim.Ailment,
		Note:                      claim.Note,
		SubmittedTime:             claim.SubmittedTime,
	}
	if err := incChecked(&company.RecordCount); err != nil {
		return err
	}
	companyRecord.RecordID = company.RecordCount

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.PatientRecordPut(patientRecord) },
		func() error { return e.state.HospitalPut(hospital) },
		func() error { return e.state.HospitalRecordPut(hospitalRecord) },
		func() error { return e.state.InsuranceCompanyPut(company) },
		func() error { return e.state.InsuranceCompanyRecordPut(companyRecord) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(supportingRecordsCreatedEvent(claim))
	return nil
}
