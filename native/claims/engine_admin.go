package claims

// InitializeProtocolAndQueue creates the protocol singleton and the claim
// queue. Runs once; the queue starts enabled with the default size limit.
func (e *Engine) InitializeProtocolAndQueue(caller [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if _, found, err := e.state.ProtocolGet(); err != nil {
		return err
	} else if found {
		return ErrAlreadyInitialized
	}
	protocol := &Protocol{InitiatorAddress: caller}
	queue := &ClaimQueue{Enabled: true, QueueSizeLimit: e.queueLimit}
	if err := persistAll(
		func() error { return e.state.ProtocolPut(protocol) },
		func() error { return e.state.ClaimQueuePut(queue) },
	); err != nil {
		return err
	}
	e.emitter.Emit(protocolInitializedEvent(caller, queue))
	return nil
}

// InitializeStats creates the three global stats singletons. CEO only, once.
func (e *Engine) InitializeStats(caller [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if _, found, err := e.state.ProcessorStatsGet(); err != nil {
		return err
	} else if found {
		return ErrAlreadyInitialized
	}
	return persistAll(
		func() error { return e.state.ProcessorStatsPut(&ProcessorStats{}) },
		func() error { return e.state.HospitalStatsPut(&HospitalStats{}) },
		func() error { return e.state.InsuranceCompanyStatsPut(&InsuranceCompanyStats{}) },
	)
}

// SetClaimQueueFlag enables or disables intake. CEO only.
func (e *Engine) SetClaimQueueFlag(caller [20]byte, enabled bool) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return err
	}
	queue.Enabled = enabled
	if err := e.state.ClaimQueuePut(queue); err != nil {
		return err
	}
	e.emitter.Emit(queueFlagEvent(enabled))
	return nil
}

// SetClaimQueueSizeLimit resizes the intake bound. CEO only.
func (e *Engine) SetClaimQueueSizeLimit(caller [20]byte, limit uint32) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	queue, err := e.requireQueue()
	if err != nil {
		return err
	}
	queue.QueueSizeLimit = limit
	if err := e.state.ClaimQueuePut(queue); err != nil {
		return err
	}
	e.emitter.Emit(queueResizedEvent(limit))
	return nil
}

// CreateSubmitterAccount registers the caller as a filer. One per address.
func (e *Engine) CreateSubmitterAccount(caller [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if _, found, err := e.state.SubmitterGet(caller); err != nil {
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
	if err := incChecked(&protocol.SubmitterAccountTotal); err != nil {
		return err
	}
	submitter := &Submitter{ID: protocol.SubmitterAccountTotal, Address: caller}
	if err := persistAll(
		func() error { return e.state.ProtocolPut(protocol) },
		func() error { return e.state.SubmitterPut(submitter) },
	); err != nil {
		return err
	}
	e.emitter.Emit(submitterCreatedEvent(submitter))
	return nil
}

// CreatePatientAccount adds a dependent under the caller's submitter entity.
// Patients are indexed in creation order.
func (e *Engine) CreatePatientAccount(caller [20]byte, firstName, lastName string) error {
	if e.state == nil {
		return errNilState
	}
	if err := validatePatientName(firstName, lastName); err != nil {
		return err
	}
	submitter, err := e.requireSubmitter(caller)
	if err != nil {
		return err
	}
	protocol, found, err := e.state.ProtocolGet()
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInitialized
	}
	if err := incChecked(&protocol.PatientAccountTotal); err != nil {
		return err
	}
	patient := &Patient{
		ID:               protocol.PatientAccountTotal,
		SubmitterAddress: caller,
		Index:            submitter.PatientCount,
		IsActive:         true,
		FirstName:        firstName,
		LastName:         lastName,
	}
	if err := incChecked(&submitter.ActivePatientCount); err != nil {
		return err
	}
	if err := incChecked(&submitter.PatientCount); err != nil {
		return err
	}
	if err := persistAll(
		func() error { return e.state.ProtocolPut(protocol) },
		func() error { return e.state.SubmitterPut(submitter) },
		func() error { return e.state.PatientPut(patient) },
	); err != nil {
		return err
	}
	e.emitter.Emit(patientCreatedEvent(patient))
	return nil
}

// SetPatientFlag toggles a patient's active state and keeps the submitter's
// active-patient counter in step. Rejects a no-op flip.
func (e *Engine) SetPatientFlag(caller [20]byte, patientIndex uint8, active bool) error {
	if e.state == nil {
		return errNilState
	}
	submitter, err := e.requireSubmitter(caller)
	if err != nil {
		return err
	}
	patient, err := e.requirePatient(caller, patientIndex)
	if err != nil {
		return err
	}
	if patient.IsActive == active {
		return ErrFlagSameState
	}
	patient.IsActive = active
	if active {
		if err := incChecked(&submitter.ActivePatientCount); err != nil {
			return err
		}
	} else {
		if err := decChecked(&submitter.ActivePatientCount); err != nil {
			return err
		}
	}
	return persistAll(
		func() error { return e.state.SubmitterPut(submitter) },
		func() error { return e.state.PatientPut(patient) },
	)
}

// CreateProcessorAccount registers a claim reviewer. CEO only; processors
// start active.
func (e *Engine) CreateProcessorAccount(caller, processorAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	if _, found, err := e.state.ProcessorGet(processorAddr); err != nil {
		return err
	} else if found {
		return ErrEntityAlreadyExists
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}
	if err := incChecked(&stats.ProcessorAccountTotal); err != nil {
		return err
	}
	if err := incChecked(&stats.ProcessorActiveAccountTotal); err != nil {
		return err
	}
	processor := &Processor{
		ID:       stats.ProcessorAccountTotal,
		Address:  processorAddr,
		IsActive: true,
	}
	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
	); err != nil {
		return err
	}
	e.emitter.Emit(processorCreatedEvent(processor))
	return nil
}

// SetProcessorActiveFlag toggles a processor's active state. CEO only.
// Deactivating a super admin also strips the super-admin flag.
func (e *Engine) SetProcessorActiveFlag(caller, processorAddr [20]byte, active bool) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	processor, found, err := e.state.ProcessorGet(processorAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntityNotFound
	}
	if processor.IsActive == active {
		return ErrFlagSameState
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}
	if err := incChecked(&stats.EditedProcessorCount); err != nil {
		return err
	}
	processor.IsActive = active
	if active {
		if err := incChecked(&stats.ProcessorActiveAccountTotal); err != nil {
			return err
		}
	} else {
		if err := decChecked(&stats.ProcessorActiveAccountTotal); err != nil {
			return err
		}
		if processor.IsSuperAdmin {
			processor.IsSuperAdmin = false
			if err := decChecked(&stats.ProcessorSuperAdminAccountTotal); err != nil {
				return err
			}
		}
	}
	return persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
	)
}

// SetProcessorPrivilege grants or removes the super-admin flag. CEO only.
// Promoting an inactive processor reactivates it.
func (e *Engine) SetProcessorPrivilege(caller, processorAddr [20]byte, superAdmin bool) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.requireCEO(caller); err != nil {
		return err
	}
	processor, found, err := e.state.ProcessorGet(processorAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntityNotFound
	}
	if processor.IsSuperAdmin == superAdmin {
		return ErrFlagSameState
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}
	if err := incChecked(&stats.EditedProcessorCount); err != nil {
		return err
	}
	processor.IsSuperAdmin = superAdmin
	if superAdmin {
		if err := incChecked(&stats.ProcessorSuperAdminAccountTotal); err != nil {
			return err
		}
		if !processor.IsActive {
			processor.IsActive = true
			if err := incChecked(&stats.ProcessorActiveAccountTotal); err != nil {
				return err
			}
		}
	} else {
		if err := decChecked(&stats.ProcessorSuperAdminAccountTotal); err != nil {
			return err
		}
	}
	return persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
	)
}
