package claims

// AssignClaim attaches the caller, an active idle processor, to an
// unassigned claim. The claim moves to processing status.
func (e *Engine) AssignClaim(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	processor, found, err := e.state.ProcessorGet(caller)
	if err != nil {
		return err
	}
	if !found || !processor.IsActive {
		return ErrNotActiveProcessor
	}
	if processor.IsProcessingClaim {
		return ErrProcessorAlreadyWorkingOnClaim
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if claim.ProcessorAddress != zeroAddress {
		return ErrClaimAlreadyAssigned
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	processor.IsProcessingClaim = true
	processor.ClaimSubmitterAddress = submitterAddr
	claim.ProcessorAddress = caller
	claim.Status = StatusProcessing
	if err := incChecked(&stats.SetOrUnsetProcessorOnClaimCount); err != nil {
		return err
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimAssignedEvent(claim, caller))
	return nil
}

// ReassignClaim moves a claim from its current processor to the caller. CEO
// or super admin only; the claim must be assigned. Reassigning to the same
// processor leaves the old processor untouched.
func (e *Engine) ReassignClaim(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	newProcessor, err := e.requireSuperAdminOrCEO(caller)
	if err != nil {
		return err
	}
	if newProcessor == nil {
		return ErrEntityNotFound
	}
	if newProcessor.IsProcessingClaim {
		return ErrProcessorAlreadyWorkingOnClaim
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if claim.ProcessorAddress == zeroAddress {
		return ErrClaimNotAssigned
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	newProcessor.IsProcessingClaim = true
	newProcessor.ClaimSubmitterAddress = submitterAddr
	if err := incChecked(&stats.SetOrUnsetProcessorOnClaimCount); err != nil {
		return err
	}

	writes := []func() error{
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(newProcessor) },
	}
	if newProcessor.Address != claim.ProcessorAddress {
		oldProcessor, found, err := e.state.ProcessorGet(claim.ProcessorAddress)
		if err != nil {
			return err
		}
		if !found {
			return ErrEntityNotFound
		}
		oldProcessor.IsProcessingClaim = false
		oldProcessor.ClaimSubmitterAddress = zeroAddress
		writes = append(writes, func() error { return e.state.ProcessorPut(oldProcessor) })
	}
	oldAddr := claim.ProcessorAddress
	claim.ProcessorAddress = caller
	writes = append(writes, func() error { return e.state.ClaimPut(claim) })

	if err := persistAll(writes...); err != nil {
		return err
	}
	e.emitter.Emit(claimReassignedEvent(claim, oldAddr, caller))
	return nil
}

// UnassignClaim detaches a claim from its processor and returns it to
// pending. CEO or super admin only.
func (e *Engine) UnassignClaim(caller, submitterAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if _, err := e.requireSuperAdminOrCEO(caller); err != nil {
		return err
	}
	claim, err := e.requireClaim(submitterAddr)
	if err != nil {
		return err
	}
	if claim.ProcessorAddress == zeroAddress {
		return ErrClaimNotAssigned
	}
	oldProcessor, found, err := e.state.ProcessorGet(claim.ProcessorAddress)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntityNotFound
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	oldProcessor.IsProcessingClaim = false
	oldProcessor.ClaimSubmitterAddress = zeroAddress
	claim.ProcessorAddress = zeroAddress
	claim.Status = StatusPending
	if err := incChecked(&stats.SetOrUnsetProcessorOnClaimCount); err != nil {
		return err
	}

	if err := persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(oldProcessor) },
		func() error { return e.state.ClaimPut(claim) },
	); err != nil {
		return err
	}
	e.emitter.Emit(claimUnassignedEvent(claim, caller))
	return nil
}

// ClearProcessorBusyFlag frees a processor stuck busy on a claim that no
// longer exists, for example after a denial hammer. CEO or super admin only;
// touches only the processor entity.
func (e *Engine) ClearProcessorBusyFlag(caller, processorAddr [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if _, err := e.requireSuperAdminOrCEO(caller); err != nil {
		return err
	}
	processor, found, err := e.state.ProcessorGet(processorAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntityNotFound
	}
	stats, err := e.requireProcessorStats()
	if err != nil {
		return err
	}

	processor.IsProcessingClaim = false
	processor.ClaimSubmitterAddress = zeroAddress
	if err := incChecked(&stats.SetOrUnsetProcessorOnClaimCount); err != nil {
		return err
	}

	return persistAll(
		func() error { return e.state.ProcessorStatsPut(stats) },
		func() error { return e.state.ProcessorPut(processor) },
	)
}
