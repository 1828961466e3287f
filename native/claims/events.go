package claims

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"m4aledger/core/events"
)

const (
	// EventTypeProtocolInitialized is emitted when the protocol singleton and
	// claim queue are created.
	EventTypeProtocolInitialized = "claims.protocol.initialized"
	// EventTypeQueueFlagSet is emitted when intake is enabled or disabled.
	EventTypeQueueFlagSet = "claims.queue.flag_set"
	// EventTypeQueueResized is emitted when the queue size limit changes.
	EventTypeQueueResized = "claims.queue.resized"
	// EventTypeSubmitterCreated is emitted when a filer registers.
	EventTypeSubmitterCreated = "claims.submitter.created"
	// EventTypePatientCreated is emitted when a dependent is added.
	EventTypePatientCreated = "claims.patient.created"
	// EventTypeProcessorCreated is emitted when a reviewer is registered.
	EventTypeProcessorCreated = "claims.processor.created"
	// EventTypeClaimSubmitted is emitted when a claim enters the queue.
	EventTypeClaimSubmitted = "claims.claim.submitted"
	// EventTypeClaimAssigned is emitted when a processor takes a claim.
	EventTypeClaimAssigned = "claims.claim.assigned"
	// EventTypeClaimReassigned is emitted when a claim changes processors.
	EventTypeClaimReassigned = "claims.claim.reassigned"
	// EventTypeClaimUnassigned is emitted when a claim returns to pending.
	EventTypeClaimUnassigned = "claims.claim.unassigned"
	// EventTypeStateCreated is emitted when a regional rollup materializes.
	EventTypeStateCreated = "claims.state.created"
	// EventTypeHospitalCreated is emitted when a hospital materializes.
	EventTypeHospitalCreated = "claims.hospital.created"
	// EventTypeInsuranceCompanyCreated is emitted when an insurer materializes.
	EventTypeInsuranceCompanyCreated = "claims.insurance_company.created"
	// EventTypePatientRecordCreated is emitted when a claim is snapshotted
	// under its patient.
	EventTypePatientRecordCreated = "claims.patient_record.created"
	// EventTypeSupportingRecordsCreated is emitted when the hospital and
	// insurer records are snapshotted together.
	EventTypeSupportingRecordsCreated = "claims.supporting_records.created"
	// EventTypeClaimResolved is emitted on every terminal resolution that
	// produces a processed claim.
	EventTypeClaimResolved = "claims.claim.resolved"
	// EventTypeClaimDiscarded is emitted when a claim is max-denied or
	// hammered out of the queue with no processed claim.
	EventTypeClaimDiscarded = "claims.claim.discarded"
	// EventTypeClaimAppealed is emitted when a denial is appealed.
	EventTypeClaimAppealed = "claims.claim.appealed"
	// EventTypeAppealDenied is emitted when an appeal is settled as denied.
	EventTypeAppealDenied = "claims.appeal.denied"
	// EventTypeClaimUndenied is emitted when a denial is reversed to approval.
	EventTypeClaimUndenied = "claims.claim.undenied"
	// EventTypeApprovalRevoked is emitted when an approval is reversed to
	// denial.
	EventTypeApprovalRevoked = "claims.approval.revoked"
	// EventTypeDenialHammer is emitted once per bulk claim deletion.
	EventTypeDenialHammer = "claims.denial_hammer.dropped"
)

func protocolInitializedEvent(caller [20]byte, queue *ClaimQueue) *events.Event {
	return &events.Event{
		Type: EventTypeProtocolInitialized,
		Attributes: map[string]string{
			"initiator":      hex.EncodeToString(caller[:]),
			"queueSizeLimit": strconv.FormatUint(uint64(queue.QueueSizeLimit), 10),
		},
	}
}

func queueFlagEvent(enabled bool) *events.Event {
	return &events.Event{
		Type: EventTypeQueueFlagSet,
		Attributes: map[string]string{
			"enabled": strconv.FormatBool(enabled),
		},
	}
}

func queueResizedEvent(limit uint32) *events.Event {
	return &events.Event{
		Type: EventTypeQueueResized,
		Attributes: map[string]string{
			"queueSizeLimit": strconv.FormatUint(uint64(limit), 10),
		},
	}
}

func submitterCreatedEvent(submitter *Submitter) *events.Event {
	return &events.Event{
		Type: EventTypeSubmitterCreated,
		Attributes: map[string]string{
			"id":      strconv.FormatUint(submitter.ID, 10),
			"address": hex.EncodeToString(submitter.Address[:]),
		},
	}
}

func patientCreatedEvent(patient *Patient) *events.Event {
	return &events.Event{
		Type: EventTypePatientCreated,
		Attributes: map[string]string{
			"id":        strconv.FormatUint(patient.ID, 10),
			"submitter": hex.EncodeToString(patient.SubmitterAddress[:]),
			"index":     strconv.FormatUint(uint64(patient.Index), 10),
		},
	}
}

func processorCreatedEvent(processor *Processor) *events.Event {
	return &events.Event{
		Type: EventTypeProcessorCreated,
		Attributes: map[string]string{
			"id":      strconv.FormatUint(processor.ID, 10),
			"address": hex.EncodeToString(processor.Address[:]),
		},
	}
}

func claimSubmittedEvent(claim *Claim, queue *ClaimQueue, feeAmount *big.Int) *events.Event {
	attrs := map[string]string{
		"claimId":      strconv.FormatUint(claim.ID, 10),
		"submitter":    hex.EncodeToString(claim.SubmitterAddress[:]),
		"patientIndex": strconv.FormatUint(uint64(claim.PatientIndex), 10),
		"claimAmount":  strconv.FormatUint(claim.ClaimAmount, 10),
		"queueCount":   strconv.FormatUint(uint64(queue.CurrentClaimQueueCount), 10),
	}
	if feeAmount != nil {
		attrs["feeAmount"] = feeAmount.String()
	}
	return &events.Event{Type: EventTypeClaimSubmitted, Attributes: attrs}
}

func claimAssignedEvent(claim *Claim, processor [20]byte) *events.Event {
	return &events.Event{
		Type: EventTypeClaimAssigned,
		Attributes: map[string]string{
			"claimId":   strconv.FormatUint(claim.ID, 10),
			"submitter": hex.EncodeToString(claim.SubmitterAddress[:]),
			"processor": hex.EncodeToString(processor[:]),
		},
	}
}

func claimReassignedEvent(claim *Claim, from, to [20]byte) *events.Event {
	return &events.Event{
		Type: EventTypeClaimReassigned,
		Attributes: map[string]string{
			"claimId":   strconv.FormatUint(claim.ID, 10),
			"submitter": hex.EncodeToString(claim.SubmitterAddress[:]),
			"from":      hex.EncodeToString(from[:]),
			"to":        hex.EncodeToString(to[:]),
		},
	}
}

func claimUnassignedEvent(claim *Claim, caller [20]byte) *events.Event {
	return &events.Event{
		Type: EventTypeClaimUnassigned,
		Attributes: map[string]string{
			"claimId":   strconv.FormatUint(claim.ID, 10),
			"submitter": hex.EncodeToString(claim.SubmitterAddress[:]),
			"caller":    hex.EncodeToString(caller[:]),
		},
	}
}

func stateCreatedEvent(region *State) *events.Event {
	return &events.Event{
		Type: EventTypeStateCreated,
		Attributes: map[string]string{
			"id":           strconv.FormatUint(uint64(region.ID), 10),
			"countryIndex": strconv.FormatUint(uint64(region.CountryIndex), 10),
			"stateIndex":   strconv.FormatUint(uint64(region.StateIndex), 10),
		},
	}
}

func hospitalCreatedEvent(hospital *Hospital) *events.Event {
	return &events.Event{
		Type: EventTypeHospitalCreated,
		Attributes: map[string]string{
			"id":            strconv.FormatUint(uint64(hospital.ID), 10),
			"countryIndex":  strconv.FormatUint(uint64(hospital.CountryIndex), 10),
			"stateIndex":    strconv.FormatUint(uint64(hospital.StateIndex), 10),
			"hospitalIndex": strconv.FormatUint(uint64(hospital.HospitalIndex), 10),
			"type":          hospital.Type.String(),
		},
	}
}

func insuranceCompanyCreatedEvent(company *InsuranceCompany) *events.Event {
	return &events.Event{
		Type: EventTypeInsuranceCompanyCreated,
		Attributes: map[string]string{
			"id":    strconv.FormatUint(uint64(company.ID), 10),
			"index": strconv.FormatUint(uint64(company.Index), 10),
		},
	}
}

func patientRecordCreatedEvent(record *PatientRecord) *events.Event {
	return &events.Event{
		Type: EventTypePatientRecordCreated,
		Attributes: map[string]string{
			"claimId":     strconv.FormatUint(record.ClaimID, 10),
			"submitter":   hex.EncodeToString(record.SubmitterAddress[:]),
			"recordIndex": strconv.FormatUint(uint64(record.RecordIndex), 10),
		},
	}
}

func supportingRecordsCreatedEvent(claim *Claim) *events.Event {
	return &events.Event{
		Type: EventTypeSupportingRecordsCreated,
		Attributes: map[string]string{
			"claimId":                     strconv.FormatUint(claim.ID, 10),
			"submitter":                   hex.EncodeToString(claim.SubmitterAddress[:]),
			"hospitalRecordIndex":         strconv.FormatUint(claim.HospitalRecordIndex, 10),
			"insuranceCompanyRecordIndex": strconv.FormatUint(claim.InsuranceCompanyRecordIndex, 10),
		},
	}
}

func claimResolvedEvent(processed *ProcessedClaim, queue *ClaimQueue, outcome string) *events.Event {
	return &events.Event{
		Type: EventTypeClaimResolved,
		Attributes: map[string]string{
			"claimId":          strconv.FormatUint(processed.ClaimID, 10),
			"processedClaimId": strconv.FormatUint(processed.ProcessedClaimID, 10),
			"submitter":        hex.EncodeToString(processed.SubmitterAddress[:]),
			"processor":        hex.EncodeToString(processed.ProcessorAddress[:]),
			"claimAmount":      strconv.FormatUint(processed.ClaimAmount, 10),
			"outcome":          outcome,
			"queueCount":       strconv.FormatUint(uint64(queue.CurrentClaimQueueCount), 10),
		},
	}
}

func claimDiscardedEvent(claim *Claim, queue *ClaimQueue) *events.Event {
	return &events.Event{
		Type: EventTypeClaimDiscarded,
		Attributes: map[string]string{
			"claimId":    strconv.FormatUint(claim.ID, 10),
			"submitter":  hex.EncodeToString(claim.SubmitterAddress[:]),
			"outcome":    "maxDenied",
			"queueCount": strconv.FormatUint(uint64(queue.CurrentClaimQueueCount), 10),
		},
	}
}

func claimAppealedEvent(processed *ProcessedClaim, feeAmount *big.Int) *events.Event {
	attrs := map[string]string{
		"claimId":   strconv.FormatUint(processed.ClaimID, 10),
		"submitter": hex.EncodeToString(processed.SubmitterAddress[:]),
		"processor": hex.EncodeToString(processed.ProcessorAddress[:]),
	}
	if feeAmount != nil {
		attrs["feeAmount"] = feeAmount.String()
	}
	return &events.Event{Type: EventTypeClaimAppealed, Attributes: attrs}
}

func appealDeniedEvent(processed *ProcessedClaim, caller [20]byte) *events.Event {
	return &events.Event{
		Type: EventTypeAppealDenied,
		Attributes: map[string]string{
			"claimId":   strconv.FormatUint(processed.ClaimID, 10),
			"submitter": hex.EncodeToString(processed.SubmitterAddress[:]),
			"caller":    hex.EncodeToString(caller[:]),
		},
	}
}

func claimUndeniedEvent(processed *ProcessedClaim) *events.Event {
	return &events.Event{
		Type: EventTypeClaimUndenied,
		Attributes: map[string]string{
			"claimId":     strconv.FormatUint(processed.ClaimID, 10),
			"submitter":   hex.EncodeToString(processed.SubmitterAddress[:]),
			"claimAmount": strconv.FormatUint(processed.ClaimAmount, 10),
		},
	}
}

func approvalRevokedEvent(processed *ProcessedClaim) *events.Event {
	return &events.Event{
		Type: EventTypeApprovalRevoked,
		Attributes: map[string]string{
			"claimId":     strconv.FormatUint(processed.ClaimID, 10),
			"submitter":   hex.EncodeToString(processed.SubmitterAddress[:]),
			"claimAmount": strconv.FormatUint(processed.ClaimAmount, 10),
		},
	}
}

func denialHammerEvent(caller [20]byte, count int, queue *ClaimQueue) *events.Event {
	return &events.Event{
		Type: EventTypeDenialHammer,
		Attributes: map[string]string{
			"caller":     hex.EncodeToString(caller[:]),
			"count":      strconv.Itoa(count),
			"queueCount": strconv.FormatUint(uint64(queue.CurrentClaimQueueCount), 10),
		},
	}
}
