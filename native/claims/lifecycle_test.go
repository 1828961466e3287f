package claims

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApproveClaimEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()

	processed, err := env.engine.ApproveClaim(processorAddr, submitterAddr)
	require.NoError(t, err)

	require.Equal(t, StatusApproved, processed.Status)
	require.Equal(t, uint64(1), processed.ProcessedClaimID)
	require.Equal(t, uint64(0), processed.ProcessorCountIndex)
	require.Equal(t, uint64(100), processed.ClaimAmount)

	stats := env.state.pStats
	require.Equal(t, uint64(1), stats.ApprovedClaimCount)
	require.Equal(t, uint64(100), stats.ApprovedClaimAmount)
	require.Equal(t, uint64(1), stats.ProcessedClaimCount)

	for name, got := range map[string]uint64{
		"submitter": uint64(env.state.submitters[submitterAddr].ApprovedClaimCount),
		"patient":   uint64(env.state.patients[patientKey{submitterAddr, 0}].ApprovedClaimCount),
		"state":     env.state.states[stateKey{1, 5}].ApprovedClaimCount,
		"hospital":  env.state.hospitals[hospitalKey{1, 5, 0}].ApprovedClaimCount,
		"insurer":   env.state.companies[3].ApprovedClaimCount,
	} {
		require.Equal(t, uint64(1), got, name)
	}
	require.Equal(t, uint64(100), env.state.hospitals[hospitalKey{1, 5, 0}].ApprovedClaimAmount)

	processor := env.state.processors[processorAddr]
	require.Equal(t, uint64(1), processor.ProcessedClaimCount)
	require.Equal(t, uint64(100), processor.ApprovedClaimAmount)
	require.False(t, processor.IsProcessingClaim)

	_, found, err := env.state.ClaimGet(submitterAddr)
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, env.state.queue.CurrentClaimQueueCount)

	for _, status := range []ClaimStatus{
		env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].Status,
		env.state.hospitalRecs[hospitalRecordKey{1, 5, 0, 0}].Status,
		env.state.companyRecs[companyRecordKey{3, 0}].Status,
	} {
		require.Equal(t, StatusApproved, status)
	}
}

func TestApproveClaimWithEditsUsesNewAmountEverywhere(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()

	fields := validClaimFields()
	fields.ClaimAmount = 250
	fields.HospitalName = "Shelbyville General"
	hospitalEdits := validHospitalFields()
	hospitalEdits.Type = HospitalDental

	processed, err := env.engine.ApproveClaimWithEdits(processorAddr, submitterAddr, hospitalEdits, fields)
	require.NoError(t, err)
	require.Equal(t, uint64(250), processed.ClaimAmount)

	require.Equal(t, uint64(250), env.state.pStats.ApprovedClaimAmount)
	require.Equal(t, uint64(250), env.state.processors[processorAddr].ApprovedClaimAmount)
	require.Equal(t, uint64(250), env.state.hospitals[hospitalKey{1, 5, 0}].ApprovedClaimAmount)
	require.Equal(t, uint64(250), env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].ClaimAmount)

	hospital := env.state.hospitals[hospitalKey{1, 5, 0}]
	require.Equal(t, HospitalDental, hospital.Type)
	require.Equal(t, "Shelbyville General", hospital.Name)
	require.Zero(t, env.state.hStats.GeneralHospitalCount)
	require.Equal(t, uint32(1), env.state.hStats.DentalHospitalCount)
}

func TestMaxDenyPendingProducesNoProcessedClaim(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	require.NoError(t, env.engine.MaxDenyPendingClaim(ceoAddr, submitterAddr))

	require.Empty(t, env.state.processed)
	require.Zero(t, env.state.pStats.ProcessedClaimCount)
	require.Equal(t, uint64(1), env.state.pStats.MaxDeniedClaimCount)
	require.Equal(t, uint32(1), env.state.submitters[submitterAddr].MaxDeniedClaimCount)
	require.Zero(t, env.state.queue.CurrentClaimQueueCount)
	_, found, err := env.state.ClaimGet(submitterAddr)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMaxDenyPendingRejectsWorkedClaim(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.ErrorIs(t, env.engine.MaxDenyPendingClaim(ceoAddr, submitterAddr), ErrClaimNotPending)
}

func TestMaxDenyInProgressFreesAliasedAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.SetProcessorPrivilege(ceoAddr, processorAddr, true))

	// The acting admin is also the claim's processor: one max-denied
	// increment, busy flag cleared.
	require.NoError(t, env.engine.MaxDenyInProgressClaim(processorAddr, submitterAddr))

	processor := env.state.processors[processorAddr]
	require.Equal(t, uint64(1), processor.MaxDeniedClaimCount)
	require.False(t, processor.IsProcessingClaim)
	require.Equal(t, zeroAddress, processor.ClaimSubmitterAddress)
	require.Empty(t, env.state.processed)
}

func TestEditPatientOnlyResolutionRepointsRecords(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))
	_, err := env.engine.CreatePatientRecordAndDenyClaim(processorAddr, submitterAddr, "no referral on file")
	require.NoError(t, err)

	edits := RecordEdits{
		HospitalBillInvoiceNumber: "INV-2000",
		Note:                      "corrected after review",
		ClaimAmount:               40,
		Ailment:                   "sprained wrist",
	}
	require.ErrorIs(t, env.engine.EditProcessedClaimAndPatientRecord(submitterAddr, submitterAddr, 0, 0, 0, 3, edits), ErrNotCEO)
	require.NoError(t, env.engine.EditProcessedClaimAndPatientRecord(ceoAddr, submitterAddr, 0, 0, 0, 3, edits))

	processed := env.state.processed[processedKey{processorAddr, 0}]
	require.Equal(t, int32(0), processed.HospitalIndex)
	require.Equal(t, int16(3), processed.InsuranceCompanyIndex)
	require.Equal(t, "St. Mungo's", processed.HospitalName)
	require.Equal(t, "Acme Mutual", processed.InsuranceCompanyName)
	require.Equal(t, uint64(40), processed.ClaimAmount)
	require.Equal(t, "sprained wrist", processed.Ailment)

	record := env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}]
	require.Equal(t, uint32(0), record.HospitalIndex)
	require.Equal(t, uint16(3), record.InsuranceCompanyIndex)
	require.Equal(t, "INV-2000", record.HospitalBillInvoiceNumber)
	require.Equal(t, uint64(40), record.ClaimAmount)

	require.Equal(t, uint32(1), env.state.patients[patientKey{submitterAddr, 0}].EditedRecordCount)
	require.Equal(t, uint64(1), env.state.pStats.EditedClaimOrProcessedClaimCount)
	// No amount rebalancing happens on the patient-only surface.
	require.Zero(t, env.state.pStats.ApprovedClaimAmount)
}

func TestEditPatientOnlyResolutionRejectsFullRecords(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.DenyClaimWithAllRecords(processorAddr, submitterAddr, "duplicate billing")
	require.NoError(t, err)

	err = env.engine.EditProcessedClaimAndPatientRecord(ceoAddr, submitterAddr, 0, 0, 0, 3, RecordEdits{ClaimAmount: 40})
	require.ErrorIs(t, err, ErrNoRatFuckeryAllowed)
}

func TestPatientOnlyDenialAppealCycle(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))

	processed, err := env.engine.CreatePatientRecordAndDenyClaim(processorAddr, submitterAddr, "no referral on file")
	require.NoError(t, err)
	require.Equal(t, StatusDenied, processed.Status)
	require.True(t, processed.PatientRecordCreated)
	require.False(t, processed.HospitalRecordCreated)

	require.Equal(t, uint64(1), env.state.pStats.DeniedClaimCount)
	require.Equal(t, uint64(1), env.state.pStats.CreatedPatientRecordCount)
	record := env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}]
	require.True(t, record.PatientRecordOnly)
	require.Equal(t, "no referral on file", record.DenialReason)

	// Hospital and insurer scopes never saw the denial.
	require.Zero(t, env.state.hospitals[hospitalKey{1, 5, 0}].DeniedClaimCount)
	require.Zero(t, env.state.companies[3].DeniedClaimCount)

	require.NoError(t, env.engine.AppealDeniedClaimWithOnlyPatientRecord(submitterAddr, 0, 0, "USDC", "referral attached"))
	require.Equal(t, uint64(1), env.state.pStats.SubmittedAppealCount)
	require.Equal(t, uint32(1), env.state.submitters[submitterAddr].SubmittedAppealCount)
	require.Equal(t, StatusAppealed, env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].Status)

	// Double appeal is rejected: the resolution is no longer denied.
	require.ErrorIs(t, env.engine.AppealDeniedClaimWithOnlyPatientRecord(submitterAddr, 0, 0, "USDC", "again"), ErrClaimNotDenied)

	require.NoError(t, env.engine.DenyAppealedClaimWithOnlyPatientRecord(processorAddr, submitterAddr, 0, 0, "referral invalid"))
	require.Equal(t, uint64(1), env.state.pStats.DeniedAppealCount)
	require.Equal(t, uint64(1), env.state.processors[processorAddr].DeniedAppealCount)
	require.Equal(t, StatusDenied, env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].Status)
}

func TestAppealGuardsRejectMismatchedRecordShape(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.DenyClaimWithAllRecords(processorAddr, submitterAddr, "not covered")
	require.NoError(t, err)

	// The patient-only surface cannot touch a fully recorded resolution.
	require.ErrorIs(t, env.engine.AppealDeniedClaimWithOnlyPatientRecord(submitterAddr, 0, 0, "USDC", "try anyway"), ErrNoRatFuckeryAllowed)
	require.NoError(t, env.engine.AppealDeniedClaimWithAllRecords(submitterAddr, 0, 0, "USDC", "covered per policy"))

	// The all-records appeal moves the patient's counter but not the
	// submitter's.
	require.Zero(t, env.state.submitters[submitterAddr].SubmittedAppealCount)
	require.Equal(t, uint32(1), env.state.patients[patientKey{submitterAddr, 0}].SubmittedAppealCount)
}

func TestFullDenialUndenyReversal(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.DenyClaimWithAllRecords(processorAddr, submitterAddr, "not covered")
	require.NoError(t, err)

	require.Equal(t, uint64(1), env.state.hospitals[hospitalKey{1, 5, 0}].DeniedClaimCount)
	require.ErrorIs(t, env.engine.UndenyClaimWithAllRecords(submitterAddr, submitterAddr, 0, 0), ErrNotCEO)
	require.NoError(t, env.engine.UndenyClaimWithAllRecords(ceoAddr, submitterAddr, 0, 0))

	stats := env.state.pStats
	require.Equal(t, uint64(1), stats.UndeniedClaimCount)
	require.Equal(t, uint64(1), stats.ApprovedClaimCount)
	require.Zero(t, stats.DeniedClaimCount)
	require.Equal(t, uint64(100), stats.ApprovedClaimAmount)

	hospital := env.state.hospitals[hospitalKey{1, 5, 0}]
	require.Zero(t, hospital.DeniedClaimCount)
	require.Equal(t, uint64(1), hospital.ApprovedClaimCount)
	require.Equal(t, uint64(100), hospital.ApprovedClaimAmount)

	// The processor keeps its denial tally; the undenial adds the amount
	// without shifting its approved or denied counts.
	processor := env.state.processors[processorAddr]
	require.Equal(t, uint64(1), processor.DeniedClaimCount)
	require.Zero(t, processor.ApprovedClaimCount)
	require.Equal(t, uint64(100), processor.ApprovedClaimAmount)
	require.Equal(t, uint64(1), processor.UndeniedClaimCount)

	for _, status := range []ClaimStatus{
		env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].Status,
		env.state.hospitalRecs[hospitalRecordKey{1, 5, 0, 0}].Status,
		env.state.companyRecs[companyRecordKey{3, 0}].Status,
	} {
		require.Equal(t, StatusApproved, status)
	}
}

func TestRevokeApprovalMirrorsUndeny(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.ApproveClaim(processorAddr, submitterAddr)
	require.NoError(t, err)

	require.NoError(t, env.engine.RevokeApproval(ceoAddr, submitterAddr, 0, 0, "billing fraud"))

	stats := env.state.pStats
	require.Zero(t, stats.ApprovedClaimCount)
	require.Zero(t, stats.ApprovedClaimAmount)
	require.Equal(t, uint64(1), stats.DeniedClaimCount)
	require.Equal(t, uint64(1), stats.RevokedApprovalCount)

	// Undenying the revoked claim restores the approval exactly.
	require.NoError(t, env.engine.UndenyClaimWithAllRecords(ceoAddr, submitterAddr, 0, 0))
	stats = env.state.pStats
	require.Equal(t, uint64(1), stats.ApprovedClaimCount)
	require.Equal(t, uint64(100), stats.ApprovedClaimAmount)
	require.Zero(t, stats.DeniedClaimCount)
	require.Equal(t, uint64(1), stats.UndeniedClaimCount)
}

func TestUndenyPatientOnlyBackfillsRecords(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.submitAndAssign()
	require.NoError(t, env.engine.CreateState(processorAddr, submitterAddr, 1, 5))
	require.NoError(t, env.engine.CreateHospital(processorAddr, submitterAddr, 1, 5, validHospitalFields()))
	require.NoError(t, env.engine.CreateInsuranceCompany(processorAddr, submitterAddr, 3, "Acme Mutual", ""))
	_, err := env.engine.CreatePatientRecordAndDenyClaim(processorAddr, submitterAddr, "no referral on file")
	require.NoError(t, err)

	require.NoError(t, env.engine.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(ceoAddr, submitterAddr, 0, 0))

	// The hospital and insurer gain the approval without a denied-count
	// walkback; they never carried the denial.
	hospital := env.state.hospitals[hospitalKey{1, 5, 0}]
	require.Equal(t, uint64(1), hospital.ApprovedClaimCount)
	require.Equal(t, uint64(1), hospital.UndeniedClaimCount)
	require.Equal(t, uint64(100), hospital.ApprovedClaimAmount)
	require.Zero(t, hospital.DeniedClaimCount)

	require.Equal(t, uint64(1), env.state.pStats.CreatedHospitalAndInsuranceCompanyRecordsCount)

	hospitalRec := env.state.hospitalRecs[hospitalRecordKey{1, 5, 0, 0}]
	require.NotNil(t, hospitalRec)
	require.Equal(t, StatusApproved, hospitalRec.Status)
	companyRec := env.state.companyRecs[companyRecordKey{3, 0}]
	require.NotNil(t, companyRec)
	require.Equal(t, StatusApproved, companyRec.Status)

	patientRec := env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}]
	require.False(t, patientRec.PatientRecordOnly)
	require.Equal(t, StatusApproved, patientRec.Status)

	processed := env.state.processed[processedKey{processorAddr, 0}]
	require.True(t, processed.HospitalRecordCreated)
	require.True(t, processed.InsuranceCompanyRecordCreated)
	require.Equal(t, StatusApproved, processed.Status)
}

func TestEditApprovedClaimRebalancesAmount(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.ApproveClaim(processorAddr, submitterAddr)
	require.NoError(t, err)

	edits := RecordEdits{
		HospitalBillInvoiceNumber: "INV-1000-R",
		Note:                      "corrected invoice",
		ClaimAmount:               150,
		Ailment:                   "broken arm",
	}
	require.NoError(t, env.engine.EditProcessedClaimAndAllRecords(ceoAddr, submitterAddr, 0, 0, edits))

	require.Equal(t, uint64(150), env.state.pStats.ApprovedClaimAmount)
	require.Equal(t, uint64(150), env.state.hospitals[hospitalKey{1, 5, 0}].ApprovedClaimAmount)
	require.Equal(t, uint64(150), env.state.processors[processorAddr].ApprovedClaimAmount)
	require.Equal(t, uint64(150), env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].ClaimAmount)
	require.Equal(t, uint64(150), env.state.hospitalRecs[hospitalRecordKey{1, 5, 0, 0}].ClaimAmount)
	require.Equal(t, uint64(1), env.state.pStats.EditedClaimOrProcessedClaimCount)
	require.Equal(t, uint32(1), env.state.patients[patientKey{submitterAddr, 0}].EditedRecordCount)
}

func TestEditDeniedClaimLeavesAmountsAlone(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()
	_, err := env.engine.DenyClaimWithAllRecords(processorAddr, submitterAddr, "not covered")
	require.NoError(t, err)

	edits := RecordEdits{ClaimAmount: 900, Ailment: "broken arm"}
	require.NoError(t, env.engine.EditProcessedClaimAndAllRecords(ceoAddr, submitterAddr, 0, 0, edits))

	require.Zero(t, env.state.pStats.ApprovedClaimAmount)
	require.Equal(t, uint64(900), env.state.patientRecs[patientRecordKey{submitterAddr, 0, 0}].ClaimAmount)
}

func TestDropDenialHammer(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	_, err := env.engine.SubmitClaim(submitterAddr, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	other := addr(11)
	require.NoError(t, env.engine.CreateSubmitterAccount(other))
	require.NoError(t, env.engine.CreatePatientAccount(other, "Al", "Roe"))
	_, err = env.engine.SubmitClaim(other, 0, "USDC", 1, 5, -1, -1, validClaimFields())
	require.NoError(t, err)

	require.ErrorIs(t, env.engine.DropDenialHammer(submitterAddr, [][20]byte{submitterAddr}), ErrNotCEO)
	require.NoError(t, env.engine.DropDenialHammer(ceoAddr, [][20]byte{submitterAddr, other}))

	require.Empty(t, env.state.claims)
	require.Empty(t, env.state.processed)
	require.Zero(t, env.state.queue.CurrentClaimQueueCount)
	require.Equal(t, uint64(1), env.state.pStats.DenialHammerDroppedCount)
}

func TestResolutionRequiresAssignedProcessor(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	env.buildFullClaim()

	intruder := addr(21)
	require.NoError(t, env.engine.CreateProcessorAccount(ceoAddr, intruder))
	_, err := env.engine.ApproveClaim(intruder, submitterAddr)
	require.ErrorIs(t, err, ErrNotTheProcessor)
}
