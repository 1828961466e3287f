package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/btcsuite/btcutil/bech32"

	"m4aledger/native/claims"
	"m4aledger/native/fees"
	"m4aledger/native/roles"
	"m4aledger/observability/logging"
)

// addressHRP prefixes every bech32-rendered account identifier.
const addressHRP = "m4a"

// address is a 20-byte account identifier. Request bodies may carry it either
// bech32-encoded ("m4a1...") or as raw hex; responses always render bech32.
type address [20]byte

func (a *address) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return err
	}
	if strings.HasPrefix(text, addressHRP+"1") {
		hrp, data, err := bech32.Decode(text)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", text, err)
		}
		if hrp != addressHRP {
			return fmt.Errorf("invalid address %q: unexpected prefix %q", text, hrp)
		}
		decoded, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", text, err)
		}
		if len(decoded) != len(a) {
			return fmt.Errorf("invalid address %q: want %d bytes", text, len(a))
		}
		copy(a[:], decoded)
		return nil
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(text, "0x"))
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", text, err)
	}
	if len(decoded) != len(a) {
		return fmt.Errorf("invalid address %q: want %d bytes", text, len(a))
	}
	copy(a[:], decoded)
	return nil
}

func (a address) String() string {
	converted, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	encoded, err := bech32.Encode(addressHRP, converted)
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	return encoded
}

func (a address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

type rpcRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type rpcHandler func(params json.RawMessage) (any, error)

type ledgerServer struct {
	log      *slog.Logger
	handlers map[string]rpcHandler
}

type claimFieldsParam struct {
	HospitalType              uint8  `json:"hospitalType"`
	HospitalName              string `json:"hospitalName"`
	HospitalAddress           string `json:"hospitalAddress"`
	HospitalCity              string `json:"hospitalCity"`
	HospitalZipCode           uint32 `json:"hospitalZipCode"`
	HospitalPhoneNumber       string `json:"hospitalPhoneNumber"`
	HospitalBillInvoiceNumber string `json:"hospitalBillInvoiceNumber"`
	Note                      string `json:"note"`
	ClaimAmount               uint64 `json:"claimAmount"`
	Ailment                   string `json:"ailment"`
	InsuranceCompanyName      string `json:"insuranceCompanyName"`
}

func (p claimFieldsParam) toFields() claims.ClaimFields {
	return claims.ClaimFields{
		HospitalType:              claims.HospitalType(p.HospitalType),
		HospitalName:              p.HospitalName,
		HospitalAddress:           p.HospitalAddress,
		HospitalCity:              p.HospitalCity,
		HospitalZipCode:           p.HospitalZipCode,
		HospitalPhoneNumber:       p.HospitalPhoneNumber,
		HospitalBillInvoiceNumber: p.HospitalBillInvoiceNumber,
		Note:                      p.Note,
		ClaimAmount:               p.ClaimAmount,
		Ailment:                   p.Ailment,
		InsuranceCompanyName:      p.InsuranceCompanyName,
	}
}

type hospitalFieldsParam struct {
	Type        uint8   `json:"type"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	ZipCode     uint32  `json:"zipCode"`
	PhoneNumber string  `json:"phoneNumber"`
	Note        string  `json:"note"`
}

func (p hospitalFieldsParam) toFields() claims.HospitalFields {
	return claims.HospitalFields{
		Type:        claims.HospitalType(p.Type),
		Longitude:   p.Longitude,
		Latitude:    p.Latitude,
		Name:        p.Name,
		Address:     p.Address,
		City:        p.City,
		ZipCode:     p.ZipCode,
		PhoneNumber: p.PhoneNumber,
		Note:        p.Note,
	}
}

type recordEditsParam struct {
	HospitalBillInvoiceNumber string `json:"hospitalBillInvoiceNumber"`
	Note                      string `json:"note"`
	ClaimAmount               uint64 `json:"claimAmount"`
	Ailment                   string `json:"ailment"`
}

func (p recordEditsParam) toEdits() claims.RecordEdits {
	return claims.RecordEdits{
		HospitalBillInvoiceNumber: p.HospitalBillInvoiceNumber,
		Note:                      p.Note,
		ClaimAmount:               p.ClaimAmount,
		Ailment:                   p.Ailment,
	}
}

// recordLocator addresses a processed claim through its patient record.
type recordLocator struct {
	Caller       address `json:"caller"`
	Submitter    address `json:"submitter"`
	PatientIndex uint8   `json:"patientIndex"`
	RecordIndex  uint32  `json:"recordIndex"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var params T
	if len(raw) == 0 {
		return params, fmt.Errorf("missing params")
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, err
	}
	return params, nil
}

// op adapts a typed parameter handler to the rpcHandler signature.
func op[T any](fn func(T) (any, error)) rpcHandler {
	return func(raw json.RawMessage) (any, error) {
		params, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		return fn(params)
	}
}

// ok wraps mutations that return only an error.
func ok(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func newLedgerServer(claimsEngine *claims.Engine, rolesEngine *roles.Engine, feesEngine *fees.Engine, log *slog.Logger) *ledgerServer {
	type callerParam struct {
		Caller address `json:"caller"`
	}
	type callerTargetParam struct {
		Caller address `json:"caller"`
		Target address `json:"target"`
	}
	type callerSubmitterParam struct {
		Caller    address `json:"caller"`
		Submitter address `json:"submitter"`
	}

	handlers := map[string]rpcHandler{
		"roles_initialize": op(func(p struct {
			CEO       address `json:"ceo"`
			Treasurer address `json:"treasurer"`
		}) (any, error) {
			return ok(rolesEngine.Initialize(p.CEO, p.Treasurer))
		}),
		"roles_passOnCEO": op(func(p callerTargetParam) (any, error) {
			return ok(rolesEngine.PassOnCEO(p.Caller, p.Target))
		}),
		"roles_passOnTreasurer": op(func(p callerTargetParam) (any, error) {
			return ok(rolesEngine.PassOnTreasurer(p.Caller, p.Target))
		}),

		"fees_addToken": op(func(p struct {
			Caller   address `json:"caller"`
			Token    string  `json:"token"`
			Decimals uint8   `json:"decimals"`
		}) (any, error) {
			return ok(feesEngine.AddTokenEntry(p.Caller, p.Token, p.Decimals))
		}),
		"fees_removeToken": op(func(p struct {
			Caller address `json:"caller"`
			Token  string  `json:"token"`
		}) (any, error) {
			return ok(feesEngine.RemoveTokenEntry(p.Caller, p.Token))
		}),

		"claims_initializeProtocol": op(func(p callerParam) (any, error) {
			return ok(claimsEngine.InitializeProtocolAndQueue(p.Caller))
		}),
		"claims_initializeStats": op(func(p callerParam) (any, error) {
			return ok(claimsEngine.InitializeStats(p.Caller))
		}),
		"claims_setQueueFlag": op(func(p struct {
			Caller  address `json:"caller"`
			Enabled bool    `json:"enabled"`
		}) (any, error) {
			return ok(claimsEngine.SetClaimQueueFlag(p.Caller, p.Enabled))
		}),
		"claims_setQueueSizeLimit": op(func(p struct {
			Caller address `json:"caller"`
			Limit  uint32  `json:"limit"`
		}) (any, error) {
			return ok(claimsEngine.SetClaimQueueSizeLimit(p.Caller, p.Limit))
		}),

		"claims_createSubmitter": op(func(p callerParam) (any, error) {
			return ok(claimsEngine.CreateSubmitterAccount(p.Caller))
		}),
		"claims_createPatient": op(func(p struct {
			Caller    address `json:"caller"`
			FirstName string  `json:"firstName"`
			LastName  string  `json:"lastName"`
		}) (any, error) {
			return ok(claimsEngine.CreatePatientAccount(p.Caller, p.FirstName, p.LastName))
		}),
		"claims_setPatientFlag": op(func(p struct {
			Caller       address `json:"caller"`
			PatientIndex uint8   `json:"patientIndex"`
			Active       bool    `json:"active"`
		}) (any, error) {
			return ok(claimsEngine.SetPatientFlag(p.Caller, p.PatientIndex, p.Active))
		}),
		"claims_createProcessor": op(func(p callerTargetParam) (any, error) {
			return ok(claimsEngine.CreateProcessorAccount(p.Caller, p.Target))
		}),
		"claims_setProcessorActiveFlag": op(func(p struct {
			Caller    address `json:"caller"`
			Processor address `json:"processor"`
			Active    bool    `json:"active"`
		}) (any, error) {
			return ok(claimsEngine.SetProcessorActiveFlag(p.Caller, p.Processor, p.Active))
		}),
		"claims_setProcessorPrivilege": op(func(p struct {
			Caller     address `json:"caller"`
			Processor  address `json:"processor"`
			SuperAdmin bool    `json:"superAdmin"`
		}) (any, error) {
			return ok(claimsEngine.SetProcessorPrivilege(p.Caller, p.Processor, p.SuperAdmin))
		}),

		"claims_submitClaim": op(func(p struct {
			Caller                address          `json:"caller"`
			PatientIndex          uint8            `json:"patientIndex"`
			FeeToken              string           `json:"feeToken"`
			CountryIndex          uint16           `json:"countryIndex"`
			StateIndex            uint32           `json:"stateIndex"`
			HospitalIndex         int32            `json:"hospitalIndex"`
			InsuranceCompanyIndex int16            `json:"insuranceCompanyIndex"`
			Fields                claimFieldsParam `json:"fields"`
		}) (any, error) {
			return claimsEngine.SubmitClaim(p.Caller, p.PatientIndex, p.FeeToken,
				p.CountryIndex, p.StateIndex, p.HospitalIndex, p.InsuranceCompanyIndex,
				p.Fields.toFields())
		}),
		"claims_assignClaim": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.AssignClaim(p.Caller, p.Submitter))
		}),
		"claims_reassignClaim": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.ReassignClaim(p.Caller, p.Submitter))
		}),
		"claims_unassignClaim": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.UnassignClaim(p.Caller, p.Submitter))
		}),
		"claims_clearProcessorBusyFlag": op(func(p struct {
			Caller    address `json:"caller"`
			Processor address `json:"processor"`
		}) (any, error) {
			return ok(claimsEngine.ClearProcessorBusyFlag(p.Caller, p.Processor))
		}),

		"claims_createState": op(func(p struct {
			Caller       address `json:"caller"`
			Submitter    address `json:"submitter"`
			CountryIndex uint16  `json:"countryIndex"`
			StateIndex   uint32  `json:"stateIndex"`
		}) (any, error) {
			return ok(claimsEngine.CreateState(p.Caller, p.Submitter, p.CountryIndex, p.StateIndex))
		}),
		"claims_createHospital": op(func(p struct {
			Caller       address             `json:"caller"`
			Submitter    address             `json:"submitter"`
			CountryIndex uint16              `json:"countryIndex"`
			StateIndex   uint32              `json:"stateIndex"`
			Fields       hospitalFieldsParam `json:"fields"`
		}) (any, error) {
			return ok(claimsEngine.CreateHospital(p.Caller, p.Submitter, p.CountryIndex, p.StateIndex, p.Fields.toFields()))
		}),
		"claims_editHospital": op(func(p struct {
			Caller        address             `json:"caller"`
			CountryIndex  uint16              `json:"countryIndex"`
			StateIndex    uint32              `json:"stateIndex"`
			HospitalIndex uint32              `json:"hospitalIndex"`
			IsActive      bool                `json:"isActive"`
			Fields        hospitalFieldsParam `json:"fields"`
		}) (any, error) {
			return ok(claimsEngine.EditHospital(p.Caller, p.CountryIndex, p.StateIndex, p.HospitalIndex, p.IsActive, p.Fields.toFields()))
		}),
		"claims_createInsuranceCompany": op(func(p struct {
			Caller       address `json:"caller"`
			Submitter    address `json:"submitter"`
			CompanyIndex uint16  `json:"companyIndex"`
			Name         string  `json:"name"`
			Note         string  `json:"note"`
		}) (any, error) {
			return ok(claimsEngine.CreateInsuranceCompany(p.Caller, p.Submitter, p.CompanyIndex, p.Name, p.Note))
		}),
		"claims_editInsuranceCompany": op(func(p struct {
			Caller       address `json:"caller"`
			CompanyIndex uint16  `json:"companyIndex"`
			IsActive     bool    `json:"isActive"`
			Name         string  `json:"name"`
			Note         string  `json:"note"`
		}) (any, error) {
			return ok(claimsEngine.EditInsuranceCompany(p.Caller, p.CompanyIndex, p.IsActive, p.Name, p.Note))
		}),
		"claims_updateClaimHospitalIndex": op(func(p struct {
			Caller        address `json:"caller"`
			Submitter     address `json:"submitter"`
			HospitalIndex uint32  `json:"hospitalIndex"`
		}) (any, error) {
			return ok(claimsEngine.UpdateClaimHospitalIndex(p.Caller, p.Submitter, p.HospitalIndex))
		}),
		"claims_updateClaimInsuranceCompanyIndex": op(func(p struct {
			Caller       address `json:"caller"`
			Submitter    address `json:"submitter"`
			CompanyIndex uint16  `json:"companyIndex"`
		}) (any, error) {
			return ok(claimsEngine.UpdateClaimInsuranceCompanyIndex(p.Caller, p.Submitter, p.CompanyIndex))
		}),
		"claims_createPatientRecord": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.CreatePatientRecord(p.Caller, p.Submitter))
		}),
		"claims_createHospitalAndInsuranceCompanyRecords": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.CreateHospitalAndInsuranceCompanyRecords(p.Caller, p.Submitter))
		}),

		"claims_approveClaim": op(func(p callerSubmitterParam) (any, error) {
			return claimsEngine.ApproveClaim(p.Caller, p.Submitter)
		}),
		"claims_approveClaimWithEdits": op(func(p struct {
			Caller        address             `json:"caller"`
			Submitter     address             `json:"submitter"`
			HospitalEdits hospitalFieldsParam `json:"hospitalEdits"`
			Fields        claimFieldsParam    `json:"fields"`
		}) (any, error) {
			return claimsEngine.ApproveClaimWithEdits(p.Caller, p.Submitter, p.HospitalEdits.toFields(), p.Fields.toFields())
		}),
		"claims_maxDenyPendingClaim": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.MaxDenyPendingClaim(p.Caller, p.Submitter))
		}),
		"claims_maxDenyInProgressClaim": op(func(p callerSubmitterParam) (any, error) {
			return ok(claimsEngine.MaxDenyInProgressClaim(p.Caller, p.Submitter))
		}),
		"claims_createPatientRecordAndDenyClaim": op(func(p struct {
			Caller       address `json:"caller"`
			Submitter    address `json:"submitter"`
			DenialReason string  `json:"denialReason"`
		}) (any, error) {
			return claimsEngine.CreatePatientRecordAndDenyClaim(p.Caller, p.Submitter, p.DenialReason)
		}),
		"claims_denyClaimWithAllRecords": op(func(p struct {
			Caller       address `json:"caller"`
			Submitter    address `json:"submitter"`
			DenialReason string  `json:"denialReason"`
		}) (any, error) {
			return claimsEngine.DenyClaimWithAllRecords(p.Caller, p.Submitter, p.DenialReason)
		}),

		"claims_appealDeniedClaimWithOnlyPatientRecord": op(func(p struct {
			Caller       address `json:"caller"`
			PatientIndex uint8   `json:"patientIndex"`
			RecordIndex  uint32  `json:"recordIndex"`
			FeeToken     string  `json:"feeToken"`
			AppealReason string  `json:"appealReason"`
		}) (any, error) {
			return ok(claimsEngine.AppealDeniedClaimWithOnlyPatientRecord(p.Caller, p.PatientIndex, p.RecordIndex, p.FeeToken, p.AppealReason))
		}),
		"claims_denyAppealedClaimWithOnlyPatientRecord": op(func(p struct {
			recordLocator
			DenialReason string `json:"denialReason"`
		}) (any, error) {
			return ok(claimsEngine.DenyAppealedClaimWithOnlyPatientRecord(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex, p.DenialReason))
		}),
		"claims_appealDeniedClaimWithAllRecords": op(func(p struct {
			Caller       address `json:"caller"`
			PatientIndex uint8   `json:"patientIndex"`
			RecordIndex  uint32  `json:"recordIndex"`
			FeeToken     string  `json:"feeToken"`
			AppealReason string  `json:"appealReason"`
		}) (any, error) {
			return ok(claimsEngine.AppealDeniedClaimWithAllRecords(p.Caller, p.PatientIndex, p.RecordIndex, p.FeeToken, p.AppealReason))
		}),
		"claims_denyAppealedClaimWithAllRecords": op(func(p struct {
			recordLocator
			DenialReason string `json:"denialReason"`
		}) (any, error) {
			return ok(claimsEngine.DenyAppealedClaimWithAllRecords(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex, p.DenialReason))
		}),
		"claims_undenyClaimWithAllRecords": op(func(p recordLocator) (any, error) {
			return ok(claimsEngine.UndenyClaimWithAllRecords(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex))
		}),
		"claims_undenyClaimAndCreateHospitalAndInsuranceCompanyRecords": op(func(p recordLocator) (any, error) {
			return ok(claimsEngine.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex))
		}),

		"claims_editProcessedClaimAndPatientRecord": op(func(p struct {
			recordLocator
			HospitalIndex uint32           `json:"hospitalIndex"`
			CompanyIndex  uint16           `json:"companyIndex"`
			Edits         recordEditsParam `json:"edits"`
		}) (any, error) {
			return ok(claimsEngine.EditProcessedClaimAndPatientRecord(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex, p.HospitalIndex, p.CompanyIndex, p.Edits.toEdits()))
		}),
		"claims_editProcessedClaimAndAllRecords": op(func(p struct {
			recordLocator
			Edits recordEditsParam `json:"edits"`
		}) (any, error) {
			return ok(claimsEngine.EditProcessedClaimAndAllRecords(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex, p.Edits.toEdits()))
		}),
		"claims_revokeApproval": op(func(p struct {
			recordLocator
			DenialReason string `json:"denialReason"`
		}) (any, error) {
			return ok(claimsEngine.RevokeApproval(p.Caller, p.Submitter, p.PatientIndex, p.RecordIndex, p.DenialReason))
		}),
		"claims_dropDenialHammer": op(func(p struct {
			Caller     address   `json:"caller"`
			Submitters []address `json:"submitters"`
		}) (any, error) {
			targets := make([][20]byte, len(p.Submitters))
			for i, submitter := range p.Submitters {
				targets[i] = submitter
			}
			return ok(claimsEngine.DropDenialHammer(p.Caller, targets))
		}),
	}

	return &ledgerServer{log: log, handlers: handlers}
}

func (s *ledgerServer) register(mux *http.ServeMux) {
	mux.HandleFunc("/rpc", s.handleRPC)
}

func (s *ledgerServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, rpcResponse{Error: "invalid request body"})
		return
	}
	handler, known := s.handlers[req.Method]
	if !known {
		writeJSON(w, http.StatusNotFound, rpcResponse{Error: fmt.Sprintf("unknown method %q", req.Method)})
		return
	}
	result, err := handler(req.Params)
	if err != nil {
		// Request bodies carry patient names, ailments, and notes; never log
		// them in the clear.
		s.log.Warn("rpc call failed", "method", req.Method, "error", err,
			logging.MaskField("params", string(req.Params)))
		writeJSON(w, http.StatusUnprocessableEntity, rpcResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rpcResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, status int, body rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Response already committed; nothing sensible to do.
		_ = err
	}
}
