package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"m4aledger/native/claims"
	"m4aledger/native/fees"
	"m4aledger/native/roles"
	"m4aledger/state"
	"m4aledger/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	manager := state.NewManager(storage.NewMemDB())

	rolesEngine := roles.NewEngine()
	rolesEngine.SetState(manager)

	feesEngine := fees.NewEngine()
	feesEngine.SetState(manager)
	feesEngine.SetAuthority(rolesEngine)

	claimsEngine := claims.NewEngine()
	claimsEngine.SetState(manager)
	claimsEngine.SetAuthority(rolesEngine)
	claimsEngine.SetFeeSchedule(feesEngine)

	ledger := newLedgerServer(claimsEngine, rolesEngine, feesEngine, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	ledger.register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method string, params any) (int, rpcResponse) {
	t.Helper()

	rawParams, err := json.Marshal(params)
	require.NoError(t, err)
	body, err := json.Marshal(rpcRequest{Method: method, Params: rawParams})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func mustCall(t *testing.T, server *httptest.Server, method string, params any) rpcResponse {
	t.Helper()
	status, resp := call(t, server, method, params)
	require.Equal(t, http.StatusOK, status, "method %s: %s", method, resp.Error)
	require.Empty(t, resp.Error)
	return resp
}

func hexAddr(b byte) string {
	var out [20]byte
	out[19] = b
	return fmt.Sprintf("%x", out)
}

func TestAddressJSONRoundTrip(t *testing.T) {
	var original address
	original[19] = 42

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"m4a1`)

	var viaBech32 address
	require.NoError(t, json.Unmarshal(encoded, &viaBech32))
	require.Equal(t, original, viaBech32)

	var viaHex address
	require.NoError(t, json.Unmarshal([]byte(`"`+hexAddr(42)+`"`), &viaHex))
	require.Equal(t, original, viaHex)

	var bad address
	require.Error(t, json.Unmarshal([]byte(`"m4a1zzzz"`), &bad))
	require.Error(t, json.Unmarshal([]byte(`"abcd"`), &bad))
}

func TestRPCUnknownMethod(t *testing.T) {
	server := newTestServer(t)
	status, resp := call(t, server, "claims_doesNotExist", map[string]any{})
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, resp.Error, "unknown method")
}

func TestRPCAuthorizationErrors(t *testing.T) {
	server := newTestServer(t)
	mustCall(t, server, "roles_initialize", map[string]any{
		"ceo": hexAddr(1), "treasurer": hexAddr(2),
	})

	status, resp := call(t, server, "claims_initializeProtocol", map[string]any{
		"caller": hexAddr(9),
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, resp.Error)
}

func TestRPCClaimLifecycle(t *testing.T) {
	server := newTestServer(t)
	ceo, submitter, processor := hexAddr(1), hexAddr(10), hexAddr(20)

	mustCall(t, server, "roles_initialize", map[string]any{
		"ceo": ceo, "treasurer": hexAddr(2),
	})
	mustCall(t, server, "fees_addToken", map[string]any{
		"caller": ceo, "token": "USDC", "decimals": 6,
	})
	mustCall(t, server, "claims_initializeProtocol", map[string]any{"caller": ceo})
	mustCall(t, server, "claims_initializeStats", map[string]any{"caller": ceo})
	mustCall(t, server, "claims_createSubmitter", map[string]any{"caller": submitter})
	mustCall(t, server, "claims_createPatient", map[string]any{
		"caller": submitter, "firstName": "Jo", "lastName": "Doe",
	})
	mustCall(t, server, "claims_createProcessor", map[string]any{
		"caller": ceo, "target": processor,
	})

	submitResp := mustCall(t, server, "claims_submitClaim", map[string]any{
		"caller":                submitter,
		"patientIndex":          0,
		"feeToken":              "USDC",
		"countryIndex":          1,
		"stateIndex":            5,
		"hospitalIndex":         -1,
		"insuranceCompanyIndex": -1,
		"fields": map[string]any{
			"hospitalType":              0,
			"hospitalName":              "St. Mungo's",
			"hospitalAddress":           "1 Main St",
			"hospitalCity":              "Springfield",
			"hospitalZipCode":           62704,
			"hospitalPhoneNumber":       "2175551234",
			"hospitalBillInvoiceNumber": "INV-1",
			"note":                      "checkup",
			"claimAmount":               100,
			"ailment":                   "flu",
			"insuranceCompanyName":      "Acme Mutual",
		},
	})
	require.NotNil(t, submitResp.Result)

	mustCall(t, server, "claims_assignClaim", map[string]any{
		"caller": processor, "submitter": submitter,
	})
	mustCall(t, server, "claims_createState", map[string]any{
		"caller": processor, "submitter": submitter, "countryIndex": 1, "stateIndex": 5,
	})
	mustCall(t, server, "claims_createHospital", map[string]any{
		"caller": processor, "submitter": submitter, "countryIndex": 1, "stateIndex": 5,
		"fields": map[string]any{
			"type":        0,
			"longitude":   -89.65,
			"latitude":    39.78,
			"name":        "St. Mungo's",
			"address":     "1 Main St",
			"city":        "Springfield",
			"zipCode":     62704,
			"phoneNumber": "2175551234",
		},
	})
	mustCall(t, server, "claims_createInsuranceCompany", map[string]any{
		"caller": processor, "submitter": submitter, "companyIndex": 3,
		"name": "Acme Mutual", "note": "",
	})
	mustCall(t, server, "claims_createPatientRecord", map[string]any{
		"caller": processor, "submitter": submitter,
	})
	mustCall(t, server, "claims_createHospitalAndInsuranceCompanyRecords", map[string]any{
		"caller": processor, "submitter": submitter,
	})
	approveResp := mustCall(t, server, "claims_approveClaim", map[string]any{
		"caller": processor, "submitter": submitter,
	})
	require.NotNil(t, approveResp.Result)

	// The in-flight claim is gone once resolved.
	status, resp := call(t, server, "claims_assignClaim", map[string]any{
		"caller": processor, "submitter": submitter,
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, resp.Error)
}
