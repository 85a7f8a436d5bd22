// Package harness runs translation conformance cases.
//
// A case is a YAML file naming a decision payload and the expected outcome:
// either the exact WHERE-clause fragment or the failure kind.
//
//	name: account-equals
//	description: single equality on a field
//	payload_file: payloads/account_equals.json
//	expect:
//	  sql: "((entity.account_id = 456))"
//
// Payloads are given inline (payload) or as a file path relative to the case
// file (payload_file). A case may also set expect.golden to compare the
// outcome against testdata/golden/<name>.golden, which is rewritten with
//
//	go test ./internal/harness -update
//
// When a Harness is given an audit store, every run is recorded there with
// the payload digest.
package harness
