// Package harness runs conformance scenarios against the verification
// pipeline.
//
// A scenario pairs a codebase description with CUE module declarations and
// states the expected verdict. The harness runs the full pipeline, records
// the report in an in-memory history store and checks the expectations.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: boundary
//	description: "shipping reaches into billing's core"
//	codebase_file: ../../codebase/testdata/shop.yaml
//	declarations: |
//	  module: billing: { exposed: ["api"], internal: ["core"] }
//	options:
//	  max_cycles: 10
//	expect:
//	  passed: false
//	  violations:
//	    - BOUNDARY_VIOLATION:com.shop.shipping.api->com.shop.billing.core
//	assertions:
//	  - type: violation_count
//	    kind: BOUNDARY_VIOLATION
//	    count: 1
//
// The codebase is given inline under codebase or by path under
// codebase_file, resolved relative to the scenario file.
//
// # Assertion Types
//
//   - violation_count: exactly count violations, optionally of one kind
//   - violation_present: a violation with the given key exists
//   - violation_absent: no violation with the given key exists
//   - message_contains: the violation with key has text in its message
//   - depends_on: the source module depends on the target module
//
// # Deterministic Testing
//
// Run IDs come from testutil.SequentialIDs and every scenario gets a fresh
// in-memory store, so golden snapshots are stable across runs. Setting
// options.shuffle_seed permutes the package order before discovery; the
// verdict and violation keys must not change.
package harness
