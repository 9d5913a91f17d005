// Package ir provides the module graph types shared by every modcheck stage.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal, which keeps it the
// foundational layer with no import cycles of its own.
//
// The graph is arena-allocated: modules and units live in flat slices and refer
// to each other by integer IDs (ModuleID) or interned package paths. A Graph is
// built once per verification run and never mutated afterwards, so it can be
// read concurrently by the extractor and the verifier without locking.
//
// Key design constraints:
//   - Discovery order is preserved everywhere (no map iteration in outputs)
//   - All JSON tags use snake_case
//   - Reports and models have canonical fingerprints so reruns on unchanged
//     input can be compared byte for byte
package ir
