// Package harness runs conformance scenarios against the compiler.
//
// A scenario names a graph document (or embeds one), compiles it through the
// full pipeline and checks the outcome with assertions. Scenarios may also pin
// the emitted WGSL and diagnostics in a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: splat_default
//	description: "A Float default feeding a Vec3 multiply is splatted"
//	graph: ../graphs/splat.cue        # relative to the scenario file
//	roots: [scale]                    # optional, overrides the document roots
//	golden: true                      # compare against golden/<file>.golden
//	assertions:
//	  - type: status
//	    status: ok
//	  - type: instruction_count
//	    count: 4
//	  - type: wgsl_contains
//	    text: "vec3<f32>(v1)"
//
// Instead of graph, source may hold the CUE document inline.
//
// # Assertion Types
//
//   - status: the run is "ok" or "failed"
//   - instruction_count: the final program has exactly count instructions
//   - convert_count: the final program has exactly count conversions
//   - wgsl_contains: the emitted WGSL contains text
//   - ir_contains: the textual IR contains text
//   - error_code: the run failed with code
//   - diagnostic: some diagnostic has code, optionally on node and with severity
//   - diagnostic_count: exactly count diagnostics, optionally of one severity
//
// # Determinism
//
// Node ids follow declaration order in the document, so the same scenario
// always produces byte-identical WGSL and diagnostics. When a store is
// attached, runs are recorded with whatever id generator and clock the store
// was opened with.
package harness
