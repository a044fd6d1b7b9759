// Package harness runs temporal query scenarios end to end.
//
// A scenario names a query document, rewrites its predicates, stores the
// document's elements in a fresh in-memory database and checks the
// rewritten predicate, the compiled SQL and the embeddings found against
// the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	document: path/to/query.yaml   # relative to the scenario file
//	variables: [a, b]              # optional, overrides the document
//	expect:
//	  unfolded: "(a.TX_FROM < 2020-01-01T00:00:00 AND ...)"
//	  sql: "(a_tx_from < ? AND b_tx_from < ?)"
//	  matches:
//	    - {a: alice, b: bob}
//	  error: "no pattern variables"   # expected failure, substring match
//
// Every expect field is optional. An empty matches list asserts that
// nothing matches; an omitted one is not checked.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/overlap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
