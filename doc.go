// Package dealfinder answers food and deal questions with a ReAct agent.
//
// The agent reasons in Thought / Action / Observation steps over two tools:
// a semantic dish search backed by a vector store, and a query tool over a
// graph (Neo4j) or relational (SQL) store holding restaurants, promos and
// membership levels.
//
// # Quick Start
//
//	go install github.com/kadirpekel/dealfinder/cmd/dealfinder@latest
//
//	dealfinder seed --config configs/dealfinder.yaml
//	dealfinder ask --config configs/dealfinder.yaml --example complex --verbose
//
// The packages under pkg/ can be used directly:
//
//	rt, err := runtime.New(ctx, cfg, runtime.Options{})
//	if err != nil {
//		return err
//	}
//	defer rt.Close()
//	res, err := rt.Ask(ctx, "What is the promo code for Thai Basil House?")
package dealfinder
