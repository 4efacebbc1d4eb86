package seed

import "github.com/kadirpekel/dealfinder/pkg/graph"

const cypherSchema = `Node labels and properties:
  (:Restaurant {id, name, cuisine, rating, address})
  (:User {id, name})
  (:Membership {level})
  (:Promo {code, details})
Relationships:
  (:Restaurant)-[:OFFERS]->(:Promo)
  (:Promo)-[:REQUIRES_LEVEL]->(:Membership)
  (:User)-[:HAS_MEMBERSHIP]->(:Membership)
  (:User)-[:FAVORS]->(:Restaurant)
Example: MATCH (r:Restaurant)-[:OFFERS]->(p:Promo)-[:REQUIRES_LEVEL]->(m:Membership {level: 'Gold'}) RETURN r.name, p.code, p.details`

// CypherStatements clears the graph and recreates d. Values are passed as
// parameters.
func CypherStatements(d Dataset) []graph.Statement {
	stmts := []graph.Statement{{Query: "MATCH (n) DETACH DELETE n"}}

	for _, r := range d.Restaurants {
		stmts = append(stmts, graph.Statement{
			Query: "CREATE (:Restaurant {id: $id, name: $name, cuisine: $cuisine, rating: $rating, address: $address})",
			Params: map[string]any{
				"id": r.ID, "name": r.Name, "cuisine": r.Cuisine, "rating": r.Rating, "address": r.Address,
			},
		})
	}

	for _, level := range d.MembershipLevels() {
		stmts = append(stmts, graph.Statement{
			Query:  "MERGE (:Membership {level: $level})",
			Params: map[string]any{"level": level},
		})
	}

	for _, u := range d.Users {
		stmts = append(stmts, graph.Statement{
			Query: `CREATE (u:User {id: $id, name: $name})
WITH u
MATCH (m:Membership {level: $level})
MERGE (u)-[:HAS_MEMBERSHIP]->(m)`,
			Params: map[string]any{"id": u.ID, "name": u.Name, "level": u.MembershipLevel},
		})
	}

	for _, p := range d.Promos {
		stmts = append(stmts, graph.Statement{
			Query: `MATCH (r:Restaurant {id: $restaurant_id})
MERGE (p:Promo {code: $code, details: $details})
MERGE (r)-[:OFFERS]->(p)
WITH p
MATCH (m:Membership {level: $level})
MERGE (p)-[:REQUIRES_LEVEL]->(m)`,
			Params: map[string]any{
				"restaurant_id": p.RestaurantID, "code": p.Code, "details": p.Details, "level": p.RequiredLevel,
			},
		})
	}

	for _, f := range d.Favorites {
		stmts = append(stmts, graph.Statement{
			Query:  "MATCH (u:User {id: $user_id}), (r:Restaurant {id: $restaurant_id}) MERGE (u)-[:FAVORS]->(r)",
			Params: map[string]any{"user_id": f.UserID, "restaurant_id": f.RestaurantID},
		})
	}

	return stmts
}
