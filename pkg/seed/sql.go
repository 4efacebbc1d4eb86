package seed

import "github.com/kadirpekel/dealfinder/pkg/graph"

const sqlSchema = `Tables:
  restaurants(id, name, cuisine, rating, address)
  users(id, name)
  memberships(level)
  user_memberships(user_id -> users.id, level -> memberships.level)
  promos(code, restaurant_id -> restaurants.id, required_level -> memberships.level, details)
  favorites(user_id -> users.id, restaurant_id -> restaurants.id)
Example: SELECT r.name, p.code, p.details FROM promos p JOIN restaurants r ON r.id = p.restaurant_id WHERE p.required_level = 'Gold'`

var sqlTables = []struct {
	name string
	ddl  string
}{
	{"restaurants", "CREATE TABLE restaurants (id VARCHAR(16) PRIMARY KEY, name VARCHAR(255) NOT NULL, cuisine VARCHAR(64), rating DOUBLE PRECISION, address VARCHAR(255))"},
	{"users", "CREATE TABLE users (id VARCHAR(16) PRIMARY KEY, name VARCHAR(255) NOT NULL)"},
	{"memberships", "CREATE TABLE memberships (level VARCHAR(32) PRIMARY KEY)"},
	{"user_memberships", "CREATE TABLE user_memberships (user_id VARCHAR(16) NOT NULL, level VARCHAR(32) NOT NULL)"},
	{"promos", "CREATE TABLE promos (code VARCHAR(32) PRIMARY KEY, restaurant_id VARCHAR(16) NOT NULL, required_level VARCHAR(32) NOT NULL, details VARCHAR(255))"},
	{"favorites", "CREATE TABLE favorites (user_id VARCHAR(16) NOT NULL, restaurant_id VARCHAR(16) NOT NULL)"},
}

// SQLStatements drops and recreates the relational form of d. Placeholders
// are written as "?" and rebound by the store.
func SQLStatements(d Dataset) []graph.Statement {
	var stmts []graph.Statement
	for i := len(sqlTables) - 1; i >= 0; i-- {
		stmts = append(stmts, graph.Statement{Query: "DROP TABLE IF EXISTS " + sqlTables[i].name})
	}
	for _, t := range sqlTables {
		stmts = append(stmts, graph.Statement{Query: t.ddl})
	}

	for _, r := range d.Restaurants {
		stmts = append(stmts, graph.Statement{
			Query: "INSERT INTO restaurants (id, name, cuisine, rating, address) VALUES (?, ?, ?, ?, ?)",
			Args:  []any{r.ID, r.Name, r.Cuisine, r.Rating, r.Address},
		})
	}
	for _, level := range d.MembershipLevels() {
		stmts = append(stmts, graph.Statement{
			Query: "INSERT INTO memberships (level) VALUES (?)",
			Args:  []any{level},
		})
	}
	for _, u := range d.Users {
		stmts = append(stmts,
			graph.Statement{Query: "INSERT INTO users (id, name) VALUES (?, ?)", Args: []any{u.ID, u.Name}},
			graph.Statement{Query: "INSERT INTO user_memberships (user_id, level) VALUES (?, ?)", Args: []any{u.ID, u.MembershipLevel}},
		)
	}
	for _, p := range d.Promos {
		stmts = append(stmts, graph.Statement{
			Query: "INSERT INTO promos (code, restaurant_id, required_level, details) VALUES (?, ?, ?, ?)",
			Args:  []any{p.Code, p.RestaurantID, p.RequiredLevel, p.Details},
		})
	}
	for _, f := range d.Favorites {
		stmts = append(stmts, graph.Statement{
			Query: "INSERT INTO favorites (user_id, restaurant_id) VALUES (?, ?)",
			Args:  []any{f.UserID, f.RestaurantID},
		})
	}
	return stmts
}
