// Package seed holds the demo deal dataset and loads it into the graph
// store and the dish index.
package seed

import "slices"

type Restaurant struct {
	ID      string
	Name    string
	Cuisine string
	Rating  float64
	Address string
}

type Dish struct {
	ID           string
	RestaurantID string
	Name         string
	Description  string
	Price        float64
	Rating       float64
}

type User struct {
	ID              string
	Name            string
	MembershipLevel string
}

type Promo struct {
	Code          string
	RestaurantID  string
	RequiredLevel string
	Details       string
}

// Favorite is a FAVORS edge from a user to a restaurant.
type Favorite struct {
	UserID       string
	RestaurantID string
}

// Dataset is everything the loader writes. Dishes go to the vector index,
// the rest to the graph store.
type Dataset struct {
	Restaurants []Restaurant
	Dishes      []Dish
	Users       []User
	Promos      []Promo
	Favorites   []Favorite
}

// Default returns the demo dataset.
func Default() Dataset {
	return Dataset{
		Restaurants: []Restaurant{
			{ID: "R1", Name: "Thai Basil House", Cuisine: "Thai", Rating: 4.7, Address: "123 Market St"},
			{ID: "R2", Name: "Pizza Planet", Cuisine: "Italian", Rating: 4.2, Address: "456 Oak Ave"},
			{ID: "R3", Name: "Green Garden Grill", Cuisine: "Vegan", Rating: 4.9, Address: "789 Pine Ln"},
		},
		Dishes: []Dish{
			{
				ID: "D1", RestaurantID: "R1", Name: "Red Curry Delight", Price: 15.00, Rating: 4.8,
				Description: "A fragrant, creamy, and spicy coconut milk red curry with bamboo shoots and basil. Vegetarian option available.",
			},
			{
				ID: "D2", RestaurantID: "R1", Name: "Pad See Ew Noodles", Price: 14.50, Rating: 4.5,
				Description: "Wide rice noodles stir-fried with Chinese broccoli, egg, and a rich, sweet soy sauce. Classic comfort food.",
			},
			{
				ID: "D3", RestaurantID: "R2", Name: "Pepperoni Classic", Price: 20.00, Rating: 4.1,
				Description: "Traditional hand-tossed pepperoni pizza with slow-cooked tomato sauce and fresh mozzarella.",
			},
			{
				ID: "D4", RestaurantID: "R3", Name: "Avocado Black Bean Burger", Price: 16.50, Rating: 4.9,
				Description: "A dense, savory patty made from black beans and quinoa, topped with fresh avocado and chipotle mayo.",
			},
		},
		Users: []User{
			{ID: "U1", Name: "Agent User", MembershipLevel: "Gold"},
		},
		Promos: []Promo{
			{Code: "GOLD20", RestaurantID: "R1", RequiredLevel: "Gold", Details: "20% off all Thai dishes."},
			{Code: "FREEDEL", RestaurantID: "R3", RequiredLevel: "Silver", Details: "Free delivery on all orders over $15."},
		},
		Favorites: []Favorite{
			{UserID: "U1", RestaurantID: "R1"},
		},
	}
}

// MembershipLevels returns every level held by a user or required by a
// promo, in first-seen order.
func (d Dataset) MembershipLevels() []string {
	var levels []string
	add := func(level string) {
		if level != "" && !slices.Contains(levels, level) {
			levels = append(levels, level)
		}
	}
	for _, u := range d.Users {
		add(u.MembershipLevel)
	}
	for _, p := range d.Promos {
		add(p.RequiredLevel)
	}
	return levels
}
