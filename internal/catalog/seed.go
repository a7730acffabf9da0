package catalog

// seedProducts is the fixed starter set inserted when the catalog is empty.
var seedProducts = []Product{
	{Name: "Classic Tee", Price: 2499, ImageURL: "https://storage.googleapis.com/gemini-dev-resources/ecom-a/tee.jpg"},
	{Name: "Leather Jacket", Price: 14999, ImageURL: "https://storage.googleapis.com/gemini-dev-resources/ecom-a/jacket.jpg"},
	{Name: "Slim-Fit Jeans", Price: 4999, ImageURL: "https://storage.googleapis.com/gemini-dev-resources/ecom-a/jeans.jpg"},
	{Name: "Running Shoes", Price: 7999, ImageURL: "https://storage.googleapis.com/gemini-dev-resources/ecom-a/shoes.jpg"},
	{Name: "Beanie Hat", Price: 1499, ImageURL: "https://storage.googleapis.com/gemini-dev-resources/ecom-a/beanie.jpg"},
}
