package seeders

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
	Register("categories", SeedCategories)
	Register("products", SeedProducts)
}

// Admin credentials created by SeedUsers.
const (
	AdminEmail    = "admin@ultranet.com"
	AdminName     = "Admin User"
	AdminPassword = "password"
)

// Categories is the seeded category list.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Books",
	"Home & Garden",
	"Sports & Outdoors",
	"Toys & Games",
	"Beauty & Health",
	"Automotive",
	"Food & Beverage",
	"Office Supplies",
}

// SeedUsers creates or refreshes the admin account.
func SeedUsers(ctx context.Context, db *gorm.DB) error {
	hash, err := auth.HashPassword(AdminPassword)
	if err != nil {
		return err
	}
	u := models.User{Name: AdminName, Email: AdminEmail, Password: hash}
	return repositories.NewUserRepository(db).Upsert(ctx, &u)
}

// SeedCategories creates any missing category from Categories.
func SeedCategories(ctx context.Context, db *gorm.DB) error {
	repo := repositories.NewCategoryRepository(db)
	for _, name := range Categories {
		if _, err := repo.FirstOrCreate(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

var (
	adjectives = []string{"Classic", "Premium", "Compact", "Deluxe", "Eco", "Smart", "Portable", "Vintage", "Ultra", "Essential"}
	nouns      = []string{"Kit", "Set", "Pack", "Edition", "Bundle", "Model", "Series", "Collection"}
	sentences  = []string{
		"Built to last with carefully chosen materials.",
		"A customer favourite for everyday use.",
		"Lightweight and easy to carry anywhere.",
		"Designed with attention to every detail.",
		"Great value for the quality you get.",
	}
)

// SeedProducts adds 5 to 10 random products to every category.
func SeedProducts(ctx context.Context, db *gorm.DB) error {
	categories, err := repositories.NewCategoryRepository(db).All(ctx)
	if err != nil {
		return err
	}

	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	products := repositories.NewProductRepository(db)
	for _, c := range categories {
		for range 5 + r.IntN(6) {
			p := fakeProduct(r, c)
			if err := products.Create(ctx, &p); err != nil {
				return err
			}
		}
	}
	return nil
}

func fakeProduct(r *rand.Rand, c models.Category) models.Product {
	description := sentences[r.IntN(len(sentences))] + " " + sentences[r.IntN(len(sentences))]
	return models.Product{
		Name:        fmt.Sprintf("%s %s %s", adjectives[r.IntN(len(adjectives))], c.Name, nouns[r.IntN(len(nouns))]),
		CategoryID:  c.ID,
		Description: &description,
		Price:       decimal.New(int64(100+r.IntN(99900)), -2),
		Stock:       r.IntN(501),
		Enabled:     r.IntN(10) < 8,
	}
}
