package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/sourcekart/sourcekart/internal/auth/domain"
	"github.com/sourcekart/sourcekart/internal/auth/password"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@sourcekart.dev"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Sourcekart Admin"
)

// EnsureDefaultAdmin seeds the back-office login for fresh deployments. The
// password is stored hashed; change it after first login.
func EnsureDefaultAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.AdminUser{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		name := defaultAdminDisplay
		return tx.Create(&authdomain.AdminUser{
			ID:           node.Generate().Int64(),
			Email:        defaultAdminEmail,
			Name:         &name,
			PasswordHash: hashed,
			Role:         authdomain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error
	})
}

type demoProduct struct {
	title        string
	description  string
	category     string
	price        int64
	original     int64
	technologies []string
	features     []string
}

var demoCatalog = []demoProduct{
	{
		title:        "React Admin Dashboard",
		description:  "Production-ready admin dashboard with charts, tables and auth flows.",
		category:     "react",
		price:        299900,
		original:     499900,
		technologies: []string{"React", "TypeScript", "Tailwind CSS"},
		features:     []string{"Dark mode", "Role-based access", "Chart widgets"},
	},
	{
		title:        "Next.js SaaS Starter",
		description:  "Subscription-ready SaaS boilerplate with billing and onboarding.",
		category:     "nextjs",
		price:        499900,
		original:     799900,
		technologies: []string{"Next.js", "Prisma", "Stripe"},
		features:     []string{"Auth", "Billing", "Team management"},
	},
	{
		title:        "Vue Storefront Theme",
		description:  "Headless commerce storefront with cart and checkout.",
		category:     "vue",
		price:        199900,
		original:     349900,
		technologies: []string{"Vue 3", "Pinia", "Vite"},
		features:     []string{"Cart", "Checkout", "Wishlist"},
	},
}

// EnsureDemoCatalog seeds a few products so a fresh storefront is browsable.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, demo := range demoCatalog {
			productSlug := slug.Make(demo.title)
			description := demo.description
			category := demo.category
			original := demo.original

			technologies, err := json.Marshal(demo.technologies)
			if err != nil {
				return err
			}
			features, err := json.Marshal(demo.features)
			if err != nil {
				return err
			}

			if err := tx.Create(&catalogdomain.Product{
				ID:            node.Generate().Int64(),
				Title:         demo.title,
				Slug:          productSlug,
				Description:   &description,
				Category:      &category,
				Price:         demo.price,
				OriginalPrice: &original,
				AssetKey:      productSlug + ".zip",
				Technologies:  datatypes.JSON(technologies),
				Features:      datatypes.JSON(features),
				Status:        catalogdomain.StatusActive,
				CreatedAt:     now,
				UpdatedAt:     now,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
