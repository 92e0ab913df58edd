package migration

import (
	authdomain "github.com/sourcekart/sourcekart/internal/auth/domain"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	"github.com/sourcekart/sourcekart/internal/config"
	tokendomain "github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	orderdomain "github.com/sourcekart/sourcekart/internal/order/domain"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
	"github.com/sourcekart/sourcekart/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments are local or test setups;
			// the model schema is authoritative there.
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&orderdomain.Order{},
				&purchasedomain.Purchase{},
				&tokendomain.DownloadToken{},
				&authdomain.AdminUser{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureDefaultAdmin(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoCatalog(conn)
		}
		return nil
	}),
)
