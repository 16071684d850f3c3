package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

// demoUserID is the household member seeded alongside the admin account.
const demoUserID int64 = 1

func (a *Application) checkSuper() {
	const superEmail = "admin@demo.com"
	const defaultPassword = "homestock"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var admin domain.SysUser
	err := a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Name:      "Administrator",
			Email:     superEmail,
			Phone:     "N/A",
			Password:  hashedPassword,
			Role:      domain.RoleAdmin,
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !strings.EqualFold(admin.Role, domain.RoleAdmin)
	resetStatus := !strings.EqualFold(admin.Status, common.ENABLED)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var defaultSettings = []settingSchema{
	{Key: "sync.UpstreamURL", Default: "", Description: "Upstream pantry service endpoint for purchase delivery (empty disables sync)"},
	{Key: "sync.SweepIntervalSeconds", Default: "60", Description: "How often the purchase outbox sweeps pending deliveries"},
	{Key: "sync.RetentionDays", Default: "30", Description: "Days to keep delivered purchase orders before cleanup"},
	{Key: "pantry.ExpiryHorizonDays", Default: "5", Description: "Dashboard window for the expiring-soon list"},
	{Key: "smtp.Server", Default: "", Description: "SMTP server for the expiry digest mail"},
	{Key: "smtp.Port", Default: "587", Description: "SMTP server port"},
	{Key: "smtp.Username", Default: "", Description: "SMTP account username"},
	{Key: "smtp.Password", Default: "", Description: "SMTP account password"},
	{Key: "smtp.From", Default: "homestock@localhost", Description: "Sender address for digest mail"},
	{Key: "smtp.DigestEnabled", Default: "false", Description: "Enable the daily expiring-soon email digest"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     0,
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkCategories initializes the default category set
func (a *Application) checkCategories() {
	defaultCategories := []domain.Category{
		{Name: "dairy", Description: "Milk, cheese, yogurt and other dairy"},
		{Name: "bakery", Description: "Bread and baked goods"},
		{Name: "meat", Description: "Fresh and processed meat"},
		{Name: "produce", Description: "Fruit and vegetables"},
		{Name: "other", Description: "Everything else"},
	}

	for _, cat := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("name = ?", cat.Name).Count(&count)
		if count == 0 {
			cat.ID = common.UUIDint64()
			if err := a.gormDB.Create(&cat).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("name", cat.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("name", cat.Name))
			}
		}
	}
}

// checkProducts initializes the starter catalog
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{ID: 1, Name: "Milk", Brand: "Brand A", Category: "dairy", Barcode: "123456789", Unit: "1L", QuantityType: domain.QuantityTypeUnit},
		{ID: 2, Name: "Eggs", Brand: "Brand B", Category: "dairy", Barcode: "987654321", Unit: "12 pieces", QuantityType: domain.QuantityTypeUnit},
		{ID: 3, Name: "Yogurt", Brand: "Brand C", Category: "dairy", Barcode: "456789123", Unit: "500g", QuantityType: domain.QuantityTypeUnit},
		{ID: 4, Name: "Bread", Brand: "Brand D", Category: "bakery", Barcode: "321654987", Unit: "1 loaf", QuantityType: domain.QuantityTypeUnit},
		{ID: 5, Name: "Beef", Brand: "Butcher X", Category: "meat", Barcode: "", Unit: "kg", QuantityType: domain.QuantityTypeWeight},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("id = ?", p.ID).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}

// checkDemoPantry seeds one household member with a small pantry so a
// fresh install has something to show.
func (a *Application) checkDemoPantry() {
	var count int64
	a.gormDB.Model(&domain.SysUser{}).Where("id = ?", demoUserID).Count(&count)
	if count == 0 {
		if err := a.gormDB.Create(&domain.SysUser{
			ID:       demoUserID,
			Name:     "John Doe",
			Email:    "john@example.com",
			Phone:    "+90 555 000 00 00",
			Password: common.Sha256HashWithSalt("homestock", common.GetSecretSalt()),
			Role:     domain.RoleUser,
			Status:   common.ENABLED,
		}).Error; err != nil {
			zap.L().Error("failed to create demo user", zap.Error(err))
			return
		}
		zap.L().Info("initialized demo user", zap.String("email", "john@example.com"))
	}

	demoRecords := []domain.PantryRecord{
		{ID: 1, UserID: demoUserID, ProductID: 1, QuantityClosed: 1, MinDesired: 3, ExpiresAt: "2025-11-30"},
		{ID: 2, UserID: demoUserID, ProductID: 2, QuantityClosed: 2, MinDesired: 6, ExpiresAt: "2025-12-05"},
		{ID: 3, UserID: demoUserID, ProductID: 3, QuantityOpen: 2, MinDesired: 4, ExpiresAt: "2025-11-27"},
		{ID: 4, UserID: demoUserID, ProductID: 5, QuantityWeight: 1.0, MinDesired: 0.5, ExpiresAt: "2025-11-26"},
	}

	for _, rec := range demoRecords {
		var n int64
		a.gormDB.Model(&domain.PantryRecord{}).
			Where("user_id = ? AND product_id = ?", rec.UserID, rec.ProductID).
			Count(&n)
		if n == 0 {
			if err := a.gormDB.Create(&rec).Error; err != nil {
				zap.L().Error("failed to seed demo pantry record",
					zap.Int64("product_id", rec.ProductID), zap.Error(err))
			}
		}
	}
}
