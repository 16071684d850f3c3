package app

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
)

// SchedExpiryDigestTask mails every household member a list of their
// pantry records that expire within the configured horizon. Members
// without expiring stock get no mail.
func (a *Application) SchedExpiryDigestTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if !a.GetSettingsBoolValue("smtp", "DigestEnabled") {
		return
	}
	server := a.GetSettingsStringValue("smtp", "Server")
	if server == "" {
		zap.L().Warn("expiry digest enabled but smtp server not configured")
		return
	}

	horizon := a.ConfigMgr().GetInt("pantry", "ExpiryHorizonDays")
	if horizon <= 0 {
		horizon = 5
	}

	var products []domain.Product
	if err := a.gormDB.Find(&products).Error; err != nil {
		zap.L().Error("expiry digest failed to load catalog", zap.Error(err))
		return
	}

	var users []domain.SysUser
	if err := a.gormDB.Where("status = ?", common.ENABLED).Find(&users).Error; err != nil {
		zap.L().Error("expiry digest failed to load users", zap.Error(err))
		return
	}

	for _, user := range users {
		if user.Email == "" || strings.EqualFold(user.Email, "N/A") {
			continue
		}

		var records []domain.PantryRecord
		if err := a.gormDB.Where("user_id = ?", user.ID).Find(&records).Error; err != nil {
			zap.L().Error("expiry digest failed to load pantry", zap.Int64("user_id", user.ID), zap.Error(err))
			continue
		}

		query := inventory.NewQuery(products, records, time.Now())
		expiring := query.ExpiringSoon(horizon)
		if len(expiring) == 0 {
			continue
		}

		body := buildDigestBody(query, expiring, horizon)
		if err := a.sendDigestMail(user.Email, body); err != nil {
			zap.L().Error("failed to send expiry digest",
				zap.String("email", user.Email), zap.Error(err))
			continue
		}
		zap.L().Info("expiry digest sent",
			zap.String("email", user.Email), zap.Int("items", len(expiring)))
	}
}

func buildDigestBody(query *inventory.Query, expiring []domain.PantryRecord, horizon int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The following pantry items expire within %d days:\n\n", horizon)
	for _, rec := range expiring {
		name := "(unknown product)"
		if product, found := query.Product(rec); found {
			name = product.Name
		}
		fmt.Fprintf(&sb, "  - %s, expires %s\n", name, rec.ExpiresAt)
	}
	sb.WriteString("\nUse them before they go to waste.\n")
	return sb.String()
}

func (a *Application) sendDigestMail(to, body string) error {
	server := a.GetSettingsStringValue("smtp", "Server")
	port := a.ConfigMgr().GetInt("smtp", "Port")
	if port == 0 {
		port = 587
	}
	username := a.GetSettingsStringValue("smtp", "Username")
	password := a.GetSettingsStringValue("smtp", "Password")
	from := a.GetSettingsStringValue("smtp", "From")

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "HomeStock: items expiring soon")
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(server, port, username, password)
	return d.DialAndSend(m)
}
