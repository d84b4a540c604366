package models

import "time"

// Setting is one admin-managed configuration entry.
// Environment variables with the upper-cased key take precedence over
// the stored value, see the settings service.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Well known setting keys
const (
	SettingGatewayAccessToken = "mp_access_token"
	SettingGatewayPublicKey   = "mp_public_key"
	SettingSupplierAPIKey     = "barato_api_key"
	SettingProfitMargin       = "profit_margin"
	SettingMinTopUp           = "min_topup_amount"
)
