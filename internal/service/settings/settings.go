package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/repository"
)

var defaultMinTopUp = decimal.NewFromInt(1)

// Service resolves runtime configuration with a fixed precedence:
// environment variable (upper-cased key) first, settings table second.
// Resolution happens at point of use so credential rotation doesn't
// need a restart.
type Service struct {
	settingRepo repository.SettingRepo
	getenv      func(string) string
}

func NewService(settingRepo repository.SettingRepo) *Service {
	return &Service{
		settingRepo: settingRepo,
		getenv:      os.Getenv,
	}
}

// NewServiceWithEnv allows tests to control the environment lookup
func NewServiceWithEnv(settingRepo repository.SettingRepo, getenv func(string) string) *Service {
	return &Service{
		settingRepo: settingRepo,
		getenv:      getenv,
	}
}

// Resolve returns the value for key, env first, store second.
// Returns apperrors.ErrSettingNotFound if neither source has it.
func (s *Service) Resolve(ctx context.Context, key string) (string, error) {
	if value := s.getenv(strings.ToUpper(key)); value != "" {
		return value, nil
	}

	return s.settingRepo.GetSetting(ctx, key)
}

// GatewayAccessToken returns the payment gateway credential.
// Returns apperrors.ErrNotConfigured when it is missing.
func (s *Service) GatewayAccessToken(ctx context.Context) (string, error) {
	return s.credential(ctx, models.SettingGatewayAccessToken)
}

// SupplierAPIKey returns the supplier credential.
// Returns apperrors.ErrNotConfigured when it is missing.
func (s *Service) SupplierAPIKey(ctx context.Context) (string, error) {
	return s.credential(ctx, models.SettingSupplierAPIKey)
}

// ProfitMargin returns the configured markup percentage, zero when unset
func (s *Service) ProfitMargin(ctx context.Context) (decimal.Decimal, error) {
	return s.decimalSetting(ctx, models.SettingProfitMargin, decimal.Zero)
}

// MinTopUp returns the minimum accepted payment amount
func (s *Service) MinTopUp(ctx context.Context) (decimal.Decimal, error) {
	return s.decimalSetting(ctx, models.SettingMinTopUp, defaultMinTopUp)
}

// Set stores the value, GetAll dumps everything stored.
// Environment overrides are intentionally not visible here: the admin
// panel manages only the persisted layer.
func (s *Service) Set(ctx context.Context, key string, value string) error {
	return s.settingRepo.SetSetting(ctx, key, value)
}

func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	return s.settingRepo.AllSettings(ctx)
}

func (s *Service) credential(ctx context.Context, key string) (string, error) {
	value, err := s.Resolve(ctx, key)

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, apperrors.ErrSettingNotFound):
		return "", fmt.Errorf("%w: %s", apperrors.ErrNotConfigured, key)
	default:
		return "", err
	}
}

func (s *Service) decimalSetting(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, err := s.Resolve(ctx, key)

	switch {
	case errors.Is(err, apperrors.ErrSettingNotFound):
		return def, nil
	case err != nil:
		return def, err
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return def, fmt.Errorf("setting %q is not a number: %w", key, err)
	}

	return value, nil
}
