package services

import (
	"context"
	"strings"

	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/domain"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
)

// policyService merges configured blacklist entries with the ones stored
// in system settings.
type policyService struct {
	repo     ports.SystemSettingRepository
	defaults []string
	logger   *logger.Logger
	events   eventRecorder
	*keyLocker
}

type PolicyServiceConfig struct {
	SettingRepo     ports.SystemSettingRepository
	TimelineRepo    ports.TimelineRepository
	DefaultBlackIPs []string
	Logger          *logger.Logger
	EnableLocks     bool
}

func NewPolicyService(cfg PolicyServiceConfig) ports.PolicyService {
	return &policyService{
		repo:      cfg.SettingRepo,
		defaults:  append([]string(nil), cfg.DefaultBlackIPs...),
		logger:    cfg.Logger,
		events:    eventRecorder{timelineRepo: cfg.TimelineRepo, logger: cfg.Logger},
		keyLocker: newKeyLocker(cfg.EnableLocks),
	}
}

func (s *policyService) BlackIPs(ctx context.Context) ([]string, error) {
	stored, err := s.StoredBlackIPs(ctx)
	if err != nil {
		return nil, err
	}
	return mergeEntries(s.defaults, stored), nil
}

func (s *policyService) StoredBlackIPs(ctx context.Context) ([]string, error) {
	setting, err := s.repo.Get(ctx, domain.SettingKeyBlackIPs)
	if err != nil {
		s.logger.Errorw("policy_black_ips_load_failed", "error", err)
		return nil, err
	}
	if setting == nil {
		return []string{}, nil
	}
	return splitEntries(setting.Value), nil
}

// UpdateBlackIPs replaces the stored entries. Every entry must be an
// address, a CIDR or a range; nothing is stored otherwise.
func (s *policyService) UpdateBlackIPs(ctx context.Context, entries []string) error {
	clean := mergeEntries(nil, entries)
	var bad []string
	for _, e := range clean {
		if err := ValidatePolicyEntry(e); err != nil {
			bad = append(bad, e)
		}
	}
	if len(bad) > 0 {
		return newError(ErrValidation, map[string]interface{}{"invalid_entries": bad})
	}

	unlock := s.lockKeys("setting:" + domain.SettingKeyBlackIPs)
	defer unlock()

	setting := &domain.SystemSetting{
		Key:      domain.SettingKeyBlackIPs,
		Value:    strings.Join(clean, "\n"),
		Type:     "list",
		Category: domain.SettingCategory,
	}
	if err := s.repo.Set(ctx, setting); err != nil {
		s.logger.Errorw("policy_black_ips_update_failed", "error", err)
		return err
	}

	s.events.record(ctx, domain.ResourceTypePolicy, domain.SettingKeyBlackIPs, domain.EventTypePolicyUpdated,
		domain.EventStatusSuccess, "black ips updated", map[string]interface{}{"entries": len(clean)})
	s.logger.Infow("policy_black_ips_update_ok", "entries", len(clean))
	return nil
}

// ClearBlackIPs drops the stored entries; configured defaults stay in force.
func (s *policyService) ClearBlackIPs(ctx context.Context) error {
	unlock := s.lockKeys("setting:" + domain.SettingKeyBlackIPs)
	defer unlock()

	if err := s.repo.Delete(ctx, domain.SettingKeyBlackIPs); err != nil {
		s.logger.Errorw("policy_black_ips_clear_failed", "error", err)
		return err
	}

	s.events.record(ctx, domain.ResourceTypePolicy, domain.SettingKeyBlackIPs, domain.EventTypePolicyCleared,
		domain.EventStatusSuccess, "black ips cleared", nil)
	s.logger.Infow("policy_black_ips_clear_ok")
	return nil
}

func splitEntries(value string) []string {
	return mergeEntries(nil, strings.FieldsFunc(value, func(r rune) bool {
		return r == '\n' || r == ',' || r == '\r'
	}))
}

func mergeEntries(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, e := range list {
			e = strings.TrimSpace(e)
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
