package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"invite-share/database/model"
)

type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// AllSetting is the admin form: every business setting saved in one go.
type AllSetting struct {
	InvitePrice        float64             `json:"invitePrice" form:"invitePrice"`
	TodayCount         int                 `json:"todayCount" form:"todayCount"`
	TotalCount         int                 `json:"totalCount" form:"totalCount"`
	InviteCode         string              `json:"inviteCode" form:"inviteCode"`
	InviteDisplayCount int                 `json:"inviteDisplayCount" form:"inviteDisplayCount"`
	RefreshRules       []model.RefreshRule `json:"refreshRules" form:"refreshRules"`
}

// ProbabilityTolerance 规则概率之和与 100 之间允许的误差
const ProbabilityTolerance = 0.5

// ValidationError names the offending field. Key is the translation id of the
// message, Params its "Name==value" template data and Message the untranslated form.
type ValidationError struct {
	Field   string
	Key     string
	Params  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, key, format string, a ...any) *ValidationError {
	return &ValidationError{Field: field, Key: key, Message: fmt.Sprintf(format, a...)}
}

// CheckValid reports every problem of the form at once; nil means it can be saved.
func (s *AllSetting) CheckValid() error {
	var errs ValidationErrors

	if math.IsNaN(s.InvitePrice) || math.IsInf(s.InvitePrice, 0) || s.InvitePrice < 0 {
		errs = append(errs, invalid(model.KeyInvitePrice, "pages.settings.toasts.invalidPrice", "invite price must not be negative"))
	}
	if s.TodayCount < 0 {
		errs = append(errs, invalid(model.KeyTodayCount, "pages.settings.toasts.invalidTodayCount", "today count must not be negative"))
	}
	if s.TotalCount < 0 {
		errs = append(errs, invalid(model.KeyTotalCount, "pages.settings.toasts.invalidTotalCount", "total count must not be negative"))
	}
	if strings.TrimSpace(s.InviteCode) == "" {
		errs = append(errs, invalid(model.KeyInviteCode, "pages.settings.toasts.emptyInviteCode", "invite code must not be empty"))
	}
	if s.InviteDisplayCount < 1 {
		errs = append(errs, invalid(model.KeyInviteDisplayCount, "pages.settings.toasts.invalidDisplayCount", "display count must be greater than 0"))
	}
	errs = append(errs, CheckRules(s.RefreshRules)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CheckRules validates a refresh rule table on its own.
func CheckRules(rules []model.RefreshRule) ValidationErrors {
	if len(rules) == 0 {
		return ValidationErrors{invalid(model.KeyRefreshRules, "pages.settings.toasts.noRules", "at least one rule is required")}
	}

	var errs ValidationErrors
	total := 0.0
	for i, rule := range rules {
		if rule.Increment < 0 {
			errs = append(errs, invalid(fmt.Sprintf("%s[%d].increment", model.KeyRefreshRules, i),
				"pages.settings.toasts.invalidIncrement", "increment must not be negative"))
		}
		p := rule.Probability
		if math.IsNaN(p) || p < 0 || p > 100 {
			errs = append(errs, invalid(fmt.Sprintf("%s[%d].probability", model.KeyRefreshRules, i),
				"pages.settings.toasts.invalidProbability", "probability must be within [0, 100]"))
			continue
		}
		total += p
	}
	if len(errs) == 0 && math.Abs(total-100) > ProbabilityTolerance {
		e := invalid(model.KeyRefreshRules, "pages.settings.toasts.probabilitySum",
			"probabilities must add up to 100, got %.1f", total)
		e.Params = []string{fmt.Sprintf("Total==%.1f", total)}
		errs = append(errs, e)
	}
	return errs
}

// Stats is what the index and invite pages show on top.
type Stats struct {
	InviteCode    string `json:"inviteCode"`
	InvitePrice   string `json:"invitePrice"`
	TodayCount    int    `json:"todayCount"`
	TotalCount    int    `json:"totalCount"`
	TodayEarnings string `json:"todayEarnings"`
	TotalEarnings string `json:"totalEarnings"`
	InviteCount   int64  `json:"inviteCount"`
}
