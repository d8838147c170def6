// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	"errors"

	"go.uber.org/zap/zapcore"

	apperrors "github.com/verustcode/giteebridge/pkg/errors"
	"github.com/verustcode/giteebridge/pkg/validation"
)

// Validate checks the struct constraints and the values that need parsing.
// Failed field paths such as "gitee.per_page" are attached as details.
func Validate(cfg *Config) error {
	if err := validation.Struct(cfg); err != nil {
		appErr := apperrors.Wrap(apperrors.ErrCodeConfigInvalid, "invalid configuration: "+err.Error(), err)
		var verr *validation.Error
		if errors.As(err, &verr) {
			appErr = appErr.WithDetails(verr.Fields())
		}
		return appErr
	}
	if _, err := cfg.Gitee.ServerPath(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeConfigInvalid, "invalid logging.level", err).
			WithDetails([]string{"logging.level"})
	}
	return nil
}
