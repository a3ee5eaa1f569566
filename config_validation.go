package unleash

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blang/semver/v4"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// endpointConfig holds the settings the built-in HTTP fetcher needs.
type endpointConfig struct {
	URL       string `validate:"required,url"`
	ClientKey string `validate:"required"`
	AppName   string `validate:"required"`
}

// validateConfig reports every problem with cfg at once. A valid
// AppVersion is rewritten in canonical semver form.
func validateConfig(cfg *Config) error {
	var result *multierror.Error
	if cfg.RefreshMode != nil {
		if err := cfg.RefreshMode.validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if cfg.Fetcher == nil {
		err := getValidator().Struct(endpointConfig{
			URL:       cfg.URL,
			ClientKey: cfg.ClientKey,
			AppName:   cfg.AppName,
		})
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result = multierror.Append(result, fmt.Errorf("%s is invalid: failed the %q check", fe.Field(), fe.Tag()))
			}
		} else if err != nil {
			result = multierror.Append(result, err)
		}
	}
	if cfg.AppVersion != "" {
		if v, err := semver.ParseTolerant(cfg.AppVersion); err != nil {
			result = multierror.Append(result, fmt.Errorf("AppVersion %q is not a semantic version: %v", cfg.AppVersion, err))
		} else {
			cfg.AppVersion = v.String()
		}
	}
	return result.ErrorOrNil()
}
