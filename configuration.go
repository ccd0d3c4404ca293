package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/thlib/go-timezone-local/tzlocal"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("timezone", validateTimezone)
}

func validateTimezone(fl validator.FieldLevel) bool {
	timezone := fl.Field().String()
	if timezone == "" {
		return true // Empty timezone is allowed, will be replaced with system default
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// Config is the on-disk configuration of the tool: where the diaries live,
// where reconciliation state is persisted and how forgiving matching is.
type Config struct {
	// DiaryFilesGlobs locate the markdown diary files, in priority order.
	DiaryFilesGlobs []string `yaml:"diaryFilesGlobs" validate:"required,min=1"`
	// AliasesPath is a JSON file of shop-name aliases; optional.
	AliasesPath string `yaml:"aliasesPath,omitempty"`
	// UnmatchedLedgerPath is the CSV ledger of unmatched bank transactions.
	UnmatchedLedgerPath string `yaml:"unmatchedLedgerPath" validate:"required"`
	// DefaultCurrency is assumed for bank exports without currency columns.
	DefaultCurrency string `yaml:"defaultCurrency,omitempty" validate:"omitempty,len=3,uppercase"`
	// AmountTolerance is the general fuzzy-match amount window.
	AmountTolerance float64 `yaml:"amountTolerance,omitempty" validate:"min=0"`
	// DateToleranceDays is the fuzzy-match date window in days.
	DateToleranceDays int `yaml:"dateToleranceDays,omitempty" validate:"min=0"`
	// TimeZoneLocation resolves "today" for new diary entries.
	TimeZoneLocation string `yaml:"timeZoneLocation,omitempty" validate:"timezone"`
}

func readConfig(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	decoder := yaml.NewDecoder(strings.NewReader(string(buf)))
	decoder.KnownFields(true) // Disallow unknown fields
	if err = decoder.Decode(cfg); err != nil {
		if err.Error() == "EOF" {
			return nil, fmt.Errorf("can't decode YAML from configuration file '%s': %v", filename, err)
		}
		return nil, err
	}

	// Set default values.
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DEFAULT_BASE_CURRENCY
	}
	if cfg.AmountTolerance == 0 {
		cfg.AmountTolerance = DEFAULT_AMOUNT_TOLERANCE
	}
	if cfg.DateToleranceDays == 0 {
		cfg.DateToleranceDays = DEFAULT_DATE_TOLERANCE_DAYS
	}
	if len(cfg.TimeZoneLocation) == 0 {
		tzname, err := tzlocal.RuntimeTZ()
		if err != nil {
			// Fallback to UTC if system timezone cannot be determined
			cfg.TimeZoneLocation = "UTC"
		} else {
			cfg.TimeZoneLocation = tzname
		}
	}

	// Verify timezone is valid
	_, err = time.LoadLocation(cfg.TimeZoneLocation)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone location '%s': %w", cfg.TimeZoneLocation, err)
	}

	// Validate other fields
	if err = validate.Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// writeToFile writes the configuration to a file.
func (cfg *Config) writeToFile(filename string) error {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, buf, 0644)
}
