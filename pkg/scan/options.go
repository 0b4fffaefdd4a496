package scan

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pyneda/htin/pkg/payloads"
)

var validate = validator.New()

// Options configure a scan run
type Options struct {
	URL          string               `json:"url" validate:"required,url"`
	Levels       []payloads.RiskLevel `json:"levels" validate:"omitempty,dive,oneof=basic styled dangerous xss"`
	Timeout      time.Duration        `json:"timeout" validate:"gt=0"`
	Delay        time.Duration        `json:"delay" validate:"min=0"`
	Concurrency  int                  `json:"concurrency" validate:"min=1,max=64"`
	MaxRedirects int                  `json:"max_redirects" validate:"min=0"`
	Verbose      bool                 `json:"verbose"`
}

// Validate checks the options and returns a readable error listing every invalid field
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var problems []string
	for _, fieldErr := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid scan options: %s", strings.Join(problems, ", "))
}
