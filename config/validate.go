package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var configValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate 验证配置：结构体标签规则 + 凭证互斥规则
func (c *Config) Validate() error {
	var errs []string

	if err := c.Client.ValidateCredentials(); err != nil {
		errs = append(errs, err.Error())
	}

	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation errors: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateCredentials 要求 APIKey 与 ServiceToken 恰好设置一个
func (c ClientConfig) ValidateCredentials() error {
	switch {
	case c.APIKey == "" && c.ServiceToken == "":
		return errors.New("Either api_key or service_token is required")
	case c.APIKey != "" && c.ServiceToken != "":
		return errors.New("Provide either api_key or service_token, not both")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s (got %v)", field, fe.Tag(), fe.Value())
}
