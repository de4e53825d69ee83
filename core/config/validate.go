package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(crossFieldRules, Config{})
	return v
}

// crossFieldRules checks settings that depend on the run mode or favorites backend.
func crossFieldRules(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Telegram.RunMode == RunModeWebhook {
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			sl.ReportError(cfg.Webhook.URL, "webhook.url", "URL", "required_webhook", "")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			sl.ReportError(cfg.Webhook.Listen, "webhook.listen", "Listen", "required_webhook", "")
		}
		if cfg.Webhook.Port <= 0 {
			sl.ReportError(cfg.Webhook.Port, "webhook.port", "Port", "required_webhook", "")
		} else if cfg.Webhook.Port == cfg.KeepAlive.Port && !cfg.KeepAlive.Disabled {
			sl.ReportError(cfg.Webhook.Port, "webhook.port", "Port", "nefield", "keepalive.port")
		}
	}
	if cfg.Favorites.Backend == FavoritesPostgres {
		if strings.TrimSpace(cfg.Database.Host) == "" {
			sl.ReportError(cfg.Database.Host, "database.host", "Host", "required_postgres", "")
		}
		if strings.TrimSpace(cfg.Database.Name) == "" {
			sl.ReportError(cfg.Database.Name, "database.name", "Name", "required_postgres", "")
		}
	}
}

// validateConfig runs the validator and rewrites its errors as "path: rule" lines.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		if path == "telegram.token" {
			return path + " is required (TELEGRAM_BOT_TOKEN)"
		}
		return path + " is required"
	case "required_webhook":
		return path + " is required when telegram.run_mode is webhook"
	case "required_postgres":
		return path + " is required for the postgres favorites backend"
	case "oneof":
		return fmt.Sprintf("%s %q is invalid; allowed: %s", path, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "nefield":
		return path + " must differ from " + fe.Param()
	}
	return fmt.Sprintf("%s must satisfy %s=%s", path, fe.Tag(), fe.Param())
}
