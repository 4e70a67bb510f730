package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Validate runs struct-tag validation over cfg, the gap the teacher's own
// cmd/scheduler/cmd/root.go calls into but which this package never defined.
func Validate(cfg interface{}) error {
	return validator.New().Struct(cfg)
}

func LogValidationErrors(err error) {
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			fieldName := stripPrefix(err.Namespace())
			tag := err.Tag()
			switch tag {
			case "required":
				log.Errorf("ConfigError: Field %s is required but was not found", fieldName)
			default:
				log.Errorf("ConfigError: Field %s has invalid value %s: %s", fieldName, err.Value(), tag)
			}
		}
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
