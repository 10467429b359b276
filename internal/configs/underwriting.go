package configs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"section8-underwriter/internal/core/domain"

	"gopkg.in/yaml.v3"
)

// LoadUnderwritingParams читает YAML с переопределениями политики поверх
// значений по умолчанию. Пустой путь означает политику по умолчанию
func LoadUnderwritingParams(path string) (domain.UnderwritingParams, error) {
	defaults := domain.DefaultUnderwritingParams()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("failed to read underwriting config %s: %w", path, err)
	}
	return ParseUnderwritingParams(raw)
}

// ParseUnderwritingParams разбирает YAML. Неизвестные ключи считаются ошибкой
func ParseUnderwritingParams(raw []byte) (domain.UnderwritingParams, error) {
	var override domain.ParamsOverride

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return domain.DefaultUnderwritingParams(), fmt.Errorf("failed to parse underwriting config: %w", err)
	}

	return override.Apply(domain.DefaultUnderwritingParams())
}
