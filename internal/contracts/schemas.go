package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"section8-underwriter/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Имена и версии контрактов
const (
	UnderwriteBatchTaskEvent = "UnderwriteBatchTaskEvent"
	DealSheetReadyEvent      = "DealSheetReadyEvent"
	UnderwriteRequest        = "UnderwriteRequest"
	VersionV1                = "1.0.0"
)

// Каталоги схем и суффикс имени контракта для каждого из них
var schemaRoots = map[string]string{
	"events":   "Event",
	"requests": "Request",
}

var (
	compileOnce     sync.Once
	compileErr      error
	compiledSchemas map[string]*jsonschema.Schema
)

// load компилирует все встроенные схемы один раз за процесс
func load() error {
	compileOnce.Do(func() {
		compiledSchemas, compileErr = compileAll(schemas.SchemasFS)
	})
	return compileErr
}

func compileAll(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	for root := range schemaRoots {
		err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			raw, err := fs.ReadFile(fsys, path)
			if err != nil {
				return err
			}
			if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
				return fmt.Errorf("failed to add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking schemas in %s: %w", root, err)
		}
	}

	out := make(map[string]*jsonschema.Schema, len(paths))
	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("could not compile schema %s: %w", path, err)
		}
		if key := keyFromPath(path); key != "" {
			out[key] = schema
		}
	}
	return out, nil
}

// keyFromPath преобразует "events/deal-sheet-ready/v1.json"
// в "DealSheetReadyEvent/1.0.0"
func keyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := schemaRoots[parts[0]]
	if !ok {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	version := strings.TrimPrefix(parts[2], "v") + ".0.0"
	return name.String() + "/" + version
}

// Validate проверяет тело сообщения по схеме контракта
func Validate(name, version string, body []byte) error {
	if err := load(); err != nil {
		return err
	}

	schema, ok := compiledSchemas[name+"/"+version]
	if !ok {
		return fmt.Errorf("schema for '%s' version '%s' not found", name, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
