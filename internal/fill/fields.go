package fill

import (
	"strings"

	"go.uber.org/zap"

	"albayan/internal/domain"
	"albayan/internal/port"
)

// FillPlaceholders runs a document-wide literal replace for each pair in
// order. Each replacement is complete before the next pair is searched, so a
// later pair can match text an earlier pair inserted.
func FillPlaceholders(doc port.Document, placeholders domain.Pairs, log *zap.Logger) int {
	total := 0
	for _, kv := range placeholders {
		if kv.Key == "" {
			continue
		}
		n := doc.ReplaceAll(kv.Key, kv.Value)
		if n == 0 {
			log.Warn("placeholder not found", zap.String("placeholder", kv.Key))
		}
		total += n
	}
	return total
}

// FillVariables sets every field master whose qualified name ends with a
// requested variable name, then flattens the instances of touched masters to
// literal text. Failures of a single master or instance are logged and skipped.
func FillVariables(doc port.Document, variables domain.Pairs, log *zap.Logger) int {
	masters := doc.FieldMasters()
	touched := make(map[string]string)

	for _, kv := range variables {
		if kv.Key == "" {
			continue
		}
		matched := false
		for _, m := range masters {
			if !strings.HasSuffix(m.QualifiedName(), kv.Key) {
				continue
			}
			matched = true
			if err := m.SetContent(kv.Value); err != nil {
				log.Warn("setting field master failed",
					zap.String("variable", kv.Key), zap.String("master", m.QualifiedName()), zap.Error(err))
				continue
			}
			touched[m.QualifiedName()] = kv.Value
		}
		if !matched {
			log.Warn("variable has no field master", zap.String("variable", kv.Key))
		}
	}
	if len(touched) == 0 {
		return 0
	}

	flattened := 0
	for _, inst := range doc.FieldInstances() {
		value, ok := touched[inst.MasterName()]
		if !ok {
			continue
		}
		if err := inst.Flatten(value); err != nil {
			log.Warn("flattening field instance failed", zap.String("master", inst.MasterName()), zap.Error(err))
			continue
		}
		flattened++
	}
	return flattened
}
