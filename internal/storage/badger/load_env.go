package badger

import (
	"bufio"
	"context"
	"os"
	"strings"
)

// LoadEnvFile loads variables from a dotenv file into the KV store.
// Supported lines:
//   - KEY=value
//   - export KEY=value
//   - KEY="value" or KEY='value' (quotes stripped)
//   - # comments and blank lines are ignored
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		m.logger.Debug().Str("file", filePath).Msg("Env file does not exist, skipping")
		return nil
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to open env file")
		return nil
	}
	defer file.Close()

	loaded, skipped := 0, 0
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		key, value, ok := parseEnvLine(scanner.Text())
		if !ok {
			continue
		}
		if key == "" || value == "" {
			m.logger.Warn().Str("file", filePath).Int("line", lineNum).Msg("Skipping env line without key or value")
			skipped++
			continue
		}

		if _, err := m.kv.Upsert(ctx, key, value, "Loaded from "+filePath); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable from env file")
			continue
		}
		loaded++
	}

	if err := scanner.Err(); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Error reading env file")
	}

	m.logger.Debug().
		Str("file", filePath).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Msg("Loaded env file")

	return nil
}

// parseEnvLine returns ok=false for comments and blank lines
func parseEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", true
	}
	key = strings.TrimSpace(k)
	value = strings.TrimSpace(v)

	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}
