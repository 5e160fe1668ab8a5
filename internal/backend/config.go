package backend

import (
	"errors"
	"fmt"

	"budgetflow/internal/config"
	gsheet "budgetflow/internal/sheets/google"
)

// Config holds what the factory needs to build any backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string

	Sheets gsheet.Options
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Sheets:       SheetsOptions(appConfig),
	}, nil
}

// SheetsOptions extracts the Google Sheets client options.
func SheetsOptions(appConfig *config.Config) gsheet.Options {
	return gsheet.Options{
		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		SheetName:       appConfig.GoogleSheetName,
		CredentialsJSON: appConfig.GoogleServiceAccountJSON,
		CredentialsFile: appConfig.GoogleServiceAccountFile,
	}
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
			return errors.New("service account credentials are required for sheets backend")
		}
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), SQLiteBackend.String(), SheetsBackend.String()}
}
