package upstream

import (
	"fmt"

	"github.com/aryodp/edgegate/internal/domain"
)

// Mapper converts raw sheet rows into domain.Row entities.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapRows validates and converts a payload's rows. Rows without a
// domain name carry no useful inventory and are skipped; a payload
// yielding zero usable rows is treated as malformed so a broken
// upstream can never blank out the cache.
func (m *Mapper) MapRows(rows []rawRow) ([]domain.Row, error) {
	mapped := make([]domain.Row, 0, len(rows))

	for _, raw := range rows {
		if raw.DomainName == "" {
			continue
		}

		port := 0
		if raw.Port != "" {
			p, err := raw.Port.Int64()
			if err != nil {
				return nil, fmt.Errorf("invalid port %q for domain %s: %w", raw.Port, raw.DomainName, err)
			}
			port = int(p)
		}

		mapped = append(mapped, domain.Row{
			ServerName:        raw.ServerName,
			DomainName:        raw.DomainName,
			BackendFolderName: raw.BackendFolderName,
			BackendHost:       raw.BackendURL,
			BackendPort:       port,
			IsCentralized:     raw.IsCentralized,
			AppName:           raw.AppName,
			BackupStatus:      raw.BackupStatus,
		})
	}

	if len(mapped) == 0 {
		return nil, fmt.Errorf("no valid rows in upstream payload")
	}

	return mapped, nil
}
