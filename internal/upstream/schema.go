package upstream

import "encoding/json"

// payload is the top-level shape of the sheet API response. The
// service always requests the unfiltered superset, so page/limit/
// totals from upstream are ignored; local pagination is authoritative.
type payload struct {
	Data []rawRow `json:"data"`
}

// rawRow mirrors one upstream row as-is. The sheet rows are loosely
// typed (port may arrive as a number or a string), so the port is
// decoded as json.Number and validated by the mapper.
type rawRow struct {
	ServerName        string      `json:"server_name"`
	DomainName        string      `json:"domain_name"`
	BackendFolderName string      `json:"backend_folder_name"`
	BackendURL        string      `json:"backend_url"`
	Port              json.Number `json:"port"`
	IsCentralized     string      `json:"is_terpusat"`
	AppName           string      `json:"apk_name"`
	BackupStatus      string      `json:"status_backup"`
}
