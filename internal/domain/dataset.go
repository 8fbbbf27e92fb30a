package domain

import "time"

// Row is one record of the server/domain inventory.
//
// It is NOT tied to the upstream sheet API or the snapshot file.
// The upstream mapper converts raw payload rows into this structure,
// and everything downstream (cache, query, snapshot) speaks Row only.
type Row struct {
	// ServerName is the physical/logical server the domain is hosted on.
	// Example: SERVER-A
	ServerName string `json:"server_name"`

	// DomainName is the public domain served from that server.
	DomainName string `json:"domain_name"`

	// BackendFolderName is the deployment folder of the backend program.
	// It doubles as the program name in query projections.
	BackendFolderName string `json:"backend_folder_name"`

	// BackendHost is the backend base host (scheme+host, no port).
	BackendHost string `json:"backend_host"`

	// BackendPort is the backend listen port.
	BackendPort int `json:"backend_port"`

	// IsCentralized, AppName and BackupStatus may arrive empty from
	// upstream; the query engine substitutes display sentinels, the
	// stored row keeps whatever upstream sent.
	IsCentralized string `json:"is_terpusat"`
	AppName       string `json:"apk_name"`
	BackupStatus  string `json:"status_backup"`
}

// Dataset is the full inventory table as of one successful refresh.
// A Dataset is immutable once constructed: refreshes build a new one
// and swap it in wholesale, rows are never mutated in place.
type Dataset struct {
	FetchedAt time.Time `json:"fetched_at"`
	Rows      []Row     `json:"rows"`
}

// ProjectedRow is the client-facing shape served by /get-data-client.
type ProjectedRow struct {
	ServerLocation string `json:"server_location"`
	ProgramName    string `json:"program_name"`
	DomainName     string `json:"domain_name"`
	BackendURL     string `json:"backend_url"`
}
