package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string `json:"appVersion"`
	DbVersion  string `json:"dbVersion"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}
