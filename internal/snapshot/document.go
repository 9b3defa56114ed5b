// Package snapshot persists the most recent known state of each
// still-provisioning virtual server so the daily report can later enrich
// rows with placement and image attributes that are unavailable once
// provisioning completes.
package snapshot

import "time"

// DocType tags snapshot documents in the store.
const DocType = "vsidata"

// Document is the per-guest snapshot. One document exists per guest
// identifier; later writes overwrite earlier ones, so the record is a
// most-recent-known-state cache rather than a history log.
type Document struct {
	GuestID       string `json:"_id"`
	DocType       string `json:"docType"`
	Hostname      string `json:"hostName"`
	FQDN          string `json:"fqdn"`
	TemplateImage string `json:"templateImage"`
	Datacenter    string `json:"datacenter"`
	ServerRoom    string `json:"serverRoom"`
	Router        string `json:"router"`
	VLAN          string `json:"vlan"`
	BackendIP     string `json:"primaryBackendIpAddress"`
	MaxCPU        int    `json:"maxCpu"`
	MaxMemory     int    `json:"maxMemory"`

	// Fields describing the active provisioning transaction at observation
	// time.
	TransactionStatus  string  `json:"transactionStatus,omitempty"`
	ElapsedMinutes     float64 `json:"elapsedMinutes,omitempty"`
	TransactionStarted string  `json:"transactionStarted,omitempty"`
	InFlightMinutes    float64 `json:"inFlightMinutes,omitempty"`

	ObservedAt time.Time `json:"observedAt"`
}
