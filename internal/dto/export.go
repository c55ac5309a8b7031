package dto

import "time"

// ExportTicket references a generated export file. The token embeds an
// HMAC signature and expiry; the download endpoint validates it without
// any further authentication.
type ExportTicket struct {
	Token     string    `json:"token"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConnectionExportRow is one accepted connection in an export document.
type ConnectionExportRow struct {
	Name           string
	Email          string
	PreferredMode  string
	ConnectedSince time.Time
}
