// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"fmt"
	"time"
)

// BackupStatus is shared by backup and restore records.
type BackupStatus string

const (
	StatusInProgress BackupStatus = "IN_PROGRESS"
	StatusSuccess    BackupStatus = "SUCCESS"
	StatusFailed     BackupStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s BackupStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is SUCCESS or FAILED.
func (s BackupStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// BackupKind labels why a backup was taken. It has no behavioral effect.
type BackupKind string

const (
	KindManual    BackupKind = "MANUAL"
	KindAutomatic BackupKind = "AUTOMATIC"
	KindScheduled BackupKind = "SCHEDULED"
)

// Valid reports whether k is a known kind.
func (k BackupKind) Valid() bool {
	switch k {
	case KindManual, KindAutomatic, KindScheduled:
		return true
	}
	return false
}

// BackupRecord is the durable history entry for one backup attempt.
//
// CompletedAt is set exactly when Status is terminal.
type BackupRecord struct {
	ID          int64        `json:"id"`
	FileName    string       `json:"file_name"`
	FileSize    int64        `json:"file_size"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Status      BackupStatus `json:"status"`
	Kind        BackupKind   `json:"kind"`
	UserID      *int64       `json:"user_id,omitempty"`
	Comment     string       `json:"comment"`
	FilePath    string       `json:"-"`
	Log         string       `json:"log"`
}

// SizeFormatted renders FileSize with FormatSize.
func (b *BackupRecord) SizeFormatted() string {
	return FormatSize(b.FileSize)
}

// RestoreRecord is the durable history entry for one restore attempt.
type RestoreRecord struct {
	ID          int64        `json:"id"`
	BackupID    int64        `json:"backup_id"`
	RestoredAt  time.Time    `json:"restored_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	UserID      *int64       `json:"user_id,omitempty"`
	Status      BackupStatus `json:"status"`
	Log         string       `json:"log"`
}

var sizeUnits = [...]string{"octets", "Ko", "Mo", "Go"}

// FormatSize renders a byte count with two decimals, stepping by 1024
// through octets, Ko, Mo and Go. Go is the largest unit.
//
//	FormatSize(500)        // "500.00 octets"
//	FormatSize(2048)       // "2.00 Ko"
//	FormatSize(5368709120) // "5.00 Go"
func FormatSize(bytes int64) string {
	size := float64(bytes)
	for i, unit := range sizeUnits {
		if size < 1024 || i == len(sizeUnits)-1 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%d octets", bytes)
}

// BackupStats summarises the backup history.
type BackupStats struct {
	Total          int           `json:"total"`
	Success        int           `json:"success"`
	Failed         int           `json:"failed"`
	TotalSize      int64         `json:"total_size"`
	TotalSizeHuman string        `json:"total_size_human"`
	LastBackup     *BackupRecord `json:"last_backup,omitempty"`
}
